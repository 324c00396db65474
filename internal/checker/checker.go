package checker

import (
	"context"
	"errors"
	"strings"

	"github.com/MrSnakeDoc/plugup/internal/config"
	"github.com/MrSnakeDoc/plugup/internal/errs"
	"github.com/MrSnakeDoc/plugup/internal/logger"
	"github.com/MrSnakeDoc/plugup/internal/models"
	"github.com/MrSnakeDoc/plugup/internal/utils"
)

// MetadataResolver is satisfied by *versions.Resolver.
type MetadataResolver interface {
	Resolve(ctx context.Context, p models.ProjectConfig) (*models.ResolvedMetadata, error)
	InstalledVersion(p *models.ProjectConfig) string
}

type CheckerController struct {
	Config   config.Config
	Manifest *models.Manifest
	Resolver MetadataResolver
	// OnState, when set, sees every state a project goes through.
	OnState func(slug string, state models.State)
}

func New(conf *config.Config, manifest *models.Manifest, resolver MetadataResolver) *CheckerController {
	if conf == nil {
		defaultConfig := config.DefaultCheckerConfig()
		conf = &defaultConfig
	}
	if manifest == nil {
		manifest = &models.Manifest{}
	}
	return &CheckerController{Config: *conf, Manifest: manifest, Resolver: resolver}
}

// Check returns a descriptor only when resolved is strictly greater than
// installed.
func Check(p *models.ProjectConfig, installed string, meta *models.ResolvedMetadata) *models.UpdateDescriptor {
	if meta == nil || !utils.IsNewerVersion(meta.NewVersion, installed) {
		return nil
	}

	url := p.GitHubURL
	if p.AccessToken != "" {
		if withToken, err := utils.AddQueryArg(url, "access_token", p.AccessToken); err == nil {
			url = withToken
		}
	}

	pkg := meta.PackageURL
	if pkg == "" {
		pkg = p.ZipURL
	}

	return &models.UpdateDescriptor{
		Slug:       p.ProperFolderName,
		NewVersion: meta.NewVersion,
		URL:        url,
		Package:    pkg,
		OldVersion: installed,
	}
}

// InstalledVersions builds the "checked" map the host would hand over:
// every valid project with its installed version.
func (c *CheckerController) InstalledVersions() map[string]string {
	checked := make(map[string]string, len(c.Manifest.Projects))
	for i := range c.Manifest.Projects {
		p := &c.Manifest.Projects[i]
		if config.ValidateProject(p) != nil {
			continue
		}
		checked[p.Slug] = c.Resolver.InstalledVersion(p)
	}
	return checked
}

// Execute runs one update check. A set without checked versions is returned
// untouched. Projects are evaluated one by one in manifest order; a failing
// project is recorded as CHECK_FAILED and never stops the others.
func (c *CheckerController) Execute(ctx context.Context, set *models.UpdateSet) *models.UpdateSet {
	if set == nil || len(set.Checked) == 0 {
		return set
	}
	if set.Response == nil {
		set.Response = make(map[string]models.UpdateDescriptor)
	}
	if set.Outcomes == nil {
		set.Outcomes = make(map[string]models.Outcome)
	}

	if c.Config.ForceRefresh {
		logger.Warn("Transient caching is disabled: every project is fetched from GitHub. Do not use this in production.")
	}

	for _, raw := range c.Manifest.Projects {
		p, err := config.NormalizeProject(raw)
		if err != nil {
			reportInvalid(&raw, err)
			c.record(set, raw.Slug, models.Outcome{State: models.StateIdle, Err: err})
			continue
		}

		installed, ok := set.Checked[p.Slug]
		if !ok {
			installed = c.Resolver.InstalledVersion(&p)
		}

		c.record(set, p.Slug, models.Outcome{State: models.StateChecking, Installed: installed})

		meta, err := c.Resolver.Resolve(ctx, p)
		if err != nil {
			logger.Debug("update check failed for %s: %v", p.Slug, err)
			c.record(set, p.Slug, models.Outcome{State: models.StateCheckFailed, Installed: installed, Err: err})
			continue
		}

		outcome := models.Outcome{State: models.StateUpToDate, Installed: installed, Latest: meta.NewVersion}
		if d := Check(&p, installed, meta); d != nil {
			set.Response[p.Slug] = *d
			outcome.State = models.StateUpdateAvailable
		}
		c.record(set, p.Slug, outcome)
	}

	return set
}

// PluginInfo builds the details screen for slug. ok is false when slug is
// not tracked, so the host can fall through to its own source.
func (c *CheckerController) PluginInfo(ctx context.Context, slug string) (*models.PluginInfo, bool, error) {
	raw, found := c.Manifest.Find(slug)
	if !found {
		return nil, false, nil
	}

	p, err := config.NormalizeProject(*raw)
	if err != nil {
		return nil, true, err
	}

	info := &models.PluginInfo{
		Slug:         p.Slug,
		Requires:     p.Requires,
		Tested:       p.Tested,
		Downloaded:   0,
		Sections:     map[string]string{},
		DownloadLink: p.ZipURL,
	}

	meta, err := c.Resolver.Resolve(ctx, p)
	if err != nil {
		return info, true, err
	}

	info.PluginName = meta.PluginName
	info.Version = meta.NewVersion
	info.Author = meta.Author
	info.Homepage = meta.Homepage
	info.LastUpdated = meta.LastUpdated
	info.Sections["description"] = meta.Description
	if meta.PackageURL != "" {
		info.DownloadLink = meta.PackageURL
	}
	return info, true, nil
}

func (c *CheckerController) record(set *models.UpdateSet, slug string, o models.Outcome) {
	set.Outcomes[slug] = o
	if c.OnState != nil {
		c.OnState(slug, o.State)
	}
}

func reportInvalid(p *models.ProjectConfig, err error) {
	var missing []string
	var e *errs.Error
	if errors.As(err, &e) {
		missing = e.Missing
	}
	if len(missing) == 0 {
		logger.Warn("Skipping %s: %v", orUnnamed(p.Slug), err)
		return
	}
	logger.Warn("%s", errs.Msg(errs.InvalidProject, orUnnamed(p.Slug), strings.Join(missing, ", ")))
}

func orUnnamed(slug string) string {
	if slug == "" {
		return "<unnamed>"
	}
	return slug
}
