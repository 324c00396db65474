package upgrade

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/MrSnakeDoc/plugup/internal/config"
	"github.com/MrSnakeDoc/plugup/internal/errs"
	"github.com/MrSnakeDoc/plugup/internal/logger"
	"github.com/MrSnakeDoc/plugup/internal/models"
	"github.com/MrSnakeDoc/plugup/internal/service"
	"github.com/MrSnakeDoc/plugup/internal/store"
	"github.com/MrSnakeDoc/plugup/internal/utils"
)

// Report is the outcome of one project's upgrade.
type Report struct {
	Slug   string
	From   string
	To     string
	State  models.State
	Result *Result
	Err    error
}

type Installer struct {
	Config     config.Config
	Manifest   *models.Manifest
	PluginsDir string
	Store      store.Store
	Relocator  *Relocator
	// ClientFor returns the download client for p. Defaults to a client
	// with the download timeout and p's TLS and token settings.
	ClientFor func(p *models.ProjectConfig) *http.Client
	// Forget, when set, drops any in-memory metadata kept for a slug.
	Forget func(slug string)
}

func New(conf *config.Config, manifest *models.Manifest, pluginsDir string, s store.Store, relocator *Relocator) *Installer {
	if conf == nil {
		def := config.DefaultUpgradeConfig()
		conf = &def
	}
	if relocator == nil {
		relocator = &Relocator{}
	}
	return &Installer{
		Config:     *conf,
		Manifest:   manifest,
		PluginsDir: pluginsDir,
		Store:      s,
		Relocator:  relocator,
	}
}

func (i *Installer) client(p *models.ProjectConfig) *http.Client {
	if i.ClientFor != nil {
		return i.ClientFor(p)
	}
	return service.NewHTTPClient(service.ClientOptions{
		Timeout:     i.Config.DownloadTimeout,
		VerifyTLS:   p.VerifyTLS(),
		AccessToken: p.AccessToken,
	})
}

// Execute installs every update found in set, in manifest order. When only
// is not empty, projects outside it are left alone. A failing project never
// stops the others.
func (i *Installer) Execute(ctx context.Context, set *models.UpdateSet, only []string) []Report {
	var reports []Report
	if set == nil || len(set.Response) == 0 {
		return reports
	}

	for _, raw := range i.Manifest.Projects {
		d, ok := set.Response[raw.Slug]
		if !ok || (len(only) > 0 && !utils.Includes(only, raw.Slug)) {
			continue
		}

		p, err := config.NormalizeProject(raw)
		if err != nil {
			reports = append(reports, Report{Slug: raw.Slug, Err: err, State: models.StateIdle})
			continue
		}

		logger.Info("Upgrading %s %s -> %s", p.Slug, utils.OrDash(d.OldVersion), d.NewVersion)
		rep := i.install(ctx, &p, d)
		i.log(&rep)
		reports = append(reports, rep)
	}
	return reports
}

func (i *Installer) install(ctx context.Context, p *models.ProjectConfig, d models.UpdateDescriptor) Report {
	rep := Report{Slug: p.Slug, From: d.OldVersion, To: d.NewVersion, State: models.StateDownloading}

	if err := os.MkdirAll(i.PluginsDir, 0o755); err != nil {
		rep.Err = errs.RelocationError(p.Slug, err)
		return rep
	}

	// Unpack next to the plugins so the final move is a rename.
	tmpDir, err := os.MkdirTemp(i.PluginsDir, ".plugup-"+filepath.Base(p.ProperFolderName)+"-")
	if err != nil {
		rep.Err = errs.RelocationError(p.Slug, err)
		return rep
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			logger.Debug("failed to remove %s: %v", tmpDir, err)
		}
	}()

	if _, err := utils.ParseSecureURL(d.Package); err != nil {
		rep.Err = errs.TransportError("download", err)
		return rep
	}

	zipPath := filepath.Join(tmpDir, "package.zip")
	if err := service.DownloadToFile(ctx, i.client(p), d.Package, zipPath, i.Config.MaxPackageSize); err != nil {
		rep.Err = errs.TransportError("download", err)
		return rep
	}

	extractDir := filepath.Join(tmpDir, "extracted")
	if err := Unzip(zipPath, extractDir, i.Config.MaxExtractedSize); err != nil {
		rep.Err = errs.RelocationError(p.Slug, fmt.Errorf("extract: %w", err))
		return rep
	}
	rep.State = models.StateExtracted

	res, err := i.OnPackageExtracted(ctx, p, extractDir)
	if err != nil {
		rep.State = models.StateRelocating
		rep.Err = err
		return rep
	}
	rep.Result = res
	rep.State = res.State

	if err := store.Invalidate(ctx, i.Store, p.Slug); err != nil {
		logger.Debug("failed to invalidate transients of %s: %v", p.Slug, err)
	}
	if i.Forget != nil {
		i.Forget(p.Slug)
	}
	return rep
}

// OnPackageExtracted moves the unpacked package to <plugins_dir>/<folder>
// and reactivates it.
func (i *Installer) OnPackageExtracted(ctx context.Context, p *models.ProjectConfig, extractDir string) (*Result, error) {
	src, err := TopLevelDir(extractDir)
	if err != nil {
		return nil, errs.RelocationError(p.Slug, err)
	}
	canonical := filepath.Join(i.PluginsDir, filepath.FromSlash(p.ProperFolderName))
	return i.Relocator.Relocate(ctx, src, canonical, p)
}

func (i *Installer) log(rep *Report) {
	switch {
	case rep.Err != nil:
		logger.LogError("%s: %v", rep.Slug, rep.Err)
	case rep.State == models.StateRelocatedInactive:
		logger.Warn("%s: %s", rep.Slug, rep.Result.Message)
		logger.Debug("%v", rep.Result.Err)
	default:
		logger.Success("%s updated to %s. %s", rep.Slug, rep.To, rep.Result.Message)
	}
}
