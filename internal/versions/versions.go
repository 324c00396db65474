package versions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/MrSnakeDoc/plugup/internal/config"
	"github.com/MrSnakeDoc/plugup/internal/errs"
	"github.com/MrSnakeDoc/plugup/internal/github"
	"github.com/MrSnakeDoc/plugup/internal/logger"
	"github.com/MrSnakeDoc/plugup/internal/models"
	"github.com/MrSnakeDoc/plugup/internal/remote"
	"github.com/MrSnakeDoc/plugup/internal/service"
	"github.com/MrSnakeDoc/plugup/internal/store"
	"github.com/MrSnakeDoc/plugup/internal/utils"
)

const dateLayout = "2006-01-02"

// remoteVersion is what gets cached under the _new_version transient.
type remoteVersion struct {
	Version  string `json:"version"`
	Package  string `json:"package,omitempty"`
	Name     string `json:"name,omitempty"`
	Author   string `json:"author,omitempty"`
	Homepage string `json:"homepage,omitempty"`
}

// githubData is what gets cached under the _github_data transient.
type githubData struct {
	UpdatedAt   string `json:"updated_at,omitempty"`
	Description string `json:"description,omitempty"`
}

// Resolver derives the latest published metadata of a project from GitHub.
type Resolver struct {
	Store      store.Store
	Config     config.Config
	PluginsDir string
	// ClientFor returns the HTTP client used for p. Defaults to a
	// single-attempt client honoring p's TLS and token settings.
	ClientFor func(p *models.ProjectConfig) *http.Client

	memo sync.Map // slug -> *githubData
}

func NewResolver(s store.Store, conf config.Config, pluginsDir string) *Resolver {
	if s == nil {
		s = store.NewMemory(nil)
	}
	return &Resolver{Store: s, Config: conf, PluginsDir: pluginsDir}
}

func (r *Resolver) client(p *models.ProjectConfig) *http.Client {
	if r.ClientFor != nil {
		return r.ClientFor(p)
	}
	return service.NewHTTPClient(service.ClientOptions{
		Timeout:     r.Config.Timeout,
		VerifyTLS:   p.VerifyTLS(),
		AccessToken: p.AccessToken,
	})
}

// Resolve returns the metadata for a normalized project. It fails with a
// transport error when nothing could be fetched and with a parse error when
// the fetched files carry no version.
func (r *Resolver) Resolve(ctx context.Context, p models.ProjectConfig) (*models.ResolvedMetadata, error) {
	httpClient := r.client(&p)

	rv, err := store.GetOrCompute(ctx, r.Store,
		store.TransientKey(p.Slug, store.SuffixNewVersion),
		r.Config.TransientTTL, r.Config.ForceRefresh,
		func(ctx context.Context) (remoteVersion, error) {
			return r.fetchVersion(ctx, httpClient, &p)
		})
	if err != nil {
		return nil, err
	}

	gd := r.githubData(ctx, httpClient, &p)

	meta := &models.ResolvedMetadata{
		NewVersion:  rv.Version,
		LastUpdated: gd.UpdatedAt,
		Description: gd.Description,
		PluginName:  rv.Name,
		Author:      rv.Author,
		Homepage:    rv.Homepage,
		PackageURL:  p.ZipURL,
	}
	if rv.Package != "" {
		meta.PackageURL = rv.Package
	}

	if local, ok := r.LocalHeader(&p); ok {
		meta.PluginName = orElse(local.Name, meta.PluginName)
		meta.Author = orElse(local.Author, meta.Author)
		meta.Homepage = orElse(local.PluginURI, meta.Homepage)
	}

	return meta, nil
}

// Forget drops the in-memory GitHub data so the next Resolve refetches it.
func (r *Resolver) Forget(slug string) {
	r.memo.Delete(slug)
}

// InstalledVersion reads the version of the installed copy from its header,
// falling back to the version pinned in the manifest.
func (r *Resolver) InstalledVersion(p *models.ProjectConfig) string {
	if h, ok := r.LocalHeader(p); ok && h.Version != "" {
		return h.Version
	}
	return p.Version
}

// LocalHeader parses <plugins_dir>/<slug> when it exists.
func (r *Resolver) LocalHeader(p *models.ProjectConfig) (PluginHeader, bool) {
	if r.PluginsDir == "" {
		return PluginHeader{}, false
	}
	data, err := os.ReadFile(filepath.Join(r.PluginsDir, filepath.FromSlash(p.Slug)))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Debug("cannot read local header of %s: %v", p.Slug, err)
		}
		return PluginHeader{}, false
	}
	return ParseHeader(string(data)), true
}

func (r *Resolver) fetchVersion(ctx context.Context, httpClient *http.Client, p *models.ProjectConfig) (remoteVersion, error) {
	rc := remote.New(httpClient)
	var (
		rv       remoteVersion
		fetchErr error
	)

	mainURL := utils.JoinURL(p.RawURL, utils.Basename(p.Slug))
	if text, err := rc.FetchText(ctx, mainURL); err != nil {
		logger.Debug("main file fetch failed for %s: %v", p.Slug, err)
		fetchErr = err
	} else {
		if v, ok := ExtractVersion(text); ok {
			rv.Version = v
		}
		h := ParseHeader(text)
		rv.Name, rv.Author, rv.Homepage = h.Name, h.Author, h.PluginURI
	}

	readmeURL := utils.JoinURL(p.RawURL, p.Readme)
	if text, err := rc.FetchText(ctx, readmeURL); err != nil {
		logger.Debug("readme fetch failed for %s: %v", p.Slug, err)
		if fetchErr == nil {
			fetchErr = err
		}
	} else if v, ok := ExtractVersion(text); ok {
		rv.Version = utils.MaxVersion(rv.Version, v)
	}

	if p.UseTags {
		if tag, ok := r.latestTag(ctx, httpClient, p); ok && utils.IsNewerVersion(tag.Name, rv.Version) {
			rv.Version = tag.Name
			rv.Package = tag.ZipballURL
		}
	}

	if rv.Version == "" {
		if fetchErr != nil {
			return rv, fetchErr
		}
		return rv, errs.ParseError(p.Slug, fmt.Errorf("no version found at %s or %s", mainURL, readmeURL))
	}
	return rv, nil
}

func (r *Resolver) latestTag(ctx context.Context, httpClient *http.Client, p *models.ProjectConfig) (github.Tag, bool) {
	gh, err := github.New(p.APIURL, httpClient)
	if err != nil {
		logger.Debug("tags disabled for %s: %v", p.Slug, err)
		return github.Tag{}, false
	}
	tags, err := gh.Tags(ctx)
	if err != nil {
		logger.Debug("tag listing failed for %s: %v", p.Slug, err)
		return github.Tag{}, false
	}
	return github.LatestTag(tags)
}

// githubData is fetched at most once per Resolver and slug. A failed fetch
// yields empty fields and is not cached.
func (r *Resolver) githubData(ctx context.Context, httpClient *http.Client, p *models.ProjectConfig) *githubData {
	if v, ok := r.memo.Load(p.Slug); ok {
		return v.(*githubData)
	}

	gd, err := store.GetOrCompute(ctx, r.Store,
		store.TransientKey(p.Slug, store.SuffixGitHubData),
		r.Config.TransientTTL, r.Config.ForceRefresh,
		func(ctx context.Context) (githubData, error) {
			gh, err := github.New(p.APIURL, httpClient)
			if err != nil {
				return githubData{}, err
			}
			info, err := gh.RepoInfo(ctx)
			if err != nil {
				return githubData{}, err
			}
			out := githubData{Description: info.Description}
			if !info.UpdatedAt.IsZero() {
				out.UpdatedAt = info.UpdatedAt.UTC().Format(dateLayout)
			}
			return out, nil
		})
	if err != nil {
		logger.Debug("GitHub data unavailable for %s: %v", p.Slug, err)
		return &githubData{}
	}

	r.memo.Store(p.Slug, &gd)
	return &gd
}

func orElse(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
