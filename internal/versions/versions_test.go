package versions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrSnakeDoc/plugup/internal/config"
	"github.com/MrSnakeDoc/plugup/internal/errs"
	"github.com/MrSnakeDoc/plugup/internal/logger"
	"github.com/MrSnakeDoc/plugup/internal/models"
	"github.com/MrSnakeDoc/plugup/internal/service"
	"github.com/MrSnakeDoc/plugup/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.UseTestMode()
	os.Exit(m.Run())
}

type fakeGitHub struct {
	srv       *httptest.Server
	mainFile  string
	readme    string
	tags      []map[string]string
	rawHits   atomic.Int32
	apiHits   atomic.Int32
	failRaw   bool
	lastQuery atomic.Value
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{
		mainFile: "<?php\n/*\nPlugin Name: Widget\nAuthor: Acme\nVersion: 1.2.0\n*/\n",
		readme:   "# Widget\n",
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/raw/acme/widget/master/", func(w http.ResponseWriter, r *http.Request) {
		f.rawHits.Add(1)
		f.lastQuery.Store(r.URL.RawQuery)
		if f.failRaw {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		switch filepath.Base(r.URL.Path) {
		case "widget.php":
			_, _ = w.Write([]byte(f.mainFile))
		case "README.md":
			_, _ = w.Write([]byte(f.readme))
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("/repos/acme/widget", func(w http.ResponseWriter, r *http.Request) {
		f.apiHits.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"description": "Widget plugin",
			"updated_at":  "2024-03-05T10:00:00Z",
		})
	})
	mux.HandleFunc("/repos/acme/widget/tags", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(f.tags)
	})
	f.srv = httptest.NewTLSServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeGitHub) project() models.ProjectConfig {
	return models.ProjectConfig{
		Slug:             "widget/widget.php",
		ProperFolderName: "widget",
		APIURL:           f.srv.URL + "/repos/acme/widget",
		RawURL:           f.srv.URL + "/raw/acme/widget/master",
		GitHubURL:        "https://github.com/acme/widget",
		ZipURL:           "https://github.com/acme/widget/zipball/master",
		Requires:         "5.0",
		Tested:           "6.4",
		Readme:           "README.md",
	}
}

func (f *fakeGitHub) resolver(s store.Store, conf config.Config) *Resolver {
	r := NewResolver(s, conf, "")
	r.ClientFor = func(p *models.ProjectConfig) *http.Client {
		return service.NewHTTPClient(service.ClientOptions{
			Timeout:     time.Second,
			AccessToken: p.AccessToken,
			Transport:   f.srv.Client().Transport,
		})
	}
	return r
}

func TestResolve_MainFileVersion(t *testing.T) {
	f := newFakeGitHub(t)
	r := f.resolver(nil, config.DefaultCheckerConfig())

	meta, err := r.Resolve(context.Background(), f.project())
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", meta.NewVersion)
	assert.Equal(t, "2024-03-05", meta.LastUpdated)
	assert.Equal(t, "Widget plugin", meta.Description)
	assert.Equal(t, "Widget", meta.PluginName)
	assert.Equal(t, "Acme", meta.Author)
	assert.Equal(t, "https://github.com/acme/widget/zipball/master", meta.PackageURL)
}

func TestResolve_ReadmeMarkerWinsWhenGreater(t *testing.T) {
	f := newFakeGitHub(t)
	f.readme = "~Current Version:1.10.0~\n"
	r := f.resolver(nil, config.DefaultCheckerConfig())

	meta, err := r.Resolve(context.Background(), f.project())
	require.NoError(t, err)
	assert.Equal(t, "1.10.0", meta.NewVersion)
}

func TestResolve_TagsWinWhenGreater(t *testing.T) {
	f := newFakeGitHub(t)
	f.tags = []map[string]string{
		{"name": "v2.0.0", "zipball_url": "https://api.github.com/repos/acme/widget/zipball/v2.0.0"},
		{"name": "1.0.0", "zipball_url": "https://api.github.com/repos/acme/widget/zipball/1.0.0"},
	}
	p := f.project()
	p.UseTags = true

	meta, err := f.resolver(nil, config.DefaultCheckerConfig()).Resolve(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "v2.0.0", meta.NewVersion)
	assert.Equal(t, "https://api.github.com/repos/acme/widget/zipball/v2.0.0", meta.PackageURL)
}

func TestResolve_ParseError(t *testing.T) {
	f := newFakeGitHub(t)
	f.mainFile = "<?php echo 1;"
	_, err := f.resolver(nil, config.DefaultCheckerConfig()).Resolve(context.Background(), f.project())
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.Parse))
}

func TestResolve_TransportError(t *testing.T) {
	f := newFakeGitHub(t)
	f.failRaw = true
	_, err := f.resolver(nil, config.DefaultCheckerConfig()).Resolve(context.Background(), f.project())
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.Transport))
}

func TestResolve_CachesWithinTTL(t *testing.T) {
	f := newFakeGitHub(t)
	s := store.NewMemory(nil)

	_, err := f.resolver(s, config.DefaultCheckerConfig()).Resolve(context.Background(), f.project())
	require.NoError(t, err)
	hits := f.rawHits.Load()

	// a fresh resolver has no memo, so this goes through the store
	meta, err := f.resolver(s, config.DefaultCheckerConfig()).Resolve(context.Background(), f.project())
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", meta.NewVersion)
	assert.Equal(t, "2024-03-05", meta.LastUpdated)
	assert.Equal(t, hits, f.rawHits.Load())
	assert.Equal(t, int32(1), f.apiHits.Load())

	forced := config.DefaultCheckerConfig()
	forced.ForceRefresh = true
	_, err = f.resolver(s, forced).Resolve(context.Background(), f.project())
	require.NoError(t, err)
	assert.Greater(t, f.rawHits.Load(), hits)
}

func TestResolve_MemoizesGitHubData(t *testing.T) {
	f := newFakeGitHub(t)
	forced := config.DefaultCheckerConfig()
	forced.ForceRefresh = true
	r := f.resolver(nil, forced)

	for i := 0; i < 3; i++ {
		_, err := r.Resolve(context.Background(), f.project())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), f.apiHits.Load())

	r.Forget("widget/widget.php")
	_, err := r.Resolve(context.Background(), f.project())
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.apiHits.Load())
}

func TestResolve_AccessTokenOnEveryRequest(t *testing.T) {
	f := newFakeGitHub(t)
	p := f.project()
	p.AccessToken = "tok"

	_, err := f.resolver(nil, config.DefaultCheckerConfig()).Resolve(context.Background(), p)
	require.NoError(t, err)
	assert.Contains(t, f.lastQuery.Load(), "access_token=tok")
}

func TestInstalledVersionAndLocalHeader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "widget"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "widget", "widget.php"),
		[]byte("<?php\n/*\nPlugin Name: Local Widget\nVersion: 1.1.0\n*/\n"), 0o644))

	r := NewResolver(nil, config.DefaultCheckerConfig(), dir)
	p := models.ProjectConfig{Slug: "widget/widget.php", Version: "0.1"}
	assert.Equal(t, "1.1.0", r.InstalledVersion(&p))

	h, ok := r.LocalHeader(&p)
	require.True(t, ok)
	assert.Equal(t, "Local Widget", h.Name)

	missing := models.ProjectConfig{Slug: "other/other.php", Version: "0.1"}
	assert.Equal(t, "0.1", r.InstalledVersion(&missing))
}
