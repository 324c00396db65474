package upgrade

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"hash/crc32"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/plugup/internal/config"
	"github.com/MrSnakeDoc/plugup/internal/errs"
	"github.com/MrSnakeDoc/plugup/internal/logger"
	"github.com/MrSnakeDoc/plugup/internal/models"
	"github.com/MrSnakeDoc/plugup/internal/runner"
	"github.com/MrSnakeDoc/plugup/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.UseTestMode()
	os.Exit(m.Run())
}

func widget() *models.ProjectConfig {
	return &models.ProjectConfig{
		Slug:             "widget/widget.php",
		ProperFolderName: "widget",
		APIURL:           "https://api.github.com/repos/acme/widget",
		RawURL:           "https://raw.github.com/acme/widget/master",
		GitHubURL:        "https://github.com/acme/widget",
		ZipURL:           "https://github.com/acme/widget/zipball/master",
		Requires:         "5.0",
		Tested:           "6.4",
		Readme:           "README.md",
	}
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func makeZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func activateRunner(fail bool) *runner.MockRunner {
	r := runner.NewMockRunner()
	if fail {
		r.AddResponse(runner.CmdKey("wp", "plugin", "activate", "widget/widget.php"),
			[]byte("Error: plugin not found"), errors.New("exit status 1"))
	}
	return r
}

func reactivator(r runner.CommandRunner) *CommandReactivator {
	return &CommandReactivator{Runner: r, Template: []string{"wp", "plugin", "activate", "{slug}"}}
}

func TestRelocate_ReplacesAndReactivates(t *testing.T) {
	dir := t.TempDir()
	canonical := filepath.Join(dir, "plugins", "widget")
	extracted := filepath.Join(dir, "tmp", "acme-widget-abc123")
	writeTree(t, canonical, map[string]string{"widget.php": "old", "stale.php": "x"})
	writeTree(t, extracted, map[string]string{"widget.php": "new"})

	r := activateRunner(false)
	res, err := (&Relocator{Reactivator: reactivator(r)}).Relocate(context.Background(), extracted, canonical, widget())
	require.NoError(t, err)

	assert.Equal(t, models.StateActive, res.State)
	assert.Equal(t, MsgReactivated, res.Message)
	assert.Equal(t, "new", readFile(t, filepath.Join(canonical, "widget.php")))
	assert.NoFileExists(t, filepath.Join(canonical, "stale.php"))
	assert.NoDirExists(t, canonical+".old")
	assert.NoDirExists(t, extracted)
	assert.True(t, r.VerifyCommand("wp", "plugin", "activate", "widget/widget.php"))
}

func TestRelocate_ReactivationFailureIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	canonical := filepath.Join(dir, "widget")
	extracted := filepath.Join(dir, "new")
	writeTree(t, extracted, map[string]string{"widget.php": "new"})

	res, err := (&Relocator{Reactivator: reactivator(activateRunner(true))}).
		Relocate(context.Background(), extracted, canonical, widget())
	require.NoError(t, err)

	assert.Equal(t, models.StateRelocatedInactive, res.State)
	assert.Equal(t, MsgNotReactivated, res.Message)
	assert.True(t, errs.Is(res.Err, errs.Reactivation))
	assert.Contains(t, res.Err.Error(), "plugin not found")
	assert.Equal(t, "new", readFile(t, filepath.Join(canonical, "widget.php")), "move is kept")
}

func TestRelocate_NoCommandMeansActive(t *testing.T) {
	dir := t.TempDir()
	extracted := filepath.Join(dir, "new")
	writeTree(t, extracted, map[string]string{"widget.php": "new"})

	r := runner.NewMockRunner()
	res, err := (&Relocator{Reactivator: &CommandReactivator{Runner: r}}).
		Relocate(context.Background(), extracted, filepath.Join(dir, "widget"), widget())
	require.NoError(t, err)
	assert.Equal(t, models.StateActive, res.State)
	assert.Empty(t, r.Commands)
}

func TestRelocate_FailureRollsBack(t *testing.T) {
	dir := t.TempDir()
	canonical := filepath.Join(dir, "widget")
	writeTree(t, canonical, map[string]string{"widget.php": "old"})

	r := runner.NewMockRunner()
	_, err := (&Relocator{Reactivator: reactivator(r)}).
		Relocate(context.Background(), filepath.Join(dir, "does-not-exist"), canonical, widget())
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.Relocation))
	assert.Equal(t, "old", readFile(t, filepath.Join(canonical, "widget.php")))
	assert.Empty(t, r.Commands, "no reactivation after a failed move")
}

func TestCommandReactivator_Placeholders(t *testing.T) {
	r := runner.NewMockRunner()
	c := &CommandReactivator{Runner: r, Template: []string{"activate", "--dir={folder}", "{slug}"}}
	require.NoError(t, c.Reactivate(context.Background(), widget()))
	assert.True(t, r.VerifyCommand("activate", "--dir=widget", "widget/widget.php"))
}

func TestUnzip_RejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "evil.zip")
	require.NoError(t, os.WriteFile(zipPath, makeZip(t, map[string]string{"../../evil.txt": "x"}), 0o644))

	err := Unzip(zipPath, filepath.Join(dir, "out"), 0)
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "evil.txt"))
}

func TestUnzip_EnforcesSizeLimit(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "big.zip")
	files := map[string]string{
		"widget/a.txt": strings.Repeat("a", 600),
		"widget/b.txt": strings.Repeat("b", 600),
	}
	require.NoError(t, os.WriteFile(zipPath, makeZip(t, files), 0o644))

	err := Unzip(zipPath, filepath.Join(dir, "small"), 1000)
	assert.ErrorIs(t, err, ErrArchiveTooLarge)

	require.NoError(t, Unzip(zipPath, filepath.Join(dir, "ok"), 1200))
	assert.Equal(t, files["widget/a.txt"], readFile(t, filepath.Join(dir, "ok", "widget", "a.txt")))
}

func TestUnzip_RejectsUnderstatedSize(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "lying.zip")

	// stored entry whose header claims 10 bytes for a 4096 byte body
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	body := strings.Repeat("z", 4096)
	w, err := zw.CreateRaw(&zip.FileHeader{
		Name:               "widget/widget.php",
		Method:             zip.Store,
		CRC32:              crc32.ChecksumIEEE([]byte(body)),
		CompressedSize64:   uint64(len(body)),
		UncompressedSize64: 10,
	})
	require.NoError(t, err)
	_, err = w.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(zipPath, buf.Bytes(), 0o644))

	err = Unzip(zipPath, filepath.Join(dir, "out"), 1024)
	require.Error(t, err)
}

func TestTopLevelDir(t *testing.T) {
	wrapped := t.TempDir()
	writeTree(t, wrapped, map[string]string{"acme-widget-abc/widget.php": "x", "__MACOSX/._x": "y"})
	got, err := TopLevelDir(wrapped)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wrapped, "acme-widget-abc"), got)

	flat := t.TempDir()
	writeTree(t, flat, map[string]string{"widget.php": "x"})
	got, err = TopLevelDir(flat)
	require.NoError(t, err)
	assert.Equal(t, flat, got)

	_, err = TopLevelDir(t.TempDir())
	assert.Error(t, err)
}

func TestInstaller_Execute(t *testing.T) {
	payload := makeZip(t, map[string]string{
		"acme-widget-abc123/widget.php": "<?php\n/*\nVersion: 2.0\n*/\n",
		"acme-widget-abc123/README.md":  "# Widget\n",
	})
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken.zip" {
			http.Error(w, "gone", http.StatusGone)
			return
		}
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	pluginsDir := t.TempDir()
	writeTree(t, pluginsDir, map[string]string{"widget/widget.php": "<?php\n/*\nVersion: 1.0\n*/\n"})

	w := *widget()
	other := *widget()
	other.Slug = "other/other.php"
	other.ProperFolderName = "other"

	ctx := context.Background()
	s := store.NewMemory(nil)
	require.NoError(t, s.Set(ctx, store.TransientKey(w.Slug, store.SuffixNewVersion), []byte(`{}`), time.Hour))

	r := activateRunner(false)
	forgotten := ""
	inst := New(nil, &models.Manifest{Projects: []models.ProjectConfig{other, w}}, pluginsDir, s,
		&Relocator{Reactivator: reactivator(r)})
	inst.ClientFor = func(*models.ProjectConfig) *http.Client { return srv.Client() }
	inst.Forget = func(slug string) { forgotten = slug }

	set := models.NewUpdateSet()
	set.Response[w.Slug] = models.UpdateDescriptor{Slug: "widget", NewVersion: "2.0", OldVersion: "1.0", Package: srv.URL + "/widget.zip"}
	set.Response[other.Slug] = models.UpdateDescriptor{Slug: "other", NewVersion: "3.0", Package: srv.URL + "/broken.zip"}

	reports := inst.Execute(ctx, set, nil)
	require.Len(t, reports, 2)

	assert.Equal(t, other.Slug, reports[0].Slug)
	assert.True(t, errs.Is(reports[0].Err, errs.Transport))

	assert.Equal(t, w.Slug, reports[1].Slug)
	require.NoError(t, reports[1].Err)
	assert.Equal(t, models.StateActive, reports[1].State)
	assert.Contains(t, readFile(t, filepath.Join(pluginsDir, "widget", "widget.php")), "Version: 2.0")
	assert.Equal(t, w.Slug, forgotten)

	_, ok, _ := s.Get(ctx, store.TransientKey(w.Slug, store.SuffixNewVersion))
	assert.False(t, ok, "transients are invalidated after an upgrade")

	entries, err := os.ReadDir(pluginsDir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".plugup-", "temp dirs are cleaned up")
	}
}

func TestInstaller_ExecuteOnlySelected(t *testing.T) {
	inst := New(&config.Config{}, &models.Manifest{Projects: []models.ProjectConfig{*widget()}}, t.TempDir(), store.NewMemory(nil), nil)
	set := models.NewUpdateSet()
	set.Response["widget/widget.php"] = models.UpdateDescriptor{Package: "https://example.invalid/x.zip"}

	assert.Empty(t, inst.Execute(context.Background(), set, []string{"someone/else.php"}))
	assert.Empty(t, inst.Execute(context.Background(), models.NewUpdateSet(), nil))
}
