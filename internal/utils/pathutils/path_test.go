package pathutils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHomeRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	short, err := ToHomePathFormat(filepath.Join(home, "plugup.yml"))
	require.NoError(t, err)
	assert.Equal(t, "~/plugup.yml", short)

	abs, err := ToAbsolutePath(short)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "plugup.yml"), abs)
}

func TestResolveFrom(t *testing.T) {
	base := t.TempDir()

	got, err := ResolveFrom(base, "wp-content/plugins")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "wp-content", "plugins"), got)

	got, err = ResolveFrom(base, "")
	require.NoError(t, err)
	assert.Equal(t, base, got)

	abs := filepath.Join(base, "abs")
	got, err = ResolveFrom("/elsewhere", abs)
	require.NoError(t, err)
	assert.Equal(t, abs, got)
}
