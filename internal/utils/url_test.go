package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSecureURL(t *testing.T) {
	_, err := ParseSecureURL("http://example.com")
	assert.Error(t, err)

	u, err := ParseSecureURL("https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, "/a", u.Path)
}

func TestAddQueryArg(t *testing.T) {
	got, err := AddQueryArg("https://example.com/repo?per_page=100", "access_token", "abc")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/repo?access_token=abc&per_page=100", got)
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "https://raw.example.com/master/README.md", JoinURL("https://raw.example.com/master/", "README.md"))
	assert.Equal(t, "https://raw.example.com/master/plugin.php", JoinURL("https://raw.example.com/master", "/plugin.php"))
}
