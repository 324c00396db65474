package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.9", "1.10", -1},
		{"1.10", "2.0", -1},
		{"2.0", "1.10", 1},
		{"1.0", "1.0.0", 0},
		{"v1.2.3", "1.2.3", 0},
		{"1.2.3", "1.2.4", -1},
		{"0.9", "0.1", 1},
		{"1.0-beta", "1.0", -1},
		{"1.0-alpha", "1.0-beta", -1},
		{"10.0", "9.99.99", 1},
		{"1.6", "1.6.0.1", -1},
		{"1.99999999999999999999", "1.2", 1},
		{"2.0.20240101000000000000", "2.0.1", 1},
		{"1.000000000000000000000002", "1.2", 0},
		{"1.99999999999999999998", "1.99999999999999999999", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareVersions(tt.a, tt.b))
		})
	}
}

func TestIsNewerVersion(t *testing.T) {
	assert.True(t, IsNewerVersion("1.10", "1.9"))
	assert.False(t, IsNewerVersion("1.9", "1.9"))
	assert.False(t, IsNewerVersion("1.8", "1.9"))
	assert.True(t, IsNewerVersion("2.0.20240101000000000000", "2.0.1"))
}

func TestMaxVersion(t *testing.T) {
	assert.Equal(t, "1.10", MaxVersion("1.9", "1.10"))
	assert.Equal(t, "2.0", MaxVersion("2.0", "1.10"))
	assert.Equal(t, "0.9", MaxVersion("", "0.9"))
	assert.Equal(t, "0.9", MaxVersion("0.9", ""))
	assert.Equal(t, "", MaxVersion("", ""))
}

func TestIsVersionLike(t *testing.T) {
	assert.True(t, IsVersionLike("v1.0"))
	assert.True(t, IsVersionLike("2"))
	assert.False(t, IsVersionLike("master"))
	assert.False(t, IsVersionLike(""))
}
