package versions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const mainFile = `<?php
/*
Plugin Name: WP GitHub Updater Example
Plugin URI: https://github.com/jkudish/WordPress-GitHub-Plugin-Updater
Description: Semi-automated test for the GitHub Plugin Updater
Version: 1.4
Author: Joachim Kudish
*/
`

func TestExtractVersion(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  string
		found bool
	}{
		{"header", "Version: 1.2.3\n", "1.2.3", true},
		{"header in block", mainFile, "1.4", true},
		{"header with CRLF", "Version: 2.0\r\nAuthor: x\r\n", "2.0", true},
		{"readme marker", "# Plugin\n~Current Version:1.5~\n", "1.5", true},
		{"backticked marker", "`~Current Version:1.6~`\n", "1.6", true},
		{"both keeps greater", "Version: 1.2\n~Current Version:1.10~\n", "1.10", true},
		{"both header greater", "Version: 2.0\n~Current Version:1.9~\n", "2.0", true},
		{"none", "# Just a readme\nnothing here\n", "", false},
		{"empty value", "Version:\n", "", false},
		{"empty value does not read next line", "Version:\nAuthor: Joe\n", "", false},
		{"marker does not span lines", "~Current Version:\n1.0~\n", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractVersion(tt.text)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseHeader(t *testing.T) {
	h := ParseHeader(mainFile)
	assert.Equal(t, "WP GitHub Updater Example", h.Name)
	assert.Equal(t, "1.4", h.Version)
	assert.Equal(t, "Joachim Kudish", h.Author)
	assert.Equal(t, "https://github.com/jkudish/WordPress-GitHub-Plugin-Updater", h.PluginURI)
	assert.Equal(t, "Semi-automated test for the GitHub Plugin Updater", h.Description)

	assert.Equal(t, PluginHeader{}, ParseHeader("no header here"))
}

func TestParseHeader_StarPrefixed(t *testing.T) {
	h := ParseHeader("<?php\n/**\n * Plugin Name: Starred\n * Version: 0.9 */\n")
	assert.Equal(t, "Starred", h.Name)
	assert.Equal(t, "0.9", h.Version)
}
