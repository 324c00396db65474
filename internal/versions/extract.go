package versions

import (
	"regexp"
	"strings"

	"github.com/MrSnakeDoc/plugup/internal/utils"
)

var (
	headerVersionRe = regexp.MustCompile(`(?mi)^.*Version:[ \t]*(.*)$`)
	readmeMarkerRe  = regexp.MustCompile("(?mi)^[ \\t]*`*~Current Version:[ \\t]*([^~\\n]*)~")
)

// ExtractVersion finds a version in a plugin main file or readme. The
// "Version:" header line is tried first, then the legacy
// "~Current Version:x~" readme marker. When both are present the greater
// one wins.
func ExtractVersion(text string) (string, bool) {
	// a marker line also matches the header pattern; drop its decoration
	header := strings.TrimRight(firstMatch(headerVersionRe, text), "~` ")
	marker := firstMatch(readmeMarkerRe, text)

	v := utils.MaxVersion(header, marker)
	return v, v != ""
}

func firstMatch(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// PluginHeader holds the fields of a plugin file header block.
type PluginHeader struct {
	Name        string
	Version     string
	Author      string
	PluginURI   string
	Description string
}

var headerFields = map[string]*regexp.Regexp{
	"Plugin Name": headerFieldRe("Plugin Name"),
	"Version":     headerFieldRe("Version"),
	"Author":      headerFieldRe("Author"),
	"Plugin URI":  headerFieldRe("Plugin URI"),
	"Description": headerFieldRe("Description"),
}

func headerFieldRe(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?mi)^[ \t/*#@]*` + regexp.QuoteMeta(name) + `:(.*)$`)
}

// ParseHeader reads the header comment of a plugin main file. Missing
// fields are left empty.
func ParseHeader(text string) PluginHeader {
	// headers live in the first 8 KiB
	if len(text) > 8192 {
		text = text[:8192]
	}
	field := func(name string) string {
		v := firstMatch(headerFields[name], text)
		return strings.TrimSpace(strings.TrimSuffix(v, "*/"))
	}
	return PluginHeader{
		Name:        field("Plugin Name"),
		Version:     field("Version"),
		Author:      field("Author"),
		PluginURI:   field("Plugin URI"),
		Description: field("Description"),
	}
}
