package manifest

import (
	"fmt"
	"path/filepath"

	"github.com/MrSnakeDoc/plugup/internal/errs"
	"github.com/MrSnakeDoc/plugup/internal/models"
	"github.com/MrSnakeDoc/plugup/internal/utils"
	"github.com/MrSnakeDoc/plugup/internal/utils/pathutils"
)

const (
	FileName          = "plugup.yml"
	DefaultPluginsDir = "wp-content/plugins"
)

// Template is written by "plugup init".
const Template = `# Directory holding the installed plugins, relative to this file.
plugins_dir: ` + DefaultPluginsDir + `

# Command run after an upgrade. {slug} and {folder} are replaced per project.
# Leave empty to skip reactivation.
reactivate: ["wp", "plugin", "activate", "{slug}"]

projects: []
#  - slug: my-plugin/my-plugin.php
#    api_url: https://api.github.com/repos/me/my-plugin
#    raw_url: https://raw.github.com/me/my-plugin/master
#    github_url: https://github.com/me/my-plugin
#    zip_url: https://github.com/me/my-plugin/zipball/master
#    requires: "6.0"
#    tested: "6.5"
#    readme: README.md
`

// Load reads a manifest. plugins_dir is made absolute relative to the
// manifest's own directory.
func Load(path string) (*models.Manifest, error) {
	var m models.Manifest
	if err := utils.FileReader(path, utils.FileTypeYAML, &m); err != nil {
		return nil, err
	}

	if m.PluginsDir == "" {
		m.PluginsDir = DefaultPluginsDir
	}
	dir, err := pathutils.ResolveFrom(filepath.Dir(path), m.PluginsDir)
	if err != nil {
		return nil, fmt.Errorf("invalid plugins_dir: %w", err)
	}
	m.PluginsDir = dir

	return &m, nil
}

// Select returns a copy of m restricted to names, in manifest order.
// Every name must match a project slug or folder.
func Select(m *models.Manifest, names []string) (*models.Manifest, error) {
	if len(names) == 0 {
		return m, nil
	}

	keep := make(map[string]struct{}, len(names))
	for _, name := range names {
		p, ok := m.Find(name)
		if !ok {
			return nil, fmt.Errorf("%s", errs.Msg(errs.UnknownProject, name))
		}
		keep[p.Slug] = struct{}{}
	}

	out := *m
	out.Projects = utils.Filter(m.Projects, func(p models.ProjectConfig) bool {
		_, ok := keep[p.Slug]
		return ok
	})
	return &out, nil
}
