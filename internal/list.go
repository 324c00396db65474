package internal

import (
	"strings"

	"github.com/MrSnakeDoc/plugup/internal/config"
	"github.com/MrSnakeDoc/plugup/internal/middleware"
	"github.com/MrSnakeDoc/plugup/internal/models"
	"github.com/MrSnakeDoc/plugup/internal/printer"
	"github.com/MrSnakeDoc/plugup/internal/utils"
	"github.com/MrSnakeDoc/plugup/internal/versions"

	"github.com/spf13/cobra"
)

type listRow struct {
	Slug      string   `json:"slug"`
	Folder    string   `json:"folder"`
	Installed string   `json:"installed"`
	Valid     bool     `json:"valid"`
	Missing   []string `json:"missing,omitempty"`
}

func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tracked projects and their installed version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := middleware.Get[*models.Manifest](cmd, middleware.CtxKeyManifest)
			if err != nil {
				return err
			}

			rows := listProjects(m)
			if jsonOutput() {
				return printJSON(rows)
			}

			p := printer.NewColorPrinter()
			table := utils.Map(rows, func(r listRow) []string {
				status := p.Success("ok")
				if !r.Valid {
					status = p.Error("missing %s", strings.Join(r.Missing, ", "))
				}
				return []string{r.Slug, utils.OrDash(r.Folder), utils.OrDash(r.Installed), status}
			})
			utils.RenderTable("Tracked projects in "+m.PluginsDir, []string{"Project", "Folder", "Installed", "Config"}, table)
			return nil
		},
	}
}

func listProjects(m *models.Manifest) []listRow {
	r := versions.NewResolver(nil, config.DefaultCheckerConfig(), m.PluginsDir)
	return utils.Map(m.Projects, func(p models.ProjectConfig) listRow {
		missing := config.MissingParams(&p)
		folder := p.ProperFolderName
		if folder == "" && p.Slug != "" {
			folder = config.DefaultFolderName(p.Slug)
		}
		return listRow{
			Slug:      p.Slug,
			Folder:    folder,
			Installed: r.InstalledVersion(&p),
			Valid:     len(missing) == 0,
			Missing:   missing,
		}
	})
}
