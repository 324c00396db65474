package utils

import "github.com/MrSnakeDoc/plugup/internal/logger"

type ProjectStatus struct {
	Project   string
	Installed string
	Latest    string
	Status    string
}

func CreateStatusTable(title string, projects []ProjectStatus) {
	rows := Map(projects, func(p ProjectStatus) []string {
		return []string{p.Project, OrDash(p.Installed), OrDash(p.Latest), p.Status}
	})
	RenderTable(title, []string{"Project", "Installed", "Latest", "Status"}, rows)
}

func RenderTable(title string, headers []string, rows [][]string) {
	if title != "" {
		logger.Info("%s", title)
	}

	table := logger.CreateTable(headers)

	for _, row := range rows {
		if err := table.Append(row); err != nil {
			logger.LogError("Error appending to table: %v", err)
			return
		}
	}

	if err := table.Render(); err != nil {
		logger.LogError("Error rendering table: %v", err)
	}
}
