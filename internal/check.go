package internal

import (
	"sort"
	"time"

	"github.com/MrSnakeDoc/plugup/internal/logger"
	"github.com/MrSnakeDoc/plugup/internal/models"
	"github.com/MrSnakeDoc/plugup/internal/notifier"
	"github.com/MrSnakeDoc/plugup/internal/printer"
	"github.com/MrSnakeDoc/plugup/internal/utils"

	"github.com/spf13/cobra"
)

type checkOutput struct {
	Checked  map[string]string                  `json:"checked"`
	Response map[string]models.UpdateDescriptor `json:"response"`
	Failed   map[string]string                  `json:"failed,omitempty"`
}

func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [projects...]",
		Short: "Check tracked projects for updates",
		Long: `Resolve the latest version of each tracked project on GitHub and compare it
with the installed copy. Results are cached for six hours; use --force to bypass the cache.

Examples:
  plugup check                              # Check every project in plugup.yml
  plugup check my-plugin/my-plugin.php      # Check one project
  plugup check --force                      # Ignore cached metadata`,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := newUpdater(cmd, args)
			if err != nil {
				return err
			}

			start := time.Now()
			set := models.NewUpdateSet()
			set.Checked = u.Checked()
			u.OnBeforeUpdateCheck(cmd.Context(), set)
			logger.Debug("update check finished in %s", since(start))

			if jsonOutput() {
				return printJSON(toCheckOutput(set))
			}

			utils.CreateStatusTable("Update check", statusRows(u.Manifest, set))
			notifier.DisplayUpdates(set)
			return nil
		},
	}

	cmd.Flags().BoolP("force", "f", false, "Bypass cached metadata")
	return cmd
}

func toCheckOutput(set *models.UpdateSet) checkOutput {
	out := checkOutput{Checked: set.Checked, Response: set.Response}
	for slug, o := range set.Outcomes {
		if o.Err == nil {
			continue
		}
		if out.Failed == nil {
			out.Failed = make(map[string]string)
		}
		out.Failed[slug] = o.Err.Error()
	}
	return out
}

// statusRows lists projects in manifest order; outcomes for slugs missing
// from the manifest are appended sorted.
func statusRows(m *models.Manifest, set *models.UpdateSet) []utils.ProjectStatus {
	p := printer.NewColorPrinter()
	seen := make(map[string]struct{}, len(set.Outcomes))
	rows := make([]utils.ProjectStatus, 0, len(set.Outcomes))

	add := func(slug string, o models.Outcome) {
		seen[slug] = struct{}{}
		rows = append(rows, utils.ProjectStatus{
			Project:   slug,
			Installed: o.Installed,
			Latest:    o.Latest,
			Status:    describeState(p, o),
		})
	}

	for _, proj := range m.Projects {
		if o, ok := set.Outcomes[proj.Slug]; ok {
			add(proj.Slug, o)
		}
	}

	rest := utils.Filter(utils.Keys(set.Outcomes), func(slug string) bool {
		_, ok := seen[slug]
		return !ok
	})
	sort.Strings(rest)
	for _, slug := range rest {
		add(slug, set.Outcomes[slug])
	}
	return rows
}

func describeState(p *printer.ColorPrinter, o models.Outcome) string {
	switch o.State {
	case models.StateUpdateAvailable:
		return p.Warning("update available")
	case models.StateUpToDate:
		return p.Success("up to date")
	case models.StateCheckFailed:
		return p.Muted("check failed")
	case models.StateIdle:
		if o.Err != nil {
			return p.Error("invalid config")
		}
	}
	return p.Muted(string(o.State))
}
