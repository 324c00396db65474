package internal

import (
	"github.com/MrSnakeDoc/plugup/internal/errs"
	"github.com/MrSnakeDoc/plugup/internal/logger"
	"github.com/MrSnakeDoc/plugup/internal/middleware"
	"github.com/MrSnakeDoc/plugup/internal/upgrade"
	"github.com/MrSnakeDoc/plugup/internal/utils"

	"github.com/spf13/cobra"
)

type upgradeOutput struct {
	Slug    string `json:"slug"`
	From    string `json:"from,omitempty"`
	To      string `json:"to"`
	State   string `json:"state"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func NewUpgradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upgrade [projects...]",
		Short: "Install available updates",
		Long: `Download the new release of tracked projects, move it into the plugins
directory and reactivate it.

Examples:
  plugup upgrade --all                        # Upgrade every project with an update
  plugup upgrade my-plugin/my-plugin.php      # Upgrade one project`,
		Args: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			switch {
			case all && len(args) > 0:
				return middleware.FlagComboError(errs.AllWithNamedProjects, "Upgrade", "upgrade")
			case !all && len(args) == 0:
				return middleware.FlagComboError(errs.ProvideSlugsOrAll, "Upgrade", "upgrade")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := newUpdater(cmd, args)
			if err != nil {
				return err
			}

			set, reports := u.Upgrade(cmd.Context(), nil)
			if len(set.Response) == 0 && !jsonOutput() {
				logger.Info("Everything is up to date")
				return nil
			}

			if jsonOutput() {
				return printJSON(utils.Map(reports, toUpgradeOutput))
			}
			return upgradeError(reports)
		},
	}

	cmd.Flags().BoolP("all", "a", false, "Upgrade every tracked project")
	cmd.Flags().BoolP("force", "f", false, "Bypass cached metadata")
	return cmd
}

func toUpgradeOutput(r upgrade.Report) upgradeOutput {
	out := upgradeOutput{Slug: r.Slug, From: r.From, To: r.To, State: string(r.State)}
	if r.Result != nil {
		out.Message = r.Result.Message
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return out
}

// upgradeError fails the command when an install stopped before a terminal
// state. A failed reactivation is terminal and was reported as a warning.
func upgradeError(reports []upgrade.Report) error {
	failed := utils.Filter(reports, func(r upgrade.Report) bool {
		return !r.State.Terminal()
	})
	if len(failed) == 0 {
		return nil
	}
	return middleware.ErrLogged
}
