package internal

import (
	"fmt"

	"github.com/MrSnakeDoc/plugup/internal/errs"
	"github.com/MrSnakeDoc/plugup/internal/logger"
	"github.com/MrSnakeDoc/plugup/internal/utils"

	"github.com/spf13/cobra"
)

func NewInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <project>",
		Short: "Show the plugin details of a tracked project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := newUpdater(cmd, nil)
			if err != nil {
				return err
			}

			info, ok, err := u.OnPluginInfo(cmd.Context(), args[0])
			if !ok {
				return fmt.Errorf("%s", errs.Msg(errs.UnknownProject, args[0]))
			}
			if err != nil {
				if info == nil {
					return err
				}
				logger.Warn("Could not resolve remote metadata: %v", err)
			}

			if jsonOutput() {
				return printJSON(info)
			}

			rows := [][]string{
				{"Name", utils.OrDash(info.PluginName)},
				{"Slug", info.Slug},
				{"Version", utils.OrDash(info.Version)},
				{"Author", utils.OrDash(info.Author)},
				{"Homepage", utils.OrDash(info.Homepage)},
				{"Requires", info.Requires},
				{"Tested up to", info.Tested},
				{"Last updated", utils.OrDash(info.LastUpdated)},
				{"Description", utils.OrDash(info.Sections["description"])},
				{"Download", info.DownloadLink},
			}
			utils.RenderTable("", []string{"Field", "Value"}, rows)
			return nil
		},
	}

	cmd.Flags().BoolP("force", "f", false, "Bypass cached metadata")
	return cmd
}
