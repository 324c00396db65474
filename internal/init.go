package internal

import (
	"github.com/MrSnakeDoc/plugup/internal/globalconfig"
	"github.com/MrSnakeDoc/plugup/internal/initiator"
	"github.com/MrSnakeDoc/plugup/internal/logger"

	"github.com/spf13/cobra"
)

func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize plugup in the current directory",
		Long: `Initialize plugup configuration.
This command will:
- Create plugup.yml in the current directory
- Create the configuration directory in ~/.config/plugup
- Save the projects file path in the global configuration`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			backend, _ := cmd.Flags().GetString("cache")

			ini := initiator.New("")
			ini.CacheBackend = backend
			if err := ini.Execute(); err != nil {
				return err
			}

			logger.Success("Initialized plugup in current directory")
			return nil
		},
	}

	cmd.Flags().String("cache", globalconfig.BackendFile, "Transient store backend: file, sqlite or memory")
	return cmd
}
