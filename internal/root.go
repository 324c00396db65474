package internal

import (
	"fmt"
	"os"
	"strings"

	"github.com/MrSnakeDoc/plugup/internal/checker"
	"github.com/MrSnakeDoc/plugup/internal/logger"
	"github.com/MrSnakeDoc/plugup/internal/printer"

	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugup",
		Short: "GitHub update resolver for self-hosted plugins",
		Long: `Plugup tracks plugins hosted on GitHub and hands them to your plugin host's update cycle.
It resolves the latest version from the repository, tells you what can be upgraded,
and installs the new release in place before reactivating it.`,
		Example: `plugup check
plugup upgrade --all`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if logger.FlagJSON {
				printer.DisableColors()
			}
			logger.ConfigureLoggerFromFlags()
		},
		Run: func(cmd *cobra.Command, _ []string) {
			versionFlag, _ := cmd.Flags().GetBool("version")
			if versionFlag {
				if logger.FlagVerboseCount > 0 {
					checker.PrintVersion()
					return
				}
				fmt.Printf("Version: %s\n", checker.Version)
				return
			}
			_ = cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().BoolP("version", "v", false, "Print version information")
	cmd.PersistentFlags().CountVarP(&logger.FlagVerboseCount, "verbose", "V", "Verbose output (-V, -VV)")
	cmd.PersistentFlags().BoolVarP(&logger.FlagQuiet, "quiet", "q", false, "Only print errors")
	cmd.PersistentFlags().BoolVarP(&logger.FlagSilent, "silent", "s", false, "Print nothing")
	cmd.PersistentFlags().BoolVar(&logger.FlagJSON, "json", false, "Machine readable output")

	RegisterSubCommands(cmd)

	return cmd
}

func Execute() error {
	root := NewRootCmd()

	if os.Getenv("COMP_LINE") != "" ||
		(len(os.Args) > 1 && strings.HasPrefix(os.Args[1], "__complete")) {
		return root.Execute()
	}

	if err := root.Execute(); err != nil {
		logger.Debug("Failed to execute root command: %v", err)
		return err
	}
	return nil
}
