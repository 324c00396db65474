package internal

import (
	"os"

	"github.com/MrSnakeDoc/plugup/internal/logger"
	"github.com/MrSnakeDoc/plugup/internal/middleware"
	"github.com/MrSnakeDoc/plugup/internal/prompter"
	"github.com/MrSnakeDoc/plugup/internal/store"

	"github.com/spf13/cobra"
)

func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached GitHub metadata",
	}

	// PreRunE is not inherited, so the store is opened on the leaf.
	withStore := middleware.UseMiddlewareChain(middleware.RequireConfig, middleware.OpenStore)
	cmd.AddCommand(withStore(newCacheClearCmd)())
	return cmd
}

func newCacheClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop every cached transient",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := middleware.Get[store.Store](cmd, middleware.CtxKeyStore)
			if err != nil {
				return err
			}

			yes, _ := cmd.Flags().GetBool("yes")
			var confirm prompter.Confirmer = prompter.Always(true)
			if !yes {
				confirm = prompter.New(cmd.InOrStdin(), os.Stderr)
			}
			ok, err := confirm.Confirm("Drop every cached version and repository detail?")
			if err != nil {
				return err
			}
			if !ok {
				logger.Info("Cache left untouched")
				return nil
			}

			if err := s.Clear(cmd.Context()); err != nil {
				return err
			}
			logger.Success("Cache cleared")
			return nil
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	return cmd
}
