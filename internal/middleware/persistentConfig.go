package middleware

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/plugup/internal/globalconfig"
	"github.com/spf13/cobra"
)

// RequireConfig loads the persistent config and the PLUGUP_* environment.
func RequireConfig(cmd *cobra.Command, args []string, next func(cmd *cobra.Command, args []string) error) error {
	pconf, err := globalconfig.LoadPersistentConfig()
	if err != nil {
		return fmt.Errorf("missing config: %w", err)
	}

	env, err := globalconfig.LoadEnv()
	if err != nil {
		return err
	}
	pconf.ApplyEnv(env)

	ctx := context.WithValue(cmd.Context(), CtxKeyPConfig, pconf)
	ctx = context.WithValue(ctx, CtxKeyEnv, env)
	cmd.SetContext(ctx)

	return next(cmd, args)
}
