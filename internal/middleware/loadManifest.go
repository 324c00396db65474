package middleware

import (
	"context"
	"io"

	"github.com/MrSnakeDoc/plugup/internal/globalconfig"
	"github.com/MrSnakeDoc/plugup/internal/logger"
	"github.com/MrSnakeDoc/plugup/internal/manifest"
	"github.com/MrSnakeDoc/plugup/internal/store"
	"github.com/MrSnakeDoc/plugup/internal/utils"
	"github.com/spf13/cobra"
)

// LoadManifest reads the projects file named by the persistent config.
// RequireConfig must run first.
func LoadManifest(cmd *cobra.Command, args []string, next func(cmd *cobra.Command, args []string) error) error {
	pconf, err := Get[*globalconfig.PersistentConfig](cmd, CtxKeyPConfig)
	if err != nil {
		return err
	}

	m, err := manifest.Load(pconf.ProjectsFile)
	if err != nil {
		return err
	}

	ctx := context.WithValue(cmd.Context(), CtxKeyManifest, m)
	cmd.SetContext(ctx)

	return next(cmd, args)
}

// OpenStore opens the transient store backend chosen in the config and
// closes it once the command has run, even when it fails. RequireConfig must run first.
func OpenStore(cmd *cobra.Command, args []string, next func(cmd *cobra.Command, args []string) error) error {
	pconf, err := Get[*globalconfig.PersistentConfig](cmd, CtxKeyPConfig)
	if err != nil {
		return err
	}

	dir := pconf.CacheDir
	if dir == "" {
		if dir, err = utils.StateDir(); err != nil {
			return err
		}
	}

	s, err := store.Open(pconf.CacheBackend, dir)
	if err != nil {
		return err
	}
	logger.Debug("transient store: %s in %s", pconf.CacheBackend, dir)

	ctx := context.WithValue(cmd.Context(), CtxKeyStore, s)
	cmd.SetContext(ctx)

	c, ok := s.(io.Closer)
	if !ok {
		return next(cmd, args)
	}
	if err := next(cmd, args); err != nil {
		utils.Close(c)
		return err
	}
	closeAfterRun(cmd, c)
	return nil
}

// closeAfterRun closes c once RunE returns, whether it failed or not.
// cobra skips PostRunE after a failing RunE.
func closeAfterRun(cmd *cobra.Command, c io.Closer) {
	run := cmd.RunE
	if run == nil {
		return
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		defer utils.Close(c)
		return run(cmd, args)
	}
}
