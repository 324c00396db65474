package internal

import (
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/MrSnakeDoc/plugup/internal/config"
	"github.com/MrSnakeDoc/plugup/internal/globalconfig"
	"github.com/MrSnakeDoc/plugup/internal/logger"
	"github.com/MrSnakeDoc/plugup/internal/manifest"
	"github.com/MrSnakeDoc/plugup/internal/middleware"
	"github.com/MrSnakeDoc/plugup/internal/models"
	"github.com/MrSnakeDoc/plugup/internal/runner"
	"github.com/MrSnakeDoc/plugup/internal/store"
	"github.com/MrSnakeDoc/plugup/internal/updater"
	"github.com/spf13/cobra"
)

var withProjects = middleware.UseMiddlewareChain(
	middleware.RequireConfig, middleware.LoadManifest, middleware.OpenStore,
)

var defaultCommands = []middleware.CommandFactory{
	NewInitCmd,
	middleware.UseMiddlewareChain(middleware.RequireConfig, middleware.LoadManifest)(NewListCmd),
	withProjects(NewCheckCmd),
	withProjects(NewInfoCmd),
	withProjects(NewUpgradeCmd),
	NewCacheCmd,
}

func RegisterSubCommands(cmd *cobra.Command) {
	for _, factory := range defaultCommands {
		cmd.AddCommand(factory())
	}
}

// newUpdater wires an Updater from what the middlewares put in the context,
// restricted to the named projects when any.
func newUpdater(cmd *cobra.Command, names []string) (*updater.Updater, error) {
	m, err := middleware.Get[*models.Manifest](cmd, middleware.CtxKeyManifest)
	if err != nil {
		return nil, err
	}
	s, err := middleware.Get[store.Store](cmd, middleware.CtxKeyStore)
	if err != nil {
		return nil, err
	}
	env, err := middleware.Get[globalconfig.Env](cmd, middleware.CtxKeyEnv)
	if err != nil {
		return nil, err
	}
	pconf, err := middleware.Get[*globalconfig.PersistentConfig](cmd, middleware.CtxKeyPConfig)
	if err != nil {
		return nil, err
	}

	m, err = manifest.Select(m, names)
	if err != nil {
		return nil, err
	}

	force, _ := cmd.Flags().GetBool("force")
	checkConf := config.DefaultCheckerConfig().WithOverrides(env.HTTPTimeout, env.TransientTTL, env.ForceUpdate || force)
	upgradeConf := config.DefaultUpgradeConfig().WithOverrides(0, env.TransientTTL, env.ForceUpdate || force)

	// reactivation runs next to plugup.yml, normally the host root
	hostRoot := filepath.Dir(pconf.ProjectsFile)

	u := updater.New(m, s, updater.Options{
		Config:        checkConf,
		UpgradeConfig: upgradeConf,
		Runner:        runner.ExecRunner{Dir: hostRoot},
	})
	u.Checker.OnState = func(slug string, state models.State) {
		logger.Debug("%s: %s", slug, state)
	}
	return u, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(logger.Out())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func since(start time.Time) string {
	return time.Since(start).Round(time.Millisecond).String()
}

func jsonOutput() bool {
	return logger.FlagJSON
}
