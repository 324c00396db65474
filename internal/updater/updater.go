// Package updater is what a host calls into: one method per integration
// point of the update cycle.
package updater

import (
	"context"
	"net/http"

	"github.com/MrSnakeDoc/plugup/internal/checker"
	"github.com/MrSnakeDoc/plugup/internal/config"
	"github.com/MrSnakeDoc/plugup/internal/models"
	"github.com/MrSnakeDoc/plugup/internal/runner"
	"github.com/MrSnakeDoc/plugup/internal/store"
	"github.com/MrSnakeDoc/plugup/internal/upgrade"
	"github.com/MrSnakeDoc/plugup/internal/versions"
)

type Updater struct {
	Manifest  *models.Manifest
	Store     store.Store
	Resolver  *versions.Resolver
	Checker   *checker.CheckerController
	Installer *upgrade.Installer
}

type Options struct {
	Config        config.Config
	UpgradeConfig config.Config
	Runner        runner.CommandRunner
	// ClientFor overrides the HTTP client of every request, mostly for tests.
	ClientFor func(p *models.ProjectConfig) *http.Client
}

func New(manifest *models.Manifest, s store.Store, opts Options) *Updater {
	if s == nil {
		s = store.NewMemory(nil)
	}
	if opts.Runner == nil {
		opts.Runner = runner.ExecRunner{}
	}
	if opts.Config == (config.Config{}) {
		opts.Config = config.DefaultCheckerConfig()
	}
	if opts.UpgradeConfig == (config.Config{}) {
		opts.UpgradeConfig = config.DefaultUpgradeConfig()
	}

	resolver := versions.NewResolver(s, opts.Config, manifest.PluginsDir)
	resolver.ClientFor = opts.ClientFor

	chk := checker.New(&opts.Config, manifest, resolver)

	relocator := &upgrade.Relocator{Reactivator: &upgrade.CommandReactivator{
		Runner:   opts.Runner,
		Template: manifest.Reactivate,
	}}
	inst := upgrade.New(&opts.UpgradeConfig, manifest, manifest.PluginsDir, s, relocator)
	inst.ClientFor = opts.ClientFor
	inst.Forget = resolver.Forget

	return &Updater{
		Manifest:  manifest,
		Store:     s,
		Resolver:  resolver,
		Checker:   chk,
		Installer: inst,
	}
}

// Checked returns the installed version of every valid project.
func (u *Updater) Checked() map[string]string {
	return u.Checker.InstalledVersions()
}

// OnBeforeUpdateCheck adds the available updates to set.
func (u *Updater) OnBeforeUpdateCheck(ctx context.Context, set *models.UpdateSet) *models.UpdateSet {
	return u.Checker.Execute(ctx, set)
}

// OnPluginInfo answers a plugin details request. ok is false for slugs that
// are not tracked here.
func (u *Updater) OnPluginInfo(ctx context.Context, slug string) (*models.PluginInfo, bool, error) {
	return u.Checker.PluginInfo(ctx, slug)
}

// OnPackageExtracted relocates an extracted package of a tracked project.
// ok is false when slug is not tracked.
func (u *Updater) OnPackageExtracted(ctx context.Context, slug, extractDir string) (*upgrade.Result, bool, error) {
	raw, found := u.Manifest.Find(slug)
	if !found {
		return nil, false, nil
	}
	p, err := config.NormalizeProject(*raw)
	if err != nil {
		return nil, true, err
	}
	res, err := u.Installer.OnPackageExtracted(ctx, &p, extractDir)
	return res, true, err
}

// Upgrade checks then installs. only restricts the run to the given slugs.
func (u *Updater) Upgrade(ctx context.Context, only []string) (*models.UpdateSet, []upgrade.Report) {
	set := models.NewUpdateSet()
	set.Checked = u.Checked()
	u.OnBeforeUpdateCheck(ctx, set)
	return set, u.Installer.Execute(ctx, set, only)
}
