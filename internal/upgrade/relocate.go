package upgrade

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MrSnakeDoc/plugup/internal/errs"
	"github.com/MrSnakeDoc/plugup/internal/logger"
	"github.com/MrSnakeDoc/plugup/internal/models"
	"github.com/MrSnakeDoc/plugup/internal/runner"
)

const (
	MsgReactivated    = "Plugin reactivated successfully."
	MsgNotReactivated = "The plugin has been updated, but could not be reactivated. Please reactivate it manually."
)

// Reactivator re-enables a plugin once its new files are in place.
type Reactivator interface {
	Reactivate(ctx context.Context, p *models.ProjectConfig) error
}

// Result of a relocation. State is ACTIVE or RELOCATED_INACTIVE; in the
// latter case Err holds the reactivation error.
type Result struct {
	State   models.State
	Path    string
	Message string
	Err     error
}

type Relocator struct {
	Reactivator Reactivator
}

// Relocate moves extracted into canonical, replacing what was there, then
// reactivates the plugin. The returned error is always a relocation error;
// a failed reactivation is reported through Result only.
func (r *Relocator) Relocate(ctx context.Context, extracted, canonical string, p *models.ProjectConfig) (*Result, error) {
	if err := r.swap(extracted, canonical); err != nil {
		return nil, errs.RelocationError(p.Slug, err)
	}
	logger.Debug("moved %s to %s", extracted, canonical)

	res := &Result{State: models.StateActive, Path: canonical, Message: MsgReactivated}
	if r.Reactivator == nil {
		return res, nil
	}

	if err := r.Reactivator.Reactivate(ctx, p); err != nil {
		res.State = models.StateRelocatedInactive
		res.Message = MsgNotReactivated
		res.Err = errs.ReactivationError(p.Slug, err)
	}
	return res, nil
}

func (r *Relocator) swap(extracted, canonical string) error {
	if _, err := os.Stat(extracted); err != nil {
		return fmt.Errorf("extracted package missing: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(canonical), 0o755); err != nil {
		return fmt.Errorf("create plugins dir: %w", err)
	}

	backup := canonical + ".old"
	if err := os.RemoveAll(backup); err != nil {
		return fmt.Errorf("remove stale backup: %w", err)
	}

	// 1. existing folder -> .old
	hadPrevious := true
	if err := os.Rename(canonical, backup); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("backup failed: %w", err)
		}
		hadPrevious = false
	}

	// 2. extracted folder -> canonical
	if err := os.Rename(extracted, canonical); err != nil {
		if hadPrevious {
			if rbErr := os.Rename(backup, canonical); rbErr != nil {
				logger.LogError("rollback of %s failed: %v", canonical, rbErr)
			}
		}
		return fmt.Errorf("install failed: %w", err)
	}

	// 3. drop the backup
	if hadPrevious {
		if err := os.RemoveAll(backup); err != nil {
			logger.Warn("Could not remove backup %s: %v", backup, err)
		}
	}
	return nil
}

// CommandReactivator runs the manifest's reactivate command. {slug} and
// {folder} in the template are replaced for each project. An empty template
// means there is nothing to reactivate.
type CommandReactivator struct {
	Runner   runner.CommandRunner
	Template []string
	Timeout  time.Duration
}

func (c *CommandReactivator) Reactivate(ctx context.Context, p *models.ProjectConfig) error {
	if len(c.Template) == 0 {
		logger.Debug("no reactivate command configured for %s", p.Slug)
		return nil
	}

	replacer := strings.NewReplacer("{slug}", p.Slug, "{folder}", p.ProperFolderName)
	argv := make([]string, len(c.Template))
	for i, a := range c.Template {
		argv[i] = replacer.Replace(a)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}

	out, err := c.Runner.Run(ctx, timeout, runner.Capture, argv[0], argv[1:]...)
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s: %w: %s", argv[0], err, msg)
		}
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	return nil
}
