package internal

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/MrSnakeDoc/plugup/internal/logger"
	"github.com/MrSnakeDoc/plugup/internal/middleware"
	"github.com/MrSnakeDoc/plugup/internal/models"
	"github.com/MrSnakeDoc/plugup/internal/upgrade"
)

func TestMain(m *testing.M) {
	logger.UseTestMode()
	os.Exit(m.Run())
}

func TestUpgradeCmd_FlagValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{
			name: "No args without --all",
			args: []string{"upgrade"},
		},
		{
			name: "--all with specific projects",
			args: []string{"upgrade", "my-plugin/my-plugin.php", "--all"},
		},
	}

	root := NewRootCmd()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root.SetArgs(tt.args)
			_, err := root.ExecuteC()

			if err == nil {
				t.Fatalf("expected error, got nil")
			}

			if !strings.Contains(err.Error(), "already logged") {
				t.Errorf("expected sentinel error, got: %v", err)
			}
		})
	}
}

func TestInfoCmd_RequiresOneProject(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"info"})

	if _, err := root.ExecuteC(); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestUpgradeError(t *testing.T) {
	ok := []upgrade.Report{
		{Slug: "a", State: models.StateActive},
		{Slug: "b", State: models.StateRelocatedInactive, Err: errors.New("not reactivated")},
	}
	if err := upgradeError(ok); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}

	for _, state := range []models.State{models.StateIdle, models.StateDownloading, models.StateExtracted, models.StateRelocating} {
		failed := append(ok, upgrade.Report{Slug: "c", State: state, Err: errors.New("boom")})
		if err := upgradeError(failed); !errors.Is(err, middleware.ErrLogged) {
			t.Errorf("%s: expected sentinel error, got %v", state, err)
		}
	}
}
