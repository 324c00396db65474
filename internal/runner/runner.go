package runner

import (
	"context"
	"os"
	"os/exec"
	"time"
)

type Mode int

const (
	Capture Mode = iota
	Stream
)

type CommandRunner interface {
	Run(ctx context.Context, timeout time.Duration, mode Mode,
		name string, args ...string) ([]byte, error)
}

// ExecRunner runs real processes. Dir, when set, is the working directory
// of every command (the host install root for wp-cli style tools).
type ExecRunner struct {
	Dir string
}

func (r ExecRunner) Run(
	parent context.Context,
	timeout time.Duration,
	mode Mode,
	name string,
	args ...string,
) ([]byte, error) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir

	switch mode {
	case Stream:
		cmd.Stdout, cmd.Stderr, cmd.Stdin = os.Stdout, os.Stderr, os.Stdin
		return nil, cmd.Run()
	default:
		out, err := cmd.CombinedOutput()
		return out, err
	}
}
