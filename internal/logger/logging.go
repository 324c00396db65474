package logger

import (
	"io"
	"os"
	"strings"
)

var (
	FlagVerboseCount int  // -V, -VV
	FlagQuiet        bool // --quiet/-q
	FlagSilent       bool // --silent/-s
	FlagJSON         bool // --json, for CI
)

// ConfigureLoggerFromFlags maps the root persistent flags to logger options.
// PLUGUP_DEBUG=1 forces debug level regardless of flags.
func ConfigureLoggerFromFlags() {
	var w io.Writer = os.Stdout
	level := "info"

	switch {
	case FlagSilent:
		level = "error"
		w = io.Discard
	case FlagQuiet:
		level = "error"
	case FlagVerboseCount > 0:
		level = "debug"
	}

	if strings.TrimSpace(os.Getenv("PLUGUP_DEBUG")) == "1" {
		level = "debug"
	}

	Configure(Options{
		Level: level,
		JSON:  FlagJSON,
		Color: !FlagJSON,
		Out:   w,
	})
}
