package logger

import (
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/MrSnakeDoc/plugup/internal/printer"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Level string    // "debug","info","warn","error"
	JSON  bool      // JSON output (CI)
	Color bool      // colorize (console)
	Out   io.Writer // default os.Stdout
}

var (
	mu       sync.RWMutex
	zlog     *zap.SugaredLogger
	out      io.Writer = os.Stdout
	p        *printer.ColorPrinter
	curLevel = zapcore.InfoLevel
	jsonMode bool
	ready    atomic.Bool
)

func init() {
	Configure(Options{Level: "info", Color: true})
}

// Configure sets up the global logger.
func Configure(opts Options) {
	mu.Lock()
	defer mu.Unlock()
	configureLocked(opts)
}

func configureLocked(opts Options) {
	if opts.Out != nil {
		out = opts.Out
	}

	var enc zapcore.Encoder
	if opts.JSON {
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.CallerKey = ""
		encCfg.MessageKey = "msg"
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(zapcore.EncoderConfig{MessageKey: "msg"})
	}

	if !opts.Color || opts.JSON {
		printer.DisableColors()
	}
	jsonMode = opts.JSON

	curLevel = parseLevel(opts.Level)
	core := zapcore.NewCore(enc, zapcore.AddSync(writerAdapter{out}), curLevel)
	zlog = zap.New(core).Sugar()

	if p == nil {
		p = printer.NewColorPrinter()
	}

	ready.Store(true)
}

// SetLevel adjusts current level at runtime ("debug","info","warn","error").
func SetLevel(level string) {
	mu.Lock()
	defer mu.Unlock()
	configureLocked(Options{Level: level, JSON: jsonMode, Color: !jsonMode})
}

// SetOutput replaces the logger writer (use io.Discard in tests).
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stdout
	}
	configureLocked(Options{Level: curLevel.String(), JSON: jsonMode, Color: !jsonMode, Out: w})
}

// UseTestMode silences logs during tests.
func UseTestMode() {
	Configure(Options{
		Level: "error",
		Out:   io.Discard,
	})
}

// Out returns the current output writer (for tables).
func Out() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return out
}

// IsDebug reports whether debug messages are currently emitted.
func IsDebug() bool {
	mu.RLock()
	defer mu.RUnlock()
	return curLevel <= zapcore.DebugLevel
}

func Info(msg string, args ...interface{}) {
	if !ready.Load() {
		return
	}
	mu.RLock()
	defer mu.RUnlock()
	zlog.Info(p.Info("✨ "+msg, args...))
}

func Success(msg string, args ...interface{}) {
	if !ready.Load() {
		return
	}
	mu.RLock()
	defer mu.RUnlock()
	zlog.Info(p.Success("✅ "+msg, args...))
}

func LogError(msg string, args ...interface{}) {
	if !ready.Load() {
		return
	}
	mu.RLock()
	defer mu.RUnlock()
	zlog.Error(p.Error("❌ "+msg, args...))
}

func Warn(msg string, args ...interface{}) {
	if !ready.Load() {
		return
	}
	mu.RLock()
	defer mu.RUnlock()
	zlog.Warn(p.Warning("⚠️ "+msg, args...))
}

func Debug(msg string, args ...interface{}) {
	if !ready.Load() {
		return
	}
	mu.RLock()
	defer mu.RUnlock()
	zlog.Debug(p.Debug("🛠️ "+msg, args...))
}

// ---- Tables ----

func CreateTable(headers []string) *tablewriter.Table {
	mu.RLock()
	defer mu.RUnlock()
	t := tablewriter.NewTable(out)
	t.Header(headers)
	return t
}

// ---- internals ----

type writerAdapter struct{ w io.Writer }

func (wa writerAdapter) Write(p []byte) (int, error) { return wa.w.Write(p) }

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
