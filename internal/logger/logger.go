// Package logger is lectern's diagnostic output. Nothing is printed unless
// --verbose is set; then messages go to stderr as "[LEVEL] message".
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	base              = newZap(os.Stderr)
)

// newZap builds a console logger that prints "[LEVEL] message key=value".
func newZap(w io.Writer) *zap.Logger {
	encoderCfg := zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         "level",
		NameKey:          "logger",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      bracketLevelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: " ",
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(w),
		zapcore.DebugLevel,
	)
	return zap.New(core)
}

func bracketLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + l.CapitalString() + "]")
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects verbose logs, which default to stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	base = newZap(w)
}

// L is for structured fields. It discards everything unless verbose.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose {
		return zap.NewNop()
	}
	return base
}

// Debug logs a formatted message at debug level. Verbose mode only.
func Debug(format string, args ...any) { logf(zapcore.DebugLevel, format, args...) }

// Info logs a formatted message at info level. Verbose mode only.
func Info(format string, args ...any) { logf(zapcore.InfoLevel, format, args...) }

// Warn logs a formatted message at warn level. Verbose mode only.
func Warn(format string, args ...any) { logf(zapcore.WarnLevel, format, args...) }

func logf(level zapcore.Level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose {
		return
	}
	if ce := base.Check(level, fmt.Sprintf(format, args...)); ce != nil {
		ce.Write()
	}
}

// Section prints a "=== name ===" banner in verbose mode.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		_, _ = io.WriteString(output, "\n=== "+name+" ===\n")
	}
}

// Sync flushes buffered log entries.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = base.Sync()
}
