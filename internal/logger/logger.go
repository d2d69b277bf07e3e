// Package logger writes run progress for the quire CLI to stderr.
// Debug, Info and Section lines appear only with --verbose; warnings
// always appear.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Level orders log lines by severity.
type Level int

// Levels.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
)

var prefixes = [...]string{
	LevelDebug: "[DEBUG] ",
	LevelInfo:  "[INFO] ",
	LevelWarn:  "[WARN] ",
}

var (
	mu      sync.Mutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether verbose logging is enabled.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// SetOutput redirects log output, e.g. to a buffer in tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Enabled reports whether a line at level would be written.
func Enabled(level Level) bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled(level)
}

func enabled(level Level) bool {
	return verbose || level >= LevelWarn
}

func logf(level Level, format string, args []any) {
	mu.Lock()
	defer mu.Unlock()
	if !enabled(level) {
		return
	}
	fmt.Fprintf(output, prefixes[level]+format+"\n", args...)
}

// Debug logs detail useful when diagnosing a run.
func Debug(format string, args ...any) { logf(LevelDebug, format, args) }

// Info logs run progress.
func Info(format string, args ...any) { logf(LevelInfo, format, args) }

// Warn logs a problem the run recovered from, such as a skipped item.
func Warn(format string, args ...any) { logf(LevelWarn, format, args) }

// Section starts a phase such as "Enumerating".
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if enabled(LevelInfo) {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}
