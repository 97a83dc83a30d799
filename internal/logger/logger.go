// Package logger provides verbose logging for the protokoll CLI.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr so users can follow chunking, retries and
// repair attempts. Errors are always printed.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

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

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing and for the TUI, which
// must keep stderr free while it owns the terminal.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func write(always bool, level, scope, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if !always && !verbose {
		return
	}
	if scope != "" {
		level += "[" + scope + "] "
	}
	fmt.Fprintf(output, level+format+"\n", args...)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	write(false, "[DEBUG] ", "", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	write(false, "[INFO] ", "", format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	write(false, "[WARN] ", "", format, args...)
}

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) {
	write(true, "[ERROR] ", "", format, args...)
}

// Scoped logs with a fixed component tag, e.g. "[INFO] [parser] ...".
type Scoped struct {
	scope string
}

// For returns a logger tagged with scope.
func For(scope string) Scoped {
	return Scoped{scope: scope}
}

// Debug prints a tagged message if verbose mode is enabled.
func (s Scoped) Debug(format string, args ...any) {
	write(false, "[DEBUG] ", s.scope, format, args...)
}

// Info prints a tagged message if verbose mode is enabled.
func (s Scoped) Info(format string, args ...any) {
	write(false, "[INFO] ", s.scope, format, args...)
}

// Warn prints a tagged warning if verbose mode is enabled.
func (s Scoped) Warn(format string, args ...any) {
	write(false, "[WARN] ", s.scope, format, args...)
}

// Error prints a tagged error regardless of verbose mode.
func (s Scoped) Error(format string, args ...any) {
	write(true, "[ERROR] ", s.scope, format, args...)
}
