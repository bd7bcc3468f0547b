// Package logx wraps log/slog with the component-tagged helpers used
// throughout the daemon, in the style of the USB stack's own pkg.Log*
// helpers: a swappable default logger plus short Debug/Info/Warn/Error
// functions that tag every record with the emitting subsystem.
package logx

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

// Component identifies a daemon subsystem for log filtering.
type Component string

// Daemon component identifiers.
const (
	ComponentDaemon Component = "daemon"
	ComponentModel  Component = "model"
	ComponentInterp Component = "interp"
	ComponentNode   Component = "node"
	ComponentQueue  Component = "queue"
	ComponentHAL    Component = "hal"
	ComponentInput  Component = "input"
	ComponentFIFO   Component = "fifo"
)

// Format selects the log output encoding.
type Format int

// Supported log formats.
const (
	FormatText Format = iota
	FormatJSON
)

var (
	logger *slog.Logger
	level  = new(slog.LevelVar)
	mu     sync.RWMutex
)

func init() {
	level.Set(slog.LevelInfo)
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// SetLevel sets the minimum level for the default logger.
func SetLevel(l slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	level.Set(l)
}

// SetFormat reconfigures the default logger's encoding, writing to stderr
// at the current level.
func SetFormat(f Format) {
	mu.Lock()
	defer mu.Unlock()
	opts := &slog.HandlerOptions{Level: level}
	switch f {
	case FormatJSON:
		logger = slog.New(slog.NewJSONHandler(os.Stderr, opts))
	default:
		logger = slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
}

// SetOutput redirects the default logger to w using a text handler,
// whatever format was set before. Intended for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Debug logs a debug-level record tagged with component.
func Debug(component Component, msg string, args ...any) {
	get().Debug(msg, append([]any{"component", string(component)}, args...)...)
}

// Info logs an info-level record tagged with component.
func Info(component Component, msg string, args ...any) {
	get().Info(msg, append([]any{"component", string(component)}, args...)...)
}

// Warn logs a warning-level record tagged with component.
func Warn(component Component, msg string, args ...any) {
	get().Warn(msg, append([]any{"component", string(component)}, args...)...)
}

// Error logs an error-level record tagged with component.
func Error(component Component, msg string, args ...any) {
	get().Error(msg, append([]any{"component", string(component)}, args...)...)
}
