// Package logging provides the leveled console logger used by the CLI.
//
// Lines look like "2026-01-02 15:04:05 [INFO] message". Level tags are
// coloured when the destination is a terminal (or colour is forced), and an
// optional log file receives the same lines without colour.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Level orders messages by severity.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[string]Level{
	"trace": LevelTrace,
	"debug": LevelDebug,
	"info":  LevelInfo,
	"warn":  LevelWarn,
	"error": LevelError,
}

// ParseLevel converts a level name (case-insensitive) to a Level.
func ParseLevel(s string) (Level, bool) {
	l, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]
	return l, ok
}

// normalizeLevel falls back to info for empty or unknown names.
func normalizeLevel(s string) Level {
	if l, ok := ParseLevel(s); ok {
		return l
	}
	return LevelInfo
}

// ColorMode controls ANSI colour output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // colour when the writer is a terminal
	ColorAlways ColorMode = "always" // force colour on
	ColorNever  ColorMode = "never"  // disable colour
)

// Options configures New.
type Options struct {
	Level   string
	Color   ColorMode
	LogFile string

	// Stdout receives everything below error; Stderr receives errors.
	// Both default to the process streams.
	Stdout io.Writer
	Stderr io.Writer
}

// Logger writes leveled, optionally coloured lines. It is safe for
// concurrent use.
type Logger struct {
	mu     sync.Mutex
	stdout io.Writer
	stderr io.Writer
	file   *os.File
	level  Level
	color  bool
	now    func() time.Time
	tags   map[string]*color.Color
}

// New builds a Logger from opts. Call Close when a log file was requested.
func New(opts Options) (*Logger, error) {
	l := &Logger{
		stdout: opts.Stdout,
		stderr: opts.Stderr,
		level:  normalizeLevel(opts.Level),
		now:    time.Now,
	}
	if l.stdout == nil {
		l.stdout = os.Stdout
	}
	if l.stderr == nil {
		l.stderr = os.Stderr
	}

	switch opts.Color {
	case ColorAlways:
		l.color = true
	case ColorNever:
		l.color = false
	default:
		l.color = isTerminal(l.stdout) && os.Getenv("NO_COLOR") == "" &&
			strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
	l.tags = map[string]*color.Color{
		"TRACE":   color.New(color.FgHiBlack),
		"DEBUG":   color.New(color.FgCyan),
		"INFO":    color.New(color.FgBlue),
		"SUCCESS": color.New(color.FgGreen, color.Bold),
		"WARN":    color.New(color.FgYellow),
		"ERROR":   color.New(color.FgRed, color.Bold),
	}
	for _, c := range l.tags {
		if l.color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	if opts.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(opts.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
	}
	return l, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Enabled reports whether messages at level are written.
func (l *Logger) Enabled(level Level) bool {
	return level >= l.level
}

func (l *Logger) line(level Level, tag, text string) {
	if !l.Enabled(level) {
		return
	}
	ts := l.now().Format("2006-01-02 15:04:05")

	l.mu.Lock()
	defer l.mu.Unlock()

	out := l.stdout
	if level == LevelError {
		out = l.stderr
	}
	_, _ = io.WriteString(out, ts+" ["+l.tags[tag].Sprint(tag)+"] "+text+"\n")
	if l.file != nil {
		_, _ = io.WriteString(l.file, ts+" ["+tag+"] "+text+"\n")
	}
}

// Trace logs at TRACE level.
func (l *Logger) Trace(format string, args ...any) {
	l.line(LevelTrace, "TRACE", fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level.
func (l *Logger) Debug(format string, args ...any) {
	l.line(LevelDebug, "DEBUG", fmt.Sprintf(format, args...))
}

// Info logs at INFO level.
func (l *Logger) Info(format string, args ...any) {
	l.line(LevelInfo, "INFO", fmt.Sprintf(format, args...))
}

// Success logs a completed file at INFO level.
func (l *Logger) Success(format string, args ...any) {
	l.line(LevelInfo, "SUCCESS", fmt.Sprintf(format, args...))
}

// Warn logs at WARN level.
func (l *Logger) Warn(format string, args ...any) {
	l.line(LevelWarn, "WARN", fmt.Sprintf(format, args...))
}

// Error logs at ERROR level to the error stream.
func (l *Logger) Error(format string, args ...any) {
	l.line(LevelError, "ERROR", fmt.Sprintf(format, args...))
}
