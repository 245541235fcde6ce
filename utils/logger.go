package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps "debug", "info", "warn" and "error" to a Level. Unknown
// names resolve to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger provides leveled, colourised logging throughout the application.
// Errors go to the error writer, everything else to the output writer.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	err   io.Writer
	level Level
	now   func() time.Time
}

// NewLogger creates a Logger writing to stdout/stderr at info level.
func NewLogger() *Logger {
	return &Logger{out: os.Stdout, err: os.Stderr, level: LevelInfo, now: time.Now}
}

// NewLoggerTo creates a Logger that writes every level to w.
func NewLoggerTo(w io.Writer, level Level) *Logger {
	return &Logger{out: w, err: w, level: level, now: time.Now}
}

// SetLevel changes the minimum level that is written.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

func (l *Logger) write(level Level, tag string, format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}
	w := l.out
	if level == LevelError {
		w = l.err
	}
	ts := l.now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(w, "[%s] %s %s\n", ts, tag, fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...any) {
	l.write(LevelInfo, "\033[32mINFO\033[0m ", format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.write(LevelWarn, "\033[33mWARN\033[0m ", format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.write(LevelError, "\033[31mERROR\033[0m", format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.write(LevelDebug, "\033[36mDEBUG\033[0m", format, args...)
}
