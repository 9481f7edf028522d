package clog

import (
	"io"
	"os"

	"go.uber.org/zap"
)

// std backs the package-level functions.
var std = NewLogger()

func init() {
	std.SetErrOutput(os.Stderr)
}

// Configure sets the global level and sinks. An empty logPath leaves file
// logging off; daemonMode silences stderr. A file opened by an earlier
// Configure is closed once the new one is in place.
func Configure(logPath string, level Level, daemonMode bool) error {
	std.SetLevel(level)
	std.SetDaemonMode(daemonMode)
	if logPath == "" {
		return nil
	}

	f, err := OpenLogFile(logPath)
	if err != nil {
		return err
	}
	std.mu.Lock()
	prev := std.fileWriter
	std.mu.Unlock()
	std.SetFileOutput(f)
	if c, ok := prev.(*os.File); ok && c != f {
		_ = c.Close()
	}
	return nil
}

// SetLevel sets the minimum level of the global logger.
func SetLevel(level Level) {
	std.SetLevel(level)
}

// Debug logs at debug level.
func Debug(format string, args ...any) {
	std.Debug(format, args...)
}

// Info logs at info level.
func Info(format string, args ...any) {
	std.Info(format, args...)
}

// Warn logs at warn level.
func Warn(format string, args ...any) {
	std.Warn(format, args...)
}

// Error logs at error level.
func Error(format string, args ...any) {
	std.Error(format, args...)
}

// Close flushes and closes the global log file, if any.
func Close() error {
	std.mu.Lock()
	defer std.mu.Unlock()

	if std.sugar != nil {
		_ = std.sugar.Sync()
	}
	if c, ok := std.fileWriter.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Reset replaces the global logger with a fresh one. Tests only.
func Reset() {
	std = NewLogger()
}

// Discard drops everything the global logger writes.
func Discard() {
	std.SetFileOutput(io.Discard)
	std.SetErrOutput(io.Discard)
}

// TestLogger returns a debug-level logger writing both sinks to w.
func TestLogger(w io.Writer) *Logger {
	l := NewLogger()
	l.SetFileOutput(w)
	l.SetErrOutput(w)
	l.SetLevel(LevelDebug)
	return l
}

// ReplaceGlobal installs l as the global logger and returns the previous
// one so the caller can restore it.
func ReplaceGlobal(l *Logger) *Logger {
	old := std
	std = l
	return old
}

// RedirectStdLog sends the standard library logger to the global logger
// at info level until the returned function is called.
func RedirectStdLog() func() {
	return zap.RedirectStdLog(std.Zap())
}
