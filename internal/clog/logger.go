package clog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger handles leveled logging with support for multiple outputs.
// Formatting and level filtering are delegated to zap; the Logger owns
// which sinks are active.
type Logger struct {
	mu         sync.Mutex
	level      zap.AtomicLevel // minimum level to log
	fileWriter io.Writer       // always receives logs at or above level
	errWriter  io.Writer       // receives warn/error in CLI mode, nil in daemon mode
	daemonMode bool            // when true, errWriter is ignored
	sugar      *zap.SugaredLogger
}

// NewLogger creates a new logger with default settings.
// By default, logs go to stderr at Info level.
func NewLogger() *Logger {
	l := &Logger{
		level:     zap.NewAtomicLevelAt(zapcore.InfoLevel),
		errWriter: os.Stderr,
	}
	l.rebuild()
	return l
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.level.SetLevel(level.zapLevel())
}

// SetFileOutput sets the file writer for log output.
// Pass nil to disable file logging.
func (l *Logger) SetFileOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fileWriter = w
	l.rebuild()
}

// SetErrOutput sets the stderr writer for warn/error output in CLI mode.
// Pass nil to disable stderr logging.
func (l *Logger) SetErrOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errWriter = w
	l.rebuild()
}

// SetDaemonMode enables or disables daemon mode.
// In daemon mode, logs only go to the file writer, not stderr.
func (l *Logger) SetDaemonMode(daemon bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.daemonMode = daemon
	l.rebuild()
}

// Zap returns the underlying zap logger.
func (l *Logger) Zap() *zap.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sugar.Desugar()
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) {
	l.current().Debugf(format, args...)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...any) {
	l.current().Infof(format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...any) {
	l.current().Warnf(format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	l.current().Errorf(format, args...)
}

func (l *Logger) current() *zap.SugaredLogger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sugar
}

// rebuild assembles the zap core tee from the configured sinks.
// Caller must hold l.mu.
func (l *Logger) rebuild() {
	var cores []zapcore.Core

	if l.fileWriter != nil {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig(true)),
			zapcore.Lock(zapcore.AddSync(l.fileWriter)),
			l.level,
		))
	}

	if !l.daemonMode && l.errWriter != nil {
		level := l.level
		// For stderr, use a simpler format without timestamp
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig(false)),
			zapcore.Lock(zapcore.AddSync(l.errWriter)),
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return lvl >= zapcore.WarnLevel && level.Enabled(lvl)
			}),
		))
	}

	l.sugar = zap.New(zapcore.NewTee(cores...)).Sugar()
}

// encoderConfig produces "2024-01-15T14:32:05Z [INFO] msg" lines.
func encoderConfig(withTime bool) zapcore.EncoderConfig {
	cfg := zapcore.EncoderConfig{
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		ConsoleSeparator: " ",
		EncodeLevel: func(lvl zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString("[" + strings.ToUpper(lvl.String()) + "]")
		},
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	if withTime {
		cfg.TimeKey = "ts"
		cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.UTC().Format(time.RFC3339))
		}
	}
	return cfg
}

// OpenLogFile opens a log file for writing, creating parent directories if needed.
// The file is opened in append mode.
func OpenLogFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return f, nil
}

// DefaultLogPath returns the default operational log path for the agent.
func DefaultLogPath() string {
	return "/var/log/blockhost/root-agent.log"
}
