// Package clog provides structured operational logging for the root agent.
// This is distinct from user-facing output (see internal/term).
//
// Log levels:
//   - Debug: Verbose diagnostic information, only with --debug
//   - Info: Normal operational events
//   - Warn: Unexpected conditions that don't prevent operation
//   - Error: Failures that affect functionality
//
// Output destinations:
//   - File: All levels (debug only with --debug flag)
//   - Stderr: Warn and Error only, disabled in daemon mode
package clog

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// Level is the severity of a log message. It shares zap's numbering so
// it can be handed to the backend unchanged.
type Level zapcore.Level

// Levels accepted by SetLevel and Configure.
const (
	LevelDebug = Level(zapcore.DebugLevel)
	LevelInfo  = Level(zapcore.InfoLevel)
	LevelWarn  = Level(zapcore.WarnLevel)
	LevelError = Level(zapcore.ErrorLevel)
)

func (l Level) String() string {
	return l.zapLevel().CapitalString()
}

// ParseLevel maps a log.level setting to a Level, ignoring case.
// Anything zap does not recognize falls back to LevelInfo, and zap's
// panic and fatal levels are capped at LevelError.
func ParseLevel(s string) Level {
	zl, err := zapcore.ParseLevel(strings.ToLower(s))
	switch {
	case err != nil:
		return LevelInfo
	case zl > zapcore.ErrorLevel:
		return LevelError
	}
	return Level(zl)
}

func (l Level) zapLevel() zapcore.Level {
	return zapcore.Level(l)
}
