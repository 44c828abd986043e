// Package internal carries cross-cutting plumbing for the analysis pipeline:
// the leveled logger here, configuration and the error taxonomy in
// subpackages.
package internal

import (
	"log"
	"os"
	"strings"
)

// Level is a logger verbosity threshold.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a LOG_LEVEL value to a Level. Unrecognized values fall
// back to info so a typo never silences errors.
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

// Logger gates stdlib log output behind a minimum level. Cohort loads and
// fit runs report progress through one shared instance so CLI and HTTP
// output look the same.
type Logger struct {
	min Level
}

// NewLogger creates a logger that drops messages below min.
func NewLogger(min Level) *Logger {
	return &Logger{min: min}
}

// NewDefaultLogger reads the threshold from the LOG_LEVEL environment
// variable.
func NewDefaultLogger() *Logger {
	return NewLogger(ParseLevel(os.Getenv("LOG_LEVEL")))
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.emit(LevelDebug, "DEBUG", format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.emit(LevelInfo, "INFO", format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.emit(LevelWarn, "WARN", format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.emit(LevelError, "ERROR", format, args...)
}

func (l *Logger) emit(lv Level, tag, format string, args ...interface{}) {
	if lv < l.min {
		return
	}
	log.Printf("["+tag+"] "+format, args...)
}

// DefaultLogger is the fallback for components constructed without a logger.
var DefaultLogger = NewDefaultLogger()
