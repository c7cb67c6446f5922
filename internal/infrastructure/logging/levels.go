package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the severity scale tasks log with. Lower is more severe.
type Level int

const (
	LevelFatal Level = iota
	LevelError
	LevelWarning
	LevelNotice
	LevelInfo
	LevelTrace
	LevelDebug
)

var levelNames = [...]string{"FATAL", "ERROR", "WARNING", "NOTICE", "INFO", "TRACE", "DEBUG"}

func (l Level) String() string {
	if !l.Valid() {
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
	return levelNames[l]
}

// Valid reports whether l is one of the defined levels
func (l Level) Valid() bool {
	return l >= LevelFatal && l <= LevelDebug
}

// ParseLevel accepts a level name (case-insensitive, optional LOG_ prefix)
func ParseLevel(s string) (Level, error) {
	name := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "LOG_")
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// Levels returns the level constants keyed LOG_<NAME>
func Levels() map[string]int {
	m := make(map[string]int, len(levelNames))
	for i, n := range levelNames {
		m["LOG_"+n] = i
	}
	return m
}

// zapLevel maps a task level onto zap. TRACE folds into debug, NOTICE into
// info, and FATAL is logged at error level: a task cannot stop the process.
func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelFatal, LevelError:
		return zapcore.ErrorLevel
	case LevelWarning:
		return zapcore.WarnLevel
	case LevelNotice, LevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// Write logs msg at a task level. The original level is kept in the
// plumber_level field.
func (l *Logger) Write(level Level, msg string, fields ...zap.Field) {
	if !level.Valid() {
		level = LevelDebug
	}
	if ce := l.Check(level.zapLevel(), msg); ce != nil {
		ce.Write(append(fields, zap.String("plumber_level", strings.ToLower(level.String())))...)
	}
}
