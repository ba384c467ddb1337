// level.go: Record severity levels and filtering
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hemera

import "fmt"

// Level is the ordinal severity of a record. Higher values are more urgent.
// The ordinals are pino-compatible so records produced by common structured
// loggers map onto them without translation.
type Level int8

const (
	LevelTrace Level = 10
	LevelDebug Level = 20
	LevelInfo  Level = 30
	LevelWarn  Level = 40
	LevelError Level = 50
	LevelFatal Level = 60

	// LevelSilent is a filter-only value: a sink configured with it writes
	// nothing, and a record carrying it is never written.
	LevelSilent Level = 100
)

// ParseLevel converts a level name ("trace" through "fatal", or "silent")
// to its Level value.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "fatal":
		return LevelFatal, nil
	case "silent":
		return LevelSilent, nil
	}
	return 0, fmt.Errorf("unknown level %q", s)
}

// String returns the canonical lowercase name of the level.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	case LevelSilent:
		return "silent"
	}
	return fmt.Sprintf("Level(%d)", int8(l))
}

// enabled reports whether a record at level l passes a sink configured
// with minimum level min. Silent on either side always discards.
func (l Level) enabled(min Level) bool {
	if min == LevelSilent || l == LevelSilent {
		return false
	}
	return l >= min
}
