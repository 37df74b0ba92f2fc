package http

import (
	"errors"
	"fmt"
	"strings"
)

// Level controls how much of a request/response cycle LogTransport prints.
type Level int32

const (
	// LevelNone disables logging entirely.
	LevelNone Level = iota
	// LevelHeaders prints request/response lines and headers, never bodies.
	LevelHeaders
	// LevelBody prints request/response lines and text bodies without headers.
	LevelBody
	// LevelNormal prints request/response lines, headers and text bodies.
	LevelNormal
)

// ErrUnknownLevel indicates that a verbosity level is not one of the known levels.
var ErrUnknownLevel = errors.New("unknown verbosity level")

//nolint:gochecknoglobals // Immutable lookup table.
var levelNames = map[Level]string{
	LevelNone:    "none",
	LevelHeaders: "headers",
	LevelBody:    "body",
	LevelNormal:  "normal",
}

// ParseLevel converts a case-insensitive level name into a Level.
func ParseLevel(name string) (Level, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))

	for level, levelName := range levelNames {
		if levelName == normalized {
			return level, nil
		}
	}

	return LevelNone, fmt.Errorf("%w: '%s'", ErrUnknownLevel, name)
}

// String returns the lowercase name of the level.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}

	return fmt.Sprintf("Level(%d)", int32(l))
}

// IsValid reports whether l is one of the known levels.
func (l Level) IsValid() bool {
	_, ok := levelNames[l]

	return ok
}

func (l Level) logsHeaders() bool {
	return l == LevelHeaders || l == LevelNormal
}

func (l Level) logsBody() bool {
	return l == LevelBody || l == LevelNormal
}
