package models

import (
	"fmt"
	"strings"
)

// CompletionLevel describes how thoroughly a day's goal was met.
type CompletionLevel string

const (
	LevelNone CompletionLevel = "none"
	LevelSkip CompletionLevel = "SKIP"
	LevelMini CompletionLevel = "MINI"
	LevelMore CompletionLevel = "MORE"
	LevelMax  CompletionLevel = "MAX"
)

// Levels lists every level in display order.
var Levels = []CompletionLevel{LevelNone, LevelSkip, LevelMini, LevelMore, LevelMax}

// ParseLevel parses a user-supplied level name, case-insensitively.
func ParseLevel(s string) (CompletionLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return LevelNone, nil
	case "skip":
		return LevelSkip, nil
	case "mini":
		return LevelMini, nil
	case "more":
		return LevelMore, nil
	case "max":
		return LevelMax, nil
	}
	return LevelNone, fmt.Errorf("invalid level %q (expected none, skip, mini, more or max)", s)
}

// LevelFromStored decodes a persisted level. Unknown values decode as LevelNone.
func LevelFromStored(s string) CompletionLevel {
	switch l := CompletionLevel(s); l {
	case LevelSkip, LevelMini, LevelMore, LevelMax:
		return l
	}
	return LevelNone
}

// Completed reports whether the level counts toward completed days.
// SKIP counts: only an explicit or implicit "none" is a miss.
func (l CompletionLevel) Completed() bool {
	return l != LevelNone && l != ""
}

func (l CompletionLevel) DisplayName() string {
	if l == LevelNone || l == "" {
		return "not done"
	}
	return string(l)
}

// Color returns the ANSI 256 color used to render the level.
func (l CompletionLevel) Color() string {
	switch l {
	case LevelMini:
		return "79" // mint
	case LevelMore:
		return "33" // blue
	case LevelMax:
		return "135" // purple
	default:
		return "244" // gray
	}
}
