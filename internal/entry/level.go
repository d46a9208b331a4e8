package entry

import (
	"fmt"
	"strings"
)

// Level is the ordered severity of a log entry. Higher values are more severe.
type Level int

const (
	// LevelUnspecified is the zero value; callers that leave the level unset
	// get LevelInformation after normalization.
	LevelUnspecified Level = iota
	LevelDebug
	LevelInformation
	LevelWarning
	LevelError
	LevelCritical
)

// Normalize maps the zero value to LevelInformation and leaves everything
// else untouched.
func (l Level) Normalize() Level {
	if l == LevelUnspecified {
		return LevelInformation
	}
	return l
}

// Valid reports whether l is one of the five defined severities.
func (l Level) Valid() bool {
	return l >= LevelDebug && l <= LevelCritical
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "Debug"
	case LevelInformation:
		return "Information"
	case LevelWarning:
		return "Warning"
	case LevelError:
		return "Error"
	case LevelCritical:
		return "Critical"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// ParseLevel converts a level name into a Level. Matching is case-insensitive
// and accepts the common short aliases.
func ParseLevel(value string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return LevelDebug, nil
	case "information", "info":
		return LevelInformation, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	case "critical", "crit":
		return LevelCritical, nil
	default:
		return LevelUnspecified, fmt.Errorf("unknown log level %q", value)
	}
}

// MarshalText implements encoding.TextMarshaler so levels serialize as their
// names inside JSON records.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
