// Package bins models the physical storage universe: racks, bays and levels
// generated from a zone configuration table, plus the location priority
// scoring used by the allocator and transfer planner.
package bins

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ZoneClass ranks storage areas for drain priority.
type ZoneClass int

const (
	// ZoneStaging holds inbound overflow; drained first.
	ZoneStaging ZoneClass = iota
	// ZoneReserve holds bulk reserve stock.
	ZoneReserve
	// ZoneStandard is long-term rack storage; drained last.
	ZoneStandard
)

// String renders the class for configuration and exports.
func (c ZoneClass) String() string {
	switch c {
	case ZoneStaging:
		return "staging"
	case ZoneReserve:
		return "reserve"
	default:
		return "standard"
	}
}

// ParseZoneClass parses a zone class token.
func ParseZoneClass(s string) (ZoneClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "staging":
		return ZoneStaging, nil
	case "reserve":
		return ZoneReserve, nil
	case "standard", "rack":
		return ZoneStandard, nil
	default:
		return ZoneStandard, fmt.Errorf("%w: zone class %q", ErrInvalidZoneTable, s)
	}
}

// GroundLabel is the level sentinel that ranks below all numeric levels.
const GroundLabel = "Floor"

// MaxLevelNumber and MaxBay bound level and bay numbers so each scoring term
// stays inside its weight band; see the Scorer weights.
const (
	MaxLevelNumber = 99
	MaxBay         = 999
)

// Level is either a numbered shelf level or the ground sentinel.
type Level struct {
	ground bool
	n      int
}

// Ground returns the ground-level sentinel.
func Ground() Level {
	return Level{ground: true}
}

// NumericLevel builds a shelf level; levels are numbered from 1 to
// MaxLevelNumber.
func NumericLevel(n int) (Level, error) {
	if n < 1 || n > MaxLevelNumber {
		return Level{}, fmt.Errorf("level number must be in [1,%d], got %d", MaxLevelNumber, n)
	}
	return Level{n: n}, nil
}

// IsGround reports whether the level is the ground sentinel.
func (l Level) IsGround() bool {
	return l.ground
}

// Number returns the shelf number; zero for the ground sentinel.
func (l Level) Number() int {
	if l.ground {
		return 0
	}
	return l.n
}

// String renders the canonical level token.
func (l Level) String() string {
	if l.ground {
		return GroundLabel
	}
	return strconv.Itoa(l.n)
}

// ParseLevel parses a level token: a positive integer or the ground sentinel.
func ParseLevel(s string) (Level, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, GroundLabel) {
		return Ground(), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Level{}, fmt.Errorf("invalid level %q", s)
	}
	return NumericLevel(n)
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(b []byte) error {
	parsed, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Location identifies a single storage slot by rack, bay and level.
type Location struct {
	Rack  string `json:"rack"`
	Bay   int    `json:"bay"`
	Level Level  `json:"level"`
}

// Code renders the canonical bin code, e.g. "A-01-3" or "S-11-1".
// Bays are always zero-padded to two digits.
func (l Location) Code() string {
	return fmt.Sprintf("%s-%02d-%s", l.Rack, l.Bay, l.Level)
}

// Equal reports whether two locations address the same slot.
func (l Location) Equal(other Location) bool {
	return l.Rack == other.Rack && l.Bay == other.Bay && l.Level == other.Level
}

// ParseLocation parses a canonical RACK-BAY-LEVEL code.
func ParseLocation(code string) (Location, error) {
	parts := strings.Split(strings.TrimSpace(code), "-")
	if len(parts) != 3 {
		return Location{}, fmt.Errorf("invalid bin code %q", code)
	}
	rack := strings.ToUpper(strings.TrimSpace(parts[0]))
	if rack == "" {
		return Location{}, fmt.Errorf("invalid bin code %q: empty rack", code)
	}
	bay, err := strconv.Atoi(parts[1])
	if err != nil || bay < 1 || bay > MaxBay {
		return Location{}, fmt.Errorf("invalid bin code %q: bad bay", code)
	}
	level, err := ParseLevel(parts[2])
	if err != nil {
		return Location{}, fmt.Errorf("invalid bin code %q: %v", code, err)
	}
	return Location{Rack: rack, Bay: bay, Level: level}, nil
}

// Status flags whether a bin should be offered to calling UIs.
// Disabled bins stay structurally valid destinations; the flag is advisory.
type Status string

const (
	// StatusActive marks a usable bin.
	StatusActive Status = "active"
	// StatusDisabled marks a bin hidden from pick suggestions.
	StatusDisabled Status = "disabled"
)

// Bin is one physical storage slot in the catalog.
type Bin struct {
	Rack   string `json:"rack"`
	Bay    int    `json:"bay"`
	Level  Level  `json:"level"`
	Status Status `json:"status"`
}

// Location returns the bin's coordinates.
func (b Bin) Location() Location {
	return Location{Rack: b.Rack, Bay: b.Bay, Level: b.Level}
}

// Code returns the canonical bin code.
func (b Bin) Code() string {
	return b.Location().Code()
}

// ErrUnknownBin indicates a reference to a bin outside the catalog.
var ErrUnknownBin = errors.New("bins: unknown bin")

// ErrDuplicateBinCode indicates a zone table producing two identical codes.
var ErrDuplicateBinCode = errors.New("bins: duplicate bin code")

// ErrInvalidZoneTable indicates an unparseable zone configuration.
var ErrInvalidZoneTable = errors.New("bins: invalid zone table")
