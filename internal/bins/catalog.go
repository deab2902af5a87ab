package bins

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// ZoneSpec describes one rack's dimensions.
type ZoneSpec struct {
	Class  ZoneClass
	Bays   int
	Levels []Level
}

// ZoneConfig maps rack names to their dimensions.
type ZoneConfig map[string]ZoneSpec

// ParseZoneTable parses the configuration grammar
// "RACK:class:bays:level,level;RACK:class:bays:level,..." into a ZoneConfig.
func ParseZoneTable(table string) (ZoneConfig, error) {
	cfg := ZoneConfig{}
	for _, entry := range strings.Split(table, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 4 {
			return nil, fmt.Errorf("%w: entry %q", ErrInvalidZoneTable, entry)
		}
		rack := strings.ToUpper(strings.TrimSpace(parts[0]))
		if rack == "" {
			return nil, fmt.Errorf("%w: empty rack in %q", ErrInvalidZoneTable, entry)
		}
		if _, exists := cfg[rack]; exists {
			return nil, fmt.Errorf("%w: rack %s listed twice", ErrInvalidZoneTable, rack)
		}
		class, err := ParseZoneClass(parts[1])
		if err != nil {
			return nil, err
		}
		bays, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil || bays < 1 || bays > MaxBay {
			return nil, fmt.Errorf("%w: bad bay count in %q", ErrInvalidZoneTable, entry)
		}
		var levels []Level
		for _, token := range strings.Split(parts[3], ",") {
			level, err := ParseLevel(token)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidZoneTable, err)
			}
			levels = append(levels, level)
		}
		if len(levels) == 0 {
			return nil, fmt.Errorf("%w: no levels in %q", ErrInvalidZoneTable, entry)
		}
		cfg[rack] = ZoneSpec{Class: class, Bays: bays, Levels: levels}
	}
	if len(cfg) == 0 {
		return nil, fmt.Errorf("%w: empty table", ErrInvalidZoneTable)
	}
	return cfg, nil
}

// Catalog is the fixed universe of valid storage locations. Bins are
// generated once from the zone configuration; only their status toggles.
type Catalog struct {
	mu     sync.RWMutex
	config ZoneConfig
	order  []string
	byCode map[string]*Bin
}

// NewCatalog enumerates every (rack, bay, level) combination the zone
// configuration allows, exactly once each.
func NewCatalog(cfg ZoneConfig) (*Catalog, error) {
	c := &Catalog{config: cfg, byCode: make(map[string]*Bin)}

	racks := make([]string, 0, len(cfg))
	for rack := range cfg {
		racks = append(racks, rack)
	}
	sort.Strings(racks)

	for _, rack := range racks {
		spec := cfg[rack]
		for bay := 1; bay <= spec.Bays; bay++ {
			for _, level := range spec.Levels {
				bin := &Bin{Rack: rack, Bay: bay, Level: level, Status: StatusActive}
				code := bin.Code()
				if _, exists := c.byCode[code]; exists {
					return nil, fmt.Errorf("%w: %s", ErrDuplicateBinCode, code)
				}
				c.byCode[code] = bin
				c.order = append(c.order, code)
			}
		}
	}
	return c, nil
}

// Config returns a copy of the zone configuration the catalog was generated
// from. Mutating the copy never affects the catalog.
func (c *Catalog) Config() ZoneConfig {
	out := make(ZoneConfig, len(c.config))
	for rack, spec := range c.config {
		spec.Levels = append([]Level(nil), spec.Levels...)
		out[rack] = spec
	}
	return out
}

// List returns all bins in generation order.
func (c *Catalog) List() []Bin {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Bin, 0, len(c.order))
	for _, code := range c.order {
		out = append(out, *c.byCode[code])
	}
	return out
}

// Get looks up one bin by its canonical code.
func (c *Catalog) Get(code string) (Bin, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	bin, ok := c.byCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Bin{}, fmt.Errorf("%w: %s", ErrUnknownBin, code)
	}
	return *bin, nil
}

// Contains reports whether a location resolves to a catalog bin.
func (c *Catalog) Contains(loc Location) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.byCode[loc.Code()]
	return ok
}

// Toggle flips a bin between active and disabled. The flag is the only
// mutation; repeated toggles simply alternate it.
func (c *Catalog) Toggle(code string) (Bin, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bin, ok := c.byCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Bin{}, fmt.Errorf("%w: %s", ErrUnknownBin, code)
	}
	if bin.Status == StatusActive {
		bin.Status = StatusDisabled
	} else {
		bin.Status = StatusActive
	}
	return *bin, nil
}

// ApplyStatuses copies statuses from snapshot bins onto matching catalog
// bins, returning how many were applied. Unknown codes are skipped; the
// catalog shape always comes from configuration, never from snapshots.
func (c *Catalog) ApplyStatuses(snapshot []Bin) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	applied := 0
	for _, snap := range snapshot {
		if bin, ok := c.byCode[snap.Code()]; ok {
			bin.Status = snap.Status
			applied++
		}
	}
	return applied
}
