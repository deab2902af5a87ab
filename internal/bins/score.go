package bins

// Location scores pack four terms into one integer so that any difference in
// a higher-priority term dominates everything below it: zone class first,
// then level (ground before numbered shelves), then bay, then rack name.
// Lower scores drain first. Parsing caps levels at MaxLevelNumber and bays at
// MaxBay, so no term can bleed into the band above it.
const (
	zoneWeight  int64 = 100_000_000
	levelWeight int64 = 1_000_000
	bayWeight   int64 = 1_000
)

// WorstScore is the sentinel for an empty location set; it is larger than
// any score a real location can produce, so unplaced batches sort last.
const WorstScore int64 = 1 << 62

// Scorer ranks locations using the zone classes of a catalog configuration.
// It is pure and total: every location yields a finite, comparable score,
// with racks missing from the configuration treated as standard storage.
type Scorer struct {
	classes map[string]ZoneClass
}

// NewScorer builds a Scorer from a zone configuration.
func NewScorer(cfg ZoneConfig) Scorer {
	classes := make(map[string]ZoneClass, len(cfg))
	for rack, spec := range cfg {
		classes[rack] = spec.Class
	}
	return Scorer{classes: classes}
}

// Score computes the drain-priority score for one location.
func (s Scorer) Score(loc Location) int64 {
	class, ok := s.classes[loc.Rack]
	if !ok {
		class = ZoneStandard
	}
	return int64(class)*zoneWeight +
		int64(loc.Level.Number())*levelWeight +
		int64(loc.Bay)*bayWeight +
		rackTerm(loc.Rack)
}

// Best returns the minimum score across locations, or WorstScore when the
// list is empty.
func (s Scorer) Best(locs []Location) int64 {
	best := WorstScore
	for _, loc := range locs {
		if score := s.Score(loc); score < best {
			best = score
		}
	}
	return best
}

// rackTerm orders rack names alphabetically inside the lowest weight band.
// Only the first two characters matter, which keeps the term below the bay
// weight for any name.
func rackTerm(rack string) int64 {
	var term int64
	for i := 0; i < 2; i++ {
		var v int64
		if i < len(rack) {
			c := rack[i]
			switch {
			case c >= 'A' && c <= 'Z':
				v = int64(c-'A') + 1
			case c >= 'a' && c <= 'z':
				v = int64(c-'a') + 1
			case c >= '0' && c <= '9':
				v = int64(c - '0')
			default:
				v = 26
			}
		}
		term = term*27 + v
	}
	return term
}
