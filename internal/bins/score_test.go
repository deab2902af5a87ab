package bins

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) ZoneConfig {
	t.Helper()
	cfg, err := ParseZoneTable("S:staging:11:1;R:reserve:5:1,2,3;A:standard:10:Floor,1,2,3")
	require.NoError(t, err)
	return cfg
}

func mustLocation(t *testing.T, code string) Location {
	t.Helper()
	loc, err := ParseLocation(code)
	require.NoError(t, err)
	return loc
}

func TestScoreOrdersZonesBeforeLevels(t *testing.T) {
	scorer := NewScorer(testConfig(t))

	staging := scorer.Score(mustLocation(t, "S-01-1"))
	reserve := scorer.Score(mustLocation(t, "R-01-1"))
	standard := scorer.Score(mustLocation(t, "A-01-Floor"))

	require.Less(t, staging, reserve)
	require.Less(t, reserve, standard)
}

func TestScoreGroundBeatsShelvesWithinRack(t *testing.T) {
	scorer := NewScorer(testConfig(t))

	ground := scorer.Score(mustLocation(t, "A-03-Floor"))
	shelf := scorer.Score(mustLocation(t, "A-03-1"))
	higher := scorer.Score(mustLocation(t, "A-03-3"))

	require.Less(t, ground, shelf)
	require.Less(t, shelf, higher)
}

func TestScoreLevelDominatesBay(t *testing.T) {
	scorer := NewScorer(testConfig(t))

	lowLevelFarBay := scorer.Score(mustLocation(t, "A-10-1"))
	highLevelNearBay := scorer.Score(mustLocation(t, "A-01-2"))

	require.Less(t, lowLevelFarBay, highLevelNearBay)
}

func TestBestPicksMinimumScore(t *testing.T) {
	scorer := NewScorer(testConfig(t))

	locs := []Location{
		mustLocation(t, "A-05-3"),
		mustLocation(t, "S-02-1"),
		mustLocation(t, "R-01-2"),
	}
	require.Equal(t, scorer.Score(mustLocation(t, "S-02-1")), scorer.Best(locs))
}

func TestBestOfNothingIsWorst(t *testing.T) {
	scorer := NewScorer(testConfig(t))
	require.Equal(t, WorstScore, scorer.Best(nil))
}

func TestScoreUnknownRackFallsBackToStandard(t *testing.T) {
	scorer := NewScorer(testConfig(t))

	unknown := scorer.Score(mustLocation(t, "Z-01-1"))
	staging := scorer.Score(mustLocation(t, "S-01-1"))
	require.Greater(t, unknown, staging)
}
