package bins

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCatalogEnumeratesEveryBin(t *testing.T) {
	catalog, err := NewCatalog(testConfig(t))
	require.NoError(t, err)

	// 11 staging + 5*3 reserve + 10*4 standard.
	require.Len(t, catalog.List(), 11+15+40)

	bin, err := catalog.Get("A-01-Floor")
	require.NoError(t, err)
	require.Equal(t, StatusActive, bin.Status)
	require.Equal(t, "A-01-Floor", bin.Code())

	_, err = catalog.Get("A-11-1")
	require.ErrorIs(t, err, ErrUnknownBin)
}

func TestCatalogContains(t *testing.T) {
	catalog, err := NewCatalog(testConfig(t))
	require.NoError(t, err)

	require.True(t, catalog.Contains(mustLocation(t, "S-11-1")))
	require.False(t, catalog.Contains(mustLocation(t, "S-12-1")))
	require.False(t, catalog.Contains(mustLocation(t, "S-01-2")))
}

func TestToggleFlipsStatus(t *testing.T) {
	catalog, err := NewCatalog(testConfig(t))
	require.NoError(t, err)

	bin, err := catalog.Toggle("R-02-1")
	require.NoError(t, err)
	require.Equal(t, StatusDisabled, bin.Status)

	bin, err = catalog.Toggle("R-02-1")
	require.NoError(t, err)
	require.Equal(t, StatusActive, bin.Status)

	// Disabled bins stay resolvable; the flag is advisory.
	_, err = catalog.Toggle("R-02-1")
	require.NoError(t, err)
	require.True(t, catalog.Contains(mustLocation(t, "R-02-1")))
}

func TestApplyStatusesSkipsUnknownCodes(t *testing.T) {
	catalog, err := NewCatalog(testConfig(t))
	require.NoError(t, err)

	applied := catalog.ApplyStatuses([]Bin{
		{Rack: "A", Bay: 1, Level: mustLevel(t, "2"), Status: StatusDisabled},
		{Rack: "Z", Bay: 9, Level: mustLevel(t, "1"), Status: StatusDisabled},
	})
	require.Equal(t, 1, applied)

	bin, err := catalog.Get("A-01-2")
	require.NoError(t, err)
	require.Equal(t, StatusDisabled, bin.Status)
}

func TestParseZoneTableRejectsMalformedEntries(t *testing.T) {
	cases := []string{
		"",
		"A:standard:10",
		"A:standard:zero:1",
		"A:warp:10:1",
		"A:standard:10:",
		"A:standard:10:1;A:standard:5:1",
		// Out-of-band dimensions would let scoring terms bleed across weight
		// bands.
		"A:standard:1000:1",
		"A:standard:10:100",
	}
	for _, table := range cases {
		_, err := ParseZoneTable(table)
		require.ErrorIs(t, err, ErrInvalidZoneTable, "table %q", table)
	}
}

func TestParseLocationNormalisesRack(t *testing.T) {
	loc, err := ParseLocation("a-3-floor")
	require.NoError(t, err)
	require.Equal(t, "A-03-Floor", loc.Code())
	require.True(t, loc.Level.IsGround())

	_, err = ParseLocation("A-0-1")
	require.Error(t, err)
	_, err = ParseLocation("A-1")
	require.Error(t, err)
	_, err = ParseLocation("A-1000-1")
	require.Error(t, err)
	_, err = ParseLocation("A-01-100")
	require.Error(t, err)
}

func TestConfigReturnsCopy(t *testing.T) {
	catalog, err := NewCatalog(testConfig(t))
	require.NoError(t, err)

	cfg := catalog.Config()
	spec := cfg["A"]
	spec.Class = ZoneStaging
	spec.Levels[0] = mustLevel(t, "3")
	cfg["A"] = spec
	delete(cfg, "S")

	fresh := catalog.Config()
	require.Equal(t, ZoneStandard, fresh["A"].Class)
	require.Equal(t, "Floor", fresh["A"].Levels[0].String())
	require.Contains(t, fresh, "S")
	require.True(t, catalog.Contains(mustLocation(t, "S-01-1")))
}

func mustLevel(t *testing.T, s string) Level {
	t.Helper()
	level, err := ParseLevel(s)
	require.NoError(t, err)
	return level
}
