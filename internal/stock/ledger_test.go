package stock

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestRunningBalanceReplaysByDate(t *testing.T) {
	s := newTestStore()
	batch, err := s.Receive("WIDGET-A", qty(t, "20"), loc(t, "A-01-1"), BatchMeta{})
	require.NoError(t, err)
	_, err = s.AdjustQuantity(batch.ID, qty(t, "-5"), "damage")
	require.NoError(t, err)
	_, err = s.AdjustQuantity(batch.ID, qty(t, "-3"), "shrinkage")
	require.NoError(t, err)

	require.True(t, qty(t, "12").Equal(s.RunningBalance("WIDGET-A", time.Time{})))
	require.True(t, s.RunningBalance("UNKNOWN", time.Time{}).IsZero())
}

func TestRunningBalanceHonoursBackdatedEntries(t *testing.T) {
	s := newTestStore()

	// A backdated receipt lands in the ledger after a later-dated one.
	later := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := s.Receive("WIDGET-A", qty(t, "10"), loc(t, "A-01-1"), BatchMeta{Date: later})
	require.NoError(t, err)
	_, err = s.Receive("WIDGET-A", qty(t, "4"), loc(t, "B-01-1"), BatchMeta{Date: earlier})
	require.NoError(t, err)

	// Replay sorts by date, so the as-of cut sees only the earlier receipt.
	asOf := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	require.True(t, qty(t, "4").Equal(s.RunningBalance("WIDGET-A", asOf)))
	require.True(t, qty(t, "14").Equal(s.RunningBalance("WIDGET-A", time.Time{})))
}

func TestHistoryFiltersAndOrders(t *testing.T) {
	s := newTestStore()
	_, err := s.Receive("WIDGET-A", qty(t, "10"), loc(t, "A-01-1"), BatchMeta{})
	require.NoError(t, err)
	_, err = s.Receive("WIDGET-B", qty(t, "2"), loc(t, "B-01-1"), BatchMeta{})
	require.NoError(t, err)
	_, err = s.Receive("WIDGET-A", qty(t, "1"), loc(t, "A-01-1"), BatchMeta{})
	require.NoError(t, err)

	all := s.History("")
	require.Len(t, all, 3)
	require.Len(t, s.History("WIDGET-A"), 2)

	// Most recent first.
	require.True(t, all[0].Date.After(all[1].Date))
	require.True(t, all[1].Date.After(all[2].Date))
}

func TestVerifyLedgerDetectsDrift(t *testing.T) {
	s := newTestStore()
	batch, err := s.Receive("WIDGET-A", qty(t, "10"), loc(t, "A-01-1"), BatchMeta{})
	require.NoError(t, err)
	require.Empty(t, s.VerifyLedger())

	// Corrupt a batch behind the ledger's back.
	s.mu.Lock()
	s.batches[batch.ID].Quantity = decimal.NewFromInt(8)
	s.mu.Unlock()

	drifts := s.VerifyLedger()
	require.Len(t, drifts, 1)
	require.Equal(t, "WIDGET-A", drifts[0].ProductCode)
	require.True(t, qty(t, "10").Equal(drifts[0].LedgerTotal))
	require.True(t, qty(t, "8").Equal(drifts[0].BatchTotal))
}
