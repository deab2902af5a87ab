package stock

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stockyard-wms/stockyard/internal/bins"
)

func qty(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func loc(t *testing.T, code string) bins.Location {
	t.Helper()
	l, err := bins.ParseLocation(code)
	require.NoError(t, err)
	return l
}

// newTestStore returns a store with deterministic ids and a ticking clock so
// assertions on ordering and timestamps are stable.
func newTestStore() *Store {
	s := NewStore()
	var id int
	s.newID = func() string {
		id++
		return fmt.Sprintf("id-%03d", id)
	}
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	var tick int
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return s
}

func TestReceiveCreatesBatchWithLedgerEntry(t *testing.T) {
	s := newTestStore()

	batch, err := s.Receive("WIDGET-A", qty(t, "12.5"), loc(t, "A-01-1"), BatchMeta{Unit: "kg", Notes: "po 42"})
	require.NoError(t, err)
	require.True(t, qty(t, "12.5").Equal(batch.Quantity))
	require.Equal(t, "kg", batch.Unit)

	history := s.History("WIDGET-A")
	require.Len(t, history, 1)
	require.Equal(t, TransactionInbound, history[0].Type)
	require.Equal(t, "A-01-1", history[0].LocationInfo)
	require.True(t, qty(t, "12.5").Equal(history[0].Quantity))
}

func TestReceiveMergesSameProductSameBin(t *testing.T) {
	s := newTestStore()

	first, err := s.Receive("WIDGET-A", qty(t, "4"), loc(t, "A-01-1"), BatchMeta{})
	require.NoError(t, err)
	second, err := s.Receive("WIDGET-A", qty(t, "6"), loc(t, "A-01-1"), BatchMeta{})
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.True(t, qty(t, "10").Equal(second.Quantity))
	require.Len(t, s.Batches(), 1)
	require.Len(t, s.History("WIDGET-A"), 2)

	// Same product in a different bin stays separate.
	third, err := s.Receive("WIDGET-A", qty(t, "3"), loc(t, "A-02-1"), BatchMeta{})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, third.ID)
	require.Len(t, s.Batches(), 2)
}

func TestReceiveRejectsNonPositiveQuantity(t *testing.T) {
	s := newTestStore()

	_, err := s.Receive("WIDGET-A", decimal.Zero, loc(t, "A-01-1"), BatchMeta{})
	require.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = s.Receive("WIDGET-A", qty(t, "-1"), loc(t, "A-01-1"), BatchMeta{})
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestAdjustQuantityDeletesAtZero(t *testing.T) {
	s := newTestStore()
	batch, err := s.Receive("WIDGET-A", qty(t, "5"), loc(t, "A-01-1"), BatchMeta{})
	require.NoError(t, err)

	res, err := s.AdjustQuantity(batch.ID, qty(t, "-2"), "damage")
	require.NoError(t, err)
	require.False(t, res.Deleted)
	require.True(t, qty(t, "3").Equal(res.Batch.Quantity))

	res, err = s.AdjustQuantity(batch.ID, qty(t, "-3"), "written off")
	require.NoError(t, err)
	require.True(t, res.Deleted)
	require.Empty(t, s.Batches())

	_, err = s.AdjustQuantity(batch.ID, qty(t, "1"), "")
	require.ErrorIs(t, err, ErrUnknownBatch)
}

func TestAdjustQuantityRejectsOverdraw(t *testing.T) {
	s := newTestStore()
	batch, err := s.Receive("WIDGET-A", qty(t, "5"), loc(t, "A-01-1"), BatchMeta{})
	require.NoError(t, err)

	_, err = s.AdjustQuantity(batch.ID, qty(t, "-6"), "")
	require.ErrorIs(t, err, ErrInsufficientStock)
	_, err = s.AdjustQuantity(batch.ID, decimal.Zero, "")
	require.ErrorIs(t, err, ErrInvalidQuantity)

	// Failed adjustments must leave no ledger trace.
	require.Len(t, s.History("WIDGET-A"), 1)
}

func TestCountBatchLogsDifference(t *testing.T) {
	s := newTestStore()
	batch, err := s.Receive("WIDGET-A", qty(t, "10"), loc(t, "A-01-1"), BatchMeta{})
	require.NoError(t, err)

	res, err := s.CountBatch(batch.ID, qty(t, "8"), "cycle count")
	require.NoError(t, err)
	require.True(t, qty(t, "8").Equal(res.Batch.Quantity))

	history := s.History("WIDGET-A")
	require.Equal(t, TransactionCount, history[0].Type)
	require.True(t, qty(t, "-2").Equal(history[0].Quantity))

	// Exact count still leaves a zero-difference confirmation.
	_, err = s.CountBatch(batch.ID, qty(t, "8"), "confirmed")
	require.NoError(t, err)
	history = s.History("WIDGET-A")
	require.Equal(t, TransactionCount, history[0].Type)
	require.True(t, history[0].Quantity.IsZero())

	// Counting zero removes the batch.
	res, err = s.CountBatch(batch.ID, decimal.Zero, "empty bin")
	require.NoError(t, err)
	require.True(t, res.Deleted)

	_, err = s.CountBatch(batch.ID, qty(t, "-1"), "")
	require.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = s.CountBatch(batch.ID, qty(t, "1"), "")
	require.ErrorIs(t, err, ErrUnknownBatch)
}

func TestDeleteBatchLogsNegativeQuantity(t *testing.T) {
	s := newTestStore()
	batch, err := s.Receive("WIDGET-A", qty(t, "7"), loc(t, "A-01-1"), BatchMeta{})
	require.NoError(t, err)

	require.NoError(t, s.DeleteBatch(batch.ID, "obsolete"))
	require.Empty(t, s.Batches())

	history := s.History("WIDGET-A")
	require.Equal(t, TransactionDelete, history[0].Type)
	require.True(t, qty(t, "-7").Equal(history[0].Quantity))
	require.Empty(t, s.VerifyLedger())
}

func TestRelocateMovesWholeBatchWithMoveEntry(t *testing.T) {
	s := newTestStore()
	batch, err := s.Receive("WIDGET-A", qty(t, "9"), loc(t, "A-01-1"), BatchMeta{Unit: "kg"})
	require.NoError(t, err)

	moved, err := s.Relocate(batch.ID, loc(t, "B-02-2"), "restack")
	require.NoError(t, err)
	require.Equal(t, batch.ID, moved.ID)
	require.True(t, qty(t, "9").Equal(moved.Quantity))
	at, placed := moved.PrimaryLocation()
	require.True(t, placed)
	require.Equal(t, "B-02-2", at.Code())

	history := s.History("WIDGET-A")
	require.Len(t, history, 2)
	require.Equal(t, TransactionMove, history[0].Type)
	require.True(t, history[0].Quantity.IsZero())
	require.Equal(t, "A-01-1 -> B-02-2", history[0].LocationInfo)
	require.Contains(t, history[0].Notes, fmt.Sprintf("source=%s surviving=%s", batch.ID, batch.ID))
	require.Empty(t, s.VerifyLedger())
}

func TestRelocateMergesIntoSameProductDestination(t *testing.T) {
	s := newTestStore()
	src, err := s.Receive("WIDGET-A", qty(t, "4"), loc(t, "A-01-1"), BatchMeta{})
	require.NoError(t, err)
	dst, err := s.Receive("WIDGET-A", qty(t, "6"), loc(t, "B-01-1"), BatchMeta{})
	require.NoError(t, err)

	moved, err := s.Relocate(src.ID, loc(t, "B-01-1"), "")
	require.NoError(t, err)
	require.Equal(t, dst.ID, moved.ID)
	require.True(t, qty(t, "10").Equal(moved.Quantity))
	require.Len(t, s.Batches(), 1)

	_, err = s.Batch(src.ID)
	require.ErrorIs(t, err, ErrUnknownBatch)
	require.Empty(t, s.VerifyLedger())

	_, err = s.Relocate("missing", loc(t, "A-01-1"), "")
	require.ErrorIs(t, err, ErrUnknownBatch)
}

func TestRenameProductRewritesBatchesAndHistory(t *testing.T) {
	s := newTestStore()
	_, err := s.Receive("OLD-CODE", qty(t, "5"), loc(t, "A-01-1"), BatchMeta{})
	require.NoError(t, err)
	_, err = s.Receive("OLD-CODE", qty(t, "2"), loc(t, "A-02-1"), BatchMeta{})
	require.NoError(t, err)
	_, err = s.Receive("OTHER", qty(t, "9"), loc(t, "A-03-1"), BatchMeta{})
	require.NoError(t, err)

	rewritten, err := s.RenameProduct("OLD-CODE", "NEW-CODE")
	require.NoError(t, err)
	// Two batches plus their two inbound entries.
	require.Equal(t, 4, rewritten)

	require.Empty(t, s.BatchesFor("OLD-CODE"))
	require.Len(t, s.BatchesFor("NEW-CODE"), 2)
	require.Empty(t, s.History("OLD-CODE"))
	require.Len(t, s.History("NEW-CODE"), 2)
	require.Len(t, s.History("OTHER"), 1)

	_, err = s.RenameProduct("NEW-CODE", "NEW-CODE")
	require.Error(t, err)
}

func TestReplaceSwapsStateAtomically(t *testing.T) {
	s := newTestStore()
	_, err := s.Receive("WIDGET-A", qty(t, "5"), loc(t, "A-01-1"), BatchMeta{})
	require.NoError(t, err)

	batches := []Batch{{
		ID:          "restored-1",
		ProductCode: "WIDGET-B",
		Quantity:    qty(t, "3"),
		Locations:   []bins.Location{loc(t, "B-01-1")},
	}}
	ledger := []Transaction{{
		ID:          "tx-1",
		Date:        time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Type:        TransactionInbound,
		ProductCode: "WIDGET-B",
		Quantity:    qty(t, "3"),
	}}
	s.Replace(batches, ledger)

	require.Empty(t, s.BatchesFor("WIDGET-A"))
	got := s.Batches()
	require.Len(t, got, 1)
	require.Equal(t, "restored-1", got[0].ID)
	require.Empty(t, s.VerifyLedger())
}
