package stock

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransferMergesIntoExistingBatch(t *testing.T) {
	s := newTestStore()
	src, err := s.Receive("WIDGET-A", qty(t, "4"), loc(t, "S-01-1"), BatchMeta{})
	require.NoError(t, err)
	dst, err := s.Receive("WIDGET-A", qty(t, "6"), loc(t, "A-01-1"), BatchMeta{})
	require.NoError(t, err)

	res, err := s.Transfer(src.ID, loc(t, "A-01-1"), qty(t, "4"), "consolidate")
	require.NoError(t, err)
	require.True(t, res.Merged)
	require.True(t, res.SourceDeleted)
	require.Equal(t, dst.ID, res.Dest.ID)
	require.True(t, qty(t, "10").Equal(res.Dest.Quantity))
	require.Len(t, s.Batches(), 1)

	history := s.History("WIDGET-A")
	require.Equal(t, TransactionMove, history[0].Type)
	require.True(t, history[0].Quantity.IsZero())
	require.Equal(t, "S-01-1 -> A-01-1", history[0].LocationInfo)
	require.Equal(t, fmt.Sprintf("consolidate; source=%s surviving=%s", src.ID, dst.ID), history[0].Notes)
}

func TestTransferPartialMergeKeepsSource(t *testing.T) {
	s := newTestStore()
	src, err := s.Receive("WIDGET-A", qty(t, "4"), loc(t, "S-01-1"), BatchMeta{})
	require.NoError(t, err)
	dst, err := s.Receive("WIDGET-A", qty(t, "6"), loc(t, "A-01-1"), BatchMeta{})
	require.NoError(t, err)

	res, err := s.Transfer(src.ID, loc(t, "A-01-1"), qty(t, "1"), "")
	require.NoError(t, err)
	require.True(t, res.Merged)
	require.False(t, res.SourceDeleted)
	require.True(t, qty(t, "3").Equal(res.Source.Quantity))
	require.True(t, qty(t, "7").Equal(res.Dest.Quantity))
	require.Equal(t, dst.ID, res.Dest.ID)
	require.True(t, qty(t, "10").Equal(s.TotalFor("WIDGET-A")))
}

func TestTransferFullMoveKeepsBatchID(t *testing.T) {
	s := newTestStore()
	src, err := s.Receive("WIDGET-A", qty(t, "5"), loc(t, "S-01-1"), BatchMeta{Unit: "pcs"})
	require.NoError(t, err)

	res, err := s.Transfer(src.ID, loc(t, "A-02-2"), qty(t, "5"), "putaway")
	require.NoError(t, err)
	require.False(t, res.Merged)
	require.False(t, res.SourceDeleted)
	require.Equal(t, src.ID, res.Dest.ID)

	moved, err := s.Batch(src.ID)
	require.NoError(t, err)
	at, placed := moved.PrimaryLocation()
	require.True(t, placed)
	require.Equal(t, "A-02-2", at.Code())
	require.Len(t, s.Batches(), 1)
}

func TestTransferPartialSplitsNewBatch(t *testing.T) {
	s := newTestStore()
	src, err := s.Receive("WIDGET-A", qty(t, "9"), loc(t, "A-01-1"), BatchMeta{Unit: "pcs", Category: "fasteners"})
	require.NoError(t, err)

	res, err := s.Transfer(src.ID, loc(t, "B-03-Floor"), qty(t, "4"), "")
	require.NoError(t, err)
	require.False(t, res.Merged)
	require.NotEqual(t, src.ID, res.Dest.ID)
	require.True(t, qty(t, "5").Equal(res.Source.Quantity))
	require.True(t, qty(t, "4").Equal(res.Dest.Quantity))
	require.Equal(t, "pcs", res.Dest.Unit)
	require.Equal(t, "fasteners", res.Dest.Category)
	require.True(t, qty(t, "9").Equal(s.TotalFor("WIDGET-A")))

	// MOVE entries are quantity neutral, so the ledger still reconciles.
	require.Empty(t, s.VerifyLedger())
}

func TestTransferOntoOwnBinIsNoOp(t *testing.T) {
	s := newTestStore()
	src, err := s.Receive("WIDGET-A", qty(t, "5"), loc(t, "A-01-1"), BatchMeta{})
	require.NoError(t, err)

	res, err := s.Transfer(src.ID, loc(t, "A-01-1"), qty(t, "2"), "")
	require.NoError(t, err)
	require.False(t, res.Merged)
	require.True(t, qty(t, "5").Equal(res.Source.Quantity))
	require.Len(t, s.Batches(), 1)

	history := s.History("WIDGET-A")
	require.Equal(t, TransactionMove, history[0].Type)
	require.Equal(t, "A-01-1 -> A-01-1", history[0].LocationInfo)
}

func TestTransferValidation(t *testing.T) {
	s := newTestStore()
	src, err := s.Receive("WIDGET-A", qty(t, "5"), loc(t, "A-01-1"), BatchMeta{})
	require.NoError(t, err)

	_, err = s.Transfer(src.ID, loc(t, "B-01-1"), qty(t, "0"), "")
	require.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = s.Transfer(src.ID, loc(t, "B-01-1"), qty(t, "6"), "")
	require.ErrorIs(t, err, ErrInsufficientStock)
	_, err = s.Transfer("missing", loc(t, "B-01-1"), qty(t, "1"), "")
	require.ErrorIs(t, err, ErrUnknownBatch)

	// Failed transfers leave no MOVE entry.
	require.Len(t, s.History("WIDGET-A"), 1)
}
