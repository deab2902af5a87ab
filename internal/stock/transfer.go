package stock

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/stockyard-wms/stockyard/internal/bins"
)

// TransferResult reports the outcome of a bin-to-bin move.
type TransferResult struct {
	Source        Batch `json:"source"`
	SourceDeleted bool  `json:"source_deleted"`
	Dest          Batch `json:"dest"`
	Merged        bool  `json:"merged"`
}

// Transfer moves qty units from a source batch to a destination bin.
//
// Cases, evaluated in order:
//  1. the destination already holds a batch of the same product: merge into
//     it, so one product never fragments across two batches in one bin;
//  2. the whole batch moves to an empty or different-product bin: the batch
//     is relocated in place, keeping its id;
//  3. part of the batch moves: the source shrinks and a new batch is created
//     at the destination.
//
// Total quantity per product is identical before and after; every transfer
// appends exactly one zero-quantity MOVE entry naming both batch ids.
func (s *Store) Transfer(sourceBatchID string, dest bins.Location, qty decimal.Decimal, note string) (TransferResult, error) {
	if qty.Sign() <= 0 {
		return TransferResult{}, fmt.Errorf("%w: got %s", ErrInvalidQuantity, qty)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transferLocked(sourceBatchID, dest, qty, note)
}

func (s *Store) transferLocked(sourceBatchID string, dest bins.Location, qty decimal.Decimal, note string) (TransferResult, error) {
	src, err := s.batchLocked(sourceBatchID)
	if err != nil {
		return TransferResult{}, err
	}
	if qty.GreaterThan(src.Quantity) {
		return TransferResult{}, fmt.Errorf("%w: batch %s holds %s, requested %s",
			ErrInsufficientStock, src.ID, src.Quantity, qty)
	}

	from := "unplaced"
	if loc, ok := src.PrimaryLocation(); ok {
		from = loc.Code()
	}

	existing := s.findAtLocked(src.ProductCode, dest)
	if existing == src {
		// Moving onto its own bin changes nothing; record the no-op move.
		s.appendMoveLocked(src, from, dest, src.ID, src.ID, note)
		return TransferResult{Source: cloneBatch(src), Dest: cloneBatch(src)}, nil
	}

	full := qty.Equal(src.Quantity)
	result := TransferResult{}
	var surviving *Batch

	switch {
	case existing != nil:
		existing.Quantity = existing.Quantity.Add(qty)
		existing.UpdatedAt = s.now()
		if full {
			s.removeLocked(src.ID)
			src.Quantity = decimal.Zero
			src.UpdatedAt = s.now()
			result.SourceDeleted = true
		} else {
			src.Quantity = src.Quantity.Sub(qty)
			src.UpdatedAt = s.now()
		}
		surviving = existing
		result.Merged = true
	case full:
		src.Locations = []bins.Location{dest}
		src.UpdatedAt = s.now()
		surviving = src
	default:
		src.Quantity = src.Quantity.Sub(qty)
		src.UpdatedAt = s.now()
		split := &Batch{
			ID:          s.idLocked(),
			ProductCode: src.ProductCode,
			Quantity:    qty,
			Unit:        src.Unit,
			Category:    src.Category,
			Locations:   []bins.Location{dest},
			UpdatedAt:   s.now(),
		}
		s.batches[split.ID] = split
		s.order = append(s.order, split.ID)
		surviving = split
	}

	s.appendMoveLocked(src, from, dest, src.ID, surviving.ID, note)
	result.Source = cloneBatch(src)
	result.Dest = cloneBatch(surviving)
	return result, nil
}

// appendMoveLocked logs the zero-quantity MOVE entry for a transfer. Net
// stock for the product is unchanged; only its physical position moved. The
// surviving batch id is recorded so audits can follow stock across a merge.
func (s *Store) appendMoveLocked(src *Batch, from string, dest bins.Location, sourceID, survivingID, note string) {
	audit := fmt.Sprintf("source=%s surviving=%s", sourceID, survivingID)
	if note != "" {
		audit = note + "; " + audit
	}
	s.appendLocked(Transaction{
		Type:         TransactionMove,
		ProductCode:  src.ProductCode,
		Quantity:     decimal.Zero,
		Unit:         src.Unit,
		LocationInfo: fmt.Sprintf("%s -> %s", from, dest.Code()),
		Notes:        audit,
	})
}
