package stock

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockyard-wms/stockyard/internal/bins"
)

// Store owns the authoritative batch collection and the transaction ledger.
// Every mutation that changes quantity or location appends its paired ledger
// entry inside the same critical section, so no reader ever observes a batch
// change without its transaction. The engine is single-writer by design; the
// mutex adapts it to multi-client HTTP use.
type Store struct {
	mu      sync.Mutex
	batches map[string]*Batch
	order   []string
	ledger  []Transaction
	now     func() time.Time
	newID   func() string
}

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{
		batches: make(map[string]*Batch),
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

// CreateBatch registers a new batch at a bin and logs the inbound receipt.
func (s *Store) CreateBatch(productCode string, qty decimal.Decimal, loc bins.Location, meta BatchMeta) (Batch, error) {
	if qty.Sign() <= 0 {
		return Batch{}, fmt.Errorf("%w: got %s", ErrInvalidQuantity, qty)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(productCode, qty, loc, meta), nil
}

// Receive books inbound stock, merging into an existing batch of the same
// product at the same bin instead of fragmenting it.
func (s *Store) Receive(productCode string, qty decimal.Decimal, loc bins.Location, meta BatchMeta) (Batch, error) {
	if qty.Sign() <= 0 {
		return Batch{}, fmt.Errorf("%w: got %s", ErrInvalidQuantity, qty)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing := s.findAtLocked(productCode, loc); existing != nil {
		res, err := s.adjustLocked(existing, qty, TransactionInbound, loc.Code(), meta.Notes, meta.Date)
		if err != nil {
			return Batch{}, err
		}
		return res.Batch, nil
	}
	return s.createLocked(productCode, qty, loc, meta), nil
}

// AdjustQuantity applies a signed delta to a batch. Driving the quantity to
// zero deletes the batch; the result makes the deletion observable.
func (s *Store) AdjustQuantity(batchID string, delta decimal.Decimal, note string) (AdjustResult, error) {
	if delta.IsZero() {
		return AdjustResult{}, fmt.Errorf("%w: zero adjustment", ErrInvalidQuantity)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.batchLocked(batchID)
	if err != nil {
		return AdjustResult{}, err
	}
	info := ""
	if loc, ok := b.PrimaryLocation(); ok {
		info = loc.Code()
	}
	return s.adjustLocked(b, delta, TransactionAdjustment, info, note, time.Time{})
}

// Relocate moves a whole batch to a new bin without touching quantity. It
// runs through the transfer engine so a same-product batch already at the
// destination merges instead of fragmenting, and returns the surviving batch.
func (s *Store) Relocate(batchID string, dest bins.Location, note string) (Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.batchLocked(batchID)
	if err != nil {
		return Batch{}, err
	}
	res, err := s.transferLocked(b.ID, dest, b.Quantity, note)
	if err != nil {
		return Batch{}, err
	}
	return res.Dest, nil
}

// DeleteBatch removes a batch regardless of quantity (manual removal or
// audit correction) and logs the removal as negative stock.
func (s *Store) DeleteBatch(batchID, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.batchLocked(batchID)
	if err != nil {
		return err
	}
	info := ""
	if loc, ok := b.PrimaryLocation(); ok {
		info = loc.Code()
	}
	s.removeLocked(b.ID)
	s.appendLocked(Transaction{
		Type:         TransactionDelete,
		ProductCode:  b.ProductCode,
		Quantity:     b.Quantity.Neg(),
		Unit:         b.Unit,
		LocationInfo: info,
		Notes:        note,
	})
	return nil
}

// CountBatch reconciles a batch against a counted quantity, logging the
// signed difference. Counting zero deletes the batch; counting the current
// quantity logs a zero-difference confirmation.
func (s *Store) CountBatch(batchID string, counted decimal.Decimal, note string) (AdjustResult, error) {
	if counted.Sign() < 0 {
		return AdjustResult{}, fmt.Errorf("%w: counted %s", ErrInvalidQuantity, counted)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.batchLocked(batchID)
	if err != nil {
		return AdjustResult{}, err
	}
	info := ""
	if loc, ok := b.PrimaryLocation(); ok {
		info = loc.Code()
	}
	diff := counted.Sub(b.Quantity)
	if diff.IsZero() {
		b.UpdatedAt = s.now()
		s.appendLocked(Transaction{
			Type:         TransactionCount,
			ProductCode:  b.ProductCode,
			Quantity:     decimal.Zero,
			Unit:         b.Unit,
			LocationInfo: info,
			Notes:        note,
		})
		return AdjustResult{Batch: cloneBatch(b)}, nil
	}
	return s.adjustLocked(b, diff, TransactionCount, info, note, time.Time{})
}

// RenameProduct rewrites the product code on every batch and every
// historical transaction referencing the old code. Returns how many records
// changed. The cascade is deliberate: master data renames must never leave
// history pointing at a dead code.
func (s *Store) RenameProduct(oldCode, newCode string) (int, error) {
	if oldCode == "" || newCode == "" || oldCode == newCode {
		return 0, fmt.Errorf("stock: invalid rename %q -> %q", oldCode, newCode)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rewritten := 0
	for _, b := range s.batches {
		if b.ProductCode == oldCode {
			b.ProductCode = newCode
			rewritten++
		}
	}
	for i := range s.ledger {
		if s.ledger[i].ProductCode == oldCode {
			s.ledger[i].ProductCode = newCode
			rewritten++
		}
	}
	return rewritten, nil
}

// Batch returns a copy of one batch.
func (s *Store) Batch(batchID string) (Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.batchLocked(batchID)
	if err != nil {
		return Batch{}, err
	}
	return cloneBatch(b), nil
}

// Batches returns copies of all live batches in creation order.
func (s *Store) Batches() []Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Batch, 0, len(s.order))
	for _, id := range s.order {
		if b, ok := s.batches[id]; ok {
			out = append(out, cloneBatch(b))
		}
	}
	return out
}

// BatchesFor returns copies of the live batches holding one product.
func (s *Store) BatchesFor(productCode string) []Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batchesForLocked(productCode)
}

// TotalFor sums the live batch quantities for one product.
func (s *Store) TotalFor(productCode string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, id := range s.order {
		if b, ok := s.batches[id]; ok && b.ProductCode == productCode {
			total = total.Add(b.Quantity)
		}
	}
	return total
}

// State exports deep copies of the batches and the full ledger, for
// snapshots and reports.
func (s *Store) State() ([]Batch, []Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batches := make([]Batch, 0, len(s.order))
	for _, id := range s.order {
		if b, ok := s.batches[id]; ok {
			batches = append(batches, cloneBatch(b))
		}
	}
	ledger := make([]Transaction, len(s.ledger))
	copy(ledger, s.ledger)
	return batches, ledger
}

// Replace swaps the entire engine state in one step. Used by snapshot
// restore; it is all-or-nothing so batches and ledger can never diverge
// through a partial load.
func (s *Store) Replace(batches []Batch, ledger []Transaction) {
	byID := make(map[string]*Batch, len(batches))
	order := make([]string, 0, len(batches))
	for i := range batches {
		b := cloneBatch(&batches[i])
		if b.ID == "" {
			b.ID = s.idLocked()
		}
		byID[b.ID] = &b
		order = append(order, b.ID)
	}
	entries := make([]Transaction, len(ledger))
	copy(entries, ledger)

	s.mu.Lock()
	s.batches = byID
	s.order = order
	s.ledger = entries
	s.mu.Unlock()
}

func (s *Store) createLocked(productCode string, qty decimal.Decimal, loc bins.Location, meta BatchMeta) Batch {
	b := &Batch{
		ID:          s.idLocked(),
		ProductCode: productCode,
		Quantity:    qty,
		Unit:        meta.Unit,
		Category:    meta.Category,
		Locations:   []bins.Location{loc},
		UpdatedAt:   s.now(),
	}
	s.batches[b.ID] = b
	s.order = append(s.order, b.ID)
	s.appendLocked(Transaction{
		Date:         meta.Date,
		Type:         TransactionInbound,
		ProductCode:  productCode,
		Quantity:     qty,
		Unit:         meta.Unit,
		LocationInfo: loc.Code(),
		Notes:        meta.Notes,
	})
	return cloneBatch(b)
}

// adjustLocked applies a delta, deletes at zero and appends the paired
// ledger entry. Callers hold the lock and pass the transaction type matching
// their flow (ADJUSTMENT, INBOUND merge, OUTBOUND draw, COUNT correction).
func (s *Store) adjustLocked(b *Batch, delta decimal.Decimal, txType TransactionType, locationInfo, note string, date time.Time) (AdjustResult, error) {
	next := b.Quantity.Add(delta)
	if next.Sign() < 0 {
		return AdjustResult{}, fmt.Errorf("%w: batch %s holds %s, delta %s",
			ErrInsufficientStock, b.ID, b.Quantity, delta)
	}
	deleted := next.IsZero()
	b.Quantity = next
	b.UpdatedAt = s.now()
	if deleted {
		s.removeLocked(b.ID)
	}
	s.appendLocked(Transaction{
		Date:         date,
		Type:         txType,
		ProductCode:  b.ProductCode,
		Quantity:     delta,
		Unit:         b.Unit,
		LocationInfo: locationInfo,
		Notes:        note,
	})
	return AdjustResult{Batch: cloneBatch(b), Deleted: deleted}, nil
}

func (s *Store) appendLocked(t Transaction) Transaction {
	if t.ID == "" {
		t.ID = s.idLocked()
	}
	if t.Date.IsZero() {
		t.Date = s.now()
	}
	s.ledger = append(s.ledger, t)
	return t
}

func (s *Store) batchLocked(batchID string) (*Batch, error) {
	b, ok := s.batches[batchID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBatch, batchID)
	}
	return b, nil
}

func (s *Store) batchesForLocked(productCode string) []Batch {
	var out []Batch
	for _, id := range s.order {
		if b, ok := s.batches[id]; ok && b.ProductCode == productCode {
			out = append(out, cloneBatch(b))
		}
	}
	return out
}

// findAtLocked returns the live batch of a product at an exact bin, if any.
// The transfer engine keeps at most one per (product, bin).
func (s *Store) findAtLocked(productCode string, loc bins.Location) *Batch {
	for _, id := range s.order {
		b, ok := s.batches[id]
		if !ok || b.ProductCode != productCode {
			continue
		}
		if at, placed := b.PrimaryLocation(); placed && at.Equal(loc) {
			return b
		}
	}
	return nil
}

func (s *Store) removeLocked(batchID string) {
	delete(s.batches, batchID)
	for i, id := range s.order {
		if id == batchID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Store) idLocked() string {
	return s.newID()
}

func cloneBatch(b *Batch) Batch {
	out := *b
	out.Locations = make([]bins.Location, len(b.Locations))
	copy(out.Locations, b.Locations)
	return out
}
