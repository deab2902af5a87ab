package stock

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// RunningBalance reconstructs the balance of a product by replaying its
// transactions in ascending date order. Entries may have been appended out
// of order (manual backdating), so replay always sorts by date and never
// relies on insertion order. A zero asOf means "now".
func (s *Store) RunningBalance(productCode string, asOf time.Time) decimal.Decimal {
	s.mu.Lock()
	entries := make([]Transaction, 0, len(s.ledger))
	for _, t := range s.ledger {
		if t.ProductCode == productCode {
			entries = append(entries, t)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date.Before(entries[j].Date) })

	balance := decimal.Zero
	for _, t := range entries {
		if !asOf.IsZero() && t.Date.After(asOf) {
			break
		}
		balance = balance.Add(t.Quantity)
	}
	return balance
}

// History returns ledger entries for display, most recent first. An empty
// product code returns the whole ledger. Display order is independent of
// the replay order used by RunningBalance.
func (s *Store) History(productCode string) []Transaction {
	s.mu.Lock()
	entries := make([]Transaction, 0, len(s.ledger))
	for _, t := range s.ledger {
		if productCode == "" || t.ProductCode == productCode {
			entries = append(entries, t)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date.After(entries[j].Date) })
	return entries
}

// Drift reports a product whose replayed ledger balance no longer matches
// the sum of its live batches.
type Drift struct {
	ProductCode string          `json:"product_code"`
	LedgerTotal decimal.Decimal `json:"ledger_total"`
	BatchTotal  decimal.Decimal `json:"batch_total"`
}

// VerifyLedger checks the ledger/state invariant for every product seen in
// either collection: the sum of all transaction quantities must equal the
// sum of live batch quantities.
func (s *Store) VerifyLedger() []Drift {
	s.mu.Lock()
	ledgerTotals := make(map[string]decimal.Decimal)
	for _, t := range s.ledger {
		ledgerTotals[t.ProductCode] = ledgerTotals[t.ProductCode].Add(t.Quantity)
	}
	batchTotals := make(map[string]decimal.Decimal)
	for _, b := range s.batches {
		batchTotals[b.ProductCode] = batchTotals[b.ProductCode].Add(b.Quantity)
	}
	s.mu.Unlock()

	codes := make(map[string]struct{})
	for code := range ledgerTotals {
		codes[code] = struct{}{}
	}
	for code := range batchTotals {
		codes[code] = struct{}{}
	}

	var drifts []Drift
	for code := range codes {
		if !ledgerTotals[code].Equal(batchTotals[code]) {
			drifts = append(drifts, Drift{
				ProductCode: code,
				LedgerTotal: ledgerTotals[code],
				BatchTotal:  batchTotals[code],
			})
		}
	}
	sort.Slice(drifts, func(i, j int) bool { return drifts[i].ProductCode < drifts[j].ProductCode })
	return drifts
}
