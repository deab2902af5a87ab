// Package snapshot persists and restores the full warehouse state: product
// master, bin statuses, live batches and the transaction ledger, captured as
// one consistent document.
package snapshot

import (
	"errors"
	"fmt"
	"time"

	"github.com/stockyard-wms/stockyard/internal/bins"
	"github.com/stockyard-wms/stockyard/internal/products"
	"github.com/stockyard-wms/stockyard/internal/stock"
)

// Snapshot is one point-in-time capture of the warehouse.
type Snapshot struct {
	TakenAt      time.Time           `json:"taken_at"`
	Products     []products.Product  `json:"products"`
	Bins         []bins.Bin          `json:"bins"`
	Batches      []stock.Batch       `json:"batches"`
	Transactions []stock.Transaction `json:"transactions"`
}

// Orphan reports a batch referencing a product missing from the snapshot's
// own product list. Orphans are tolerated on restore but worth surfacing.
type Orphan struct {
	BatchID     string `json:"batch_id"`
	ProductCode string `json:"product_code"`
}

// Validate cross-checks batches against the embedded product master and
// returns the orphans found. A snapshot with orphans is still restorable.
func (s Snapshot) Validate() []Orphan {
	known := make(map[string]struct{}, len(s.Products))
	for _, p := range s.Products {
		known[p.Code] = struct{}{}
	}
	var orphans []Orphan
	for _, b := range s.Batches {
		if _, ok := known[b.ProductCode]; !ok {
			orphans = append(orphans, Orphan{BatchID: b.ID, ProductCode: b.ProductCode})
		}
	}
	return orphans
}

// ErrNoSnapshot indicates no snapshot has been persisted yet.
var ErrNoSnapshot = errors.New("snapshot: no snapshot available")

// ErrRestoreGuard indicates the latest snapshot holds far fewer batches than
// the live store, which usually means restoring would wipe recent work.
var ErrRestoreGuard = errors.New("snapshot: restore blocked by shrink guard")

// ErrSnapshotExists indicates a duplicate capture for the same instant.
var ErrSnapshotExists = errors.New("snapshot: snapshot already exists for that instant")

func guardError(liveBatches, snapBatches int, ratio float64) error {
	return fmt.Errorf("%w: live store holds %d batches, snapshot %d (guard ratio %.2f); pass force to override",
		ErrRestoreGuard, liveBatches, snapBatches, ratio)
}
