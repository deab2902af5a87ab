// Package stock implements the warehouse stock engine: the authoritative
// in-memory batch store, the append-only transaction ledger, the outbound
// allocator and the bin-to-bin transfer engine.
package stock

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockyard-wms/stockyard/internal/bins"
)

// TransactionType enumerates stock-affecting events.
type TransactionType string

const (
	// TransactionInbound records stock received into a bin.
	TransactionInbound TransactionType = "INBOUND"
	// TransactionOutbound records stock drawn to fulfil a pick plan.
	TransactionOutbound TransactionType = "OUTBOUND"
	// TransactionAdjustment records a manual quantity correction.
	TransactionAdjustment TransactionType = "ADJUSTMENT"
	// TransactionMove records a pure relocation; quantity is always zero.
	TransactionMove TransactionType = "MOVE"
	// TransactionDelete records manual batch removal regardless of quantity.
	TransactionDelete TransactionType = "DELETE"
	// TransactionCount records a cycle-count correction.
	TransactionCount TransactionType = "COUNT"
)

// Batch is one discrete quantity of a product pinned to a bin.
// Quantity is strictly positive while the batch exists; an operation that
// drives it to zero deletes the batch.
type Batch struct {
	ID          string          `json:"id"`
	ProductCode string          `json:"product_code"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	Category    string          `json:"category"`
	Locations   []bins.Location `json:"locations"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// PrimaryLocation returns the batch's bin. Batches carry a location list for
// historical reasons but hold exactly one bin in all allocation and transfer
// logic; false means the batch is unplaced.
func (b Batch) PrimaryLocation() (bins.Location, bool) {
	if len(b.Locations) == 0 {
		return bins.Location{}, false
	}
	return b.Locations[0], true
}

// Transaction is one immutable ledger entry. Quantity is signed: positive
// inbound, negative outbound or removal, zero for pure relocations.
type Transaction struct {
	ID           string          `json:"id"`
	Date         time.Time       `json:"date"`
	Type         TransactionType `json:"type"`
	ProductCode  string          `json:"product_code"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	LocationInfo string          `json:"location_info"`
	Notes        string          `json:"notes"`
}

// BatchMeta carries optional attributes for inbound receipts. Date allows
// backdated entries; zero means now.
type BatchMeta struct {
	Unit     string
	Category string
	Notes    string
	Date     time.Time
}

// AdjustResult reports a quantity change. Deleted is true when the change
// drove the batch to zero and removed it.
type AdjustResult struct {
	Batch   Batch
	Deleted bool
}

// ErrInvalidQuantity flags a zero or negative requested or move quantity.
var ErrInvalidQuantity = errors.New("stock: quantity must be positive")

// ErrInsufficientStock flags a draw exceeding what a batch holds.
var ErrInsufficientStock = errors.New("stock: insufficient stock")

// ErrUnknownBatch flags a reference to a nonexistent batch id.
var ErrUnknownBatch = errors.New("stock: unknown batch")

// ErrUnknownPlan flags a reference to a nonexistent or already-settled plan.
var ErrUnknownPlan = errors.New("stock: unknown plan")
