package stock

import (
	"strings"
	"time"
)

// BatchRecord is the flat, field-named export shape for one batch, suitable
// for simple tabular encoding. Locations render as a pipe-separated list of
// canonical bin codes.
type BatchRecord struct {
	ID          string    `json:"id"`
	ProductCode string    `json:"product_code"`
	Quantity    string    `json:"quantity"`
	Unit        string    `json:"unit"`
	Category    string    `json:"category"`
	Locations   string    `json:"locations"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ExportBatch flattens one batch.
func ExportBatch(b Batch) BatchRecord {
	codes := make([]string, 0, len(b.Locations))
	for _, loc := range b.Locations {
		codes = append(codes, loc.Code())
	}
	return BatchRecord{
		ID:          b.ID,
		ProductCode: b.ProductCode,
		Quantity:    b.Quantity.String(),
		Unit:        b.Unit,
		Category:    b.Category,
		Locations:   strings.Join(codes, "|"),
		UpdatedAt:   b.UpdatedAt,
	}
}

// ExportBatches flattens a batch list.
func ExportBatches(list []Batch) []BatchRecord {
	out := make([]BatchRecord, 0, len(list))
	for _, b := range list {
		out = append(out, ExportBatch(b))
	}
	return out
}

// TransactionRecord is the flat export shape for one ledger entry.
type TransactionRecord struct {
	ID           string    `json:"id"`
	Date         time.Time `json:"date"`
	Type         string    `json:"type"`
	ProductCode  string    `json:"product_code"`
	Quantity     string    `json:"quantity"`
	Unit         string    `json:"unit"`
	LocationInfo string    `json:"location_info"`
	Notes        string    `json:"notes"`
}

// ExportTransactions flattens a ledger slice.
func ExportTransactions(list []Transaction) []TransactionRecord {
	out := make([]TransactionRecord, 0, len(list))
	for _, t := range list {
		out = append(out, TransactionRecord{
			ID:           t.ID,
			Date:         t.Date,
			Type:         string(t.Type),
			ProductCode:  t.ProductCode,
			Quantity:     t.Quantity.String(),
			Unit:         t.Unit,
			LocationInfo: t.LocationInfo,
			Notes:        t.Notes,
		})
	}
	return out
}
