package products

import (
	"log/slog"
)

// StockRewriter cascades a product code rename into batches and ledger
// history. Implemented by the stock store.
type StockRewriter interface {
	RenameProduct(oldCode, newCode string) (int, error)
}

// Service coordinates product master updates with the stock engine.
type Service struct {
	catalog *Catalog
	stock   StockRewriter
	logger  *slog.Logger
}

// NewService builds a Service.
func NewService(catalog *Catalog, stock StockRewriter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{catalog: catalog, stock: stock, logger: logger}
}

// Upsert stores reference data pushed from the external product master.
func (s *Service) Upsert(p Product) (Product, error) {
	return s.catalog.Upsert(p)
}

// Get returns one product.
func (s *Service) Get(code string) (Product, error) {
	return s.catalog.Get(code)
}

// List returns the full master.
func (s *Service) List() []Product {
	return s.catalog.List()
}

// Rename re-keys a product and rewrites every batch and historical
// transaction that references the old code. This is the single entry point
// for the cascade; call sites must never rewrite the collections themselves.
func (s *Service) Rename(oldCode, newCode string) (Product, int, error) {
	product, err := s.catalog.Rename(oldCode, newCode)
	if err != nil {
		return Product{}, 0, err
	}
	rewritten, err := s.stock.RenameProduct(NormalizeCode(oldCode), product.Code)
	if err != nil {
		// Roll the catalog back so master and stock history stay in step.
		if _, rbErr := s.catalog.Rename(product.Code, oldCode); rbErr != nil {
			s.logger.Error("rename rollback failed",
				slog.String("old", oldCode),
				slog.String("new", newCode),
				slog.Any("error", rbErr))
		}
		return Product{}, 0, err
	}
	s.logger.Info("product renamed",
		slog.String("old", NormalizeCode(oldCode)),
		slog.String("new", product.Code),
		slog.Int("records_rewritten", rewritten))
	return product, rewritten, nil
}
