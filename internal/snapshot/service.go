package snapshot

import (
	"context"
	"log/slog"
	"time"

	"github.com/stockyard-wms/stockyard/internal/bins"
	"github.com/stockyard-wms/stockyard/internal/products"
	"github.com/stockyard-wms/stockyard/internal/stock"
)

// Service captures and restores whole-warehouse state. Restore is guarded:
// loading a snapshot that is drastically smaller than the live store is
// refused unless forced, since that usually signals a stale or truncated
// snapshot rather than a genuine rollback.
type Service struct {
	store      *stock.Store
	products   *products.Catalog
	bins       *bins.Catalog
	repo       Repository
	guardRatio float64
	logger     *slog.Logger
	now        func() time.Time
}

// NewService builds a snapshot service. guardRatio is the fraction of the
// live batch count a snapshot must reach before an unforced restore proceeds.
func NewService(store *stock.Store, productCatalog *products.Catalog, binCatalog *bins.Catalog, repo Repository, guardRatio float64, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:      store,
		products:   productCatalog,
		bins:       binCatalog,
		repo:       repo,
		guardRatio: guardRatio,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Capture assembles a snapshot from the live state without persisting it.
func (s *Service) Capture() Snapshot {
	batches, ledger := s.store.State()
	return Snapshot{
		TakenAt:      s.now(),
		Products:     s.products.List(),
		Bins:         s.bins.List(),
		Batches:      batches,
		Transactions: ledger,
	}
}

// Persist captures the live state and saves it.
func (s *Service) Persist(ctx context.Context) (Snapshot, error) {
	snap := s.Capture()
	if err := s.repo.Save(ctx, snap); err != nil {
		return Snapshot{}, err
	}
	s.logger.Info("snapshot persisted",
		slog.Time("taken_at", snap.TakenAt),
		slog.Int("batches", len(snap.Batches)),
		slog.Int("transactions", len(snap.Transactions)))
	return snap, nil
}

// RestoreResult reports what a restore loaded.
type RestoreResult struct {
	TakenAt         time.Time `json:"taken_at"`
	Batches         int       `json:"batches"`
	Transactions    int       `json:"transactions"`
	Products        int       `json:"products"`
	StatusesApplied int       `json:"statuses_applied"`
	Orphans         []Orphan  `json:"orphans,omitempty"`
}

// RestoreLatest loads the most recent snapshot into the live store, product
// catalog and bin statuses. The swap is all-or-nothing per collection; the
// store replacement itself is atomic.
func (s *Service) RestoreLatest(ctx context.Context, force bool) (RestoreResult, error) {
	snap, err := s.repo.Latest(ctx)
	if err != nil {
		return RestoreResult{}, err
	}
	liveBatches, _ := s.store.State()
	if !force && len(liveBatches) > 0 {
		threshold := float64(len(liveBatches)) * s.guardRatio
		if float64(len(snap.Batches)) < threshold {
			return RestoreResult{}, guardError(len(liveBatches), len(snap.Batches), s.guardRatio)
		}
	}
	orphans := snap.Validate()
	for _, o := range orphans {
		s.logger.Warn("snapshot batch references unknown product",
			slog.String("batch", o.BatchID),
			slog.String("product", o.ProductCode))
	}

	s.store.Replace(snap.Batches, snap.Transactions)
	s.products.Replace(snap.Products)
	applied := s.bins.ApplyStatuses(snap.Bins)

	s.logger.Info("snapshot restored",
		slog.Time("taken_at", snap.TakenAt),
		slog.Int("batches", len(snap.Batches)),
		slog.Bool("forced", force))
	return RestoreResult{
		TakenAt:         snap.TakenAt,
		Batches:         len(snap.Batches),
		Transactions:    len(snap.Transactions),
		Products:        len(snap.Products),
		StatusesApplied: applied,
		Orphans:         orphans,
	}, nil
}

// Latest returns the most recent persisted snapshot.
func (s *Service) Latest(ctx context.Context) (Snapshot, error) {
	return s.repo.Latest(ctx)
}
