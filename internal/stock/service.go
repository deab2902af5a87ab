package stock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockyard-wms/stockyard/internal/bins"
)

// BinResolver checks that a location resolves to a catalog bin.
// Implemented by the bin catalog.
type BinResolver interface {
	Contains(loc bins.Location) bool
}

// ProductDefaults carries unit/category fallbacks from the product master.
type ProductDefaults struct {
	Unit     string
	Category string
}

// ProductSource resolves product defaults for inbound receipts.
type ProductSource interface {
	Defaults(code string) (ProductDefaults, bool)
}

// CacheBumper invalidates derived report caches after a mutation.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// Service coordinates stock operations: it validates locations against the
// bin catalog, applies product defaults and invalidates report caches after
// each mutation.
type Service struct {
	store    *Store
	planner  *Planner
	resolver BinResolver
	products ProductSource
	bumper   CacheBumper
	logger   *slog.Logger
}

// NewService builds a Service. resolver, products and bumper may be nil.
func NewService(store *Store, planner *Planner, resolver BinResolver, products ProductSource, bumper CacheBumper, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		planner:  planner,
		resolver: resolver,
		products: products,
		bumper:   bumper,
		logger:   logger,
	}
}

// ReceiveInput describes an inbound receipt.
type ReceiveInput struct {
	ProductCode string
	Quantity    decimal.Decimal
	Location    bins.Location
	Unit        string
	Category    string
	Notes       string
	Date        time.Time
}

// Receive books inbound stock into a bin, merging with an existing batch of
// the same product there.
func (s *Service) Receive(ctx context.Context, input ReceiveInput) (Batch, error) {
	if err := s.resolveBin(input.Location); err != nil {
		return Batch{}, err
	}
	meta := BatchMeta{Unit: input.Unit, Category: input.Category, Notes: input.Notes, Date: input.Date}
	if s.products != nil {
		if defaults, ok := s.products.Defaults(input.ProductCode); ok {
			if meta.Unit == "" {
				meta.Unit = defaults.Unit
			}
			if meta.Category == "" {
				meta.Category = defaults.Category
			}
		}
	}
	batch, err := s.store.Receive(input.ProductCode, input.Quantity, input.Location, meta)
	if err != nil {
		return Batch{}, err
	}
	s.logger.Info("stock received",
		slog.String("product", batch.ProductCode),
		slog.String("qty", input.Quantity.String()),
		slog.String("bin", input.Location.Code()))
	s.bump(ctx)
	return batch, nil
}

// Adjust applies a signed manual correction to a batch.
func (s *Service) Adjust(ctx context.Context, batchID string, delta decimal.Decimal, note string) (AdjustResult, error) {
	res, err := s.store.AdjustQuantity(batchID, delta, note)
	if err != nil {
		return AdjustResult{}, err
	}
	s.logger.Info("stock adjusted",
		slog.String("batch", batchID),
		slog.String("delta", delta.String()),
		slog.Bool("deleted", res.Deleted))
	s.bump(ctx)
	return res, nil
}

// Transfer moves stock between bins through the transfer engine.
func (s *Service) Transfer(ctx context.Context, sourceBatchID string, dest bins.Location, qty decimal.Decimal, note string) (TransferResult, error) {
	if err := s.resolveBin(dest); err != nil {
		return TransferResult{}, err
	}
	res, err := s.store.Transfer(sourceBatchID, dest, qty, note)
	if err != nil {
		return TransferResult{}, err
	}
	s.logger.Info("stock transferred",
		slog.String("source", sourceBatchID),
		slog.String("dest", dest.Code()),
		slog.String("qty", qty.String()),
		slog.Bool("merged", res.Merged))
	s.bump(ctx)
	return res, nil
}

// Relocate moves a whole batch to another bin, merging with a same-product
// batch already there.
func (s *Service) Relocate(ctx context.Context, batchID string, dest bins.Location, note string) (Batch, error) {
	if err := s.resolveBin(dest); err != nil {
		return Batch{}, err
	}
	batch, err := s.store.Relocate(batchID, dest, note)
	if err != nil {
		return Batch{}, err
	}
	s.logger.Info("batch relocated",
		slog.String("batch", batchID),
		slog.String("dest", dest.Code()))
	s.bump(ctx)
	return batch, nil
}

// Count reconciles a batch against a cycle count.
func (s *Service) Count(ctx context.Context, batchID string, counted decimal.Decimal, note string) (AdjustResult, error) {
	res, err := s.store.CountBatch(batchID, counted, note)
	if err != nil {
		return AdjustResult{}, err
	}
	s.bump(ctx)
	return res, nil
}

// Delete removes a batch regardless of quantity.
func (s *Service) Delete(ctx context.Context, batchID, note string) error {
	if err := s.store.DeleteBatch(batchID, note); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

// PlanOutbound proposes a pick plan and reserves its claims.
func (s *Service) PlanOutbound(ctx context.Context, productCode string, requested decimal.Decimal) (Plan, error) {
	plan, err := s.planner.Plan(productCode, requested)
	if err != nil {
		return Plan{}, err
	}
	if plan.Partial() {
		s.logger.Info("partial pick plan",
			slog.String("product", productCode),
			slog.String("requested", plan.Requested.String()),
			slog.String("fulfilled", plan.Fulfilled.String()))
	}
	return plan, nil
}

// ApplyPlan executes a pending plan.
func (s *Service) ApplyPlan(ctx context.Context, planID, note string) (Plan, error) {
	plan, err := s.planner.Apply(planID, note)
	if err != nil {
		return Plan{}, err
	}
	s.bump(ctx)
	return plan, nil
}

// ReleasePlan drops a pending plan.
func (s *Service) ReleasePlan(ctx context.Context, planID string) error {
	return s.planner.Release(planID)
}

// PendingPlans lists reservations awaiting apply or release.
func (s *Service) PendingPlans() []Plan {
	return s.planner.Pending()
}

// Batches exports all live batches.
func (s *Service) Batches() []Batch {
	return s.store.Batches()
}

// Batch returns one batch.
func (s *Service) Batch(batchID string) (Batch, error) {
	return s.store.Batch(batchID)
}

// History returns ledger entries for display, most recent first.
func (s *Service) History(productCode string) []Transaction {
	return s.store.History(productCode)
}

// RunningBalance replays the ledger for one product.
func (s *Service) RunningBalance(productCode string, asOf time.Time) decimal.Decimal {
	return s.store.RunningBalance(productCode, asOf)
}

func (s *Service) resolveBin(loc bins.Location) error {
	if s.resolver != nil && !s.resolver.Contains(loc) {
		return fmt.Errorf("%w: %s", bins.ErrUnknownBin, loc.Code())
	}
	return nil
}

func (s *Service) bump(ctx context.Context) {
	if s.bumper == nil {
		return
	}
	if err := s.bumper.Bump(ctx); err != nil {
		s.logger.Warn("report cache bump", slog.Any("error", err))
	}
}
