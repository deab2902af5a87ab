package reports

import (
	"context"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/stockyard-wms/stockyard/internal/products"
	"github.com/stockyard-wms/stockyard/internal/stock"
)

// StockLevelRow aggregates the live batches of one product against its
// minimum stock level.
type StockLevelRow struct {
	ProductCode   string          `json:"product_code"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	Total         decimal.Decimal `json:"total"`
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
	BelowMin      bool            `json:"below_min"`
	BatchCount    int             `json:"batch_count"`
	Bins          []string        `json:"bins"`
}

// Overview is the dashboard roll-up.
type Overview struct {
	Products     int           `json:"products"`
	Batches      int           `json:"batches"`
	Transactions int           `json:"transactions"`
	LowStock     int           `json:"low_stock"`
	Drifts       []stock.Drift `json:"drifts"`
}

// Service computes report views over the live engine. Cached loads are
// collapsed through singleflight so a cold cache under concurrent requests
// computes each view once.
type Service struct {
	store    *stock.Store
	products *products.Catalog
	cache    *Cache
	group    singleflight.Group
	logger   *slog.Logger
}

// NewService builds a report service. cache may be nil.
func NewService(store *stock.Store, productCatalog *products.Catalog, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, products: productCatalog, cache: cache, logger: logger}
}

// StockLevels reports every product with live stock or a configured minimum,
// sorted by code.
func (s *Service) StockLevels(ctx context.Context) ([]StockLevelRow, error) {
	key, err := s.cache.BuildKey(ctx, keyLevels())
	if err != nil {
		return nil, err
	}
	var rows []StockLevelRow
	err = s.cache.FetchJSON(ctx, key, &rows, func(ctx context.Context) (interface{}, error) {
		v, err, _ := s.group.Do(key, func() (interface{}, error) {
			return s.computeLevels(), nil
		})
		return v, err
	})
	return rows, err
}

// LowStock reports only the products below their configured minimum.
func (s *Service) LowStock(ctx context.Context) ([]StockLevelRow, error) {
	key, err := s.cache.BuildKey(ctx, keyLowStock())
	if err != nil {
		return nil, err
	}
	var rows []StockLevelRow
	err = s.cache.FetchJSON(ctx, key, &rows, func(ctx context.Context) (interface{}, error) {
		v, err, _ := s.group.Do(key, func() (interface{}, error) {
			var low []StockLevelRow
			for _, row := range s.computeLevels() {
				if row.BelowMin {
					low = append(low, row)
				}
			}
			return low, nil
		})
		return v, err
	})
	return rows, err
}

// StockOverview assembles the dashboard roll-up, computing independent
// sections concurrently.
func (s *Service) StockOverview(ctx context.Context) (Overview, error) {
	key, err := s.cache.BuildKey(ctx, keyOverview())
	if err != nil {
		return Overview{}, err
	}
	var overview Overview
	err = s.cache.FetchJSON(ctx, key, &overview, func(ctx context.Context) (interface{}, error) {
		v, err, _ := s.group.Do(key, func() (interface{}, error) {
			return s.computeOverview(ctx)
		})
		return v, err
	})
	return overview, err
}

// Drifts checks the ledger/state invariant; never cached, integrity checks
// must see the live engine.
func (s *Service) Drifts() []stock.Drift {
	return s.store.VerifyLedger()
}

func (s *Service) computeLevels() []StockLevelRow {
	byCode := make(map[string]*StockLevelRow)
	for _, p := range s.products.List() {
		byCode[p.Code] = &StockLevelRow{
			ProductCode:   p.Code,
			Name:          p.Name,
			Unit:          p.DefaultUnit,
			MinStockLevel: p.MinStockLevel,
		}
	}
	for _, b := range s.store.Batches() {
		row, ok := byCode[b.ProductCode]
		if !ok {
			row = &StockLevelRow{ProductCode: b.ProductCode, Unit: b.Unit}
			byCode[b.ProductCode] = row
		}
		row.Total = row.Total.Add(b.Quantity)
		row.BatchCount++
		if loc, placed := b.PrimaryLocation(); placed {
			row.Bins = append(row.Bins, loc.Code())
		}
	}
	rows := make([]StockLevelRow, 0, len(byCode))
	for _, row := range byCode {
		row.BelowMin = row.MinStockLevel.Sign() > 0 && row.Total.LessThan(row.MinStockLevel)
		sort.Strings(row.Bins)
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ProductCode < rows[j].ProductCode })
	return rows
}

func (s *Service) computeOverview(ctx context.Context) (Overview, error) {
	var (
		overview Overview
		levels   []StockLevelRow
		drifts   []stock.Drift
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		levels = s.computeLevels()
		return nil
	})
	g.Go(func() error {
		drifts = s.store.VerifyLedger()
		return nil
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	batches, ledger := s.store.State()
	overview.Products = len(s.products.List())
	overview.Batches = len(batches)
	overview.Transactions = len(ledger)
	overview.Drifts = drifts
	for _, row := range levels {
		if row.BelowMin {
			overview.LowStock++
		}
	}
	return overview, nil
}
