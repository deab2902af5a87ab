package reports

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stockyard-wms/stockyard/internal/bins"
	"github.com/stockyard-wms/stockyard/internal/products"
	"github.com/stockyard-wms/stockyard/internal/stock"
)

func newTestService(t *testing.T) (*Service, *stock.Store, *products.Catalog) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := stock.NewStore()
	catalog := products.NewCatalog()
	svc := NewService(store, catalog, NewCache(client, time.Minute), nil)
	return svc, store, catalog
}

func receive(t *testing.T, store *stock.Store, product, quantity, binCode string) {
	t.Helper()
	q, err := decimal.NewFromString(quantity)
	require.NoError(t, err)
	loc, err := bins.ParseLocation(binCode)
	require.NoError(t, err)
	_, err = store.Receive(product, q, loc, stock.BatchMeta{})
	require.NoError(t, err)
}

func TestStockLevelsAggregateAcrossBins(t *testing.T) {
	svc, store, catalog := newTestService(t)
	ctx := context.Background()

	_, err := catalog.Upsert(products.Product{
		Code:          "WIDGET-A",
		Name:          "Widget A",
		DefaultUnit:   "pcs",
		MinStockLevel: decimal.NewFromInt(20),
	})
	require.NoError(t, err)
	receive(t, store, "WIDGET-A", "12", "A-01-1")
	receive(t, store, "WIDGET-A", "5", "S-02-1")

	rows, err := svc.StockLevels(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "WIDGET-A", rows[0].ProductCode)
	require.Equal(t, "17", rows[0].Total.String())
	require.True(t, rows[0].BelowMin)
	require.Equal(t, 2, rows[0].BatchCount)
	require.Equal(t, []string{"A-01-1", "S-02-1"}, rows[0].Bins)
}

func TestStockLevelsIncludeUncataloguedProducts(t *testing.T) {
	svc, store, _ := newTestService(t)

	receive(t, store, "UNLISTED", "4", "A-01-1")
	rows, err := svc.StockLevels(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "UNLISTED", rows[0].ProductCode)
	require.False(t, rows[0].BelowMin)
}

func TestStockLevelsCacheUntilBump(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	receive(t, store, "WIDGET-A", "10", "A-01-1")
	rows, err := svc.StockLevels(ctx)
	require.NoError(t, err)
	require.Equal(t, "10", rows[0].Total.String())

	// A mutation without a bump serves the stale cached view.
	receive(t, store, "WIDGET-A", "5", "A-01-1")
	rows, err = svc.StockLevels(ctx)
	require.NoError(t, err)
	require.Equal(t, "10", rows[0].Total.String())

	require.NoError(t, svc.cache.Bump(ctx))
	rows, err = svc.StockLevels(ctx)
	require.NoError(t, err)
	require.Equal(t, "15", rows[0].Total.String())
}

func TestLowStockFiltersBelowMinimum(t *testing.T) {
	svc, store, catalog := newTestService(t)
	ctx := context.Background()

	_, err := catalog.Upsert(products.Product{Code: "LOW", MinStockLevel: decimal.NewFromInt(10)})
	require.NoError(t, err)
	_, err = catalog.Upsert(products.Product{Code: "OK", MinStockLevel: decimal.NewFromInt(2)})
	require.NoError(t, err)
	receive(t, store, "LOW", "3", "A-01-1")
	receive(t, store, "OK", "5", "A-02-1")

	rows, err := svc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "LOW", rows[0].ProductCode)
}

func TestStockOverviewCountsAndDrift(t *testing.T) {
	svc, store, catalog := newTestService(t)
	ctx := context.Background()

	_, err := catalog.Upsert(products.Product{Code: "WIDGET-A", MinStockLevel: decimal.NewFromInt(100)})
	require.NoError(t, err)
	receive(t, store, "WIDGET-A", "10", "A-01-1")
	receive(t, store, "WIDGET-B", "2", "A-02-1")

	overview, err := svc.StockOverview(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, overview.Products)
	require.Equal(t, 2, overview.Batches)
	require.Equal(t, 2, overview.Transactions)
	require.Equal(t, 1, overview.LowStock)
	require.Empty(t, overview.Drifts)
}

func TestServiceWorksWithoutRedis(t *testing.T) {
	store := stock.NewStore()
	catalog := products.NewCatalog()
	svc := NewService(store, catalog, NewCache(nil, time.Minute), nil)

	receive(t, store, "WIDGET-A", "1", "A-01-1")
	rows, err := svc.StockLevels(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
