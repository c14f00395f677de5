package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/erp/store/internal/domain/catalog"
	"github.com/erp/store/internal/domain/partner"
	"github.com/erp/store/internal/domain/trade"
	"github.com/erp/store/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// testClock is a manually advanced clock for timestamp assertions
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// newTestDatabase opens a migrated in-memory sqlite database
func newTestDatabase(t *testing.T, clock *testClock) *Database {
	t.Helper()

	opts := Options{}
	if clock != nil {
		opts.NowFunc = clock.Now
	}
	db, err := Open(context.Background(), config.DatabaseConfig{URL: "sqlite::memory:"}, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, AutoMigrate(context.Background(), db.DB))
	return db
}

// rollbackContext begins a transaction that is rolled back when the test
// ends and returns a context carrying it
func rollbackContext(t *testing.T, db *Database) context.Context {
	t.Helper()

	tx := db.DB.Begin()
	require.NoError(t, tx.Error)
	t.Cleanup(func() { tx.Rollback() })
	return WithTx(context.Background(), tx)
}

func seedCustomer(t *testing.T, ctx context.Context, db *Database, customerID string) *partner.Customer {
	t.Helper()

	customer, err := partner.NewCustomer(customerID, "Customer "+customerID, "1 Main Street")
	require.NoError(t, err)
	require.NoError(t, NewGormCustomerRepository(db.DB).Create(ctx, customer))
	return customer
}

func seedProduct(t *testing.T, ctx context.Context, db *Database, sku string) *catalog.Product {
	t.Helper()

	product, err := catalog.NewProduct("", "Product "+sku, sku, "Acme", "Tools", "A useful tool")
	require.NoError(t, err)
	require.NoError(t, NewGormProductRepository(db.DB).Create(ctx, product))
	return product
}

func seedInvoice(t *testing.T, ctx context.Context, db *Database, publicID string, customerID int64) *trade.Invoice {
	t.Helper()

	invoice, err := trade.NewInvoice(publicID, customerID, time.Now().UTC().Add(30*24*time.Hour))
	require.NoError(t, err)
	require.NoError(t, NewGormInvoiceRepository(db.DB).Create(ctx, invoice))
	return invoice
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
