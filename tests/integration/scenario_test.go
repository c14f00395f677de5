package integration

import (
	"context"
	"testing"
	"time"

	"github.com/erp/store/internal/domain/catalog"
	"github.com/erp/store/internal/domain/partner"
	"github.com/erp/store/internal/domain/trade"
	"github.com/erp/store/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These cases commit, so they clean the shared database afterwards.

func TestScenario_PendingInvoiceForCustomer(t *testing.T) {
	testDB := NewSharedTestDB(t)
	t.Cleanup(testDB.CleanTables)

	ctx := context.Background()
	customers := persistence.NewGormCustomerRepository(testDB.DB)
	invoices := persistence.NewGormInvoiceRepository(testDB.DB)

	err := testDB.Transaction(ctx, func(ctx context.Context) error {
		customer, err := partner.NewCustomer("CUST-1", "First Customer", "1 Main Street")
		if err != nil {
			return err
		}
		if err := customers.Create(ctx, customer); err != nil {
			return err
		}
		invoice, err := trade.NewInvoice("INV-1", customer.ID, time.Now().UTC().Add(30*24*time.Hour))
		if err != nil {
			return err
		}
		return invoices.Create(ctx, invoice)
	})
	require.NoError(t, err)

	loaded, err := invoices.FindByPublicID(ctx, "INV-1")
	require.NoError(t, err)
	assert.Equal(t, trade.InvoiceStatusPending, loaded.Status)
	assert.True(t, loaded.Subtotal.Equal(decimal.Zero), "subtotal = %s", loaded.Subtotal)
	assert.Equal(t, "0.00", loaded.Subtotal.StringFixed(2))

	owner, err := customers.FindByID(ctx, loaded.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, "CUST-1", owner.CustomerID)

	forCustomer, err := invoices.InvoicesForCustomer(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, forCustomer, 1)
	assert.Equal(t, "INV-1", forCustomer[0].PublicInvoiceID)
}

func TestScenario_VariantDefaults(t *testing.T) {
	testDB := NewSharedTestDB(t)
	t.Cleanup(testDB.CleanTables)

	ctx := context.Background()
	products := persistence.NewGormProductRepository(testDB.DB)
	variants := persistence.NewGormProductVariantRepository(testDB.DB)

	var variantID int64
	err := testDB.Transaction(ctx, func(ctx context.Context) error {
		product, err := catalog.NewProduct("", "Widget", "SKU-1", "Acme", "Tools", "A widget")
		if err != nil {
			return err
		}
		if err := products.Create(ctx, product); err != nil {
			return err
		}
		variant, err := catalog.NewProductVariant(product.ID, decimal.RequireFromString("19.99"), 100)
		if err != nil {
			return err
		}
		if err := variants.Create(ctx, variant); err != nil {
			return err
		}
		variantID = variant.ID
		return nil
	})
	require.NoError(t, err)

	loaded, err := variants.FindByID(ctx, variantID)
	require.NoError(t, err)
	assert.True(t, loaded.IsActive)
	assert.False(t, loaded.HasStock)
	assert.Equal(t, int64(100), loaded.InventoryStock)
	assert.Equal(t, "19.99", loaded.Price.StringFixed(2))

	parent, err := products.FindByID(ctx, loaded.ProductID)
	require.NoError(t, err)
	assert.Equal(t, "SKU-1", parent.SKU)
	assert.True(t, parent.IsActive)
}
