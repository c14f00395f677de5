package trade

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/erp/store/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dueIn(days int) time.Time {
	return time.Now().UTC().AddDate(0, 0, days)
}

func TestInvoiceStatus(t *testing.T) {
	assert.True(t, InvoiceStatusPending.IsValid())
	assert.True(t, InvoiceStatusPaid.IsValid())
	assert.True(t, InvoiceStatusOverdue.IsValid())
	assert.True(t, InvoiceStatusCancelled.IsValid())
	assert.False(t, InvoiceStatus("draft").IsValid())
	assert.Equal(t, "paid", InvoiceStatusPaid.String())
}

func TestNewInvoice(t *testing.T) {
	t.Run("defaults to pending with zero amounts", func(t *testing.T) {
		before := time.Now().UTC()
		invoice, err := NewInvoice("INV-001", 1, dueIn(30))
		require.NoError(t, err)

		assert.Equal(t, "INV-001", invoice.PublicInvoiceID)
		assert.Equal(t, int64(1), invoice.CustomerID)
		assert.Equal(t, InvoiceStatusPending, invoice.Status)
		assert.True(t, invoice.Subtotal.IsZero())
		assert.True(t, invoice.TaxAmount.IsZero())
		assert.True(t, invoice.ShippingAmount.IsZero())
		assert.True(t, invoice.TotalAmount.IsZero())
		assert.True(t, invoice.OutstandingBalance.IsZero())
		assert.False(t, invoice.InvoiceDate.Before(before))
		assert.Nil(t, invoice.DateFullyPaid)
		assert.Nil(t, invoice.Items)
		assert.Nil(t, invoice.Taxes)
	})

	t.Run("generates public id when blank", func(t *testing.T) {
		invoice, err := NewInvoice("  ", 1, dueIn(30))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(invoice.PublicInvoiceID, "INV-"))
	})

	t.Run("requires customer", func(t *testing.T) {
		_, err := NewInvoice("INV-002", 0, dueIn(30))
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		assert.Contains(t, err.Error(), "customer_id")
	})

	t.Run("requires due date", func(t *testing.T) {
		_, err := NewInvoice("INV-003", 1, time.Time{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invoice_due_date is required")
	})

	t.Run("rejects oversized public id", func(t *testing.T) {
		_, err := NewInvoice(strings.Repeat("X", 51), 1, dueIn(30))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "public_invoice_id cannot exceed 50 characters")
	})
}

func TestInvoice_SetAmounts(t *testing.T) {
	invoice, err := NewInvoice("INV-010", 1, dueIn(30))
	require.NoError(t, err)

	err = invoice.SetAmounts(Amounts{
		Subtotal:           decimal.RequireFromString("1000.00"),
		TaxAmount:          decimal.RequireFromString("130.00"),
		ShippingAmount:     decimal.RequireFromString("15.005"),
		TotalAmount:        decimal.RequireFromString("1145.01"),
		OutstandingBalance: decimal.RequireFromString("1145.01"),
	})
	require.NoError(t, err)
	assert.Equal(t, "1000.00", invoice.Subtotal.StringFixed(2))
	assert.Equal(t, "15.01", invoice.ShippingAmount.StringFixed(2))
	assert.True(t, invoice.Amounts().TotalAmount.Equal(decimal.RequireFromString("1145.01")))

	t.Run("rejects negative amounts", func(t *testing.T) {
		err := invoice.SetAmounts(Amounts{Subtotal: decimal.NewFromInt(-1)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "subtotal cannot be negative")
		assert.Equal(t, "1000.00", invoice.Subtotal.StringFixed(2))
	})

	t.Run("accepts an overpaid balance", func(t *testing.T) {
		err := invoice.SetAmounts(Amounts{
			Subtotal:           decimal.RequireFromString("100.00"),
			TotalAmount:        decimal.RequireFromString("100.00"),
			OutstandingBalance: decimal.RequireFromString("-20.00"),
		})
		require.NoError(t, err)
		assert.Equal(t, "-20.00", invoice.OutstandingBalance.StringFixed(2))
	})

	t.Run("rejects amounts over column precision", func(t *testing.T) {
		err := invoice.SetAmounts(Amounts{TotalAmount: decimal.NewFromInt(100000000)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "total_amount cannot exceed")
	})
}

func TestInvoice_TaxAmountIsNotDerived(t *testing.T) {
	invoice, err := NewInvoice("INV-011", 1, dueIn(30))
	require.NoError(t, err)
	invoice.ID = 7

	tax, err := NewInvoiceTax(invoice.ID, decimal.NewFromInt(13), decimal.NewFromInt(130))
	require.NoError(t, err)
	invoice.Taxes = []InvoiceTax{*tax}

	// Nothing reconciles the header with its tax lines.
	assert.True(t, invoice.TaxAmount.IsZero())
	assert.Equal(t, "130.00", SumTaxAmounts(invoice.Taxes).StringFixed(2))
}

func TestInvoice_SetStatus(t *testing.T) {
	invoice, err := NewInvoice("INV-020", 1, dueIn(30))
	require.NoError(t, err)

	require.NoError(t, invoice.SetStatus(InvoiceStatusPaid))
	assert.Equal(t, InvoiceStatusPaid, invoice.Status)

	// Transitions are unrestricted.
	require.NoError(t, invoice.SetStatus(InvoiceStatusPending))
	assert.Equal(t, InvoiceStatusPending, invoice.Status)

	err = invoice.SetStatus("refunded")
	require.Error(t, err)
	assert.Equal(t, InvoiceStatusPending, invoice.Status)
}

func TestInvoice_FullyPaid(t *testing.T) {
	invoice, err := NewInvoice("INV-030", 1, dueIn(-1))
	require.NoError(t, err)

	now := time.Now()
	assert.True(t, invoice.IsOverdueAt(now))

	invoice.MarkFullyPaid(now)
	require.NotNil(t, invoice.DateFullyPaid)
	assert.True(t, invoice.IsFullyPaid())
	assert.Equal(t, time.UTC, invoice.DateFullyPaid.Location())
	assert.False(t, invoice.IsOverdueAt(now))
	assert.Equal(t, InvoiceStatusPending, invoice.Status)

	invoice.ClearFullyPaid()
	assert.False(t, invoice.IsFullyPaid())

	require.NoError(t, invoice.SetStatus(InvoiceStatusCancelled))
	assert.False(t, invoice.IsOverdueAt(now))
}

func TestInvoice_Dates(t *testing.T) {
	invoice, err := NewInvoice("INV-040", 1, dueIn(30))
	require.NoError(t, err)

	issued := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, invoice.SetInvoiceDate(issued))
	assert.Equal(t, issued, invoice.InvoiceDate)
	assert.Error(t, invoice.SetInvoiceDate(time.Time{}))

	due := issued.AddDate(0, 0, 14)
	require.NoError(t, invoice.SetDueDate(due))
	assert.Equal(t, due, invoice.InvoiceDueDate)
	assert.Error(t, invoice.SetDueDate(time.Time{}))
	assert.Equal(t, due, invoice.InvoiceDueDate)
}

func TestInvoice_SetNotes(t *testing.T) {
	invoice, err := NewInvoice("INV-050", 1, dueIn(30))
	require.NoError(t, err)

	invoice.SetNotes(" net 30 ")
	require.NotNil(t, invoice.AdditionalNotes)
	assert.Equal(t, "net 30", *invoice.AdditionalNotes)

	invoice.SetNotes("")
	assert.Nil(t, invoice.AdditionalNotes)
}

func TestNewInvoiceItem(t *testing.T) {
	item, err := NewInvoiceItem(1, 2, 3, decimal.RequireFromString("99.99"), decimal.RequireFromString("299.97"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), item.Quantity)
	assert.Equal(t, "299.97", item.LineTotal.StringFixed(2))

	t.Run("line total is not recomputed", func(t *testing.T) {
		item, err := NewInvoiceItem(1, 2, 3, decimal.NewFromInt(10), decimal.NewFromInt(5))
		require.NoError(t, err)
		assert.Equal(t, "5.00", item.LineTotal.StringFixed(2))
	})

	t.Run("requires invoice and product", func(t *testing.T) {
		_, err := NewInvoiceItem(0, 2, 1, decimal.NewFromInt(1), decimal.NewFromInt(1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invoice_id")

		_, err = NewInvoiceItem(1, 0, 1, decimal.NewFromInt(1), decimal.NewFromInt(1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "product_id")
	})

	t.Run("rejects negative quantity and price", func(t *testing.T) {
		_, err := NewInvoiceItem(1, 2, -1, decimal.NewFromInt(1), decimal.NewFromInt(1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quantity must be greater than or equal to 0")

		_, err = NewInvoiceItem(1, 2, 1, decimal.NewFromInt(-1), decimal.NewFromInt(1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unit_price cannot be negative")
	})
}

func TestNewInvoiceTax(t *testing.T) {
	tax, err := NewInvoiceTax(1, decimal.RequireFromString("13.00"), decimal.RequireFromString("130.00"))
	require.NoError(t, err)
	assert.True(t, tax.Rate().Equal(decimal.RequireFromString("0.13")))

	tax, err = NewInvoiceTax(1, decimal.RequireFromString("8.5"), decimal.Zero)
	require.NoError(t, err)
	assert.True(t, tax.Rate().Equal(decimal.RequireFromString("0.085")))

	_, err = NewInvoiceTax(1, decimal.NewFromInt(1000), decimal.Zero)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tax_rate_percent cannot exceed 999.99")

	_, err = NewInvoiceTax(0, decimal.NewFromInt(5), decimal.Zero)
	require.Error(t, err)
}

func TestSumTaxAmounts(t *testing.T) {
	assert.True(t, SumTaxAmounts(nil).IsZero())
	taxes := []InvoiceTax{
		{TaxAmount: decimal.RequireFromString("10.50")},
		{TaxAmount: decimal.RequireFromString("4.25")},
	}
	assert.Equal(t, "14.75", SumTaxAmounts(taxes).StringFixed(2))
}
