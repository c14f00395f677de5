package trade

import (
	"context"

	"github.com/erp/store/internal/domain/shared"
)

// InvoiceRepository defines the interface for invoice persistence.
// Relationships are exposed as explicit query methods rather than lazily
// populated collections.
type InvoiceRepository interface {
	// Create inserts a new invoice and populates its ID and timestamps
	Create(ctx context.Context, invoice *Invoice) error

	// Save updates an existing invoice header. Items and taxes are not
	// touched.
	Save(ctx context.Context, invoice *Invoice) error

	// FindByID finds an invoice by its internal ID, with taxes loaded
	FindByID(ctx context.Context, id int64) (*Invoice, error)

	// FindByPublicID finds an invoice by its public identifier, with taxes loaded
	FindByPublicID(ctx context.Context, publicID string) (*Invoice, error)

	// FindWithLines finds an invoice with both items and taxes loaded
	FindWithLines(ctx context.Context, id int64) (*Invoice, error)

	// FindByStatus finds invoices with the given status
	FindByStatus(ctx context.Context, status InvoiceStatus, filter shared.Filter) ([]Invoice, error)

	// InvoicesForCustomer returns the invoices billed to a customer
	InvoicesForCustomer(ctx context.Context, customerID int64) ([]Invoice, error)

	// InvoicesForCustomers returns invoices for several customers in one
	// query, grouped by customer ID
	InvoicesForCustomers(ctx context.Context, customerIDs []int64) (map[int64][]Invoice, error)

	// AddItem inserts an invoice line
	AddItem(ctx context.Context, item *InvoiceItem) error

	// SaveItem updates an invoice line
	SaveItem(ctx context.Context, item *InvoiceItem) error

	// ItemsForInvoice returns the lines of an invoice
	ItemsForInvoice(ctx context.Context, invoiceID int64) ([]InvoiceItem, error)

	// RemoveItem deletes a single invoice line
	RemoveItem(ctx context.Context, itemID int64) error

	// AddTax inserts a tax line
	AddTax(ctx context.Context, tax *InvoiceTax) error

	// SaveTax updates a tax line
	SaveTax(ctx context.Context, tax *InvoiceTax) error

	// TaxesForInvoice returns the tax lines of an invoice
	TaxesForInvoice(ctx context.Context, invoiceID int64) ([]InvoiceTax, error)

	// RemoveTax deletes a single tax line
	RemoveTax(ctx context.Context, taxID int64) error

	// Count counts invoices matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Delete deletes an invoice with its items, taxes and payments in one
	// transaction
	Delete(ctx context.Context, id int64) error
}
