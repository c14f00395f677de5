package finance

import (
	"context"
)

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// Create inserts a new payment and populates its ID and timestamps
	Create(ctx context.Context, payment *Payment) error

	// Save updates an existing payment
	Save(ctx context.Context, payment *Payment) error

	// FindByID finds a payment by its internal ID
	FindByID(ctx context.Context, id int64) (*Payment, error)

	// FindByPublicID finds a payment by its public identifier
	FindByPublicID(ctx context.Context, publicID string) (*Payment, error)

	// FindByReference finds a payment by its unique reference
	FindByReference(ctx context.Context, reference string) (*Payment, error)

	// PaymentsForInvoice returns the payments made against an invoice
	PaymentsForInvoice(ctx context.Context, invoiceID int64) ([]Payment, error)

	// PaymentsForInvoices returns payments for several invoices in one
	// query, grouped by invoice ID
	PaymentsForInvoices(ctx context.Context, invoiceIDs []int64) (map[int64][]Payment, error)

	// Delete deletes a single payment
	Delete(ctx context.Context, id int64) error
}
