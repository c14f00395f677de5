package persistence

import (
	"context"
	"strings"

	"github.com/erp/store/internal/domain/finance"
	"github.com/erp/store/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create creates a new payment
func (r *GormPaymentRepository) Create(ctx context.Context, payment *finance.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	if err := insertRow(ctx, r.db, "create payment", model); err != nil {
		return err
	}
	model.CopyBaseTo(&payment.BaseEntity)
	return nil
}

// Save updates an existing payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *finance.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	if err := updateRow(ctx, r.db, "save payment", payment.ID, model); err != nil {
		return err
	}
	payment.Updated = model.Updated
	return nil
}

// FindByID finds a payment by its internal ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id int64) (*finance.Payment, error) {
	return r.findOne(ctx, "find payment", "id = ?", id)
}

// FindByPublicID finds a payment by its public identifier
func (r *GormPaymentRepository) FindByPublicID(ctx context.Context, publicID string) (*finance.Payment, error) {
	return r.findOne(ctx, "find payment by public id", "public_payment_id = ?", strings.TrimSpace(publicID))
}

// FindByReference finds a payment by its unique reference
func (r *GormPaymentRepository) FindByReference(ctx context.Context, reference string) (*finance.Payment, error) {
	return r.findOne(ctx, "find payment by reference", "payment_reference = ?", strings.TrimSpace(reference))
}

func (r *GormPaymentRepository) findOne(ctx context.Context, op, query string, args ...any) (*finance.Payment, error) {
	var model models.PaymentModel
	if err := conn(ctx, r.db).Where(query, args...).First(&model).Error; err != nil {
		return nil, translate(op, err)
	}
	return model.ToDomain(), nil
}

// PaymentsForInvoice returns the payments made against an invoice in
// payment date order
func (r *GormPaymentRepository) PaymentsForInvoice(ctx context.Context, invoiceID int64) ([]finance.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := conn(ctx, r.db).
		Where("invoice_fk_id = ?", invoiceID).
		Order("payment_date ASC, id ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, translate("find payments for invoice", err)
	}

	payments := make([]finance.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments, nil
}

// PaymentsForInvoices loads the payments of several invoices with a single
// IN query. Every requested ID is present in the result.
func (r *GormPaymentRepository) PaymentsForInvoices(ctx context.Context, invoiceIDs []int64) (map[int64][]finance.Payment, error) {
	result := make(map[int64][]finance.Payment, len(invoiceIDs))
	if len(invoiceIDs) == 0 {
		return result, nil
	}
	for _, id := range invoiceIDs {
		result[id] = []finance.Payment{}
	}

	var paymentModels []models.PaymentModel
	if err := conn(ctx, r.db).
		Where("invoice_fk_id IN ?", invoiceIDs).
		Order("invoice_fk_id ASC, payment_date ASC, id ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, translate("find payments for invoices", err)
	}
	for i := range paymentModels {
		payment := paymentModels[i].ToDomain()
		result[payment.InvoiceID] = append(result[payment.InvoiceID], *payment)
	}
	return result, nil
}

// Delete deletes a single payment
func (r *GormPaymentRepository) Delete(ctx context.Context, id int64) error {
	return deleteRow(ctx, r.db, "delete payment", &models.PaymentModel{}, id)
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ finance.PaymentRepository = (*GormPaymentRepository)(nil)
