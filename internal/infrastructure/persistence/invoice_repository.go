package persistence

import (
	"context"
	"strings"

	"github.com/erp/store/internal/domain/shared"
	"github.com/erp/store/internal/domain/trade"
	"github.com/erp/store/internal/infrastructure/logger"
	"github.com/erp/store/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// Create creates a new invoice header. Items and Taxes on the entity are
// ignored; use AddItem and AddTax.
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *trade.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	if err := insertRow(ctx, r.db, "create invoice", model); err != nil {
		return err
	}
	model.CopyBaseTo(&invoice.BaseEntity)
	return nil
}

// Save updates an existing invoice header
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *trade.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	if err := updateRow(ctx, r.db, "save invoice", invoice.ID, model); err != nil {
		return err
	}
	invoice.Updated = model.Updated
	return nil
}

// FindByID finds an invoice by ID with its taxes
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id int64) (*trade.Invoice, error) {
	var model models.InvoiceModel
	if err := conn(ctx, r.db).
		Preload("Taxes", orderByID).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translate("find invoice", err)
	}
	return model.ToDomain(), nil
}

// FindByPublicID finds an invoice by its public identifier with its taxes
func (r *GormInvoiceRepository) FindByPublicID(ctx context.Context, publicID string) (*trade.Invoice, error) {
	var model models.InvoiceModel
	if err := conn(ctx, r.db).
		Preload("Taxes", orderByID).
		Where("public_invoice_id = ?", strings.TrimSpace(publicID)).
		First(&model).Error; err != nil {
		return nil, translate("find invoice by public id", err)
	}
	return model.ToDomain(), nil
}

// FindWithLines finds an invoice with items and taxes, one query per
// collection
func (r *GormInvoiceRepository) FindWithLines(ctx context.Context, id int64) (*trade.Invoice, error) {
	var model models.InvoiceModel
	if err := conn(ctx, r.db).
		Preload("Items", orderByID).
		Preload("Taxes", orderByID).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translate("find invoice with lines", err)
	}
	return model.ToDomain(), nil
}

// FindByStatus finds invoices with the given status
func (r *GormInvoiceRepository) FindByStatus(ctx context.Context, status trade.InvoiceStatus, filter shared.Filter) ([]trade.Invoice, error) {
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Invalid invoice status: "+string(status))
	}

	var invoiceModels []models.InvoiceModel
	query := r.applyFilterWithoutPagination(conn(ctx, r.db).Model(&models.InvoiceModel{}), filter).
		Where("status = ?", status)
	if err := applyPage(query, filter, InvoiceSortFields).Find(&invoiceModels).Error; err != nil {
		return nil, translate("find invoices by status", err)
	}
	return invoicesToDomain(invoiceModels), nil
}

// InvoicesForCustomer returns the invoices billed to a customer ordered by ID
func (r *GormInvoiceRepository) InvoicesForCustomer(ctx context.Context, customerID int64) ([]trade.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := conn(ctx, r.db).
		Where("customer_fk_id = ?", customerID).
		Order("id ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, translate("find invoices for customer", err)
	}
	return invoicesToDomain(invoiceModels), nil
}

// InvoicesForCustomers loads the invoices of several customers with a
// single IN query. Every requested ID is present in the result, with an
// empty slice when the customer has no invoices.
func (r *GormInvoiceRepository) InvoicesForCustomers(ctx context.Context, customerIDs []int64) (map[int64][]trade.Invoice, error) {
	result := make(map[int64][]trade.Invoice, len(customerIDs))
	if len(customerIDs) == 0 {
		return result, nil
	}
	for _, id := range customerIDs {
		result[id] = []trade.Invoice{}
	}

	var invoiceModels []models.InvoiceModel
	if err := conn(ctx, r.db).
		Where("customer_fk_id IN ?", customerIDs).
		Order("customer_fk_id ASC, id ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, translate("find invoices for customers", err)
	}
	for i := range invoiceModels {
		invoice := invoiceModels[i].ToDomain()
		result[invoice.CustomerID] = append(result[invoice.CustomerID], *invoice)
	}
	return result, nil
}

// AddItem inserts an invoice line
func (r *GormInvoiceRepository) AddItem(ctx context.Context, item *trade.InvoiceItem) error {
	model := models.InvoiceItemModelFromDomain(item)
	if err := insertRow(ctx, r.db, "add invoice item", model); err != nil {
		return err
	}
	model.CopyBaseTo(&item.BaseEntity)
	return nil
}

// SaveItem updates an invoice line. LineTotal is stored as supplied.
func (r *GormInvoiceRepository) SaveItem(ctx context.Context, item *trade.InvoiceItem) error {
	model := models.InvoiceItemModelFromDomain(item)
	if err := updateRow(ctx, r.db, "save invoice item", item.ID, model); err != nil {
		return err
	}
	item.Updated = model.Updated
	return nil
}

// ItemsForInvoice returns the lines of an invoice ordered by ID
func (r *GormInvoiceRepository) ItemsForInvoice(ctx context.Context, invoiceID int64) ([]trade.InvoiceItem, error) {
	var itemModels []models.InvoiceItemModel
	if err := conn(ctx, r.db).
		Where("invoice_fk_id = ?", invoiceID).
		Order("id ASC").
		Find(&itemModels).Error; err != nil {
		return nil, translate("find invoice items", err)
	}

	items := make([]trade.InvoiceItem, len(itemModels))
	for i, model := range itemModels {
		items[i] = *model.ToDomain()
	}
	return items, nil
}

// RemoveItem deletes a single invoice line
func (r *GormInvoiceRepository) RemoveItem(ctx context.Context, itemID int64) error {
	return deleteRow(ctx, r.db, "remove invoice item", &models.InvoiceItemModel{}, itemID)
}

// AddTax inserts a tax line. The invoice's TaxAmount is not recomputed.
func (r *GormInvoiceRepository) AddTax(ctx context.Context, tax *trade.InvoiceTax) error {
	model := models.InvoiceTaxModelFromDomain(tax)
	if err := insertRow(ctx, r.db, "add invoice tax", model); err != nil {
		return err
	}
	model.CopyBaseTo(&tax.BaseEntity)
	return nil
}

// SaveTax updates a tax line
func (r *GormInvoiceRepository) SaveTax(ctx context.Context, tax *trade.InvoiceTax) error {
	model := models.InvoiceTaxModelFromDomain(tax)
	if err := updateRow(ctx, r.db, "save invoice tax", tax.ID, model); err != nil {
		return err
	}
	tax.Updated = model.Updated
	return nil
}

// TaxesForInvoice returns the tax lines of an invoice ordered by ID
func (r *GormInvoiceRepository) TaxesForInvoice(ctx context.Context, invoiceID int64) ([]trade.InvoiceTax, error) {
	var taxModels []models.InvoiceTaxModel
	if err := conn(ctx, r.db).
		Where("invoice_fk_id = ?", invoiceID).
		Order("id ASC").
		Find(&taxModels).Error; err != nil {
		return nil, translate("find invoice taxes", err)
	}

	taxes := make([]trade.InvoiceTax, len(taxModels))
	for i, model := range taxModels {
		taxes[i] = *model.ToDomain()
	}
	return taxes, nil
}

// RemoveTax deletes a single tax line
func (r *GormInvoiceRepository) RemoveTax(ctx context.Context, taxID int64) error {
	return deleteRow(ctx, r.db, "remove invoice tax", &models.InvoiceTaxModel{}, taxID)
}

// Count counts invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(conn(ctx, r.db).Model(&models.InvoiceModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, translate("count invoices", err)
	}
	return count, nil
}

// Delete deletes an invoice together with its payments, taxes and items.
// Either all rows go or none do.
func (r *GormInvoiceRepository) Delete(ctx context.Context, id int64) error {
	return NewTransactionScope(r.db).Execute(ctx, func(ctx context.Context) error {
		payments := conn(ctx, r.db).Where("invoice_fk_id = ?", id).Delete(&models.PaymentModel{})
		if payments.Error != nil {
			return translate("delete invoice payments", payments.Error)
		}
		taxes := conn(ctx, r.db).Where("invoice_fk_id = ?", id).Delete(&models.InvoiceTaxModel{})
		if taxes.Error != nil {
			return translate("delete invoice taxes", taxes.Error)
		}
		items := conn(ctx, r.db).Where("invoice_fk_id = ?", id).Delete(&models.InvoiceItemModel{})
		if items.Error != nil {
			return translate("delete invoice items", items.Error)
		}
		if err := deleteRow(ctx, r.db, "delete invoice", &models.InvoiceModel{}, id); err != nil {
			return err
		}

		logger.L(ctx).Info("Invoice deleted",
			zap.Int64("invoice_id", id),
			zap.Int64("payments_deleted", payments.RowsAffected),
			zap.Int64("taxes_deleted", taxes.RowsAffected),
			zap.Int64("items_deleted", items.RowsAffected),
		)
		return nil
	})
}

// applyFilterWithoutPagination applies search and field filters
func (r *GormInvoiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		cond, args := searchCondition(filter.Search, "public_invoice_id")
		query = query.Where(cond, args...)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "customer_fk_id":
			query = query.Where("customer_fk_id = ?", value)
		case "due_before":
			query = query.Where("invoice_due_date < ?", value)
		case "fully_paid":
			if value == true {
				query = query.Where("date_fully_paid IS NOT NULL")
			} else {
				query = query.Where("date_fully_paid IS NULL")
			}
		}
	}
	return query
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func invoicesToDomain(invoiceModels []models.InvoiceModel) []trade.Invoice {
	invoices := make([]trade.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = *invoiceModels[i].ToDomain()
	}
	return invoices
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ trade.InvoiceRepository = (*GormInvoiceRepository)(nil)
