package persistence

import (
	"context"
	"strings"

	"github.com/erp/store/internal/domain/partner"
	"github.com/erp/store/internal/domain/shared"
	"github.com/erp/store/internal/infrastructure/logger"
	"github.com/erp/store/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// Create creates a new customer
func (r *GormCustomerRepository) Create(ctx context.Context, customer *partner.Customer) error {
	model := models.CustomerModelFromDomain(customer)
	if err := insertRow(ctx, r.db, "create customer", model); err != nil {
		return err
	}
	model.CopyBaseTo(&customer.BaseEntity)
	return nil
}

// Save updates an existing customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	model := models.CustomerModelFromDomain(customer)
	if err := updateRow(ctx, r.db, "save customer", customer.ID, model); err != nil {
		return err
	}
	customer.Updated = model.Updated
	return nil
}

// FindByID finds a customer by its internal ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id int64) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate("find customer", err)
	}
	return model.ToDomain(), nil
}

// FindByCustomerID finds a customer by its external identifier
func (r *GormCustomerRepository) FindByCustomerID(ctx context.Context, customerID string) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := conn(ctx, r.db).
		Where("customer_id = ?", strings.TrimSpace(customerID)).
		First(&model).Error; err != nil {
		return nil, translate("find customer by customer_id", err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple customers by their internal IDs
func (r *GormCustomerRepository) FindByIDs(ctx context.Context, ids []int64) ([]partner.Customer, error) {
	if len(ids) == 0 {
		return []partner.Customer{}, nil
	}

	var customerModels []models.CustomerModel
	if err := conn(ctx, r.db).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&customerModels).Error; err != nil {
		return nil, translate("find customers", err)
	}
	return customersToDomain(customerModels), nil
}

// FindAll finds all customers matching the filter
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	var customerModels []models.CustomerModel
	query := r.applyFilterWithoutPagination(conn(ctx, r.db).Model(&models.CustomerModel{}), filter)
	if err := applyPage(query, filter, CustomerSortFields).Find(&customerModels).Error; err != nil {
		return nil, translate("find customers", err)
	}
	return customersToDomain(customerModels), nil
}

// FindPage returns one page of customers matching the filter with the total count
func (r *GormCustomerRepository) FindPage(ctx context.Context, filter shared.Filter) (shared.Paginated[partner.Customer], error) {
	return findPage(ctx, filter, r.FindAll, r.Count)
}

// Count counts customers matching the filter
func (r *GormCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(conn(ctx, r.db).Model(&models.CustomerModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, translate("count customers", err)
	}
	return count, nil
}

// ExistsByCustomerID checks if an external identifier is taken
func (r *GormCustomerRepository) ExistsByCustomerID(ctx context.Context, customerID string) (bool, error) {
	return exists(ctx, r.db, "check customer_id", &models.CustomerModel{}, "customer_id = ?", strings.TrimSpace(customerID))
}

// Delete deletes a customer. Customers with invoices are never deleted;
// the check runs before the statement so every engine reports the same
// error regardless of how its foreign key is declared.
func (r *GormCustomerRepository) Delete(ctx context.Context, id int64) error {
	return NewTransactionScope(r.db).Execute(ctx, func(ctx context.Context) error {
		var invoices int64
		if err := conn(ctx, r.db).
			Model(&models.InvoiceModel{}).
			Where("customer_fk_id = ?", id).
			Count(&invoices).Error; err != nil {
			return translate("delete customer", err)
		}
		if invoices > 0 {
			logger.L(ctx).Warn("Customer delete blocked by invoices",
				zap.Int64("customer_id", id),
				zap.Int64("invoices", invoices),
			)
			return &DBError{
				Kind:       shared.ErrReferentialIntegrityViolation,
				Op:         "delete customer",
				Constraint: "fk_customers_invoices",
			}
		}
		return deleteRow(ctx, r.db, "delete customer", &models.CustomerModel{}, id)
	})
}

// applyFilterWithoutPagination applies search options
func (r *GormCustomerRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		cond, args := searchCondition(filter.Search, "customer_name", "customer_id", "customer_email")
		query = query.Where(cond, args...)
	}

	for key, value := range filter.Filters {
		switch key {
		case "customer_email":
			query = query.Where("customer_email = ?", value)
		case "customer_phone":
			query = query.Where("customer_phone = ?", value)
		}
	}
	return query
}

func customersToDomain(customerModels []models.CustomerModel) []partner.Customer {
	customers := make([]partner.Customer, len(customerModels))
	for i, model := range customerModels {
		customers[i] = *model.ToDomain()
	}
	return customers
}

// Ensure GormCustomerRepository implements CustomerRepository
var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
