package persistence

import (
	"context"
	"strings"

	"github.com/erp/store/internal/domain/catalog"
	"github.com/erp/store/internal/domain/shared"
	"github.com/erp/store/internal/infrastructure/logger"
	"github.com/erp/store/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Create creates a new product
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	if err := insertRow(ctx, r.db, "create product", model); err != nil {
		return err
	}
	model.CopyBaseTo(&product.BaseEntity)
	return nil
}

// Save updates an existing product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	if err := updateRow(ctx, r.db, "save product", product.ID, model); err != nil {
		return err
	}
	product.Updated = model.Updated
	return nil
}

// FindByID finds a product by its internal ID
func (r *GormProductRepository) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	return r.findOne(ctx, "find product", "id = ?", id)
}

// FindByPublicID finds a product by its public identifier
func (r *GormProductRepository) FindByPublicID(ctx context.Context, publicID string) (*catalog.Product, error) {
	return r.findOne(ctx, "find product by public id", "public_product_id = ?", strings.TrimSpace(publicID))
}

// FindBySKU finds a product by SKU
func (r *GormProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	return r.findOne(ctx, "find product by sku", "sku = ?", strings.TrimSpace(sku))
}

func (r *GormProductRepository) findOne(ctx context.Context, op, query string, args ...any) (*catalog.Product, error) {
	var model models.ProductModel
	if err := conn(ctx, r.db).Where(query, args...).First(&model).Error; err != nil {
		return nil, translate(op, err)
	}
	return model.ToDomain(), nil
}

// FindAll finds all products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	var productModels []models.ProductModel
	query := r.applyFilterWithoutPagination(conn(ctx, r.db).Model(&models.ProductModel{}), filter)
	if err := applyPage(query, filter, ProductSortFields).Find(&productModels).Error; err != nil {
		return nil, translate("find products", err)
	}

	products := make([]catalog.Product, len(productModels))
	for i, model := range productModels {
		products[i] = *model.ToDomain()
	}
	return products, nil
}

// FindPage returns one page of products matching the filter with the total count
func (r *GormProductRepository) FindPage(ctx context.Context, filter shared.Filter) (shared.Paginated[catalog.Product], error) {
	return findPage(ctx, filter, r.FindAll, r.Count)
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(conn(ctx, r.db).Model(&models.ProductModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, translate("count products", err)
	}
	return count, nil
}

// Delete deletes a product and its variants in one transaction. A product
// still referenced by invoice lines is never deleted.
func (r *GormProductRepository) Delete(ctx context.Context, id int64) error {
	return NewTransactionScope(r.db).Execute(ctx, func(ctx context.Context) error {
		var lines int64
		if err := conn(ctx, r.db).
			Model(&models.InvoiceItemModel{}).
			Where("product_fk_id = ?", id).
			Count(&lines).Error; err != nil {
			return translate("delete product", err)
		}
		if lines > 0 {
			return &DBError{
				Kind:       shared.ErrReferentialIntegrityViolation,
				Op:         "delete product",
				Constraint: "fk_products_invoice_items",
			}
		}

		variants := conn(ctx, r.db).Where("product_fk_id = ?", id).Delete(&models.ProductVariantModel{})
		if variants.Error != nil {
			return translate("delete product variants", variants.Error)
		}
		if err := deleteRow(ctx, r.db, "delete product", &models.ProductModel{}, id); err != nil {
			return err
		}

		logger.L(ctx).Info("Product deleted",
			zap.Int64("product_id", id),
			zap.Int64("variants_deleted", variants.RowsAffected),
		)
		return nil
	})
}

// applyFilterWithoutPagination applies search and field filters
func (r *GormProductRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		cond, args := searchCondition(filter.Search, "product_name", "sku", "brand")
		query = query.Where(cond, args...)
	}

	for key, value := range filter.Filters {
		switch key {
		case "is_active":
			query = query.Where("is_active = ?", value)
		case "brand":
			query = query.Where("brand = ?", value)
		case "product_category":
			query = query.Where("product_category = ?", value)
		}
	}
	return query
}

// GormProductVariantRepository implements ProductVariantRepository using GORM
type GormProductVariantRepository struct {
	db *gorm.DB
}

// NewGormProductVariantRepository creates a new GormProductVariantRepository
func NewGormProductVariantRepository(db *gorm.DB) *GormProductVariantRepository {
	return &GormProductVariantRepository{db: db}
}

// Create creates a new variant
func (r *GormProductVariantRepository) Create(ctx context.Context, variant *catalog.ProductVariant) error {
	model := models.ProductVariantModelFromDomain(variant)
	if err := insertRow(ctx, r.db, "create product variant", model); err != nil {
		return err
	}
	model.CopyBaseTo(&variant.BaseEntity)
	return nil
}

// Save updates an existing variant
func (r *GormProductVariantRepository) Save(ctx context.Context, variant *catalog.ProductVariant) error {
	model := models.ProductVariantModelFromDomain(variant)
	if err := updateRow(ctx, r.db, "save product variant", variant.ID, model); err != nil {
		return err
	}
	variant.Updated = model.Updated
	return nil
}

// FindByID finds a variant by ID
func (r *GormProductVariantRepository) FindByID(ctx context.Context, id int64) (*catalog.ProductVariant, error) {
	var model models.ProductVariantModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate("find product variant", err)
	}
	return model.ToDomain(), nil
}

// VariantsForProduct returns all variants of a product ordered by ID
func (r *GormProductVariantRepository) VariantsForProduct(ctx context.Context, productID int64) ([]catalog.ProductVariant, error) {
	var variantModels []models.ProductVariantModel
	if err := conn(ctx, r.db).
		Where("product_fk_id = ?", productID).
		Order("id ASC").
		Find(&variantModels).Error; err != nil {
		return nil, translate("find product variants", err)
	}

	variants := make([]catalog.ProductVariant, len(variantModels))
	for i, model := range variantModels {
		variants[i] = *model.ToDomain()
	}
	return variants, nil
}

// Delete deletes a single variant
func (r *GormProductVariantRepository) Delete(ctx context.Context, id int64) error {
	return deleteRow(ctx, r.db, "delete product variant", &models.ProductVariantModel{}, id)
}

// Ensure the GORM repositories implement the catalog ports
var (
	_ catalog.ProductRepository        = (*GormProductRepository)(nil)
	_ catalog.ProductVariantRepository = (*GormProductVariantRepository)(nil)
)
