package models

import (
	"github.com/erp/store/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product domain entity.
// Variants are owned by the product and removed with it. Invoice lines
// reference products without cascading.
type ProductModel struct {
	BaseModel
	PublicProductID    string  `gorm:"column:public_product_id;type:varchar(50);not null;uniqueIndex:idx_products_public_product_id"`
	ProductName        string  `gorm:"column:product_name;type:varchar(200);not null;uniqueIndex:idx_products_product_name"`
	SKU                string  `gorm:"column:sku;type:varchar(200);not null;uniqueIndex:idx_products_sku"`
	Brand              string  `gorm:"column:brand;type:varchar(200);not null"`
	ProductCategory    string  `gorm:"column:product_category;type:varchar(200);not null"`
	ProductDescription string  `gorm:"column:product_description;type:text;not null"`
	IsActive           bool    `gorm:"column:is_active;not null"`
	URL                *string `gorm:"column:url;type:varchar(760);uniqueIndex:idx_products_url"`
	URLTag             *string `gorm:"column:url_tag;type:varchar(100)"`
	AdditionalNotes    *string `gorm:"column:additional_notes;type:text"`

	Variants     []ProductVariantModel `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	InvoiceItems []InvoiceItemModel    `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseEntity:         m.BaseModel.ToDomain(),
		PublicProductID:    m.PublicProductID,
		ProductName:        m.ProductName,
		SKU:                m.SKU,
		Brand:              m.Brand,
		ProductCategory:    m.ProductCategory,
		ProductDescription: m.ProductDescription,
		IsActive:           m.IsActive,
		URL:                m.URL,
		URLTag:             m.URLTag,
		AdditionalNotes:    m.AdditionalNotes,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.PublicProductID = p.PublicProductID
	m.ProductName = p.ProductName
	m.SKU = p.SKU
	m.Brand = p.Brand
	m.ProductCategory = p.ProductCategory
	m.ProductDescription = p.ProductDescription
	m.IsActive = p.IsActive
	m.URL = p.URL
	m.URLTag = p.URLTag
	m.AdditionalNotes = p.AdditionalNotes
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// ProductVariantModel is the persistence model for the ProductVariant domain entity.
type ProductVariantModel struct {
	BaseModel
	ProductID      int64           `gorm:"column:product_fk_id;not null;index:idx_product_variants_product_fk_id"`
	Color          *string         `gorm:"column:color;type:varchar(100)"`
	Size           *string         `gorm:"column:size;type:varchar(100)"`
	Price          decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null"`
	HasStock       bool            `gorm:"column:has_stock;not null"`
	InventoryStock int64           `gorm:"column:inventory_stock;not null"`
	IsActive       bool            `gorm:"column:is_active;not null"`
}

// TableName returns the table name for GORM
func (ProductVariantModel) TableName() string {
	return "product_variants"
}

// ToDomain converts the persistence model to a domain ProductVariant entity.
func (m *ProductVariantModel) ToDomain() *catalog.ProductVariant {
	return &catalog.ProductVariant{
		BaseEntity:     m.BaseModel.ToDomain(),
		ProductID:      m.ProductID,
		Color:          m.Color,
		Size:           m.Size,
		Price:          m.Price,
		HasStock:       m.HasStock,
		InventoryStock: m.InventoryStock,
		IsActive:       m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain ProductVariant entity.
func (m *ProductVariantModel) FromDomain(v *catalog.ProductVariant) {
	m.FromDomainBaseEntity(v.BaseEntity)
	m.ProductID = v.ProductID
	m.Color = v.Color
	m.Size = v.Size
	m.Price = v.Price
	m.HasStock = v.HasStock
	m.InventoryStock = v.InventoryStock
	m.IsActive = v.IsActive
}

// ProductVariantModelFromDomain creates a new persistence model from a domain ProductVariant entity.
func ProductVariantModelFromDomain(v *catalog.ProductVariant) *ProductVariantModel {
	m := &ProductVariantModel{}
	m.FromDomain(v)
	return m
}
