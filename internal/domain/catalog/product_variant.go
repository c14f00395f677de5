package catalog

import (
	"strings"

	"github.com/erp/store/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductVariant is a color/size combination of a Product with its own
// price and stock level.
type ProductVariant struct {
	shared.BaseEntity
	ProductID      int64   `validate:"required,gt=0"`
	Color          *string `validate:"omitempty,max=100"`
	Size           *string `validate:"omitempty,max=100"`
	Price          decimal.Decimal
	HasStock       bool
	InventoryStock int64 `validate:"gte=0"`
	IsActive       bool
}

// NewProductVariant creates an active variant without stock flag set.
// HasStock stays false until SetStock is called, independent of inventoryStock.
func NewProductVariant(productID int64, price decimal.Decimal, inventoryStock int64) (*ProductVariant, error) {
	variant := &ProductVariant{
		ProductID:      productID,
		Price:          price.Round(2),
		InventoryStock: inventoryStock,
		HasStock:       false,
		IsActive:       true,
	}
	if err := variant.Validate(); err != nil {
		return nil, err
	}
	return variant, nil
}

// Validate checks required fields, column widths and money precision
func (v *ProductVariant) Validate() error {
	if err := shared.ValidateStruct(v); err != nil {
		return err
	}
	return shared.ValidateMoney("price", v.Price)
}

// SetAttributes sets the optional color and size; empty values clear them
func (v *ProductVariant) SetAttributes(color, size string) error {
	prevColor, prevSize := v.Color, v.Size
	v.Color = optionalText(color)
	v.Size = optionalText(size)
	if err := v.Validate(); err != nil {
		v.Color, v.Size = prevColor, prevSize
		return err
	}
	return nil
}

// SetPrice replaces the unit price
func (v *ProductVariant) SetPrice(price decimal.Decimal) error {
	if err := shared.ValidateMoney("price", price); err != nil {
		return err
	}
	v.Price = price.Round(2)
	return nil
}

// SetStock records the stock flag and quantity as given by the caller
func (v *ProductVariant) SetStock(hasStock bool, quantity int64) error {
	if quantity < 0 {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "inventory_stock must be greater than or equal to 0")
	}
	v.HasStock = hasStock
	v.InventoryStock = quantity
	return nil
}

// Activate marks the variant as active
func (v *ProductVariant) Activate() {
	v.IsActive = true
}

// Deactivate marks the variant as inactive
func (v *ProductVariant) Deactivate() {
	v.IsActive = false
}

// Label returns a human readable "color / size" label
func (v *ProductVariant) Label() string {
	parts := make([]string, 0, 2)
	if v.Color != nil {
		parts = append(parts, *v.Color)
	}
	if v.Size != nil {
		parts = append(parts, *v.Size)
	}
	return strings.Join(parts, " / ")
}
