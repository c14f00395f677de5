package models

// All returns every persistence model, parents before children. Callers
// that create tables from the models (sqlite, mysql) pass this list to
// AutoMigrate; the order matters for engines that check foreign keys at
// CREATE TABLE time.
func All() []any {
	return []any{
		&UserModel{},
		&CustomerModel{},
		&ProductModel{},
		&ProductVariantModel{},
		&InvoiceModel{},
		&InvoiceItemModel{},
		&InvoiceTaxModel{},
		&PaymentModel{},
	}
}

// TableNames returns the table names of All in the same order
func TableNames() []string {
	return []string{
		UserModel{}.TableName(),
		CustomerModel{}.TableName(),
		ProductModel{}.TableName(),
		ProductVariantModel{}.TableName(),
		InvoiceModel{}.TableName(),
		InvoiceItemModel{}.TableName(),
		InvoiceTaxModel{}.TableName(),
		PaymentModel{}.TableName(),
	}
}
