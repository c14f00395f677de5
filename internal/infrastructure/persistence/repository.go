package persistence

import (
	"context"

	"github.com/erp/store/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// insertRow inserts model. Relationship fields are never written; children
// are inserted through their own repository methods.
func insertRow(ctx context.Context, db *gorm.DB, op string, model any) error {
	if err := conn(ctx, db).Omit(clause.Associations).Create(model).Error; err != nil {
		return translate(op, err)
	}
	return nil
}

// updateRow writes every column of model except id and created, and
// stamps updated. A row that does not exist is reported as
// shared.ErrNotFound instead of being inserted.
func updateRow(ctx context.Context, db *gorm.DB, op string, id int64, model any) error {
	if id == 0 {
		return shared.ErrInvalidState
	}
	result := conn(ctx, db).
		Model(model).
		Select("*").
		Omit("id", "created", clause.Associations).
		Updates(model)
	if result.Error != nil {
		return translate(op, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// deleteRow deletes the row of model's table with the given id
func deleteRow(ctx context.Context, db *gorm.DB, op string, model any, id int64) error {
	result := conn(ctx, db).Delete(model, "id = ?", id)
	if result.Error != nil {
		return translate(op, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// exists reports whether a row of model's table matches the condition
func exists(ctx context.Context, db *gorm.DB, op string, model any, query string, args ...any) (bool, error) {
	var count int64
	if err := conn(ctx, db).Model(model).Where(query, args...).Limit(1).Count(&count).Error; err != nil {
		return false, translate(op, err)
	}
	return count > 0, nil
}

// findPage runs a filtered listing and its count and returns them as one
// page. Page numbers below one are reported as the first page.
func findPage[T any](
	ctx context.Context,
	filter shared.Filter,
	find func(context.Context, shared.Filter) ([]T, error),
	count func(context.Context, shared.Filter) (int64, error),
) (shared.Paginated[T], error) {
	items, err := find(ctx, filter)
	if err != nil {
		return shared.Paginated[T]{}, err
	}
	total, err := count(ctx, filter)
	if err != nil {
		return shared.Paginated[T]{}, err
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	return shared.NewPaginated(items, total, page, filter.PageSize), nil
}
