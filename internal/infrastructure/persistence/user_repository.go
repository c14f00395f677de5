package persistence

import (
	"context"
	"strings"

	"github.com/erp/store/internal/domain/identity"
	"github.com/erp/store/internal/domain/shared"
	"github.com/erp/store/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	if err := insertRow(ctx, r.db, "create user", model); err != nil {
		return err
	}
	model.CopyBaseTo(&user.BaseEntity)
	return nil
}

// Save updates an existing user
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	if err := updateRow(ctx, r.db, "save user", user.ID, model); err != nil {
		return err
	}
	user.Updated = model.Updated
	return nil
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id int64) (*identity.User, error) {
	return r.findOne(ctx, "find user", "id = ?", id)
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	return r.findOne(ctx, "find user by username", "username = ?", strings.TrimSpace(username))
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	return r.findOne(ctx, "find user by email", "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *GormUserRepository) findOne(ctx context.Context, op, query string, args ...any) (*identity.User, error) {
	var model models.UserModel
	if err := conn(ctx, r.db).Where(query, args...).First(&model).Error; err != nil {
		return nil, translate(op, err)
	}
	return model.ToDomain(), nil
}

// FindAll finds all users matching the filter
func (r *GormUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	var userModels []models.UserModel
	query := r.applyFilterWithoutPagination(conn(ctx, r.db).Model(&models.UserModel{}), filter)
	if err := applyPage(query, filter, UserSortFields).Find(&userModels).Error; err != nil {
		return nil, translate("find users", err)
	}

	users := make([]identity.User, len(userModels))
	for i, model := range userModels {
		users[i] = *model.ToDomain()
	}
	return users, nil
}

// FindPage returns one page of users matching the filter with the total count
func (r *GormUserRepository) FindPage(ctx context.Context, filter shared.Filter) (shared.Paginated[identity.User], error) {
	return findPage(ctx, filter, r.FindAll, r.Count)
}

// Count counts users matching the filter
func (r *GormUserRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(conn(ctx, r.db).Model(&models.UserModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, translate("count users", err)
	}
	return count, nil
}

// ExistsByUsername checks if a username is taken
func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return exists(ctx, r.db, "check username", &models.UserModel{}, "username = ?", strings.TrimSpace(username))
}

// ExistsByEmail checks if an email is taken
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return exists(ctx, r.db, "check email", &models.UserModel{}, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

// Delete deletes a user by ID
func (r *GormUserRepository) Delete(ctx context.Context, id int64) error {
	return deleteRow(ctx, r.db, "delete user", &models.UserModel{}, id)
}

// applyFilterWithoutPagination applies search and field filters
func (r *GormUserRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		cond, args := searchCondition(filter.Search, "username", "email")
		query = query.Where(cond, args...)
	}

	for key, value := range filter.Filters {
		switch key {
		case "is_active":
			query = query.Where("is_active = ?", value)
		case "is_admin":
			query = query.Where("is_admin = ?", value)
		}
	}
	return query
}

// Ensure GormUserRepository implements UserRepository
var _ identity.UserRepository = (*GormUserRepository)(nil)
