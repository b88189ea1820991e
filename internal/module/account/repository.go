package account

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/simp-lee/flyingpig/internal/domain"
	"github.com/simp-lee/flyingpig/internal/pkg"
)

// Model is satisfied by pointers to user models that embed domain.Account.
type Model[T any] interface {
	*T
	GetAccount() *domain.Account
}

// ListFields are the columns user lists may be sorted and filtered on.
var ListFields = pkg.ListFields{
	Sortable:   []string{"id", "user_id", "email", "last_name", "country", "created_at", "last_login_at"},
	Filterable: []string{"user_id", "email", "first_name", "last_name", "country", "language"},
}

// Repository implements domain.UserRepository[T] with GORM.
type Repository[T any, PT Model[T]] struct {
	db     *gorm.DB
	fields pkg.ListFields
}

// NewRepository creates a repository for the user model T.
func NewRepository[T any, PT Model[T]](db *gorm.DB, fields pkg.ListFields) *Repository[T, PT] {
	return &Repository[T, PT]{db: db, fields: fields}
}

// Create inserts user.
func (r *Repository[T, PT]) Create(ctx context.Context, user *T) error {
	return mapError(r.db.WithContext(ctx).Create(user).Error)
}

// GetByID retrieves a user by primary key.
func (r *Repository[T, PT]) GetByID(ctx context.Context, id uint) (*T, error) {
	var user T
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// GetByUserID retrieves a user by login id.
func (r *Repository[T, PT]) GetByUserID(ctx context.Context, userID string) (*T, error) {
	var user T
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error; err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// GetAccountByUserID returns the shared account fields of the user with userID.
func (r *Repository[T, PT]) GetAccountByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	user, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return PT(user).GetAccount(), nil
}

func (r *Repository[T, PT]) exists(ctx context.Context, column, value string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(new(T)).Where(column+" = ?", value).Count(&n).Error
	if err != nil {
		return false, mapError(err)
	}
	return n > 0, nil
}

// ExistsByUserID reports whether userID is taken.
func (r *Repository[T, PT]) ExistsByUserID(ctx context.Context, userID string) (bool, error) {
	return r.exists(ctx, "user_id", userID)
}

// ExistsByEmail reports whether email is registered. Emails are stored lowercased.
func (r *Repository[T, PT]) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email", strings.ToLower(email))
}

// List returns one page of users.
func (r *Repository[T, PT]) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[T], error) {
	page, err := pkg.ListPage[T](ctx, r.db, req, r.fields)
	if err != nil {
		return nil, mapError(err)
	}
	return page, nil
}

// Update saves every column of user.
func (r *Repository[T, PT]) Update(ctx context.Context, user *T) error {
	return mapError(r.db.WithContext(ctx).Save(user).Error)
}

// TouchLastLogin records a successful login.
func (r *Repository[T, PT]) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	result := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Update("last_login_at", at)
	if result.Error != nil {
		return mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a user by id.
func (r *Repository[T, PT]) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(new(T), id)
	if result.Error != nil {
		return mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func mapError(err error) error { return pkg.MapDBError(err) }
