package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hysabee/hysabee-backend/pkg/db/models"
)

// Repository handles user persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to user operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new user row.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateWithTx persists a new user using the provided transaction.
func (r *Repository) CreateWithTx(tx *gorm.DB, dto CreateUserDTO) (*models.User, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	user := dto.ToModel()
	if err := tx.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByID loads a user by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail loads a user by normalized email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	normalized := strings.ToLower(strings.TrimSpace(email))
	if err := r.db.WithContext(ctx).Where("email = ?", normalized).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdatePasswordHash replaces the stored password hash.
func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	if hash == "" {
		return fmt.Errorf("hash is required")
	}
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("password_hash", hash).Error
}

// TouchLastLogin records a successful login time.
func (r *Repository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}
