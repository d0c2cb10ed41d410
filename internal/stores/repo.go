package stores

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hysabee/hysabee-backend/pkg/db/models"
)

// Repository handles store persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to store operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new store row.
func (r *Repository) Create(ctx context.Context, dto CreateStoreDTO) (*models.Store, error) {
	store := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(store).Error; err != nil {
		return nil, err
	}
	return store, nil
}

// CreateWithTx persists a new store using the provided transaction.
func (r *Repository) CreateWithTx(tx *gorm.DB, dto CreateStoreDTO) (*models.Store, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	store := dto.ToModel()
	if err := tx.Create(store).Error; err != nil {
		return nil, err
	}
	return store, nil
}

// FindByID loads a store by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// FindByOwner returns the store owned by the provided user.
func (r *Repository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).Where("owner_user_id = ?", ownerID).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// Update saves the provided store.
func (r *Repository) Update(ctx context.Context, store *models.Store) error {
	if store == nil {
		return fmt.Errorf("store is required")
	}
	return r.db.WithContext(ctx).Save(store).Error
}
