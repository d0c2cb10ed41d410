package branches

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hysabee/hysabee-backend/pkg/db/models"
)

// Repository handles branch persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to branch operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new branch row.
func (r *Repository) Create(ctx context.Context, dto CreateBranchDTO) (*models.Branch, error) {
	branch := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(branch).Error; err != nil {
		return nil, err
	}
	return branch, nil
}

// CreateWithTx persists a new branch using the provided transaction.
func (r *Repository) CreateWithTx(tx *gorm.DB, dto CreateBranchDTO) (*models.Branch, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	branch := dto.ToModel()
	if err := tx.Create(branch).Error; err != nil {
		return nil, err
	}
	return branch, nil
}

// FindByID loads a branch by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Branch, error) {
	var branch models.Branch
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&branch).Error; err != nil {
		return nil, err
	}
	return &branch, nil
}

// ListByStore returns all branches for a store, main branch first.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Branch, error) {
	var branches []models.Branch
	if err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("is_main DESC, created_at ASC").
		Find(&branches).Error; err != nil {
		return nil, err
	}
	return branches, nil
}

// Update saves the provided branch.
func (r *Repository) Update(ctx context.Context, branch *models.Branch) error {
	return r.db.WithContext(ctx).Save(branch).Error
}

// PromoteMainWithTx demotes the current main branch and promotes the target
// inside the provided transaction. The order matters: the partial unique index
// forbids two mains per store.
func (r *Repository) PromoteMainWithTx(tx *gorm.DB, storeID, branchID uuid.UUID) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if err := tx.Model(&models.Branch{}).
		Where("store_id = ? AND is_main", storeID).
		Update("is_main", false).Error; err != nil {
		return err
	}
	return tx.Model(&models.Branch{}).
		Where("id = ? AND store_id = ?", branchID, storeID).
		Update("is_main", true).Error
}
