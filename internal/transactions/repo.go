package transactions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hysabee/hysabee-backend/pkg/db/models"
)

// Repository manages persistence for ledger entries. The ledger is
// append-only: there is deliberately no update or delete method.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to transaction operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new transaction row.
func (r *Repository) Create(ctx context.Context, transaction *models.Transaction) error {
	return r.db.WithContext(ctx).Create(transaction).Error
}

// ListByCustomer returns the customer's full ledger, oldest first.
func (r *Repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Transaction, error) {
	var txs []models.Transaction
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("occurred_at ASC, created_at ASC").
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// ListByStore returns every ledger entry for a store.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Transaction, error) {
	var txs []models.Transaction
	if err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("occurred_at ASC, created_at ASC").
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// ListByBranch returns every ledger entry for a branch.
func (r *Repository) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]models.Transaction, error) {
	var txs []models.Transaction
	if err := r.db.WithContext(ctx).
		Where("branch_id = ?", branchID).
		Order("occurred_at ASC, created_at ASC").
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// CountByStore reports the size of a store's ledger.
func (r *Repository) CountByStore(ctx context.Context, storeID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("store_id = ?", storeID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
