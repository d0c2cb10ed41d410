package customers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hysabee/hysabee-backend/pkg/db/models"
	"github.com/hysabee/hysabee-backend/pkg/pagination"
)

// Repository handles customer persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to customer operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type listQuery struct {
	storeID  uuid.UUID
	branchID *uuid.UUID
	search   string
	status   string
	cursor   *pagination.Cursor
	limit    int
}

// Create persists a new customer row.
func (r *Repository) Create(ctx context.Context, dto CreateCustomerDTO) (*models.Customer, error) {
	customer := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

// FindByID loads a customer by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// List returns store-scoped customers using cursor pagination.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.Customer, error) {
	query := r.db.WithContext(ctx).Model(&models.Customer{}).Where("store_id = ?", opts.storeID)

	if opts.branchID != nil {
		query = query.Where("branch_id = ?", *opts.branchID)
	}
	if opts.status != "" {
		query = query.Where("status = ?", opts.status)
	}
	if search := strings.TrimSpace(opts.search); search != "" {
		// LOWER on both sides keeps matching case-insensitive on Postgres,
		// where plain LIKE is case-sensitive.
		pattern := fmt.Sprintf("%%%s%%", strings.ToLower(search))
		query = query.Where("LOWER(name) LIKE ? OR LOWER(phone) LIKE ?", pattern, pattern)
	}
	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.Customer
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update saves the provided customer.
func (r *Repository) Update(ctx context.Context, customer *models.Customer) error {
	if customer == nil {
		return fmt.Errorf("customer is required")
	}
	return r.db.WithContext(ctx).Save(customer).Error
}

// CountByStore reports how many customers a store has.
func (r *Repository) CountByStore(ctx context.Context, storeID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("store_id = ?", storeID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
