package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/hysabee/hysabee-backend/pkg/db/models"
)

// UserDTO exposes safe identity data in API responses.
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Phone       *string    `json:"phone,omitempty"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateUserDTO holds creation-time data for a new user.
type CreateUserDTO struct {
	Email        string
	Name         string
	Phone        *string
	PasswordHash string
}

// FromModel maps the persisted user into a DTO.
func FromModel(m *models.User) *UserDTO {
	if m == nil {
		return nil
	}
	return &UserDTO{
		ID:          m.ID,
		Email:       m.Email,
		Name:        m.Name,
		Phone:       m.Phone,
		IsActive:    m.IsActive,
		LastLoginAt: m.LastLoginAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ToModel prepares the GORM model from creation DTO.
func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Email:        c.Email,
		Name:         c.Name,
		Phone:        c.Phone,
		PasswordHash: c.PasswordHash,
		IsActive:     true,
	}
}
