package auth

import (
	"github.com/hysabee/hysabee-backend/internal/branches"
	"github.com/hysabee/hysabee-backend/internal/stores"
	"github.com/hysabee/hysabee-backend/internal/users"
	"github.com/hysabee/hysabee-backend/pkg/enums"
)

// RegisterRequest contains the payload required to onboard a new store owner.
type RegisterRequest struct {
	Name           string          `json:"name" validate:"required"`
	Email          string          `json:"email" validate:"required,email"`
	Password       string          `json:"password" validate:"required,min=8"`
	Phone          *string         `json:"phone,omitempty"`
	StoreName      string          `json:"store_name" validate:"required"`
	StoreCode      string          `json:"store_code,omitempty"`
	Currency       *enums.Currency `json:"currency,omitempty"`
	BranchName     string          `json:"branch_name,omitempty"`
	BranchLocation *string         `json:"branch_location,omitempty"`
}

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the tokens, user, and tenant produced by a successful login.
type LoginResponse struct {
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
	User         *users.UserDTO       `json:"user"`
	Store        *stores.StoreDTO     `json:"store"`
	Branches     []branches.BranchDTO `json:"branches"`
}

// RefreshRequest carries the expired access token and the refresh token to rotate.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResponse returns the rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest captures a password rotation for the current user.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}
