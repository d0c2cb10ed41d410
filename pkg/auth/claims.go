package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hysabee/hysabee-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID         uuid.UUID
	StoreID        uuid.UUID
	ActiveBranchID *uuid.UUID
	Role           enums.MemberRole
	JTI            string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID         uuid.UUID        `json:"user_id"`
	StoreID        uuid.UUID        `json:"store_id"`
	ActiveBranchID *uuid.UUID       `json:"active_branch_id,omitempty"`
	Role           enums.MemberRole `json:"role"`
	jwt.RegisteredClaims
}
