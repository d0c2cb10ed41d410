package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hysabee/hysabee-backend/internal/branches"
	pkgAuth "github.com/hysabee/hysabee-backend/pkg/auth"
	"github.com/hysabee/hysabee-backend/pkg/auth/session"
	"github.com/hysabee/hysabee-backend/pkg/config"
	"github.com/hysabee/hysabee-backend/pkg/db/models"
	"github.com/hysabee/hysabee-backend/pkg/enums"
	pkgerrors "github.com/hysabee/hysabee-backend/pkg/errors"
)

// SwitchBranchInput captures the data required to switch the active branch.
type SwitchBranchInput struct {
	UserID        uuid.UUID
	StoreID       uuid.UUID
	BranchID      uuid.UUID
	AccessTokenID string
}

// SwitchBranchResult returns the tokens issued after switching branches.
type SwitchBranchResult struct {
	AccessToken  string
	RefreshToken string
	Branch       branches.BranchDTO
}

// SwitchBranchService is the interface exposed to the controller.
type SwitchBranchService interface {
	Switch(ctx context.Context, input SwitchBranchInput) (*SwitchBranchResult, error)
}

type switchBranchReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Branch, error)
}

type switchSessionRotator interface {
	RefreshToken(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
}

// SwitchBranchServiceParams bundles dependencies for the switch flow.
type SwitchBranchServiceParams struct {
	BranchRepo     switchBranchReader
	SessionManager switchSessionRotator
	JWTConfig      config.JWTConfig
}

type switchBranchService struct {
	branches switchBranchReader
	session  switchSessionRotator
	jwtCfg   config.JWTConfig
}

// NewSwitchBranchService constructs the service.
func NewSwitchBranchService(params SwitchBranchServiceParams) (SwitchBranchService, error) {
	if params.BranchRepo == nil {
		return nil, errors.New("branch repository required")
	}
	if params.SessionManager == nil {
		return nil, errors.New("session manager required")
	}
	return &switchBranchService{
		branches: params.BranchRepo,
		session:  params.SessionManager,
		jwtCfg:   params.JWTConfig,
	}, nil
}

func (s *switchBranchService) Switch(ctx context.Context, input SwitchBranchInput) (*SwitchBranchResult, error) {
	branch, err := s.branches.FindByID(ctx, input.BranchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup branch")
	}
	if branch.StoreID != input.StoreID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
	}

	refreshToken, err := s.session.RefreshToken(ctx, input.AccessTokenID)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load refresh token")
	}

	newAccessID, newRefreshToken, err := s.session.Rotate(ctx, input.AccessTokenID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rotate session")
	}

	branchID := branch.ID
	payload := pkgAuth.AccessTokenPayload{
		UserID:         input.UserID,
		StoreID:        input.StoreID,
		ActiveBranchID: &branchID,
		Role:           enums.MemberRoleOwner,
		JTI:            newAccessID,
	}
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, time.Now().UTC(), payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &SwitchBranchResult{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		Branch:       *branches.FromModel(branch),
	}, nil
}
