package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"gorm.io/gorm"

	"github.com/hysabee/hysabee-backend/internal/branches"
	"github.com/hysabee/hysabee-backend/internal/stores"
	"github.com/hysabee/hysabee-backend/internal/users"
	"github.com/hysabee/hysabee-backend/pkg/config"
	"github.com/hysabee/hysabee-backend/pkg/db/models"
	pkgerrors "github.com/hysabee/hysabee-backend/pkg/errors"
	"github.com/hysabee/hysabee-backend/pkg/security"
)

const defaultBranchName = "Main Branch"

// RegisterService handles the onboarding transaction: one user, one store,
// one main branch.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) error
}

type registerTxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type registerUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

type registerStoreRepository interface {
	Create(ctx context.Context, dto stores.CreateStoreDTO) (*models.Store, error)
}

type registerBranchRepository interface {
	Create(ctx context.Context, dto branches.CreateBranchDTO) (*models.Branch, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
// The repo factories receive the onboarding transaction so every row commits
// or rolls back together.
type RegisterServiceParams struct {
	TxRunner          registerTxRunner
	UserRepoFactory   func(tx *gorm.DB) registerUserRepository
	StoreRepoFactory  func(tx *gorm.DB) registerStoreRepository
	BranchRepoFactory func(tx *gorm.DB) registerBranchRepository
	PasswordConfig    config.PasswordConfig
}

type registerService struct {
	tx          registerTxRunner
	userRepo    func(tx *gorm.DB) registerUserRepository
	storeRepo   func(tx *gorm.DB) registerStoreRepository
	branchRepo  func(tx *gorm.DB) registerBranchRepository
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.UserRepoFactory == nil {
		params.UserRepoFactory = func(tx *gorm.DB) registerUserRepository {
			return users.NewRepository(tx)
		}
	}
	if params.StoreRepoFactory == nil {
		params.StoreRepoFactory = func(tx *gorm.DB) registerStoreRepository {
			return stores.NewRepository(tx)
		}
	}
	if params.BranchRepoFactory == nil {
		params.BranchRepoFactory = func(tx *gorm.DB) registerBranchRepository {
			return branches.NewRepository(tx)
		}
	}
	return &registerService{
		tx:          params.TxRunner,
		userRepo:    params.UserRepoFactory,
		storeRepo:   params.StoreRepoFactory,
		branchRepo:  params.BranchRepoFactory,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	storeName := strings.TrimSpace(req.StoreName)
	if storeName == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "store name is required")
	}
	if req.Currency != nil && !req.Currency.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid currency")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	storeCode := strings.TrimSpace(req.StoreCode)
	if storeCode == "" {
		storeCode, err = generateStoreCode(storeName)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate store code")
		}
	}

	branchName := strings.TrimSpace(req.BranchName)
	if branchName == "" {
		branchName = defaultBranchName
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.userRepo(tx)
		storeRepo := s.storeRepo(tx)
		branchRepo := s.branchRepo(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			Name:         strings.TrimSpace(req.Name),
			Phone:        req.Phone,
			PasswordHash: passwordHash,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		store, err := storeRepo.Create(ctx, stores.CreateStoreDTO{
			OwnerID:   user.ID,
			Name:      storeName,
			StoreCode: storeCode,
			Currency:  req.Currency,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create store")
		}

		if _, err := branchRepo.Create(ctx, branches.CreateBranchDTO{
			StoreID:  store.ID,
			Name:     branchName,
			Location: req.BranchLocation,
			IsMain:   true,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create main branch")
		}

		return nil
	})
}

// generateStoreCode derives a human label from the store name plus a short
// random suffix to keep codes distinguishable across tenants.
func generateStoreCode(name string) (string, error) {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case unicode.IsSpace(r) || r == '-' || r == '_':
			if !lastDash {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > 24 {
		slug = slug[:24]
	}
	if slug == "" {
		slug = "store"
	}

	suffix := make([]byte, 2)
	if _, err := rand.Read(suffix); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s", slug, hex.EncodeToString(suffix)), nil
}
