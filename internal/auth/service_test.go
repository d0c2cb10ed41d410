package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/hysabee/hysabee-backend/pkg/auth"
	"github.com/hysabee/hysabee-backend/pkg/config"
	"github.com/hysabee/hysabee-backend/pkg/db/models"
	"github.com/hysabee/hysabee-backend/pkg/enums"
	pkgerrors "github.com/hysabee/hysabee-backend/pkg/errors"
	"github.com/hysabee/hysabee-backend/pkg/security"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "hysabee",
		ExpirationMinutes: 30,
	}
}

func TestServiceLoginIssuesTokensWithMainBranchClaim(t *testing.T) {
	password := "owner-secret"
	user := activeUser(t, "owner@example.com", password)
	store := &models.Store{ID: uuid.New(), OwnerUserID: user.ID, Name: "Corner Shop"}
	main := models.Branch{ID: uuid.New(), StoreID: store.ID, Name: "Main Branch", IsMain: true}
	other := models.Branch{ID: uuid.New(), StoreID: store.ID, Name: "Second"}
	cfg := testJWTConfig()

	svc := buildTestService(t, user, store, []models.Branch{main, other}, cfg)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user claim %s, got %s", user.ID, claims.UserID)
	}
	if claims.StoreID != store.ID {
		t.Fatalf("expected store claim %s, got %s", store.ID, claims.StoreID)
	}
	if claims.ActiveBranchID == nil || *claims.ActiveBranchID != main.ID {
		t.Fatalf("expected main branch claim %s, got %v", main.ID, claims.ActiveBranchID)
	}
	if claims.Role != enums.MemberRoleOwner {
		t.Fatalf("expected owner role claim, got %s", claims.Role)
	}
	if resp.RefreshToken == "" {
		t.Fatal("expected refresh token to be set")
	}
	if len(resp.Branches) != 2 {
		t.Fatalf("expected 2 branches in response, got %d", len(resp.Branches))
	}
	if resp.User == nil || resp.User.LastLoginAt == nil {
		t.Fatal("expected last login to be recorded")
	}
}

func TestServiceLoginRejectsUnknownEmail(t *testing.T) {
	svc := buildTestService(t, nil, nil, nil, testJWTConfig())

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "pw"})
	assertUnauthorized(t, err)
}

func TestServiceLoginRejectsWrongPassword(t *testing.T) {
	user := activeUser(t, "owner@example.com", "right-password")
	store := &models.Store{ID: uuid.New(), OwnerUserID: user.ID}
	svc := buildTestService(t, user, store, nil, testJWTConfig())

	_, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "wrong-password"})
	assertUnauthorized(t, err)
}

func TestServiceLoginRejectsInactiveUser(t *testing.T) {
	password := "inactive-secret"
	user := activeUser(t, "inactive@example.com", password)
	user.IsActive = false
	store := &models.Store{ID: uuid.New(), OwnerUserID: user.ID}
	svc := buildTestService(t, user, store, nil, testJWTConfig())

	_, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: password})
	assertUnauthorized(t, err)
}

func TestServiceLoginRejectsUserWithoutStore(t *testing.T) {
	password := "no-store"
	user := activeUser(t, "no-store@example.com", password)
	svc := buildTestService(t, user, nil, nil, testJWTConfig())

	_, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: password})
	assertUnauthorized(t, err)
}

func TestServiceRefreshRotatesSession(t *testing.T) {
	cfg := testJWTConfig()
	user := activeUser(t, "owner@example.com", "pw")
	store := &models.Store{ID: uuid.New(), OwnerUserID: user.ID}
	sessionMgr := &stubSessionManager{refreshToken: "refresh-1", rotatedAccessID: "jti-2", rotatedToken: "refresh-2"}
	svc := buildTestServiceWithSession(t, user, store, nil, cfg, sessionMgr)

	branchID := uuid.New()
	accessToken, err := pkgAuth.MintAccessToken(cfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID:         user.ID,
		StoreID:        store.ID,
		ActiveBranchID: &branchID,
		Role:           enums.MemberRoleOwner,
		JTI:            "jti-1",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	resp, err := svc.Refresh(context.Background(), RefreshRequest{AccessToken: accessToken, RefreshToken: "refresh-1"})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if resp.RefreshToken != "refresh-2" {
		t.Fatalf("expected rotated refresh token, got %q", resp.RefreshToken)
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated token: %v", err)
	}
	if claims.ID != "jti-2" {
		t.Fatalf("expected new jti, got %q", claims.ID)
	}
	if claims.StoreID != store.ID {
		t.Fatalf("expected store claim to carry over, got %s", claims.StoreID)
	}
	if claims.ActiveBranchID == nil || *claims.ActiveBranchID != branchID {
		t.Fatalf("expected branch claim to carry over, got %v", claims.ActiveBranchID)
	}
	if sessionMgr.rotatedFrom != "jti-1" {
		t.Fatalf("expected rotation from jti-1, got %q", sessionMgr.rotatedFrom)
	}
}

func TestServiceRefreshRejectsGarbageToken(t *testing.T) {
	svc := buildTestService(t, nil, nil, nil, testJWTConfig())

	_, err := svc.Refresh(context.Background(), RefreshRequest{AccessToken: "not-a-jwt", RefreshToken: "x"})
	assertUnauthorized(t, err)
}

func TestServiceLogoutRevokesSession(t *testing.T) {
	cfg := testJWTConfig()
	user := activeUser(t, "owner@example.com", "pw")
	store := &models.Store{ID: uuid.New(), OwnerUserID: user.ID}
	sessionMgr := &stubSessionManager{refreshToken: "refresh-1"}
	svc := buildTestServiceWithSession(t, user, store, nil, cfg, sessionMgr)

	accessToken, err := pkgAuth.MintAccessToken(cfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID:  user.ID,
		StoreID: store.ID,
		Role:    enums.MemberRoleOwner,
		JTI:     "jti-logout",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	if err := svc.Logout(context.Background(), accessToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if sessionMgr.revoked != "jti-logout" {
		t.Fatalf("expected jti-logout revoked, got %q", sessionMgr.revoked)
	}
}

func TestServiceChangePasswordRejectsSamePassword(t *testing.T) {
	password := "same-secret-1"
	user := activeUser(t, "owner@example.com", password)
	store := &models.Store{ID: uuid.New(), OwnerUserID: user.ID}
	svc := buildTestService(t, user, store, nil, testJWTConfig())

	err := svc.ChangePassword(context.Background(), user.ID, ChangePasswordRequest{
		CurrentPassword: password,
		NewPassword:     password,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
}

func TestServiceChangePasswordUpdatesHash(t *testing.T) {
	password := "old-secret-1"
	user := activeUser(t, "owner@example.com", password)
	store := &models.Store{ID: uuid.New(), OwnerUserID: user.ID}
	userRepo := &stubUserRepo{user: user}
	svc := mustAuthService(t, ServiceParams{
		UserRepo:       userRepo,
		StoreRepo:      stubStoreReader{store: store},
		BranchRepo:     stubBranchLister{},
		SessionManager: &stubSessionManager{refreshToken: "r"},
		JWTConfig:      testJWTConfig(),
	})

	err := svc.ChangePassword(context.Background(), user.ID, ChangePasswordRequest{
		CurrentPassword: password,
		NewPassword:     "new-secret-1",
	})
	if err != nil {
		t.Fatalf("change password: %v", err)
	}
	if userRepo.updatedHash == "" {
		t.Fatal("expected password hash to be updated")
	}
	ok, err := security.VerifyPassword("new-secret-1", userRepo.updatedHash)
	if err != nil || !ok {
		t.Fatalf("expected new hash to verify, ok=%v err=%v", ok, err)
	}
}

func TestServiceChangePasswordRejectsWrongCurrent(t *testing.T) {
	user := activeUser(t, "owner@example.com", "actual-secret")
	store := &models.Store{ID: uuid.New(), OwnerUserID: user.ID}
	svc := buildTestService(t, user, store, nil, testJWTConfig())

	err := svc.ChangePassword(context.Background(), user.ID, ChangePasswordRequest{
		CurrentPassword: "guessed-secret",
		NewPassword:     "new-secret-1",
	})
	assertUnauthorized(t, err)
}

func assertUnauthorized(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func buildTestService(t *testing.T, user *models.User, store *models.Store, branchList []models.Branch, cfg config.JWTConfig) Service {
	t.Helper()
	return buildTestServiceWithSession(t, user, store, branchList, cfg, &stubSessionManager{refreshToken: "refresh-token"})
}

func buildTestServiceWithSession(t *testing.T, user *models.User, store *models.Store, branchList []models.Branch, cfg config.JWTConfig, sessionMgr *stubSessionManager) Service {
	t.Helper()
	return mustAuthService(t, ServiceParams{
		UserRepo:       &stubUserRepo{user: user},
		StoreRepo:      stubStoreReader{store: store},
		BranchRepo:     stubBranchLister{branches: branchList},
		SessionManager: sessionMgr,
		JWTConfig:      cfg,
	})
}

func mustAuthService(t *testing.T, params ServiceParams) Service {
	t.Helper()
	svc, err := NewService(params)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func activeUser(t *testing.T, email, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Owner",
		PasswordHash: hash,
		IsActive:     true,
	}
}

type stubUserRepo struct {
	user        *models.User
	updatedHash string
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) UpdatePasswordHash(_ context.Context, _ uuid.UUID, hash string) error {
	s.updatedHash = hash
	return nil
}

func (s *stubUserRepo) TouchLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	if s.user != nil && s.user.ID == id {
		s.user.LastLoginAt = &at
	}
	return nil
}

type stubStoreReader struct {
	store *models.Store
}

func (s stubStoreReader) FindByOwner(_ context.Context, _ uuid.UUID) (*models.Store, error) {
	if s.store == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.store, nil
}

type stubBranchLister struct {
	branches []models.Branch
}

func (s stubBranchLister) ListByStore(_ context.Context, _ uuid.UUID) ([]models.Branch, error) {
	return s.branches, nil
}

type stubSessionManager struct {
	refreshToken    string
	rotatedAccessID string
	rotatedToken    string
	rotatedFrom     string
	revoked         string
}

func (s *stubSessionManager) Generate(_ context.Context, _ string) (string, error) {
	return s.refreshToken, nil
}

func (s *stubSessionManager) Rotate(_ context.Context, oldAccessID, _ string) (string, string, error) {
	s.rotatedFrom = oldAccessID
	return s.rotatedAccessID, s.rotatedToken, nil
}

func (s *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	s.revoked = accessID
	return nil
}
