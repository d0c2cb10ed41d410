package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/hysabee/hysabee-backend/api/middleware"
	"github.com/hysabee/hysabee-backend/internal/auth"
	"github.com/hysabee/hysabee-backend/internal/users"
	pkgerrors "github.com/hysabee/hysabee-backend/pkg/errors"
)

type stubAuthService struct {
	login      *auth.LoginResponse
	loginErr   error
	refresh    *auth.RefreshResponse
	refreshErr error
	logoutErr  error
	changeErr  error

	loggedOutToken string
}

func (s *stubAuthService) Login(_ context.Context, _ auth.LoginRequest) (*auth.LoginResponse, error) {
	return s.login, s.loginErr
}

func (s *stubAuthService) Refresh(_ context.Context, _ auth.RefreshRequest) (*auth.RefreshResponse, error) {
	return s.refresh, s.refreshErr
}

func (s *stubAuthService) Logout(_ context.Context, accessToken string) error {
	s.loggedOutToken = accessToken
	return s.logoutErr
}

func (s *stubAuthService) ChangePassword(_ context.Context, _ uuid.UUID, _ auth.ChangePasswordRequest) error {
	return s.changeErr
}

type stubRegisterService struct {
	err error
	req *auth.RegisterRequest
}

func (s *stubRegisterService) Register(_ context.Context, req auth.RegisterRequest) error {
	s.req = &req
	return s.err
}

func TestAuthLoginSuccess(t *testing.T) {
	svc := &stubAuthService{login: &auth.LoginResponse{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		User:         &users.UserDTO{Email: "owner@example.com"},
	}}
	handler := AuthLogin(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte(`{"email":"owner@example.com","password":"Secret#1"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data struct {
			AccessToken  string         `json:"access_token"`
			RefreshToken string         `json:"refresh_token"`
			User         *users.UserDTO `json:"user"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AccessToken != "access-token" {
		t.Fatalf("expected access token in payload got %+v", envelope.Data)
	}
	if envelope.Data.User == nil || envelope.Data.User.Email != "owner@example.com" {
		t.Fatalf("expected user in payload got %+v", envelope.Data.User)
	}
}

func TestAuthLoginInvalidPayload(t *testing.T) {
	handler := AuthLogin(&stubAuthService{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte(`{"password":"Secret#1"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthLoginBadCredentials(t *testing.T) {
	svc := &stubAuthService{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	handler := AuthLogin(svc, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte(`{"email":"owner@example.com","password":"wrong"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRegisterSuccessLogsIn(t *testing.T) {
	reg := &stubRegisterService{}
	svc := &stubAuthService{login: &auth.LoginResponse{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
	}}
	handler := AuthRegister(reg, svc, nil)

	body := `{"name":"Owner","email":"owner@example.com","password":"Secret#12","store_name":"Corner Shop"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if reg.req == nil || reg.req.StoreName != "Corner Shop" {
		t.Fatalf("expected register payload forwarded got %+v", reg.req)
	}
}

func TestAuthRegisterConflict(t *testing.T) {
	reg := &stubRegisterService{err: pkgerrors.New(pkgerrors.CodeConflict, "email already registered")}
	handler := AuthRegister(reg, &stubAuthService{}, nil)

	body := `{"name":"Owner","email":"owner@example.com","password":"Secret#12","store_name":"Corner Shop"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestAuthLogoutUsesBearerToken(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthLogout(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer the-access-token")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.loggedOutToken != "the-access-token" {
		t.Fatalf("expected bearer token forwarded got %q", svc.loggedOutToken)
	}
}

func TestAuthLogoutMissingToken(t *testing.T) {
	handler := AuthLogout(&stubAuthService{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthChangePasswordRequiresUserContext(t *testing.T) {
	handler := AuthChangePassword(&stubAuthService{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/change-password", bytes.NewReader([]byte(`{"current_password":"old-secret","new_password":"new-secret-1"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthChangePasswordSuccess(t *testing.T) {
	handler := AuthChangePassword(&stubAuthService{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/change-password", bytes.NewReader([]byte(`{"current_password":"old-secret","new_password":"new-secret-1"}`)))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
