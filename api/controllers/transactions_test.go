package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hysabee/hysabee-backend/internal/transactions"
	"github.com/hysabee/hysabee-backend/pkg/enums"
	pkgerrors "github.com/hysabee/hysabee-backend/pkg/errors"
)

type stubTransactionService struct {
	recorded  *transactions.TransactionDTO
	recordErr error
	list      []transactions.TransactionDTO
	listErr   error

	recordInput transactions.RecordTransactionInput
}

func (s *stubTransactionService) Record(_ context.Context, input transactions.RecordTransactionInput) (*transactions.TransactionDTO, error) {
	s.recordInput = input
	return s.recorded, s.recordErr
}

func (s *stubTransactionService) ListForCustomer(_ context.Context, _, _ uuid.UUID) ([]transactions.TransactionDTO, error) {
	return s.list, s.listErr
}

func TestTransactionCreateForwardsActor(t *testing.T) {
	userID := uuid.New()
	storeID := uuid.New()
	customerID := uuid.New()
	svc := &stubTransactionService{recorded: &transactions.TransactionDTO{ID: uuid.New()}}
	handler := TransactionCreate(svc, nil)

	body := `{"type":"credit","amount":"125.50","note":"rice and flour"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/customers/"+customerID.String()+"/transactions", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	req = tenantContext(req, userID, storeID)
	req = withURLParam(req, "customerId", customerID.String())
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", resp.Code, resp.Body.String())
	}
	if svc.recordInput.ActorUserID != userID {
		t.Fatalf("expected actor %s got %s", userID, svc.recordInput.ActorUserID)
	}
	if svc.recordInput.CustomerID != customerID {
		t.Fatalf("expected customer %s got %s", customerID, svc.recordInput.CustomerID)
	}
	if svc.recordInput.Type != enums.TransactionTypeCredit {
		t.Fatalf("expected credit type got %s", svc.recordInput.Type)
	}
	if !svc.recordInput.Amount.Equal(decimal.RequireFromString("125.50")) {
		t.Fatalf("expected amount 125.50 got %s", svc.recordInput.Amount)
	}
}

func TestTransactionCreateRejectsUnknownType(t *testing.T) {
	customerID := uuid.New()
	handler := TransactionCreate(&stubTransactionService{}, nil)

	body := `{"type":"loan","amount":"10"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/customers/"+customerID.String()+"/transactions", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	req = tenantContext(req, uuid.New(), uuid.New())
	req = withURLParam(req, "customerId", customerID.String())
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestTransactionListScopesToStore(t *testing.T) {
	customerID := uuid.New()
	svc := &stubTransactionService{listErr: pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")}
	handler := TransactionList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/"+customerID.String()+"/transactions", nil)
	req = tenantContext(req, uuid.New(), uuid.New())
	req = withURLParam(req, "customerId", customerID.String())
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign customer got %d", resp.Code)
	}
}
