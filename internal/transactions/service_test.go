package transactions

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hysabee/hysabee-backend/pkg/db/models"
	"github.com/hysabee/hysabee-backend/pkg/enums"
	pkgerrors "github.com/hysabee/hysabee-backend/pkg/errors"
)

func TestNewServiceRequiresDeps(t *testing.T) {
	if _, err := NewService(nil, &stubCustomerReader{}); err == nil {
		t.Fatal("expected error creating service without repo")
	}
	if _, err := NewService(&stubTransactionRepo{}, nil); err == nil {
		t.Fatal("expected error creating service without customer reader")
	}
}

func TestRecordRejectsInvalidType(t *testing.T) {
	svc := mustService(t, &stubTransactionRepo{}, &stubCustomerReader{customer: baseCustomer()})

	_, err := svc.Record(context.Background(), RecordTransactionInput{
		Type:        enums.TransactionType("refund"),
		Amount:      decimal.RequireFromString("10.00"),
		ActorUserID: uuid.New(),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
}

func TestRecordRejectsNonPositiveAmount(t *testing.T) {
	svc := mustService(t, &stubTransactionRepo{}, &stubCustomerReader{customer: baseCustomer()})

	for _, amount := range []string{"0", "-5.00"} {
		_, err := svc.Record(context.Background(), RecordTransactionInput{
			Type:        enums.TransactionTypeCredit,
			Amount:      decimal.RequireFromString(amount),
			ActorUserID: uuid.New(),
		})
		if err == nil {
			t.Fatalf("expected error for amount %s", amount)
		}
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation code for amount %s, got %v", amount, err)
		}
	}
}

func TestRecordRejectsForeignStoreCustomer(t *testing.T) {
	customer := baseCustomer()
	svc := mustService(t, &stubTransactionRepo{}, &stubCustomerReader{customer: customer})

	_, err := svc.Record(context.Background(), RecordTransactionInput{
		StoreID:     uuid.New(),
		CustomerID:  customer.ID,
		Type:        enums.TransactionTypeCredit,
		Amount:      decimal.RequireFromString("10.00"),
		ActorUserID: uuid.New(),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", err)
	}
}

func TestRecordRejectsInactiveCustomer(t *testing.T) {
	customer := baseCustomer()
	customer.Status = enums.CustomerStatusInactive
	svc := mustService(t, &stubTransactionRepo{}, &stubCustomerReader{customer: customer})

	_, err := svc.Record(context.Background(), RecordTransactionInput{
		StoreID:     customer.StoreID,
		CustomerID:  customer.ID,
		Type:        enums.TransactionTypeCredit,
		Amount:      decimal.RequireFromString("10.00"),
		ActorUserID: uuid.New(),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict code, got %v", err)
	}
}

func TestRecordSuccessBindsCustomerBranch(t *testing.T) {
	customer := baseCustomer()
	repo := &stubTransactionRepo{}
	svc := mustService(t, repo, &stubCustomerReader{customer: customer})

	actor := uuid.New()
	dto, err := svc.Record(context.Background(), RecordTransactionInput{
		StoreID:     customer.StoreID,
		CustomerID:  customer.ID,
		Type:        enums.TransactionTypePayment,
		Amount:      decimal.RequireFromString("42.50"),
		Currency:    enums.CurrencySAR,
		ActorUserID: actor,
	})
	if err != nil {
		t.Fatalf("record transaction: %v", err)
	}
	if dto.BranchID != customer.BranchID {
		t.Fatalf("expected branch %s got %s", customer.BranchID, dto.BranchID)
	}
	if dto.CreatedBy != actor {
		t.Fatalf("expected created_by %s got %s", actor, dto.CreatedBy)
	}
	if dto.Currency != enums.CurrencySAR {
		t.Fatalf("expected currency SAR got %s", dto.Currency)
	}
	if dto.OccurredAt.IsZero() {
		t.Fatal("expected occurred_at to default to now")
	}
	if repo.created == nil {
		t.Fatal("expected repo create to be called")
	}
}

func TestListForCustomerScopesToStore(t *testing.T) {
	customer := baseCustomer()
	repo := &stubTransactionRepo{
		list: []models.Transaction{
			{ID: uuid.New(), CustomerID: customer.ID, Type: enums.TransactionTypeCredit, Amount: decimal.RequireFromString("10.00")},
		},
	}
	svc := mustService(t, repo, &stubCustomerReader{customer: customer})

	if _, err := svc.ListForCustomer(context.Background(), uuid.New(), customer.ID); err == nil {
		t.Fatal("expected error for foreign store")
	}

	dtos, err := svc.ListForCustomer(context.Background(), customer.StoreID, customer.ID)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(dtos) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(dtos))
	}
}

func mustService(t *testing.T, repo *stubTransactionRepo, customers *stubCustomerReader) Service {
	t.Helper()
	svc, err := NewService(repo, customers)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

type stubTransactionRepo struct {
	created *models.Transaction
	list    []models.Transaction
	err     error
}

func (s *stubTransactionRepo) Create(_ context.Context, transaction *models.Transaction) error {
	if s.err != nil {
		return s.err
	}
	transaction.ID = uuid.New()
	s.created = transaction
	return nil
}

func (s *stubTransactionRepo) ListByCustomer(_ context.Context, _ uuid.UUID) ([]models.Transaction, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.list, nil
}

type stubCustomerReader struct {
	customer *models.Customer
	err      error
}

func (s *stubCustomerReader) FindByID(_ context.Context, _ uuid.UUID) (*models.Customer, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.customer == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.customer, nil
}

func baseCustomer() *models.Customer {
	return &models.Customer{
		ID:       uuid.New(),
		StoreID:  uuid.New(),
		BranchID: uuid.New(),
		Name:     "Amina",
		Status:   enums.CustomerStatusActive,
	}
}
