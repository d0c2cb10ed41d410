package customers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hysabee/hysabee-backend/pkg/db/models"
	"github.com/hysabee/hysabee-backend/pkg/enums"
	pkgerrors "github.com/hysabee/hysabee-backend/pkg/errors"
)

func TestNewServiceRequiresDeps(t *testing.T) {
	if _, err := NewService(nil, &stubBranchReader{}, &stubLedgerReader{}); err == nil {
		t.Fatal("expected error creating service without repo")
	}
	if _, err := NewService(&stubCustomerRepo{}, nil, &stubLedgerReader{}); err == nil {
		t.Fatal("expected error creating service without branch reader")
	}
	if _, err := NewService(&stubCustomerRepo{}, &stubBranchReader{}, nil); err == nil {
		t.Fatal("expected error creating service without ledger reader")
	}
}

func TestCreateRejectsEmptyName(t *testing.T) {
	svc := mustService(t, &stubCustomerRepo{}, &stubBranchReader{}, &stubLedgerReader{})

	_, err := svc.Create(context.Background(), CreateCustomerInput{
		StoreID:     uuid.New(),
		BranchID:    uuid.New(),
		ActorUserID: uuid.New(),
		Name:        "   ",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
}

func TestCreateRejectsForeignBranch(t *testing.T) {
	branch := &models.Branch{ID: uuid.New(), StoreID: uuid.New()}
	svc := mustService(t, &stubCustomerRepo{}, &stubBranchReader{branch: branch}, &stubLedgerReader{})

	_, err := svc.Create(context.Background(), CreateCustomerInput{
		StoreID:     uuid.New(),
		BranchID:    branch.ID,
		ActorUserID: uuid.New(),
		Name:        "Amina",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", err)
	}
}

func TestCreateRejectsMissingBranch(t *testing.T) {
	svc := mustService(t, &stubCustomerRepo{}, &stubBranchReader{}, &stubLedgerReader{})

	_, err := svc.Create(context.Background(), CreateCustomerInput{
		StoreID:     uuid.New(),
		BranchID:    uuid.New(),
		ActorUserID: uuid.New(),
		Name:        "Amina",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", err)
	}
}

func TestCreateRejectsNegativeCreditLimit(t *testing.T) {
	storeID := uuid.New()
	branch := &models.Branch{ID: uuid.New(), StoreID: storeID}
	svc := mustService(t, &stubCustomerRepo{}, &stubBranchReader{branch: branch}, &stubLedgerReader{})

	limit := decimal.RequireFromString("-10.00")
	_, err := svc.Create(context.Background(), CreateCustomerInput{
		StoreID:     storeID,
		BranchID:    branch.ID,
		ActorUserID: uuid.New(),
		Name:        "Amina",
		CreditLimit: &limit,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
}

func TestCreateSetsDefaultsAndActor(t *testing.T) {
	storeID := uuid.New()
	branch := &models.Branch{ID: uuid.New(), StoreID: storeID}
	repo := &stubCustomerRepo{}
	svc := mustService(t, repo, &stubBranchReader{branch: branch}, &stubLedgerReader{})

	actor := uuid.New()
	dto, err := svc.Create(context.Background(), CreateCustomerInput{
		StoreID:     storeID,
		BranchID:    branch.ID,
		ActorUserID: actor,
		Name:        "  Amina  ",
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if dto.Name != "Amina" {
		t.Fatalf("expected trimmed name, got %q", dto.Name)
	}
	if dto.Status != enums.CustomerStatusActive {
		t.Fatalf("expected active status, got %s", dto.Status)
	}
	if dto.CreatedBy != actor {
		t.Fatalf("expected created_by %s got %s", actor, dto.CreatedBy)
	}
	if repo.created == nil {
		t.Fatal("expected repo create to be called")
	}
}

func TestGetScopesToStore(t *testing.T) {
	customer := baseCustomer()
	svc := mustService(t, &stubCustomerRepo{customer: customer}, &stubBranchReader{}, &stubLedgerReader{})

	_, err := svc.Get(context.Background(), uuid.New(), customer.ID)
	if err == nil {
		t.Fatal("expected error for foreign store")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", err)
	}
}

func TestGetComputesBalance(t *testing.T) {
	customer := baseCustomer()
	ledger := &stubLedgerReader{txs: []models.Transaction{
		{Type: enums.TransactionTypeCredit, Amount: decimal.RequireFromString("100.00")},
		{Type: enums.TransactionTypePayment, Amount: decimal.RequireFromString("25.50")},
	}}
	svc := mustService(t, &stubCustomerRepo{customer: customer}, &stubBranchReader{}, ledger)

	dto, err := svc.Get(context.Background(), customer.StoreID, customer.ID)
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if !dto.Balance.Equal(decimal.RequireFromString("74.50")) {
		t.Fatalf("expected balance 74.50 got %s", dto.Balance)
	}
	if dto.OverLimit {
		t.Fatal("expected over_limit false without a configured limit")
	}
}

func TestGetFlagsOverLimit(t *testing.T) {
	customer := baseCustomer()
	limit := decimal.RequireFromString("50.00")
	customer.CreditLimit = &limit
	ledger := &stubLedgerReader{txs: []models.Transaction{
		{Type: enums.TransactionTypeCredit, Amount: decimal.RequireFromString("80.00")},
	}}
	svc := mustService(t, &stubCustomerRepo{customer: customer}, &stubBranchReader{}, ledger)

	dto, err := svc.Get(context.Background(), customer.StoreID, customer.ID)
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if !dto.OverLimit {
		t.Fatal("expected over_limit true")
	}
}

func TestListPaginatesAndDecoratesBalances(t *testing.T) {
	storeID := uuid.New()
	now := time.Now().UTC()
	rows := make([]models.Customer, 0, 3)
	for i := 0; i < 3; i++ {
		rows = append(rows, models.Customer{
			ID:        uuid.New(),
			StoreID:   storeID,
			BranchID:  uuid.New(),
			Name:      "Customer",
			Status:    enums.CustomerStatusActive,
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		})
	}
	repo := &stubCustomerRepo{list: rows}
	ledger := &stubLedgerReader{txs: []models.Transaction{
		{Type: enums.TransactionTypeCredit, Amount: decimal.RequireFromString("10.00")},
	}}
	svc := mustService(t, repo, &stubBranchReader{}, ledger)

	result, err := svc.List(context.Background(), ListParams{StoreID: storeID, Limit: 2})
	if err != nil {
		t.Fatalf("list customers: %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}
	if result.Cursor == "" {
		t.Fatal("expected next cursor when more rows exist")
	}
	for _, item := range result.Items {
		if !item.Balance.Equal(decimal.RequireFromString("10.00")) {
			t.Fatalf("expected balance 10.00 got %s", item.Balance)
		}
	}
}

func TestListRejectsBadCursor(t *testing.T) {
	svc := mustService(t, &stubCustomerRepo{}, &stubBranchReader{}, &stubLedgerReader{})

	_, err := svc.List(context.Background(), ListParams{StoreID: uuid.New(), Cursor: "not-a-cursor"})
	if err == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
}

func TestUpdateScopesToStore(t *testing.T) {
	customer := baseCustomer()
	svc := mustService(t, &stubCustomerRepo{customer: customer}, &stubBranchReader{}, &stubLedgerReader{})

	name := "New Name"
	_, err := svc.Update(context.Background(), uuid.New(), customer.ID, UpdateCustomerInput{Name: &name})
	if err == nil {
		t.Fatal("expected error for foreign store")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", err)
	}
}

func TestUpdateAppliesFields(t *testing.T) {
	customer := baseCustomer()
	repo := &stubCustomerRepo{customer: customer}
	svc := mustService(t, repo, &stubBranchReader{}, &stubLedgerReader{})

	name := "Renamed"
	status := enums.CustomerStatusInactive
	limit := decimal.RequireFromString("200.00")
	dto, err := svc.Update(context.Background(), customer.StoreID, customer.ID, UpdateCustomerInput{
		Name:        &name,
		Status:      &status,
		CreditLimit: &limit,
	})
	if err != nil {
		t.Fatalf("update customer: %v", err)
	}
	if dto.Name != "Renamed" {
		t.Fatalf("expected renamed customer, got %q", dto.Name)
	}
	if dto.Status != enums.CustomerStatusInactive {
		t.Fatalf("expected inactive status, got %s", dto.Status)
	}
	if dto.CreditLimit == nil || !dto.CreditLimit.Equal(limit) {
		t.Fatalf("expected credit limit 200.00, got %v", dto.CreditLimit)
	}
	if !repo.updated {
		t.Fatal("expected repo update to be called")
	}
}

func TestUpdateRejectsInvalidStatus(t *testing.T) {
	customer := baseCustomer()
	svc := mustService(t, &stubCustomerRepo{customer: customer}, &stubBranchReader{}, &stubLedgerReader{})

	status := enums.CustomerStatus("archived")
	_, err := svc.Update(context.Background(), customer.StoreID, customer.ID, UpdateCustomerInput{Status: &status})
	if err == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
}

func mustService(t *testing.T, repo *stubCustomerRepo, branches *stubBranchReader, ledger *stubLedgerReader) Service {
	t.Helper()
	svc, err := NewService(repo, branches, ledger)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

type stubCustomerRepo struct {
	customer *models.Customer
	list     []models.Customer
	created  *models.Customer
	updated  bool
	err      error
}

func (s *stubCustomerRepo) Create(_ context.Context, dto CreateCustomerDTO) (*models.Customer, error) {
	if s.err != nil {
		return nil, s.err
	}
	customer := dto.ToModel()
	customer.ID = uuid.New()
	s.created = customer
	return customer, nil
}

func (s *stubCustomerRepo) FindByID(_ context.Context, _ uuid.UUID) (*models.Customer, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.customer == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.customer, nil
}

func (s *stubCustomerRepo) List(_ context.Context, _ listQuery) ([]models.Customer, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.list, nil
}

func (s *stubCustomerRepo) Update(_ context.Context, _ *models.Customer) error {
	if s.err != nil {
		return s.err
	}
	s.updated = true
	return nil
}

type stubBranchReader struct {
	branch *models.Branch
	err    error
}

func (s *stubBranchReader) FindByID(_ context.Context, _ uuid.UUID) (*models.Branch, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.branch == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.branch, nil
}

type stubLedgerReader struct {
	txs []models.Transaction
	err error
}

func (s *stubLedgerReader) ListByCustomer(_ context.Context, _ uuid.UUID) ([]models.Transaction, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.txs, nil
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
