package stores

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hysabee/hysabee-backend/pkg/db/models"
	"github.com/hysabee/hysabee-backend/pkg/enums"
	pkgerrors "github.com/hysabee/hysabee-backend/pkg/errors"
)

func TestNewServiceRequiresRepo(t *testing.T) {
	_, err := NewService(nil)
	if err == nil {
		t.Fatal("expected error creating service without repo")
	}
}

func TestServiceGetByIDSuccess(t *testing.T) {
	store := baseStore()
	repo := &stubStoreRepo{store: store}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dto, err := svc.GetByID(context.Background(), store.ID)
	if err != nil {
		t.Fatalf("get store: %v", err)
	}
	if dto.ID != store.ID {
		t.Fatalf("expected id %s got %s", store.ID, dto.ID)
	}
	if dto.Name != store.Name {
		t.Fatalf("expected name %s got %s", store.Name, dto.Name)
	}
	if dto.Currency != enums.CurrencyUSD {
		t.Fatalf("expected currency USD got %s", dto.Currency)
	}
}

func TestServiceGetByIDNotFound(t *testing.T) {
	repo := &stubStoreRepo{err: gorm.ErrRecordNotFound}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, gotErr := svc.GetByID(context.Background(), uuid.New())
	if gotErr == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", gotErr)
	}
}

func TestServiceGetByIDDependencyError(t *testing.T) {
	repo := &stubStoreRepo{err: errors.New("boom")}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, gotErr := svc.GetByID(context.Background(), uuid.New())
	if gotErr == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", gotErr)
	}
}

func TestServiceUpdateSuccess(t *testing.T) {
	store := baseStore()
	repo := &stubStoreRepo{store: store}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	newName := "Hussein General Store"
	newCurrency := enums.CurrencySAR
	newAddress := "14 Market Road"
	input := UpdateStoreInput{
		Name:     &newName,
		Currency: &newCurrency,
		Address:  &newAddress,
	}

	dto, err := svc.Update(context.Background(), store.OwnerUserID, store.ID, input)
	if err != nil {
		t.Fatalf("update store: %v", err)
	}
	if dto.Name != newName {
		t.Fatalf("expected name updated, got %s", dto.Name)
	}
	if dto.Currency != enums.CurrencySAR {
		t.Fatalf("expected currency SAR got %s", dto.Currency)
	}
	if dto.Address == nil || *dto.Address != newAddress {
		t.Fatalf("expected address %q got %v", newAddress, dto.Address)
	}
	if !repo.updated {
		t.Fatal("expected repo update to be called")
	}
}

func TestServiceUpdateRejectsForeignOwner(t *testing.T) {
	store := baseStore()
	repo := &stubStoreRepo{store: store}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	name := "Hijacked"
	_, gotErr := svc.Update(context.Background(), uuid.New(), store.ID, UpdateStoreInput{Name: &name})
	if gotErr == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden code, got %v", gotErr)
	}
}

func TestServiceUpdateRejectsEmptyName(t *testing.T) {
	store := baseStore()
	repo := &stubStoreRepo{store: store}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	empty := "   "
	_, gotErr := svc.Update(context.Background(), store.OwnerUserID, store.ID, UpdateStoreInput{Name: &empty})
	if gotErr == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", gotErr)
	}
}

type stubStoreRepo struct {
	store   *models.Store
	err     error
	updated bool
}

func (s *stubStoreRepo) FindByID(_ context.Context, _ uuid.UUID) (*models.Store, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.store, nil
}

func (s *stubStoreRepo) FindByOwner(_ context.Context, _ uuid.UUID) (*models.Store, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.store, nil
}

func (s *stubStoreRepo) Update(_ context.Context, store *models.Store) error {
	if s.err != nil {
		return s.err
	}
	s.updated = true
	s.store = store
	return nil
}

func baseStore() *models.Store {
	phone := "+15550000000"
	return &models.Store{
		ID:          uuid.New(),
		OwnerUserID: uuid.New(),
		Name:        "Corner Grocery",
		Currency:    enums.CurrencyUSD,
		Phone:       &phone,
	}
}
