package exchange

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sahyadri-motors/dealerdesk/internal/catalog"
	"github.com/sahyadri-motors/dealerdesk/pkg/db/models"
	pkgerrors "github.com/sahyadri-motors/dealerdesk/pkg/errors"
)

type memoryStore struct {
	values map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: make(map[string]string)}
}

func (m *memoryStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.values[key] = value.(string)
	return nil
}

func (m *memoryStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := m.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (m *memoryStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

type stubCatalog struct {
	catalog.Repository
	broker *models.Broker
}

func (s *stubCatalog) FindBroker(ctx context.Context, id uuid.UUID) (*models.Broker, error) {
	if s.broker == nil || s.broker.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.broker, nil
}

func newOTPService(t *testing.T, broker *models.Broker, store codeStore) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Catalog:    &stubCatalog{broker: broker},
		Store:      store,
		TTL:        time.Minute,
		ExposeCode: true,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestIssueAndVerifyConsumesCode(t *testing.T) {
	t.Parallel()
	broker := &models.Broker{ID: uuid.New(), Name: "broker", IsActive: true}
	store := newMemoryStore()
	svc := newOTPService(t, broker, store)

	issued, err := svc.Issue(context.Background(), broker.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if len(issued.Code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", issued.Code)
	}

	if err := svc.Verify(context.Background(), broker.ID, issued.Code); err != nil {
		t.Fatalf("verify: %v", err)
	}

	verified, err := svc.IsVerified(context.Background(), broker.ID)
	if err != nil {
		t.Fatalf("is verified: %v", err)
	}
	if !verified {
		t.Fatal("expected broker to be verified")
	}

	// Second verify sees a consumed code: a plain validation error.
	err = svc.Verify(context.Background(), broker.ID, issued.Code)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error on reuse, got %v", err)
	}
}

func TestVerifyWrongCode(t *testing.T) {
	t.Parallel()
	broker := &models.Broker{ID: uuid.New(), Name: "broker", IsActive: true}
	store := newMemoryStore()
	svc := newOTPService(t, broker, store)

	if _, err := svc.Issue(context.Background(), broker.ID); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := svc.Verify(context.Background(), broker.ID, "000000"); err == nil {
		t.Fatal("expected mismatch to fail")
	}
	verified, err := svc.IsVerified(context.Background(), broker.ID)
	if err != nil {
		t.Fatalf("is verified: %v", err)
	}
	if verified {
		t.Fatal("mismatched code must not verify")
	}
}

func TestIssueInactiveBroker(t *testing.T) {
	t.Parallel()
	broker := &models.Broker{ID: uuid.New(), Name: "broker", IsActive: false}
	svc := newOTPService(t, broker, newMemoryStore())

	_, err := svc.Issue(context.Background(), broker.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestIssueUnknownBroker(t *testing.T) {
	t.Parallel()
	svc := newOTPService(t, nil, newMemoryStore())

	_, err := svc.Issue(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
