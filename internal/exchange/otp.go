package exchange

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sahyadri-motors/dealerdesk/internal/catalog"
	pkgerrors "github.com/sahyadri-motors/dealerdesk/pkg/errors"
	"github.com/sahyadri-motors/dealerdesk/pkg/logger"
)

// codeStore is the slice of the Redis client the OTP flow needs.
type codeStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// Service issues and verifies broker OTPs for exchange consent. Verification
// consumes the code: a concurrent second verifier sees "already used" as a
// normal validation error, not a crash.
type Service interface {
	Issue(ctx context.Context, brokerID uuid.UUID) (IssueResult, error)
	Verify(ctx context.Context, brokerID uuid.UUID, code string) error
	IsVerified(ctx context.Context, brokerID uuid.UUID) (bool, error)
}

// IssueResult returns the OTP in dev so it can be exercised without an SMS
// gateway; delivery itself is out of scope.
type IssueResult struct {
	BrokerID  uuid.UUID `json:"broker_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Code      string    `json:"code,omitempty"`
}

type service struct {
	catalog    catalog.Repository
	store      codeStore
	logg       *logger.Logger
	ttl        time.Duration
	exposeCode bool
}

// ServiceParams wires the OTP service dependencies.
type ServiceParams struct {
	Catalog    catalog.Repository
	Store      codeStore
	Logger     *logger.Logger
	TTL        time.Duration
	ExposeCode bool
}

// NewService builds the broker OTP service.
func NewService(params ServiceParams) (Service, error) {
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("code store required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &service{
		catalog:    params.Catalog,
		store:      params.Store,
		logg:       params.Logger,
		ttl:        ttl,
		exposeCode: params.ExposeCode,
	}, nil
}

func (s *service) Issue(ctx context.Context, brokerID uuid.UUID) (IssueResult, error) {
	broker, err := s.catalog.FindBroker(ctx, brokerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return IssueResult{}, pkgerrors.New(pkgerrors.CodeNotFound, "broker not found")
		}
		return IssueResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load broker")
	}
	if !broker.IsActive {
		return IssueResult{}, pkgerrors.New(pkgerrors.CodeValidation, "broker is inactive")
	}

	code, err := generateCode(6)
	if err != nil {
		return IssueResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate otp")
	}
	if err := s.store.Set(ctx, codeKey(brokerID), code, s.ttl); err != nil {
		return IssueResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store otp")
	}

	result := IssueResult{BrokerID: brokerID, ExpiresAt: time.Now().Add(s.ttl)}
	if s.exposeCode {
		result.Code = code
	} else if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "broker_id", brokerID.String()), "broker otp issued")
	}
	return result, nil
}

func (s *service) Verify(ctx context.Context, brokerID uuid.UUID, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "otp code is required")
	}

	stored, err := s.store.Get(ctx, codeKey(brokerID))
	if err != nil && !errors.Is(err, redis.Nil) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load otp")
	}
	if stored == "" || stored != code {
		return pkgerrors.New(pkgerrors.CodeValidation, "otp invalid or already used")
	}

	// Consume before marking verified; a racing verifier fails the Get above.
	if err := s.store.Del(ctx, codeKey(brokerID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume otp")
	}
	if err := s.store.Set(ctx, verifiedKey(brokerID), "1", s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark otp verified")
	}
	return nil
}

func (s *service) IsVerified(ctx context.Context, brokerID uuid.UUID) (bool, error) {
	value, err := s.store.Get(ctx, verifiedKey(brokerID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load otp verification")
	}
	return value == "1", nil
}

func codeKey(brokerID uuid.UUID) string {
	return "exchange:otp:" + brokerID.String()
}

func verifiedKey(brokerID uuid.UUID) string {
	return "exchange:otp-verified:" + brokerID.String()
}

func generateCode(digits int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
