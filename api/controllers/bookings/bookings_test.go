package bookings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sahyadri-motors/dealerdesk/api/middleware"
	internalbookings "github.com/sahyadri-motors/dealerdesk/internal/bookings"
	"github.com/sahyadri-motors/dealerdesk/pkg/db/models"
	"github.com/sahyadri-motors/dealerdesk/pkg/enums"
	"github.com/sahyadri-motors/dealerdesk/pkg/pagination"
)

type stubBookingService struct {
	create   func(ctx context.Context, input internalbookings.CreateInput) (*models.Booking, error)
	update   func(ctx context.Context, input internalbookings.UpdateInput) (*models.Booking, error)
	approve  func(ctx context.Context, input internalbookings.TransitionInput) (*models.Booking, error)
	reject   func(ctx context.Context, input internalbookings.TransitionInput) (*models.Booking, error)
	complete func(ctx context.Context, input internalbookings.TransitionInput) (*models.Booking, error)
	cancel   func(ctx context.Context, input internalbookings.TransitionInput) (*models.Booking, error)
	allocate func(ctx context.Context, input internalbookings.AllocateChassisInput) (*models.Booking, error)
	get      func(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	list     func(ctx context.Context, params pagination.Params, filters internalbookings.ListFilters) ([]models.Booking, error)
}

func (s *stubBookingService) Create(ctx context.Context, input internalbookings.CreateInput) (*models.Booking, error) {
	if s.create != nil {
		return s.create(ctx, input)
	}
	return &models.Booking{}, nil
}

func (s *stubBookingService) Update(ctx context.Context, input internalbookings.UpdateInput) (*models.Booking, error) {
	if s.update != nil {
		return s.update(ctx, input)
	}
	return &models.Booking{}, nil
}

func (s *stubBookingService) Approve(ctx context.Context, input internalbookings.TransitionInput) (*models.Booking, error) {
	if s.approve != nil {
		return s.approve(ctx, input)
	}
	return &models.Booking{}, nil
}

func (s *stubBookingService) Reject(ctx context.Context, input internalbookings.TransitionInput) (*models.Booking, error) {
	if s.reject != nil {
		return s.reject(ctx, input)
	}
	return &models.Booking{}, nil
}

func (s *stubBookingService) Complete(ctx context.Context, input internalbookings.TransitionInput) (*models.Booking, error) {
	if s.complete != nil {
		return s.complete(ctx, input)
	}
	return &models.Booking{}, nil
}

func (s *stubBookingService) Cancel(ctx context.Context, input internalbookings.TransitionInput) (*models.Booking, error) {
	if s.cancel != nil {
		return s.cancel(ctx, input)
	}
	return &models.Booking{}, nil
}

func (s *stubBookingService) AllocateChassis(ctx context.Context, input internalbookings.AllocateChassisInput) (*models.Booking, error) {
	if s.allocate != nil {
		return s.allocate(ctx, input)
	}
	return &models.Booking{}, nil
}

func (s *stubBookingService) Get(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	if s.get != nil {
		return s.get(ctx, id)
	}
	return &models.Booking{}, nil
}

func (s *stubBookingService) List(ctx context.Context, params pagination.Params, filters internalbookings.ListFilters) ([]models.Booking, error) {
	if s.list != nil {
		return s.list(ctx, params, filters)
	}
	return nil, nil
}

func withActor(req *http.Request, userID uuid.UUID, role enums.UserRole) *http.Request {
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	return req.WithContext(middleware.WithRole(req.Context(), role.String()))
}

func withBookingParam(req *http.Request, bookingID uuid.UUID) *http.Request {
	ctx := chi.NewRouteContext()
	ctx.URLParams.Add("bookingID", bookingID.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, ctx))
}

func TestCreateScopesToBranchToken(t *testing.T) {
	actorID := uuid.New()
	branchID := uuid.New()
	modelID := uuid.New()
	colorID := uuid.New()

	svc := &stubBookingService{
		create: func(ctx context.Context, input internalbookings.CreateInput) (*models.Booking, error) {
			if input.BranchID == nil || *input.BranchID != branchID {
				t.Fatalf("branch scope not applied: %+v", input.BranchID)
			}
			if input.SubdealerID != nil {
				t.Fatalf("subdealer scope should be empty")
			}
			if input.ActorID != actorID {
				t.Fatalf("unexpected actor %s", input.ActorID)
			}
			if input.ModelID != modelID || input.ColorID != colorID {
				t.Fatalf("model/color not parsed")
			}
			if input.Payment.Type != enums.PaymentTypeCash {
				t.Fatalf("unexpected payment type %s", input.Payment.Type)
			}
			return &models.Booking{ID: uuid.New(), BookingNumber: "BK-0001"}, nil
		},
	}

	body := `{
		"model_id": "` + modelID.String() + `",
		"color_id": "` + colorID.String() + `",
		"customer_type": "B2C",
		"rto_type": "MH",
		"customer": {"salutation": "Mr", "name": "Arjun Pawar", "mobile1": "9822012345"},
		"payment": {"type": "CASH"}
	}`

	handler := Create(svc, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withActor(req, actorID, enums.RoleSalesExecutive)
	req = req.WithContext(middleware.WithBranchID(req.Context(), branchID.String()))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data models.Booking `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.BookingNumber != "BK-0001" {
		t.Fatalf("unexpected booking number %q", envelope.Data.BookingNumber)
	}
}

func TestCreateRejectsUnscopedToken(t *testing.T) {
	handler := Create(&stubBookingService{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req = withActor(req, uuid.New(), enums.RoleAdmin)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestListPinsSubdealerScope(t *testing.T) {
	subdealerID := uuid.New()
	otherBranch := uuid.New()

	svc := &stubBookingService{
		list: func(ctx context.Context, params pagination.Params, filters internalbookings.ListFilters) ([]models.Booking, error) {
			if params.Limit != 10 {
				t.Fatalf("unexpected limit %d", params.Limit)
			}
			if filters.SubdealerID == nil || *filters.SubdealerID != subdealerID {
				t.Fatalf("subdealer scope not pinned")
			}
			if filters.BranchID != nil {
				t.Fatalf("branch_id query filter must not override token scope")
			}
			if filters.Status == nil || *filters.Status != enums.BookingStatusApproved {
				t.Fatalf("status filter not parsed")
			}
			return []models.Booking{{BookingNumber: "BK-0002"}}, nil
		},
	}

	handler := List(svc, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?limit=10&status=APPROVED&branch_id="+otherBranch.String(), nil)
	req = withActor(req, uuid.New(), enums.RoleSubdealerUser)
	req = req.WithContext(middleware.WithSubdealerID(req.Context(), subdealerID.String()))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestDetailInvalidID(t *testing.T) {
	handler := Detail(&stubBookingService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/not-a-uuid", nil)
	ctx := chi.NewRouteContext()
	ctx.URLParams.Add("bookingID", "not-a-uuid")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, ctx))
	req = withActor(req, uuid.New(), enums.RoleAdmin)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	handler := Reject(&stubBookingService{}, nil)
	bookingID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/"+bookingID.String()+"/reject", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req = withBookingParam(req, bookingID)
	req = withActor(req, uuid.New(), enums.RoleBranchManager)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestApprovePassesActor(t *testing.T) {
	actorID := uuid.New()
	bookingID := uuid.New()

	svc := &stubBookingService{
		approve: func(ctx context.Context, input internalbookings.TransitionInput) (*models.Booking, error) {
			if input.BookingID != bookingID {
				t.Fatalf("unexpected booking id %s", input.BookingID)
			}
			if input.ActorID != actorID {
				t.Fatalf("unexpected actor %s", input.ActorID)
			}
			if input.ActorRole != enums.RoleBranchManager {
				t.Fatalf("unexpected role %s", input.ActorRole)
			}
			return &models.Booking{ID: bookingID, Status: enums.BookingStatusApproved}, nil
		},
	}

	handler := Approve(svc, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/"+bookingID.String()+"/approve", nil)
	req = withBookingParam(req, bookingID)
	req = withActor(req, actorID, enums.RoleBranchManager)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAllocateChassisWithClaimAndQueryReason(t *testing.T) {
	bookingID := uuid.New()

	svc := &stubBookingService{
		allocate: func(ctx context.Context, input internalbookings.AllocateChassisInput) (*models.Booking, error) {
			if input.ChassisNumber != "MD2A11AA1AAA11111" {
				t.Fatalf("chassis not upper-cased: %q", input.ChassisNumber)
			}
			if input.Reason != "damaged in transit" {
				t.Fatalf("query reason not picked up: %q", input.Reason)
			}
			if !input.HasClaim || input.Claim == nil {
				t.Fatalf("claim not attached")
			}
			if !input.Claim.Price.Equal(decimal.NewFromInt(3500)) {
				t.Fatalf("unexpected claim price %s", input.Claim.Price)
			}
			return &models.Booking{ID: bookingID}, nil
		},
	}

	body := `{
		"chassis_number": "md2a11aa1aaa11111",
		"claim": {"price": "3500", "description": "scratched fuel tank", "documents": ["claims/a.jpg"]}
	}`

	handler := AllocateChassis(svc, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/"+bookingID.String()+"/chassis?reason=damaged+in+transit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withBookingParam(req, bookingID)
	req = withActor(req, uuid.New(), enums.RoleBranchManager)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}
