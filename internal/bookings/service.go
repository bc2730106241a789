package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/sahyadri-motors/dealerdesk/internal/audit"
	"github.com/sahyadri-motors/dealerdesk/internal/catalog"
	"github.com/sahyadri-motors/dealerdesk/internal/documents"
	"github.com/sahyadri-motors/dealerdesk/internal/pricing"
	"github.com/sahyadri-motors/dealerdesk/internal/users"
	dbpkg "github.com/sahyadri-motors/dealerdesk/pkg/db"
	"github.com/sahyadri-motors/dealerdesk/pkg/db/models"
	"github.com/sahyadri-motors/dealerdesk/pkg/enums"
	pkgerrors "github.com/sahyadri-motors/dealerdesk/pkg/errors"
	"github.com/sahyadri-motors/dealerdesk/pkg/logger"
	"github.com/sahyadri-motors/dealerdesk/pkg/metrics"
	"github.com/sahyadri-motors/dealerdesk/pkg/outbox"
	"github.com/sahyadri-motors/dealerdesk/pkg/outbox/payloads"
	"github.com/sahyadri-motors/dealerdesk/pkg/pagination"
	"github.com/sahyadri-motors/dealerdesk/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// otpChecker reports whether a broker's exchange consent OTP was verified.
type otpChecker interface {
	IsVerified(ctx context.Context, brokerID uuid.UUID) (bool, error)
}

// Service drives the booking aggregate through its lifecycle.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Booking, error)
	Update(ctx context.Context, input UpdateInput) (*models.Booking, error)
	Approve(ctx context.Context, input TransitionInput) (*models.Booking, error)
	Reject(ctx context.Context, input TransitionInput) (*models.Booking, error)
	Complete(ctx context.Context, input TransitionInput) (*models.Booking, error)
	Cancel(ctx context.Context, input TransitionInput) (*models.Booking, error)
	AllocateChassis(ctx context.Context, input AllocateChassisInput) (*models.Booking, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Booking, error)
}

type service struct {
	repo     Repository
	catalog  catalog.Repository
	users    users.Repository
	router   *Router
	otp      otpChecker
	tx       txRunner
	outbox   outboxPublisher
	audit    audit.Recorder
	renderer documents.Renderer
	metrics  *metrics.BookingMetrics
	logg     *logger.Logger
}

// ServiceParams wires the booking service dependencies. Renderer and metrics
// are optional; everything else is required.
type ServiceParams struct {
	Repo     Repository
	Catalog  catalog.Repository
	Users    users.Repository
	Router   *Router
	OTP      otpChecker
	Tx       txRunner
	Outbox   outboxPublisher
	Audit    audit.Recorder
	Renderer documents.Renderer
	Metrics  *metrics.BookingMetrics
	Logger   *logger.Logger
}

// NewService builds the booking service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.Router == nil {
		return nil, fmt.Errorf("entity router required")
	}
	if params.OTP == nil {
		return nil, fmt.Errorf("otp checker required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{
		repo:     params.Repo,
		catalog:  params.Catalog,
		users:    params.Users,
		router:   params.Router,
		otp:      params.OTP,
		tx:       params.Tx,
		outbox:   params.Outbox,
		audit:    params.Audit,
		renderer: params.Renderer,
		metrics:  params.Metrics,
		logg:     params.Logger,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Booking, error) {
	booking, err := s.create(ctx, input)
	if err != nil {
		s.audit.Record(ctx, audit.Entry{
			Action:  "booking.create",
			Outcome: audit.OutcomeFailure,
			ActorID: input.ActorID,
			Detail:  map[string]any{"error": err.Error()},
		})
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		BookingID: &booking.ID,
		Action:    "booking.create",
		Outcome:   audit.OutcomeSuccess,
		ActorID:   input.ActorID,
	})
	s.metrics.IncCreated(string(booking.BookingType))
	s.requestRender(ctx, booking, "booking_form", input.ActorID)
	return booking, nil
}

func (s *service) create(ctx context.Context, input CreateInput) (*models.Booking, error) {
	if err := validateCustomerTax(input.CustomerType, input.GSTIN); err != nil {
		return nil, err
	}
	if !input.RTOType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid rto type")
	}
	if strings.TrimSpace(input.Customer.Name) == "" || strings.TrimSpace(input.Customer.Mobile1) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name and mobile are required")
	}

	actor, err := s.users.FindByID(ctx, input.ActorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "requesting user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load requesting user")
	}

	channel, err := s.router.Resolve(ctx, RouteInput{
		BranchID:         input.BranchID,
		SubdealerID:      input.SubdealerID,
		SalesExecutiveID: input.SalesExecutiveID,
		HasExchange:      input.Exchange != nil,
		RequestedBy:      actor,
	})
	if err != nil {
		return nil, err
	}

	model, err := s.loadActiveModel(ctx, input.ModelID)
	if err != nil {
		return nil, err
	}
	if _, err := s.catalog.FindModelColor(ctx, model.ID, input.ColorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "model color not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load model color")
	}

	payment, err := s.buildPayment(ctx, input.Payment)
	if err != nil {
		return nil, err
	}

	exchange, err := s.buildExchange(ctx, input.Exchange)
	if err != nil {
		return nil, err
	}

	discounts := buildDiscountInstructions(model, input.Discount, time.Now())
	priced, err := s.price(ctx, pricingRequest{
		Model:              model,
		Channel:            channel,
		OptionalComponents: input.OptionalComponents,
		Accessories:        input.Accessories,
		Hypothecation:      payment.IsFinanced() && input.Payment.Hypothecation,
		Discounts:          discounts,
	})
	if err != nil {
		return nil, err
	}

	if payment.Finance != nil && payment.Finance.GCApplicable {
		gc, err := s.guaranteeCommission(ctx, channel, priced.TotalAmount)
		if err != nil {
			return nil, err
		}
		payment.Finance.GCAmount = &gc
	}

	booking := &models.Booking{
		BookingNumber:        newBookingNumber(time.Now()),
		BookingType:          channel.Type,
		BranchID:             channel.BranchID,
		SubdealerID:          channel.SubdealerID,
		SalesExecutive:       channel.SalesExecutive,
		SubdealerUserID:      channel.SubdealerUserID,
		ModelID:              model.ID,
		ModelColorID:         input.ColorID,
		CustomerType:         input.CustomerType,
		GSTIN:                input.GSTIN,
		RTOType:              input.RTOType,
		Customer:             input.Customer,
		PriceComponents:      priced.Components,
		Accessories:          priced.AccessoryLines,
		AccessoriesTotal:     priced.AccessoriesTotal,
		RTOAmount:            priced.RTOAmount,
		HypothecationCharges: priced.HypothecationCharges,
		Discounts:            discounts,
		TotalAmount:          priced.TotalAmount,
		DiscountedAmount:     priced.DiscountedAmount,
		Payment:              payment,
		Exchange:             exchange,
		Status:               enums.BookingStatusPendingApproval,
		CreatedBy:            input.ActorID,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, booking); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist booking")
		}
		return s.emit(ctx, tx, enums.EventBookingCreated, booking, input.ActorID, "")
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.Booking, error) {
	booking, err := s.update(ctx, input)
	if err != nil {
		s.audit.Record(ctx, audit.Entry{
			BookingID: &input.BookingID,
			Action:    "booking.update",
			Outcome:   audit.OutcomeFailure,
			ActorID:   input.ActorID,
			Detail:    map[string]any{"error": err.Error()},
		})
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		BookingID: &booking.ID,
		Action:    "booking.update",
		Outcome:   audit.OutcomeSuccess,
		ActorID:   input.ActorID,
	})
	return booking, nil
}

func (s *service) update(ctx context.Context, input UpdateInput) (*models.Booking, error) {
	booking, err := s.load(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if err := EnsureMutable(booking.Status); err != nil {
		return nil, err
	}

	if input.CustomerType != nil {
		booking.CustomerType = *input.CustomerType
	}
	if input.GSTIN != nil {
		booking.GSTIN = input.GSTIN
	}
	if err := validateCustomerTax(booking.CustomerType, booking.GSTIN); err != nil {
		return nil, err
	}
	if input.RTOType != nil {
		if !input.RTOType.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid rto type")
		}
		booking.RTOType = *input.RTOType
	}
	if input.Customer != nil {
		booking.Customer = *input.Customer
	}

	model, err := s.loadActiveModel(ctx, booking.ModelID)
	if err != nil {
		return nil, err
	}
	if input.ColorID != nil {
		if _, err := s.catalog.FindModelColor(ctx, model.ID, *input.ColorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "model color not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load model color")
		}
		booking.ModelColorID = *input.ColorID
	}

	paymentInput := paymentInputFromBooking(booking)
	if input.Payment != nil {
		paymentInput = *input.Payment
	}
	payment, err := s.buildPayment(ctx, paymentInput)
	if err != nil {
		return nil, err
	}
	booking.Payment = payment

	// The recompute is monolithic: selections are re-derived from the final
	// state and the whole component set replaced, never partially patched.
	optional := selectedOptionalComponents(booking)
	if input.OptionalComponents != nil {
		optional = *input.OptionalComponents
	}
	accessories := selectedAccessories(booking)
	if input.Accessories != nil {
		accessories = *input.Accessories
	}
	discounts := carriedDiscounts(booking, model, input.Discount, time.Now())

	channel := Channel{
		Type:            booking.BookingType,
		BranchID:        booking.BranchID,
		SubdealerID:     booking.SubdealerID,
		SalesExecutive:  booking.SalesExecutive,
		SubdealerUserID: booking.SubdealerUserID,
	}
	priced, err := s.price(ctx, pricingRequest{
		Model:              model,
		Channel:            channel,
		OptionalComponents: optional,
		Accessories:        accessories,
		Hypothecation:      payment.IsFinanced() && paymentInput.Hypothecation,
		Discounts:          discounts,
	})
	if err != nil {
		return nil, err
	}

	booking.PriceComponents = priced.Components
	booking.Accessories = priced.AccessoryLines
	booking.AccessoriesTotal = priced.AccessoriesTotal
	booking.RTOAmount = priced.RTOAmount
	booking.HypothecationCharges = priced.HypothecationCharges
	booking.Discounts = discounts
	booking.TotalAmount = priced.TotalAmount
	booking.DiscountedAmount = priced.DiscountedAmount

	if booking.Payment.Finance != nil && booking.Payment.Finance.GCApplicable {
		gc, err := s.guaranteeCommission(ctx, channel, priced.TotalAmount)
		if err != nil {
			return nil, err
		}
		booking.Payment.Finance.GCAmount = &gc
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Save(ctx, booking); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist booking")
		}
		return s.emit(ctx, tx, enums.EventBookingUpdated, booking, input.ActorID, "")
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *service) Approve(ctx context.Context, input TransitionInput) (*models.Booking, error) {
	booking, err := s.transition(ctx, input, enums.BookingStatusApproved, enums.EventBookingApproved, func(b *models.Booking, now time.Time) {
		b.ApprovedBy = &input.ActorID
		b.ApprovedAt = &now
		// Approval covers the booking and every pending discount as one unit.
		for i := range b.Discounts {
			b.Discounts[i].ApprovalStatus = enums.DiscountApprovalApproved
		}
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncTransition(string(enums.BookingStatusApproved))
	return booking, nil
}

func (s *service) Reject(ctx context.Context, input TransitionInput) (*models.Booking, error) {
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason is required")
	}
	booking, err := s.transition(ctx, input, enums.BookingStatusRejected, enums.EventBookingRejected, func(b *models.Booking, _ time.Time) {
		for i := range b.Discounts {
			if b.Discounts[i].ApprovalStatus == enums.DiscountApprovalPending {
				b.Discounts[i].ApprovalStatus = enums.DiscountApprovalRejected
			}
		}
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncTransition(string(enums.BookingStatusRejected))
	return booking, nil
}

func (s *service) Complete(ctx context.Context, input TransitionInput) (*models.Booking, error) {
	booking, err := s.transition(ctx, input, enums.BookingStatusCompleted, enums.EventBookingCompleted, nil)
	if err != nil {
		return nil, err
	}
	s.metrics.IncTransition(string(enums.BookingStatusCompleted))
	s.requestRender(ctx, booking, "delivery_receipt", input.ActorID)
	return booking, nil
}

func (s *service) Cancel(ctx context.Context, input TransitionInput) (*models.Booking, error) {
	booking, err := s.transition(ctx, input, enums.BookingStatusCancelled, enums.EventBookingCancelled, nil)
	if err != nil {
		return nil, err
	}
	s.metrics.IncTransition(string(enums.BookingStatusCancelled))
	return booking, nil
}

func (s *service) transition(
	ctx context.Context,
	input TransitionInput,
	target enums.BookingStatus,
	eventType enums.OutboxEventType,
	apply func(*models.Booking, time.Time),
) (*models.Booking, error) {
	if err := AuthorizeTransition(input.ActorRole, target); err != nil {
		return nil, err
	}

	var booking *models.Booking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		booking, err = s.loadWith(ctx, repo, input.BookingID)
		if err != nil {
			return err
		}
		if err := EnsureTransition(booking.Status, target); err != nil {
			return err
		}
		if target == enums.BookingStatusCompleted && booking.ChassisNumber == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "chassis number must be allocated before completion")
		}

		now := time.Now()
		booking.Status = target
		if apply != nil {
			apply(booking, now)
		}
		if err := repo.Save(ctx, booking); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist booking")
		}
		return s.emit(ctx, tx, eventType, booking, input.ActorID, input.Reason)
	})
	if err != nil {
		s.audit.Record(ctx, audit.Entry{
			BookingID: &input.BookingID,
			Action:    "booking." + strings.ToLower(string(target)),
			Outcome:   audit.OutcomeFailure,
			ActorID:   input.ActorID,
			Detail:    map[string]any{"error": err.Error()},
		})
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		BookingID: &booking.ID,
		Action:    "booking." + strings.ToLower(string(target)),
		Outcome:   audit.OutcomeSuccess,
		ActorID:   input.ActorID,
		Detail:    map[string]any{"reason": input.Reason},
	})
	return booking, nil
}

func (s *service) AllocateChassis(ctx context.Context, input AllocateChassisInput) (*models.Booking, error) {
	number, err := NormalizeChassisNumber(input.ChassisNumber)
	if err != nil {
		return nil, err
	}
	if input.Claim != nil && !input.HasClaim {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "claim details supplied without the claim flag")
	}

	var booking *models.Booking
	var reallocated bool
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		booking, err = s.loadWith(ctx, repo, input.BookingID)
		if err != nil {
			return err
		}
		if booking.Status == enums.BookingStatusCancelled || booking.Status == enums.BookingStatusRejected {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot allocate chassis on a "+booking.Status.String()+" booking")
		}

		taken, err := repo.ChassisNumberTaken(ctx, number, booking.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check chassis uniqueness")
		}
		if taken {
			return pkgerrors.New(pkgerrors.CodeValidation, "chassis number is already allocated to another booking")
		}

		reallocated = booking.ChassisNumber != nil
		if err := ApplyChassisAllocation(booking, number, input.Reason, input.ActorID, time.Now()); err != nil {
			return err
		}

		if input.HasClaim {
			claim := &types.Claim{
				RaisedAt: time.Now(),
				RaisedBy: input.ActorID,
			}
			if input.Claim != nil {
				claim.Price = input.Claim.Price
				claim.Description = input.Claim.Description
				claim.Documents = input.Claim.Documents
			}
			if err := ValidateClaim(claim); err != nil {
				return err
			}
			booking.Claim = claim
		}

		if err := repo.Save(ctx, booking); err != nil {
			// A concurrent writer can win between the check and this save;
			// the unique index surfaces it as a normal validation failure.
			if dbpkg.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeValidation, "chassis number is already allocated to another booking")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist booking")
		}

		eventType := enums.EventChassisAllocated
		if reallocated {
			eventType = enums.EventChassisReallocated
		}
		return s.emit(ctx, tx, eventType, booking, input.ActorID, input.Reason)
	})
	if err != nil {
		s.audit.Record(ctx, audit.Entry{
			BookingID: &input.BookingID,
			Action:    "booking.allocate_chassis",
			Outcome:   audit.OutcomeFailure,
			ActorID:   input.ActorID,
			Detail:    map[string]any{"error": err.Error()},
		})
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		BookingID: &booking.ID,
		Action:    "booking.allocate_chassis",
		Outcome:   audit.OutcomeSuccess,
		ActorID:   input.ActorID,
		Detail:    map[string]any{"chassis_number": number, "reallocated": reallocated},
	})
	s.metrics.IncChassisAllocated(reallocated)
	return booking, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.load(ctx, id)
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Booking, error) {
	rows, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bookings")
	}
	return rows, nil
}

// pricingRequest feeds one monolithic pricing pass.
type pricingRequest struct {
	Model              *models.VehicleModel
	Channel            Channel
	OptionalComponents []uuid.UUID
	Accessories        []uuid.UUID
	Hypothecation      bool
	Discounts          types.Discounts
}

type pricedBooking struct {
	Components           types.PriceComponents
	AccessoryLines       types.AccessoryLines
	AccessoriesTotal     decimal.Decimal
	RTOAmount            decimal.Decimal
	HypothecationCharges decimal.Decimal
	TotalAmount          decimal.Decimal
	DiscountedAmount     decimal.Decimal
}

func (s *service) price(ctx context.Context, req pricingRequest) (pricedBooking, error) {
	entityID := req.Channel.BranchID
	if req.Channel.Type == enums.BookingTypeSubdealer {
		entityID = req.Channel.SubdealerID
	}

	cells, err := s.catalog.FindModelPrices(ctx, req.Model.ID, req.Channel.Type, *entityID)
	if err != nil {
		return pricedBooking{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load price matrix")
	}
	sheet := make([]pricing.HeaderValue, 0, len(cells))
	for _, cell := range cells {
		if cell.Header == nil {
			continue
		}
		sheet = append(sheet, pricing.HeaderValue{Header: *cell.Header, Value: cell.Value})
	}

	resolution, err := pricing.Resolve(pricing.ResolveInput{
		Headers:          sheet,
		SelectedOptional: req.OptionalComponents,
		Hypothecation:    req.Hypothecation,
	})
	if err != nil {
		return pricedBooking{}, err
	}

	entries, err := s.catalog.FindAccessoriesByIDs(ctx, req.Accessories)
	if err != nil {
		return pricedBooking{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load accessories")
	}
	bundle, err := pricing.BundleAccessories(req.Accessories, entries, req.Model.ID, resolution.AccessoryFloor)
	if err != nil {
		return pricedBooking{}, err
	}

	components, err := pricing.ApplyDiscounts(resolution.Components, req.Discounts)
	if err != nil {
		return pricedBooking{}, err
	}

	total, discounted := pricing.ComputeTotals(components, bundle.Total, resolution.RTOAmount)
	return pricedBooking{
		Components:           components,
		AccessoryLines:       bundle.Lines,
		AccessoriesTotal:     bundle.Total,
		RTOAmount:            resolution.RTOAmount,
		HypothecationCharges: resolution.HypothecationCharges,
		TotalAmount:          total,
		DiscountedAmount:     discounted,
	}, nil
}

func (s *service) buildPayment(ctx context.Context, input PaymentInput) (types.Payment, error) {
	switch input.Type {
	case enums.PaymentTypeCash:
		return types.Payment{Type: enums.PaymentTypeCash}, nil
	case enums.PaymentTypeFinance:
		if input.FinancerID == nil {
			return types.Payment{}, pkgerrors.New(pkgerrors.CodeValidation, "financer is required for financed bookings")
		}
		financer, err := s.catalog.FindFinancer(ctx, *input.FinancerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.Payment{}, pkgerrors.New(pkgerrors.CodeNotFound, "financer not found")
			}
			return types.Payment{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load financer")
		}
		if !financer.IsActive {
			return types.Payment{}, pkgerrors.New(pkgerrors.CodeValidation, "financer is inactive")
		}
		if input.Scheme != "" && !containsString(financer.Schemes, input.Scheme) {
			return types.Payment{}, pkgerrors.New(pkgerrors.CodeValidation, "scheme is not offered by financer")
		}
		return types.Payment{
			Type: enums.PaymentTypeFinance,
			Finance: &types.FinanceDetails{
				FinancerID:   financer.ID,
				FinancerName: financer.Name,
				Scheme:       input.Scheme,
				EMIPlan:      input.EMIPlan,
				GCApplicable: financer.GCApplicable,
			},
		}, nil
	default:
		return types.Payment{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment type")
	}
}

func (s *service) buildExchange(ctx context.Context, input *ExchangeInput) (*types.Exchange, error) {
	if input == nil {
		return nil, nil
	}
	broker, err := s.catalog.FindBroker(ctx, input.BrokerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "broker not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load broker")
	}
	if !broker.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "broker is inactive")
	}
	if !input.Price.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exchange price must be positive")
	}

	verified, err := s.otp.IsVerified(ctx, broker.ID)
	if err != nil {
		return nil, err
	}
	if !verified {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "broker otp is not verified")
	}

	return &types.Exchange{
		BrokerID:      broker.ID,
		BrokerName:    broker.Name,
		Price:         input.Price,
		VehicleNumber: input.VehicleNumber,
		ChassisNumber: input.ChassisNumber,
		OTPVerified:   true,
		Status:        enums.ExchangeStatusVerified,
	}, nil
}

func (s *service) guaranteeCommission(ctx context.Context, channel Channel, total decimal.Decimal) (decimal.Decimal, error) {
	var rate decimal.Decimal
	switch channel.Type {
	case enums.BookingTypeBranch:
		branch, err := s.catalog.FindBranch(ctx, *channel.BranchID)
		if err != nil {
			return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load branch gc rate")
		}
		rate = branch.GCRate
	case enums.BookingTypeSubdealer:
		subdealer, err := s.catalog.FindSubdealer(ctx, *channel.SubdealerID)
		if err != nil {
			return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subdealer gc rate")
		}
		rate = subdealer.GCRate
	}
	return total.Mul(rate).Round(2), nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, booking *models.Booking, actor uuid.UUID, reason string) error {
	chassis := ""
	if booking.ChassisNumber != nil {
		chassis = *booking.ChassisNumber
	}
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateBooking,
		AggregateID:   booking.ID,
		Version:       1,
		Actor:         &outbox.ActorRef{UserID: actor},
		Data: payloads.BookingLifecycleEvent{
			BookingID:     booking.ID,
			BookingNumber: booking.BookingNumber,
			BookingType:   booking.BookingType,
			Status:        booking.Status,
			TotalAmount:   booking.TotalAmount,
			Reason:        reason,
			ChassisNumber: chassis,
		},
	})
}

// requestRender asks the rendering collaborator for a document. The render
// request rides its own transaction after the booking commit: a failure here
// is logged and swallowed, never unwinding the committed mutation.
func (s *service) requestRender(ctx context.Context, booking *models.Booking, kind string, actor uuid.UUID) {
	if s.renderer == nil {
		return
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.renderer.RequestRender(ctx, tx, booking, kind, actor)
	})
	if err != nil && s.logg != nil {
		err = multierr.Append(err, fmt.Errorf("render request %q for booking %s dropped", kind, booking.ID))
		s.logg.Warn(s.logg.WithBookingID(ctx, booking.ID.String()), err.Error())
	}
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.loadWith(ctx, s.repo, id)
}

func (s *service) loadWith(ctx context.Context, repo Repository, id uuid.UUID) (*models.Booking, error) {
	booking, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	return booking, nil
}

func (s *service) loadActiveModel(ctx context.Context, id uuid.UUID) (*models.VehicleModel, error) {
	model, err := s.catalog.FindModel(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "model not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load model")
	}
	if !model.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "model is inactive")
	}
	return model, nil
}

func validateCustomerTax(customerType enums.CustomerType, gstin *string) error {
	if !customerType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid customer type")
	}
	hasGSTIN := gstin != nil && strings.TrimSpace(*gstin) != ""
	if customerType == enums.CustomerTypeB2B && !hasGSTIN {
		return pkgerrors.New(pkgerrors.CodeValidation, "gstin is required for B2B bookings")
	}
	if customerType != enums.CustomerTypeB2B && hasGSTIN {
		return pkgerrors.New(pkgerrors.CodeValidation, "gstin is only accepted for B2B bookings")
	}
	return nil
}

// buildDiscountInstructions orders the model campaign discount before any
// manual instruction so each applies against the previous pass's output.
func buildDiscountInstructions(model *models.VehicleModel, manual *DiscountInput, now time.Time) types.Discounts {
	var discounts types.Discounts
	if model.ModelDiscount.IsPositive() {
		discounts = append(discounts, types.Discount{
			Amount:          model.ModelDiscount,
			Type:            enums.DiscountTypeFixed,
			ApprovalStatus:  enums.DiscountApprovalPending,
			IsModelDiscount: true,
			AppliedOn:       now,
		})
	}
	if manual != nil {
		discounts = append(discounts, types.Discount{
			Amount:         manual.Value,
			Type:           manual.Type,
			ApprovalStatus: enums.DiscountApprovalPending,
			AppliedOn:      now,
		})
	}
	return discounts
}

// carriedDiscounts rebuilds the instruction list for an update: the model
// discount is re-derived from the catalog, manual instructions are replaced
// when a new one is supplied and carried over verbatim otherwise.
func carriedDiscounts(booking *models.Booking, model *models.VehicleModel, manual *DiscountInput, now time.Time) types.Discounts {
	if manual != nil {
		return buildDiscountInstructions(model, manual, now)
	}
	discounts := buildDiscountInstructions(model, nil, now)
	for _, d := range booking.Discounts {
		if !d.IsModelDiscount {
			discounts = append(discounts, d)
		}
	}
	return discounts
}

func paymentInputFromBooking(booking *models.Booking) PaymentInput {
	input := PaymentInput{Type: booking.Payment.Type}
	if booking.Payment.Finance != nil {
		financerID := booking.Payment.Finance.FinancerID
		input.FinancerID = &financerID
		input.Scheme = booking.Payment.Finance.Scheme
		input.EMIPlan = booking.Payment.Finance.EMIPlan
	}
	input.Hypothecation = booking.HypothecationCharges.IsPositive()
	return input
}

func selectedOptionalComponents(booking *models.Booking) []uuid.UUID {
	var ids []uuid.UUID
	for _, c := range booking.PriceComponents {
		if !c.IsMandatory {
			ids = append(ids, c.HeaderID)
		}
	}
	return ids
}

func selectedAccessories(booking *models.Booking) []uuid.UUID {
	var ids []uuid.UUID
	for _, line := range booking.Accessories {
		if line.AccessoryID != nil {
			ids = append(ids, *line.AccessoryID)
		}
	}
	return ids
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func newBookingNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("BK-%s-%s", now.Format("20060102"), suffix)
}
