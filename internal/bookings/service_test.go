package bookings

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sahyadri-motors/dealerdesk/internal/audit"
	"github.com/sahyadri-motors/dealerdesk/pkg/db/models"
	dbtypes "github.com/sahyadri-motors/dealerdesk/pkg/db/types"
	"github.com/sahyadri-motors/dealerdesk/pkg/enums"
	pkgerrors "github.com/sahyadri-motors/dealerdesk/pkg/errors"
	"github.com/sahyadri-motors/dealerdesk/pkg/outbox"
	"github.com/sahyadri-motors/dealerdesk/pkg/pagination"
	"github.com/sahyadri-motors/dealerdesk/pkg/types"
)

// stubBookingRepo keeps booking aggregates in a map.
type stubBookingRepo struct {
	rows map[uuid.UUID]*models.Booking
}

func newStubBookingRepo() *stubBookingRepo {
	return &stubBookingRepo{rows: map[uuid.UUID]*models.Booking{}}
}

func (s *stubBookingRepo) WithTx(*gorm.DB) Repository { return s }

func (s *stubBookingRepo) Create(_ context.Context, booking *models.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	clone := *booking
	s.rows[booking.ID] = &clone
	return nil
}

func (s *stubBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	if row, ok := s.rows[id]; ok {
		clone := *row
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubBookingRepo) Save(_ context.Context, booking *models.Booking) error {
	clone := *booking
	s.rows[booking.ID] = &clone
	return nil
}

func (s *stubBookingRepo) List(_ context.Context, _ pagination.Params, filters ListFilters) ([]models.Booking, error) {
	var out []models.Booking
	for _, row := range s.rows {
		if filters.Status != nil && row.Status != *filters.Status {
			continue
		}
		out = append(out, *row)
	}
	return out, nil
}

func (s *stubBookingRepo) ChassisNumberTaken(_ context.Context, number string, excludeID uuid.UUID) (bool, error) {
	for _, row := range s.rows {
		if row.ID != excludeID && row.ChassisNumber != nil && *row.ChassisNumber == number {
			return true, nil
		}
	}
	return false, nil
}

type stubTx struct{}

func (stubTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func (s *stubOutbox) lastType() enums.OutboxEventType {
	if len(s.events) == 0 {
		return ""
	}
	return s.events[len(s.events)-1].EventType
}

type stubAudit struct {
	entries []audit.Entry
}

func (s *stubAudit) Record(_ context.Context, entry audit.Entry) {
	s.entries = append(s.entries, entry)
}

type stubOTPChecker struct {
	verified map[uuid.UUID]bool
}

func (s *stubOTPChecker) IsVerified(_ context.Context, brokerID uuid.UUID) (bool, error) {
	return s.verified[brokerID], nil
}

type serviceFixture struct {
	svc     Service
	repo    *stubBookingRepo
	catalog *stubCatalog
	users   *stubUsers
	outbox  *stubOutbox
	audit   *stubAudit
	otp     *stubOTPChecker

	branch    *models.Branch
	subdealer *models.Subdealer
	executive *models.User
	manager   *models.User
	model     *models.VehicleModel
	color     *models.ModelColor
	broker    *models.Broker
	financer  *models.Financer
	accessory models.Accessory

	optionalHeaderID uuid.UUID
}

// newServiceFixture seeds a branch, a subdealer, staff, one model and a
// price matrix column for the branch:
//
//	EX-SHOWROOM 100000 (mandatory, discountable, tax 28)
//	TAX COLLECTED AT SOURCE 1000 (mandatory, discountable, tax 1)
//	RTO CHARGES 8000 (RTO kind)
//	ACCESSORY KIT 2000 (accessory floor)
//	HPA CHARGES 300 (hypothecation)
//	EXTENDED WARRANTY 1500 (optional charge)
func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	catalogRepo := newStubCatalog()
	usersRepo := newStubUsers()
	bookingRepo := newStubBookingRepo()
	outboxStub := &stubOutbox{}
	auditStub := &stubAudit{}
	otpStub := &stubOTPChecker{verified: map[uuid.UUID]bool{}}

	branch := &models.Branch{ID: uuid.New(), Name: "Pune Central", City: "Pune", GCRate: decimal.NewFromFloat(0.02), IsActive: true}
	subdealer := &models.Subdealer{ID: uuid.New(), Name: "Satara Motors", City: "Satara", GCRate: decimal.NewFromFloat(0.015), IsActive: true}
	catalogRepo.branches[branch.ID] = branch
	catalogRepo.subdealers[subdealer.ID] = subdealer

	executive := &models.User{ID: uuid.New(), Email: "exec@example.com", Role: enums.RoleSalesExecutive, BranchID: &branch.ID, IsActive: true}
	manager := &models.User{ID: uuid.New(), Email: "manager@example.com", Role: enums.RoleBranchManager, BranchID: &branch.ID, IsActive: true}
	partner := &models.User{ID: uuid.New(), Email: "partner@example.com", Role: enums.RoleSubdealerUser, SubdealerID: &subdealer.ID, IsActive: true}
	usersRepo.users[executive.ID] = executive
	usersRepo.users[manager.ID] = manager
	usersRepo.users[partner.ID] = partner

	model := &models.VehicleModel{ID: uuid.New(), Name: "Trailblazer 350", Segment: "cruiser", IsActive: true}
	color := &models.ModelColor{ID: uuid.New(), ModelID: model.ID, Name: "Stealth Black", IsActive: true}
	catalogRepo.models[model.ID] = model
	catalogRepo.colors[color.ID] = color

	headers := []models.PriceHeader{
		{ID: uuid.New(), Name: "EX-SHOWROOM", Kind: enums.HeaderKindCharge, Priority: 1, IsMandatory: true, IsDiscountable: true, TaxRate: decimal.NewFromInt(28)},
		{ID: uuid.New(), Name: "TAX COLLECTED AT SOURCE", Kind: enums.HeaderKindCharge, Priority: 2, IsMandatory: true, IsDiscountable: true, TaxRate: decimal.NewFromInt(1)},
		{ID: uuid.New(), Name: "RTO CHARGES", Kind: enums.HeaderKindRTO, Priority: 3},
		{ID: uuid.New(), Name: "ACCESSORY KIT", Kind: enums.HeaderKindAccessoryTotal, Priority: 4},
		{ID: uuid.New(), Name: "HPA CHARGES", Kind: enums.HeaderKindHypothecation, Priority: 5},
		{ID: uuid.New(), Name: "EXTENDED WARRANTY", Kind: enums.HeaderKindCharge, Priority: 6, IsMandatory: false, IsDiscountable: false, TaxRate: decimal.NewFromInt(18)},
	}
	values := []decimal.Decimal{
		decimal.NewFromInt(100000),
		decimal.NewFromInt(1000),
		decimal.NewFromInt(8000),
		decimal.NewFromInt(2000),
		decimal.NewFromInt(300),
		decimal.NewFromInt(1500),
	}
	for i := range headers {
		header := headers[i]
		catalogRepo.prices = append(catalogRepo.prices, models.ModelPrice{
			ID:         uuid.New(),
			ModelID:    model.ID,
			HeaderID:   header.ID,
			EntityType: enums.BookingTypeBranch,
			EntityID:   branch.ID,
			Value:      values[i],
			Header:     &header,
		})
	}

	broker := &models.Broker{ID: uuid.New(), Name: "Deccan Exchange", IsActive: true}
	catalogRepo.brokers[broker.ID] = broker
	financer := &models.Financer{ID: uuid.New(), Name: "Sahyadri Finance", Schemes: []string{"standard", "zero-down"}, GCApplicable: true, IsActive: true}
	catalogRepo.financers[financer.ID] = financer

	accessory := models.Accessory{
		ID:                 uuid.New(),
		Name:               "Crash Guard",
		Price:              decimal.NewFromInt(2500),
		Status:             enums.AccessoryStatusActive,
		ApplicableModelIDs: dbtypes.UUIDArray{model.ID},
	}
	catalogRepo.accessories[accessory.ID] = accessory

	router, err := NewRouter(catalogRepo, usersRepo)
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	svc, err := NewService(ServiceParams{
		Repo:    bookingRepo,
		Catalog: catalogRepo,
		Users:   usersRepo,
		Router:  router,
		OTP:     otpStub,
		Tx:      stubTx{},
		Outbox:  outboxStub,
		Audit:   auditStub,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	return &serviceFixture{
		svc:              svc,
		repo:             bookingRepo,
		catalog:          catalogRepo,
		users:            usersRepo,
		outbox:           outboxStub,
		audit:            auditStub,
		otp:              otpStub,
		branch:           branch,
		subdealer:        subdealer,
		executive:        executive,
		manager:          manager,
		model:            model,
		color:            color,
		broker:           broker,
		financer:         financer,
		accessory:        accessory,
		optionalHeaderID: headers[5].ID,
	}
}

func (fx *serviceFixture) createInput() CreateInput {
	return CreateInput{
		ModelID:      fx.model.ID,
		ColorID:      fx.color.ID,
		CustomerType: enums.CustomerTypeB2C,
		RTOType:      enums.RTOTypeMH,
		Customer:     types.Customer{Name: "Asha Kulkarni", Mobile1: "9822000000"},
		Payment:      PaymentInput{Type: enums.PaymentTypeCash},
		BranchID:     &fx.branch.ID,
		ActorID:      fx.executive.ID,
	}
}

func TestCreateBranchBooking(t *testing.T) {
	t.Parallel()
	fx := newServiceFixture(t)

	booking, err := fx.svc.Create(context.Background(), fx.createInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if booking.Status != enums.BookingStatusPendingApproval {
		t.Fatalf("expected PENDING_APPROVAL, got %s", booking.Status)
	}
	if booking.BookingType != enums.BookingTypeBranch {
		t.Fatalf("expected BRANCH booking, got %s", booking.BookingType)
	}
	if booking.BookingNumber == "" {
		t.Fatal("booking number not assigned")
	}
	// Mandatory charges only: 100000 + 1000, RTO 8000, accessory floor 2000.
	if !booking.TotalAmount.Equal(decimal.NewFromInt(111000)) {
		t.Fatalf("expected total 111000, got %s", booking.TotalAmount)
	}
	if !booking.DiscountedAmount.Equal(booking.TotalAmount) {
		t.Fatalf("no discounts applied: discounted %s should equal total %s", booking.DiscountedAmount, booking.TotalAmount)
	}
	if !booking.AccessoriesTotal.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("expected accessory floor 2000, got %s", booking.AccessoriesTotal)
	}
	if len(booking.Accessories) != 1 || booking.Accessories[0].AccessoryID != nil {
		t.Fatalf("expected one synthetic floor line, got %+v", booking.Accessories)
	}
	if fx.outbox.lastType() != enums.EventBookingCreated {
		t.Fatalf("expected booking_created event, got %s", fx.outbox.lastType())
	}
	if len(fx.audit.entries) == 0 || fx.audit.entries[0].Outcome != audit.OutcomeSuccess {
		t.Fatal("expected a success audit entry")
	}
}

func TestCreateWithOptionsDiscountAndAccessory(t *testing.T) {
	t.Parallel()
	fx := newServiceFixture(t)

	input := fx.createInput()
	input.OptionalComponents = []uuid.UUID{fx.optionalHeaderID}
	input.Accessories = []uuid.UUID{fx.accessory.ID}
	input.Discount = &DiscountInput{Type: enums.DiscountTypeFixed, Value: decimal.NewFromInt(3000)}

	booking, err := fx.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// 100000 + 1000 + 1500 warranty − 3000 discount + 2500 accessory + 8000 RTO.
	if !booking.TotalAmount.Equal(decimal.NewFromInt(110000)) {
		t.Fatalf("expected total 110000, got %s", booking.TotalAmount)
	}
	if !booking.TotalAmount.Sub(booking.DiscountedAmount).Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("expected 3000 of discount in totals, got total %s discounted %s", booking.TotalAmount, booking.DiscountedAmount)
	}
	if !booking.AccessoriesTotal.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("expected accessories 2500 above the floor, got %s", booking.AccessoriesTotal)
	}
	if len(booking.Discounts) != 1 || booking.Discounts[0].ApprovalStatus != enums.DiscountApprovalPending {
		t.Fatalf("expected one pending discount, got %+v", booking.Discounts)
	}
}

func TestCreateAppliesModelDiscountFirst(t *testing.T) {
	t.Parallel()
	fx := newServiceFixture(t)
	fx.model.ModelDiscount = decimal.NewFromInt(2000)

	input := fx.createInput()
	input.Discount = &DiscountInput{Type: enums.DiscountTypeFixed, Value: decimal.NewFromInt(1000)}

	booking, err := fx.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(booking.Discounts) != 2 {
		t.Fatalf("expected model + manual discounts, got %d", len(booking.Discounts))
	}
	if !booking.Discounts[0].IsModelDiscount || booking.Discounts[1].IsModelDiscount {
		t.Fatalf("model discount must come first: %+v", booking.Discounts)
	}
	if !booking.TotalAmount.Equal(decimal.NewFromInt(108000)) {
		t.Fatalf("expected total 108000, got %s", booking.TotalAmount)
	}
}

func TestCreateValidatesGSTINByCustomerType(t *testing.T) {
	t.Parallel()
	fx := newServiceFixture(t)

	input := fx.createInput()
	input.CustomerType = enums.CustomerTypeB2B
	if _, err := fx.svc.Create(context.Background(), input); codeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected B2B without GSTIN to fail, got %v", err)
	}

	gstin := "27AAPFU0939F1ZV"
	input = fx.createInput()
	input.GSTIN = &gstin
	if _, err := fx.svc.Create(context.Background(), input); codeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected B2C with GSTIN to fail, got %v", err)
	}

	input = fx.createInput()
	input.CustomerType = enums.CustomerTypeB2B
	input.GSTIN = &gstin
	if _, err := fx.svc.Create(context.Background(), input); err != nil {
		t.Fatalf("B2B with GSTIN: %v", err)
	}
}

func TestCreateFinancedBookingWithHypothecation(t *testing.T) {
	t.Parallel()
	fx := newServiceFixture(t)

	input := fx.createInput()
	input.Payment = PaymentInput{
		Type:          enums.PaymentTypeFinance,
		FinancerID:    &fx.financer.ID,
		Scheme:        "standard",
		Hypothecation: true,
	}

	booking, err := fx.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if booking.Payment.Finance == nil {
		t.Fatal("finance details not captured")
	}
	// Base 111000 plus the 300 hypothecation charge.
	if !booking.TotalAmount.Equal(decimal.NewFromInt(111300)) {
		t.Fatalf("expected total 111300, got %s", booking.TotalAmount)
	}
	if !booking.HypothecationCharges.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected hypothecation charge 300, got %s", booking.HypothecationCharges)
	}
	if booking.Payment.Finance.GCAmount == nil {
		t.Fatal("expected guarantee commission for a GC-applicable financer")
	}
	// 2% of 111300.
	if !booking.Payment.Finance.GCAmount.Equal(decimal.NewFromInt(2226)) {
		t.Fatalf("expected GC 2226, got %s", booking.Payment.Finance.GCAmount)
	}

	input.Payment.Scheme = "unknown-scheme"
	if _, err := fx.svc.Create(context.Background(), input); codeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected unknown scheme to fail, got %v", err)
	}
}

func TestCreateExchangeRequiresVerifiedOTP(t *testing.T) {
	t.Parallel()
	fx := newServiceFixture(t)

	input := fx.createInput()
	input.Exchange = &ExchangeInput{
		BrokerID:      fx.broker.ID,
		Price:         decimal.NewFromInt(25000),
		VehicleNumber: "MH12AB1234",
	}
	if _, err := fx.svc.Create(context.Background(), input); codeOf(err) != pkgerrors.CodeValidation {
		t.Fatal("expected unverified broker OTP to fail")
	}

	fx.otp.verified[fx.broker.ID] = true
	booking, err := fx.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create with verified otp: %v", err)
	}
	if booking.Exchange == nil || !booking.Exchange.OTPVerified {
		t.Fatal("exchange not captured as verified")
	}
	if booking.Exchange.Status != enums.ExchangeStatusVerified {
		t.Fatalf("expected VERIFIED exchange, got %s", booking.Exchange.Status)
	}
}

func TestCreateSubdealerBooking(t *testing.T) {
	t.Parallel()
	fx := newServiceFixture(t)

	// Mirror the branch matrix for the subdealer column.
	for _, cell := range fx.catalog.prices {
		clone := cell
		clone.ID = uuid.New()
		clone.EntityType = enums.BookingTypeSubdealer
		clone.EntityID = fx.subdealer.ID
		fx.catalog.prices = append(fx.catalog.prices, clone)
	}

	input := fx.createInput()
	input.BranchID = nil
	input.SubdealerID = &fx.subdealer.ID

	booking, err := fx.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create subdealer booking: %v", err)
	}
	if booking.BookingType != enums.BookingTypeSubdealer {
		t.Fatalf("expected SUBDEALER booking, got %s", booking.BookingType)
	}
	if booking.SubdealerUserID == nil {
		t.Fatal("subdealer user not attributed")
	}
	if booking.BranchID != nil || booking.SalesExecutive != nil {
		t.Fatal("branch attribution must be empty")
	}
}

func TestUpdateRecomputesMonolithically(t *testing.T) {
	t.Parallel()
	fx := newServiceFixture(t)

	created, err := fx.svc.Create(context.Background(), fx.createInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	accessories := []uuid.UUID{fx.accessory.ID}
	updated, err := fx.svc.Update(context.Background(), UpdateInput{
		BookingID:   created.ID,
		Accessories: &accessories,
		Discount:    &DiscountInput{Type: enums.DiscountTypePercentage, Value: decimal.NewFromInt(10)},
		ActorID:     fx.executive.ID,
		ActorRole:   enums.RoleSalesExecutive,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	// 101000 charges − 10% (10100) + 2500 accessory + 8000 RTO.
	if !updated.TotalAmount.Equal(decimal.NewFromInt(101400)) {
		t.Fatalf("expected total 101400, got %s", updated.TotalAmount)
	}
	if !updated.TotalAmount.Sub(updated.DiscountedAmount).Equal(decimal.NewFromInt(10100)) {
		t.Fatalf("expected 10100 discount reflected, got %s vs %s", updated.TotalAmount, updated.DiscountedAmount)
	}
	if fx.outbox.lastType() != enums.EventBookingUpdated {
		t.Fatalf("expected booking_updated event, got %s", fx.outbox.lastType())
	}
}

func TestUpdateLockedAfterApproval(t *testing.T) {
	t.Parallel()
	fx := newServiceFixture(t)

	created, err := fx.svc.Create(context.Background(), fx.createInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := fx.svc.Approve(context.Background(), TransitionInput{
		BookingID: created.ID, ActorID: fx.manager.ID, ActorRole: enums.RoleBranchManager,
	}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	_, err = fx.svc.Update(context.Background(), UpdateInput{
		BookingID: created.ID,
		ActorID:   fx.executive.ID,
		ActorRole: enums.RoleSalesExecutive,
	})
	if codeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected locked booking, got %v", err)
	}
}

func TestApproveFlipsDiscountsAtomically(t *testing.T) {
	t.Parallel()
	fx := newServiceFixture(t)

	input := fx.createInput()
	input.Discount = &DiscountInput{Type: enums.DiscountTypeFixed, Value: decimal.NewFromInt(500)}
	created, err := fx.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	approved, err := fx.svc.Approve(context.Background(), TransitionInput{
		BookingID: created.ID, ActorID: fx.manager.ID, ActorRole: enums.RoleBranchManager,
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != enums.BookingStatusApproved {
		t.Fatalf("expected APPROVED, got %s", approved.Status)
	}
	if approved.ApprovedBy == nil || *approved.ApprovedBy != fx.manager.ID {
		t.Fatal("approver not recorded")
	}
	for _, d := range approved.Discounts {
		if d.ApprovalStatus != enums.DiscountApprovalApproved {
			t.Fatalf("expected all discounts APPROVED, got %+v", approved.Discounts)
		}
	}
	if fx.outbox.lastType() != enums.EventBookingApproved {
		t.Fatalf("expected booking_approved event, got %s", fx.outbox.lastType())
	}
}

func TestApproveRequiresAuthority(t *testing.T) {
	t.Parallel()
	fx := newServiceFixture(t)

	created, err := fx.svc.Create(context.Background(), fx.createInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = fx.svc.Approve(context.Background(), TransitionInput{
		BookingID: created.ID, ActorID: fx.executive.ID, ActorRole: enums.RoleSalesExecutive,
	})
	if codeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for sales executive, got %v", err)
	}
}

func TestRejectRequiresReasonAndFlipsPendingDiscounts(t *testing.T) {
	t.Parallel()
	fx := newServiceFixture(t)

	input := fx.createInput()
	input.Discount = &DiscountInput{Type: enums.DiscountTypeFixed, Value: decimal.NewFromInt(500)}
	created, err := fx.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = fx.svc.Reject(context.Background(), TransitionInput{
		BookingID: created.ID, ActorID: fx.manager.ID, ActorRole: enums.RoleBranchManager,
	})
	if codeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected missing reason to fail, got %v", err)
	}

	rejected, err := fx.svc.Reject(context.Background(), TransitionInput{
		BookingID: created.ID, ActorID: fx.manager.ID, ActorRole: enums.RoleBranchManager,
		Reason: "discount beyond branch policy",
	})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != enums.BookingStatusRejected {
		t.Fatalf("expected REJECTED, got %s", rejected.Status)
	}
	for _, d := range rejected.Discounts {
		if d.ApprovalStatus != enums.DiscountApprovalRejected {
			t.Fatalf("expected pending discounts flipped to REJECTED, got %+v", rejected.Discounts)
		}
	}
}

func TestCompleteRequiresChassis(t *testing.T) {
	t.Parallel()
	fx := newServiceFixture(t)

	created, err := fx.svc.Create(context.Background(), fx.createInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := fx.svc.Approve(context.Background(), TransitionInput{
		BookingID: created.ID, ActorID: fx.manager.ID, ActorRole: enums.RoleBranchManager,
	}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	_, err = fx.svc.Complete(context.Background(), TransitionInput{
		BookingID: created.ID, ActorID: fx.manager.ID, ActorRole: enums.RoleBranchManager,
	})
	if codeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected completion without chassis to fail, got %v", err)
	}

	if _, err := fx.svc.AllocateChassis(context.Background(), AllocateChassisInput{
		BookingID: created.ID, ChassisNumber: "MA1TB2CD3EF456789",
		ActorID: fx.manager.ID, ActorRole: enums.RoleBranchManager,
	}); err != nil {
		t.Fatalf("allocate chassis: %v", err)
	}

	completed, err := fx.svc.Complete(context.Background(), TransitionInput{
		BookingID: created.ID, ActorID: fx.manager.ID, ActorRole: enums.RoleBranchManager,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != enums.BookingStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", completed.Status)
	}
}

func TestCancelFromPendingAndApproved(t *testing.T) {
	t.Parallel()
	fx := newServiceFixture(t)

	created, err := fx.svc.Create(context.Background(), fx.createInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	cancelled, err := fx.svc.Cancel(context.Background(), TransitionInput{
		BookingID: created.ID, ActorID: fx.executive.ID, ActorRole: enums.RoleSalesExecutive,
	})
	if err != nil {
		t.Fatalf("cancel pending: %v", err)
	}
	if cancelled.Status != enums.BookingStatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", cancelled.Status)
	}

	// Terminal statuses have no outgoing edges.
	_, err = fx.svc.Cancel(context.Background(), TransitionInput{
		BookingID: created.ID, ActorID: fx.executive.ID, ActorRole: enums.RoleSalesExecutive,
	})
	if codeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected cancel on cancelled to conflict, got %v", err)
	}
}

func TestAllocateChassisLifecycle(t *testing.T) {
	t.Parallel()
	fx := newServiceFixture(t)

	created, err := fx.svc.Create(context.Background(), fx.createInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	booking, err := fx.svc.AllocateChassis(context.Background(), AllocateChassisInput{
		BookingID: created.ID, ChassisNumber: "ma1tb2cd3ef456789",
		ActorID: fx.manager.ID, ActorRole: enums.RoleBranchManager,
	})
	if err != nil {
		t.Fatalf("initial allocation: %v", err)
	}
	if booking.ChassisNumber == nil || *booking.ChassisNumber != "MA1TB2CD3EF456789" {
		t.Fatal("chassis number not normalized and stored")
	}
	if fx.outbox.lastType() != enums.EventChassisAllocated {
		t.Fatalf("expected chassis_allocated event, got %s", fx.outbox.lastType())
	}

	// Second booking may not reuse the number.
	other, err := fx.svc.Create(context.Background(), fx.createInput())
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	_, err = fx.svc.AllocateChassis(context.Background(), AllocateChassisInput{
		BookingID: other.ID, ChassisNumber: "MA1TB2CD3EF456789",
		ActorID: fx.manager.ID, ActorRole: enums.RoleBranchManager,
	})
	if codeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected duplicate chassis to fail, got %v", err)
	}

	// Re-allocation without a reason is refused, with one succeeds.
	_, err = fx.svc.AllocateChassis(context.Background(), AllocateChassisInput{
		BookingID: created.ID, ChassisNumber: "MA1TB2CD3EF456780",
		ActorID: fx.manager.ID, ActorRole: enums.RoleBranchManager,
	})
	if codeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected re-allocation without reason to fail, got %v", err)
	}
	booking, err = fx.svc.AllocateChassis(context.Background(), AllocateChassisInput{
		BookingID: created.ID, ChassisNumber: "MA1TB2CD3EF456780", Reason: "transit damage",
		ActorID: fx.manager.ID, ActorRole: enums.RoleBranchManager,
	})
	if err != nil {
		t.Fatalf("re-allocation: %v", err)
	}
	if len(booking.ChassisNumberHistory) != 1 {
		t.Fatalf("expected one history entry, got %d", len(booking.ChassisNumberHistory))
	}
	if fx.outbox.lastType() != enums.EventChassisReallocated {
		t.Fatalf("expected chassis_reallocated event, got %s", fx.outbox.lastType())
	}

	// The window is single-use.
	_, err = fx.svc.AllocateChassis(context.Background(), AllocateChassisInput{
		BookingID: created.ID, ChassisNumber: "MA1TB2CD3EF456781", Reason: "again",
		ActorID: fx.manager.ID, ActorRole: enums.RoleBranchManager,
	})
	if codeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected chassis lock, got %v", err)
	}
}

func TestAllocateChassisWithClaim(t *testing.T) {
	t.Parallel()
	fx := newServiceFixture(t)

	created, err := fx.svc.Create(context.Background(), fx.createInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Claim details without the flag are rejected.
	_, err = fx.svc.AllocateChassis(context.Background(), AllocateChassisInput{
		BookingID: created.ID, ChassisNumber: "MA1TB2CD3EF456789",
		Claim:   &ClaimInput{Price: decimal.NewFromInt(800), Description: "dent"},
		ActorID: fx.manager.ID, ActorRole: enums.RoleBranchManager,
	})
	if codeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected claim without flag to fail, got %v", err)
	}

	booking, err := fx.svc.AllocateChassis(context.Background(), AllocateChassisInput{
		BookingID: created.ID, ChassisNumber: "MA1TB2CD3EF456789",
		HasClaim: true,
		Claim:    &ClaimInput{Price: decimal.NewFromInt(800), Description: "dent on tank", Documents: []string{"dent.jpg"}},
		ActorID:  fx.manager.ID, ActorRole: enums.RoleBranchManager,
	})
	if err != nil {
		t.Fatalf("allocate with claim: %v", err)
	}
	if booking.Claim == nil || booking.Claim.Description != "dent on tank" {
		t.Fatal("claim not stored")
	}
	if booking.Claim.RaisedBy != fx.manager.ID {
		t.Fatal("claim raiser not recorded")
	}
}

func TestAllocateChassisBlockedOnTerminalBooking(t *testing.T) {
	t.Parallel()
	fx := newServiceFixture(t)

	created, err := fx.svc.Create(context.Background(), fx.createInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := fx.svc.Cancel(context.Background(), TransitionInput{
		BookingID: created.ID, ActorID: fx.executive.ID, ActorRole: enums.RoleSalesExecutive,
	}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	_, err = fx.svc.AllocateChassis(context.Background(), AllocateChassisInput{
		BookingID: created.ID, ChassisNumber: "MA1TB2CD3EF456789",
		ActorID: fx.manager.ID, ActorRole: enums.RoleBranchManager,
	})
	if codeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected allocation on cancelled booking to conflict, got %v", err)
	}
}

func TestCreateRecordsFailureAudit(t *testing.T) {
	t.Parallel()
	fx := newServiceFixture(t)

	input := fx.createInput()
	input.Customer.Name = ""
	if _, err := fx.svc.Create(context.Background(), input); err == nil {
		t.Fatal("expected create to fail")
	}
	if len(fx.audit.entries) != 1 || fx.audit.entries[0].Outcome != audit.OutcomeFailure {
		t.Fatalf("expected a failure audit entry, got %+v", fx.audit.entries)
	}
}
