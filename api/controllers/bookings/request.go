package bookings

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	internalbookings "github.com/sahyadri-motors/dealerdesk/internal/bookings"
	"github.com/sahyadri-motors/dealerdesk/pkg/enums"
	pkgerrors "github.com/sahyadri-motors/dealerdesk/pkg/errors"
	"github.com/sahyadri-motors/dealerdesk/pkg/types"
)

type customerRequest struct {
	Salutation string  `json:"salutation" validate:"required"`
	Name       string  `json:"name" validate:"required,min=2,max=128"`
	Mobile1    string  `json:"mobile1" validate:"required,len=10,numeric"`
	Mobile2    *string `json:"mobile2,omitempty" validate:"omitempty,len=10,numeric"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Address    *string `json:"address,omitempty"`
	City       *string `json:"city,omitempty"`
	Pincode    *string `json:"pincode,omitempty" validate:"omitempty,len=6,numeric"`
}

func (c customerRequest) toCustomer() types.Customer {
	return types.Customer{
		Salutation: strings.TrimSpace(c.Salutation),
		Name:       strings.TrimSpace(c.Name),
		Mobile1:    strings.TrimSpace(c.Mobile1),
		Mobile2:    c.Mobile2,
		Email:      c.Email,
		Address:    c.Address,
		City:       c.City,
		Pincode:    c.Pincode,
	}
}

type paymentRequest struct {
	Type          string  `json:"type" validate:"required"`
	FinancerID    *string `json:"financer_id,omitempty" validate:"omitempty,uuid4"`
	Scheme        string  `json:"scheme,omitempty"`
	EMIPlan       string  `json:"emi_plan,omitempty"`
	Hypothecation bool    `json:"hypothecation,omitempty"`
}

func (p paymentRequest) toInput() (internalbookings.PaymentInput, error) {
	paymentType, err := enums.ParsePaymentType(strings.TrimSpace(p.Type))
	if err != nil {
		return internalbookings.PaymentInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment type")
	}

	var financerID *uuid.UUID
	if p.FinancerID != nil {
		parsed, err := uuid.Parse(strings.TrimSpace(*p.FinancerID))
		if err != nil {
			return internalbookings.PaymentInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid financer id")
		}
		financerID = &parsed
	}

	return internalbookings.PaymentInput{
		Type:          paymentType,
		FinancerID:    financerID,
		Scheme:        strings.TrimSpace(p.Scheme),
		EMIPlan:       strings.TrimSpace(p.EMIPlan),
		Hypothecation: p.Hypothecation,
	}, nil
}

type exchangeRequest struct {
	BrokerID      string          `json:"broker_id" validate:"required,uuid4"`
	Price         decimal.Decimal `json:"price"`
	VehicleNumber string          `json:"vehicle_number" validate:"required"`
	ChassisNumber string          `json:"chassis_number" validate:"required"`
}

func (e exchangeRequest) toInput() (*internalbookings.ExchangeInput, error) {
	brokerID, err := uuid.Parse(strings.TrimSpace(e.BrokerID))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid broker id")
	}
	if e.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exchange price cannot be negative")
	}
	return &internalbookings.ExchangeInput{
		BrokerID:      brokerID,
		Price:         e.Price,
		VehicleNumber: strings.ToUpper(strings.TrimSpace(e.VehicleNumber)),
		ChassisNumber: strings.ToUpper(strings.TrimSpace(e.ChassisNumber)),
	}, nil
}

type discountRequest struct {
	Type  string          `json:"type" validate:"required"`
	Value decimal.Decimal `json:"value"`
}

func (d discountRequest) toInput() (*internalbookings.DiscountInput, error) {
	discountType, err := enums.ParseDiscountType(strings.TrimSpace(d.Type))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount type")
	}
	if d.Value.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount value cannot be negative")
	}
	return &internalbookings.DiscountInput{
		Type:  discountType,
		Value: d.Value,
	}, nil
}

type createBookingRequest struct {
	ModelID            string           `json:"model_id" validate:"required,uuid4"`
	ColorID            string           `json:"color_id" validate:"required,uuid4"`
	CustomerType       string           `json:"customer_type" validate:"required"`
	GSTIN              *string          `json:"gstin,omitempty"`
	RTOType            string           `json:"rto_type" validate:"required"`
	Customer           customerRequest  `json:"customer" validate:"required"`
	Payment            paymentRequest   `json:"payment" validate:"required"`
	SalesExecutiveID   *string          `json:"sales_executive_id,omitempty" validate:"omitempty,uuid4"`
	OptionalComponents []string         `json:"optional_components,omitempty"`
	Accessories        []string         `json:"accessories,omitempty"`
	Exchange           *exchangeRequest `json:"exchange,omitempty"`
	Discount           *discountRequest `json:"discount,omitempty"`
}

func (req createBookingRequest) toCreateInput() (internalbookings.CreateInput, error) {
	var input internalbookings.CreateInput

	modelID, err := uuid.Parse(strings.TrimSpace(req.ModelID))
	if err != nil {
		return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid model id")
	}
	colorID, err := uuid.Parse(strings.TrimSpace(req.ColorID))
	if err != nil {
		return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid color id")
	}

	customerType, err := enums.ParseCustomerType(strings.TrimSpace(req.CustomerType))
	if err != nil {
		return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer type")
	}
	rtoType, err := enums.ParseRTOType(strings.TrimSpace(req.RTOType))
	if err != nil {
		return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rto type")
	}

	payment, err := req.Payment.toInput()
	if err != nil {
		return input, err
	}

	var salesExecutiveID *uuid.UUID
	if req.SalesExecutiveID != nil {
		parsed, err := uuid.Parse(strings.TrimSpace(*req.SalesExecutiveID))
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sales executive id")
		}
		salesExecutiveID = &parsed
	}

	components, err := parseUUIDList(req.OptionalComponents, "optional component")
	if err != nil {
		return input, err
	}
	accessories, err := parseUUIDList(req.Accessories, "accessory")
	if err != nil {
		return input, err
	}

	var exchange *internalbookings.ExchangeInput
	if req.Exchange != nil {
		exchange, err = req.Exchange.toInput()
		if err != nil {
			return input, err
		}
	}

	var discount *internalbookings.DiscountInput
	if req.Discount != nil {
		discount, err = req.Discount.toInput()
		if err != nil {
			return input, err
		}
	}

	return internalbookings.CreateInput{
		ModelID:            modelID,
		ColorID:            colorID,
		CustomerType:       customerType,
		GSTIN:              req.GSTIN,
		RTOType:            rtoType,
		Customer:           req.Customer.toCustomer(),
		Payment:            payment,
		SalesExecutiveID:   salesExecutiveID,
		OptionalComponents: components,
		Accessories:        accessories,
		Exchange:           exchange,
		Discount:           discount,
	}, nil
}

type updateBookingRequest struct {
	ColorID            *string          `json:"color_id,omitempty" validate:"omitempty,uuid4"`
	CustomerType       *string          `json:"customer_type,omitempty"`
	GSTIN              *string          `json:"gstin,omitempty"`
	RTOType            *string          `json:"rto_type,omitempty"`
	Customer           *customerRequest `json:"customer,omitempty"`
	Payment            *paymentRequest  `json:"payment,omitempty"`
	OptionalComponents *[]string        `json:"optional_components,omitempty"`
	Accessories        *[]string        `json:"accessories,omitempty"`
	Discount           *discountRequest `json:"discount,omitempty"`
}

func (req updateBookingRequest) toUpdateInput() (internalbookings.UpdateInput, error) {
	var input internalbookings.UpdateInput

	if req.ColorID != nil {
		parsed, err := uuid.Parse(strings.TrimSpace(*req.ColorID))
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid color id")
		}
		input.ColorID = &parsed
	}
	if req.CustomerType != nil {
		parsed, err := enums.ParseCustomerType(strings.TrimSpace(*req.CustomerType))
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer type")
		}
		input.CustomerType = &parsed
	}
	input.GSTIN = req.GSTIN
	if req.RTOType != nil {
		parsed, err := enums.ParseRTOType(strings.TrimSpace(*req.RTOType))
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rto type")
		}
		input.RTOType = &parsed
	}
	if req.Customer != nil {
		customer := req.Customer.toCustomer()
		input.Customer = &customer
	}
	if req.Payment != nil {
		payment, err := req.Payment.toInput()
		if err != nil {
			return input, err
		}
		input.Payment = &payment
	}
	if req.OptionalComponents != nil {
		components, err := parseUUIDList(*req.OptionalComponents, "optional component")
		if err != nil {
			return input, err
		}
		input.OptionalComponents = &components
	}
	if req.Accessories != nil {
		accessories, err := parseUUIDList(*req.Accessories, "accessory")
		if err != nil {
			return input, err
		}
		input.Accessories = &accessories
	}
	if req.Discount != nil {
		discount, err := req.Discount.toInput()
		if err != nil {
			return input, err
		}
		input.Discount = discount
	}

	return input, nil
}

func parseUUIDList(values []string, label string) ([]uuid.UUID, error) {
	result := make([]uuid.UUID, 0, len(values))
	for _, raw := range values {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		parsed, err := uuid.Parse(trimmed)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+label+" id")
		}
		result = append(result, parsed)
	}
	return result, nil
}
