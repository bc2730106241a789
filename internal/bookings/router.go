package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sahyadri-motors/dealerdesk/internal/catalog"
	"github.com/sahyadri-motors/dealerdesk/internal/users"
	"github.com/sahyadri-motors/dealerdesk/pkg/db/models"
	"github.com/sahyadri-motors/dealerdesk/pkg/enums"
	pkgerrors "github.com/sahyadri-motors/dealerdesk/pkg/errors"
)

// Channel is the resolved sales channel a booking is attributed to. Branch
// fields and subdealer fields are mutually exclusive by construction.
type Channel struct {
	Type            enums.BookingType
	BranchID        *uuid.UUID
	SubdealerID     *uuid.UUID
	SalesExecutive  *uuid.UUID
	SubdealerUserID *uuid.UUID
}

// RouteInput carries the raw channel fields from the request.
type RouteInput struct {
	BranchID         *uuid.UUID
	SubdealerID      *uuid.UUID
	SalesExecutiveID *uuid.UUID
	HasExchange      bool
	RequestedBy      *models.User
}

// Router enforces the branch-XOR-subdealer rule and resolves the responsible
// user for the channel.
type Router struct {
	catalog catalog.Repository
	users   users.Repository
}

// NewRouter builds the entity router.
func NewRouter(catalogRepo catalog.Repository, usersRepo users.Repository) (*Router, error) {
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &Router{catalog: catalogRepo, users: usersRepo}, nil
}

// Resolve validates the channel and returns the attribution.
func (r *Router) Resolve(ctx context.Context, input RouteInput) (Channel, error) {
	hasBranch := input.BranchID != nil
	hasSubdealer := input.SubdealerID != nil
	if hasBranch == hasSubdealer {
		return Channel{}, pkgerrors.New(pkgerrors.CodeValidation, "exactly one of branch or subdealer must be supplied")
	}

	if hasSubdealer {
		return r.resolveSubdealer(ctx, input)
	}
	return r.resolveBranch(ctx, input)
}

func (r *Router) resolveSubdealer(ctx context.Context, input RouteInput) (Channel, error) {
	if input.HasExchange {
		return Channel{}, pkgerrors.New(pkgerrors.CodeValidation, "exchange is not allowed on subdealer bookings")
	}

	subdealer, err := r.catalog.FindSubdealer(ctx, *input.SubdealerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Channel{}, pkgerrors.New(pkgerrors.CodeNotFound, "subdealer not found")
		}
		return Channel{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subdealer")
	}
	if !subdealer.IsActive {
		return Channel{}, pkgerrors.New(pkgerrors.CodeValidation, "subdealer is inactive")
	}

	user, err := r.users.FindActiveSubdealerUser(ctx, subdealer.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Channel{}, pkgerrors.New(pkgerrors.CodeValidation, "no active subdealer user for subdealer")
		}
		return Channel{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve subdealer user")
	}

	return Channel{
		Type:            enums.BookingTypeSubdealer,
		SubdealerID:     &subdealer.ID,
		SubdealerUserID: &user.ID,
	}, nil
}

func (r *Router) resolveBranch(ctx context.Context, input RouteInput) (Channel, error) {
	branch, err := r.catalog.FindBranch(ctx, *input.BranchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Channel{}, pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
		}
		return Channel{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load branch")
	}
	if !branch.IsActive {
		return Channel{}, pkgerrors.New(pkgerrors.CodeValidation, "branch is inactive")
	}

	executive := input.RequestedBy
	if input.SalesExecutiveID != nil && (executive == nil || *input.SalesExecutiveID != executive.ID) {
		executive, err = r.users.FindByID(ctx, *input.SalesExecutiveID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Channel{}, pkgerrors.New(pkgerrors.CodeNotFound, "sales executive not found")
			}
			return Channel{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sales executive")
		}
	}
	if executive == nil {
		return Channel{}, pkgerrors.New(pkgerrors.CodeValidation, "sales executive is required for branch bookings")
	}
	if !executive.IsActive {
		return Channel{}, pkgerrors.New(pkgerrors.CodeValidation, "sales executive is inactive")
	}
	if executive.BranchID == nil || *executive.BranchID != branch.ID {
		return Channel{}, pkgerrors.New(pkgerrors.CodeValidation, "sales executive does not belong to branch")
	}

	return Channel{
		Type:           enums.BookingTypeBranch,
		BranchID:       &branch.ID,
		SalesExecutive: &executive.ID,
	}, nil
}
