package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sahyadri-motors/dealerdesk/internal/pricing"
	"github.com/sahyadri-motors/dealerdesk/pkg/db/models"
	"github.com/sahyadri-motors/dealerdesk/pkg/enums"
	pkgerrors "github.com/sahyadri-motors/dealerdesk/pkg/errors"
)

// Service assembles fully-resolved catalog value objects for the booking
// flow, so the pricing core never performs cross-collection joins itself.
type Service interface {
	ListModels(ctx context.Context) ([]models.VehicleModel, error)
	GetModel(ctx context.Context, id uuid.UUID) (*models.VehicleModel, error)
	ListHeaders(ctx context.Context) ([]models.PriceHeader, error)
	ListAccessories(ctx context.Context, modelID uuid.UUID) ([]models.Accessory, error)
	ListBrokers(ctx context.Context) ([]models.Broker, error)
	ListFinancers(ctx context.Context) ([]models.Financer, error)
	PriceSheet(ctx context.Context, modelID uuid.UUID, entityType enums.BookingType, entityID uuid.UUID) ([]pricing.HeaderValue, error)
}

type service struct {
	repo Repository
}

// NewService builds a catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListModels(ctx context.Context) ([]models.VehicleModel, error) {
	rows, err := s.repo.ListModels(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list models")
	}
	return rows, nil
}

func (s *service) GetModel(ctx context.Context, id uuid.UUID) (*models.VehicleModel, error) {
	row, err := s.repo.FindModel(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "model not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load model")
	}
	return row, nil
}

func (s *service) ListHeaders(ctx context.Context) ([]models.PriceHeader, error) {
	rows, err := s.repo.ListHeaders(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list price headers")
	}
	return rows, nil
}

func (s *service) ListAccessories(ctx context.Context, modelID uuid.UUID) ([]models.Accessory, error) {
	rows, err := s.repo.ListAccessoriesForModel(ctx, modelID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list accessories")
	}
	return rows, nil
}

func (s *service) ListBrokers(ctx context.Context) ([]models.Broker, error) {
	rows, err := s.repo.ListBrokers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list brokers")
	}
	return rows, nil
}

func (s *service) ListFinancers(ctx context.Context) ([]models.Financer, error) {
	rows, err := s.repo.ListFinancers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list financers")
	}
	return rows, nil
}

// PriceSheet loads the matrix cells priced for the entity and joins them to
// their header definitions. Missing cells simply do not appear.
func (s *service) PriceSheet(ctx context.Context, modelID uuid.UUID, entityType enums.BookingType, entityID uuid.UUID) ([]pricing.HeaderValue, error) {
	cells, err := s.repo.FindModelPrices(ctx, modelID, entityType, entityID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load price matrix")
	}
	sheet := make([]pricing.HeaderValue, 0, len(cells))
	for _, cell := range cells {
		if cell.Header == nil {
			continue
		}
		sheet = append(sheet, pricing.HeaderValue{Header: *cell.Header, Value: cell.Value})
	}
	return sheet, nil
}
