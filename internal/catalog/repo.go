package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sahyadri-motors/dealerdesk/pkg/db/models"
	"github.com/sahyadri-motors/dealerdesk/pkg/enums"
)

// Repository exposes the catalog read side: models, headers, matrix cells,
// accessories, brokers and financers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListModels(ctx context.Context) ([]models.VehicleModel, error)
	FindModel(ctx context.Context, id uuid.UUID) (*models.VehicleModel, error)
	FindModelColor(ctx context.Context, modelID, colorID uuid.UUID) (*models.ModelColor, error)
	ListHeaders(ctx context.Context) ([]models.PriceHeader, error)
	FindModelPrices(ctx context.Context, modelID uuid.UUID, entityType enums.BookingType, entityID uuid.UUID) ([]models.ModelPrice, error)
	ListAccessoriesForModel(ctx context.Context, modelID uuid.UUID) ([]models.Accessory, error)
	FindAccessoriesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Accessory, error)
	ListBrokers(ctx context.Context) ([]models.Broker, error)
	FindBroker(ctx context.Context, id uuid.UUID) (*models.Broker, error)
	ListFinancers(ctx context.Context) ([]models.Financer, error)
	FindFinancer(ctx context.Context, id uuid.UUID) (*models.Financer, error)
	FindBranch(ctx context.Context, id uuid.UUID) (*models.Branch, error)
	FindSubdealer(ctx context.Context, id uuid.UUID) (*models.Subdealer, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListModels(ctx context.Context) ([]models.VehicleModel, error) {
	var rows []models.VehicleModel
	err := r.db.WithContext(ctx).
		Preload("Colors").
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindModel(ctx context.Context, id uuid.UUID) (*models.VehicleModel, error) {
	var row models.VehicleModel
	err := r.db.WithContext(ctx).
		Preload("Colors").
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindModelColor(ctx context.Context, modelID, colorID uuid.UUID) (*models.ModelColor, error) {
	var row models.ModelColor
	err := r.db.WithContext(ctx).
		Where("id = ? AND model_id = ? AND is_active = ?", colorID, modelID, true).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) ListHeaders(ctx context.Context) ([]models.PriceHeader, error) {
	var rows []models.PriceHeader
	err := r.db.WithContext(ctx).
		Order("priority ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindModelPrices(ctx context.Context, modelID uuid.UUID, entityType enums.BookingType, entityID uuid.UUID) ([]models.ModelPrice, error) {
	var rows []models.ModelPrice
	err := r.db.WithContext(ctx).
		Preload("Header").
		Where("model_id = ? AND entity_type = ? AND entity_id = ?", modelID, entityType, entityID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListAccessoriesForModel(ctx context.Context, modelID uuid.UUID) ([]models.Accessory, error) {
	var rows []models.Accessory
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.AccessoryStatusActive).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	compatible := rows[:0]
	for _, row := range rows {
		if row.AppliesTo(modelID) {
			compatible = append(compatible, row)
		}
	}
	return compatible, nil
}

func (r *repository) FindAccessoriesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Accessory, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Accessory
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListBrokers(ctx context.Context) ([]models.Broker, error) {
	var rows []models.Broker
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindBroker(ctx context.Context, id uuid.UUID) (*models.Broker, error) {
	var row models.Broker
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) ListFinancers(ctx context.Context) ([]models.Financer, error) {
	var rows []models.Financer
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindFinancer(ctx context.Context, id uuid.UUID) (*models.Financer, error) {
	var row models.Financer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindBranch(ctx context.Context, id uuid.UUID) (*models.Branch, error) {
	var row models.Branch
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindSubdealer(ctx context.Context, id uuid.UUID) (*models.Subdealer, error) {
	var row models.Subdealer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
