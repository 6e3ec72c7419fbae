package repository

import (
	"context"

	"dealership/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ImageRepository interface {
	CreateBatch(ctx context.Context, images []model.VehicleImage) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.VehicleImage, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByVehicle(ctx context.Context, vehicleID uuid.UUID) (int64, error)
	HasPrincipal(ctx context.Context, vehicleID uuid.UUID) (bool, error)
	// ClearPrincipal unsets the principal flag on every image of the vehicle.
	ClearPrincipal(ctx context.Context, vehicleID uuid.UUID) error
	SetPrincipal(ctx context.Context, id uuid.UUID) error
}

type imageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) CreateBatch(ctx context.Context, images []model.VehicleImage) error {
	if len(images) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&images).Error
}

func (r *imageRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.VehicleImage, error) {
	var image model.VehicleImage
	if err := GetDB(ctx, r.db).First(&image, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *imageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.VehicleImage{}).Error
}

func (r *imageRepository) CountByVehicle(ctx context.Context, vehicleID uuid.UUID) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.VehicleImage{}).Where("vehicle_id = ?", vehicleID).Count(&total).Error
	return total, err
}

func (r *imageRepository) HasPrincipal(ctx context.Context, vehicleID uuid.UUID) (bool, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.VehicleImage{}).
		Where("vehicle_id = ? AND principal = true", vehicleID).Count(&total).Error
	return total > 0, err
}

func (r *imageRepository) ClearPrincipal(ctx context.Context, vehicleID uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.VehicleImage{}).
		Where("vehicle_id = ?", vehicleID).Update("principal", false).Error
}

func (r *imageRepository) SetPrincipal(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.VehicleImage{}).
		Where("id = ?", id).Update("principal", true).Error
}
