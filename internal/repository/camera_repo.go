package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"evidence-backend/internal/model"
)

// CameraRepository is unscoped: camera access is gated by role alone, the
// registry itself is region-wide.
type CameraRepository interface {
	Create(ctx context.Context, cam *model.Camera) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Camera, error)
	List(ctx context.Context, page, limit int) ([]model.Camera, int64, error)
	Update(ctx context.Context, cam *model.Camera) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type cameraRepository struct {
	db *gorm.DB
}

func NewCameraRepository(db *gorm.DB) CameraRepository {
	return &cameraRepository{db: db}
}

func (r *cameraRepository) Create(ctx context.Context, cam *model.Camera) error {
	return GetDB(ctx, r.db).Create(cam).Error
}

func (r *cameraRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Camera, error) {
	var cam model.Camera
	if err := GetDB(ctx, r.db).First(&cam, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cam, nil
}

func (r *cameraRepository) List(ctx context.Context, page, limit int) ([]model.Camera, int64, error) {
	var cams []model.Camera
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Camera{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("device_id").Offset(offset).Limit(limit).Find(&cams).Error; err != nil {
		return nil, 0, err
	}

	return cams, total, nil
}

func (r *cameraRepository) Update(ctx context.Context, cam *model.Camera) error {
	return GetDB(ctx, r.db).Save(cam).Error
}

func (r *cameraRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Camera{}).Error
}
