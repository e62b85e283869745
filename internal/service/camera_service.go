package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"evidence-backend/internal/model"
	"evidence-backend/internal/repository"
)

type CreateCameraRequest struct {
	DeviceID int    `json:"device_id" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Type     string `json:"type"`
}

type UpdateCameraRequest struct {
	Name   *string `json:"name"`
	Type   *string `json:"type"`
	Active *bool   `json:"active"`
}

type CameraResponse struct {
	ID        string `json:"id"`
	DeviceID  int    `json:"device_id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created"`
	UpdatedAt string `json:"updated"`
}

// CameraService manages the camera inventory; REGION_HEAD only
type CameraService interface {
	Create(ctx context.Context, actor *model.User, req CreateCameraRequest) (*CameraResponse, error)
	Get(ctx context.Context, actor *model.User, id uuid.UUID) (*CameraResponse, error)
	List(ctx context.Context, actor *model.User, page, limit int) ([]CameraResponse, int64, error)
	Update(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateCameraRequest) (*CameraResponse, error)
	Delete(ctx context.Context, actor *model.User, id uuid.UUID) error
}

type cameraService struct {
	repo repository.CameraRepository
}

func NewCameraService(repo repository.CameraRepository) CameraService {
	return &cameraService{repo: repo}
}

func mapToCameraResponse(cam *model.Camera) *CameraResponse {
	return &CameraResponse{
		ID:        cam.ID.String(),
		DeviceID:  cam.DeviceID,
		Name:      cam.Name,
		Type:      cam.Type,
		Active:    cam.Active,
		CreatedAt: cam.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: cam.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (s *cameraService) Create(ctx context.Context, actor *model.User, req CreateCameraRequest) (*CameraResponse, error) {
	if actor.Role != model.RoleRegionHead {
		return nil, ErrPermissionDenied
	}

	camType := req.Type
	if camType == "" {
		camType = model.CameraDefault
	}
	if !model.ValidCameraType(camType) {
		return nil, invalidf("invalid camera type %q", req.Type)
	}

	cam := &model.Camera{
		DeviceID: req.DeviceID,
		Name:     req.Name,
		Type:     camType,
		Active:   true,
	}
	if err := s.repo.Create(ctx, cam); err != nil {
		return nil, err
	}
	return mapToCameraResponse(cam), nil
}

func (s *cameraService) Get(ctx context.Context, actor *model.User, id uuid.UUID) (*CameraResponse, error) {
	if actor.Role != model.RoleRegionHead {
		return nil, ErrPermissionDenied
	}

	cam, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return mapToCameraResponse(cam), nil
}

func (s *cameraService) List(ctx context.Context, actor *model.User, page, limit int) ([]CameraResponse, int64, error) {
	if actor.Role != model.RoleRegionHead {
		return nil, 0, ErrPermissionDenied
	}

	cams, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]CameraResponse, 0, len(cams))
	for i := range cams {
		res = append(res, *mapToCameraResponse(&cams[i]))
	}
	return res, total, nil
}

func (s *cameraService) Update(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateCameraRequest) (*CameraResponse, error) {
	if actor.Role != model.RoleRegionHead {
		return nil, ErrPermissionDenied
	}

	cam, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		cam.Name = *req.Name
	}
	if req.Type != nil {
		if !model.ValidCameraType(*req.Type) {
			return nil, invalidf("invalid camera type %q", *req.Type)
		}
		cam.Type = *req.Type
	}
	if req.Active != nil {
		cam.Active = *req.Active
	}

	if err := s.repo.Update(ctx, cam); err != nil {
		return nil, err
	}
	return mapToCameraResponse(cam), nil
}

func (s *cameraService) Delete(ctx context.Context, actor *model.User, id uuid.UUID) error {
	if actor.Role != model.RoleRegionHead {
		return ErrPermissionDenied
	}

	cam, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.repo.Delete(ctx, cam.ID)
}
