package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"evidence-backend/internal/model"
	"evidence-backend/internal/repository"
)

type CreateDepartmentRequest struct {
	Name string `json:"name" binding:"required"`
	// Region is accepted but ignored: departments are always created in the
	// caller's own region.
	Region string `json:"region"`
}

type UpdateDepartmentRequest struct {
	Name *string `json:"name"`
}

// DepartmentService exposes the department registry. Every operation is
// REGION_HEAD-only and stays inside the caller's region.
type DepartmentService interface {
	Create(ctx context.Context, actor *model.User, req CreateDepartmentRequest) (*DepartmentResponse, error)
	Get(ctx context.Context, actor *model.User, id uuid.UUID) (*DepartmentResponse, error)
	List(ctx context.Context, actor *model.User, page, limit int) ([]DepartmentResponse, int64, error)
	Update(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateDepartmentRequest) (*DepartmentResponse, error)
	Delete(ctx context.Context, actor *model.User, id uuid.UUID) error
}

type departmentService struct {
	repo repository.DepartmentRepository
}

func NewDepartmentService(repo repository.DepartmentRepository) DepartmentService {
	return &departmentService{repo: repo}
}

func (s *departmentService) Create(ctx context.Context, actor *model.User, req CreateDepartmentRequest) (*DepartmentResponse, error) {
	if actor.Role != model.RoleRegionHead {
		return nil, ErrPermissionDenied
	}

	dept := &model.Department{
		Name:   req.Name,
		Region: actor.Region, // forced, client input ignored
	}
	if err := s.repo.Create(ctx, dept); err != nil {
		return nil, err
	}
	return mapToDepartmentResponse(dept), nil
}

func (s *departmentService) Get(ctx context.Context, actor *model.User, id uuid.UUID) (*DepartmentResponse, error) {
	if actor.Role != model.RoleRegionHead {
		return nil, ErrPermissionDenied
	}

	dept, err := s.repo.GetVisible(ctx, actor, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return mapToDepartmentResponse(dept), nil
}

func (s *departmentService) List(ctx context.Context, actor *model.User, page, limit int) ([]DepartmentResponse, int64, error) {
	if actor.Role != model.RoleRegionHead {
		return nil, 0, ErrPermissionDenied
	}

	depts, total, err := s.repo.List(ctx, actor, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]DepartmentResponse, 0, len(depts))
	for i := range depts {
		res = append(res, *mapToDepartmentResponse(&depts[i]))
	}
	return res, total, nil
}

func (s *departmentService) Update(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateDepartmentRequest) (*DepartmentResponse, error) {
	if actor.Role != model.RoleRegionHead {
		return nil, ErrPermissionDenied
	}

	dept, err := s.repo.GetVisible(ctx, actor, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		dept.Name = *req.Name
	}

	if err := s.repo.Update(ctx, dept); err != nil {
		return nil, err
	}
	return mapToDepartmentResponse(dept), nil
}

func (s *departmentService) Delete(ctx context.Context, actor *model.User, id uuid.UUID) error {
	if actor.Role != model.RoleRegionHead {
		return ErrPermissionDenied
	}

	dept, err := s.repo.GetVisible(ctx, actor, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.repo.Delete(ctx, dept.ID)
}
