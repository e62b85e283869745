package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"evidence-backend/internal/model"
	"evidence-backend/internal/repository"
)

type CreateCaseRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateCaseRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

type CaseResponse struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	Active       bool                `json:"active"`
	Creator      *UserResponse       `json:"creator,omitempty"`
	CreatorName  string              `json:"creator_name"`
	Investigator *UserResponse       `json:"investigator,omitempty"`
	Department   *DepartmentResponse `json:"department,omitempty"`
	CreatedAt    string              `json:"created"`
	UpdatedAt    string              `json:"updated"`
}

// CaseService carries the case lifecycle: creation stamps the caller as
// creator and investigator, mutation is creator-only regardless of role.
type CaseService interface {
	Create(ctx context.Context, actor *model.User, req CreateCaseRequest) (*CaseResponse, error)
	Get(ctx context.Context, actor *model.User, id uuid.UUID) (*CaseResponse, error)
	List(ctx context.Context, actor *model.User, page, limit int) ([]CaseResponse, int64, error)
	Update(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateCaseRequest) (*CaseResponse, error)
	Delete(ctx context.Context, actor *model.User, id uuid.UUID) error
}

type caseService struct {
	repo      repository.CaseRepository
	audit     AuditService
	txManager repository.TransactionManager
}

func NewCaseService(repo repository.CaseRepository, audit AuditService, txManager repository.TransactionManager) CaseService {
	return &caseService{repo: repo, audit: audit, txManager: txManager}
}

func mapToCaseResponse(c *model.Case) *CaseResponse {
	res := &CaseResponse{
		ID:          c.ID.String(),
		Name:        c.Name,
		Description: c.Description,
		Active:      c.Active,
		Department:  mapToDepartmentResponse(c.Department),
		CreatedAt:   c.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   c.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if c.Creator != nil {
		res.Creator = mapToUserResponse(c.Creator)
		res.CreatorName = c.Creator.FullName()
	}
	if c.Investigator != nil {
		res.Investigator = mapToUserResponse(c.Investigator)
	}
	return res
}

func (s *caseService) Create(ctx context.Context, actor *model.User, req CreateCaseRequest) (*CaseResponse, error) {
	creatorID := actor.ID
	c := &model.Case{
		Name:        req.Name,
		Description: req.Description,
		// Creator, investigator and department come from the caller, never
		// from the request body.
		CreatorID:      &creatorID,
		InvestigatorID: actor.ID,
		DepartmentID:   actor.DepartmentID,
		Active:         true,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, c); err != nil {
			return fmt.Errorf("failed to create case: %w", err)
		}
		return s.audit.Record(txCtx, actor, model.AuditActionCreate, "cases", "Case",
			c.ID.String(), []string{"name", "description"}, req)
	})
	if err != nil {
		return nil, err
	}

	created, err := s.repo.GetByID(ctx, c.ID)
	if err != nil {
		return mapToCaseResponse(c), nil
	}
	return mapToCaseResponse(created), nil
}

func (s *caseService) Get(ctx context.Context, actor *model.User, id uuid.UUID) (*CaseResponse, error) {
	c, err := s.repo.GetVisible(ctx, actor, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return mapToCaseResponse(c), nil
}

func (s *caseService) List(ctx context.Context, actor *model.User, page, limit int) ([]CaseResponse, int64, error) {
	cases, total, err := s.repo.List(ctx, actor, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]CaseResponse, 0, len(cases))
	for i := range cases {
		res = append(res, *mapToCaseResponse(&cases[i]))
	}
	return res, total, nil
}

func (s *caseService) Update(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateCaseRequest) (*CaseResponse, error) {
	c, err := s.repo.GetVisible(ctx, actor, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// Only the creator may mutate a case, a head's wider visibility does not help
	if c.CreatorID == nil || *c.CreatorID != actor.ID {
		return nil, ErrPermissionDenied
	}

	var fields []string
	if req.Name != nil {
		c.Name = *req.Name
		fields = append(fields, "name")
	}
	if req.Description != nil {
		c.Description = *req.Description
		fields = append(fields, "description")
	}
	if req.Active != nil {
		c.Active = *req.Active
		fields = append(fields, "active")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, c); err != nil {
			return fmt.Errorf("failed to update case: %w", err)
		}
		return s.audit.Record(txCtx, actor, model.AuditActionUpdate, "cases", "Case",
			c.ID.String(), fields, req)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.GetByID(ctx, c.ID)
	if err != nil {
		return mapToCaseResponse(c), nil
	}
	return mapToCaseResponse(updated), nil
}

func (s *caseService) Delete(ctx context.Context, actor *model.User, id uuid.UUID) error {
	c, err := s.repo.GetVisible(ctx, actor, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if c.CreatorID == nil || *c.CreatorID != actor.ID {
		return ErrPermissionDenied
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, c.ID); err != nil {
			return fmt.Errorf("failed to delete case: %w", err)
		}
		return s.audit.Record(txCtx, actor, model.AuditActionDelete, "cases", "Case",
			c.ID.String(), nil, map[string]string{"name": c.Name})
	})
}
