package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"evidence-backend/internal/model"
	"evidence-backend/internal/repository"
)

// Notifier publishes custody-event notifications to connected clients
type Notifier interface {
	Notify(message []byte)
}

type CreateEvidenceRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	CaseID      string  `json:"case_id" binding:"required"`
	GroupID     *string `json:"group_id"`
	Status      string  `json:"status"`
}

type UpdateEvidenceRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	GroupID     *string `json:"group_id"`
	Active      *bool   `json:"active"`
}

type CreateGroupRequest struct {
	Name   string `json:"name" binding:"required"`
	CaseID string `json:"case_id" binding:"required"`
}

type UpdateGroupRequest struct {
	Name   *string `json:"name"`
	Active *bool   `json:"active"`
}

type CreateEventRequest struct {
	MaterialEvidenceID string `json:"material_evidence_id" binding:"required"`
	Action             string `json:"action" binding:"required"`
}

type EvidenceResponse struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Case        *CaseResponse `json:"case,omitempty"`
	CreatedBy   *UserResponse `json:"created_by,omitempty"`
	Status      string        `json:"status"`
	Barcode     string        `json:"barcode"`
	GroupID     *string       `json:"group_id"`
	GroupName   string        `json:"group_name,omitempty"`
	Active      bool          `json:"active"`
	CreatedAt   string        `json:"created"`
	UpdatedAt   string        `json:"updated"`
}

type GroupResponse struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	CaseID            string             `json:"case_id"`
	CreatedBy         *UserResponse      `json:"created_by,omitempty"`
	MaterialEvidences []EvidenceResponse `json:"material_evidences"`
	Active            bool               `json:"active"`
	CreatedAt         string             `json:"created"`
	UpdatedAt         string             `json:"updated"`
}

type EventResponse struct {
	ID               string            `json:"id"`
	User             *UserResponse     `json:"user,omitempty"`
	MaterialEvidence *EvidenceResponse `json:"material_evidence,omitempty"`
	Action           string            `json:"action"`
	CreatedAt        string            `json:"created"`
}

// EvidenceService covers material evidence items, their groups, and the
// custody event log. Recording a custody event never changes the evidence
// row's status; status changes go through Update.
type EvidenceService interface {
	CreateEvidence(ctx context.Context, actor *model.User, req CreateEvidenceRequest) (*EvidenceResponse, error)
	GetEvidence(ctx context.Context, actor *model.User, id uuid.UUID) (*EvidenceResponse, error)
	ListEvidence(ctx context.Context, actor *model.User, caseID *uuid.UUID, page, limit int) ([]EvidenceResponse, int64, error)
	UpdateEvidence(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateEvidenceRequest) (*EvidenceResponse, error)
	DeleteEvidence(ctx context.Context, actor *model.User, id uuid.UUID) error

	CreateGroup(ctx context.Context, actor *model.User, req CreateGroupRequest) (*GroupResponse, error)
	GetGroup(ctx context.Context, actor *model.User, id uuid.UUID) (*GroupResponse, error)
	ListGroups(ctx context.Context, actor *model.User, caseID *uuid.UUID, page, limit int) ([]GroupResponse, int64, error)
	UpdateGroup(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateGroupRequest) (*GroupResponse, error)
	DeleteGroup(ctx context.Context, actor *model.User, id uuid.UUID) error

	CreateEvent(ctx context.Context, actor *model.User, req CreateEventRequest) (*EventResponse, error)
	GetEvent(ctx context.Context, actor *model.User, id uuid.UUID) (*EventResponse, error)
	ListEvents(ctx context.Context, actor *model.User, page, limit int) ([]EventResponse, int64, error)
}

type evidenceService struct {
	repo      repository.EvidenceRepository
	caseRepo  repository.CaseRepository
	audit     AuditService
	txManager repository.TransactionManager
	notifier  Notifier
}

func NewEvidenceService(
	repo repository.EvidenceRepository,
	caseRepo repository.CaseRepository,
	audit AuditService,
	txManager repository.TransactionManager,
	notifier Notifier,
) EvidenceService {
	return &evidenceService{
		repo:      repo,
		caseRepo:  caseRepo,
		audit:     audit,
		txManager: txManager,
		notifier:  notifier,
	}
}

func mapToEvidenceResponse(ev *model.MaterialEvidence) *EvidenceResponse {
	res := &EvidenceResponse{
		ID:          ev.ID.String(),
		Name:        ev.Name,
		Description: ev.Description,
		Status:      ev.Status,
		Barcode:     ev.Barcode,
		Active:      ev.Active,
		CreatedAt:   ev.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   ev.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if ev.Case != nil {
		res.Case = mapToCaseResponse(ev.Case)
	}
	if ev.CreatedBy != nil {
		res.CreatedBy = mapToUserResponse(ev.CreatedBy)
	}
	if ev.GroupID != nil {
		id := ev.GroupID.String()
		res.GroupID = &id
	}
	if ev.Group != nil {
		res.GroupName = ev.Group.Name
	}
	return res
}

func mapToGroupResponse(g *model.EvidenceGroup) *GroupResponse {
	res := &GroupResponse{
		ID:                g.ID.String(),
		Name:              g.Name,
		CaseID:            g.CaseID.String(),
		Active:            g.Active,
		MaterialEvidences: make([]EvidenceResponse, 0, len(g.MaterialEvidences)),
		CreatedAt:         g.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:         g.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if g.CreatedBy != nil {
		res.CreatedBy = mapToUserResponse(g.CreatedBy)
	}
	for i := range g.MaterialEvidences {
		res.MaterialEvidences = append(res.MaterialEvidences, *mapToEvidenceResponse(&g.MaterialEvidences[i]))
	}
	return res
}

func mapToEventResponse(e *model.MaterialEvidenceEvent) *EventResponse {
	res := &EventResponse{
		ID:        e.ID.String(),
		Action:    e.Action,
		CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if e.User != nil {
		res.User = mapToUserResponse(e.User)
	}
	if e.MaterialEvidence != nil {
		res.MaterialEvidence = mapToEvidenceResponse(e.MaterialEvidence)
	}
	return res
}

// generateBarcode draws a random 128-bit identifier. The unique index on the
// barcode column is the collision backstop.
func generateBarcode() string {
	return uuid.NewString()
}

// requireCaseCreator loads a case and checks the actor created it
func (s *evidenceService) requireCaseCreator(ctx context.Context, actor *model.User, caseID string) (*model.Case, error) {
	id, err := uuid.Parse(caseID)
	if err != nil {
		return nil, invalidf("invalid case id %q", caseID)
	}
	c, err := s.caseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidf("case %s does not exist", caseID)
		}
		return nil, err
	}
	if c.CreatorID == nil || *c.CreatorID != actor.ID {
		return nil, ErrPermissionDenied
	}
	return c, nil
}

func (s *evidenceService) CreateEvidence(ctx context.Context, actor *model.User, req CreateEvidenceRequest) (*EvidenceResponse, error) {
	c, err := s.requireCaseCreator(ctx, actor, req.CaseID)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = model.StatusInStorage
	}
	if !model.ValidEvidenceStatus(status) {
		return nil, invalidf("invalid status %q", req.Status)
	}

	groupID, err := parseOptionalID(req.GroupID)
	if err != nil {
		return nil, err
	}

	createdByID := actor.ID
	caseID := c.ID
	ev := &model.MaterialEvidence{
		Name:        req.Name,
		Description: req.Description,
		CaseID:      &caseID,
		GroupID:     groupID,
		CreatedByID: &createdByID,
		Status:      status,
		// barcode is always server-assigned, client input never reaches it
		Barcode:     generateBarcode(),
		Active:      true,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.CreateEvidence(txCtx, ev); err != nil {
			return fmt.Errorf("failed to create evidence: %w", err)
		}
		return s.audit.Record(txCtx, actor, model.AuditActionCreate, "material_evidences", "MaterialEvidence",
			ev.ID.String(), []string{"name", "description", "status", "barcode"}, req)
	})
	if err != nil {
		return nil, err
	}

	created, err := s.repo.GetEvidence(ctx, ev.ID)
	if err != nil {
		return mapToEvidenceResponse(ev), nil
	}
	return mapToEvidenceResponse(created), nil
}

func (s *evidenceService) GetEvidence(ctx context.Context, actor *model.User, id uuid.UUID) (*EvidenceResponse, error) {
	ev, err := s.repo.GetVisibleEvidence(ctx, actor, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return mapToEvidenceResponse(ev), nil
}

func (s *evidenceService) ListEvidence(ctx context.Context, actor *model.User, caseID *uuid.UUID, page, limit int) ([]EvidenceResponse, int64, error) {
	items, total, err := s.repo.ListEvidence(ctx, actor, caseID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]EvidenceResponse, 0, len(items))
	for i := range items {
		res = append(res, *mapToEvidenceResponse(&items[i]))
	}
	return res, total, nil
}

func (s *evidenceService) UpdateEvidence(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateEvidenceRequest) (*EvidenceResponse, error) {
	ev, err := s.repo.GetVisibleEvidence(ctx, actor, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var fields []string
	if req.Name != nil {
		ev.Name = *req.Name
		fields = append(fields, "name")
	}
	if req.Description != nil {
		ev.Description = *req.Description
		fields = append(fields, "description")
	}
	if req.Status != nil {
		if !model.ValidEvidenceStatus(*req.Status) {
			return nil, invalidf("invalid status %q", *req.Status)
		}
		ev.Status = *req.Status
		fields = append(fields, "status")
	}
	if req.GroupID != nil {
		groupID, err := parseOptionalID(req.GroupID)
		if err != nil {
			return nil, err
		}
		ev.GroupID = groupID
		fields = append(fields, "group_id")
	}
	if req.Active != nil {
		ev.Active = *req.Active
		fields = append(fields, "active")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.UpdateEvidence(txCtx, ev); err != nil {
			return fmt.Errorf("failed to update evidence: %w", err)
		}
		return s.audit.Record(txCtx, actor, model.AuditActionUpdate, "material_evidences", "MaterialEvidence",
			ev.ID.String(), fields, req)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.GetEvidence(ctx, ev.ID)
	if err != nil {
		return mapToEvidenceResponse(ev), nil
	}
	return mapToEvidenceResponse(updated), nil
}

func (s *evidenceService) DeleteEvidence(ctx context.Context, actor *model.User, id uuid.UUID) error {
	ev, err := s.repo.GetVisibleEvidence(ctx, actor, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.DeleteEvidence(txCtx, ev.ID); err != nil {
			return fmt.Errorf("failed to delete evidence: %w", err)
		}
		return s.audit.Record(txCtx, actor, model.AuditActionDelete, "material_evidences", "MaterialEvidence",
			ev.ID.String(), nil, map[string]string{"name": ev.Name, "barcode": ev.Barcode})
	})
}

func (s *evidenceService) CreateGroup(ctx context.Context, actor *model.User, req CreateGroupRequest) (*GroupResponse, error) {
	c, err := s.requireCaseCreator(ctx, actor, req.CaseID)
	if err != nil {
		return nil, err
	}

	createdByID := actor.ID
	g := &model.EvidenceGroup{
		Name:        req.Name,
		CaseID:      c.ID,
		CreatedByID: &createdByID,
		Active:      true,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.CreateGroup(txCtx, g); err != nil {
			return fmt.Errorf("failed to create evidence group: %w", err)
		}
		return s.audit.Record(txCtx, actor, model.AuditActionCreate, "evidence_groups", "EvidenceGroup",
			g.ID.String(), []string{"name", "case_id"}, req)
	})
	if err != nil {
		return nil, err
	}

	return mapToGroupResponse(g), nil
}

func (s *evidenceService) GetGroup(ctx context.Context, actor *model.User, id uuid.UUID) (*GroupResponse, error) {
	g, err := s.repo.GetVisibleGroup(ctx, actor, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return mapToGroupResponse(g), nil
}

func (s *evidenceService) ListGroups(ctx context.Context, actor *model.User, caseID *uuid.UUID, page, limit int) ([]GroupResponse, int64, error) {
	groups, total, err := s.repo.ListGroups(ctx, actor, caseID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]GroupResponse, 0, len(groups))
	for i := range groups {
		res = append(res, *mapToGroupResponse(&groups[i]))
	}
	return res, total, nil
}

func (s *evidenceService) UpdateGroup(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateGroupRequest) (*GroupResponse, error) {
	g, err := s.repo.GetVisibleGroup(ctx, actor, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var fields []string
	if req.Name != nil {
		g.Name = *req.Name
		fields = append(fields, "name")
	}
	if req.Active != nil {
		g.Active = *req.Active
		fields = append(fields, "active")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.UpdateGroup(txCtx, g); err != nil {
			return fmt.Errorf("failed to update evidence group: %w", err)
		}
		return s.audit.Record(txCtx, actor, model.AuditActionUpdate, "evidence_groups", "EvidenceGroup",
			g.ID.String(), fields, req)
	})
	if err != nil {
		return nil, err
	}

	return mapToGroupResponse(g), nil
}

func (s *evidenceService) DeleteGroup(ctx context.Context, actor *model.User, id uuid.UUID) error {
	g, err := s.repo.GetVisibleGroup(ctx, actor, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.DeleteGroup(txCtx, g.ID); err != nil {
			return fmt.Errorf("failed to delete evidence group: %w", err)
		}
		return s.audit.Record(txCtx, actor, model.AuditActionDelete, "evidence_groups", "EvidenceGroup",
			g.ID.String(), nil, map[string]string{"name": g.Name})
	})
}

func (s *evidenceService) CreateEvent(ctx context.Context, actor *model.User, req CreateEventRequest) (*EventResponse, error) {
	if !model.ValidEvidenceStatus(req.Action) {
		return nil, invalidf("invalid action %q", req.Action)
	}

	evID, err := uuid.Parse(req.MaterialEvidenceID)
	if err != nil {
		return nil, invalidf("invalid material evidence id %q", req.MaterialEvidenceID)
	}

	ev, err := s.repo.GetEvidence(ctx, evID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidf("material evidence %s does not exist", req.MaterialEvidenceID)
		}
		return nil, err
	}

	event := &model.MaterialEvidenceEvent{
		UserID:             actor.ID, // forced, append-only
		MaterialEvidenceID: ev.ID,
		Action:             req.Action,
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		msg, err := json.Marshal(map[string]interface{}{
			"type":                 "custody_event",
			"material_evidence_id": ev.ID.String(),
			"barcode":              ev.Barcode,
			"action":               event.Action,
			"user_id":              actor.ID.String(),
			"created":              event.CreatedAt,
		})
		if err == nil {
			s.notifier.Notify(msg)
		}
	}

	event.User = actor
	event.MaterialEvidence = ev
	return mapToEventResponse(event), nil
}

func (s *evidenceService) GetEvent(ctx context.Context, actor *model.User, id uuid.UUID) (*EventResponse, error) {
	e, err := s.repo.GetVisibleEvent(ctx, actor, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return mapToEventResponse(e), nil
}

func (s *evidenceService) ListEvents(ctx context.Context, actor *model.User, page, limit int) ([]EventResponse, int64, error) {
	events, total, err := s.repo.ListEvents(ctx, actor, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]EventResponse, 0, len(events))
	for i := range events {
		res = append(res, *mapToEventResponse(&events[i]))
	}
	return res, total, nil
}
