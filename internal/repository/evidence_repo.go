package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"evidence-backend/internal/model"
	"evidence-backend/internal/scope"
)

// EvidenceRepository covers material evidence, evidence groups, and the
// append-only custody event log.
type EvidenceRepository interface {
	CreateEvidence(ctx context.Context, ev *model.MaterialEvidence) error
	GetEvidence(ctx context.Context, id uuid.UUID) (*model.MaterialEvidence, error)
	GetVisibleEvidence(ctx context.Context, actor *model.User, id uuid.UUID) (*model.MaterialEvidence, error)
	ListEvidence(ctx context.Context, actor *model.User, caseID *uuid.UUID, page, limit int) ([]model.MaterialEvidence, int64, error)
	UpdateEvidence(ctx context.Context, ev *model.MaterialEvidence) error
	DeleteEvidence(ctx context.Context, id uuid.UUID) error

	CreateGroup(ctx context.Context, g *model.EvidenceGroup) error
	GetVisibleGroup(ctx context.Context, actor *model.User, id uuid.UUID) (*model.EvidenceGroup, error)
	ListGroups(ctx context.Context, actor *model.User, caseID *uuid.UUID, page, limit int) ([]model.EvidenceGroup, int64, error)
	UpdateGroup(ctx context.Context, g *model.EvidenceGroup) error
	DeleteGroup(ctx context.Context, id uuid.UUID) error

	CreateEvent(ctx context.Context, e *model.MaterialEvidenceEvent) error
	GetVisibleEvent(ctx context.Context, actor *model.User, id uuid.UUID) (*model.MaterialEvidenceEvent, error)
	ListEvents(ctx context.Context, actor *model.User, page, limit int) ([]model.MaterialEvidenceEvent, int64, error)
}

type evidenceRepository struct {
	db *gorm.DB
}

func NewEvidenceRepository(db *gorm.DB) EvidenceRepository {
	return &evidenceRepository{db: db}
}

func (r *evidenceRepository) CreateEvidence(ctx context.Context, ev *model.MaterialEvidence) error {
	return GetDB(ctx, r.db).Create(ev).Error
}

func (r *evidenceRepository) GetEvidence(ctx context.Context, id uuid.UUID) (*model.MaterialEvidence, error) {
	var ev model.MaterialEvidence
	err := GetDB(ctx, r.db).Preload("Case").Preload("CreatedBy").Preload("Group").
		First(&ev, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *evidenceRepository) GetVisibleEvidence(ctx context.Context, actor *model.User, id uuid.UUID) (*model.MaterialEvidence, error) {
	var ev model.MaterialEvidence
	err := GetDB(ctx, r.db).Scopes(scope.VisibleEvidence(actor)).
		Preload("Case").Preload("CreatedBy").Preload("Group").
		First(&ev, "material_evidences.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *evidenceRepository) ListEvidence(ctx context.Context, actor *model.User, caseID *uuid.UUID, page, limit int) ([]model.MaterialEvidence, int64, error) {
	var items []model.MaterialEvidence
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.MaterialEvidence{}).Scopes(scope.VisibleEvidence(actor))
	if caseID != nil {
		query = query.Where("material_evidences.case_id = ?", *caseID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	fetch := db.Scopes(scope.VisibleEvidence(actor)).
		Preload("Case").Preload("CreatedBy").Preload("Group")
	if caseID != nil {
		fetch = fetch.Where("material_evidences.case_id = ?", *caseID)
	}

	offset := (page - 1) * limit
	err := fetch.Order("material_evidences.created DESC").Offset(offset).Limit(limit).Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *evidenceRepository) UpdateEvidence(ctx context.Context, ev *model.MaterialEvidence) error {
	return GetDB(ctx, r.db).Save(ev).Error
}

func (r *evidenceRepository) DeleteEvidence(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.MaterialEvidence{}).Error
}

func (r *evidenceRepository) CreateGroup(ctx context.Context, g *model.EvidenceGroup) error {
	return GetDB(ctx, r.db).Create(g).Error
}

func (r *evidenceRepository) GetVisibleGroup(ctx context.Context, actor *model.User, id uuid.UUID) (*model.EvidenceGroup, error) {
	var g model.EvidenceGroup
	err := GetDB(ctx, r.db).Scopes(scope.VisibleEvidenceGroups(actor)).
		Preload("Case").Preload("CreatedBy").Preload("MaterialEvidences").
		First(&g, "evidence_groups.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *evidenceRepository) ListGroups(ctx context.Context, actor *model.User, caseID *uuid.UUID, page, limit int) ([]model.EvidenceGroup, int64, error) {
	var groups []model.EvidenceGroup
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.EvidenceGroup{}).Scopes(scope.VisibleEvidenceGroups(actor))
	if caseID != nil {
		query = query.Where("evidence_groups.case_id = ?", *caseID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	fetch := db.Scopes(scope.VisibleEvidenceGroups(actor)).Preload("Case").Preload("CreatedBy").Preload("MaterialEvidences")
	if caseID != nil {
		fetch = fetch.Where("evidence_groups.case_id = ?", *caseID)
	}

	offset := (page - 1) * limit
	err := fetch.Order("evidence_groups.created DESC").Offset(offset).Limit(limit).Find(&groups).Error
	if err != nil {
		return nil, 0, err
	}

	return groups, total, nil
}

func (r *evidenceRepository) UpdateGroup(ctx context.Context, g *model.EvidenceGroup) error {
	return GetDB(ctx, r.db).Save(g).Error
}

func (r *evidenceRepository) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.EvidenceGroup{}).Error
}

func (r *evidenceRepository) CreateEvent(ctx context.Context, e *model.MaterialEvidenceEvent) error {
	return GetDB(ctx, r.db).Create(e).Error
}

func (r *evidenceRepository) GetVisibleEvent(ctx context.Context, actor *model.User, id uuid.UUID) (*model.MaterialEvidenceEvent, error) {
	var e model.MaterialEvidenceEvent
	err := GetDB(ctx, r.db).Scopes(scope.VisibleEvidenceEvents(actor)).
		Preload("MaterialEvidence").Preload("User").
		First(&e, "material_evidence_events.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *evidenceRepository) ListEvents(ctx context.Context, actor *model.User, page, limit int) ([]model.MaterialEvidenceEvent, int64, error) {
	var events []model.MaterialEvidenceEvent
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.MaterialEvidenceEvent{}).Scopes(scope.VisibleEvidenceEvents(actor)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := db.Scopes(scope.VisibleEvidenceEvents(actor)).
		Preload("MaterialEvidence").Preload("User").
		Order("material_evidence_events.created DESC").Offset(offset).Limit(limit).Find(&events).Error
	if err != nil {
		return nil, 0, err
	}

	return events, total, nil
}
