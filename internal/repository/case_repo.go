package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"evidence-backend/internal/model"
	"evidence-backend/internal/scope"
)

type CaseRepository interface {
	Create(ctx context.Context, c *model.Case) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Case, error)
	GetVisible(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Case, error)
	List(ctx context.Context, actor *model.User, page, limit int) ([]model.Case, int64, error)
	Update(ctx context.Context, c *model.Case) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type caseRepository struct {
	db *gorm.DB
}

func NewCaseRepository(db *gorm.DB) CaseRepository {
	return &caseRepository{db: db}
}

func (r *caseRepository) Create(ctx context.Context, c *model.Case) error {
	return GetDB(ctx, r.db).Create(c).Error
}

func (r *caseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Case, error) {
	var c model.Case
	err := GetDB(ctx, r.db).Preload("Creator").Preload("Investigator").Preload("Department").
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *caseRepository) GetVisible(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Case, error) {
	var c model.Case
	err := GetDB(ctx, r.db).Scopes(scope.VisibleCases(actor)).
		Preload("Creator").Preload("Investigator").Preload("Department").
		First(&c, "cases.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *caseRepository) List(ctx context.Context, actor *model.User, page, limit int) ([]model.Case, int64, error) {
	var cases []model.Case
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Case{}).Scopes(scope.VisibleCases(actor)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := db.Scopes(scope.VisibleCases(actor)).
		Preload("Creator").Preload("Investigator").Preload("Department").
		Order("cases.created DESC").Offset(offset).Limit(limit).Find(&cases).Error
	if err != nil {
		return nil, 0, err
	}

	return cases, total, nil
}

func (r *caseRepository) Update(ctx context.Context, c *model.Case) error {
	return GetDB(ctx, r.db).Save(c).Error
}

func (r *caseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Case{}).Error
}
