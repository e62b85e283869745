package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"evidence-backend/internal/model"
	"evidence-backend/internal/scope"
)

type AuditRepository interface {
	Log(ctx context.Context, entry *model.AuditEntry) error
	GetVisible(ctx context.Context, actor *model.User, id uuid.UUID) (*model.AuditEntry, error)
	List(ctx context.Context, actor *model.User, page, limit int) ([]model.AuditEntry, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Log(ctx context.Context, entry *model.AuditEntry) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *auditRepository) GetVisible(ctx context.Context, actor *model.User, id uuid.UUID) (*model.AuditEntry, error) {
	var entry model.AuditEntry
	err := GetDB(ctx, r.db).Scopes(scope.VisibleAuditEntries(actor)).Preload("User").
		First(&entry, "audit_entries.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *auditRepository) List(ctx context.Context, actor *model.User, page, limit int) ([]model.AuditEntry, int64, error) {
	var entries []model.AuditEntry
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.AuditEntry{}).Scopes(scope.VisibleAuditEntries(actor)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := db.Scopes(scope.VisibleAuditEntries(actor)).Preload("User").
		Order("audit_entries.created DESC").Offset(offset).Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
