package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"evidence-backend/internal/model"
	"evidence-backend/internal/repository"
)

type AuditEntryResponse struct {
	ID        string        `json:"id"`
	ObjectID  string        `json:"object_id"`
	TableName string        `json:"table_name"`
	ClassName string        `json:"class_name"`
	Action    string        `json:"action"`
	Fields    string        `json:"fields"`
	Data      string        `json:"data"`
	User      *UserResponse `json:"user,omitempty"`
	CreatedAt string        `json:"created"`
}

// AuditService appends change records and serves the scoped audit trail.
// Append happens inside the caller's transaction so a write and its audit
// entry land together.
type AuditService interface {
	Record(ctx context.Context, actor *model.User, action, tableName, className, objectID string, fields []string, data interface{}) error
	Get(ctx context.Context, actor *model.User, id uuid.UUID) (*AuditEntryResponse, error)
	List(ctx context.Context, actor *model.User, page, limit int) ([]AuditEntryResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func mapToAuditResponse(e *model.AuditEntry) *AuditEntryResponse {
	res := &AuditEntryResponse{
		ID:        e.ID.String(),
		ObjectID:  e.ObjectID,
		TableName: e.TableName,
		ClassName: e.ClassName,
		Action:    e.Action,
		Fields:    e.Fields,
		Data:      e.Data,
		CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if e.User != nil {
		res.User = mapToUserResponse(e.User)
	}
	return res
}

func (s *auditService) Record(ctx context.Context, actor *model.User, action, tableName, className, objectID string, fields []string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	var userID *uuid.UUID
	if actor != nil {
		id := actor.ID
		userID = &id
	}

	entry := &model.AuditEntry{
		ObjectID:  objectID,
		TableName: tableName,
		ClassName: className,
		Action:    action,
		Fields:    strings.Join(fields, ","),
		Data:      string(payload),
		UserID:    userID,
	}
	return s.repo.Log(ctx, entry)
}

func (s *auditService) Get(ctx context.Context, actor *model.User, id uuid.UUID) (*AuditEntryResponse, error) {
	entry, err := s.repo.GetVisible(ctx, actor, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return mapToAuditResponse(entry), nil
}

func (s *auditService) List(ctx context.Context, actor *model.User, page, limit int) ([]AuditEntryResponse, int64, error) {
	entries, total, err := s.repo.List(ctx, actor, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]AuditEntryResponse, 0, len(entries))
	for i := range entries {
		res = append(res, *mapToAuditResponse(&entries[i]))
	}
	return res, total, nil
}
