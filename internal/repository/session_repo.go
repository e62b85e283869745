package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"evidence-backend/internal/model"
	"evidence-backend/internal/scope"
)

type SessionRepository interface {
	Create(ctx context.Context, s *model.Session) error
	GetVisible(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Session, error)
	List(ctx context.Context, actor *model.User, page, limit int) ([]model.Session, int64, error)
	Update(ctx context.Context, s *model.Session) error
	Delete(ctx context.Context, id uuid.UUID) error
	CloseOpenForUser(ctx context.Context, userID uuid.UUID, at time.Time) error
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, s *model.Session) error {
	return GetDB(ctx, r.db).Create(s).Error
}

func (r *sessionRepository) GetVisible(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Session, error) {
	var s model.Session
	err := GetDB(ctx, r.db).Scopes(scope.VisibleSessions(actor)).Preload("User").
		First(&s, "sessions.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) List(ctx context.Context, actor *model.User, page, limit int) ([]model.Session, int64, error) {
	var sessions []model.Session
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Session{}).Scopes(scope.VisibleSessions(actor)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := db.Scopes(scope.VisibleSessions(actor)).Preload("User").
		Order("sessions.login DESC").Offset(offset).Limit(limit).Find(&sessions).Error
	if err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

func (r *sessionRepository) Update(ctx context.Context, s *model.Session) error {
	return GetDB(ctx, r.db).Save(s).Error
}

func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Session{}).Error
}

// CloseOpenForUser stamps logout and clears active on every open session of a
// user. Logging in from a second client leaves earlier rows open until that
// client logs out.
func (r *sessionRepository) CloseOpenForUser(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return GetDB(ctx, r.db).Model(&model.Session{}).
		Where("user_id = ? AND active = ?", userID, true).
		Updates(map[string]interface{}{"logout": at, "active": false}).Error
}
