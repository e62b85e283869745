package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"evidence-backend/internal/model"
	"evidence-backend/internal/repository"
)

type CreateSessionRequest struct {
	// UserID defaults to the caller when omitted
	UserID *string `json:"user_id"`
}

type UpdateSessionRequest struct {
	Logout *string `json:"logout"` // RFC 3339
	Active *bool   `json:"active"`
}

type SessionResponse struct {
	ID     string        `json:"id"`
	User   *UserResponse `json:"user,omitempty"`
	Login  string        `json:"login"`
	Logout *string       `json:"logout"`
	Active bool          `json:"active"`
}

// SessionService serves the login-session registry. The auth flow opens and
// closes rows on login/logout; the API additionally allows manual bookkeeping
// within the caller's scope.
type SessionService interface {
	Create(ctx context.Context, actor *model.User, req CreateSessionRequest) (*SessionResponse, error)
	Get(ctx context.Context, actor *model.User, id uuid.UUID) (*SessionResponse, error)
	List(ctx context.Context, actor *model.User, page, limit int) ([]SessionResponse, int64, error)
	Update(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateSessionRequest) (*SessionResponse, error)
	Delete(ctx context.Context, actor *model.User, id uuid.UUID) error
}

type sessionService struct {
	repo repository.SessionRepository
}

func NewSessionService(repo repository.SessionRepository) SessionService {
	return &sessionService{repo: repo}
}

func mapToSessionResponse(s *model.Session) *SessionResponse {
	res := &SessionResponse{
		ID:     s.ID.String(),
		Login:  s.Login.Format("2006-01-02T15:04:05Z07:00"),
		Active: s.Active,
	}
	if s.Logout != nil {
		out := s.Logout.Format("2006-01-02T15:04:05Z07:00")
		res.Logout = &out
	}
	if s.User != nil {
		res.User = mapToUserResponse(s.User)
	}
	return res
}

func (s *sessionService) Get(ctx context.Context, actor *model.User, id uuid.UUID) (*SessionResponse, error) {
	session, err := s.repo.GetVisible(ctx, actor, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return mapToSessionResponse(session), nil
}

func (s *sessionService) List(ctx context.Context, actor *model.User, page, limit int) ([]SessionResponse, int64, error) {
	sessions, total, err := s.repo.List(ctx, actor, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]SessionResponse, 0, len(sessions))
	for i := range sessions {
		res = append(res, *mapToSessionResponse(&sessions[i]))
	}
	return res, total, nil
}

func (s *sessionService) Create(ctx context.Context, actor *model.User, req CreateSessionRequest) (*SessionResponse, error) {
	userID := actor.ID
	if req.UserID != nil && *req.UserID != "" {
		parsed, err := uuid.Parse(*req.UserID)
		if err != nil {
			return nil, invalidf("invalid user id %q", *req.UserID)
		}
		userID = parsed
	}

	session := &model.Session{UserID: userID, Active: true}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}

	created, err := s.repo.GetVisible(ctx, actor, session.ID)
	if err != nil {
		return mapToSessionResponse(session), nil
	}
	return mapToSessionResponse(created), nil
}

func (s *sessionService) Update(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateSessionRequest) (*SessionResponse, error) {
	session, err := s.repo.GetVisible(ctx, actor, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.Logout != nil {
		if *req.Logout == "" {
			session.Logout = nil
		} else {
			at, err := time.Parse(time.RFC3339, *req.Logout)
			if err != nil {
				return nil, invalidf("invalid logout timestamp %q", *req.Logout)
			}
			session.Logout = &at
		}
	}
	if req.Active != nil {
		session.Active = *req.Active
	}

	if err := s.repo.Update(ctx, session); err != nil {
		return nil, err
	}
	return mapToSessionResponse(session), nil
}

func (s *sessionService) Delete(ctx context.Context, actor *model.User, id uuid.UUID) error {
	session, err := s.repo.GetVisible(ctx, actor, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.repo.Delete(ctx, session.ID)
}
