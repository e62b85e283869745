package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"evidence-backend/internal/model"
	"evidence-backend/internal/repository"
	"evidence-backend/internal/scope"
)

// DTOs for Request validation
type CreateUserRequest struct {
	Username     string  `json:"username" binding:"required"`
	Password     string  `json:"password" binding:"required,min=6"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Email        string  `json:"email" binding:"omitempty,email"`
	PhoneNumber  string  `json:"phone_number"`
	Rank         string  `json:"rank"`
	Role         string  `json:"role"`
	Region       string  `json:"region"`
	DepartmentID *string `json:"department_id"`
}

type UpdateUserRequest struct {
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	Email        *string `json:"email" binding:"omitempty,email"`
	PhoneNumber  *string `json:"phone_number"`
	Rank         *string `json:"rank"`
	Role         *string `json:"role"`
	Region       *string `json:"region"`
	DepartmentID *string `json:"department_id"`
	Password     *string `json:"password"`
	IsActive     *bool   `json:"is_active"`
}

type DepartmentResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Region string `json:"region"`
}

// UserResponse returns a user without exposing sensitive data
type UserResponse struct {
	ID          string              `json:"id"`
	Username    string              `json:"username"`
	FirstName   string              `json:"first_name"`
	LastName    string              `json:"last_name"`
	FullName    string              `json:"full_name"`
	Email       string              `json:"email"`
	PhoneNumber string              `json:"phone_number"`
	Rank        string              `json:"rank"`
	Department  *DepartmentResponse `json:"department,omitempty"`
	Region      string              `json:"region"`
	Role        string              `json:"role"`
	IsActive    bool                `json:"is_active"`
	CreatedAt   string              `json:"created_at"`
	UpdatedAt   string              `json:"updated_at"`
}

// UserService defines the interface for business logic related to User
type UserService interface {
	Create(ctx context.Context, actor *model.User, req CreateUserRequest) (*UserResponse, error)
	Get(ctx context.Context, actor *model.User, id uuid.UUID) (*UserResponse, error)
	List(ctx context.Context, actor *model.User, page, limit int) ([]UserResponse, int64, error)
	Update(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error)
	Delete(ctx context.Context, actor *model.User, id uuid.UUID) error
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func mapToDepartmentResponse(d *model.Department) *DepartmentResponse {
	if d == nil {
		return nil
	}
	return &DepartmentResponse{
		ID:     d.ID.String(),
		Name:   d.Name,
		Region: d.Region,
	}
}

// MapUser exposes the user mapping for handlers serializing the caller directly
func MapUser(user *model.User) *UserResponse {
	return mapToUserResponse(user)
}

func mapToUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:          user.ID.String(),
		Username:    user.Username,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		FullName:    user.FullName(),
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		Rank:        user.Rank,
		Department:  mapToDepartmentResponse(user.Department),
		Region:      user.Region,
		Role:        user.Role,
		IsActive:    user.IsActive,
		CreatedAt:   user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   user.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func parseOptionalID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, invalidf("invalid id %q", *s)
	}
	return &id, nil
}

func (s *userService) Create(ctx context.Context, actor *model.User, req CreateUserRequest) (*UserResponse, error) {
	role := req.Role
	if role == "" {
		role = model.RoleUser
	}
	if !model.ValidRole(role) {
		return nil, invalidf("invalid role %q", req.Role)
	}
	if req.Region != "" && !model.ValidRegion(req.Region) {
		return nil, invalidf("invalid region %q", req.Region)
	}

	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, invalidf("username already exists")
	}

	deptID, err := parseOptionalID(req.DepartmentID)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &model.User{
		Username:     req.Username,
		Password:     string(hashedPassword),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		Rank:         req.Rank,
		Role:         role,
		Region:       req.Region,
		DepartmentID: deptID,
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	created, err := s.repo.GetByID(ctx, user.ID)
	if err != nil {
		return mapToUserResponse(user), nil
	}
	return mapToUserResponse(created), nil
}

func (s *userService) Get(ctx context.Context, actor *model.User, id uuid.UUID) (*UserResponse, error) {
	user, err := s.repo.GetVisible(ctx, actor, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return mapToUserResponse(user), nil
}

func (s *userService) List(ctx context.Context, actor *model.User, page, limit int) ([]UserResponse, int64, error) {
	users, total, err := s.repo.List(ctx, actor, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]UserResponse, 0, len(users))
	for i := range users {
		res = append(res, *mapToUserResponse(&users[i]))
	}

	return res, total, nil
}

func (s *userService) Update(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.repo.GetVisible(ctx, actor, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// Submitting is_active at all needs the target inside the caller's own
	// scope, even when the value matches the stored one
	if req.IsActive != nil {
		if !scope.CanManageUser(actor, user) {
			return nil, ErrPermissionDenied
		}
		user.IsActive = *req.IsActive
	}

	if req.Role != nil {
		if !model.ValidRole(*req.Role) {
			return nil, invalidf("invalid role %q", *req.Role)
		}
		user.Role = *req.Role
	}
	if req.Region != nil {
		if *req.Region != "" && !model.ValidRegion(*req.Region) {
			return nil, invalidf("invalid region %q", *req.Region)
		}
		user.Region = *req.Region
	}
	if req.DepartmentID != nil {
		deptID, err := parseOptionalID(req.DepartmentID)
		if err != nil {
			return nil, err
		}
		user.DepartmentID = deptID
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	if req.Rank != nil {
		user.Rank = *req.Rank
	}
	if req.Password != nil && *req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, errors.New("failed to hash password")
		}
		user.Password = string(hashed)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetByID(ctx, user.ID)
	if err != nil {
		return mapToUserResponse(user), nil
	}
	return mapToUserResponse(updated), nil
}

func (s *userService) Delete(ctx context.Context, actor *model.User, id uuid.UUID) error {
	user, err := s.repo.GetVisible(ctx, actor, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.repo.Delete(ctx, user.ID)
}
