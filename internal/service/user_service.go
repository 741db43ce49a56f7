package service

import (
	"context"
	"errors"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperr"
	"backend/pkg/pagination"
	"backend/pkg/password"
)

// DTOs for Request validation
type CreateUserRequest struct {
	FullName string                 `json:"fullName" binding:"required,min=2,max=100"`
	Email    string                 `json:"email" binding:"required,email"`
	Password string                 `json:"password" binding:"required"`
	Role     string                 `json:"role" binding:"required"`
	Extras   map[string]interface{} `json:"extras"`
}

type UpdateUserRequest struct {
	FullName string                 `json:"fullName" binding:"omitempty,min=2,max=100"`
	Email    string                 `json:"email" binding:"omitempty,email"`
	Password string                 `json:"password"`
	Role     string                 `json:"role"`
	Extras   map[string]interface{} `json:"extras"`
}

// UserResponse is the public projection of a user. The password hash never
// appears here.
type UserResponse struct {
	ID        uint                   `json:"id"`
	FullName  string                 `json:"full_name"`
	Email     string                 `json:"email"`
	Role      string                 `json:"role"`
	Extras    map[string]interface{} `json:"extras"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// ListUsersResult bundles one page of users with its pagination block.
type ListUsersResult struct {
	Users      []UserResponse  `json:"users"`
	Pagination pagination.Meta `json:"pagination"`
}

// EventPublisher receives user lifecycle events after successful mutations.
type EventPublisher interface {
	Publish(event string, data interface{})
}

// UserService defines the interface for business logic related to User
type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error)
	GetUserByID(ctx context.Context, id uint) (*UserResponse, error)
	GetUserByEmail(ctx context.Context, email string) (*UserResponse, error)
	GetUsersByRole(ctx context.Context, role string) ([]UserResponse, error)
	ListUsers(ctx context.Context, p pagination.Params) (*ListUsersResult, error)
	UpdateUser(ctx context.Context, id uint, req UpdateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, id uint) (*UserResponse, error)
}

type userService struct {
	repo   repository.UserRepository
	events EventPublisher
}

// NewUserService returns a new instance of UserService. events may be nil
// when no broadcast feed is wired.
func NewUserService(repo repository.UserRepository, events EventPublisher) UserService {
	return &userService{repo: repo, events: events}
}

// mapToResponse strips the hash and projects the record for the boundary.
func mapToResponse(user *model.User) *UserResponse {
	extras := user.Extras
	if extras == nil {
		extras = map[string]interface{}{}
	}
	return &UserResponse{
		ID:        user.ID,
		FullName:  user.FullName,
		Email:     user.Email,
		Role:      user.Role,
		Extras:    extras,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func (s *userService) publish(event string, data interface{}) {
	if s.events != nil {
		s.events.Publish(event, data)
	}
}

func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	if !model.ValidRole(req.Role) {
		return nil, apperr.Validation("Role must be one of: admin, designer, sales, user")
	}

	if violations := password.StrengthCheck(req.Password); len(violations) > 0 {
		return nil, apperr.Validation(violations...)
	}

	// Uniqueness pre-check; the store's unique constraint backstops the race.
	taken, err := s.repo.EmailTakenByOther(ctx, req.Email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.ErrEmailExists
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	extras := req.Extras
	if extras == nil {
		extras = map[string]interface{}{}
	}

	user := &model.User{
		FullName: req.FullName,
		Email:    req.Email,
		Password: hashed,
		Role:     req.Role,
		Extras:   extras,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperr.ErrEmailExists
		}
		return nil, err
	}

	res := mapToResponse(user)
	s.publish("user.created", res)
	return res, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, err
	}
	return mapToResponse(user), nil
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*UserResponse, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, err
	}
	return mapToResponse(user), nil
}

func (s *userService) GetUsersByRole(ctx context.Context, role string) ([]UserResponse, error) {
	users, err := s.repo.GetByRole(ctx, role)
	if err != nil {
		return nil, err
	}
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *mapToResponse(&users[i]))
	}
	return responses, nil
}

func (s *userService) ListUsers(ctx context.Context, p pagination.Params) (*ListUsersResult, error) {
	users, total, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, err
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *mapToResponse(&users[i]))
	}

	return &ListUsersResult{
		Users:      responses,
		Pagination: p.MetaFor(total),
	}, nil
}

func (s *userService) UpdateUser(ctx context.Context, id uint, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, err
	}

	if req.Role != "" {
		if !model.ValidRole(req.Role) {
			return nil, apperr.Validation("Role must be one of: admin, designer, sales, user")
		}
		user.Role = req.Role
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}

	if req.Email != "" && req.Email != user.Email {
		// Re-check uniqueness excluding this row's own id.
		taken, err := s.repo.EmailTakenByOther(ctx, req.Email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperr.ErrEmailTaken
		}
		user.Email = req.Email
	}

	if req.Password != "" {
		if violations := password.StrengthCheck(req.Password); len(violations) > 0 {
			return nil, apperr.Validation(violations...)
		}
		hashed, err := password.Hash(req.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	if req.Extras != nil {
		user.Extras = req.Extras
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperr.ErrEmailTaken
		}
		return nil, err
	}

	res := mapToResponse(user)
	s.publish("user.updated", res)
	return res, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uint) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, err
	}

	res := mapToResponse(user)
	s.publish("user.deleted", res)
	return res, nil
}
