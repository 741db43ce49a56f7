package service

import (
	"context"
	"errors"
	"time"

	"backend/internal/repository"
	"backend/internal/token"
	"backend/pkg/apperr"
	"backend/pkg/password"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// AuthResult carries the sanitized user and the freshly issued token pair.
type AuthResult struct {
	User         *UserResponse `json:"user"`
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	ExpiresIn    string        `json:"expiresIn"`
}

// VerifyResult is returned by the token verification endpoint.
type VerifyResult struct {
	Valid     bool          `json:"valid"`
	User      *UserResponse `json:"user"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

// AuthService orchestrates login, token refresh, and profile access. It
// holds no state of its own; tokens are stateless and never stored.
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	GetProfile(ctx context.Context, id uint) (*UserResponse, error)
	VerifyAccess(ctx context.Context, accessToken string) (*VerifyResult, error)
}

type authService struct {
	repo   repository.UserRepository
	tokens *token.Manager
}

// NewAuthService returns a new instance of AuthService
func NewAuthService(repo repository.UserRepository, tokens *token.Manager) AuthService {
	return &authService{repo: repo, tokens: tokens}
}

// Login checks credentials and issues a fresh token pair. A missing user and
// a wrong password produce the same error so emails cannot be enumerated.
func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := password.Verify(req.Password, user.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         mapToResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

// Refresh verifies the refresh token and reissues both tokens. Every failure
// collapses into the single invalid-refresh-token kind; the old refresh token
// stays usable until expiry since there is no server-side token store.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return nil, apperr.ErrInvalidRefresh
	}

	user, err := s.repo.GetByID(ctx, claims.ID)
	if err != nil {
		return nil, apperr.ErrInvalidRefresh
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         mapToResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

func (s *authService) GetProfile(ctx context.Context, id uint) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, err
	}
	return mapToResponse(user), nil
}

// VerifyAccess checks an access token and returns the live user plus the
// token's expiry.
func (s *authService) VerifyAccess(ctx context.Context, accessToken string) (*VerifyResult, error) {
	claims, err := s.tokens.Verify(accessToken)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrExpired):
			return nil, apperr.ErrTokenExpired
		case errors.Is(err, token.ErrMalformed):
			return nil, apperr.ErrMalformedToken
		default:
			return nil, apperr.ErrInvalidToken
		}
	}

	user, err := s.repo.GetByID(ctx, claims.ID)
	if err != nil {
		return nil, apperr.ErrUserInvalid
	}

	return &VerifyResult{
		Valid:     true,
		User:      mapToResponse(user),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
