package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"backend/internal/model"
)

// Signing algorithm is fixed; tokens declaring anything else are rejected
// outright so algorithm confusion is impossible.
const Algorithm = "HS256"

const (
	AccessTokenTTL  = 24 * time.Hour
	RefreshTokenTTL = 7 * 24 * time.Hour

	// ExpiresIn is the access-token lifetime as reported to clients.
	ExpiresIn = "24h"
)

// Verification failure kinds. Callers branch on these with errors.Is, never
// on message text.
var (
	ErrExpired          = errors.New("token expired")
	ErrInvalidSignature = errors.New("token signature invalid")
	ErrMalformed        = errors.New("token malformed")
	ErrNotYetValid      = errors.New("token not yet valid")
	ErrIssue            = errors.New("error generating token")
)

// Claims is the payload carried by both token flavors. Access tokens carry
// the full set; refresh tokens carry only id and email.
type Claims struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role,omitempty"`
	FullName string `json:"fullName,omitempty"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the claims carry the admin role.
func (c *Claims) IsAdmin() bool {
	return c != nil && c.Role == model.RoleAdmin
}

// HasRole reports whether the claims role is one of the given roles.
func (c *Claims) HasRole(roles ...string) bool {
	if c == nil || c.Role == "" {
		return false
	}
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

// Pair bundles the tokens issued at login or refresh time.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

// Manager signs and verifies tokens under one process-wide secret.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewManager builds a Manager with the standard access/refresh lifetimes.
func NewManager(secret string) *Manager {
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  AccessTokenTTL,
		refreshTTL: RefreshTokenTTL,
	}
}

// IssueAccess signs a short-lived access token for the user.
func (m *Manager) IssueAccess(user *model.User) (string, error) {
	return m.sign(Claims{
		ID:       user.ID,
		Email:    user.Email,
		Role:     user.Role,
		FullName: user.FullName,
	}, m.accessTTL)
}

// IssueRefresh signs a longer-lived refresh token carrying only id and email.
func (m *Manager) IssueRefresh(user *model.User) (string, error) {
	return m.sign(Claims{
		ID:    user.ID,
		Email: user.Email,
	}, m.refreshTTL)
}

// IssuePair signs both tokens for the user.
func (m *Manager) IssuePair(user *model.User) (*Pair, error) {
	access, err := m.IssueAccess(user)
	if err != nil {
		return nil, err
	}
	refresh, err := m.IssueRefresh(user)
	if err != nil {
		return nil, err
	}
	return &Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    ExpiresIn,
	}, nil
}

func (m *Manager) sign(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", errors.Join(ErrIssue, err)
	}
	return signed, nil
}

// Verify checks signature and expiry under the fixed algorithm and returns
// the decoded claims. Failures map to one of the kind errors above.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{Algorithm}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrNotYetValid
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformed
		default:
			// Wrong algorithm, bad signature, unverifiable token.
			return nil, ErrInvalidSignature
		}
	}
	if !tok.Valid {
		return nil, ErrInvalidSignature
	}
	return claims, nil
}

// DecodeUnsafe decodes claims without verifying the signature. Diagnostics
// only; never use the result for authorization decisions.
func (m *Manager) DecodeUnsafe(tokenString string) *Claims {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil
	}
	return claims
}

// Expiration returns the expiry of a token without verifying it, or the zero
// time when the token cannot be decoded.
func (m *Manager) Expiration(tokenString string) time.Time {
	claims := m.DecodeUnsafe(tokenString)
	if claims == nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// ExtractBearer parses an "Authorization: Bearer <token>" header value.
// Absent or malformed headers return ok=false; the caller decides whether
// that is fatal.
func ExtractBearer(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// ValidFormat reports whether the token has the structural three-segment
// shape. Checked before cryptographic verification so garbage is rejected
// cheaply.
func ValidFormat(tokenString string) bool {
	return tokenString != "" && len(strings.Split(tokenString, ".")) == 3
}
