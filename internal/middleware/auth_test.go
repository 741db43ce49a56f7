package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/token"
	"backend/pkg/pagination"
)

const (
	testSecret      = "middleware-test-secret"
	testAdminSecret = "static-admin-secret"
)

// fakeUserRepo serves directory lookups for the auth policies under test.
type fakeUserRepo struct {
	users map[uint]*model.User
}

func (f *fakeUserRepo) Create(_ context.Context, _ *model.User) error { return nil }

func (f *fakeUserRepo) GetByID(_ context.Context, id uint) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByRole(_ context.Context, _ string) ([]model.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) EmailTakenByOther(_ context.Context, _ string, _ uint) (bool, error) {
	return false, nil
}

func (f *fakeUserRepo) List(_ context.Context, _ pagination.Params) ([]model.User, int64, error) {
	return nil, 0, nil
}

func (f *fakeUserRepo) Update(_ context.Context, _ *model.User) error { return nil }
func (f *fakeUserRepo) Delete(_ context.Context, _ uint) error        { return nil }

type fixture struct {
	auth   *middleware.Auth
	tokens *token.Manager
	repo   *fakeUserRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := &fakeUserRepo{users: map[uint]*model.User{
		1: {ID: 1, FullName: "Root Admin", Email: "root@example.com", Role: model.RoleAdmin},
		2: {ID: 2, FullName: "Jane Doe", Email: "jane@example.com", Role: model.RoleDesigner},
		3: {ID: 3, FullName: "John Roe", Email: "john@example.com", Role: model.RoleUser},
	}}
	tokens := token.NewManager(testSecret)
	return &fixture{
		auth:   middleware.NewAuth(tokens, repo, testAdminSecret),
		tokens: tokens,
		repo:   repo,
	}
}

func (f *fixture) accessFor(t *testing.T, id uint) string {
	t.Helper()
	signed, err := f.tokens.IssueAccess(f.repo.users[id])
	require.NoError(t, err)
	return signed
}

// serve runs one request through handler and returns the recorder plus the
// identity the handler observed (nil when the chain aborted).
func serve(handler gin.HandlerFunc, mutate func(*http.Request)) (*httptest.ResponseRecorder, *middleware.Identity) {
	var seen *middleware.Identity
	r := gin.New()
	r.GET("/protected/:id", handler, func(c *gin.Context) {
		seen, _ = middleware.GetIdentity(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/protected/2", nil)
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w, seen
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body.Error
}

func TestRequireAuth_ValidToken(t *testing.T) {
	f := newFixture(t)

	w, seen := serve(f.auth.RequireAuth(), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+f.accessFor(t, 2))
	})

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, seen)
	assert.False(t, seen.Override)
	assert.Equal(t, uint(2), seen.User.ID)
	assert.Equal(t, "Jane Doe", seen.User.FullName)
}

func TestRequireAuth_Failures(t *testing.T) {
	f := newFixture(t)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  2,
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	orphan, err := f.tokens.IssueAccess(&model.User{ID: 999, Email: "gone@example.com", Role: model.RoleUser})
	require.NoError(t, err)

	foreign, err := token.NewManager("other-secret").IssueAccess(f.repo.users[2])
	require.NoError(t, err)

	tests := []struct {
		name      string
		header    string
		wantError string
	}{
		{"no_header", "", "Authorization token required"},
		{"missing_bearer", f.accessFor(t, 2), "Invalid authorization format. Use 'Bearer <token>'"},
		{"two_segments", "Bearer a.b", "Invalid token format"},
		{"garbage_segments", "Bearer a.b.c", "Malformed token"},
		{"expired", "Bearer " + expired, "Token has expired. Please login again."},
		{"wrong_secret", "Bearer " + foreign, "Invalid or expired token"},
		{"deleted_user", "Bearer " + orphan, "User not found or invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, seen := serve(f.auth.RequireAuth(), func(r *http.Request) {
				if tt.header != "" {
					r.Header.Set("Authorization", tt.header)
				}
			})

			// Authentication failures are always 401, never 403.
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.wantError, errorBody(t, w))
			assert.Nil(t, seen)
		})
	}
}

func TestRequireAdmin_StaticSecret(t *testing.T) {
	f := newFixture(t)

	w, seen := serve(f.auth.RequireAdmin(), func(r *http.Request) {
		r.Header.Set(middleware.AdminTokenHeader, testAdminSecret)
	})

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, seen)
	assert.True(t, seen.Override)
	assert.Equal(t, model.RoleAdmin, seen.User.Role)
	assert.Equal(t, "System Administrator", seen.User.FullName)
}

func TestRequireAdmin_WrongStaticSecretFallsThrough(t *testing.T) {
	f := newFixture(t)

	// A wrong static secret is not an instant rejection; the request is
	// evaluated as a normal bearer request, which here has no token.
	w, _ := serve(f.auth.RequireAdmin(), func(r *http.Request) {
		r.Header.Set(middleware.AdminTokenHeader, "not-the-secret")
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authorization token required", errorBody(t, w))
}

func TestRequireAdmin_JWTAdmin(t *testing.T) {
	f := newFixture(t)

	w, seen := serve(f.auth.RequireAdmin(), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+f.accessFor(t, 1))
	})

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, seen)
	assert.False(t, seen.Override)
	assert.Equal(t, uint(1), seen.User.ID)
}

func TestRequireAdmin_NonAdminClaim(t *testing.T) {
	f := newFixture(t)

	w, _ := serve(f.auth.RequireAdmin(), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+f.accessFor(t, 2))
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Forbidden - Admin access required", errorBody(t, w))
}

func TestRequireAdmin_DemotedAdmin(t *testing.T) {
	f := newFixture(t)

	// Token minted while the user was admin; the directory row has since been
	// demoted. The live role check must win over the stale claim.
	stale := f.accessFor(t, 1)
	f.repo.users[1].Role = model.RoleSales

	w, _ := serve(f.auth.RequireAdmin(), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+stale)
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Admin privileges revoked", errorBody(t, w))
}

func TestRequireRole(t *testing.T) {
	f := newFixture(t)
	handler := f.auth.RequireRole(model.RoleAdmin, model.RoleDesigner)

	w, seen := serve(handler, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+f.accessFor(t, 2))
	})
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, seen)
	assert.Equal(t, model.RoleDesigner, seen.User.Role)

	w, _ = serve(handler, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+f.accessFor(t, 3))
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied. Required roles: admin, designer", errorBody(t, w))

	w, _ = serve(handler, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdminOrOwner_Owner(t *testing.T) {
	f := newFixture(t)

	// Route parameter is 2; user 2 owns the resource.
	w, seen := serve(f.auth.RequireAdminOrOwner("id"), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+f.accessFor(t, 2))
	})

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, seen)
	assert.False(t, seen.Override)
	assert.Equal(t, uint(2), seen.User.ID)
}

func TestRequireAdminOrOwner_NotOwner(t *testing.T) {
	f := newFixture(t)

	w, _ := serve(f.auth.RequireAdminOrOwner("id"), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+f.accessFor(t, 3))
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied. Admin access or resource ownership required", errorBody(t, w))
}

func TestRequireAdminOrOwner_AdminClaim(t *testing.T) {
	f := newFixture(t)

	w, seen := serve(f.auth.RequireAdminOrOwner("id"), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+f.accessFor(t, 1))
	})

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, seen)
	assert.Equal(t, model.RoleAdmin, seen.User.Role)
}

func TestRequireAdminOrOwner_StaticSecret(t *testing.T) {
	f := newFixture(t)

	w, seen := serve(f.auth.RequireAdminOrOwner("id"), func(r *http.Request) {
		r.Header.Set(middleware.AdminTokenHeader, testAdminSecret)
	})

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, seen)
	assert.True(t, seen.Override)
}

func TestRequireAdminOrOwner_NoToken(t *testing.T) {
	f := newFixture(t)

	w, _ := serve(f.auth.RequireAdminOrOwner("id"), nil)

	// No credential at all reads as a missing-privilege failure here.
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied. Admin access or resource ownership required", errorBody(t, w))
}

func TestRequireAdminOrOwner_BadToken(t *testing.T) {
	f := newFixture(t)

	w, _ := serve(f.auth.RequireAdminOrOwner("id"), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer a.b.c")
	})

	// A presented-but-invalid token is an authentication failure, not an
	// ownership failure.
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Malformed token", errorBody(t, w))
}

func TestOptionalAuth(t *testing.T) {
	f := newFixture(t)

	w, seen := serve(f.auth.OptionalAuth(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, seen)

	w, seen = serve(f.auth.OptionalAuth(), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+f.accessFor(t, 2))
	})
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, seen)
	assert.Equal(t, uint(2), seen.User.ID)

	// Invalid tokens never fail the request; the caller is just anonymous.
	w, seen = serve(f.auth.OptionalAuth(), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer garbage")
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, seen)
}
