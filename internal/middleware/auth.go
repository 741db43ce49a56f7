package middleware

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/token"
	"backend/pkg/apperr"
	"backend/pkg/response"
)

// AdminTokenHeader carries the legacy static admin credential.
const AdminTokenHeader = "admin-token"

const identityKey = "identity"

// Identity is the caller resolved once per request: either an override
// identity synthesized from the static admin secret, or a directory-backed
// user attached after token verification.
type Identity struct {
	Override bool
	User     *model.User
}

// GetIdentity returns the identity attached by the auth middleware, if any.
func GetIdentity(c *gin.Context) (*Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*Identity)
	return id, ok
}

// CurrentUser returns the resolved caller's user record, or nil.
func CurrentUser(c *gin.Context) *model.User {
	if id, ok := GetIdentity(c); ok {
		return id.User
	}
	return nil
}

// Auth bundles the token codec, the user directory, and the static admin
// secret behind the access-control policies.
type Auth struct {
	tokens      *token.Manager
	users       repository.UserRepository
	adminSecret string
}

// NewAuth wires the access-control middleware. adminSecret is the static
// admin-token value; it is read-only after startup.
func NewAuth(tokens *token.Manager, users repository.UserRepository, adminSecret string) *Auth {
	return &Auth{tokens: tokens, users: users, adminSecret: adminSecret}
}

// verifyRequest runs the cheap-first bearer pipeline: header presence,
// Bearer shape, structural token format, then cryptographic verification.
func (a *Auth) verifyRequest(c *gin.Context) (*token.Claims, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, apperr.ErrTokenRequired
	}

	raw, ok := token.ExtractBearer(header)
	if !ok {
		return nil, apperr.ErrInvalidAuthFormat
	}

	if !token.ValidFormat(raw) {
		return nil, apperr.ErrInvalidTokenFormat
	}

	claims, err := a.tokens.Verify(raw)
	if err != nil {
		return nil, mapTokenErr(err)
	}
	return claims, nil
}

// fetchUser re-reads the caller from the directory so a deleted user with a
// still-valid token is rejected.
func (a *Auth) fetchUser(c *gin.Context, claims *token.Claims) (*model.User, error) {
	user, err := a.users.GetByID(c.Request.Context(), claims.ID)
	if err != nil {
		return nil, apperr.ErrUserInvalid
	}
	return user, nil
}

func (a *Auth) attach(c *gin.Context, id *Identity) {
	c.Set(identityKey, id)
	c.Set("userID", id.User.ID)
	c.Set("userRole", id.User.Role)
}

// matchesAdminSecret checks the legacy static admin-token header. Checked
// before any JWT parsing: cheapest gate first.
func (a *Auth) matchesAdminSecret(c *gin.Context) bool {
	v := c.GetHeader(AdminTokenHeader)
	return v != "" && v == a.adminSecret
}

// overrideIdentity synthesizes the admin identity granted by the static
// secret. It is not backed by a directory row.
func overrideIdentity() *Identity {
	return &Identity{
		Override: true,
		User: &model.User{
			ID:       1,
			FullName: "System Administrator",
			Email:    "admin@example.com",
			Role:     model.RoleAdmin,
		},
	}
}

// RequireAuth admits any caller with a valid access token whose user still
// exists in the directory.
func (a *Auth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := a.verifyRequest(c)
		if err != nil {
			response.Fail(c, err)
			return
		}

		user, err := a.fetchUser(c, claims)
		if err != nil {
			response.Fail(c, err)
			return
		}

		a.attach(c, &Identity{User: user})
		c.Next()
	}
}

// RequireAdmin admits the static admin secret or a JWT whose role claim is
// admin. The claim is then re-validated against the live directory role so a
// demoted admin's still-valid token stops working immediately.
func (a *Auth) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.matchesAdminSecret(c) {
			id := overrideIdentity()
			a.attach(c, id)
			c.Next()
			return
		}

		claims, err := a.verifyRequest(c)
		if err != nil {
			response.Fail(c, err)
			return
		}

		if !claims.IsAdmin() {
			response.Fail(c, apperr.ErrForbidden)
			return
		}

		user, err := a.fetchUser(c, claims)
		if err != nil {
			response.Fail(c, err)
			return
		}

		if user.Role != model.RoleAdmin {
			response.Fail(c, apperr.ErrAdminRevoked)
			return
		}

		a.attach(c, &Identity{User: user})
		c.Next()
	}
}

// RequireRole composes RequireAuth with a role membership check.
func (a *Auth) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := a.verifyRequest(c)
		if err != nil {
			response.Fail(c, err)
			return
		}

		user, err := a.fetchUser(c, claims)
		if err != nil {
			response.Fail(c, err)
			return
		}

		allowed := false
		for _, role := range roles {
			if user.Role == role {
				allowed = true
				break
			}
		}
		if !allowed {
			response.FailStatus(c, 403, "Access denied. Required roles: "+strings.Join(roles, ", "))
			return
		}

		a.attach(c, &Identity{User: user})
		c.Next()
	}
}

// RequireAdminOrOwner admits the static secret, a JWT admin, or the user who
// owns the resource named by the idParam path parameter. Ownership grants
// access as the owning user, not as admin.
func (a *Auth) RequireAdminOrOwner(idParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.matchesAdminSecret(c) {
			a.attach(c, overrideIdentity())
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		raw, ok := token.ExtractBearer(header)
		if !ok {
			response.Fail(c, apperr.ErrOwnershipRequired)
			return
		}

		claims, err := a.tokens.Verify(raw)
		if err != nil {
			response.Fail(c, mapTokenErr(err))
			return
		}

		if claims.IsAdmin() {
			// Claim-based admin grant; the claims carry the identity here.
			a.attach(c, &Identity{User: &model.User{
				ID:       claims.ID,
				FullName: claims.FullName,
				Email:    claims.Email,
				Role:     claims.Role,
			}})
			c.Next()
			return
		}

		resourceID, err := strconv.ParseUint(c.Param(idParam), 10, 64)
		if err == nil && claims.ID == uint(resourceID) {
			user, err := a.fetchUser(c, claims)
			if err != nil {
				response.Fail(c, err)
				return
			}
			a.attach(c, &Identity{User: user})
			c.Next()
			return
		}

		response.Fail(c, apperr.ErrOwnershipRequired)
	}
}

// OptionalAuth attaches an identity when a valid token is present and never
// fails the request otherwise.
func (a *Auth) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		if raw, ok := token.ExtractBearer(header); ok {
			if claims, err := a.tokens.Verify(raw); err == nil {
				a.attach(c, &Identity{User: &model.User{
					ID:       claims.ID,
					FullName: claims.FullName,
					Email:    claims.Email,
					Role:     claims.Role,
				}})
			}
		}

		c.Next()
	}
}

// mapTokenErr translates codec failure kinds into the response taxonomy.
func mapTokenErr(err error) error {
	switch {
	case errors.Is(err, token.ErrExpired):
		return apperr.ErrTokenExpired
	case errors.Is(err, token.ErrMalformed):
		return apperr.ErrMalformedToken
	default:
		return apperr.ErrInvalidToken
	}
}
