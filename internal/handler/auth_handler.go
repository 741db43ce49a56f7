package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/internal/token"
	"backend/pkg/apperr"
	"backend/pkg/response"
)

type AuthHandler struct {
	authService service.AuthService
	auth        *middleware.Auth
}

// NewAuthHandler sets up the routing dependencies for authentication endpoints
func NewAuthHandler(authService service.AuthService, auth *middleware.Auth) *AuthHandler {
	return &AuthHandler{authService: authService, auth: auth}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.GET("/profile", h.auth.RequireAuth(), h.Profile)
		auth.POST("/logout", h.auth.RequireAuth(), h.Logout)
		auth.GET("/verify", h.Verify)
	}
}

// Login authenticates a user and returns access and refresh tokens
// @Summary      Login user
// @Description  Authenticates a user by email and password, returning a JWT token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Login Credentials"
// @Success      200      {object}  response.Body{data=service.AuthResult}
// @Failure      400      {object}  response.Body
// @Failure      401      {object}  response.Body
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFail(c, bindingErrors(err)...)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Login successful", result)
}

// Refresh issues a new token pair from a valid refresh token
// @Summary      Refresh token
// @Description  Issues a new access token and refresh token using a valid refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RefreshTokenRequest  true  "Refresh Token"
// @Success      200      {object}  response.Body{data=service.AuthResult}
// @Failure      400      {object}  response.Body
// @Failure      401      {object}  response.Body
// @Router       /api/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req service.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFail(c, "Refresh token is required")
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Token refreshed successfully", result)
}

// Profile returns the authenticated caller's sanitized user record
// @Summary      Get profile
// @Description  Returns the currently authenticated user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Body{data=service.UserResponse}
// @Failure      401  {object}  response.Body
// @Router       /api/auth/profile [get]
func (h *AuthHandler) Profile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.Fail(c, apperr.ErrUserInvalid)
		return
	}

	profile, err := h.authService.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Profile retrieved successfully", profile)
}

// Logout is a stateless no-op; tokens expire on their own
// @Summary      Logout
// @Description  Stateless logout; the client discards its tokens
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Body
// @Failure      401  {object}  response.Body
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	response.Success(c, http.StatusOK, "Logged out successfully", nil)
}

// Verify checks the bearer token and reports its expiry
// @Summary      Verify token
// @Description  Verifies the bearer token and returns the live user plus expiry
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Body{data=service.VerifyResult}
// @Failure      401  {object}  response.Body
// @Router       /api/auth/verify [get]
func (h *AuthHandler) Verify(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		response.Fail(c, apperr.ErrTokenRequired)
		return
	}

	raw, ok := token.ExtractBearer(header)
	if !ok {
		response.Fail(c, apperr.ErrInvalidAuthFormat)
		return
	}

	result, err := h.authService.VerifyAccess(c.Request.Context(), raw)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Token is valid", result)
}
