package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"
)

type UserHandler struct {
	userService service.UserService
	auth        *middleware.Auth
}

// NewUserHandler sets up the routing dependencies for User endpoints
func NewUserHandler(userService service.UserService, auth *middleware.Auth) *UserHandler {
	return &UserHandler{userService: userService, auth: auth}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("", h.auth.RequireAdmin(), h.ListUsers)
		users.GET("/search", h.auth.RequireAdmin(), h.GetUserByEmail)
		users.GET("/role/:role", h.auth.RequireAdmin(), h.GetUsersByRole)
		users.GET("/:id", h.auth.RequireAdminOrOwner("id"), h.GetUserByID)
		users.POST("", h.auth.RequireAdmin(), h.CreateUser)
		users.PUT("/:id", h.auth.RequireAdminOrOwner("id"), h.UpdateUser)
		users.DELETE("/:id", h.auth.RequireAdmin(), h.DeleteUser)
	}
}

// bindingErrors flattens request-shape violations into client messages, one
// per violated rule.
func bindingErrors(err error) []string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			switch fe.Tag() {
			case "required":
				details = append(details, fe.Field()+" is required")
			case "email":
				details = append(details, fe.Field()+" must be a valid email address")
			case "min":
				details = append(details, fe.Field()+" must be at least "+fe.Param()+" characters long")
			case "max":
				details = append(details, fe.Field()+" must be at most "+fe.Param()+" characters long")
			default:
				details = append(details, fe.Field()+" is invalid")
			}
		}
		return details
	}
	return []string{"Invalid request payload"}
}

// parseID validates the numeric path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// CreateUser handles POST /users
// @Summary      Create a new user
// @Description  Creates a new user after validating role, email uniqueness and password strength
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateUserRequest  true  "Create User Payload"
// @Success      201      {object}  response.Body{data=service.UserResponse}
// @Failure      400      {object}  response.Body
// @Failure      409      {object}  response.Body
// @Router       /api/users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFail(c, bindingErrors(err)...)
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "User created successfully", user)
}

// ListUsers handles GET /users with pagination and sorting
// @Summary      List users
// @Description  Retrieves a paginated, sorted list of users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Items per page (1-100, default 10)"
// @Param        sortBy     query     string  false  "Sort column (id, full_name, email, role, created_at, updated_at)"
// @Param        sortOrder  query     string  false  "asc or desc (default desc)"
// @Success      200        {object}  response.Body{data=service.ListUsersResult}
// @Failure      401        {object}  response.Body
// @Failure      403        {object}  response.Body
// @Router       /api/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := pagination.Parse(c)

	result, err := h.userService.ListUsers(c.Request.Context(), params)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Users retrieved successfully", result)
}

// GetUserByID handles GET /users/:id
// @Summary      Get user by ID
// @Description  Fetch a single user's detail; admins or the owning user only
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  response.Body{data=service.UserResponse}
// @Failure      404  {object}  response.Body
// @Router       /api/users/{id} [get]
func (h *UserHandler) GetUserByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.ValidationFail(c, "Invalid user ID")
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Success", user)
}

// GetUserByEmail handles GET /users/search?email=
// @Summary      Get user by email
// @Description  Looks a user up by exact email address
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        email  query     string  true  "Email address"
// @Success      200    {object}  response.Body{data=service.UserResponse}
// @Failure      404    {object}  response.Body
// @Router       /api/users/search [get]
func (h *UserHandler) GetUserByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.ValidationFail(c, "Email query parameter is required")
		return
	}

	user, err := h.userService.GetUserByEmail(c.Request.Context(), email)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Success", user)
}

// GetUsersByRole handles GET /users/role/:role
// @Summary      Get users by role
// @Description  Lists all users holding the given role, newest first
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        role  path      string  true  "Role"  Enums(admin, designer, sales, user)
// @Success      200   {object}  response.Body{data=[]service.UserResponse}
// @Router       /api/users/role/{role} [get]
func (h *UserHandler) GetUsersByRole(c *gin.Context) {
	role := c.Param("role")

	users, err := h.userService.GetUsersByRole(c.Request.Context(), role)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Users with role '"+role+"' retrieved successfully", users)
}

// UpdateUser handles PUT /users/:id
// @Summary      Update user
// @Description  Selectively overwrites supplied fields; email uniqueness re-checked, password re-hashed
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                        true  "User ID"
// @Param        payload  body      service.UpdateUserRequest  true  "Update User Payload"
// @Success      200      {object}  response.Body{data=service.UserResponse}
// @Failure      404      {object}  response.Body
// @Failure      409      {object}  response.Body
// @Router       /api/users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.ValidationFail(c, "Invalid user ID")
		return
	}

	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFail(c, bindingErrors(err)...)
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "User updated successfully", user)
}

// DeleteUser handles DELETE /users/:id
// @Summary      Delete user
// @Description  Permanently removes the user and returns its public projection
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  response.Body{data=service.UserResponse}
// @Failure      404  {object}  response.Body
// @Router       /api/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.ValidationFail(c, "Invalid user ID")
		return
	}

	user, err := h.userService.DeleteUser(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "User deleted successfully", user)
}
