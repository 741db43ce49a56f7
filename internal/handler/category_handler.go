package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"
)

type CategoryHandler struct {
	categoryService service.CategoryService
	auth            *middleware.Auth
}

// NewCategoryHandler sets up the routing dependencies for Category endpoints
func NewCategoryHandler(categoryService service.CategoryService, auth *middleware.Auth) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, auth: auth}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup. Reads are open
// (with best-effort identity), writes require the admin or designer role.
func (h *CategoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	categories := router.Group("/categories")
	{
		categories.GET("", h.auth.OptionalAuth(), h.GetAllCategories)
		categories.GET("/search", h.auth.OptionalAuth(), h.SearchCategories)
		categories.GET("/:id", h.auth.OptionalAuth(), h.GetCategory)
		categories.POST("", h.auth.RequireRole(model.RoleAdmin, model.RoleDesigner), h.CreateCategory)
		categories.PUT("/:id", h.auth.RequireRole(model.RoleAdmin, model.RoleDesigner), h.UpdateCategory)
		categories.DELETE("/:id", h.auth.RequireAdmin(), h.DeleteCategory)
	}
}

// CreateCategory handles POST /categories
// @Summary      Create category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateCategoryRequest  true  "Create Category Payload"
// @Success      201      {object}  response.Body{data=model.Category}
// @Failure      400      {object}  response.Body
// @Router       /api/categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req service.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFail(c, bindingErrors(err)...)
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Category created successfully", category)
}

// GetAllCategories handles GET /categories
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Success      200  {object}  response.Body{data=[]model.Category}
// @Router       /api/categories [get]
func (h *CategoryHandler) GetAllCategories(c *gin.Context) {
	categories, err := h.categoryService.GetAllCategories(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Success", categories)
}

// SearchCategories handles GET /categories/search?q=
// @Summary      Search categories
// @Tags         categories
// @Produce      json
// @Param        q    query     string  true  "Search text"
// @Success      200  {object}  response.Body{data=[]model.Category}
// @Router       /api/categories/search [get]
func (h *CategoryHandler) SearchCategories(c *gin.Context) {
	categories, err := h.categoryService.SearchCategories(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Success", categories)
}

// GetCategory handles GET /categories/:id
// @Summary      Get category by ID
// @Tags         categories
// @Produce      json
// @Param        id   path      int  true  "Category ID"
// @Success      200  {object}  response.Body{data=model.Category}
// @Failure      404  {object}  response.Body
// @Router       /api/categories/{id} [get]
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.ValidationFail(c, "Invalid category ID")
		return
	}

	category, err := h.categoryService.GetCategory(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Success", category)
}

// UpdateCategory handles PUT /categories/:id
// @Summary      Update category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                            true  "Category ID"
// @Param        payload  body      service.UpdateCategoryRequest  true  "Update Category Payload"
// @Success      200      {object}  response.Body{data=model.Category}
// @Failure      404      {object}  response.Body
// @Router       /api/categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.ValidationFail(c, "Invalid category ID")
		return
	}

	var req service.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFail(c, bindingErrors(err)...)
		return
	}

	category, err := h.categoryService.UpdateCategory(c.Request.Context(), id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Category updated successfully", category)
}

// DeleteCategory handles DELETE /categories/:id
// @Summary      Delete category
// @Tags         categories
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Category ID"
// @Success      200  {object}  response.Body
// @Failure      404  {object}  response.Body
// @Router       /api/categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.ValidationFail(c, "Invalid category ID")
		return
	}

	if err := h.categoryService.DeleteCategory(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Category deleted successfully", nil)
}
