package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage   = 1
	DefaultLimit  = 10
	MaxLimit      = 100
	MinLimit      = 1
	DefaultSortBy = "created_at"
	DefaultOrder  = "desc"
)

// sortColumns is the allow-list of sortable columns. Anything else falls
// back to the default so raw query input never reaches the ORDER BY clause.
var sortColumns = map[string]string{
	"id":         "id",
	"fullName":   "full_name",
	"full_name":  "full_name",
	"email":      "email",
	"role":       "role",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// Params holds validated pagination and sorting parameters.
type Params struct {
	Page      int
	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}

// Meta is the pagination block returned alongside list data.
type Meta struct {
	Page            int   `json:"page"`
	Limit           int   `json:"limit"`
	Total           int64 `json:"total"`
	TotalPages      int64 `json:"totalPages"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// Parse extracts and clamps page/limit/sortBy/sortOrder from the query.
func Parse(c *gin.Context) Params {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(DefaultPage)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))
	sortBy := c.DefaultQuery("sortBy", DefaultSortBy)
	sortOrder := c.DefaultQuery("sortOrder", DefaultOrder)

	if page < 1 {
		page = DefaultPage
	}
	if limit < MinLimit {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	column, ok := sortColumns[sortBy]
	if !ok {
		column = DefaultSortBy
	}
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = DefaultOrder
	}

	return Params{
		Page:      page,
		Limit:     limit,
		Offset:    (page - 1) * limit,
		SortBy:    column,
		SortOrder: sortOrder,
	}
}

// OrderClause renders the validated sort as a SQL ORDER BY expression.
func (p Params) OrderClause() string {
	return p.SortBy + " " + p.SortOrder
}

// MetaFor computes the pagination block for a total row count.
func (p Params) MetaFor(total int64) Meta {
	totalPages := total / int64(p.Limit)
	if total%int64(p.Limit) != 0 {
		totalPages++
	}
	return Meta{
		Page:            p.Page,
		Limit:           p.Limit,
		Total:           total,
		TotalPages:      totalPages,
		HasNextPage:     int64(p.Page) < totalPages,
		HasPreviousPage: p.Page > 1,
	}
}
