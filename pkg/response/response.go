package response

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"

	"backend/pkg/apperr"
)

// Body is the uniform API envelope. Success responses carry message/data
// (plus count when data is a sequence); failures carry error/details.
type Body struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details []string    `json:"details,omitempty"`
}

// Success writes a success envelope. count is included only when data is a
// slice or array.
func Success(c *gin.Context, status int, message string, data interface{}) {
	body := Body{
		Success: true,
		Message: message,
		Data:    data,
	}
	if data != nil {
		if v := reflect.ValueOf(data); v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
			n := v.Len()
			body.Count = &n
		}
	}
	c.JSON(status, body)
}

// Fail maps err to its failure kind and writes the error envelope. Unknown
// errors collapse to a generic 500 so internals never leak.
func Fail(c *gin.Context, err error) {
	ae := apperr.As(err)
	c.AbortWithStatusJSON(ae.Status, Body{
		Success: false,
		Error:   ae.Message,
		Details: ae.Details,
	})
}

// FailStatus writes an error envelope with an explicit status and message.
func FailStatus(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Body{
		Success: false,
		Error:   message,
	})
}

// ValidationFail writes a 400 carrying the full list of violated rules.
func ValidationFail(c *gin.Context, details ...string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Body{
		Success: false,
		Error:   "Validation failed",
		Details: details,
	})
}
