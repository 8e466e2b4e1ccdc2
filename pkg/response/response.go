package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/visits-backend-go/internal/models"
)

// Response represents a standard API response
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Total   *int   `json:"total,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Success sends a successful response
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// List sends one page of results with the filtered total
func List(c *gin.Context, data any, total int) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Total: &total})
}

// Error sends an error response
func Error(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, Response{Success: false, Error: message})
}

// BadRequest sends a 400 bad request response
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// NotFound sends a 404 not found response
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// InternalError sends a 500 internal server error response
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// FromError maps a service error onto a status code
func FromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidFilter):
		BadRequest(c, err.Error())
	case errors.Is(err, models.ErrDataUnavailable), errors.Is(err, models.ErrRecordNotFound):
		NotFound(c, err.Error())
	default:
		_ = c.Error(err)
		InternalError(c, "internal server error")
	}
}
