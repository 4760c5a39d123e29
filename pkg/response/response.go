package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/travel-atlas-go/internal/apperror"
)

// Response represents a standard API response
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success sends a successful response
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created sends a 201 response for a newly stored resource
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "created",
		Data:    data,
	})
}

// Error sends an error response. err, when present, is attached to the gin
// context for the request logger and is not sent to the client.
func Error(c *gin.Context, code int, message string, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(code, Response{
		Code:    code,
		Message: message,
	})
}

// FromError maps a service error onto a status: validation 400, not found
// 404, backend 502, anything else 500. Validation messages are returned to
// the client; other messages use fallback.
func FromError(c *gin.Context, err error, fallback string) {
	var ve *apperror.ValidationError
	switch {
	case errors.As(err, &ve):
		Error(c, http.StatusBadRequest, ve.Error(), err)
	case errors.Is(err, apperror.ErrNotFound):
		Error(c, http.StatusNotFound, err.Error(), err)
	case apperror.IsBackend(err):
		Error(c, http.StatusBadGateway, fallback, err)
	default:
		Error(c, http.StatusInternalServerError, fallback, err)
	}
}

// BadRequest sends a 400 bad request response
func BadRequest(c *gin.Context, message string, err error) {
	Error(c, http.StatusBadRequest, message, err)
}
