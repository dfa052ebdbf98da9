// Package api provides unified response building utilities for API handlers
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gpuwatch-project/gpuwatch/internal/gpu"
	"github.com/gpuwatch-project/gpuwatch/internal/types"
)

// Success sends a successful API response with data
func Success[T any](c *gin.Context, data T) {
	c.JSON(http.StatusOK, data)
}

// Error sends an error API response
func Error(c *gin.Context, code types.ErrorCode, message string) {
	c.JSON(code.HTTPStatusCode(), types.NewErrorResponse(code, message))
}

// ErrorWithDetails sends an error API response with details
func ErrorWithDetails(c *gin.Context, code types.ErrorCode, message, details string) {
	c.JSON(code.HTTPStatusCode(), types.NewErrorResponseWithDetails(code, message, details))
}

// BadRequest sends a bad request error response
func BadRequest(c *gin.Context, message string) {
	Error(c, types.ErrInvalidRequest, message)
}

// InternalError sends an internal server error response
func InternalError(c *gin.Context, err error) {
	ErrorWithDetails(c, types.ErrInternalError, "internal server error", err.Error())
}

// ProviderError translates a device provider error into the matching
// HTTP error response
func ProviderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gpu.ErrNotFound):
		Error(c, types.ErrDeviceNotFound, err.Error())
	case errors.Is(err, gpu.ErrQueryFailed):
		Error(c, types.ErrQueryFailed, err.Error())
	default:
		InternalError(c, err)
	}
}
