// Package types provides shared type definitions for the gpuwatch service.
package types

import "fmt"

// ErrorCode represents unified error codes returned by the API
type ErrorCode string

const (
	ErrDeviceNotFound ErrorCode = "DEVICE_NOT_FOUND"
	ErrQueryFailed    ErrorCode = "QUERY_FAILED"
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrInternalError  ErrorCode = "INTERNAL_ERROR"
)

// String returns the string representation of the error code
func (e ErrorCode) String() string {
	return string(e)
}

// HTTPStatusCode returns the appropriate HTTP status code for the error
func (e ErrorCode) HTTPStatusCode() int {
	switch e {
	case ErrDeviceNotFound:
		return 404
	case ErrInvalidRequest:
		return 400
	case ErrQueryFailed:
		return 502
	default:
		return 500
	}
}

// ErrorInfo represents detailed error information in API responses
type ErrorInfo struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// Error returns a formatted error message
func (e *ErrorInfo) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// ErrorResponse is the body returned for any failed request
type ErrorResponse struct {
	Error *ErrorInfo `json:"error"`
}

// NewErrorResponse creates an error response body
func NewErrorResponse(code ErrorCode, message string) *ErrorResponse {
	return &ErrorResponse{
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithDetails creates an error response body with details
func NewErrorResponseWithDetails(code ErrorCode, message, details string) *ErrorResponse {
	return &ErrorResponse{
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}
