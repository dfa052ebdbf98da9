package gpu

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the provider error taxonomy. Callers match
// with errors.Is; the HTTP layer translates them to status codes.
var (
	// ErrNotFound is returned for any device id outside [0, device_count)
	ErrNotFound = errors.New("device not found")
	// ErrQueryFailed is returned when an underlying device read fails
	ErrQueryFailed = errors.New("device query failed")
)

// NotFoundError reports an out-of-range or unknown device id
type NotFoundError struct {
	DeviceID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("gpu %d: device not found", e.DeviceID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// QueryError reports a failed native read, carrying the native error
// string for diagnostics
type QueryError struct {
	Op       string
	DeviceID int
	Cause    string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("gpu %d: %s failed: %s", e.DeviceID, e.Op, e.Cause)
}

func (e *QueryError) Unwrap() error {
	return ErrQueryFailed
}

// InitError reports a failed hardware backend initialization. It never
// propagates past the selector, which converts it into a status flag.
type InitError struct {
	Cause string
}

func (e *InitError) Error() string {
	return fmt.Sprintf("hardware initialization failed: %s", e.Cause)
}
