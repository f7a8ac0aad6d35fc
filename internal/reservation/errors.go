package reservation

import (
	"errors"
	"sort"
	"strings"
)

// Validation failures. All of them are detected before any request leaves
// the gateway; handlers translate them into 4xx responses.
var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidRange      = errors.New("end date must be at least one day after start date")
	ErrStayTooLong       = errors.New("date range is longer than the maximum stay")
	ErrInvalidRate       = errors.New("rate must not be negative")
	ErrInvalidUnits      = errors.New("units must be at least 1")
	ErrInvalidHeadcount  = errors.New("headcount must be at least 1")
	ErrCapacityExceeded  = errors.New("requested headcount exceeds remaining capacity")
	ErrUnavailable       = errors.New("resource is not available for the selected dates")
	ErrRoomCountMismatch = errors.New("selected room numbers do not match the requested room count")
	ErrAlreadyCancelled  = errors.New("booking is already cancelled")
	ErrNotPayable        = errors.New("booking is not awaiting payment")
	ErrInvalidStatus     = errors.New("invalid booking status")
	ErrInvalidType       = errors.New("invalid booking type")
	ErrUnauthenticated   = errors.New("authentication required")
)

// ValidationError collects per-field messages. It matches ErrValidation
// with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// OrNil returns nil when no field failed.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
