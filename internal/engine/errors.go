package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter indicates an input that can never produce a valid
	// calculation. It is reported when the parameter record is built.
	ErrInvalidParameter = errors.New("engine: invalid parameter")

	// ErrUndefinedStopping indicates the vehicle has no net deceleration, so no
	// stopping distance exists for that combination.
	ErrUndefinedStopping = errors.New("engine: stopping distance undefined")
)

// ParamError describes a single rejected parameter.
type ParamError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

func (e *ParamError) Unwrap() error { return ErrInvalidParameter }

func invalid(field string, value any, reason string) error {
	return &ParamError{Field: field, Value: value, Reason: reason}
}

func undefined(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUndefinedStopping, fmt.Sprintf(format, args...))
}
