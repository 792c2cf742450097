package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Configuration errors, caught before any computation starts
	ErrInvalidConfig = errors.New("invalid ordination configuration")

	// Input errors, caught before the iteration starts
	ErrDegenerateInput = errors.New("degenerate abundance matrix")

	// Iteration errors, surfaced to the caller instead of partial results
	ErrConvergence = errors.New("reciprocal averaging did not converge")

	// Repository errors
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: ordination run", ErrNotFound)
)

// Error constructors with context

// NewConfigError reports an out-of-range or inconsistent configuration field.
func NewConfigError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidConfig, field, reason)
}

// NewEmptyRowError reports an all-zero row (site) in the abundance matrix.
func NewEmptyRowError(row int) error {
	return fmt.Errorf("%w: row %d (site) has no non-zero abundance", ErrDegenerateInput, row)
}

// NewEmptyColumnError reports an all-zero column (species) in the abundance matrix.
func NewEmptyColumnError(col int) error {
	return fmt.Errorf("%w: column %d (species) has no non-zero abundance", ErrDegenerateInput, col)
}

// NewNegativeEntryError reports a negative abundance value.
func NewNegativeEntryError(row, col int, value float64) error {
	return fmt.Errorf("%w: negative abundance %g at (%d,%d)", ErrDegenerateInput, value, row, col)
}

// NewShapeError reports a matrix too small to ordinate.
func NewShapeError(rows, cols int) error {
	return fmt.Errorf("%w: need at least 2 sites and 2 species, got %dx%d", ErrDegenerateInput, rows, cols)
}

// NewCollapsedAxisError reports that scores collapsed to zero variance,
// so fewer than the requested number of non-trivial axes exist.
func NewCollapsedAxisError(axis int) error {
	return fmt.Errorf("%w: axis %d collapsed to zero variance", ErrDegenerateInput, axis)
}

// NewConvergenceError reports that an axis failed to stabilize within the iteration budget.
func NewConvergenceError(axis, iterations int, residual float64) error {
	return fmt.Errorf("%w: axis %d after %d iterations (residual %.3g)", ErrConvergence, axis, iterations, residual)
}

// NewNotFoundError reports a missing stored resource.
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// Error checking helpers

func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

func IsDegenerateInputError(err error) bool {
	return errors.Is(err, ErrDegenerateInput)
}

func IsConvergenceError(err error) bool {
	return errors.Is(err, ErrConvergence)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
