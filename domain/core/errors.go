package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrCohortNotFound = fmt.Errorf("%w: cohort", ErrNotFound)

	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrNoEvents         = errors.New("no events observed in survival data")
)

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
