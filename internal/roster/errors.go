package roster

import (
	"errors"
	"fmt"

	"github.com/cura-agent/roster-service/internal/domain"
)

// ErrNotFound is returned when an operation names an id the roster does not hold.
var ErrNotFound = errors.New("roster entry not found")

// Op names a roster mutation.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// OperationError is the single failure kind of a roster. Its message carries the
// operation and the roster category, e.g. "Failed to create doctor: <reason>".
type OperationError struct {
	Op       Op
	Category domain.Category
	Err      error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("Failed to %s %s: %v", e.Op, e.Category, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}
