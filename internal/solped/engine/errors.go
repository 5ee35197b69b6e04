package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy for every mutating operation. Forbidden and invalid
// transitions are deterministic and must never be retried; Conflict and
// Transient are retryable by the caller after reloading.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("conflict: requisition changed concurrently")
	ErrTransient = errors.New("transient storage failure")
)

// ValidationError reports a request that is malformed at the content level
// (empty item list, missing rejection note).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// InvalidTransitionError reports a status change whose target is not in the
// legal set for (current status, role). It carries the legal set so the
// caller can present what the actor may do instead.
type InvalidTransitionError struct {
	From  string
	To    string
	Role  string
	Legal []string
}

func (e *InvalidTransitionError) Error() string {
	if len(e.Legal) == 0 {
		return fmt.Sprintf("cannot change status from %s to %s as %s: no transitions available", e.From, e.To, e.Role)
	}
	return fmt.Sprintf("cannot change status from %s to %s as %s: allowed targets are %s",
		e.From, e.To, e.Role, strings.Join(e.Legal, ", "))
}
