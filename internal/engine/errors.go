package engine

import (
	"errors"
	"fmt"

	"github.com/runoshun/planr/internal/domain"
)

// Reason classifies why a dependency request was rejected.
type Reason string

// Rejection reasons.
const (
	ReasonSelfDependency Reason = "self_dependency"
	ReasonCycle          Reason = "cycle"
	ReasonNotFound       Reason = "not_found"
	ReasonDuplicate      Reason = "duplicate"
)

// RejectionError reports a request refused before any state was changed.
type RejectionError struct {
	Err         error
	Reason      Reason
	DependentID int
	RequiredID  int
}

func (e *RejectionError) Error() string {
	switch e.Reason {
	case ReasonNotFound:
		return e.Err.Error()
	case ReasonSelfDependency:
		return fmt.Sprintf("%s: %s", e.Err, domain.TaskRefName(e.DependentID))
	default:
		return fmt.Sprintf("%s: %s requires %s", e.Err,
			domain.TaskRefName(e.DependentID), domain.TaskRefName(e.RequiredID))
	}
}

func (e *RejectionError) Unwrap() error {
	return e.Err
}

func reject(reason Reason, err error, dependentID, requiredID int) *RejectionError {
	return &RejectionError{Reason: reason, Err: err, DependentID: dependentID, RequiredID: requiredID}
}

// ReasonOf returns the rejection reason carried by err, or "" if err is not a rejection.
func ReasonOf(err error) Reason {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Reason
	}
	return ""
}
