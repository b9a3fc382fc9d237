/*
errors.go - Centralized error types for the staff model

PURPOSE:
  All error types in one place for consistency and discoverability.
  Every failure returned by this package belongs to exactly one KIND so a
  host can map it without string matching.

ERROR KINDS:
  1. Invalid argument - out-of-range field, empty name, nil collaborator,
     time before hire, violated hierarchy precondition
  2. Calendar conversion - the local calendar cannot build or decompose
     a timestamp

USAGE:
  if staff.IsInvalidArgument(err) {
      // reject the request, state is unchanged
  }

  var herr *staff.HierarchyError
  if errors.As(err, &herr) {
      log.Printf("%s rejected: %v", herr.Op, herr.Err)
  }

SEE ALSO:
  - company.go: Wraps hierarchy failures in HierarchyError
  - calendar.go: Returns RangeError and ErrCalendarConversion
*/
package staff

import (
	"errors"
	"fmt"
)

// =============================================================================
// KIND SENTINELS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidArgument is the kind of every recoverable validation failure.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCalendarConversion is the kind of every local calendar failure.
	ErrCalendarConversion = errors.New("calendar conversion failed")
)

// =============================================================================
// REASON SENTINELS - Each wraps a kind
// =============================================================================

var (
	ErrEmptyName       = invalidArgument("name must not be empty")
	ErrNilCollaborator = invalidArgument("collaborator is nil")
	ErrBeforeHireTime  = invalidArgument("time is earlier than hire time")
	ErrEndBeforeStart  = invalidArgument("end time is earlier than start time")
	ErrUnknownRole     = invalidArgument("unknown collaborator role")

	ErrAlreadyInStaff      = invalidArgument("collaborator is already in staff")
	ErrNotInStaff          = invalidArgument("collaborator is not in staff")
	ErrEmployedElsewhere   = invalidArgument("collaborator is in staff of another company")
	ErrHasChief            = invalidArgument("collaborator already has a chief")
	ErrHasSubordinates     = invalidArgument("collaborator already has subordinates")
	ErrEmployeeCannotLead  = invalidArgument("employee can't have subordinates")
	ErrAlreadySubordinate  = invalidArgument("collaborator is already a direct subordinate")
	ErrOtherChief          = invalidArgument("subordinate reports to another chief")
	ErrSubordinateNotFound = invalidArgument("subordinate doesn't exist")
	ErrCyclicReporting     = invalidArgument("reporting line would create a cycle")
)

func invalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// RangeError reports a value outside its allowed bounds.
type RangeError struct {
	Field string
	Value string
	Min   string
	Max   string
}

func (e *RangeError) Error() string {
	if e.Max == "" {
		return fmt.Sprintf("%s: %s must be at least %s: %s",
			ErrInvalidArgument, e.Field, e.Min, e.Value)
	}
	return fmt.Sprintf("%s: %s is out of range [%s, %s]: %s",
		ErrInvalidArgument, e.Field, e.Min, e.Max, e.Value)
}

func (e *RangeError) Unwrap() error {
	return ErrInvalidArgument
}

func rangeError(field string, value, min, max int) *RangeError {
	return &RangeError{
		Field: field,
		Value: fmt.Sprint(value),
		Min:   fmt.Sprint(min),
		Max:   fmt.Sprint(max),
	}
}

func lowerBoundError(field string, value, min int) *RangeError {
	return &RangeError{Field: field, Value: fmt.Sprint(value), Min: fmt.Sprint(min)}
}

// HierarchyError reports a rejected Company operation.
// Chief and Subordinate hold collaborator names when known.
type HierarchyError struct {
	Op          string
	Chief       string
	Subordinate string
	Err         error
}

func (e *HierarchyError) Error() string {
	msg := e.Op + ": " + e.Err.Error()
	switch {
	case e.Chief != "" && e.Subordinate != "":
		msg += fmt.Sprintf(" (chief %q, subordinate %q)", e.Chief, e.Subordinate)
	case e.Chief != "":
		msg += fmt.Sprintf(" (chief %q)", e.Chief)
	case e.Subordinate != "":
		msg += fmt.Sprintf(" (collaborator %q)", e.Subordinate)
	}
	return msg
}

func (e *HierarchyError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsInvalidArgument returns true if the caller supplied bad input.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsCalendarFailure returns true if the local calendar rejected a conversion.
func IsCalendarFailure(err error) bool {
	return errors.Is(err, ErrCalendarConversion)
}
