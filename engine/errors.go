/*
errors.go - Centralized error types for the attendance engine

PURPOSE:
  All engine error kinds in one place. Callers classify with errors.Is/As.

ERROR CATEGORIES:
  1. Punch errors   - missing or out-of-sequence punches; recovered locally,
     the day is flagged and contributes zero-filled rows
  2. Configuration  - unusable rounding/allowance configuration; fatal to the
     whole batch, never recovered day by day

PROPAGATION POLICY:
  Punch errors never abort a batch: recomputation with the same punches
  yields the same result, so the remedy is always a data correction
  upstream. Configuration errors mean the engine cannot trust its own
  constants and must abort before producing wrong monetary figures.

SEE ALSO:
  - sequence.go: produces punch errors
  - allowance.go: produces configuration errors for money rules
  - config: validates rounding granularity on load
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMissingPunch is returned when a required punch slot is absent for
	// the day, e.g. a clock-in without a clock-out.
	ErrMissingPunch = errors.New("missing punch")

	// ErrInvalidSequence is returned when a punch occurs while the state
	// machine is not in a state that permits it.
	ErrInvalidSequence = errors.New("invalid punch sequence")

	// ErrConfiguration is returned when rounding or allowance configuration
	// is unusable. Fatal to the batch.
	ErrConfiguration = errors.New("configuration error")

	// ErrEmployeeNotFound is returned by stores for unknown employees.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrPositionNotFound is returned by stores for unknown positions.
	ErrPositionNotFound = errors.New("position not found")

	// ErrShiftNotFound is returned by stores when no shift is scheduled.
	ErrShiftNotFound = errors.New("shift not found")
)

// =============================================================================
// PUNCH ERRORS - recovered locally
// =============================================================================

// PunchError describes one problem with a day's punch set. It is attached to
// the DayResult rather than aborting computation so dashboards can still
// count employees with attendance vs. complete attendance.
type PunchError struct {
	Slot    PunchType
	Kind    error // ErrMissingPunch or ErrInvalidSequence
	Message string
}

func (e PunchError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Slot)
}

func (e PunchError) Unwrap() error { return e.Kind }

func missingPunch(slot PunchType) PunchError {
	return PunchError{
		Slot:    slot,
		Kind:    ErrMissingPunch,
		Message: fmt.Sprintf("missing punch: %s not recorded", slot),
	}
}

func invalidSequence(slot PunchType, detail string) PunchError {
	return PunchError{
		Slot:    slot,
		Kind:    ErrInvalidSequence,
		Message: fmt.Sprintf("invalid sequence: %s %s", slot, detail),
	}
}

// =============================================================================
// CONFIGURATION ERRORS - fatal to the batch
// =============================================================================

// ConfigurationError carries which setting was unusable. It wraps
// ErrConfiguration so callers can abort on errors.Is(err, ErrConfiguration).
type ConfigurationError struct {
	Setting string
	Detail  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Setting, e.Detail)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsPunchError reports whether the error is a locally-recoverable punch
// problem rather than a batch-fatal fault.
func IsPunchError(err error) bool {
	return errors.Is(err, ErrMissingPunch) || errors.Is(err, ErrInvalidSequence)
}

// IsFatal reports whether the error must abort the whole batch.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
