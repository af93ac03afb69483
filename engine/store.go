/*
store.go - Persistence interfaces at the engine boundary

PURPOSE:
  Defines the contract between the computation core and whatever holds the
  master data and punches. The engine never touches a database itself; the
  batch runner and API assemble DayInputs through these interfaces.

IMMUTABILITY CONTRACT:
  Punch events are immutable once recorded. Corrections replace the whole
  event set for a day; no store implementation exposes an update of a
  single timestamp the engine consumes.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite store
  - engine/store:  in-memory store for tests and scenarios
*/
package engine

import (
	"context"
	"time"
)

// =============================================================================
// PUNCH STORE - raw attendance events
// =============================================================================

// PunchStore persists raw punch events per employee/day.
type PunchStore interface {
	// RecordPunch appends one event. Events are never updated in place.
	RecordPunch(ctx context.Context, ev PunchEvent) error

	// ReplaceDay swaps the full event set for one employee/day. This is the
	// only correction mechanism.
	ReplaceDay(ctx context.Context, id EmployeeID, date WorkDate, evs []PunchEvent) error

	// LoadDay returns the (unordered) events for one employee/day.
	LoadDay(ctx context.Context, id EmployeeID, date WorkDate) ([]PunchEvent, error)

	// LoadMonth returns all events for an employee in a month, keyed by day.
	LoadMonth(ctx context.Context, id EmployeeID, year int, month time.Month) (map[WorkDate][]PunchEvent, error)
}

// =============================================================================
// MASTER STORE - employees, positions, shifts, settings, config
// =============================================================================

// MasterStore serves the read-mostly master data a batch loads once.
type MasterStore interface {
	GetEmployee(ctx context.Context, id EmployeeID) (Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	SaveEmployee(ctx context.Context, e Employee) error

	GetPosition(ctx context.Context, id PositionID) (Position, error)
	SavePosition(ctx context.Context, p Position) error

	// GetShift returns the shift an employee is scheduled for on a date.
	GetShift(ctx context.Context, id EmployeeID, date WorkDate) (ScheduledShift, error)
	SaveShift(ctx context.Context, id EmployeeID, date WorkDate, s ScheduledShift) error

	ListAllowanceSettings(ctx context.Context) ([]AllowanceSetting, error)
	SaveAllowanceSetting(ctx context.Context, s AllowanceSetting) error

	GetRoundingConfig(ctx context.Context) (RoundingConfig, error)
	SaveRoundingConfig(ctx context.Context, c RoundingConfig) error
}

// Store combines both halves; the SQLite and memory stores implement it.
type Store interface {
	PunchStore
	MasterStore
}

// ResolveEligibility loads an employee's effective eligibility: the position
// default with any per-employee overrides applied.
func ResolveEligibility(ctx context.Context, s MasterStore, e Employee) (AllowanceEligibility, error) {
	pos, err := s.GetPosition(ctx, e.PositionID)
	if err != nil {
		return AllowanceEligibility{}, err
	}
	return e.Eligibility.Resolve(pos.Eligibility), nil
}
