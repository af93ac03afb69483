/*
rounding.go - Display and payroll rounding rules

PURPOSE:
  Two independent rounding mechanisms live here and must not be conflated:

  1. DISPLAY rounding (30-minute grid):
     - role=start: minute-of-hour m maps to one of three outcomes:
       m in [0,15)  -> :00 of the same hour
       m in [15,45) -> :30 of the same hour
       m in [45,60) -> :00 of the next hour
     - role=end: identity. Departure times are never rounded in the
       worker's favor; they are used at full precision for totals and only
       truncated to the grid cell containing them when drawn.

  2. PAYROLL rounding (configurable granularity):
     Every punch is floored to each granularity in {1,5,10,15} minutes,
     producing four parallel rounded values stored alongside the raw value.

INVARIANT:
  round(round(t)) == round(t) for both mechanisms at every granularity.
*/
package engine

import "time"

// =============================================================================
// GRANULARITIES
// =============================================================================

// Granularities are the payroll rounding steps, in minutes. Every punch
// carries a rounded value for each of them.
var Granularities = [...]int{1, 5, 10, 15}

// NumGranularities is the number of parallel payroll-rounded values.
const NumGranularities = len(Granularities)

// RoundingConfig selects which payroll granularity a batch reports with.
// It is read once per batch and passed by value; changing it never alters
// stored punches, only future derived values.
type RoundingConfig struct {
	Granularity int
}

// Validate rejects granularities outside the supported set.
func (c RoundingConfig) Validate() error {
	for _, g := range Granularities {
		if c.Granularity == g {
			return nil
		}
	}
	return &ConfigurationError{
		Setting: "rounding.granularity",
		Detail:  "must be one of 1, 5, 10 or 15 minutes",
	}
}

// GranularityIndex returns the slot of the configured granularity within
// Granularities. Validate must have accepted the config first.
func (c RoundingConfig) GranularityIndex() int {
	for i, g := range Granularities {
		if c.Granularity == g {
			return i
		}
	}
	return 0
}

// =============================================================================
// DISPLAY ROUNDING - 30-minute grid, role-aware
// =============================================================================

// RoundStart snaps a start-of-work timestamp onto the 30-minute display
// grid. Early arrival is forgiven up to the grid boundary; see the package
// table above for the mapping.
func RoundStart(t time.Time) time.Time {
	t = t.Truncate(time.Minute)
	m := t.Minute()
	base := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	switch {
	case m < 15:
		return base
	case m < 45:
		return base.Add(30 * time.Minute)
	default:
		return base.Add(time.Hour)
	}
}

// RoundEnd is the identity: end-of-period timestamps are never rounded.
// It exists so call sites spell out which role a timestamp plays.
func RoundEnd(t time.Time) time.Time {
	return t.Truncate(time.Minute)
}

// =============================================================================
// PAYROLL ROUNDING - floor to configured multiple
// =============================================================================

// FloorToGranularity floors a timestamp's minute-of-hour to a multiple of g
// minutes. Policy decision: flooring applies to every punch slot uniformly,
// matching the contractual reading that payroll times are "floored".
func FloorToGranularity(t time.Time, g int) time.Time {
	t = t.Truncate(time.Minute)
	if g <= 1 {
		return t
	}
	m := t.Minute()
	return t.Add(-time.Duration(m%g) * time.Minute)
}

// RoundAll produces the four parallel payroll-rounded values for one punch.
func RoundAll(t time.Time) [NumGranularities]time.Time {
	var out [NumGranularities]time.Time
	for i, g := range Granularities {
		out[i] = FloorToGranularity(t, g)
	}
	return out
}
