/*
Package engine implements the attendance time-accounting core.

PURPOSE:
  This package turns a day's raw punch timestamps into rounded clock values,
  contiguous work intervals, a fixed-resolution presence timeline, and
  allowance-eligible minute buckets, then aggregates those across half-month
  and full-month windows for payroll-adjacent reporting.

KEY CONCEPTS IN THIS FILE (types.go):
  - PunchType/PunchEvent: the six fixed attendance actions and their records
  - WorkDate: a calendar day identifying one attendance sheet
  - WorkPeriod/BreakPeriod: contiguous intervals derived from punches
  - ScheduledShift: the baseline against which overtime is measured
  - AllowanceEligibility/AllowanceSetting: per-employee gates and money rules
  - DayInput/DayResult: the unit of computation (one employee, one day)

DESIGN PRINCIPLES:
  1. Purity: every stage is a function of its inputs plus read-only config
  2. Reproducibility: rounding and bucket boundaries are contractually exact
  3. Precision: uses decimal.Decimal for all monetary amounts
  4. Type Safety: a closed PunchType enum replaces string-tag dispatch

SEE ALSO:
  - rounding.go: display and payroll rounding rules
  - sequence.go: punch ordering and state-machine validation
  - periods.go: work/break interval construction
  - timeline.go: 48-slot presence grid projection
  - allowance.go: time-band minute classification and money
  - aggregate.go: half-month and monthly summation
*/
package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type PositionID string
type LineID string
type FactoryID string

// =============================================================================
// PUNCH TYPES - the six fixed attendance actions
// =============================================================================

// PunchType identifies one of the six attendance actions. The set is closed:
// every switch over PunchType in this package handles all six slots so adding
// a slot is a compile-visible change.
type PunchType int

const (
	PunchClockIn PunchType = iota
	PunchLunchOut1
	PunchLunchIn1
	PunchLunchOut2
	PunchLunchIn2
	PunchClockOut

	// NumPunchTypes is the number of punch slots on an attendance sheet.
	NumPunchTypes = int(PunchClockOut) + 1
)

func (p PunchType) String() string {
	switch p {
	case PunchClockIn:
		return "clock_in"
	case PunchLunchOut1:
		return "lunch_out_1"
	case PunchLunchIn1:
		return "lunch_in_1"
	case PunchLunchOut2:
		return "lunch_out_2"
	case PunchLunchIn2:
		return "lunch_in_2"
	case PunchClockOut:
		return "clock_out"
	default:
		return fmt.Sprintf("punch(%d)", int(p))
	}
}

// ParsePunchType converts a wire/storage name back to a PunchType.
func ParsePunchType(s string) (PunchType, error) {
	for p := PunchClockIn; p <= PunchClockOut; p++ {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown punch type %q", s)
}

// IsBreakOut reports whether this punch opens a break.
func (p PunchType) IsBreakOut() bool { return p == PunchLunchOut1 || p == PunchLunchOut2 }

// IsBreakIn reports whether this punch closes a break.
func (p PunchType) IsBreakIn() bool { return p == PunchLunchIn1 || p == PunchLunchIn2 }

// =============================================================================
// WORK DATE - calendar day identifying one attendance sheet
// =============================================================================

// WorkDate is the business day a punch belongs to. Punches before the shift's
// date boundary hour are attributed to the previous WorkDate by the caller;
// the engine only ever sees already-attributed day sets.
type WorkDate struct {
	Year  int
	Month time.Month
	Day   int
}

func NewWorkDate(year int, month time.Month, day int) WorkDate {
	return WorkDate{Year: year, Month: month, Day: day}
}

// At returns the instant at the given clock time on this work date.
func (d WorkDate) At(hour, minute int) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hour, minute, 0, 0, time.UTC)
}

func (d WorkDate) Time() time.Time      { return d.At(0, 0) }
func (d WorkDate) AddDays(n int) WorkDate {
	t := d.Time().AddDate(0, 0, n)
	return WorkDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}
func (d WorkDate) Weekday() time.Weekday { return d.Time().Weekday() }
func (d WorkDate) String() string        { return d.Time().Format("2006-01-02") }

// FirstHalf reports whether the date falls in the 1-16 reporting window.
func (d WorkDate) FirstHalf() bool { return d.Day <= firstHalfLastDay }

// =============================================================================
// PUNCH EVENT - immutable raw record
// =============================================================================

// PunchEvent is a single recorded attendance action. Events are immutable
// once recorded; corrections are a new event set for the same day, never an
// in-place mutation of timestamps the engine consumes.
type PunchEvent struct {
	ID         uuid.UUID
	EmployeeID EmployeeID
	WorkDate   WorkDate
	Type       PunchType
	At         time.Time
}

// =============================================================================
// WORK / BREAK PERIODS
// =============================================================================

// WorkPeriod is a contiguous working interval. After midnight-wrap
// normalization End is never before Start, and periods within a day are
// non-overlapping and time-ordered.
type WorkPeriod struct {
	Start        time.Time
	End          time.Time
	IsFirstOfDay bool
	IsLastOfDay  bool
}

// Minutes returns the period length in whole minutes.
func (w WorkPeriod) Minutes() int {
	return int(w.End.Sub(w.Start) / time.Minute)
}

// BreakPeriod is the gap between a paired out/in punch.
type BreakPeriod struct {
	Start time.Time
	End   time.Time
}

func (b BreakPeriod) Minutes() int { return int(b.End.Sub(b.Start) / time.Minute) }

// MinBreakBlankingMinutes is the floor applied to a break when blanking the
// timeline and carving accounting intervals: a shorter recorded break is
// widened to this length.
const MinBreakBlankingMinutes = 60

// Widened returns the break stretched to at least MinBreakBlankingMinutes.
func (b BreakPeriod) Widened() BreakPeriod {
	if b.Minutes() >= MinBreakBlankingMinutes {
		return b
	}
	return BreakPeriod{Start: b.Start, End: b.Start.Add(MinBreakBlankingMinutes * time.Minute)}
}

// =============================================================================
// SCHEDULED SHIFT - baseline for overtime and holiday classification
// =============================================================================

// ScheduledShift describes the shift an employee was scheduled for on a given
// work date. StartMinute is minutes after midnight on the work date; a shift
// whose start plus duration passes 24:00 crosses into the next calendar day.
type ScheduledShift struct {
	StartMinute     int  // 0..1439, clock time the shift begins
	DurationMinutes int  // scheduled length including paid time only
	BreakMinutes    int  // scheduled unpaid break allowance
	BoundaryHour    int  // punches before this hour belong to the previous day
	DayOff          bool // scheduled day off: any work is holiday work
}

// Window returns the absolute shift interval anchored on the work date.
func (s ScheduledShift) Window(d WorkDate) (start, end time.Time) {
	start = d.Time().Add(time.Duration(s.StartMinute) * time.Minute)
	end = start.Add(time.Duration(s.DurationMinutes) * time.Minute)
	return start, end
}

// StartsInNightBand reports whether the scheduled start falls in the night
// band, which qualifies the whole day for the night-shift allowance.
func (s ScheduledShift) StartsInNightBand() bool {
	return BandFor(s.StartMinute) == BandNight
}

// =============================================================================
// ELIGIBILITY - per-employee allowance gates
// =============================================================================

// AllowanceEligibility is the set of independent gates deciding whether each
// allowance category may accrue at all. Values are inherited from a
// position-level default and overridable per employee.
type AllowanceEligibility struct {
	Overtime    bool
	NightWork   bool
	HolidayWork bool
	EarlyWork   bool
	NightShift  bool
}

// EligibilityOverride carries optional per-employee overrides; nil fields
// fall through to the position default.
type EligibilityOverride struct {
	Overtime    *bool
	NightWork   *bool
	HolidayWork *bool
	EarlyWork   *bool
	NightShift  *bool
}

// Resolve layers the override on top of the position default.
func (o EligibilityOverride) Resolve(base AllowanceEligibility) AllowanceEligibility {
	out := base
	if o.Overtime != nil {
		out.Overtime = *o.Overtime
	}
	if o.NightWork != nil {
		out.NightWork = *o.NightWork
	}
	if o.HolidayWork != nil {
		out.HolidayWork = *o.HolidayWork
	}
	if o.EarlyWork != nil {
		out.EarlyWork = *o.EarlyWork
	}
	if o.NightShift != nil {
		out.NightShift = *o.NightShift
	}
	return out
}

// =============================================================================
// ALLOWANCE SETTINGS - read-only money rules
// =============================================================================

type AllowanceType string

const (
	AllowanceOvertime   AllowanceType = "overtime"
	AllowanceNightWork  AllowanceType = "night_work"
	AllowanceHoliday    AllowanceType = "holiday_work"
	AllowanceEarlyWork  AllowanceType = "early_work"
	AllowanceNightShift AllowanceType = "night_shift"
)

type CalculationType string

const (
	CalcFixed CalculationType = "fixed" // fixed amount once per qualifying day
	CalcRate  CalculationType = "rate"  // rate% x base wage x hours
)

type ConditionType string

const (
	// ConditionNone applies the allowance to any non-zero minute total.
	ConditionNone ConditionType = ""
	// ConditionMinMinutes requires at least ConditionValue minutes in the
	// category before the allowance pays out.
	ConditionMinMinutes ConditionType = "min_minutes"
)

// AllowanceSetting converts a category's minute total into money. The engine
// never mutates settings; they are loaded once per batch.
type AllowanceSetting struct {
	Type             AllowanceType
	Calculation      CalculationType
	FixedAmount      decimal.Decimal
	Rate             decimal.Decimal // percentage, e.g. 25 for a 25% premium
	ConditionType    ConditionType
	ConditionValue   int
	LegalRequirement bool
	Active           bool
}

// =============================================================================
// MASTER RECORDS AT THE ENGINE BOUNDARY
// =============================================================================

// Employee carries the master-data fields the engine needs. Everything else
// about an employee lives with the persistence collaborator.
type Employee struct {
	ID          EmployeeID
	Name        string
	PositionID  PositionID
	FactoryID   FactoryID
	LineID      LineID
	HourlyWage  decimal.Decimal
	Eligibility EligibilityOverride
}

// Position supplies the eligibility defaults an employee inherits.
type Position struct {
	ID          PositionID
	Name        string
	Eligibility AllowanceEligibility
}

// =============================================================================
// DAY INPUT / DAY RESULT - the unit of computation
// =============================================================================

// DayInput is everything needed to account one employee's day. It is
// assembled by the caller from the persistence collaborator; the engine does
// no I/O of its own.
type DayInput struct {
	EmployeeID  EmployeeID
	WorkDate    WorkDate
	Punches     []PunchEvent // unordered; the validator sorts
	Shift       ScheduledShift
	Eligibility AllowanceEligibility
}

// PunchSlot is one of the six punch positions with its raw timestamp and the
// four parallel payroll-rounded values.
type PunchSlot struct {
	Recorded bool
	Raw      time.Time
	Rounded  [NumGranularities]time.Time // indexed as Granularities
}

// AllowanceMinutes are the eligibility-clamped minute totals per category.
type AllowanceMinutes struct {
	Regular     int
	Overtime    int
	Night       int
	EarlyWork   int
	HolidayWork int
	NightShift  int
}

// AllowanceAmounts are the monetary results per category.
type AllowanceAmounts struct {
	Overtime    decimal.Decimal
	Night       decimal.Decimal
	EarlyWork   decimal.Decimal
	HolidayWork decimal.Decimal
	NightShift  decimal.Decimal
	Total       decimal.Decimal
}

// DayResult is the full accounting output for one employee/day. Produced
// fresh on every computation; nothing here is incrementally updated.
type DayResult struct {
	EmployeeID EmployeeID
	WorkDate   WorkDate

	// Slots holds raw plus payroll-rounded times for each punch position.
	Slots [NumPunchTypes]PunchSlot

	// RoundedStart is the display-rounded first clock-in (role=start rule).
	RoundedStart time.Time

	Periods   []WorkPeriod
	Breaks    []BreakPeriod
	Accounted []WorkPeriod // periods minus widened breaks; drives totals

	// WorkMinutes is the accounted total at each payroll granularity.
	WorkMinutes [NumGranularities]int

	Bands    BandMinutes      // unclamped band split; conserves WorkMinutes[0]
	Minutes  AllowanceMinutes // eligibility-clamped category totals
	Amounts  AllowanceAmounts

	Timeline Timeline

	// Errors from sequence validation. A day with errors still carries
	// whatever partial figures could be derived; Complete is false and the
	// day is excluded from "complete" report counts.
	Errors   []PunchError
	Complete bool
}

// ErrorText renders the day's punch problems for checklist views.
func (r DayResult) ErrorText() string {
	if len(r.Errors) == 0 {
		return ""
	}
	s := r.Errors[0].Error()
	for _, e := range r.Errors[1:] {
		s += "; " + e.Error()
	}
	return s
}

// HasWork reports whether any accounted interval exists.
func (r DayResult) HasWork() bool { return len(r.Accounted) > 0 && r.WorkMinutes[0] > 0 }

// =============================================================================
// AGGREGATE ROW - per employee per reporting period
// =============================================================================

const firstHalfLastDay = 16

// BandTotals is one window's band split in minutes.
type BandTotals struct {
	Night   int
	Early   int
	Day     int
	Evening int
	Total   int
}

func (b *BandTotals) add(m BandMinutes) {
	b.Night += m.Night
	b.Early += m.Early
	b.Day += m.Day
	b.Evening += m.Evening
	b.Total += m.Total()
}

// AggregateRow is one employee's reporting row for a month: half-month and
// monthly band totals plus working/overtime hours. Always recomputed from the
// full day set so regeneration is idempotent.
type AggregateRow struct {
	EmployeeID    EmployeeID
	Year          int
	Month         time.Month
	WorkDays      int
	ErrorDays     int
	StandardHours decimal.Decimal

	FirstHalf  BandTotals
	SecondHalf BandTotals
	FullMonth  BandTotals

	ActualWorkingHours decimal.Decimal
	OvertimeHours      decimal.Decimal
	AllowanceTotal     decimal.Decimal
}
