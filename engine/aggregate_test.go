/*
aggregate_test.go - Half-month and monthly summation

COVERS:
- first-half/second-half split at day 16
- halves always summing to the full month
- error days excluded from totals but counted
- idempotent regeneration
*/
package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func completedDay(id EmployeeID, day int, hours int) DayResult {
	date := NewWorkDate(2026, time.March, day)
	minutes := hours * 60
	res := DayResult{
		EmployeeID: id,
		WorkDate:   date,
		Complete:   true,
		Accounted: []WorkPeriod{{
			Start: date.At(9, 0),
			End:   date.At(9+hours, 0),
		}},
		Bands: BandMinutes{Day: minutes},
	}
	res.WorkMinutes[0] = minutes
	return res
}

func TestAggregateMonth_HalvesSumToFullMonth(t *testing.T) {
	// GIVEN: work on days 1, 16, 17 and 31
	// WHEN: aggregating
	// THEN: days 1+16 land in the first half, 17+31 in the second, and the
	//       two halves sum to the month

	days := []DayResult{
		completedDay("E001", 1, 8),
		completedDay("E001", 16, 8),
		completedDay("E001", 17, 8),
		completedDay("E001", 31, 8),
	}
	row := AggregateMonth(days, "E001", 2026, time.March, 480)

	assert.Equal(t, 4, row.WorkDays)
	assert.Equal(t, 960, row.FirstHalf.Total)
	assert.Equal(t, 960, row.SecondHalf.Total)
	assert.Equal(t, row.FirstHalf.Total+row.SecondHalf.Total, row.FullMonth.Total)
	assert.True(t, row.ActualWorkingHours.Equal(decimal.NewFromInt(32)))
	assert.True(t, row.StandardHours.Equal(decimal.NewFromInt(32)))
}

func TestAggregateMonth_ErrorDaysExcludedButCounted(t *testing.T) {
	// GIVEN: two clean days and one flagged day
	// WHEN: aggregating
	// THEN: the flagged day adds nothing to the totals but shows up in
	//       ErrorDays

	bad := completedDay("E001", 5, 8)
	bad.Complete = false
	bad.Errors = []PunchError{missingPunch(PunchClockOut)}

	days := []DayResult{
		completedDay("E001", 2, 8),
		bad,
		completedDay("E001", 20, 8),
	}
	row := AggregateMonth(days, "E001", 2026, time.March, 480)

	assert.Equal(t, 2, row.WorkDays)
	assert.Equal(t, 1, row.ErrorDays)
	assert.Equal(t, 960, row.FullMonth.Total)
}

func TestAggregateMonth_FiltersOtherEmployeesAndMonths(t *testing.T) {
	other := completedDay("E002", 3, 8)
	lastMonth := completedDay("E001", 3, 8)
	lastMonth.WorkDate = NewWorkDate(2026, time.February, 3)

	days := []DayResult{completedDay("E001", 3, 8), other, lastMonth}
	row := AggregateMonth(days, "E001", 2026, time.March, 480)

	assert.Equal(t, 1, row.WorkDays)
	assert.Equal(t, 480, row.FullMonth.Total)
}

func TestAggregateMonth_Idempotent(t *testing.T) {
	// GIVEN: the same day set in two different orders
	// WHEN: aggregating twice
	// THEN: the rows are byte-identical

	days := []DayResult{
		completedDay("E001", 1, 8),
		completedDay("E001", 16, 7),
		completedDay("E001", 25, 9),
	}
	reversed := []DayResult{days[2], days[1], days[0]}

	a := AggregateMonth(days, "E001", 2026, time.March, 480)
	b := AggregateMonth(reversed, "E001", 2026, time.March, 480)
	assert.Equal(t, a, b)
}

func TestAggregateMonth_EmptyMonth(t *testing.T) {
	row := AggregateMonth(nil, "E001", 2026, time.March, 480)
	assert.Equal(t, 0, row.WorkDays)
	assert.True(t, row.ActualWorkingHours.IsZero())
	assert.True(t, row.StandardHours.IsZero())
}

func TestWorkDate_FirstHalfBoundary(t *testing.T) {
	assert.True(t, NewWorkDate(2026, time.March, 16).FirstHalf())
	assert.False(t, NewWorkDate(2026, time.March, 17).FirstHalf())
}

func TestCountAttendance(t *testing.T) {
	// GIVEN: a complete day, an error day with punches, and an empty day
	// WHEN: counting
	// THEN: 2 with attendance, 1 complete, 1 with errors

	complete := completedDay("E001", 2, 8)
	complete.Slots[PunchClockIn].Recorded = true

	flagged := DayResult{EmployeeID: "E002", WorkDate: NewWorkDate(2026, time.March, 2)}
	flagged.Slots[PunchClockIn].Recorded = true
	flagged.Errors = []PunchError{missingPunch(PunchClockOut)}

	empty := DayResult{EmployeeID: "E003", WorkDate: NewWorkDate(2026, time.March, 2)}
	empty.Errors = []PunchError{missingPunch(PunchClockIn)}

	c := CountAttendance([]DayResult{complete, flagged, empty})
	assert.Equal(t, 2, c.WithAttendance)
	assert.Equal(t, 1, c.Complete)
	assert.Equal(t, 1, c.WithErrors, "the punchless day is absent, not erroneous")
}
