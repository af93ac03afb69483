/*
aggregate.go - Half-month and monthly summation

PURPOSE:
  Sums per-day results across the first-half (1-16), second-half (17-end)
  and full-month windows for one employee. Pure summation: every run
  recomputes from the full day set, so regenerating a report is idempotent
  byte for byte.

ERROR DAYS:
  Days flagged with punch errors are excluded from band and hour totals but
  counted in ErrorDays, so checklist views can report "N employees, M with
  errors" consistently against zero-filled rows.
*/
package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var minutesPerHour = decimal.NewFromInt(60)

func minutesToHours(m int) decimal.Decimal {
	return decimal.NewFromInt(int64(m)).Div(minutesPerHour)
}

// AggregateMonth folds one employee's day results for a month into a single
// reporting row. Days outside the given month are ignored; the input order
// does not affect the output.
func AggregateMonth(days []DayResult, employeeID EmployeeID, year int, month time.Month, scheduledMinutesPerDay int) AggregateRow {
	row := AggregateRow{
		EmployeeID: employeeID,
		Year:       year,
		Month:      month,
	}

	sorted := make([]DayResult, 0, len(days))
	for _, d := range days {
		if d.EmployeeID == employeeID && d.WorkDate.Year == year && d.WorkDate.Month == month {
			sorted = append(sorted, d)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].WorkDate.Day < sorted[j].WorkDate.Day
	})

	totalMinutes := 0
	overtimeMinutes := 0
	for _, d := range sorted {
		if !d.Complete {
			if len(d.Errors) > 0 {
				row.ErrorDays++
			}
			continue
		}
		if !d.HasWork() {
			continue
		}
		row.WorkDays++
		totalMinutes += d.Bands.Total()
		overtimeMinutes += d.Minutes.Overtime
		row.AllowanceTotal = row.AllowanceTotal.Add(d.Amounts.Total)

		if d.WorkDate.FirstHalf() {
			row.FirstHalf.add(d.Bands)
		} else {
			row.SecondHalf.add(d.Bands)
		}
		row.FullMonth.add(d.Bands)
	}

	row.StandardHours = minutesToHours(row.WorkDays * scheduledMinutesPerDay)
	row.ActualWorkingHours = minutesToHours(totalMinutes)
	row.OvertimeHours = minutesToHours(overtimeMinutes)
	return row
}

// AttendanceCounts summarizes a day set for dashboard views: how many
// employees punched at all vs. how many have a complete legal sequence.
type AttendanceCounts struct {
	WithAttendance int
	Complete       int
	WithErrors     int
}

// CountAttendance tallies one day's results across employees.
func CountAttendance(days []DayResult) AttendanceCounts {
	var c AttendanceCounts
	for _, d := range days {
		punched := false
		for _, s := range d.Slots {
			if s.Recorded {
				punched = true
				break
			}
		}
		if punched {
			c.WithAttendance++
		}
		if d.Complete {
			c.Complete++
		} else if len(d.Errors) > 0 && punched {
			c.WithErrors++
		}
	}
	return c
}
