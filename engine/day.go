/*
day.go - Per-day orchestration

PURPOSE:
  Runs one employee/day through every stage in order: validate and order
  punches, round, build intervals, project the timeline, classify minutes,
  price allowances. Each stage is a pure function; the Computer only carries
  the read-only configuration shared by a batch.

ERROR POLICY:
  Punch problems are recorded on the DayResult and never abort computation;
  the day still carries whatever partial figures could be derived.
  Configuration problems (bad granularity, unusable allowance settings)
  return an error and must abort the whole batch.
*/
package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Computer carries a batch's read-only configuration. It is safe for
// concurrent use: ComputeDay touches no shared mutable state.
type Computer struct {
	Rounding RoundingConfig
	Settings []AllowanceSetting
	Trace    Trace
}

// ComputeDay turns one employee/day's raw punches into the full accounting
// result. Calling it twice with the same input yields an identical result.
func (c *Computer) ComputeDay(in DayInput, hourlyWage decimal.Decimal) (DayResult, error) {
	if err := c.Rounding.Validate(); err != nil {
		return DayResult{}, err
	}

	res := DayResult{EmployeeID: in.EmployeeID, WorkDate: in.WorkDate}

	// Stage 1: order and validate.
	v := ValidateSequence(in.Punches)
	res.Errors = v.Errors
	res.Complete = len(in.Punches) > 0 && v.Complete()
	c.Trace.emit(in.EmployeeID, in.WorkDate, "validate",
		fmt.Sprintf("%d punches, %d errors", len(v.Ordered), len(v.Errors)))

	// Stage 2: per-slot raw and payroll-rounded values. First occurrence
	// wins; duplicates were already flagged by the validator.
	for _, ev := range v.Ordered {
		slot := &res.Slots[ev.Type]
		if slot.Recorded {
			continue
		}
		slot.Recorded = true
		slot.Raw = ev.At.Truncate(time.Minute)
		slot.Rounded = RoundAll(ev.At)
	}

	// Stage 3: intervals.
	built := BuildPeriods(v.Legal)
	res.Periods = built.Periods
	res.Breaks = built.Breaks
	if len(built.Periods) > 0 {
		res.RoundedStart = built.Periods[0].Start
	}
	res.Accounted = AccountedPeriods(built.Periods, built.Breaks)
	c.Trace.emit(in.EmployeeID, in.WorkDate, "periods",
		fmt.Sprintf("%d work, %d break, %d accounted", len(res.Periods), len(res.Breaks), len(res.Accounted)))

	// Stage 4: presence grid.
	res.Timeline = ProjectTimeline(built.Periods, built.Breaks, built.OpenStart)

	// Stage 5: totals at each payroll granularity over the accounted
	// intervals.
	for gi, g := range Granularities {
		total := 0
		for _, p := range res.Accounted {
			start := FloorToGranularity(p.Start, g)
			end := FloorToGranularity(p.End, g)
			if m := int(end.Sub(start) / time.Minute); m > 0 {
				total += m
			}
		}
		res.WorkMinutes[gi] = total
	}

	// Stage 6: band split and clamped category minutes.
	res.Bands, res.Minutes = ClassifyMinutes(res.Accounted, in.WorkDate, in.Shift, in.Eligibility)
	c.Trace.emit(in.EmployeeID, in.WorkDate, "classify",
		fmt.Sprintf("total=%dmin night=%d early=%d day=%d evening=%d",
			res.Bands.Total(), res.Bands.Night, res.Bands.Early, res.Bands.Day, res.Bands.Evening))

	// Stage 7: money. Unusable settings abort the batch.
	amounts, err := ComputeAmounts(res.Minutes, c.Settings, hourlyWage)
	if err != nil {
		return DayResult{}, err
	}
	res.Amounts = amounts
	c.Trace.emit(in.EmployeeID, in.WorkDate, "money", "allowances "+amounts.Total.String())

	return res, nil
}
