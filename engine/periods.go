/*
periods.go - Work and break interval construction

PURPOSE:
  Walks the validated punch sequence and emits the day's contiguous work
  intervals plus its break intervals. A clock-in opens a period; the first
  break-out closes it (morning); a break-in opens the next (afternoon); the
  clock-out closes the final period.

ROUNDING AT THE EDGES:
  The first period's start and the last period's end are the only two
  timestamps in the whole day eligible for role-aware display rounding:
  the start is snapped to the 30-minute grid, the end is kept at full
  precision. Internal boundaries (break transitions) stay raw.

MIDNIGHT CROSSING:
  If an end timestamp is numerically earlier than its paired start, 24
  hours are added before computing duration. Night shifts whose clock-out
  falls after 00:00 come out with a positive length.
*/
package engine

import "time"

// BuildResult is the period builder's output. OpenStart is set when the day
// has a clock-in but no clock-out yet; the timeline then marks only the
// clock-in's slot so presence is shown without overstating hours.
type BuildResult struct {
	Periods   []WorkPeriod
	Breaks    []BreakPeriod
	OpenStart *time.Time
}

// BuildPeriods consumes the legally-sequenced events from ValidateSequence
// and produces ordered, non-overlapping work and break intervals.
func BuildPeriods(legal []PunchEvent) BuildResult {
	var out BuildResult
	var current *time.Time
	var breakStart *time.Time

	closePeriod := func(end time.Time, last bool) {
		start := *current
		end = normalizeWrap(start, end)
		out.Periods = append(out.Periods, WorkPeriod{
			Start:        start,
			End:          end,
			IsFirstOfDay: len(out.Periods) == 0,
			IsLastOfDay:  last,
		})
		current = nil
	}

	for _, ev := range legal {
		at := ev.At.Truncate(time.Minute)

		switch ev.Type {
		case PunchClockIn:
			// The day's only start-rounded timestamp.
			t := RoundStart(at)
			current = &t

		case PunchLunchOut1, PunchLunchOut2:
			closePeriod(at, false)
			t := at
			breakStart = &t

		case PunchLunchIn1, PunchLunchIn2:
			if breakStart != nil {
				bs := *breakStart
				out.Breaks = append(out.Breaks, BreakPeriod{
					Start: bs,
					End:   normalizeWrap(bs, at),
				})
				breakStart = nil
			}
			t := at
			current = &t

		case PunchClockOut:
			closePeriod(RoundEnd(at), true)
		}
	}

	if current != nil {
		// Clock-in without clock-out: surface the open start instead of
		// fabricating a period.
		out.OpenStart = current
	}
	if len(out.Periods) > 0 {
		out.Periods[len(out.Periods)-1].IsLastOfDay = true
	}
	return out
}

// normalizeWrap adds 24 hours to an end that lands before its start, which
// happens when a raw punch pair straddles midnight.
func normalizeWrap(start, end time.Time) time.Time {
	if end.Before(start) {
		return end.Add(24 * time.Hour)
	}
	return end
}

// =============================================================================
// ACCOUNTING INTERVALS - periods minus widened breaks
// =============================================================================

// AccountedPeriods carves every widened break out of the work periods. The
// result is the interval set that drives minute totals, band classification
// and the conservation property: band minutes always sum to accounted
// minutes. Widening a short break therefore shows up both in the timeline
// blanking and in the day's totals.
func AccountedPeriods(periods []WorkPeriod, breaks []BreakPeriod) []WorkPeriod {
	out := make([]WorkPeriod, 0, len(periods))
	for _, p := range periods {
		segs := []WorkPeriod{p}
		for _, b := range breaks {
			w := b.Widened()
			var next []WorkPeriod
			for _, s := range segs {
				next = append(next, subtract(s, w)...)
			}
			segs = next
		}
		out = append(out, segs...)
	}
	return out
}

// subtract removes the break window from one segment, keeping flags on the
// surviving edges.
func subtract(s WorkPeriod, b BreakPeriod) []WorkPeriod {
	if !b.Start.Before(s.End) || !s.Start.Before(b.End) {
		return []WorkPeriod{s}
	}
	var out []WorkPeriod
	if s.Start.Before(b.Start) {
		out = append(out, WorkPeriod{
			Start:        s.Start,
			End:          b.Start,
			IsFirstOfDay: s.IsFirstOfDay,
		})
	}
	if b.End.Before(s.End) {
		out = append(out, WorkPeriod{
			Start:       b.End,
			End:         s.End,
			IsLastOfDay: s.IsLastOfDay,
		})
	}
	return out
}

// TotalMinutes sums the interval lengths.
func TotalMinutes(periods []WorkPeriod) int {
	total := 0
	for _, p := range periods {
		total += p.Minutes()
	}
	return total
}
