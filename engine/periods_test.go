/*
periods_test.go - Work/break interval construction

COVERS:
- period splitting around breaks
- display rounding applied only at the day's edges
- midnight wrap normalization
- break widening in the accounted interval set
- open day (clock-in without clock-out)
*/
package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func legalDay(punches ...PunchEvent) []PunchEvent {
	v := ValidateSequence(punches)
	return v.Legal
}

func TestBuildPeriods_SplitAroundLunch(t *testing.T) {
	// GIVEN: 08:58 in, 12:00 lunch out, 12:45 lunch in, 17:32 out
	// WHEN: building periods
	// THEN: two periods; only the first start is display-rounded (09:00),
	//       the internal boundaries and the final end stay raw

	out := BuildPeriods(legalDay(
		punch(PunchClockIn, 8, 58),
		punch(PunchLunchOut1, 12, 0),
		punch(PunchLunchIn1, 12, 45),
		punch(PunchClockOut, 17, 32),
	))

	require.Len(t, out.Periods, 2)
	require.Len(t, out.Breaks, 1)

	assert.Equal(t, seqDate.At(9, 0), out.Periods[0].Start, "first start is grid-snapped")
	assert.Equal(t, seqDate.At(12, 0), out.Periods[0].End, "break-out boundary stays raw")
	assert.True(t, out.Periods[0].IsFirstOfDay)

	assert.Equal(t, seqDate.At(12, 45), out.Periods[1].Start, "break-in boundary stays raw")
	assert.Equal(t, seqDate.At(17, 32), out.Periods[1].End, "end is never rounded")
	assert.True(t, out.Periods[1].IsLastOfDay)

	assert.Equal(t, seqDate.At(12, 0), out.Breaks[0].Start)
	assert.Equal(t, 45, out.Breaks[0].Minutes())
	assert.Nil(t, out.OpenStart)
}

func TestBuildPeriods_MidnightWrap(t *testing.T) {
	// GIVEN: 22:00 in, 02:00 out with both stamps on the same clock
	// WHEN: building periods
	// THEN: the end gains 24h and the period is 240 minutes

	out := BuildPeriods([]PunchEvent{
		punch(PunchClockIn, 22, 0),
		punch(PunchClockOut, 2, 0),
	})

	require.Len(t, out.Periods, 1)
	assert.Equal(t, 240, out.Periods[0].Minutes())
	assert.Equal(t, seqDate.AddDays(1).At(2, 0), out.Periods[0].End)
}

func TestNormalizeWrap(t *testing.T) {
	start := seqDate.At(23, 30)
	end := seqDate.At(0, 15)
	assert.Equal(t, 45, int(normalizeWrap(start, end).Sub(start)/time.Minute))

	// Already ordered pairs pass through.
	assert.Equal(t, seqDate.At(10, 0), normalizeWrap(seqDate.At(9, 0), seqDate.At(10, 0)))
}

func TestBuildPeriods_OpenDay(t *testing.T) {
	// GIVEN: a clock-in with no clock-out
	// WHEN: building periods
	// THEN: no period is fabricated; the open start is surfaced instead

	out := BuildPeriods(legalDay(punch(PunchClockIn, 8, 58)))

	assert.Empty(t, out.Periods)
	require.NotNil(t, out.OpenStart)
	assert.Equal(t, seqDate.At(9, 0), *out.OpenStart, "open start carries the display rounding")
}

func TestAccountedPeriods_WidensShortBreak(t *testing.T) {
	// GIVEN: a 45-minute recorded lunch inside 09:00-17:32
	// WHEN: carving accounted intervals
	// THEN: the widened 60-minute window is removed, total is 452

	built := BuildPeriods(legalDay(
		punch(PunchClockIn, 8, 58),
		punch(PunchLunchOut1, 12, 0),
		punch(PunchLunchIn1, 12, 45),
		punch(PunchClockOut, 17, 32),
	))
	accounted := AccountedPeriods(built.Periods, built.Breaks)

	require.Len(t, accounted, 2)
	assert.Equal(t, seqDate.At(12, 0), accounted[0].End)
	assert.Equal(t, seqDate.At(13, 0), accounted[1].Start, "afternoon resumes after the widened window")
	assert.Equal(t, 452, TotalMinutes(accounted))
}

func TestAccountedPeriods_LongBreakKeptAsIs(t *testing.T) {
	// GIVEN: a 90-minute recorded break
	// WHEN: carving accounted intervals
	// THEN: no widening happens; only the recorded window is removed

	built := BuildPeriods(legalDay(
		punch(PunchClockIn, 9, 0),
		punch(PunchLunchOut1, 12, 0),
		punch(PunchLunchIn1, 13, 30),
		punch(PunchClockOut, 18, 0),
	))
	accounted := AccountedPeriods(built.Periods, built.Breaks)

	assert.Equal(t, (3*60)+(4*60+30), TotalMinutes(accounted))
}

func TestAccountedPeriods_NoBreaks(t *testing.T) {
	built := BuildPeriods(legalDay(
		punch(PunchClockIn, 9, 0),
		punch(PunchClockOut, 17, 0),
	))
	accounted := AccountedPeriods(built.Periods, built.Breaks)
	assert.Equal(t, built.Periods, accounted)
}

func TestSubtract_EdgeFlagsSurvive(t *testing.T) {
	// GIVEN: a first-and-last period with a break in the middle
	// WHEN: subtracting
	// THEN: the left fragment keeps IsFirstOfDay, the right keeps IsLastOfDay

	p := WorkPeriod{
		Start:        seqDate.At(9, 0),
		End:          seqDate.At(17, 0),
		IsFirstOfDay: true,
		IsLastOfDay:  true,
	}
	segs := subtract(p, BreakPeriod{Start: seqDate.At(12, 0), End: seqDate.At(13, 0)})

	require.Len(t, segs, 2)
	assert.True(t, segs[0].IsFirstOfDay)
	assert.False(t, segs[0].IsLastOfDay)
	assert.True(t, segs[1].IsLastOfDay)
}

func TestBreakPeriod_Widened(t *testing.T) {
	b := BreakPeriod{Start: seqDate.At(12, 0), End: seqDate.At(12, 45)}
	assert.Equal(t, MinBreakBlankingMinutes, b.Widened().Minutes())

	long := BreakPeriod{Start: seqDate.At(12, 0), End: seqDate.At(13, 30)}
	assert.Equal(t, long, long.Widened())
}
