/*
timeline_test.go - 48-slot presence grid projection

COVERS:
- anchor math: 03:00 is index 0, wrap across midnight
- exclusive end-slot marking
- sub-slot periods still mark one slot
- break blanking always wins over presence
- open day marks only the clock-in slot
*/
package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotIndex_AnchorMath(t *testing.T) {
	// GIVEN: clock times around the 03:00 anchor
	// WHEN: mapping to grid indexes
	// THEN: 03:00->0, 03:30->1, 09:00->12, 00:00->42, 02:30->47

	cases := []struct {
		hour, minute, want int
	}{
		{3, 0, 0},
		{3, 30, 1},
		{3, 29, 0},
		{9, 0, 12},
		{12, 0, 18},
		{0, 0, 42},
		{2, 30, 47},
		{22, 0, 38},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, SlotIndex(seqDate.At(c.hour, c.minute)), "%02d:%02d", c.hour, c.minute)
	}
}

func TestSlotClock_InverseOfSlotIndex(t *testing.T) {
	for i := 0; i < TimelineSlots; i++ {
		hour, minute := SlotClock(i)
		assert.Equal(t, i, SlotIndex(seqDate.At(hour, minute)), "index %d", i)
	}
}

func TestProjectTimeline_MarksUpToExclusiveEnd(t *testing.T) {
	// GIVEN: one period 09:00-12:00
	// WHEN: projecting
	// THEN: slots 12..17 present, the 12:00 slot (18) absent

	tl := ProjectTimeline([]WorkPeriod{{
		Start: seqDate.At(9, 0),
		End:   seqDate.At(12, 0),
	}}, nil, nil)

	for i := 12; i < 18; i++ {
		assert.True(t, tl.Present[i], "slot %d", i)
	}
	assert.False(t, tl.Present[18], "departure slot stays absent")
	assert.Equal(t, 6, tl.PresentSlots())
}

func TestProjectTimeline_SubSlotPeriod(t *testing.T) {
	// GIVEN: a ten-minute period inside one half-hour cell
	// WHEN: projecting
	// THEN: that single cell is marked

	tl := ProjectTimeline([]WorkPeriod{{
		Start: seqDate.At(9, 5),
		End:   seqDate.At(9, 15),
	}}, nil, nil)

	assert.Equal(t, 1, tl.PresentSlots())
	assert.True(t, tl.Present[SlotIndex(seqDate.At(9, 5))])
}

func TestProjectTimeline_BreakBlankingWins(t *testing.T) {
	// GIVEN: 09:00-17:32 periods with a 12:00-12:45 break
	// WHEN: projecting
	// THEN: the widened 12:00-13:00 window is blank even though the
	//       afternoon period resumed at 12:45

	built := BuildPeriods(legalDay(
		punch(PunchClockIn, 8, 58),
		punch(PunchLunchOut1, 12, 0),
		punch(PunchLunchIn1, 12, 45),
		punch(PunchClockOut, 17, 32),
	))
	tl := ProjectTimeline(built.Periods, built.Breaks, built.OpenStart)

	assert.False(t, tl.Present[SlotIndex(seqDate.At(12, 0))], "12:00 slot blanked")
	assert.False(t, tl.Present[SlotIndex(seqDate.At(12, 30))], "12:30 slot blanked")
	assert.True(t, tl.Present[SlotIndex(seqDate.At(13, 0))], "13:00 slot present")
	assert.True(t, tl.Present[SlotIndex(seqDate.At(11, 30))])
	// 17:32 lands in the 17:30 slot; presence runs up to but not into it.
	assert.True(t, tl.Present[SlotIndex(seqDate.At(17, 0))])
	assert.False(t, tl.Present[SlotIndex(seqDate.At(17, 30))])
}

func TestProjectTimeline_OpenDayMarksOneSlot(t *testing.T) {
	// GIVEN: a clock-in with no clock-out
	// WHEN: projecting
	// THEN: only the clock-in's slot is marked

	built := BuildPeriods(legalDay(punch(PunchClockIn, 8, 58)))
	tl := ProjectTimeline(built.Periods, built.Breaks, built.OpenStart)

	assert.Equal(t, 1, tl.PresentSlots())
	assert.True(t, tl.Present[SlotIndex(seqDate.At(9, 0))])
}

func TestProjectTimeline_WrapsAcrossMidnight(t *testing.T) {
	// GIVEN: a 22:00-02:00 night period
	// WHEN: projecting
	// THEN: presence wraps through the midnight cells without touching the
	//       daytime cells

	end := seqDate.AddDays(1).At(2, 0)
	tl := ProjectTimeline([]WorkPeriod{{
		Start: seqDate.At(22, 0),
		End:   end,
	}}, nil, nil)

	assert.True(t, tl.Present[SlotIndex(seqDate.At(23, 30))])
	assert.True(t, tl.Present[SlotIndex(seqDate.At(0, 0))])
	assert.True(t, tl.Present[SlotIndex(seqDate.At(1, 30))])
	assert.False(t, tl.Present[SlotIndex(seqDate.At(2, 0))])
	assert.False(t, tl.Present[SlotIndex(seqDate.At(12, 0))])
	assert.Equal(t, 8, tl.PresentSlots())
}

func TestProjectTimeline_Labels(t *testing.T) {
	// GIVEN: an empty projection
	// WHEN: reading labels
	// THEN: each six-slot run carries its day-period name

	tl := ProjectTimeline(nil, nil, nil)

	require.Equal(t, "predawn", tl.Labels[0])
	assert.Equal(t, "early morning", tl.Labels[6])
	assert.Equal(t, "morning", tl.Labels[12])
	assert.Equal(t, "midnight", tl.Labels[42])
	assert.Equal(t, "midnight", tl.Labels[47])
}

func TestMarkRange_InvertedSameSlot(t *testing.T) {
	// GIVEN: an inverted range whose endpoints share a slot
	// WHEN: marking
	// THEN: that single slot is still touched instead of walking the grid

	var tl Timeline
	at := seqDate.At(10, 10)
	markRange(&tl, at.Add(5*time.Minute), at, true)
	assert.Equal(t, 1, tl.PresentSlots())
}
