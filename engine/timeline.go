/*
timeline.go - 48-slot half-hour presence grid

PURPOSE:
  Projects work intervals onto a fixed 48-cell half-hour grid anchored at
  03:00, so a full business day runs 03:00 -> 03:00 the next day. Slot 0 is
  03:00-03:30. Used for Gantt-style line/day reports.

SLOT MAPPING:
  slot  = hour*2 + (minute >= 30 ? 1 : 0)
  index = (slot - 6 + 48) mod 48

RULES:
  - A period marks slots from its start slot up to but excluding the slot
    containing its end: present up to but not including the departure slot.
  - A sub-30-minute period whose start and end land on the same slot still
    marks that single slot.
  - A day with a clock-in but no clock-out marks only the clock-in's slot.
  - Break slots are forced back to absent after all periods are projected;
    breaks always win.
*/
package engine

import "time"

// TimelineSlots is the grid length; always exactly 48.
const TimelineSlots = 48

// timelineAnchorSlot offsets the grid so index 0 is 03:00.
const timelineAnchorSlot = 6

// Timeline is the boolean presence grid with its parallel label array.
type Timeline struct {
	Present [TimelineSlots]bool
	Labels  [TimelineSlots]string
}

// slotLabels are the eight day-period names, each covering a 6-slot
// (three hour) run starting from the 03:00 anchor.
var slotLabels = [...]string{
	"predawn",       // 03:00-06:00
	"early morning", // 06:00-09:00
	"morning",       // 09:00-12:00
	"daytime",       // 12:00-15:00
	"afternoon",     // 15:00-18:00
	"evening",       // 18:00-21:00
	"night",         // 21:00-24:00
	"midnight",      // 00:00-03:00
}

// SlotIndex maps an instant to its grid index.
func SlotIndex(t time.Time) int {
	slot := t.Hour()*2 + minuteHalf(t.Minute())
	return (slot - timelineAnchorSlot + TimelineSlots) % TimelineSlots
}

func minuteHalf(m int) int {
	if m >= 30 {
		return 1
	}
	return 0
}

// SlotClock returns the clock time (hour, half) a grid index represents.
func SlotClock(index int) (hour, minute int) {
	slot := (index + timelineAnchorSlot) % TimelineSlots
	return slot / 2, (slot % 2) * 30
}

// ProjectTimeline renders the day's presence grid. Work periods are marked
// first, then every break's widened window is blanked over them. openStart,
// when non-nil, is a clock-in still awaiting its clock-out.
func ProjectTimeline(periods []WorkPeriod, breaks []BreakPeriod, openStart *time.Time) Timeline {
	var tl Timeline
	for i := range tl.Labels {
		tl.Labels[i] = slotLabels[i/6]
	}

	for _, p := range periods {
		markRange(&tl, p.Start, p.End, true)
	}
	if openStart != nil {
		tl.Present[SlotIndex(*openStart)] = true
	}
	for _, b := range breaks {
		w := b.Widened()
		markRange(&tl, w.Start, w.End, false)
	}
	return tl
}

// markRange walks start-slot up to but excluding end-slot, wrapping at the
// 03:00 anchor. An inverted same-slot range still touches its single slot.
func markRange(tl *Timeline, start, end time.Time, present bool) {
	from := SlotIndex(start)
	to := SlotIndex(end)
	if from == to {
		tl.Present[from] = present
		return
	}
	for i, steps := from, 0; i != to && steps < TimelineSlots; i, steps = (i+1)%TimelineSlots, steps+1 {
		tl.Present[i] = present
	}
}

// PresentSlots counts marked cells, mostly for reports and tests.
func (t Timeline) PresentSlots() int {
	n := 0
	for _, p := range t.Present {
		if p {
			n++
		}
	}
	return n
}
