/*
sequence.go - Punch ordering and state-machine validation

PURPOSE:
  Orders a day's punch events, verifies the legal state sequence

    IDLE -> WORKING -> (ON_BREAK -> WORKING)* -> IDLE

  and flags missing or out-of-order punches. Validation never throws: it
  returns the best-effort ordered list plus the list of problems so
  downstream stages can still compute partial results for dashboards.

STATE MACHINE:
  states:   IDLE, WORKING, ON_BREAK
  initial:  IDLE
  terminal: IDLE after clock-out
  Any transition attempted from an invalid state is surfaced as an
  InvalidSequence error rather than silently accepted.
*/
package engine

import "sort"

// sequenceState is the walk state while validating punches.
type sequenceState int

const (
	stateIdle sequenceState = iota
	stateWorking
	stateOnBreak
)

// ValidationResult carries the ordered events plus every problem found.
// Legal is the subsequence that passed the state machine; the period builder
// consumes it so an out-of-place punch never opens or closes an interval.
type ValidationResult struct {
	Ordered []PunchEvent
	Legal   []PunchEvent
	Errors  []PunchError
}

// Complete reports whether the day forms a full legal sequence.
func (v ValidationResult) Complete() bool { return len(v.Errors) == 0 }

// ValidateSequence orders one employee/day's punches by timestamp and checks
// the state machine. Punches that cannot legally occur in the current state
// are reported but kept in the ordered output; slots that are logically
// required but absent are reported as missing.
func ValidateSequence(punches []PunchEvent) ValidationResult {
	ordered := make([]PunchEvent, len(punches))
	copy(ordered, punches)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].At.Before(ordered[j].At)
	})

	var errs []PunchError
	var legal []PunchEvent
	seen := [NumPunchTypes]bool{}
	state := stateIdle
	var openBreak PunchType // the break-out awaiting its break-in

	for _, ev := range ordered {
		if seen[ev.Type] {
			errs = append(errs, invalidSequence(ev.Type, "recorded more than once"))
			continue
		}
		seen[ev.Type] = true

		switch ev.Type {
		case PunchClockIn:
			if state != stateIdle {
				errs = append(errs, invalidSequence(ev.Type, "while already clocked in"))
				continue
			}
			state = stateWorking
			legal = append(legal, ev)

		case PunchLunchOut1, PunchLunchOut2:
			if state != stateWorking {
				errs = append(errs, invalidSequence(ev.Type, "while not working"))
				continue
			}
			state = stateOnBreak
			openBreak = ev.Type
			legal = append(legal, ev)

		case PunchLunchIn1, PunchLunchIn2:
			if state != stateOnBreak || openBreak != ev.Type-1 {
				errs = append(errs, invalidSequence(ev.Type, "without matching break-out"))
				continue
			}
			state = stateWorking
			legal = append(legal, ev)

		case PunchClockOut:
			if state != stateWorking {
				errs = append(errs, invalidSequence(ev.Type, "while not working"))
				continue
			}
			state = stateIdle
			legal = append(legal, ev)
		}
	}

	// Presence checks: the day needs both bookends, and every break-out
	// needs its break-in (and vice versa).
	if !seen[PunchClockIn] {
		errs = append(errs, missingPunch(PunchClockIn))
	}
	if seen[PunchClockIn] && !seen[PunchClockOut] {
		errs = append(errs, missingPunch(PunchClockOut))
	}
	for _, pair := range [...][2]PunchType{
		{PunchLunchOut1, PunchLunchIn1},
		{PunchLunchOut2, PunchLunchIn2},
	} {
		out, in := pair[0], pair[1]
		if seen[out] && !seen[in] {
			errs = append(errs, missingPunch(in))
		}
		if seen[in] && !seen[out] {
			errs = append(errs, missingPunch(out))
		}
	}

	return ValidationResult{Ordered: ordered, Legal: legal, Errors: errs}
}
