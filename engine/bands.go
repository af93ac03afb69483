/*
bands.go - Fixed time-band boundaries over the 24h clock

PURPOSE:
  Classifies a minute of the day into one of four fixed half-open bands
  used for allowance purposes:

    night   [22:00, 05:00)  wraps midnight
    early   [05:00, 09:00)
    day     [09:00, 18:00)
    evening [18:00, 22:00)

  These are constants of the engine, not per-tenant configuration.
*/
package engine

import "time"

// Band is one of the four fixed clock-time windows.
type Band int

const (
	BandNight Band = iota
	BandEarly
	BandDay
	BandEvening
)

func (b Band) String() string {
	switch b {
	case BandNight:
		return "night"
	case BandEarly:
		return "early"
	case BandDay:
		return "day"
	case BandEvening:
		return "evening"
	default:
		return "unknown"
	}
}

// Band boundary constants, minutes after midnight.
const (
	nightStartMinute   = 22 * 60
	earlyStartMinute   = 5 * 60
	dayStartMinute     = 9 * 60
	eveningStartMinute = 18 * 60
)

// BandFor classifies a clock minute-of-day (0..1439).
func BandFor(minuteOfDay int) Band {
	m := ((minuteOfDay % 1440) + 1440) % 1440
	switch {
	case m >= nightStartMinute || m < earlyStartMinute:
		return BandNight
	case m < dayStartMinute:
		return BandEarly
	case m < eveningStartMinute:
		return BandDay
	default:
		return BandEvening
	}
}

// BandAt classifies an instant by its clock time.
func BandAt(t time.Time) Band {
	return BandFor(t.Hour()*60 + t.Minute())
}

// BandMinutes is a day's unclamped band split. Its total always equals the
// day's accounted work minutes regardless of any eligibility flag.
type BandMinutes struct {
	Night   int
	Early   int
	Day     int
	Evening int
}

func (b *BandMinutes) addMinute(band Band) {
	switch band {
	case BandNight:
		b.Night++
	case BandEarly:
		b.Early++
	case BandDay:
		b.Day++
	case BandEvening:
		b.Evening++
	}
}

// Total sums the four bands.
func (b BandMinutes) Total() int { return b.Night + b.Early + b.Day + b.Evening }
