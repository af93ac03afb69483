/*
allowance.go - Minute classification and monetary allowances

PURPOSE:
  Intersects the day's accounted work intervals with the fixed time-band
  boundaries and the scheduled-shift baseline, accumulating per-category
  minute totals by minute-bucket summation (never interval subtraction, so
  periods straddling several bands come out exact). Minutes are clamped to
  zero for categories the employee is not eligible for, then converted to
  money through the read-only AllowanceSetting table.

HOLIDAY RULE:
  When the work date is a scheduled day off, every minute counts as holiday
  work instead of regular/overtime.

MONEY:
  calculation_type=fixed pays the fixed amount once per qualifying day;
  calculation_type=rate pays rate% x hourly wage x hours in the category.
*/
package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MINUTE CLASSIFICATION
// =============================================================================

// ClassifyMinutes walks every minute of the accounted intervals. The first
// return is the unclamped band split (drives the conservation property and
// the reporting band totals); the second is the eligibility-clamped
// per-category totals that feed the money step.
func ClassifyMinutes(accounted []WorkPeriod, date WorkDate, shift ScheduledShift, elig AllowanceEligibility) (BandMinutes, AllowanceMinutes) {
	var bands BandMinutes
	var mins AllowanceMinutes

	shiftStart, shiftEnd := shift.Window(date)
	nightShiftDay := shift.StartsInNightBand()

	for _, p := range accounted {
		for i := 0; i < p.Minutes(); i++ {
			t := p.Start.Add(time.Duration(i) * time.Minute)
			band := BandAt(t)
			bands.addMinute(band)

			if shift.DayOff {
				if elig.HolidayWork {
					mins.HolidayWork++
				}
			} else {
				inShift := !t.Before(shiftStart) && t.Before(shiftEnd)
				if inShift {
					mins.Regular++
				} else if elig.Overtime {
					mins.Overtime++
				}
			}

			if band == BandNight && elig.NightWork {
				mins.Night++
			}
			if band == BandEarly && elig.EarlyWork {
				mins.EarlyWork++
			}
			if nightShiftDay && elig.NightShift {
				mins.NightShift++
			}
		}
	}
	return bands, mins
}

// =============================================================================
// MONETARY AMOUNTS
// =============================================================================

// ComputeAmounts converts clamped minute totals into money using the
// AllowanceSetting table. A category with accrued minutes whose setting
// exists but carries no usable rate or fixed amount is a ConfigurationError:
// the batch must abort rather than report silently wrong figures. A category
// with no active setting at all simply pays nothing.
func ComputeAmounts(mins AllowanceMinutes, settings []AllowanceSetting, hourlyWage decimal.Decimal) (AllowanceAmounts, error) {
	var out AllowanceAmounts

	byType := make(map[AllowanceType]*AllowanceSetting, len(settings))
	for i := range settings {
		if settings[i].Active {
			byType[settings[i].Type] = &settings[i]
		}
	}

	categories := []struct {
		typ     AllowanceType
		minutes int
		dst     *decimal.Decimal
	}{
		{AllowanceOvertime, mins.Overtime, &out.Overtime},
		{AllowanceNightWork, mins.Night, &out.Night},
		{AllowanceHoliday, mins.HolidayWork, &out.HolidayWork},
		{AllowanceEarlyWork, mins.EarlyWork, &out.EarlyWork},
		{AllowanceNightShift, mins.NightShift, &out.NightShift},
	}

	for _, c := range categories {
		if c.minutes == 0 {
			continue
		}
		setting, ok := byType[c.typ]
		if !ok {
			continue
		}
		amount, err := settingAmount(setting, c.minutes, hourlyWage)
		if err != nil {
			return AllowanceAmounts{}, err
		}
		*c.dst = amount
		out.Total = out.Total.Add(amount)
	}
	return out, nil
}

func settingAmount(s *AllowanceSetting, minutes int, hourlyWage decimal.Decimal) (decimal.Decimal, error) {
	if s.ConditionType == ConditionMinMinutes && minutes < s.ConditionValue {
		return decimal.Zero, nil
	}

	switch s.Calculation {
	case CalcFixed:
		if s.FixedAmount.IsZero() {
			return decimal.Zero, &ConfigurationError{
				Setting: string(s.Type),
				Detail:  "fixed allowance has no amount",
			}
		}
		return s.FixedAmount, nil

	case CalcRate:
		if s.Rate.IsZero() {
			return decimal.Zero, &ConfigurationError{
				Setting: string(s.Type),
				Detail:  "rate allowance has no rate",
			}
		}
		hours := decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60))
		return s.Rate.Div(decimal.NewFromInt(100)).Mul(hourlyWage).Mul(hours), nil

	default:
		return decimal.Zero, &ConfigurationError{
			Setting: string(s.Type),
			Detail:  fmt.Sprintf("unknown calculation type %q", s.Calculation),
		}
	}
}
