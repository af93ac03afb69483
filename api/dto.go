/*
dto.go - Wire shapes for the HTTP API

PURPOSE:
  Request/response types and the mapping from engine results to JSON.
  Encoding uses goccy/go-json; the engine types themselves never carry
  JSON tags so wire concerns stay at this boundary.
*/
package api

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/engine"
)

// =============================================================================
// REQUESTS
// =============================================================================

type punchRequest struct {
	EmployeeID string `json:"employee_id"`
	WorkDate   string `json:"work_date"`  // 2006-01-02
	PunchType  string `json:"punch_type"` // clock_in, lunch_out_1, ...
	At         string `json:"at"`         // RFC3339
}

type replaceDayRequest struct {
	Punches []punchRequest `json:"punches"`
}

type employeeRequest struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	PositionID string            `json:"position_id"`
	FactoryID  string            `json:"factory_id"`
	LineID     string            `json:"line_id"`
	HourlyWage string            `json:"hourly_wage"`
	Overrides  map[string]*bool  `json:"eligibility_overrides,omitempty"`
}

type positionRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Overtime    bool   `json:"overtime"`
	NightWork   bool   `json:"night_work"`
	HolidayWork bool   `json:"holiday_work"`
	EarlyWork   bool   `json:"early_work"`
	NightShift  bool   `json:"night_shift"`
}

type shiftRequest struct {
	StartMinute     int  `json:"start_minute"`
	DurationMinutes int  `json:"duration_minutes"`
	BreakMinutes    int  `json:"break_minutes"`
	BoundaryHour    int  `json:"boundary_hour"`
	DayOff          bool `json:"day_off"`
}

type allowanceSettingRequest struct {
	Type             string `json:"type"`
	Calculation      string `json:"calculation"`
	FixedAmount      string `json:"fixed_amount"`
	Rate             string `json:"rate"`
	ConditionType    string `json:"condition_type"`
	ConditionValue   int    `json:"condition_value"`
	LegalRequirement bool   `json:"legal_requirement"`
	Active           bool   `json:"active"`
}

type roundingRequest struct {
	Granularity int `json:"granularity"`
}

// =============================================================================
// RESPONSES
// =============================================================================

type errorResponse struct {
	Error string `json:"error"`
}

type slotDTO struct {
	Raw     string            `json:"raw,omitempty"`
	Rounded map[string]string `json:"rounded,omitempty"`
}

type bandsDTO struct {
	Night   int `json:"night"`
	Early   int `json:"early"`
	Day     int `json:"day"`
	Evening int `json:"evening"`
	Total   int `json:"total"`
}

type minutesDTO struct {
	Regular     int `json:"regular"`
	Overtime    int `json:"overtime"`
	Night       int `json:"night"`
	EarlyWork   int `json:"early_work"`
	HolidayWork int `json:"holiday_work"`
	NightShift  int `json:"night_shift"`
}

type amountsDTO struct {
	Overtime    string `json:"overtime"`
	Night       string `json:"night"`
	EarlyWork   string `json:"early_work"`
	HolidayWork string `json:"holiday_work"`
	NightShift  string `json:"night_shift"`
	Total       string `json:"total"`
}

type timelineDTO struct {
	Present []bool   `json:"present"`
	Labels  []string `json:"labels"`
}

type dayReportDTO struct {
	EmployeeID   string             `json:"employee_id"`
	WorkDate     string             `json:"work_date"`
	Slots        map[string]slotDTO `json:"slots"`
	RoundedStart string             `json:"rounded_start,omitempty"`
	WorkMinutes  map[string]int     `json:"work_minutes"`
	Bands        bandsDTO           `json:"bands"`
	Minutes      minutesDTO         `json:"minutes"`
	Amounts      amountsDTO         `json:"amounts"`
	Timeline     timelineDTO        `json:"timeline"`
	Complete     bool               `json:"complete"`
	ErrorText    string             `json:"error_text,omitempty"`
}

type bandTotalsDTO struct {
	Night   int `json:"night"`
	Early   int `json:"early"`
	Day     int `json:"day"`
	Evening int `json:"evening"`
	Total   int `json:"total"`
}

type aggregateRowDTO struct {
	EmployeeID         string        `json:"employee_id"`
	Year               int           `json:"year"`
	Month              int           `json:"month"`
	WorkDays           int           `json:"work_days"`
	ErrorDays          int           `json:"error_days"`
	StandardHours      string        `json:"standard_hours"`
	FirstHalf          bandTotalsDTO `json:"first_half"`
	SecondHalf         bandTotalsDTO `json:"second_half"`
	FullMonth          bandTotalsDTO `json:"full_month"`
	ActualWorkingHours string        `json:"actual_working_hours"`
	OvertimeHours      string        `json:"overtime_hours"`
	AllowanceTotal     string        `json:"allowance_total"`
}

type monthReportDTO struct {
	RunID          string            `json:"run_id"`
	Year           int               `json:"year"`
	Month          int               `json:"month"`
	Rows           []aggregateRowDTO `json:"rows"`
	WithAttendance int               `json:"with_attendance"`
	Complete       int               `json:"complete"`
	WithErrors     int               `json:"with_errors"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

const clockLayout = "15:04"

func toDayReport(r engine.DayResult) dayReportDTO {
	dto := dayReportDTO{
		EmployeeID:  string(r.EmployeeID),
		WorkDate:    r.WorkDate.String(),
		Slots:       make(map[string]slotDTO, engine.NumPunchTypes),
		WorkMinutes: make(map[string]int, engine.NumGranularities),
		Bands: bandsDTO{
			Night:   r.Bands.Night,
			Early:   r.Bands.Early,
			Day:     r.Bands.Day,
			Evening: r.Bands.Evening,
			Total:   r.Bands.Total(),
		},
		Minutes: minutesDTO{
			Regular:     r.Minutes.Regular,
			Overtime:    r.Minutes.Overtime,
			Night:       r.Minutes.Night,
			EarlyWork:   r.Minutes.EarlyWork,
			HolidayWork: r.Minutes.HolidayWork,
			NightShift:  r.Minutes.NightShift,
		},
		Amounts: amountsDTO{
			Overtime:    r.Amounts.Overtime.String(),
			Night:       r.Amounts.Night.String(),
			EarlyWork:   r.Amounts.EarlyWork.String(),
			HolidayWork: r.Amounts.HolidayWork.String(),
			NightShift:  r.Amounts.NightShift.String(),
			Total:       r.Amounts.Total.String(),
		},
		Timeline: timelineDTO{
			Present: r.Timeline.Present[:],
			Labels:  r.Timeline.Labels[:],
		},
		Complete:  r.Complete,
		ErrorText: r.ErrorText(),
	}
	if !r.RoundedStart.IsZero() {
		dto.RoundedStart = r.RoundedStart.Format(clockLayout)
	}
	for pt := engine.PunchClockIn; pt <= engine.PunchClockOut; pt++ {
		slot := r.Slots[pt]
		if !slot.Recorded {
			continue
		}
		s := slotDTO{
			Raw:     slot.Raw.Format(clockLayout),
			Rounded: make(map[string]string, engine.NumGranularities),
		}
		for gi, g := range engine.Granularities {
			s.Rounded[granKey(g)] = slot.Rounded[gi].Format(clockLayout)
		}
		dto.Slots[pt.String()] = s
	}
	for gi, g := range engine.Granularities {
		dto.WorkMinutes[granKey(g)] = r.WorkMinutes[gi]
	}
	return dto
}

func granKey(g int) string {
	return strconv.Itoa(g)
}

func toBandTotals(b engine.BandTotals) bandTotalsDTO {
	return bandTotalsDTO{Night: b.Night, Early: b.Early, Day: b.Day, Evening: b.Evening, Total: b.Total}
}

func toAggregateRow(row engine.AggregateRow) aggregateRowDTO {
	return aggregateRowDTO{
		EmployeeID:         string(row.EmployeeID),
		Year:               row.Year,
		Month:              int(row.Month),
		WorkDays:           row.WorkDays,
		ErrorDays:          row.ErrorDays,
		StandardHours:      row.StandardHours.StringFixed(2),
		FirstHalf:          toBandTotals(row.FirstHalf),
		SecondHalf:         toBandTotals(row.SecondHalf),
		FullMonth:          toBandTotals(row.FullMonth),
		ActualWorkingHours: row.ActualWorkingHours.StringFixed(2),
		OvertimeHours:      row.OvertimeHours.StringFixed(2),
		AllowanceTotal:     row.AllowanceTotal.StringFixed(2),
	}
}

func (r allowanceSettingRequest) toSetting() (engine.AllowanceSetting, error) {
	fixed := decimal.Zero
	if r.FixedAmount != "" {
		var err error
		fixed, err = decimal.NewFromString(r.FixedAmount)
		if err != nil {
			return engine.AllowanceSetting{}, err
		}
	}
	rate := decimal.Zero
	if r.Rate != "" {
		var err error
		rate, err = decimal.NewFromString(r.Rate)
		if err != nil {
			return engine.AllowanceSetting{}, err
		}
	}
	return engine.AllowanceSetting{
		Type:             engine.AllowanceType(r.Type),
		Calculation:      engine.CalculationType(r.Calculation),
		FixedAmount:      fixed,
		Rate:             rate,
		ConditionType:    engine.ConditionType(r.ConditionType),
		ConditionValue:   r.ConditionValue,
		LegalRequirement: r.LegalRequirement,
		Active:           r.Active,
	}, nil
}

func (r employeeRequest) toEmployee() (engine.Employee, error) {
	wage := decimal.Zero
	if r.HourlyWage != "" {
		var err error
		wage, err = decimal.NewFromString(r.HourlyWage)
		if err != nil {
			return engine.Employee{}, err
		}
	}
	e := engine.Employee{
		ID:         engine.EmployeeID(r.ID),
		Name:       r.Name,
		PositionID: engine.PositionID(r.PositionID),
		FactoryID:  engine.FactoryID(r.FactoryID),
		LineID:     engine.LineID(r.LineID),
		HourlyWage: wage,
	}
	e.Eligibility = engine.EligibilityOverride{
		Overtime:    r.Overrides["overtime"],
		NightWork:   r.Overrides["night_work"],
		HolidayWork: r.Overrides["holiday_work"],
		EarlyWork:   r.Overrides["early_work"],
		NightShift:  r.Overrides["night_shift"],
	}
	return e, nil
}
