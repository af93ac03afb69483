/*
handlers.go - HTTP handler implementations

PURPOSE:
  Connects the HTTP surface to the store, the day computer, and the batch
  runner. Handlers stay thin: decode, delegate, encode. All accounting
  logic lives in the engine package.

ERROR MAPPING:
  - punch/sequence problems never surface as HTTP errors; they ride inside
    the day report so checklist views can render them
  - configuration errors map to 422 (the batch refused to run)
  - not-found sentinels map to 404, everything else to 500
*/
package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/warp/attendance-engine/batch"
	"github.com/warp/attendance-engine/engine"
	"github.com/warp/attendance-engine/pkg/logger"
)

// Handler holds the API dependencies.
type Handler struct {
	store  engine.Store
	runner *batch.Runner
	log    logger.Logger
}

// NewHandler creates the handler with its dependencies.
func NewHandler(store engine.Store, runner *batch.Runner, log logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{store: store, runner: runner, log: log}
}

// =============================================================================
// JSON HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func readJSON(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrConfiguration):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrEmployeeNotFound),
		errors.Is(err, engine.ErrPositionNotFound),
		errors.Is(err, engine.ErrShiftNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func parseWorkDate(s string) (engine.WorkDate, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return engine.WorkDate{}, err
	}
	return engine.NewWorkDate(t.Year(), t.Month(), t.Day()), nil
}

// =============================================================================
// PUNCHES
// =============================================================================

// RecordPunch handles POST /api/punches.
func (h *Handler) RecordPunch(w http.ResponseWriter, r *http.Request) {
	var req punchRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ev, err := req.toEvent()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.store.RecordPunch(r.Context(), ev); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	h.log.Info(r.Context(), "punch recorded",
		logger.String("employee", string(ev.EmployeeID)),
		logger.String("date", ev.WorkDate.String()),
		logger.String("type", ev.Type.String()))
	writeJSON(w, http.StatusCreated, map[string]string{"id": ev.ID.String()})
}

func (req punchRequest) toEvent() (engine.PunchEvent, error) {
	pt, err := engine.ParsePunchType(req.PunchType)
	if err != nil {
		return engine.PunchEvent{}, err
	}
	date, err := parseWorkDate(req.WorkDate)
	if err != nil {
		return engine.PunchEvent{}, err
	}
	at, err := time.Parse(time.RFC3339, req.At)
	if err != nil {
		return engine.PunchEvent{}, err
	}
	return engine.PunchEvent{
		ID:         uuid.New(),
		EmployeeID: engine.EmployeeID(req.EmployeeID),
		WorkDate:   date,
		Type:       pt,
		At:         at.UTC(),
	}, nil
}

// ReplaceDay handles PUT /api/punches/{employeeID}/{date}. This is the only
// correction mechanism: the whole event set for the day is swapped.
func (h *Handler) ReplaceDay(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "employeeID"))
	date, err := parseWorkDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req replaceDayRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	evs := make([]engine.PunchEvent, 0, len(req.Punches))
	for _, p := range req.Punches {
		p.EmployeeID = string(id)
		p.WorkDate = date.String()
		ev, err := p.toEvent()
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		evs = append(evs, ev)
	}
	if err := h.store.ReplaceDay(r.Context(), id, date, evs); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"punches": len(evs)})
}

// =============================================================================
// REPORTS
// =============================================================================

// GetDayReport handles GET /api/reports/day/{employeeID}/{date}.
func (h *Handler) GetDayReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := engine.EmployeeID(chi.URLParam(r, "employeeID"))
	date, err := parseWorkDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	emp, err := h.store.GetEmployee(ctx, id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	elig, err := engine.ResolveEligibility(ctx, h.store, emp)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	punches, err := h.store.LoadDay(ctx, id, date)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	shift, err := h.store.GetShift(ctx, id, date)
	if err != nil {
		shift = engine.ScheduledShift{DayOff: true}
	}
	rounding, err := h.store.GetRoundingConfig(ctx)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	settings, err := h.store.ListAllowanceSettings(ctx)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	computer := &engine.Computer{Rounding: rounding, Settings: settings}
	res, err := computer.ComputeDay(engine.DayInput{
		EmployeeID:  id,
		WorkDate:    date,
		Punches:     punches,
		Shift:       shift,
		Eligibility: elig,
	}, emp.HourlyWage)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, toDayReport(res))
}

// RunMonthReport handles POST /api/reports/month?year=YYYY&month=M. It runs
// the full batch and returns the per-employee aggregate rows.
func (h *Handler) RunMonthReport(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("year is required"))
		return
	}
	monthNum, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || monthNum < 1 || monthNum > 12 {
		writeError(w, http.StatusBadRequest, errors.New("month must be 1-12"))
		return
	}

	report, err := h.runner.RunMonth(r.Context(), year, time.Month(monthNum))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	dto := monthReportDTO{
		RunID:          report.RunID.String(),
		Year:           report.Year,
		Month:          int(report.Month),
		WithAttendance: report.Counts.WithAttendance,
		Complete:       report.Counts.Complete,
		WithErrors:     report.Counts.WithErrors,
	}
	for _, row := range report.Rows {
		dto.Rows = append(dto.Rows, toAggregateRow(row))
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// MASTER DATA
// =============================================================================

// ListEmployees handles GET /api/employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	type employeeDTO struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		PositionID string `json:"position_id"`
		FactoryID  string `json:"factory_id,omitempty"`
		LineID     string `json:"line_id,omitempty"`
		HourlyWage string `json:"hourly_wage"`
	}
	out := make([]employeeDTO, 0, len(employees))
	for _, e := range employees {
		out = append(out, employeeDTO{
			ID:         string(e.ID),
			Name:       e.Name,
			PositionID: string(e.PositionID),
			FactoryID:  string(e.FactoryID),
			LineID:     string(e.LineID),
			HourlyWage: e.HourlyWage.String(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// SaveEmployee handles POST /api/employees.
func (h *Handler) SaveEmployee(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	e, err := req.toEmployee()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.store.SaveEmployee(r.Context(), e); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": string(e.ID)})
}

// SavePosition handles POST /api/positions.
func (h *Handler) SavePosition(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p := engine.Position{
		ID:   engine.PositionID(req.ID),
		Name: req.Name,
		Eligibility: engine.AllowanceEligibility{
			Overtime:    req.Overtime,
			NightWork:   req.NightWork,
			HolidayWork: req.HolidayWork,
			EarlyWork:   req.EarlyWork,
			NightShift:  req.NightShift,
		},
	}
	if err := h.store.SavePosition(r.Context(), p); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": string(p.ID)})
}

// SaveShift handles PUT /api/shifts/{employeeID}/{date}.
func (h *Handler) SaveShift(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "employeeID"))
	date, err := parseWorkDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req shiftRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	shift := engine.ScheduledShift{
		StartMinute:     req.StartMinute,
		DurationMinutes: req.DurationMinutes,
		BreakMinutes:    req.BreakMinutes,
		BoundaryHour:    req.BoundaryHour,
		DayOff:          req.DayOff,
	}
	if err := h.store.SaveShift(r.Context(), id, date, shift); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"employee_id": string(id), "date": date.String()})
}

// =============================================================================
// SETTINGS
// =============================================================================

// ListAllowanceSettings handles GET /api/settings/allowances.
func (h *Handler) ListAllowanceSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.ListAllowanceSettings(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	out := make([]allowanceSettingRequest, 0, len(settings))
	for _, s := range settings {
		out = append(out, allowanceSettingRequest{
			Type:             string(s.Type),
			Calculation:      string(s.Calculation),
			FixedAmount:      s.FixedAmount.String(),
			Rate:             s.Rate.String(),
			ConditionType:    string(s.ConditionType),
			ConditionValue:   s.ConditionValue,
			LegalRequirement: s.LegalRequirement,
			Active:           s.Active,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// SaveAllowanceSetting handles PUT /api/settings/allowances.
func (h *Handler) SaveAllowanceSetting(w http.ResponseWriter, r *http.Request) {
	var req allowanceSettingRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s, err := req.toSetting()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.store.SaveAllowanceSetting(r.Context(), s); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"type": string(s.Type)})
}

// GetRounding handles GET /api/settings/rounding.
func (h *Handler) GetRounding(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.GetRoundingConfig(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, roundingRequest{Granularity: c.Granularity})
}

// SaveRounding handles PUT /api/settings/rounding. The new granularity only
// affects future computations; stored punches are untouched.
func (h *Handler) SaveRounding(w http.ResponseWriter, r *http.Request) {
	var req roundingRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	c := engine.RoundingConfig{Granularity: req.Granularity}
	if err := h.store.SaveRoundingConfig(r.Context(), c); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// Health handles GET /api/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
