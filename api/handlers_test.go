/*
handlers_test.go - HTTP surface tests

Exercises the router end to end against the in-memory store: recording
punches, replacing a day, day reports, month runs, and settings round-trips.
*/
package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/batch"
	"github.com/warp/attendance-engine/engine"
	memstore "github.com/warp/attendance-engine/engine/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *memstore.Memory) {
	t.Helper()
	store := memstore.NewMemory()
	runner := batch.NewRunner(store, batch.WithWorkerCount(2))
	h := NewHandler(store, runner, nil)
	srv := httptest.NewServer(NewRouter(h, RouterOptions{}))
	t.Cleanup(srv.Close)
	return srv, store
}

func seedMaster(t *testing.T, store *memstore.Memory) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.SavePosition(ctx, engine.Position{
		ID:   "operator",
		Name: "Line Operator",
		Eligibility: engine.AllowanceEligibility{
			Overtime: true, NightWork: true, HolidayWork: true,
			EarlyWork: true, NightShift: true,
		},
	}))
	require.NoError(t, store.SaveEmployee(ctx, engine.Employee{
		ID:         "E001",
		Name:       "Ada",
		PositionID: "operator",
		HourlyWage: decimal.NewFromInt(1500),
	}))
	require.NoError(t, store.SaveShift(ctx, "E001", engine.NewWorkDate(2026, time.March, 10), engine.ScheduledShift{
		StartMinute:     9 * 60,
		DurationMinutes: 9 * 60,
		BreakMinutes:    60,
		BoundaryHour:    5,
	}))
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func punchBody(pt string, hour, minute int) punchRequest {
	at := time.Date(2026, time.March, 10, hour, minute, 0, 0, time.UTC)
	return punchRequest{
		EmployeeID: "E001",
		WorkDate:   "2026-03-10",
		PunchType:  pt,
		At:         at.Format(time.RFC3339),
	}
}

func TestRecordPunch_And_DayReport(t *testing.T) {
	// GIVEN: a seeded employee and the canonical day's punches
	// WHEN: posting each punch and fetching the day report
	// THEN: the report carries the rounded start, the 452-minute total and
	//       the blanked lunch hour

	srv, store := newTestServer(t)
	seedMaster(t, store)

	for _, p := range []punchRequest{
		punchBody("clock_in", 8, 58),
		punchBody("lunch_out_1", 12, 0),
		punchBody("lunch_in_1", 12, 45),
		punchBody("clock_out", 17, 32),
	} {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/punches", p)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/reports/day/E001/2026-03-10", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	report := decode[dayReportDTO](t, resp)

	assert.True(t, report.Complete)
	assert.Equal(t, "09:00", report.RoundedStart)
	assert.Equal(t, 452, report.WorkMinutes["1"])
	assert.Equal(t, "08:45", report.Slots["clock_in"].Rounded["15"])
	assert.Equal(t, "08:58", report.Slots["clock_in"].Raw)
	assert.Equal(t, "17:32", report.Slots["clock_out"].Raw)
	assert.Equal(t, 452, report.Bands.Total)

	// Lunch hour blanked: 12:00 is grid index (24-6)=18.
	assert.False(t, report.Timeline.Present[18])
	assert.False(t, report.Timeline.Present[19])
	assert.True(t, report.Timeline.Present[20])
}

func TestRecordPunch_BadType(t *testing.T) {
	srv, store := newTestServer(t)
	seedMaster(t, store)

	body := punchBody("badge_in", 9, 0)
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/punches", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDayReport_UnknownEmployee(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/reports/day/ghost/2026-03-10", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDayReport_IncompleteDayStillServed(t *testing.T) {
	// GIVEN: only a clock-in on record
	// WHEN: fetching the day report
	// THEN: 200 with complete=false and the error text filled

	srv, store := newTestServer(t)
	seedMaster(t, store)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/punches", punchBody("clock_in", 8, 58))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/reports/day/E001/2026-03-10", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	report := decode[dayReportDTO](t, resp)

	assert.False(t, report.Complete)
	assert.Contains(t, report.ErrorText, "clock_out")
}

func TestReplaceDay_SwapsEventSet(t *testing.T) {
	// GIVEN: a recorded wrong punch
	// WHEN: replacing the whole day
	// THEN: only the replacement set remains

	srv, store := newTestServer(t)
	seedMaster(t, store)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/punches", punchBody("clock_in", 6, 0))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	replacement := replaceDayRequest{Punches: []punchRequest{
		punchBody("clock_in", 9, 0),
		punchBody("clock_out", 17, 0),
	}}
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/punches/E001/2026-03-10", replacement)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	evs, err := store.LoadDay(context.Background(), "E001", engine.NewWorkDate(2026, time.March, 10))
	require.NoError(t, err)
	assert.Len(t, evs, 2)
}

func TestRunMonthReport(t *testing.T) {
	// GIVEN: a seeded day in March
	// WHEN: triggering the month run
	// THEN: one aggregate row with the day's totals

	srv, store := newTestServer(t)
	seedMaster(t, store)
	for _, p := range []punchRequest{
		punchBody("clock_in", 8, 58),
		punchBody("lunch_out_1", 12, 0),
		punchBody("lunch_in_1", 13, 0),
		punchBody("clock_out", 18, 0),
	} {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/punches", p)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/reports/month?year=2026&month=3", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	report := decode[monthReportDTO](t, resp)

	assert.Equal(t, 2026, report.Year)
	assert.Equal(t, 3, report.Month)
	assert.NotEmpty(t, report.RunID)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "E001", report.Rows[0].EmployeeID)
	assert.Equal(t, 1, report.Rows[0].WorkDays)
	assert.Equal(t, 480, report.Rows[0].FirstHalf.Total)
	assert.Equal(t, 1, report.Complete)
}

func TestRunMonthReport_MissingParams(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/reports/month", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/reports/month?year=2026&month=13", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEmployees_SaveAndList(t *testing.T) {
	// GIVEN: a position on record
	// WHEN: posting an employee with an eligibility override and listing
	// THEN: the employee round-trips

	srv, store := newTestServer(t)
	seedMaster(t, store)

	no := false
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/employees", employeeRequest{
		ID:         "E002",
		Name:       "Grace",
		PositionID: "operator",
		HourlyWage: "1700",
		Overrides:  map[string]*bool{"night_work": &no},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	e, err := store.GetEmployee(context.Background(), "E002")
	require.NoError(t, err)
	require.NotNil(t, e.Eligibility.NightWork)
	assert.False(t, *e.Eligibility.NightWork)

	elig, err := engine.ResolveEligibility(context.Background(), store, e)
	require.NoError(t, err)
	assert.False(t, elig.NightWork, "override wins over the position default")
	assert.True(t, elig.Overtime)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/employees", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]map[string]any](t, resp)
	assert.Len(t, list, 2)
}

func TestSettings_RoundingRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/settings/rounding", roundingRequest{Granularity: 5})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/settings/rounding", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[roundingRequest](t, resp)
	assert.Equal(t, 5, got.Granularity)
}

func TestSettings_RoundingRejectsUnsupported(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doJSON(t, http.MethodPut, srv.URL+"/api/settings/rounding", roundingRequest{Granularity: 7})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestSettings_AllowanceRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/settings/allowances", allowanceSettingRequest{
		Type:        "overtime",
		Calculation: "rate",
		Rate:        "25",
		Active:      true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/settings/allowances", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]allowanceSettingRequest](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, "overtime", list[0].Type)
	assert.Equal(t, "25", list[0].Rate)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestShifts_Save(t *testing.T) {
	srv, store := newTestServer(t)
	seedMaster(t, store)

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/shifts/E001/2026-03-11", shiftRequest{
		StartMinute:     22*60 + 30,
		DurationMinutes: 8 * 60,
		BoundaryHour:    12,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	s, err := store.GetShift(context.Background(), "E001", engine.NewWorkDate(2026, time.March, 11))
	require.NoError(t, err)
	assert.Equal(t, 22*60+30, s.StartMinute)
	assert.True(t, s.StartsInNightBand())
}

func TestStatusFor_Mapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{engine.ErrEmployeeNotFound, http.StatusNotFound},
		{engine.ErrConfiguration, http.StatusUnprocessableEntity},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, statusFor(c.err))
	}
}
