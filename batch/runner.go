/*
Package batch fans a month of attendance accounting out over a worker pool.

PURPOSE:
  The natural parallelism unit is one employee, one day: no day unit reads
  another's data, so a month for N employees is N x 31 independent
  computations with a simple fan-out/fan-in. Aggregation afterwards is
  associative summation per employee.

CONFIGURATION SNAPSHOT:
  Rounding config, allowance settings, employees and positions are loaded
  ONCE before fan-out and treated as immutable for the run, so no two day
  units can observe different rounding modes.

CANCELLATION:
  There is no cancellation beyond "stop submitting new day units". A
  configuration error from any unit aborts the run; partially completed
  runs are safe to discard because every stage is idempotent.
*/
package batch

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/engine"
	"github.com/warp/attendance-engine/pkg/logger"
)

// Runner executes month batches against a Store.
type Runner struct {
	store   engine.Store
	workers int
	log     logger.Logger
	metrics *Metrics
	trace   engine.Trace
}

// Option applies a configuration option to the Runner.
type Option func(*Runner)

// WithWorkerCount sets the number of day-unit workers.
func WithWorkerCount(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithMetrics installs batch instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithTrace installs an engine trace sink for debugging runs.
func WithTrace(t engine.Trace) Option {
	return func(r *Runner) { r.trace = t }
}

// NewRunner creates a Runner with sane defaults.
func NewRunner(store engine.Store, opts ...Option) *Runner {
	r := &Runner{
		store:   store,
		workers: runtime.NumCPU(),
		log:     logger.Nop(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// MonthReport is the fan-in result of one run.
type MonthReport struct {
	RunID  uuid.UUID
	Year   int
	Month  time.Month
	Days   []engine.DayResult
	Rows   []engine.AggregateRow
	Counts engine.AttendanceCounts
}

// dayUnit is one fan-out work item.
type dayUnit struct {
	input engine.DayInput
	wage  decimal.Decimal
}

// RunMonth accounts every employee-day of the month and aggregates the
// results per employee. Punch-level problems are carried in the day results;
// only configuration faults return an error.
func (r *Runner) RunMonth(ctx context.Context, year int, month time.Month) (*MonthReport, error) {
	started := time.Now()
	runID := uuid.New()

	// Snapshot configuration for the whole run.
	rounding, err := r.store.GetRoundingConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rounding config: %w", err)
	}
	if err := rounding.Validate(); err != nil {
		return nil, err
	}
	settings, err := r.store.ListAllowanceSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load allowance settings: %w", err)
	}
	employees, err := r.store.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("load employees: %w", err)
	}

	computer := &engine.Computer{Rounding: rounding, Settings: settings, Trace: r.trace}

	units, err := r.collectUnits(ctx, employees, year, month)
	if err != nil {
		return nil, err
	}

	r.log.Info(ctx, "batch run starting",
		logger.String("run_id", runID.String()),
		logger.Int("employees", len(employees)),
		logger.Int("day_units", len(units)),
		logger.Int("workers", r.workers))
	if r.metrics != nil {
		r.metrics.workersActive.Set(float64(r.workers))
	}

	days, err := r.fanOut(ctx, computer, units)
	if err != nil {
		return nil, err
	}

	report := &MonthReport{RunID: runID, Year: year, Month: month, Days: days}
	report.Counts = engine.CountAttendance(days)
	for _, e := range employees {
		scheduled := scheduledMinutesPerDay(ctx, r.store, e.ID, year, month)
		report.Rows = append(report.Rows, engine.AggregateMonth(days, e.ID, year, month, scheduled))
	}
	sort.Slice(report.Rows, func(i, j int) bool {
		return report.Rows[i].EmployeeID < report.Rows[j].EmployeeID
	})

	if r.metrics != nil {
		r.metrics.runsTotal.Inc()
		r.metrics.daysComputed.Add(float64(len(days)))
		for _, d := range days {
			if len(d.Errors) > 0 {
				r.metrics.daysWithError.Inc()
			}
		}
		r.metrics.runDuration.Observe(time.Since(started).Seconds())
	}
	r.log.Info(ctx, "batch run finished",
		logger.String("run_id", runID.String()),
		logger.Int("days", len(days)),
		logger.Int("complete", report.Counts.Complete),
		logger.Int("with_errors", report.Counts.WithErrors))
	return report, nil
}

// collectUnits assembles one DayInput per employee-day that has punches.
func (r *Runner) collectUnits(ctx context.Context, employees []engine.Employee, year int, month time.Month) ([]dayUnit, error) {
	var units []dayUnit
	for _, e := range employees {
		elig, err := engine.ResolveEligibility(ctx, r.store, e)
		if err != nil {
			return nil, fmt.Errorf("resolve eligibility for %s: %w", e.ID, err)
		}
		byDay, err := r.store.LoadMonth(ctx, e.ID, year, month)
		if err != nil {
			return nil, fmt.Errorf("load punches for %s: %w", e.ID, err)
		}
		for date, punches := range byDay {
			shift, err := r.store.GetShift(ctx, e.ID, date)
			if err != nil {
				// No schedule on record: treat as a day off so any work
				// classifies as holiday work.
				shift = engine.ScheduledShift{DayOff: true}
			}
			units = append(units, dayUnit{
				input: engine.DayInput{
					EmployeeID:  e.ID,
					WorkDate:    date,
					Punches:     punches,
					Shift:       shift,
					Eligibility: elig,
				},
				wage: e.HourlyWage,
			})
		}
	}
	sort.Slice(units, func(i, j int) bool {
		a, b := units[i].input, units[j].input
		if a.EmployeeID != b.EmployeeID {
			return a.EmployeeID < b.EmployeeID
		}
		return a.WorkDate.Day < b.WorkDate.Day
	})
	return units, nil
}

// fanOut runs the day units across the worker pool and collects results in a
// deterministic order. The first fatal error cancels submission.
func (r *Runner) fanOut(ctx context.Context, computer *engine.Computer, units []dayUnit) ([]engine.DayResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type indexed struct {
		i   int
		res engine.DayResult
		err error
	}
	jobs := make(chan int)
	results := make(chan indexed, len(units))

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := computer.ComputeDay(units[i].input, units[i].wage)
				results <- indexed{i: i, res: res, err: err}
				if err != nil {
					cancel()
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range units {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]engine.DayResult, len(units))
	done := make([]bool, len(units))
	var fatal error
	for res := range results {
		if res.err != nil && fatal == nil {
			fatal = res.err
			continue
		}
		out[res.i] = res.res
		done[res.i] = true
	}
	if fatal != nil {
		return nil, fatal
	}

	final := out[:0]
	for i, ok := range done {
		if ok {
			final = append(final, out[i])
		}
	}
	return final, nil
}

// scheduledMinutesPerDay samples the month for a representative scheduled
// shift length, used for the standard-hours column.
func scheduledMinutesPerDay(ctx context.Context, s engine.MasterStore, id engine.EmployeeID, year int, month time.Month) int {
	for day := 1; day <= 28; day++ {
		shift, err := s.GetShift(ctx, id, engine.NewWorkDate(year, month, day))
		if err == nil && !shift.DayOff && shift.DurationMinutes > 0 {
			return shift.DurationMinutes
		}
	}
	return 8 * 60
}
