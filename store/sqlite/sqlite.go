/*
Package sqlite provides a SQLite-backed implementation of the engine's
storage interfaces.

PURPOSE:
  Implements engine.Store (punches + master data) using SQLite. In
  production the same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

IMMUTABILITY ENFORCEMENT:
  Punch events are never updated in place. RecordPunch only inserts;
  ReplaceDay swaps a whole day's event set inside one transaction, which is
  the only correction mechanism the engine recognizes.

KEY TABLES:
  punches:            Raw punch events (employee, day, slot, timestamp)
  employees:          Master records with wage and eligibility overrides
  positions:          Eligibility defaults employees inherit
  shifts:             Scheduled shift per employee/day
  allowance_settings: Money rules per allowance category
  app_config:         Process-wide values such as the rounding granularity

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block and crash recovery improves.

USAGE:
  st, err := sqlite.New("./data/attendance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

SEE ALSO:
  - engine/store.go: interface definitions
  - engine/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/engine"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = time.RFC3339
)

// Store implements engine.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ engine.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Raw punch events. Insert-only; corrections replace a whole day.
	CREATE TABLE IF NOT EXISTS punches (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		work_date TEXT NOT NULL,
		punch_type TEXT NOT NULL,
		punched_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_punches_employee_date
		ON punches(employee_id, work_date);

	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		position_id TEXT NOT NULL,
		factory_id TEXT,
		line_id TEXT,
		hourly_wage TEXT NOT NULL,
		eligibility_json TEXT
	);

	CREATE TABLE IF NOT EXISTS positions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		overtime INTEGER NOT NULL DEFAULT 0,
		night_work INTEGER NOT NULL DEFAULT 0,
		holiday_work INTEGER NOT NULL DEFAULT 0,
		early_work INTEGER NOT NULL DEFAULT 0,
		night_shift INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS shifts (
		employee_id TEXT NOT NULL,
		work_date TEXT NOT NULL,
		start_minute INTEGER NOT NULL,
		duration_minutes INTEGER NOT NULL,
		break_minutes INTEGER NOT NULL,
		boundary_hour INTEGER NOT NULL,
		day_off INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (employee_id, work_date)
	);

	CREATE TABLE IF NOT EXISTS allowance_settings (
		type TEXT PRIMARY KEY,
		calculation TEXT NOT NULL,
		fixed_amount TEXT NOT NULL,
		rate TEXT NOT NULL,
		condition_type TEXT NOT NULL DEFAULT '',
		condition_value INTEGER NOT NULL DEFAULT 0,
		legal_requirement INTEGER NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS app_config (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PUNCH STORE
// =============================================================================

func (s *Store) RecordPunch(ctx context.Context, ev engine.PunchEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO punches (id, employee_id, work_date, punch_type, punched_at)
		VALUES (?, ?, ?, ?, ?)`,
		ev.ID.String(), string(ev.EmployeeID), ev.WorkDate.String(),
		ev.Type.String(), ev.At.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("record punch: %w", err)
	}
	return nil
}

func (s *Store) ReplaceDay(ctx context.Context, id engine.EmployeeID, date engine.WorkDate, evs []engine.PunchEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM punches WHERE employee_id = ? AND work_date = ?`,
		string(id), date.String()); err != nil {
		return fmt.Errorf("replace day: %w", err)
	}
	for _, ev := range evs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO punches (id, employee_id, work_date, punch_type, punched_at)
			VALUES (?, ?, ?, ?, ?)`,
			ev.ID.String(), string(ev.EmployeeID), ev.WorkDate.String(),
			ev.Type.String(), ev.At.UTC().Format(timeLayout)); err != nil {
			return fmt.Errorf("replace day: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) LoadDay(ctx context.Context, id engine.EmployeeID, date engine.WorkDate) ([]engine.PunchEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, punch_type, punched_at FROM punches
		WHERE employee_id = ? AND work_date = ?`,
		string(id), date.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.PunchEvent
	for rows.Next() {
		var rawID, rawType, rawAt string
		if err := rows.Scan(&rawID, &rawType, &rawAt); err != nil {
			return nil, err
		}
		ev, err := buildPunch(rawID, rawType, rawAt, id)
		if err != nil {
			return nil, err
		}
		ev.WorkDate = date
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (s *Store) LoadMonth(ctx context.Context, id engine.EmployeeID, year int, month time.Month) (map[engine.WorkDate][]engine.PunchEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prefix := fmt.Sprintf("%04d-%02d-", year, int(month))
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, punch_type, punched_at, work_date FROM punches
		WHERE employee_id = ? AND work_date LIKE ?`,
		string(id), prefix+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[engine.WorkDate][]engine.PunchEvent)
	for rows.Next() {
		var rawID, rawType, rawAt, rawDate string
		if err := rows.Scan(&rawID, &rawType, &rawAt, &rawDate); err != nil {
			return nil, err
		}
		ev, err := buildPunch(rawID, rawType, rawAt, id)
		if err != nil {
			return nil, err
		}
		d, err := parseDate(rawDate)
		if err != nil {
			return nil, err
		}
		ev.WorkDate = d
		out[d] = append(out[d], ev)
	}
	return out, rows.Err()
}

func buildPunch(rawID, rawType, rawAt string, id engine.EmployeeID) (engine.PunchEvent, error) {
	pt, err := engine.ParsePunchType(rawType)
	if err != nil {
		return engine.PunchEvent{}, err
	}
	at, err := time.Parse(timeLayout, rawAt)
	if err != nil {
		return engine.PunchEvent{}, fmt.Errorf("parse punch time: %w", err)
	}
	ev := engine.PunchEvent{EmployeeID: id, Type: pt, At: at.UTC()}
	if uid, err := uuid.Parse(rawID); err == nil {
		ev.ID = uid
	}
	return ev, nil
}

func parseDate(s string) (engine.WorkDate, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return engine.WorkDate{}, fmt.Errorf("parse work date: %w", err)
	}
	return engine.NewWorkDate(t.Year(), t.Month(), t.Day()), nil
}

// =============================================================================
// MASTER STORE
// =============================================================================

func (s *Store) GetEmployee(ctx context.Context, id engine.EmployeeID) (engine.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, position_id, COALESCE(factory_id,''), COALESCE(line_id,''),
		       hourly_wage, COALESCE(eligibility_json,'')
		FROM employees WHERE id = ?`, string(id))
	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.Employee{}, engine.ErrEmployeeNotFound
	}
	return e, err
}

func (s *Store) ListEmployees(ctx context.Context) ([]engine.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, position_id, COALESCE(factory_id,''), COALESCE(line_id,''),
		       hourly_wage, COALESCE(eligibility_json,'')
		FROM employees ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (engine.Employee, error) {
	var id, name, posID, factoryID, lineID, wage, eligJSON string
	if err := row.Scan(&id, &name, &posID, &factoryID, &lineID, &wage, &eligJSON); err != nil {
		return engine.Employee{}, err
	}
	w, err := decimal.NewFromString(wage)
	if err != nil {
		return engine.Employee{}, fmt.Errorf("parse hourly wage: %w", err)
	}
	e := engine.Employee{
		ID:         engine.EmployeeID(id),
		Name:       name,
		PositionID: engine.PositionID(posID),
		FactoryID:  engine.FactoryID(factoryID),
		LineID:     engine.LineID(lineID),
		HourlyWage: w,
	}
	if eligJSON != "" {
		if err := json.Unmarshal([]byte(eligJSON), &e.Eligibility); err != nil {
			return engine.Employee{}, fmt.Errorf("parse eligibility override: %w", err)
		}
	}
	return e, nil
}

func (s *Store) SaveEmployee(ctx context.Context, e engine.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	eligJSON, err := json.Marshal(e.Eligibility)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, position_id, factory_id, line_id, hourly_wage, eligibility_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			position_id = excluded.position_id,
			factory_id = excluded.factory_id,
			line_id = excluded.line_id,
			hourly_wage = excluded.hourly_wage,
			eligibility_json = excluded.eligibility_json`,
		string(e.ID), e.Name, string(e.PositionID), string(e.FactoryID),
		string(e.LineID), e.HourlyWage.String(), string(eligJSON))
	return err
}

func (s *Store) GetPosition(ctx context.Context, id engine.PositionID) (engine.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, overtime, night_work, holiday_work, early_work, night_shift
		FROM positions WHERE id = ?`, string(id))

	var pid, name string
	var e engine.AllowanceEligibility
	err := row.Scan(&pid, &name, &e.Overtime, &e.NightWork, &e.HolidayWork, &e.EarlyWork, &e.NightShift)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.Position{}, engine.ErrPositionNotFound
	}
	if err != nil {
		return engine.Position{}, err
	}
	return engine.Position{ID: engine.PositionID(pid), Name: name, Eligibility: e}, nil
}

func (s *Store) SavePosition(ctx context.Context, p engine.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO positions (id, name, overtime, night_work, holiday_work, early_work, night_shift)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			overtime = excluded.overtime,
			night_work = excluded.night_work,
			holiday_work = excluded.holiday_work,
			early_work = excluded.early_work,
			night_shift = excluded.night_shift`,
		string(p.ID), p.Name, p.Eligibility.Overtime, p.Eligibility.NightWork,
		p.Eligibility.HolidayWork, p.Eligibility.EarlyWork, p.Eligibility.NightShift)
	return err
}

func (s *Store) GetShift(ctx context.Context, id engine.EmployeeID, date engine.WorkDate) (engine.ScheduledShift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx, `
		SELECT start_minute, duration_minutes, break_minutes, boundary_hour, day_off
		FROM shifts WHERE employee_id = ? AND work_date = ?`,
		string(id), date.String())

	var sh engine.ScheduledShift
	err := row.Scan(&sh.StartMinute, &sh.DurationMinutes, &sh.BreakMinutes, &sh.BoundaryHour, &sh.DayOff)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.ScheduledShift{}, engine.ErrShiftNotFound
	}
	return sh, err
}

func (s *Store) SaveShift(ctx context.Context, id engine.EmployeeID, date engine.WorkDate, sh engine.ScheduledShift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shifts (employee_id, work_date, start_minute, duration_minutes, break_minutes, boundary_hour, day_off)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, work_date) DO UPDATE SET
			start_minute = excluded.start_minute,
			duration_minutes = excluded.duration_minutes,
			break_minutes = excluded.break_minutes,
			boundary_hour = excluded.boundary_hour,
			day_off = excluded.day_off`,
		string(id), date.String(), sh.StartMinute, sh.DurationMinutes,
		sh.BreakMinutes, sh.BoundaryHour, sh.DayOff)
	return err
}

func (s *Store) ListAllowanceSettings(ctx context.Context) ([]engine.AllowanceSetting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `
		SELECT type, calculation, fixed_amount, rate, condition_type, condition_value,
		       legal_requirement, active
		FROM allowance_settings ORDER BY type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.AllowanceSetting
	for rows.Next() {
		var a engine.AllowanceSetting
		var typ, calc, fixed, rate, cond string
		if err := rows.Scan(&typ, &calc, &fixed, &rate, &cond, &a.ConditionValue,
			&a.LegalRequirement, &a.Active); err != nil {
			return nil, err
		}
		a.Type = engine.AllowanceType(typ)
		a.Calculation = engine.CalculationType(calc)
		a.ConditionType = engine.ConditionType(cond)
		if a.FixedAmount, err = decimal.NewFromString(fixed); err != nil {
			return nil, fmt.Errorf("parse fixed amount: %w", err)
		}
		if a.Rate, err = decimal.NewFromString(rate); err != nil {
			return nil, fmt.Errorf("parse rate: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) SaveAllowanceSetting(ctx context.Context, a engine.AllowanceSetting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO allowance_settings (type, calculation, fixed_amount, rate, condition_type, condition_value, legal_requirement, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(type) DO UPDATE SET
			calculation = excluded.calculation,
			fixed_amount = excluded.fixed_amount,
			rate = excluded.rate,
			condition_type = excluded.condition_type,
			condition_value = excluded.condition_value,
			legal_requirement = excluded.legal_requirement,
			active = excluded.active`,
		string(a.Type), string(a.Calculation), a.FixedAmount.String(), a.Rate.String(),
		string(a.ConditionType), a.ConditionValue, a.LegalRequirement, a.Active)
	return err
}

func (s *Store) GetRoundingConfig(ctx context.Context) (engine.RoundingConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx, `SELECT value FROM app_config WHERE key = 'rounding_granularity'`)
	var v int
	err := row.Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.RoundingConfig{Granularity: 15}, nil
	}
	if err != nil {
		return engine.RoundingConfig{}, err
	}
	return engine.RoundingConfig{Granularity: v}, nil
}

func (s *Store) SaveRoundingConfig(ctx context.Context, c engine.RoundingConfig) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_config (key, value) VALUES ('rounding_granularity', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		fmt.Sprintf("%d", c.Granularity))
	return err
}
