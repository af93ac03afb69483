// Package store provides an in-memory Store implementation for tests and
// scenario seeding.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/warp/attendance-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	punches   map[dayKey][]engine.PunchEvent
	employees map[engine.EmployeeID]engine.Employee
	positions map[engine.PositionID]engine.Position
	shifts    map[dayKey]engine.ScheduledShift
	settings  []engine.AllowanceSetting
	rounding  engine.RoundingConfig
}

type dayKey struct {
	ID   engine.EmployeeID
	Date engine.WorkDate
}

func NewMemory() *Memory {
	return &Memory{
		punches:   make(map[dayKey][]engine.PunchEvent),
		employees: make(map[engine.EmployeeID]engine.Employee),
		positions: make(map[engine.PositionID]engine.Position),
		shifts:    make(map[dayKey]engine.ScheduledShift),
		rounding:  engine.RoundingConfig{Granularity: 15},
	}
}

var _ engine.Store = (*Memory)(nil)

// -----------------------------------------------------------------------------
// PunchStore
// -----------------------------------------------------------------------------

func (m *Memory) RecordPunch(_ context.Context, ev engine.PunchEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := dayKey{ID: ev.EmployeeID, Date: ev.WorkDate}
	m.punches[k] = append(m.punches[k], ev)
	return nil
}

func (m *Memory) ReplaceDay(_ context.Context, id engine.EmployeeID, date engine.WorkDate, evs []engine.PunchEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := dayKey{ID: id, Date: date}
	m.punches[k] = append([]engine.PunchEvent(nil), evs...)
	return nil
}

func (m *Memory) LoadDay(_ context.Context, id engine.EmployeeID, date engine.WorkDate) ([]engine.PunchEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	k := dayKey{ID: id, Date: date}
	return append([]engine.PunchEvent(nil), m.punches[k]...), nil
}

func (m *Memory) LoadMonth(_ context.Context, id engine.EmployeeID, year int, month time.Month) (map[engine.WorkDate][]engine.PunchEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[engine.WorkDate][]engine.PunchEvent)
	for k, evs := range m.punches {
		if k.ID == id && k.Date.Year == year && k.Date.Month == month {
			out[k.Date] = append([]engine.PunchEvent(nil), evs...)
		}
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// MasterStore
// -----------------------------------------------------------------------------

func (m *Memory) GetEmployee(_ context.Context, id engine.EmployeeID) (engine.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.employees[id]
	if !ok {
		return engine.Employee{}, engine.ErrEmployeeNotFound
	}
	return e, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]engine.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]engine.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, e)
	}
	return out, nil
}

func (m *Memory) SaveEmployee(_ context.Context, e engine.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
	return nil
}

func (m *Memory) GetPosition(_ context.Context, id engine.PositionID) (engine.Position, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.positions[id]
	if !ok {
		return engine.Position{}, engine.ErrPositionNotFound
	}
	return p, nil
}

func (m *Memory) SavePosition(_ context.Context, p engine.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[p.ID] = p
	return nil
}

func (m *Memory) GetShift(_ context.Context, id engine.EmployeeID, date engine.WorkDate) (engine.ScheduledShift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.shifts[dayKey{ID: id, Date: date}]
	if !ok {
		return engine.ScheduledShift{}, engine.ErrShiftNotFound
	}
	return s, nil
}

func (m *Memory) SaveShift(_ context.Context, id engine.EmployeeID, date engine.WorkDate, s engine.ScheduledShift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shifts[dayKey{ID: id, Date: date}] = s
	return nil
}

func (m *Memory) ListAllowanceSettings(_ context.Context) ([]engine.AllowanceSetting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]engine.AllowanceSetting(nil), m.settings...), nil
}

func (m *Memory) SaveAllowanceSetting(_ context.Context, s engine.AllowanceSetting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.settings {
		if m.settings[i].Type == s.Type {
			m.settings[i] = s
			return nil
		}
	}
	m.settings = append(m.settings, s)
	return nil
}

func (m *Memory) GetRoundingConfig(_ context.Context) (engine.RoundingConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rounding, nil
}

func (m *Memory) SaveRoundingConfig(_ context.Context, c engine.RoundingConfig) error {
	if err := c.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rounding = c
	return nil
}
