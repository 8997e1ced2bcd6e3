package engine

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
)

// Slot holds at most one live chart. Replace destroys the previous chart
// before the new one is created, so two instances never coexist.
type Slot struct {
	mu      sync.Mutex
	engine  Engine
	current *tracked
	live    atomic.Int64
	created atomic.Int64
}

// NewSlot returns an empty slot drawing with e.
func NewSlot(e Engine) *Slot {
	return &Slot{engine: e}
}

// Engine returns the slot's engine.
func (s *Slot) Engine() Engine { return s.engine }

// Replace destroys the current chart, if any, and creates a new one from
// cfg. On error the slot is left empty.
func (s *Slot) Replace(ctx context.Context, cfg Config) (Chart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.release()

	chart, err := s.engine.Create(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s.live.Add(1)
	s.created.Add(1)

	s.current = &tracked{Chart: chart, live: &s.live}

	return s.current, nil
}

// Current returns the live chart or nil.
func (s *Slot) Current() Chart {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}

	return s.current
}

// Live returns how many charts created by this slot are not destroyed.
func (s *Slot) Live() int64 { return s.live.Load() }

// Created returns how many charts this slot has created.
func (s *Slot) Created() int64 { return s.created.Load() }

// Close destroys the live chart.
func (s *Slot) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.release()
}

func (s *Slot) release() {
	if s.current == nil {
		return
	}

	s.current.Destroy()
	s.current = nil
}

// tracked decrements the slot's live counter exactly once.
type tracked struct {
	Chart

	once sync.Once
	live *atomic.Int64
}

func (t *tracked) Destroy() {
	t.once.Do(func() {
		t.Chart.Destroy()
		t.live.Add(-1)
	})
}

func (t *tracked) Render(w io.Writer) error {
	return t.Chart.Render(w)
}

// Regions forwards to the wrapped chart when it is a Mapper.
func (t *tracked) Regions() []Region {
	if m, ok := t.Chart.(Mapper); ok {
		return m.Regions()
	}

	return nil
}

// Unwrap returns the engine-specific chart behind a chart handed out by a
// Slot. Other charts are returned unchanged.
func Unwrap(c Chart) Chart {
	if t, ok := c.(*tracked); ok {
		return t.Chart
	}

	return c
}
