// Package adjust keeps the per-session projection inputs. They are simulation
// values, not ledger entries, and expire with the session.
package adjust

import (
	"context"
	"sync"
	"time"

	"clubdash/pkg/club"
)

type Store interface {
	Get(ctx context.Context, sessionID string) (club.Adjustments, error)
	Set(ctx context.Context, sessionID string, key club.MonthKey, a club.Adjustment) error
	Reset(ctx context.Context, sessionID string) error
}

type memoryEntry struct {
	values  club.Adjustments
	expires time.Time
}

// Memory is a process-local Store.
type Memory struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time
	m   map[string]*memoryEntry
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, now: time.Now, m: make(map[string]*memoryEntry)}
}

func (s *Memory) Get(_ context.Context, sessionID string) (club.Adjustments, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := club.Adjustments{}
	e, ok := s.m[sessionID]
	if !ok {
		return out, nil
	}
	if s.ttl > 0 && s.now().After(e.expires) {
		delete(s.m, sessionID)
		return out, nil
	}
	for k, v := range e.values {
		out[k] = v
	}
	return out, nil
}

func (s *Memory) Set(_ context.Context, sessionID string, key club.MonthKey, a club.Adjustment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	e, ok := s.m[sessionID]
	if !ok {
		e = &memoryEntry{values: club.Adjustments{}}
		s.m[sessionID] = e
	}
	e.values[key] = a
	e.expires = s.now().Add(s.ttl)
	return nil
}

// sweep drops every expired session. Callers hold mu.
func (s *Memory) sweep() {
	if s.ttl <= 0 {
		return
	}
	now := s.now()
	for id, e := range s.m {
		if now.After(e.expires) {
			delete(s.m, id)
		}
	}
}

func (s *Memory) Reset(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.m, sessionID)
	s.mu.Unlock()
	return nil
}
