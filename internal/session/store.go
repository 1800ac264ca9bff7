package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/appengine-ltd/command-it/internal/resolve"
)

var ErrClarificationPending = errors.New("a clarification is already pending for this session")

// UpdateFunc receives the current slot (nil when empty) and returns the slot
// to store (nil clears it).
type UpdateFunc func(cur *resolve.Pending) (*resolve.Pending, error)

// Store holds the single pending clarification of each session.
type Store interface {
	Get(ctx context.Context, id string) (*resolve.Pending, error)
	// Ask stores p, failing with ErrClarificationPending when the session
	// already has a question outstanding.
	Ask(ctx context.Context, id string, p *resolve.Pending) error
	Clear(ctx context.Context, id string) error
	// Update runs fn inside the slot's critical section, so reading the slot,
	// resolving and writing the result happen atomically.
	Update(ctx context.Context, id string, fn UpdateFunc) error
}

type memorySlot struct {
	mu      sync.Mutex
	pending *resolve.Pending
	expires time.Time
}

// MemoryStore keeps slots in process. Each session has its own mutex.
type MemoryStore struct {
	mu    sync.Mutex
	slots map[string]*memorySlot
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{slots: map[string]*memorySlot{}, ttl: ttl, now: time.Now}
}

func (s *MemoryStore) slot(id string) *memorySlot {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[id]
	if !ok {
		sl = &memorySlot{}
		s.slots[id] = sl
	}
	return sl
}

// current must be called with sl.mu held.
func (s *MemoryStore) current(sl *memorySlot) *resolve.Pending {
	if sl.pending != nil && s.ttl > 0 && s.now().After(sl.expires) {
		sl.pending = nil
	}
	return sl.pending
}

func (s *MemoryStore) set(sl *memorySlot, p *resolve.Pending) {
	sl.pending = clonePending(p)
	sl.expires = s.now().Add(s.ttl)
}

func (s *MemoryStore) Get(_ context.Context, id string) (*resolve.Pending, error) {
	sl := s.slot(id)
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return clonePending(s.current(sl)), nil
}

func (s *MemoryStore) Ask(_ context.Context, id string, p *resolve.Pending) error {
	sl := s.slot(id)
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if s.current(sl) != nil {
		return ErrClarificationPending
	}
	s.set(sl, p)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, id string) error {
	sl := s.slot(id)
	sl.mu.Lock()
	defer sl.mu.Unlock()
	sl.pending = nil
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, fn UpdateFunc) error {
	sl := s.slot(id)
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	next, err := fn(clonePending(s.current(sl)))
	if err != nil {
		return err
	}
	s.set(sl, next)
	return nil
}

func clonePending(p *resolve.Pending) *resolve.Pending {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Missing = append([]string(nil), p.Missing...)
	if p.Bound != nil {
		cp.Bound = make(map[string]string, len(p.Bound))
		for k, v := range p.Bound {
			cp.Bound[k] = v
		}
	}
	return &cp
}
