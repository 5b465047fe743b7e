package storefront

import (
	"context"
	"sync"
	"time"

	"Storefront/internal/cart"
)

const maxSweepInterval = time.Minute

type memCart struct {
	state   cart.State
	expires time.Time
}

// MemStore keeps carts in process. A cart untouched for ttl is dropped,
// either when its session comes back or on the next sweep, whichever is
// first. Sweeps run from Load and Update at most once per sweep interval.
type MemStore struct {
	mu  sync.Mutex
	m   map[string]memCart
	ttl time.Duration
	now func() time.Time

	sweepEvery time.Duration
	nextSweep  time.Time
}

func NewMemStore(ttl time.Duration) *MemStore {
	every := ttl
	if every <= 0 || every > maxSweepInterval {
		every = maxSweepInterval
	}
	return &MemStore{
		m:          make(map[string]memCart),
		ttl:        ttl,
		now:        time.Now,
		sweepEvery: every,
	}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Load(ctx context.Context, sessionID string) (cart.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.maybeSweep(now)
	return s.current(sessionID, now), nil
}

func (s *MemStore) Update(ctx context.Context, sessionID string, fn func(cart.State) cart.State) (cart.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.maybeSweep(now)

	next := fn(s.current(sessionID, now))
	if len(next) == 0 {
		delete(s.m, sessionID)
		return cart.Empty(), nil
	}

	s.m[sessionID] = memCart{state: next, expires: now.Add(s.ttl)}
	return next, nil
}

// current must be called with mu held.
func (s *MemStore) current(sessionID string, now time.Time) cart.State {
	c, ok := s.m[sessionID]
	if !ok {
		return cart.Empty()
	}
	if !now.Before(c.expires) {
		delete(s.m, sessionID)
		return cart.Empty()
	}
	return c.state
}

// maybeSweep drops every expired cart once the sweep interval has passed.
// It must be called with mu held.
func (s *MemStore) maybeSweep(now time.Time) {
	if now.Before(s.nextSweep) {
		return
	}
	for sid, c := range s.m {
		if !now.Before(c.expires) {
			delete(s.m, sid)
		}
	}
	s.nextSweep = now.Add(s.sweepEvery)
}
