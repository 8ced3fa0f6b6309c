package workspace

import "sync"

// Store holds the current snapshot. Every mutation is one reducer step
// taken under the lock, so transitions never interleave.
type Store struct {
	mu        sync.RWMutex
	snapshot  Snapshot
	observers map[int]func(Action, Snapshot)
	nextObs   int
}

// NewStore creates a store in the initial logged-out state
func NewStore() *Store {
	return &Store{
		snapshot:  emptySnapshot(),
		observers: make(map[int]func(Action, Snapshot)),
	}
}

// Observe registers a callback run after each applied action and returns
// a function that removes it. Callbacks run outside the lock and must not
// block.
func (s *Store) Observe(fn func(Action, Snapshot)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.nextObs
	s.nextObs++
	s.observers[key] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, key)
	}
}

// Snapshot returns the current snapshot
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Dispatch applies an action and returns the new snapshot
func (s *Store) Dispatch(a Action) Snapshot {
	next, _ := s.DispatchIf(nil, a)
	return next
}

// DispatchIf applies an action only when guard accepts the current
// snapshot. The guard runs under the store lock, so checking a request
// token and applying its result happen as one step.
func (s *Store) DispatchIf(guard func(Snapshot) bool, a Action) (Snapshot, bool) {
	s.mu.Lock()
	if guard != nil && !guard(s.snapshot) {
		current := s.snapshot
		s.mu.Unlock()
		return current, false
	}
	s.snapshot = Reduce(s.snapshot, a)
	next := s.snapshot
	observers := make([]func(Action, Snapshot), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(a, next)
	}
	return next, true
}
