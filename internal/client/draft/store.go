package draft

import "sync"

// Listener receives published snapshots in version order. Bursts of updates
// may be coalesced into the latest one.
type Listener func(Tree)

// Store owns the current Tree. Updates are serialized; listeners are called
// outside the update lock, one snapshot at a time, and never see an older
// version after a newer one.
type Store struct {
	mu      sync.Mutex
	current Tree

	notifyMu  sync.Mutex
	delivered uint64
	nextSubID int
	listeners map[int]Listener
}

func NewStore(courseID string) *Store {
	return &Store{
		current:   NewTree(courseID),
		listeners: make(map[int]Listener),
	}
}

// Snapshot returns the current tree.
func (s *Store) Snapshot() Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Update applies fn to the current tree. If fn fails, nothing changes and
// no one is notified. On success the new tree gets the next version and is
// published.
func (s *Store) Update(fn func(Tree) (Tree, error)) (Tree, error) {
	s.mu.Lock()
	next, err := fn(s.current)
	if err != nil {
		cur := s.current
		s.mu.Unlock()
		return cur, err
	}
	next.Version = s.current.Version + 1
	s.current = next
	s.mu.Unlock()

	s.publish()
	return next, nil
}

// publish delivers the latest tree unless a newer or equal version has
// already gone out. Listeners must not call Update synchronously.
func (s *Store) publish() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	latest := s.Snapshot()
	if latest.Version <= s.delivered {
		return
	}
	s.delivered = latest.Version

	for _, l := range s.snapshotListeners() {
		l(latest)
	}
}

func (s *Store) snapshotListeners() []Listener {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextSubID; id++ {
		if l, ok := s.listeners[id]; ok {
			out = append(out, l)
		}
	}
	return out
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.listeners[id] = l
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}
