package display

import (
	"sync"

	"github.com/oshokin/proximity-alarm/internal/domain/proximity"
)

// Store keeps the current DisplayState and notifies watchers of revisions.
type Store struct {
	// mu protects state and watchers.
	mu sync.RWMutex
	// state is the current display content.
	state proximity.DisplayState
	// watchers receive the latest state; each channel holds at most one value.
	watchers map[uint64]chan proximity.DisplayState
	// nextWatcher is the id assigned to the next watcher.
	nextWatcher uint64
}

// NewStore creates a store showing initial.
func NewStore(initial proximity.DisplayState) *Store {
	return &Store{
		state:    initial,
		watchers: make(map[uint64]chan proximity.DisplayState),
	}
}

// SetText implements Sink.
func (s *Store) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Text = text
	s.commit()
}

// SetImage implements Sink.
func (s *Store) SetImage(image proximity.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Image = image
	s.commit()
}

// Snapshot returns the current state.
func (s *Store) Snapshot() proximity.DisplayState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

// Watch returns a channel carrying the current state and then every newer
// revision. Slow readers skip intermediate revisions but always end up with
// the latest one. Call the returned function to stop watching; it closes
// the channel.
func (s *Store) Watch() (<-chan proximity.DisplayState, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextWatcher
	s.nextWatcher++

	ch := make(chan proximity.DisplayState, 1)
	ch <- s.state

	s.watchers[id] = ch

	var once sync.Once

	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()

			delete(s.watchers, id)
			close(ch)
		})
	}
}

// commit bumps the revision and publishes it; mu must be held.
func (s *Store) commit() {
	s.state.Revision++

	for _, ch := range s.watchers {
		// Replace a stale unread value with the newest one.
		select {
		case <-ch:
		default:
		}

		ch <- s.state
	}
}
