package usecase

import (
	"sync"

	"pulse/internal/modules/heartrate/domain"
	"pulse/internal/modules/heartrate/dto"
)

// stateStore holds the session state and fans out snapshots. Subscriber
// channels have a single slot that always carries the latest snapshot.
type stateStore struct {
	render func(domain.State) dto.SessionState

	mu     sync.RWMutex
	state  domain.State
	closed bool
	nextID int
	subs   map[int]chan dto.SessionState
}

func newStateStore(render func(domain.State) dto.SessionState) *stateStore {
	return &stateStore{render: render, subs: map[int]chan dto.SessionState{}}
}

func (s *stateStore) snapshot() dto.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.render(s.state.Clone())
}

// update applies fn unless the store is closed. It reports whether fn ran.
func (s *stateStore) update(fn func(*domain.State)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	fn(&s.state)
	snap := s.render(s.state.Clone())
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
	return true
}

func (s *stateStore) subscribe() (<-chan dto.SessionState, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan dto.SessionState, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextID
	s.nextID++
	ch <- s.render(s.state.Clone())
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(sub)
			}
		})
	}
}

func (s *stateStore) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}
