package memstore

import (
	"context"
	"sync"

	"frailes/internal/database"
)

type subscriber struct {
	store  *Store
	target database.Target
	ch     chan database.Snapshot

	mu         sync.Mutex
	queue      []database.Snapshot
	terminated bool
	signal     chan struct{}
}

func newSubscriber(store *Store, target database.Target, ch chan database.Snapshot) *subscriber {
	return &subscriber{
		store:  store,
		target: target,
		ch:     ch,
		signal: make(chan struct{}, 1),
	}
}

func (s *subscriber) push(snap database.Snapshot) {
	s.mu.Lock()
	if s.terminated {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, snap)
	s.mu.Unlock()
	s.wake()
}

func (s *subscriber) terminate() {
	s.mu.Lock()
	s.terminated = true
	s.mu.Unlock()
	s.wake()
}

func (s *subscriber) wake() {
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// next pops the oldest queued snapshot. done reports that the subscription
// was terminated and nothing is left to deliver.
func (s *subscriber) next() (snap database.Snapshot, ok bool, done bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return database.Snapshot{}, false, s.terminated
	}
	snap = s.queue[0]
	s.queue = s.queue[1:]
	return snap, true, false
}

func (s *subscriber) run(ctx context.Context) {
	defer close(s.ch)
	defer s.store.remove(s)

	for {
		if !s.store.isPaused() {
			for {
				snap, ok, done := s.next()
				if done {
					return
				}
				if !ok {
					break
				}
				select {
				case s.ch <- snap:
				case <-ctx.Done():
					return
				}
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-s.signal:
		}
	}
}
