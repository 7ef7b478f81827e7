// Package store keeps one live, locally cached projection of a remote
// document or collection. Every snapshot replaces the cached base wholesale;
// optimistic edits are kept as per-field overlays on top of it until the
// remote store has settled them.
package store

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"frailes/internal/database"
	"frailes/internal/database/utils"
	ierr "frailes/internal/errors"
	"frailes/internal/eventpublisher"
	"frailes/internal/eventpublisher/event"
	"frailes/internal/eventpublisher/fanout"

	"github.com/rs/zerolog/log"
)

type Decoder[T any] func(doc database.Document) (T, error)

type pendingEdit struct {
	seq     uint64
	value   interface{}
	settled bool
	// committed is the commit time of a successful write; zero when it failed.
	committed time.Time
	// prev is the edit of the same path staged before this one.
	prev *pendingEdit
}

// supersededBy reports whether snap replaces a settled edit.
func (e *pendingEdit) supersededBy(snap database.Snapshot) bool {
	if !e.settled {
		return false
	}
	if e.committed.IsZero() || snap.ReadTime.IsZero() {
		return true
	}
	return !snap.ReadTime.Before(e.committed)
}

// prune drops the edits of a chain that snap replaces. A successful write
// carried by snap carries every write staged before it.
func prune(e *pendingEdit, snap database.Snapshot) *pendingEdit {
	if e == nil {
		return nil
	}
	if !e.supersededBy(snap) {
		e.prev = prune(e.prev, snap)
		return e
	}
	if e.committed.IsZero() {
		return prune(e.prev, snap)
	}
	return nil
}

type Options struct {
	// FirstSnapshotTimeout bounds the wait for the first snapshot. When it
	// expires the store is marked ready with whatever it holds.
	FirstSnapshotTimeout time.Duration
	WatchWriteTimeout    time.Duration
}

type Store[T any] struct {
	name    string
	db      database.Store
	target  database.Target
	decode  Decoder[T]
	options Options

	mu         sync.Mutex
	base       []database.Document
	readTime   time.Time
	pending    map[string]map[string]*pendingEdit
	seq        uint64
	version    uint64
	ready      bool
	readyCh    chan struct{}
	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}

	view   atomic.Pointer[View[T]]
	fanout *fanout.Fanout
	notify chan event.Event
}

var _ eventpublisher.Publisher = (*Store[struct{}])(nil)

func New[T any](name string, db database.Store, target database.Target, decode Decoder[T], options Options) *Store[T] {
	s := &Store[T]{
		name:    name,
		db:      db,
		target:  target,
		decode:  decode,
		options: options,
		pending: make(map[string]map[string]*pendingEdit),
		readyCh: make(chan struct{}),
		fanout:  fanout.New(options.WatchWriteTimeout, fanout.DefaultWriteFailureThreshold),
		notify:  make(chan event.Event, 16),
	}
	s.view.Store(&View[T]{})
	return s
}

func (s *Store[T]) Name() string {
	return s.name
}

func (s *Store[T]) Target() database.Target {
	return s.target
}

// Start opens the standing subscription. Calling Start on a running store is
// a no-op.
func (s *Store[T]) Start(ctx context.Context) {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.generation++
	gen := s.generation
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	snaps := s.db.Subscribe(ctx, s.target)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.run(ctx, gen, snaps)
	}()
	go func() {
		defer wg.Done()
		s.deliver(ctx)
	}()
	go func() {
		wg.Wait()
		close(done)
	}()
}

// Stop tears the subscription down. No snapshot is applied after Stop
// returns. The last known view is kept.
func (s *Store[T]) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.done = nil
	s.generation++
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Run starts the store and blocks until ctx is done.
func (s *Store[T]) Run(ctx context.Context) error {
	s.Start(ctx)
	<-ctx.Done()
	s.Stop()
	return nil
}

func (s *Store[T]) run(ctx context.Context, gen uint64, snaps <-chan database.Snapshot) {
	var timeout <-chan time.Time
	if s.options.FirstSnapshotTimeout > 0 && !s.Ready() {
		timer := time.NewTimer(s.options.FirstSnapshotTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-timeout:
			timeout = nil
			if !s.Ready() {
				log.Warn().Msgf("store %s: no snapshot after %s, continuing with local state", s.name, s.options.FirstSnapshotTimeout)
				s.markReady(gen)
			}

		case snap, ok := <-snaps:
			if !ok {
				// the remote closed the stream, degrade to loaded-but-possibly-stale
				s.markReady(gen)
				snaps = nil
				continue
			}

			if snap.Err != nil {
				log.Error().Err(snap.Err).Msgf("store %s: subscription failed", s.name)
				s.markReady(gen)
				s.emit(event.Event{Type: event.StoreFailed, Source: s.name, Err: snap.Err})
				continue
			}

			s.apply(gen, snap)
		}
	}
}

// deliver hands queued events to the watchers. A slow watcher delays the
// other watchers, never the snapshots.
func (s *Store[T]) deliver(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-s.notify:
			s.fanout.Publish(ctx, e)
		}
	}
}

func (s *Store[T]) apply(gen uint64, snap database.Snapshot) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}

	s.base = snap.Docs
	s.readTime = snap.ReadTime
	for id, fields := range s.pending {
		for path, edit := range fields {
			if head := prune(edit, snap); head != nil {
				fields[path] = head
			} else {
				delete(fields, path)
			}
		}
		if len(fields) == 0 {
			delete(s.pending, id)
		}
	}

	becameReady := s.setReady()
	view := s.materialize()
	s.mu.Unlock()

	if becameReady {
		s.emit(event.Event{Type: event.StoreReady, Source: s.name, Message: view})
	}
	s.emit(event.Event{Type: event.StoreChanged, Source: s.name, Message: view})
}

func (s *Store[T]) markReady(gen uint64) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	becameReady := s.setReady()
	view := s.materialize()
	s.mu.Unlock()

	if becameReady {
		s.emit(event.Event{Type: event.StoreReady, Source: s.name, Message: view})
	}
}

// setReady must be called with mu held.
func (s *Store[T]) setReady() bool {
	if s.ready {
		return false
	}
	s.ready = true
	close(s.readyCh)
	return true
}

func (s *Store[T]) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// WaitReady blocks until the first snapshot was applied, the first snapshot
// timeout expired or the subscription failed.
func (s *Store[T]) WaitReady(ctx context.Context) error {
	select {
	case <-s.readyCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Read returns the current view. It never blocks on the network.
func (s *Store[T]) Read() View[T] {
	return *s.view.Load()
}

// Field reads a dotted field path of document id from the current view.
func (s *Store[T]) Field(id, path string) (interface{}, bool) {
	return s.Read().Field(id, path)
}

// Items is a shortcut for Read().Items.
func (s *Store[T]) Items() []T {
	return s.Read().Items
}

// Stage overlays fields of document id with optimistic values and returns
// the sequence number identifying this edit. A later Stage of the same path
// supersedes earlier ones.
func (s *Store[T]) Stage(id string, fields map[string]interface{}) (uint64, error) {
	s.mu.Lock()
	if !s.hasDoc(id) {
		s.mu.Unlock()
		return 0, ierr.NotFound
	}

	s.seq++
	seq := s.seq
	edits, ok := s.pending[id]
	if !ok {
		edits = make(map[string]*pendingEdit)
		s.pending[id] = edits
	}
	for path, value := range fields {
		edits[path] = &pendingEdit{seq: seq, value: value, prev: edits[path]}
	}
	view := s.materialize()
	s.mu.Unlock()

	s.emit(event.Event{Type: event.StoreChanged, Source: s.name, Message: view})
	return seq, nil
}

// Settle resolves the edit seq for the given paths once its write returned.
// With revert the edit is dropped at once and the field shows the edit staged
// before it, or the last snapshot value when there is none. Otherwise the
// overlay stays until a snapshot read at or after committed arrives; a zero
// committed time, as for a failed write, lets the next snapshot replace it.
// An edit shadowed by a later one keeps its place in the path's chain.
func (s *Store[T]) Settle(id string, paths []string, seq uint64, revert bool, committed time.Time) {
	s.mu.Lock()
	edits := s.pending[id]
	changed := false
	for _, path := range paths {
		head := edits[path]
		var parent *pendingEdit
		edit := head
		for edit != nil && edit.seq != seq {
			parent, edit = edit, edit.prev
		}
		if edit == nil {
			continue
		}

		switch {
		case revert:
			if parent == nil {
				head = edit.prev
				changed = true
			} else {
				parent.prev = edit.prev
			}
		case !committed.IsZero() && !s.readTime.Before(committed):
			// the applied snapshot already carries this write and the older ones
			if parent == nil {
				head = nil
				changed = true
			} else {
				parent.prev = nil
			}
		default:
			edit.settled = true
			edit.committed = committed
		}

		if head == nil {
			delete(edits, path)
		} else {
			edits[path] = head
		}
	}
	if len(edits) == 0 {
		delete(s.pending, id)
	}

	if !changed {
		s.mu.Unlock()
		return
	}
	view := s.materialize()
	s.mu.Unlock()

	s.emit(event.Event{Type: event.StoreChanged, Source: s.name, Message: view})
}

// Pending reports whether document id has optimistic values not yet
// replaced by a snapshot.
func (s *Store[T]) Pending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending[id]) > 0
}

func (s *Store[T]) Subscribe(subscriber event.EventWChannel) {
	s.fanout.Subscribe(subscriber)
}

func (s *Store[T]) Unsubscribe(subscriber event.EventWChannel) {
	s.fanout.Unsubscribe(subscriber)
}

// emit queues e for watchers. Watchers only see events while the store
// runs; when the queue is full the event is dropped, later views supersede it.
func (s *Store[T]) emit(e event.Event) {
	if s.fanout.Len() == 0 {
		return
	}
	select {
	case s.notify <- e:
	default:
		log.Debug().Msgf("store %s: watcher queue full, dropping %s event", s.name, e.Type)
	}
}

// hasDoc must be called with mu held.
func (s *Store[T]) hasDoc(id string) bool {
	for _, doc := range s.base {
		if doc.ID == id {
			return true
		}
	}
	return false
}

// materialize must be called with mu held. It builds a fresh immutable view
// from the base and the overlays and swaps it in.
func (s *Store[T]) materialize() View[T] {
	s.version++

	docs := make([]database.Document, 0, len(s.base))
	items := make([]T, 0, len(s.base))
	for _, doc := range s.base {
		if edits := s.pending[doc.ID]; len(edits) > 0 {
			doc = database.Document{ID: doc.ID, Data: overlay(doc.Data, edits)}
		}

		item, err := s.decode(doc)
		if err != nil {
			log.Error().Err(err).Msgf("store %s: failed to decode doc %s", s.name, doc.ID)
			continue
		}
		docs = append(docs, doc)
		items = append(items, item)
	}

	view := &View[T]{
		Items:   items,
		Docs:    docs,
		Ready:   s.ready,
		Version: s.version,
	}
	s.view.Store(view)
	return *view
}

// overlay applies edits in the order they were staged, so an edit of a parent
// path staged after a child path wins over it.
func overlay(data map[string]interface{}, edits map[string]*pendingEdit) map[string]interface{} {
	paths := make([]string, 0, len(edits))
	for path := range edits {
		paths = append(paths, path)
	}
	sort.Slice(paths, func(i, j int) bool {
		a, b := edits[paths[i]], edits[paths[j]]
		if a.seq == b.seq {
			return paths[i] < paths[j]
		}
		return a.seq < b.seq
	})

	for _, path := range paths {
		data = utils.SetPath(data, path, edits[path].value)
	}
	return data
}
