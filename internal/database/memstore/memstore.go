// Package memstore is an in-process implementation of database.Store. It keeps
// the same contract as the Firestore adapter: full snapshots on subscribe and
// after every change, dotted-path partial writes, server ids and timestamps.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"frailes/internal/database"
	"frailes/internal/database/utils"
	ierr "frailes/internal/errors"

	"github.com/google/uuid"
)

type OpKind int

const (
	OpWrite OpKind = iota
	OpCreate
	OpDelete
)

// Op describes a mutation about to be applied. Hooks receive it before the
// store state changes.
type Op struct {
	Kind       OpKind
	Collection string
	Id         string
	Updates    []database.Update
}

// WriteHook runs before each mutation. Returning an error fails the mutation
// without applying it; blocking delays it.
type WriteHook func(ctx context.Context, op Op) error

type memDoc struct {
	data map[string]interface{}
}

type Store struct {
	mu          sync.Mutex
	collections map[string]map[string]*memDoc
	subscribers map[*subscriber]struct{}
	hook        WriteHook
	paused      bool
	lastStamp   time.Time
}

var _ database.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		collections: make(map[string]map[string]*memDoc),
		subscribers: make(map[*subscriber]struct{}),
	}
}

func (s *Store) SetWriteHook(hook WriteHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = hook
}

// Pause holds snapshot delivery; snapshots produced meanwhile are queued and
// released in order by Resume.
func (s *Store) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

func (s *Store) Resume() {
	s.mu.Lock()
	s.paused = false
	subs := s.subscriberList()
	s.mu.Unlock()

	for _, sub := range subs {
		sub.wake()
	}
}

// Break terminates every subscription on the collection with err.
func (s *Store) Break(collection string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for sub := range s.subscribers {
		if sub.target.Collection == collection {
			sub.push(database.Snapshot{Err: err})
			sub.terminate()
		}
	}
}

// Subscribers reports the number of live subscriptions.
func (s *Store) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}

// Get returns a copy of a stored document.
func (s *Store) Get(collection, id string) (map[string]interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, false
	}
	return utils.CloneData(doc.data), true
}

func (s *Store) Subscribe(ctx context.Context, target database.Target) <-chan database.Snapshot {
	ch := make(chan database.Snapshot)
	sub := newSubscriber(s, target, ch)

	s.mu.Lock()
	s.subscribers[sub] = struct{}{}
	sub.push(s.snapshot(target))
	s.mu.Unlock()

	go sub.run(ctx)
	return ch
}

func (s *Store) Write(ctx context.Context, collection, id string, updates []database.Update) (time.Time, error) {
	if err := s.runHook(ctx, Op{Kind: OpWrite, Collection: collection, Id: id, Updates: updates}); err != nil {
		return time.Time{}, fmt.Errorf("write %s: %w, id: %s", collection, err, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return time.Time{}, fmt.Errorf("write %s: %w, id: %s", collection, ierr.NotFound, id)
	}

	data := doc.data
	for _, u := range updates {
		data = utils.SetPath(data, u.Path, utils.Clone(u.Value))
	}
	doc.data = data

	committed := s.stamp()
	s.publish(collection)
	return committed, nil
}

func (s *Store) Create(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
	if err := s.runHook(ctx, Op{Kind: OpCreate, Collection: collection, Id: id}); err != nil {
		return "", fmt.Errorf("create %s: %w", collection, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fields := utils.CloneData(data)
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields[database.TimestampField] = s.stamp()

	s.put(collection, id, fields)
	s.publish(collection)
	return id, nil
}

func (s *Store) CreateDoc(ctx context.Context, collection, id string, data map[string]interface{}) error {
	if err := s.runHook(ctx, Op{Kind: OpCreate, Collection: collection, Id: id}); err != nil {
		return fmt.Errorf("create %s: %w, id: %s", collection, err, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; ok {
		return fmt.Errorf("create %s: %w, id: %s", collection, ierr.ErrAlreadyExists, id)
	}

	fields := utils.CloneData(data)
	if fields == nil {
		fields = map[string]interface{}{}
	}
	s.put(collection, id, fields)
	s.stamp()
	s.publish(collection)
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := s.runHook(ctx, Op{Kind: OpDelete, Collection: collection, Id: id}); err != nil {
		return fmt.Errorf("delete %s: %w, id: %s", collection, err, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return nil
	}
	delete(s.collections[collection], id)
	s.stamp()
	s.publish(collection)
	return nil
}

func (s *Store) runHook(ctx context.Context, op Op) error {
	s.mu.Lock()
	hook := s.hook
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if hook == nil {
		return nil
	}
	return hook(ctx, op)
}

func (s *Store) put(collection, id string, data map[string]interface{}) {
	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]*memDoc)
		s.collections[collection] = coll
	}
	coll[id] = &memDoc{data: data}
}

// stamp advances the store clock. Stamps are strictly increasing, so creation
// order is always recoverable from the timestamp field and a snapshot's read
// time covers exactly the mutations before it.
func (s *Store) stamp() time.Time {
	now := time.Now().UTC()
	if !now.After(s.lastStamp) {
		now = s.lastStamp.Add(time.Microsecond)
	}
	s.lastStamp = now
	return now
}

// publish must be called with mu held.
func (s *Store) publish(collection string) {
	for sub := range s.subscribers {
		if sub.target.Collection == collection {
			sub.push(s.snapshot(sub.target))
		}
	}
}

// snapshot must be called with mu held.
func (s *Store) snapshot(target database.Target) database.Snapshot {
	coll := s.collections[target.Collection]

	if target.IsDoc() {
		doc, ok := coll[target.Doc]
		if !ok {
			return database.Snapshot{ReadTime: s.lastStamp}
		}
		return database.Snapshot{Docs: []database.Document{{ID: target.Doc, Data: utils.CloneData(doc.data)}}, ReadTime: s.lastStamp}
	}

	docs := make([]database.Document, 0, len(coll))
	for id, doc := range coll {
		if target.OrderBy != "" {
			if _, ok := utils.GetPath(doc.data, target.OrderBy); !ok {
				// ordered queries skip documents lacking the order field
				continue
			}
		}
		docs = append(docs, database.Document{ID: id, Data: utils.CloneData(doc.data)})
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if target.OrderBy == "" {
			return docs[i].ID < docs[j].ID
		}
		a, _ := utils.GetPath(docs[i].Data, target.OrderBy)
		b, _ := utils.GetPath(docs[j].Data, target.OrderBy)
		c := compare(a, b)
		if c == 0 {
			return docs[i].ID < docs[j].ID
		}
		if target.Direction == database.Desc {
			return c > 0
		}
		return c < 0
	})

	return database.Snapshot{Docs: docs, ReadTime: s.lastStamp}
}

func (s *Store) subscriberList() []*subscriber {
	subs := make([]*subscriber, 0, len(s.subscribers))
	for sub := range s.subscribers {
		subs = append(subs, sub)
	}
	return subs
}

func (s *Store) remove(sub *subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscribers, sub)
}

func (s *Store) isPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func compare(a, b interface{}) int {
	switch x := a.(type) {
	case time.Time:
		y, _ := b.(time.Time)
		return x.Compare(y)
	case float64:
		y, _ := b.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case string:
		y, _ := b.(string)
		return strings.Compare(x, y)
	}
	return 0
}
