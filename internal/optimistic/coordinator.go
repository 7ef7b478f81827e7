// Package optimistic applies admin edits locally before the remote store
// confirms them.
//
// An edit is staged on the entity store synchronously, so the next read shows
// the new value, and then written remotely in the background. Writes to the
// same document leave in call order, so the last call wins remotely too.
package optimistic

import (
	"context"
	"fmt"
	"sync"
	"time"

	"frailes/internal/admin"
	"frailes/internal/database"
	"frailes/internal/database/utils"
	ierr "frailes/internal/errors"
	"frailes/internal/eventpublisher"
	"frailes/internal/eventpublisher/event"
	"frailes/internal/eventpublisher/fanout"
	"frailes/internal/listmut"

	"github.com/rs/zerolog/log"
)

// Overlay is the part of an entity store the coordinator drives.
type Overlay interface {
	Name() string
	Target() database.Target
	Field(id, path string) (interface{}, bool)
	Stage(id string, fields map[string]interface{}) (uint64, error)
	Settle(id string, paths []string, seq uint64, revert bool, committed time.Time)
}

// Ref addresses one document of an entity store.
type Ref struct {
	Overlay Overlay
	Id      string
}

func Doc(overlay Overlay, id string) Ref {
	return Ref{Overlay: overlay, Id: id}
}

func (r Ref) collection() string {
	return r.Overlay.Target().Collection
}

func (r Ref) key() string {
	return r.collection() + "/" + r.Id
}

type Notifier interface {
	Notify(err error)
}

type NotifierFunc func(err error)

func (f NotifierFunc) Notify(err error) {
	f(err)
}

type Options struct {
	// RevertOnFailure drops the optimistic value of a failed write at once.
	// Otherwise it stays visible until the next snapshot replaces it.
	RevertOnFailure bool
	Notifier        Notifier
}

type Coordinator struct {
	db       database.Store
	revert   bool
	notifier Notifier
	fanout   *fanout.Fanout

	mu    sync.Mutex
	tails map[string]chan struct{}
	wg    sync.WaitGroup
}

var _ eventpublisher.Publisher = (*Coordinator)(nil)

func New(db database.Store, options Options) *Coordinator {
	return &Coordinator{
		db:       db,
		revert:   options.RevertOnFailure,
		notifier: options.Notifier,
		fanout:   fanout.New(fanout.DefaultWriteTimeout, fanout.DefaultWriteFailureThreshold),
		tails:    make(map[string]chan struct{}),
	}
}

// EditField sets one dotted field path of the referenced document.
func (c *Coordinator) EditField(ctx context.Context, capability admin.Capability, ref Ref, path string, value interface{}) *Ack {
	return c.EditFields(ctx, capability, ref, map[string]interface{}{path: value})
}

// EditFields sets several fields of the referenced document with one write.
func (c *Coordinator) EditFields(ctx context.Context, capability admin.Capability, ref Ref, fields map[string]interface{}) *Ack {
	if err := admin.Require(capability); err != nil {
		log.Debug().Msgf("ignoring edit of %s without admin capability", ref.key())
		return Failed(err)
	}
	if len(fields) == 0 {
		return Failed(fmt.Errorf("edit %s: %w, no fields", ref.key(), ierr.ErrValidation))
	}

	values, err := toValues(fields)
	if err != nil {
		return Failed(fmt.Errorf("edit %s: %w: %v", ref.key(), ierr.ErrValidation, err))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stageAndWrite(ctx, ref, values)
}

// Mutate computes the new value of one field from its locally known value and
// then proceeds like EditField. Reading, computing and staging happen under
// one lock, so consecutive mutations of a field build on each other.
func (c *Coordinator) Mutate(ctx context.Context, capability admin.Capability, ref Ref, path string, fn func(current interface{}) (interface{}, error)) *Ack {
	if err := admin.Require(capability); err != nil {
		log.Debug().Msgf("ignoring mutation of %s without admin capability", ref.key())
		return Failed(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	current, _ := ref.Overlay.Field(ref.Id, path)
	next, err := fn(current)
	if err != nil {
		return Failed(fmt.Errorf("mutate %s.%s: %w", ref.key(), path, err))
	}

	value, err := utils.ToValue(next)
	if err != nil {
		return Failed(fmt.Errorf("mutate %s.%s: %w: %v", ref.key(), path, ierr.ErrValidation, err))
	}
	return c.stageAndWrite(ctx, ref, map[string]interface{}{path: value})
}

// MutateList applies op to the locally known list at path and writes the
// whole list back.
func (c *Coordinator) MutateList(ctx context.Context, capability admin.Capability, ref Ref, path string, op listmut.ListOp) *Ack {
	return c.Mutate(ctx, capability, ref, path, func(current interface{}) (interface{}, error) {
		var list []interface{}
		switch v := current.(type) {
		case nil:
		case []interface{}:
			list = v
		default:
			return nil, fmt.Errorf("%w: %s is not a list", ierr.ErrValidation, path)
		}

		item, err := utils.ToValue(op.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ierr.ErrValidation, err)
		}
		op.Value = item
		return op.Apply(list)
	})
}

// Flush waits until every write issued so far has returned.
func (c *Coordinator) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers a watcher of failed edits.
func (c *Coordinator) Subscribe(subscriber event.EventWChannel) {
	c.fanout.Subscribe(subscriber)
}

func (c *Coordinator) Unsubscribe(subscriber event.EventWChannel) {
	c.fanout.Unsubscribe(subscriber)
}

// stageAndWrite must be called with mu held.
func (c *Coordinator) stageAndWrite(ctx context.Context, ref Ref, fields map[string]interface{}) *Ack {
	seq, err := ref.Overlay.Stage(ref.Id, fields)
	if err != nil {
		return Failed(fmt.Errorf("edit %s: %w", ref.key(), err))
	}

	paths := sortedPaths(fields)
	updates := make([]database.Update, 0, len(paths))
	for _, path := range paths {
		updates = append(updates, database.Update{Path: path, Value: fields[path]})
	}

	key := ref.key()
	prev := c.tails[key]
	done := make(chan struct{})
	c.tails[key] = done

	ack := newAck()
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(done)

		if prev != nil {
			<-prev
		}

		committed, err := c.db.Write(context.WithoutCancel(ctx), ref.collection(), ref.Id, updates)

		c.mu.Lock()
		if c.tails[key] == done {
			delete(c.tails, key)
		}
		c.mu.Unlock()

		if err != nil {
			ack.resolve(c.fail(ref, paths, seq, err))
			return
		}

		ref.Overlay.Settle(ref.Id, paths, seq, false, committed)
		ack.resolve(nil)
	}()

	return ack
}

func (c *Coordinator) fail(ref Ref, paths []string, seq uint64, err error) error {
	editErr := &EditError{Collection: ref.collection(), Id: ref.Id, Paths: paths, Err: err}
	log.Error().Err(err).Msgf("optimistic edit of %s failed, revert: %v", ref.key(), c.revert)

	ref.Overlay.Settle(ref.Id, paths, seq, c.revert, time.Time{})

	if c.notifier != nil {
		c.notifier.Notify(editErr)
	}
	c.fanout.Publish(context.Background(), event.Event{Type: event.EditFailed, Source: ref.Overlay.Name(), Err: editErr})
	return editErr
}

func toValues(fields map[string]interface{}) (map[string]interface{}, error) {
	values := make(map[string]interface{}, len(fields))
	for path, v := range fields {
		value, err := utils.ToValue(v)
		if err != nil {
			return nil, err
		}
		values[path] = value
	}
	return values, nil
}
