package fanout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"frailes/internal/eventpublisher"
	"frailes/internal/eventpublisher/event"
)

var ErrWriteFailure = fmt.Errorf("write failure threshold exceeded")

const (
	DefaultWriteTimeout          = time.Second
	DefaultWriteFailureThreshold = 3
)

// Fanout delivers events to every subscribed channel in publish order. A
// subscriber that misses writeFailureThreshold consecutive deliveries is
// unsubscribed and its channel closed.
type Fanout struct {
	writeTimeout          time.Duration
	writeFailureThreshold int

	subscriptionMu sync.RWMutex
	subscribers    map[event.EventWChannel]int
}

var _ eventpublisher.Publisher = (*Fanout)(nil)

func New(writeTimeout time.Duration, writeFailureThreshold int) *Fanout {
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	if writeFailureThreshold <= 0 {
		writeFailureThreshold = DefaultWriteFailureThreshold
	}
	return &Fanout{
		writeTimeout:          writeTimeout,
		writeFailureThreshold: writeFailureThreshold,
		subscribers:           make(map[event.EventWChannel]int),
	}
}

func (f *Fanout) Subscribe(subscriber event.EventWChannel) {
	f.subscriptionMu.Lock()
	defer f.subscriptionMu.Unlock()

	if _, ok := f.subscribers[subscriber]; !ok {
		f.subscribers[subscriber] = 0
	}
}

func (f *Fanout) Unsubscribe(subscriber event.EventWChannel) {
	f.subscriptionMu.Lock()
	defer f.subscriptionMu.Unlock()

	// only act on the subscribed channels
	if _, ok := f.subscribers[subscriber]; !ok {
		return
	}
	delete(f.subscribers, subscriber)
	close(subscriber)
}

func (f *Fanout) UnsubscribeAll() {
	for _, subscriber := range f.snapshot() {
		f.Unsubscribe(subscriber)
	}
}

func (f *Fanout) Len() int {
	f.subscriptionMu.RLock()
	defer f.subscriptionMu.RUnlock()
	return len(f.subscribers)
}

// Publish writes e to each subscriber, one after another.
func (f *Fanout) Publish(ctx context.Context, e event.Event) {
	for _, subscriber := range f.snapshot() {
		if err := f.publish(ctx, subscriber, e); err != nil {
			f.Unsubscribe(subscriber)
		}
	}
}

// snapshot copies the subscriber set so that Unsubscribe can run while
// iterating.
func (f *Fanout) snapshot() []event.EventWChannel {
	f.subscriptionMu.RLock()
	defer f.subscriptionMu.RUnlock()

	subs := make([]event.EventWChannel, 0, len(f.subscribers))
	for subscriber := range f.subscribers {
		subs = append(subs, subscriber)
	}
	return subs
}

func (f *Fanout) publish(ctx context.Context, subscriber event.EventWChannel, e event.Event) (err error) {

	defer func() {
		// The subscriber may have been unsubscribed, and its channel closed,
		// between snapshot() and this write.
		if p := recover(); p != nil {
			err = ErrWriteFailure
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, f.writeTimeout)
	defer cancel()

	select {
	case subscriber <- e:
		f.setFailures(subscriber, 0)
		return nil
	case <-ctx.Done():
		f.subscriptionMu.Lock()
		count, ok := f.subscribers[subscriber]
		if ok {
			count++
			f.subscribers[subscriber] = count
		}
		f.subscriptionMu.Unlock()

		if count >= f.writeFailureThreshold {
			return ErrWriteFailure
		}
		return nil
	}
}

func (f *Fanout) setFailures(subscriber event.EventWChannel, n int) {
	f.subscriptionMu.Lock()
	defer f.subscriptionMu.Unlock()

	if _, ok := f.subscribers[subscriber]; ok {
		f.subscribers[subscriber] = n
	}
}
