package optimistic

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Ack resolves once the remote write of an edit returned.
type Ack struct {
	done chan struct{}
	err  error
}

func newAck() *Ack {
	return &Ack{done: make(chan struct{})}
}

// Failed returns an already resolved Ack carrying err.
func Failed(err error) *Ack {
	a := newAck()
	a.resolve(err)
	return a
}

func (a *Ack) resolve(err error) {
	a.err = err
	close(a.done)
}

func (a *Ack) Done() <-chan struct{} {
	return a.done
}

// Err is nil while the write is in flight.
func (a *Ack) Err() error {
	select {
	case <-a.done:
		return a.err
	default:
		return nil
	}
}

func (a *Ack) Wait(ctx context.Context) error {
	select {
	case <-a.done:
		return a.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EditError is the failure of a remote write for an optimistic edit.
type EditError struct {
	Collection string
	Id         string
	Paths      []string
	Err        error
}

func (e *EditError) Error() string {
	return fmt.Sprintf("edit %s/%s [%s]: %v", e.Collection, e.Id, strings.Join(e.Paths, ", "), e.Err)
}

func (e *EditError) Unwrap() error {
	return e.Err
}

func sortedPaths(fields map[string]interface{}) []string {
	paths := make([]string, 0, len(fields))
	for path := range fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
