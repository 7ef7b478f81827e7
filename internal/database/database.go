package database

import (
	"context"
	"time"
)

type Direction int

const (
	Asc Direction = iota
	Desc
)

// TimestampField is stamped by Create with the server time.
const TimestampField = "timestamp"

// Target addresses either a single document (Doc set) or a collection,
// optionally ordered by one field.
type Target struct {
	Collection string
	Doc        string
	OrderBy    string
	Direction  Direction
}

func (t Target) IsDoc() bool {
	return t.Doc != ""
}

func (t Target) String() string {
	if t.IsDoc() {
		return t.Collection + "/" + t.Doc
	}
	return t.Collection
}

type Document struct {
	ID   string
	Data map[string]interface{}
}

// Snapshot is the complete materialized state of a target. A document target
// that does not exist yields a snapshot without docs. ReadTime is the store
// time the snapshot reflects; it includes every write committed at or before
// it.
type Snapshot struct {
	Docs     []Document
	ReadTime time.Time
	Err      error
}

// Update is a partial write of one field. Path may be dotted to reach into
// nested maps, e.g. "ecuadorTravelPromo.title".
type Update struct {
	Path  string
	Value interface{}
}

type Store interface {
	Subscribe(ctx context.Context, target Target) <-chan Snapshot
	// Write returns the commit time of the update.
	Write(ctx context.Context, collection, id string, updates []Update) (time.Time, error)
	Create(ctx context.Context, collection string, data map[string]interface{}) (string, error)
	CreateDoc(ctx context.Context, collection, id string, data map[string]interface{}) error
	Delete(ctx context.Context, collection, id string) error
}
