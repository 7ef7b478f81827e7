package store

import (
	"frailes/internal/database"
	"frailes/internal/database/utils"
)

// View is an immutable projection of the store. Items and Docs are parallel
// and must not be modified by readers.
type View[T any] struct {
	Items   []T
	Docs    []database.Document
	Ready   bool
	Version uint64
}

func (v View[T]) Len() int {
	return len(v.Items)
}

func (v View[T]) Doc(id string) (database.Document, bool) {
	for _, doc := range v.Docs {
		if doc.ID == id {
			return doc, true
		}
	}
	return database.Document{}, false
}

func (v View[T]) Item(id string) (T, bool) {
	for i, doc := range v.Docs {
		if doc.ID == id {
			return v.Items[i], true
		}
	}
	var zero T
	return zero, false
}

// Field reads a dotted field path of document id, overlays included.
func (v View[T]) Field(id, path string) (interface{}, bool) {
	doc, ok := v.Doc(id)
	if !ok {
		return nil, false
	}
	return utils.GetPath(doc.Data, path)
}
