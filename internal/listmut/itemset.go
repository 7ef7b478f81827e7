package listmut

import (
	"fmt"

	ierr "frailes/internal/errors"
	"frailes/internal/model"

	"github.com/google/uuid"
)

// ItemSet is the structured form of an ally's items field: an ordered map of
// embedded items keyed by their client-generated id.
type ItemSet struct {
	order []string
	items map[string]model.AllyItem
}

func NewItemID() string {
	return uuid.NewString()
}

// NewItemSet builds a set from a stored items list. Items without an id, or
// repeating an id seen earlier in the list, get a fresh one so that every
// item stays addressable.
func NewItemSet(items []model.AllyItem) *ItemSet {
	s := &ItemSet{
		order: make([]string, 0, len(items)),
		items: make(map[string]model.AllyItem, len(items)),
	}
	for _, item := range items {
		if _, dup := s.items[item.Id]; item.Id == "" || dup {
			item.Id = NewItemID()
		}
		s.put(item)
	}
	return s
}

func (s *ItemSet) Len() int {
	return len(s.order)
}

func (s *ItemSet) Get(id string) (model.AllyItem, bool) {
	item, ok := s.items[id]
	if !ok {
		return model.AllyItem{}, false
	}
	return copyItem(item), true
}

// Add appends item, assigning an id when it has none.
func (s *ItemSet) Add(item model.AllyItem) (model.AllyItem, error) {
	if item.Id == "" {
		item.Id = NewItemID()
	}
	if _, ok := s.items[item.Id]; ok {
		return model.AllyItem{}, fmt.Errorf("add item: %w, id: %s", ierr.ErrAlreadyExists, item.Id)
	}
	item = copyItem(item)
	s.put(item)
	return copyItem(item), nil
}

// Update applies fn to a copy of the item and stores the result in place.
// The id cannot be changed.
func (s *ItemSet) Update(id string, fn func(item *model.AllyItem)) error {
	item, ok := s.items[id]
	if !ok {
		return fmt.Errorf("update item: %w, id: %s", ierr.ErrUnknownItem, id)
	}
	item = copyItem(item)
	fn(&item)
	item.Id = id
	s.items[id] = item
	return nil
}

func (s *ItemSet) Remove(id string) error {
	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("remove item: %w, id: %s", ierr.ErrUnknownItem, id)
	}
	delete(s.items, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *ItemSet) AddPhoto(id, url string) error {
	return s.Update(id, func(item *model.AllyItem) {
		item.Gallery = append(item.Gallery, url)
	})
}

func (s *ItemSet) RemovePhoto(id string, index int) error {
	item, ok := s.items[id]
	if !ok {
		return fmt.Errorf("remove photo: %w, id: %s", ierr.ErrUnknownItem, id)
	}
	gallery, err := Strings(item.Gallery, RemoveAt(index))
	if err != nil {
		return fmt.Errorf("remove photo: %w, id: %s", err, id)
	}
	return s.Update(id, func(item *model.AllyItem) {
		item.Gallery = gallery
	})
}

// Items serializes the set to the list stored in the items field.
func (s *ItemSet) Items() []model.AllyItem {
	out := make([]model.AllyItem, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, copyItem(s.items[id]))
	}
	return out
}

func (s *ItemSet) put(item model.AllyItem) {
	s.order = append(s.order, item.Id)
	s.items[item.Id] = item
}

func copyItem(item model.AllyItem) model.AllyItem {
	if item.Gallery != nil {
		item.Gallery = append([]string(nil), item.Gallery...)
	}
	return item
}
