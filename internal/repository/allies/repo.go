package allies

import (
	"context"
	"fmt"

	"frailes/internal/admin"
	"frailes/internal/database"
	"frailes/internal/database/utils"
	ierr "frailes/internal/errors"
	"frailes/internal/listmut"
	"frailes/internal/model"
	"frailes/internal/optimistic"
	"frailes/internal/repository/helper"
	"frailes/internal/store"
)

type AllyRepository struct {
	db          database.Store
	store       *store.Store[model.Ally]
	coordinator *optimistic.Coordinator
}

var _ IRepository = (*AllyRepository)(nil)

func New(db database.Store, coordinator *optimistic.Coordinator, options store.Options) *AllyRepository {
	target := database.Target{Collection: alliesNode, OrderBy: database.TimestampField, Direction: database.Desc}
	decode := helper.Decoder(func() model.Ally { return model.Ally{} }, func(a *model.Ally, id string) { a.Id = id })
	return &AllyRepository{
		db:          db,
		store:       store.New(alliesNode, db, target, decode, options),
		coordinator: coordinator,
	}
}

func (r *AllyRepository) Store() *store.Store[model.Ally] {
	return r.store
}

func (r *AllyRepository) Start(ctx context.Context) {
	r.store.Start(ctx)
}

func (r *AllyRepository) Stop() {
	r.store.Stop()
}

func (r *AllyRepository) WaitReady(ctx context.Context) error {
	return r.store.WaitReady(ctx)
}

func (r *AllyRepository) List() []model.Ally {
	return r.store.Items()
}

func (r *AllyRepository) GetById(id string) (model.Ally, error) {
	a, ok := r.store.Read().Item(id)
	if !ok {
		return model.Ally{}, fmt.Errorf("get ally: %w, id: %s", ierr.NotFound, id)
	}
	return a, nil
}

// Add creates a restaurant with placeholder fields.
func (r *AllyRepository) Add(ctx context.Context, capability admin.Capability) (string, error) {
	if err := admin.Require(capability); err != nil {
		return "", err
	}

	data := map[string]interface{}{
		NameFieldPath:        placeholderName,
		TypeFieldPath:        string(model.AllyTypeRestaurante),
		DescriptionFieldPath: placeholderDescription,
		ImageFieldPath:       "",
		AddressFieldPath:     placeholderAddress,
	}

	id, err := r.db.Create(ctx, alliesNode, data)
	if err != nil {
		return "", fmt.Errorf("add ally: %w", err)
	}
	return id, nil
}

func (r *AllyRepository) EditText(ctx context.Context, capability admin.Capability, id, field, value string) *optimistic.Ack {
	if !textFields[field] {
		return helper.Reject(capability, fmt.Errorf("edit ally: %w, unknown text field %s", ierr.ErrValidation, field))
	}
	if field == NameFieldPath {
		if err := helper.ValidateVar(value, "required"); err != nil {
			return helper.Reject(capability, fmt.Errorf("edit ally name: %w, id: %s", err, id))
		}
	}
	return r.coordinator.EditField(ctx, capability, optimistic.Doc(r.store, id), field, value)
}

func (r *AllyRepository) SetImage(ctx context.Context, capability admin.Capability, id, url string) *optimistic.Ack {
	if err := helper.ValidateVar(url, "omitempty,url"); err != nil {
		return helper.Reject(capability, fmt.Errorf("set ally image: %w, id: %s", err, id))
	}
	return r.coordinator.EditField(ctx, capability, optimistic.Doc(r.store, id), ImageFieldPath, url)
}

func (r *AllyRepository) SetType(ctx context.Context, capability admin.Capability, id string, kind model.AllyType) *optimistic.Ack {
	if err := helper.ValidateVar(string(kind), "oneof=hospedaje restaurante"); err != nil {
		return helper.Reject(capability, fmt.Errorf("set ally type: %w, id: %s", err, id))
	}
	return r.coordinator.EditField(ctx, capability, optimistic.Doc(r.store, id), TypeFieldPath, kind)
}

func (r *AllyRepository) Delete(ctx context.Context, capability admin.Capability, id string) error {
	if err := admin.Require(capability); err != nil {
		return err
	}
	if err := r.db.Delete(ctx, alliesNode, id); err != nil {
		return fmt.Errorf("delete ally: %w, id: %s", err, id)
	}
	return nil
}

// AddItem appends an embedded item. Empty name and price get placeholders and
// the item gets a fresh id, returned so callers can address it right away.
func (r *AllyRepository) AddItem(ctx context.Context, capability admin.Capability, allyId string, item model.AllyItem) (model.AllyItem, *optimistic.Ack) {
	item.Id = listmut.NewItemID()
	if item.Name == "" {
		item.Name = placeholderItemName
	}
	if item.Price == "" {
		item.Price = placeholderItemPrice
	}
	if err := helper.Validate(item); err != nil {
		return model.AllyItem{}, helper.Reject(capability, fmt.Errorf("add ally item: %w, id: %s", err, allyId))
	}

	ack := r.mutateItems(ctx, capability, allyId, func(set *listmut.ItemSet) error {
		_, err := set.Add(item)
		return err
	})
	return item, ack
}

func (r *AllyRepository) EditItem(ctx context.Context, capability admin.Capability, allyId, itemId, field, value string) *optimistic.Ack {
	var set func(item *model.AllyItem)
	switch field {
	case ItemNameField:
		if err := helper.ValidateVar(value, "required"); err != nil {
			return helper.Reject(capability, fmt.Errorf("edit ally item name: %w, id: %s", err, itemId))
		}
		set = func(item *model.AllyItem) { item.Name = value }
	case ItemPriceField:
		set = func(item *model.AllyItem) { item.Price = value }
	case ItemDescriptionField:
		set = func(item *model.AllyItem) { item.Description = value }
	case ItemImageField:
		if err := helper.ValidateVar(value, "omitempty,url"); err != nil {
			return helper.Reject(capability, fmt.Errorf("edit ally item image: %w, id: %s", err, itemId))
		}
		set = func(item *model.AllyItem) { item.Image = value }
	default:
		return helper.Reject(capability, fmt.Errorf("edit ally item: %w, unknown field %s", ierr.ErrValidation, field))
	}

	return r.mutateItems(ctx, capability, allyId, func(items *listmut.ItemSet) error {
		return items.Update(itemId, set)
	})
}

func (r *AllyRepository) RemoveItem(ctx context.Context, capability admin.Capability, allyId, itemId string) *optimistic.Ack {
	return r.mutateItems(ctx, capability, allyId, func(set *listmut.ItemSet) error {
		return set.Remove(itemId)
	})
}

func (r *AllyRepository) AddItemPhoto(ctx context.Context, capability admin.Capability, allyId, itemId, url string) *optimistic.Ack {
	if err := helper.ValidateVar(url, "required,url"); err != nil {
		return helper.Reject(capability, fmt.Errorf("add item photo: %w, id: %s", err, itemId))
	}
	return r.mutateItems(ctx, capability, allyId, func(set *listmut.ItemSet) error {
		return set.AddPhoto(itemId, url)
	})
}

func (r *AllyRepository) RemoveItemPhoto(ctx context.Context, capability admin.Capability, allyId, itemId string, index int) *optimistic.Ack {
	return r.mutateItems(ctx, capability, allyId, func(set *listmut.ItemSet) error {
		return set.RemovePhoto(itemId, index)
	})
}

// mutateItems rewrites the whole items field of the ally from its locally
// known value with fn applied.
func (r *AllyRepository) mutateItems(ctx context.Context, capability admin.Capability, allyId string, fn func(set *listmut.ItemSet) error) *optimistic.Ack {
	return r.coordinator.Mutate(ctx, capability, optimistic.Doc(r.store, allyId), ItemsFieldPath, func(current interface{}) (interface{}, error) {
		items := []model.AllyItem{}
		if current != nil {
			if err := utils.ValueToType(current, &items); err != nil {
				return nil, fmt.Errorf("%w: malformed items: %v", ierr.ErrValidation, err)
			}
		}

		set := listmut.NewItemSet(items)
		if err := fn(set); err != nil {
			return nil, err
		}
		return set.Items(), nil
	})
}
