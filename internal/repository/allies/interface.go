package allies

import (
	"context"

	"frailes/internal/admin"
	"frailes/internal/model"
	"frailes/internal/optimistic"
)

type IRepository interface {
	Start(ctx context.Context)
	Stop()
	WaitReady(ctx context.Context) error
	List() []model.Ally
	GetById(id string) (model.Ally, error)
	Add(ctx context.Context, capability admin.Capability) (string, error)
	EditText(ctx context.Context, capability admin.Capability, id, field, value string) *optimistic.Ack
	SetImage(ctx context.Context, capability admin.Capability, id, url string) *optimistic.Ack
	SetType(ctx context.Context, capability admin.Capability, id string, kind model.AllyType) *optimistic.Ack
	Delete(ctx context.Context, capability admin.Capability, id string) error

	AddItem(ctx context.Context, capability admin.Capability, allyId string, item model.AllyItem) (model.AllyItem, *optimistic.Ack)
	EditItem(ctx context.Context, capability admin.Capability, allyId, itemId, field, value string) *optimistic.Ack
	RemoveItem(ctx context.Context, capability admin.Capability, allyId, itemId string) *optimistic.Ack
	AddItemPhoto(ctx context.Context, capability admin.Capability, allyId, itemId, url string) *optimistic.Ack
	RemoveItemPhoto(ctx context.Context, capability admin.Capability, allyId, itemId string, index int) *optimistic.Ack
}
