package activities

import (
	"context"

	"frailes/internal/admin"
	"frailes/internal/listmut"
	"frailes/internal/model"
	"frailes/internal/optimistic"
)

type IRepository interface {
	Start(ctx context.Context)
	Stop()
	WaitReady(ctx context.Context) error
	List() []model.Activity
	GetById(id string) (model.Activity, error)
	Add(ctx context.Context, capability admin.Capability, kind model.ActivityType) (string, error)
	EditText(ctx context.Context, capability admin.Capability, id, field, value string) *optimistic.Ack
	SetImage(ctx context.Context, capability admin.Capability, id, url string) *optimistic.Ack
	SetType(ctx context.Context, capability admin.Capability, id string, kind model.ActivityType) *optimistic.Ack
	MutateList(ctx context.Context, capability admin.Capability, id, field string, op listmut.ListOp) *optimistic.Ack
	ApplyGuide(ctx context.Context, capability admin.Capability, id string, guide model.ActivityGuide) *optimistic.Ack
	Delete(ctx context.Context, capability admin.Capability, id string) error
}
