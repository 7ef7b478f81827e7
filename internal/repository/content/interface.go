package content

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
	Get() model.SiteContent
	Seed(ctx context.Context) error
	EditText(ctx context.Context, capability admin.Capability, field, value string) *optimistic.Ack
	SetHeroImage(ctx context.Context, capability admin.Capability, url string) *optimistic.Ack
	SetVisibility(ctx context.Context, capability admin.Capability, field string, visible bool) *optimistic.Ack
	EditPromo(ctx context.Context, capability admin.Capability, promo, field, value string) *optimistic.Ack
	MutateList(ctx context.Context, capability admin.Capability, field string, op listmut.ListOp) *optimistic.Ack
	Update(ctx context.Context, capability admin.Capability, fields map[string]interface{}) *optimistic.Ack
}
