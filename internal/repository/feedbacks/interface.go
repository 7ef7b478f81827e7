package feedbacks

import (
	"context"

	"frailes/internal/admin"
	"frailes/internal/model"
)

type IRepository interface {
	Start(ctx context.Context)
	Stop()
	WaitReady(ctx context.Context) error
	List() []model.Feedback
	Submit(ctx context.Context, name, comment string) (string, error)
	Delete(ctx context.Context, capability admin.Capability, id string) error
}
