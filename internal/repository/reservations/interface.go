package reservations

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
	List() []model.Reservation
	GetById(id string) (model.Reservation, error)
	Create(ctx context.Context, reservation model.Reservation) (string, error)
	SetStatus(ctx context.Context, capability admin.Capability, id string, status model.ReservationStatus) *optimistic.Ack
	ToggleStatus(ctx context.Context, capability admin.Capability, id string) *optimistic.Ack
}
