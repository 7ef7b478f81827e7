package reservations

import (
	"context"
	"fmt"

	"frailes/internal/admin"
	"frailes/internal/database"
	ierr "frailes/internal/errors"
	"frailes/internal/model"
	"frailes/internal/optimistic"
	"frailes/internal/repository/helper"
	"frailes/internal/store"
)

type ReservationRepository struct {
	db          database.Store
	store       *store.Store[model.Reservation]
	coordinator *optimistic.Coordinator
}

var _ IRepository = (*ReservationRepository)(nil)

func New(db database.Store, coordinator *optimistic.Coordinator, options store.Options) *ReservationRepository {
	target := database.Target{Collection: reservationsNode, OrderBy: database.TimestampField, Direction: database.Desc}
	decode := helper.Decoder(func() model.Reservation { return model.Reservation{} }, func(r *model.Reservation, id string) { r.Id = id })
	return &ReservationRepository{
		db:          db,
		store:       store.New(reservationsNode, db, target, decode, options),
		coordinator: coordinator,
	}
}

func (r *ReservationRepository) Store() *store.Store[model.Reservation] {
	return r.store
}

func (r *ReservationRepository) Start(ctx context.Context) {
	r.store.Start(ctx)
}

func (r *ReservationRepository) Stop() {
	r.store.Stop()
}

func (r *ReservationRepository) WaitReady(ctx context.Context) error {
	return r.store.WaitReady(ctx)
}

// List returns the reservations, newest first.
func (r *ReservationRepository) List() []model.Reservation {
	return r.store.Items()
}

func (r *ReservationRepository) GetById(id string) (model.Reservation, error) {
	res, ok := r.store.Read().Item(id)
	if !ok {
		return model.Reservation{}, fmt.Errorf("get reservation: %w, id: %s", ierr.NotFound, id)
	}
	return res, nil
}

// Create stores a new reservation. Visitors create reservations, so no
// capability is needed. A missing status defaults to pending.
func (r *ReservationRepository) Create(ctx context.Context, reservation model.Reservation) (string, error) {
	if reservation.Status == "" {
		reservation.Status = model.ReservationPending
	}
	if err := helper.Validate(reservation); err != nil {
		return "", fmt.Errorf("create reservation: %w", err)
	}

	data, err := helper.ToData(reservation)
	if err != nil {
		return "", fmt.Errorf("create reservation: %w", err)
	}

	id, err := r.db.Create(ctx, reservationsNode, data)
	if err != nil {
		return "", fmt.Errorf("create reservation: %w", err)
	}
	return id, nil
}

func (r *ReservationRepository) SetStatus(ctx context.Context, capability admin.Capability, id string, status model.ReservationStatus) *optimistic.Ack {
	if err := helper.ValidateVar(string(status), "oneof=pendiente confirmada"); err != nil {
		return helper.Reject(capability, fmt.Errorf("set reservation status: %w, id: %s", err, id))
	}
	return r.coordinator.EditField(ctx, capability, optimistic.Doc(r.store, id), StatusFieldPath, status)
}

// ToggleStatus flips between pending and confirmed, starting from the locally
// known status.
func (r *ReservationRepository) ToggleStatus(ctx context.Context, capability admin.Capability, id string) *optimistic.Ack {
	return r.coordinator.Mutate(ctx, capability, optimistic.Doc(r.store, id), StatusFieldPath, func(current interface{}) (interface{}, error) {
		status, _ := current.(string)
		return model.ReservationStatus(status).Toggle(), nil
	})
}
