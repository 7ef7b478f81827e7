package reservations

import (
	"context"
	"errors"
	"testing"
	"time"

	"frailes/internal/admin"
	"frailes/internal/database/memstore"
	ierr "frailes/internal/errors"
	"frailes/internal/model"
	"frailes/internal/optimistic"
	"frailes/internal/store"

	"github.com/go-playground/assert/v2"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func sample() model.Reservation {
	return model.Reservation{
		AllyId:       "ally-1",
		AllyName:     "Hostal Machalilla",
		CustomerName: "Ana",
		Date:         "2026-12-24",
		Total:        25,
		Items:        []string{"Item A", "Item B"},
	}
}

func TestCreateAndToggle(t *testing.T) {
	ctx := context.Background()
	db := memstore.New()
	c := optimistic.New(db, optimistic.Options{RevertOnFailure: true})
	r := New(db, c, store.Options{FirstSnapshotTimeout: time.Second})
	r.Start(ctx)
	defer r.Stop()

	id, err := r.Create(ctx, sample())
	assert.Equal(t, err, nil)
	waitFor(t, func() bool { return len(r.List()) == 1 })

	res, err := r.GetById(id)
	assert.Equal(t, err, nil)
	assert.Equal(t, res.Status, model.ReservationPending)
	assert.Equal(t, res.Total, 25.0)
	assert.Equal(t, res.Items, []string{"Item A", "Item B"})

	capability, err := admin.NewGate("1996").Unlock("1996")
	assert.Equal(t, err, nil)

	assert.Equal(t, errors.Is(r.ToggleStatus(ctx, admin.Visitor, id).Err(), ierr.ErrNotAdmin), true)

	first := r.ToggleStatus(ctx, capability, id)
	res, _ = r.GetById(id)
	assert.Equal(t, res.Status, model.ReservationConfirmed)
	second := r.ToggleStatus(ctx, capability, id)
	res, _ = r.GetById(id)
	assert.Equal(t, res.Status, model.ReservationPending)

	assert.Equal(t, first.Wait(ctx), nil)
	assert.Equal(t, second.Wait(ctx), nil)
	data, _ := db.Get(reservationsNode, id)
	assert.Equal(t, data[StatusFieldPath], "pendiente")

	ack := r.SetStatus(ctx, capability, id, "cancelada")
	assert.Equal(t, errors.Is(ack.Err(), ierr.ErrValidation), true)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	r := New(memstore.New(), optimistic.New(memstore.New(), optimistic.Options{}), store.Options{})

	res := sample()
	res.Items = nil
	_, err := r.Create(ctx, res)
	assert.Equal(t, errors.Is(err, ierr.ErrValidation), true)

	res = sample()
	res.Total = 0
	_, err = r.Create(ctx, res)
	assert.Equal(t, errors.Is(err, ierr.ErrValidation), true)
}
