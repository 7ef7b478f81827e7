package feedbacks

import (
	"context"
	"errors"
	"testing"
	"time"

	"frailes/internal/admin"
	"frailes/internal/database/memstore"
	ierr "frailes/internal/errors"
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

func TestSubmitAndDelete(t *testing.T) {
	ctx := context.Background()
	db := memstore.New()
	r := New(db, store.Options{FirstSnapshotTimeout: time.Second})
	r.Start(ctx)
	defer r.Stop()

	first, err := r.Submit(ctx, "Ana", "Hermosa playa")
	assert.Equal(t, err, nil)
	second, err := r.Submit(ctx, " Luis ", "Volveremos")
	assert.Equal(t, err, nil)

	waitFor(t, func() bool { return len(r.List()) == 2 })
	list := r.List()
	assert.Equal(t, list[0].Id, second)
	assert.Equal(t, list[0].Name, "Luis")
	assert.Equal(t, list[1].Id, first)

	assert.Equal(t, errors.Is(r.Delete(ctx, admin.Visitor, first), ierr.ErrNotAdmin), true)

	capability, err := admin.NewGate("1996").Unlock("1996")
	assert.Equal(t, err, nil)
	assert.Equal(t, r.Delete(ctx, capability, first), nil)
	waitFor(t, func() bool { return len(r.List()) == 1 })
}

func TestSubmitValidation(t *testing.T) {
	ctx := context.Background()
	db := memstore.New()
	writes := 0
	db.SetWriteHook(func(ctx context.Context, op memstore.Op) error {
		writes++
		return nil
	})
	r := New(db, store.Options{})

	_, err := r.Submit(ctx, "", "comment")
	assert.Equal(t, errors.Is(err, ierr.ErrValidation), true)
	_, err = r.Submit(ctx, "Ana", "   ")
	assert.Equal(t, errors.Is(err, ierr.ErrValidation), true)
	assert.Equal(t, writes, 0)
}
