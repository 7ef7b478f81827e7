package allies

import (
	"context"
	"errors"
	"testing"
	"time"

	"frailes/internal/admin"
	"frailes/internal/database"
	"frailes/internal/database/memstore"
	"frailes/internal/database/utils"
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

func setup(t *testing.T) (*memstore.Store, *AllyRepository, admin.Capability) {
	t.Helper()
	db := memstore.New()
	c := optimistic.New(db, optimistic.Options{RevertOnFailure: true})
	r := New(db, c, store.Options{FirstSnapshotTimeout: time.Second})
	r.Start(context.Background())
	t.Cleanup(r.Stop)

	capability, err := admin.NewGate("1996").Unlock("1996")
	assert.Equal(t, err, nil)
	return db, r, capability
}

func seedAlly(t *testing.T, db *memstore.Store, r *AllyRepository, items []model.AllyItem) string {
	t.Helper()
	value, err := utils.ToValue(items)
	assert.Equal(t, err, nil)

	id, err := db.Create(context.Background(), alliesNode, map[string]interface{}{
		NameFieldPath:     "Hostal Machalilla",
		TypeFieldPath:     "hospedaje",
		WhatsappFieldPath: "+593 99 123 4567",
		ItemsFieldPath:    value,
	})
	assert.Equal(t, err, nil)
	waitFor(t, func() bool {
		_, err := r.GetById(id)
		return err == nil
	})
	return id
}

func storedItems(t *testing.T, db *memstore.Store, id string) []model.AllyItem {
	t.Helper()
	data, ok := db.Get(alliesNode, id)
	assert.Equal(t, ok, true)
	items := []model.AllyItem{}
	assert.Equal(t, utils.ValueToType(data[ItemsFieldPath], &items), nil)
	return items
}

func TestAddWithPlaceholders(t *testing.T) {
	ctx := context.Background()
	_, r, capability := setup(t)

	id, err := r.Add(ctx, capability)
	assert.Equal(t, err, nil)
	waitFor(t, func() bool { return len(r.List()) == 1 })

	a, err := r.GetById(id)
	assert.Equal(t, err, nil)
	assert.Equal(t, a.Name, "Nuevo Aliado")
	assert.Equal(t, a.Type, model.AllyTypeRestaurante)
	assert.Equal(t, a.Address, "Puerto López, Manabí")
	assert.Equal(t, len(a.Items), 0)
}

func TestAppendThenRemoveItem(t *testing.T) {
	ctx := context.Background()
	db, r, capability := setup(t)
	id := seedAlly(t, db, r, []model.AllyItem{
		{Id: "room-1", Name: "Habitación simple", Price: "$30.00"},
		{Id: "room-2", Name: "Habitación doble", Price: "$45.00"},
	})

	// hold both writes so that the second mutation only sees local state
	release := make(chan struct{})
	db.SetWriteHook(func(ctx context.Context, op memstore.Op) error {
		<-release
		return nil
	})

	added, addAck := r.AddItem(ctx, capability, id, model.AllyItem{Name: "Suite", Price: "$80.00"})
	removeAck := r.RemoveItem(ctx, capability, id, "room-1")

	a, _ := r.GetById(id)
	assert.Equal(t, len(a.Items), 2)
	assert.Equal(t, a.Items[0].Id, "room-2")
	assert.Equal(t, a.Items[1].Id, added.Id)

	close(release)
	assert.Equal(t, addAck.Wait(ctx), nil)
	assert.Equal(t, removeAck.Wait(ctx), nil)

	items := storedItems(t, db, id)
	assert.Equal(t, len(items), 2)
	assert.Equal(t, items[0].Id, "room-2")
	assert.Equal(t, items[1].Id, added.Id)
	assert.Equal(t, items[1].Name, "Suite")
}

func TestRemoveThenAppendItem(t *testing.T) {
	ctx := context.Background()
	db, r, capability := setup(t)
	id := seedAlly(t, db, r, []model.AllyItem{
		{Id: "x", Name: "Ceviche", Price: "$8.00"},
		{Id: "y", Name: "Encocado", Price: "$12.00"},
	})

	assert.Equal(t, r.RemoveItem(ctx, capability, id, "y").Wait(ctx), nil)
	added, ack := r.AddItem(ctx, capability, id, model.AllyItem{})
	assert.Equal(t, ack.Wait(ctx), nil)

	items := storedItems(t, db, id)
	assert.Equal(t, len(items), 2)
	assert.Equal(t, items[0].Id, "x")
	assert.Equal(t, items[1].Id, added.Id)
	assert.Equal(t, items[1].Name, "Nuevo Item")
	assert.Equal(t, items[1].Price, "$0.00")
}

func TestEditItemAndGallery(t *testing.T) {
	ctx := context.Background()
	db, r, capability := setup(t)
	id := seedAlly(t, db, r, []model.AllyItem{{Id: "x", Name: "Ceviche", Price: "$8.00"}})

	assert.Equal(t, r.EditItem(ctx, capability, id, "x", ItemPriceField, "$9.50").Wait(ctx), nil)
	assert.Equal(t, r.AddItemPhoto(ctx, capability, id, "x", "https://img.example.com/a.jpg").Wait(ctx), nil)
	assert.Equal(t, r.AddItemPhoto(ctx, capability, id, "x", "https://img.example.com/b.jpg").Wait(ctx), nil)
	assert.Equal(t, r.RemoveItemPhoto(ctx, capability, id, "x", 0).Wait(ctx), nil)

	items := storedItems(t, db, id)
	assert.Equal(t, items[0].Price, "$9.50")
	assert.Equal(t, items[0].Gallery, []string{"https://img.example.com/b.jpg"})

	ack := r.EditItem(ctx, capability, id, "missing", ItemPriceField, "$1.00")
	assert.Equal(t, errors.Is(ack.Err(), ierr.ErrUnknownItem), true)

	ack = r.AddItemPhoto(ctx, capability, id, "x", "not-a-url")
	assert.Equal(t, errors.Is(ack.Err(), ierr.ErrValidation), true)
}

func TestVisitorItemEditsAreIgnored(t *testing.T) {
	ctx := context.Background()
	db, r, _ := setup(t)
	id := seedAlly(t, db, r, []model.AllyItem{{Id: "x", Name: "Ceviche"}})

	_, ack := r.AddItem(ctx, admin.Visitor, id, model.AllyItem{Name: "Extra"})
	assert.Equal(t, errors.Is(ack.Err(), ierr.ErrNotAdmin), true)
	assert.Equal(t, errors.Is(r.RemoveItem(ctx, admin.Visitor, id, "x").Err(), ierr.ErrNotAdmin), true)

	assert.Equal(t, len(storedItems(t, db, id)), 1)
}

func TestFailedItemWriteReverts(t *testing.T) {
	ctx := context.Background()
	db, r, capability := setup(t)
	id := seedAlly(t, db, r, []model.AllyItem{{Id: "x", Name: "Ceviche"}})

	db.SetWriteHook(func(ctx context.Context, op memstore.Op) error {
		return errors.New("network down")
	})

	ack := r.RemoveItem(ctx, capability, id, "x")
	a, _ := r.GetById(id)
	assert.Equal(t, len(a.Items), 0)

	assert.NotEqual(t, ack.Wait(ctx), nil)
	a, _ = r.GetById(id)
	assert.Equal(t, len(a.Items), 1)
}

func TestItemsFieldIsDatabaseValue(t *testing.T) {
	ctx := context.Background()
	db, r, capability := setup(t)
	id := seedAlly(t, db, r, nil)

	var updates []database.Update
	db.SetWriteHook(func(ctx context.Context, op memstore.Op) error {
		updates = op.Updates
		return nil
	})

	_, ack := r.AddItem(ctx, capability, id, model.AllyItem{Name: "Suite"})
	assert.Equal(t, ack.Wait(ctx), nil)
	assert.Equal(t, len(updates), 1)
	assert.Equal(t, updates[0].Path, ItemsFieldPath)

	_, isList := updates[0].Value.([]interface{})
	assert.Equal(t, isList, true)
}
