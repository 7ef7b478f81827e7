package content

import (
	"context"
	"errors"
	"testing"
	"time"

	"frailes/internal/admin"
	"frailes/internal/database/memstore"
	ierr "frailes/internal/errors"
	"frailes/internal/listmut"
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

func unlocked(t *testing.T) admin.Capability {
	c, err := admin.NewGate("1996").Unlock("1996")
	assert.Equal(t, err, nil)
	return c
}

func newRepo(db *memstore.Store, timeout time.Duration) *ContentRepository {
	c := optimistic.New(db, optimistic.Options{RevertOnFailure: true})
	return New(db, c, store.Options{FirstSnapshotTimeout: timeout})
}

func TestSeedsMissingContent(t *testing.T) {
	ctx := context.Background()
	db := memstore.New()
	r := newRepo(db, time.Second)
	r.Start(ctx)
	defer r.Stop()

	waitFor(t, func() bool { return r.Store().Read().Len() == 1 })

	data, ok := db.Get(contentNode, MainDocId)
	assert.Equal(t, ok, true)
	assert.Equal(t, data[HeroTitleFieldPath], "Playa Los Frailes")
	assert.Equal(t, r.Get(), model.DefaultSiteContent())
}

func TestReseedsAfterRemoteDelete(t *testing.T) {
	ctx := context.Background()
	db := memstore.New()
	r := newRepo(db, time.Second)
	r.Start(ctx)
	defer r.Stop()

	waitFor(t, func() bool { return r.Store().Read().Len() == 1 })

	assert.Equal(t, db.Delete(ctx, contentNode, MainDocId), nil)
	waitFor(t, func() bool {
		_, ok := db.Get(contentNode, MainDocId)
		return ok
	})
	waitFor(t, func() bool { return r.Store().Read().Len() == 1 })

	data, _ := db.Get(contentNode, MainDocId)
	assert.Equal(t, data[HeroTitleFieldPath], "Playa Los Frailes")
}

func TestConcurrentSeedingKeepsOneDocument(t *testing.T) {
	ctx := context.Background()
	db := memstore.New()

	a := newRepo(db, time.Second)
	b := newRepo(db, time.Second)
	assert.Equal(t, a.Seed(ctx), nil)
	assert.Equal(t, b.Seed(ctx), nil)

	a.Start(ctx)
	defer a.Stop()
	waitFor(t, func() bool { return a.Store().Read().Len() == 1 })
}

func TestSeedDoesNotOverwrite(t *testing.T) {
	ctx := context.Background()
	db := memstore.New()
	assert.Equal(t, db.CreateDoc(ctx, contentNode, MainDocId, map[string]interface{}{HeroTitleFieldPath: "Custom"}), nil)

	r := newRepo(db, time.Second)
	assert.Equal(t, r.Seed(ctx), nil)

	data, _ := db.Get(contentNode, MainDocId)
	assert.Equal(t, data[HeroTitleFieldPath], "Custom")
}

func TestTimeoutFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	db := memstore.New()
	db.Pause()

	r := newRepo(db, 20*time.Millisecond)
	r.Start(ctx)
	defer r.Stop()

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	assert.Equal(t, r.WaitReady(waitCtx), nil)
	assert.Equal(t, r.Get(), model.DefaultSiteContent())
}

func TestMissingFieldsKeepDefaults(t *testing.T) {
	ctx := context.Background()
	db := memstore.New()
	assert.Equal(t, db.CreateDoc(ctx, contentNode, MainDocId, map[string]interface{}{HeroTitleFieldPath: "Custom"}), nil)

	r := newRepo(db, time.Second)
	r.Start(ctx)
	defer r.Stop()
	waitFor(t, func() bool { return r.Store().Read().Len() == 1 })

	c := r.Get()
	assert.Equal(t, c.HeroTitle, "Custom")
	assert.Equal(t, c.HeroSubtitle, model.DefaultSiteContent().HeroSubtitle)
}

func TestEditPromoLeavesSiblings(t *testing.T) {
	ctx := context.Background()
	db := memstore.New()
	r := newRepo(db, time.Second)
	assert.Equal(t, r.Seed(ctx), nil)
	r.Start(ctx)
	defer r.Stop()
	waitFor(t, func() bool { return r.Store().Read().Len() == 1 })

	ack := r.EditPromo(ctx, unlocked(t), EcuadorTravelPromoFieldPath, PromoTitleField, "Nuevo título")
	assert.Equal(t, r.Get().EcuadorTravelPromo.Title, "Nuevo título")
	assert.Equal(t, ack.Wait(ctx), nil)

	data, _ := db.Get(contentNode, MainDocId)
	promo := data[EcuadorTravelPromoFieldPath].(map[string]interface{})
	assert.Equal(t, promo[PromoTitleField], "Nuevo título")
	assert.Equal(t, promo[PromoLinkField], "https://socialmanabitravel.vercel.app/")
}

func TestHeroTitleLastWriteWins(t *testing.T) {
	ctx := context.Background()
	db := memstore.New()
	r := newRepo(db, time.Second)
	assert.Equal(t, r.Seed(ctx), nil)
	r.Start(ctx)
	defer r.Stop()
	waitFor(t, func() bool { return r.Store().Read().Len() == 1 })

	release := make(chan struct{})
	db.SetWriteHook(func(ctx context.Context, op memstore.Op) error {
		<-release
		return nil
	})

	capability := unlocked(t)
	a := r.EditText(ctx, capability, HeroTitleFieldPath, "A")
	b := r.EditText(ctx, capability, HeroTitleFieldPath, "B")
	assert.Equal(t, r.Get().HeroTitle, "B")

	close(release)
	assert.Equal(t, a.Wait(ctx), nil)
	assert.Equal(t, b.Wait(ctx), nil)
	assert.Equal(t, r.Get().HeroTitle, "B")

	data, _ := db.Get(contentNode, MainDocId)
	assert.Equal(t, data[HeroTitleFieldPath], "B")
}

func TestListEdits(t *testing.T) {
	ctx := context.Background()
	db := memstore.New()
	r := newRepo(db, time.Second)
	assert.Equal(t, r.Seed(ctx), nil)
	r.Start(ctx)
	defer r.Stop()
	waitFor(t, func() bool { return r.Store().Read().Len() == 1 })

	capability := unlocked(t)
	assert.Equal(t, r.MutateList(ctx, capability, SeguridadItemsFieldPath, listmut.Append("Use chaleco")).Wait(ctx), nil)
	assert.Equal(t, r.MutateList(ctx, capability, SeguridadItemsFieldPath, listmut.RemoveAt(0)).Wait(ctx), nil)
	assert.Equal(t, r.Get().SeguridadItems, []string{"No nade solo", "Use chaleco"})

	ack := r.MutateList(ctx, capability, SeguridadItemsFieldPath, listmut.Append(""))
	assert.Equal(t, errors.Is(ack.Err(), ierr.ErrValidation), true)
}

func TestValidationAndCapability(t *testing.T) {
	ctx := context.Background()
	db := memstore.New()
	r := newRepo(db, time.Second)

	ack := r.SetHeroImage(ctx, admin.Visitor, "not a url")
	assert.Equal(t, errors.Is(ack.Err(), ierr.ErrNotAdmin), true)

	ack = r.SetHeroImage(ctx, unlocked(t), "not a url")
	assert.Equal(t, errors.Is(ack.Err(), ierr.ErrValidation), true)

	ack = r.EditText(ctx, unlocked(t), "unknown", "x")
	assert.Equal(t, errors.Is(ack.Err(), ierr.ErrValidation), true)
}
