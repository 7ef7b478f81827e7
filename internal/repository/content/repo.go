package content

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"frailes/internal/admin"
	"frailes/internal/database"
	ierr "frailes/internal/errors"
	"frailes/internal/eventpublisher/event"
	"frailes/internal/listmut"
	"frailes/internal/model"
	"frailes/internal/optimistic"
	"frailes/internal/repository/helper"
	"frailes/internal/store"

	"github.com/rs/zerolog/log"
)

type ContentRepository struct {
	db          database.Store
	store       *store.Store[model.SiteContent]
	coordinator *optimistic.Coordinator

	mu      sync.Mutex
	cancel  context.CancelFunc
	seeding atomic.Bool
}

var _ IRepository = (*ContentRepository)(nil)

func New(db database.Store, coordinator *optimistic.Coordinator, options store.Options) *ContentRepository {
	decode := helper.Decoder(model.DefaultSiteContent, func(c *model.SiteContent, id string) { c.Id = id })
	return &ContentRepository{
		db:          db,
		store:       store.New(contentNode, db, database.Target{Collection: contentNode, Doc: MainDocId}, decode, options),
		coordinator: coordinator,
	}
}

func (r *ContentRepository) Store() *store.Store[model.SiteContent] {
	return r.store
}

// Start subscribes to the singleton and seeds it with the defaults whenever
// the store is ready without it, including after a remote delete.
func (r *ContentRepository) Start(ctx context.Context) {
	r.mu.Lock()
	if r.cancel != nil {
		r.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.mu.Unlock()

	events := make(chan event.Event, 16)
	r.store.Subscribe(events)
	r.store.Start(ctx)

	go func() {
		defer r.store.Unsubscribe(events)

		if err := r.store.WaitReady(ctx); err != nil {
			return
		}
		if r.store.Read().Len() == 0 {
			r.seed(ctx)
		}

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				if e.Type != event.StoreChanged {
					continue
				}
				if view, isView := e.Message.(store.View[model.SiteContent]); isView && view.Len() == 0 {
					go r.seed(ctx)
				}
			}
		}
	}()
}

// seed runs Seed unless a seed is already in flight.
func (r *ContentRepository) seed(ctx context.Context) {
	if !r.seeding.CompareAndSwap(false, true) {
		return
	}
	defer r.seeding.Store(false)

	if err := r.Seed(ctx); err != nil {
		log.Error().Err(err).Msg("content repo: failed to seed the default content")
	}
}

func (r *ContentRepository) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.store.Stop()
}

func (r *ContentRepository) WaitReady(ctx context.Context) error {
	return r.store.WaitReady(ctx)
}

// Get returns the current content, or the defaults while the singleton is
// unknown.
func (r *ContentRepository) Get() model.SiteContent {
	if c, ok := r.store.Read().Item(MainDocId); ok {
		return c
	}
	return model.DefaultSiteContent()
}

// Seed creates the singleton with the default content unless it exists.
// Concurrent seeders are safe: only the first create lands.
func (r *ContentRepository) Seed(ctx context.Context) error {
	data, err := helper.ToData(model.DefaultSiteContent())
	if err != nil {
		return fmt.Errorf("seed content: %w", err)
	}

	err = r.db.CreateDoc(ctx, contentNode, MainDocId, data)
	if errors.Is(err, ierr.ErrAlreadyExists) {
		log.Debug().Msg("content repo: singleton already seeded")
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed content: %w", err)
	}
	return nil
}

func (r *ContentRepository) EditText(ctx context.Context, capability admin.Capability, field, value string) *optimistic.Ack {
	if !textFields[field] {
		return helper.Reject(capability, fmt.Errorf("edit content: %w, unknown text field %s", ierr.ErrValidation, field))
	}
	return r.coordinator.EditField(ctx, capability, r.ref(), field, value)
}

func (r *ContentRepository) SetHeroImage(ctx context.Context, capability admin.Capability, url string) *optimistic.Ack {
	if err := helper.ValidateVar(url, "omitempty,url"); err != nil {
		return helper.Reject(capability, fmt.Errorf("set hero image: %w", err))
	}
	return r.coordinator.EditField(ctx, capability, r.ref(), HeroImageFieldPath, url)
}

func (r *ContentRepository) SetVisibility(ctx context.Context, capability admin.Capability, field string, visible bool) *optimistic.Ack {
	if !visibilityFields[field] {
		return helper.Reject(capability, fmt.Errorf("set visibility: %w, unknown field %s", ierr.ErrValidation, field))
	}
	return r.coordinator.EditField(ctx, capability, r.ref(), field, visible)
}

// EditPromo sets one field of a nested promo with a dotted path write,
// leaving its sibling fields untouched.
func (r *ContentRepository) EditPromo(ctx context.Context, capability admin.Capability, promo, field, value string) *optimistic.Ack {
	if !promoFields[promo] {
		return helper.Reject(capability, fmt.Errorf("edit promo: %w, unknown promo %s", ierr.ErrValidation, promo))
	}

	switch field {
	case PromoTitleField, PromoDescriptionField:
	case PromoImageField, PromoLinkField:
		if err := helper.ValidateVar(value, "omitempty,url"); err != nil {
			return helper.Reject(capability, fmt.Errorf("edit promo %s: %w", field, err))
		}
	default:
		return helper.Reject(capability, fmt.Errorf("edit promo: %w, unknown field %s", ierr.ErrValidation, field))
	}

	return r.coordinator.EditField(ctx, capability, r.ref(), PromoFieldPath(promo, field), value)
}

// MutateList changes one of the flat string lists (rules, parking, safety).
func (r *ContentRepository) MutateList(ctx context.Context, capability admin.Capability, field string, op listmut.ListOp) *optimistic.Ack {
	if !listFields[field] {
		return helper.Reject(capability, fmt.Errorf("mutate content list: %w, unknown list %s", ierr.ErrValidation, field))
	}
	if op.Kind != listmut.OpRemoveAt {
		if err := helper.ValidateVar(op.Value, "required"); err != nil {
			return helper.Reject(capability, fmt.Errorf("mutate content list %s: %w", field, err))
		}
	}
	return r.coordinator.MutateList(ctx, capability, r.ref(), field, op)
}

// Update sets several content fields with a single write.
func (r *ContentRepository) Update(ctx context.Context, capability admin.Capability, fields map[string]interface{}) *optimistic.Ack {
	return r.coordinator.EditFields(ctx, capability, r.ref(), fields)
}

func (r *ContentRepository) ref() optimistic.Ref {
	return optimistic.Doc(r.store, MainDocId)
}
