// Package app assembles the entity stores, the edit coordinator and the
// repositories of the site on top of one remote store.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"frailes/internal/admin"
	"frailes/internal/blob"
	"frailes/internal/booking"
	"frailes/internal/config"
	"frailes/internal/copywriter"
	"frailes/internal/database"
	"frailes/internal/eventpublisher"
	"frailes/internal/eventpublisher/event"
	"frailes/internal/optimistic"
	"frailes/internal/repository/activities"
	"frailes/internal/repository/allies"
	"frailes/internal/repository/content"
	"frailes/internal/repository/feedbacks"
	"frailes/internal/repository/helper"
	"frailes/internal/repository/reservations"
	"frailes/internal/store"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const watchWriteTimeout = time.Second

type Option func(*App)

func WithCopywriter(w *copywriter.Writer) Option {
	return func(a *App) { a.Copywriter = w }
}

func WithUploader(u blob.Uploader) Option {
	return func(a *App) { a.Uploader = u }
}

func WithNotifier(n optimistic.Notifier) Option {
	return func(a *App) { a.notifier = n }
}

// WithHandoff sets how booking handoff links are opened.
func WithHandoff(h booking.Handoff) Option {
	return func(a *App) { a.handoff = h }
}

type App struct {
	Gate         *admin.Gate
	Coordinator  *optimistic.Coordinator
	Content      *content.ContentRepository
	Activities   *activities.ActivityRepository
	Allies       *allies.AllyRepository
	Feedbacks    *feedbacks.FeedbackRepository
	Reservations *reservations.ReservationRepository

	// optional
	Copywriter *copywriter.Writer
	Uploader   blob.Uploader

	language string
	notifier optimistic.Notifier
	handoff  booking.Handoff
}

func New(cnf config.Config, db database.Store, opts ...Option) *App {
	a := &App{
		Gate:     admin.NewGate(cnf.Admin.Password),
		language: cnf.App.Language,
		notifier: optimistic.NotifierFunc(func(err error) {
			log.Error().Err(err).Msg("edit was not saved")
		}),
		handoff: booking.HandoffFunc(func(ctx context.Context, url string) error {
			log.Info().Msgf("booking handoff: %s", url)
			return nil
		}),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.Coordinator = optimistic.New(db, optimistic.Options{
		RevertOnFailure: cnf.Sync.RollbackOnFailure,
		Notifier:        a.notifier,
	})

	options := store.Options{FirstSnapshotTimeout: cnf.Sync.FirstSnapshotTimeout}
	a.Content = content.New(db, a.Coordinator, options)
	a.Activities = activities.New(db, a.Coordinator, options)
	a.Allies = allies.New(db, a.Coordinator, options)
	a.Feedbacks = feedbacks.New(db, options)
	a.Reservations = reservations.New(db, a.Coordinator, options)
	return a
}

type lifecycle interface {
	Start(ctx context.Context)
	Stop()
	WaitReady(ctx context.Context) error
}

func (a *App) repositories() []lifecycle {
	return []lifecycle{a.Content, a.Activities, a.Allies, a.Feedbacks, a.Reservations}
}

func (a *App) publishers() []eventpublisher.Publisher {
	return []eventpublisher.Publisher{
		a.Content.Store(),
		a.Activities.Store(),
		a.Allies.Store(),
		a.Feedbacks.Store(),
		a.Reservations.Store(),
		a.Coordinator,
	}
}

// Start subscribes every entity store and waits until all of them are ready.
// Readiness never depends on the remote store answering.
func (a *App) Start(ctx context.Context) error {
	for _, r := range a.repositories() {
		r.Start(ctx)
	}

	group, gctx := errgroup.WithContext(ctx)
	for _, r := range a.repositories() {
		r := r
		group.Go(func() error {
			return r.WaitReady(gctx)
		})
	}
	if err := group.Wait(); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	log.Info().Msg("all stores are ready")
	return nil
}

// Stop waits for in-flight writes, bounded by ctx, and closes every
// subscription.
func (a *App) Stop(ctx context.Context) {
	if err := a.Coordinator.Flush(ctx); err != nil {
		log.Warn().Err(err).Msg("stopping with edits still in flight")
	}
	for _, r := range a.repositories() {
		r.Stop()
	}
}

// Booking opens the booking wizard of an ally as currently known locally.
func (a *App) Booking(allyId string) (*booking.Flow, error) {
	ally, err := a.Allies.GetById(allyId)
	if err != nil {
		return nil, err
	}
	return booking.New(ally, a.Reservations, a.handoff, a.language), nil
}

// Watch merges the events of every store and of the coordinator until ctx is
// done. A slow reader loses events rather than stalling the stores.
func (a *App) Watch(ctx context.Context) <-chan event.Event {
	out := make(chan event.Event)

	var wg sync.WaitGroup
	for _, p := range a.publishers() {
		ch := make(chan event.Event)
		p.Subscribe(ch)

		wg.Add(1)
		go func(p eventpublisher.Publisher, ch chan event.Event) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					p.Unsubscribe(ch)
					return
				case e, ok := <-ch:
					if !ok {
						return
					}
					if err := helper.NonblockingWrite(ctx, watchWriteTimeout, out, e); err != nil {
						log.Debug().Err(err).Msgf("watch: dropped %s event of %s", e.Type, e.Source)
					}
				}
			}
		}(p, ch)
	}

	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
