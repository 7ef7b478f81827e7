package feedbacks

import (
	"context"
	"fmt"
	"strings"

	"frailes/internal/admin"
	"frailes/internal/database"
	"frailes/internal/model"
	"frailes/internal/repository/helper"
	"frailes/internal/store"
)

// FeedbackRepository is append-only for visitors. Only admins delete, and
// nobody updates a feedback in place.
type FeedbackRepository struct {
	db    database.Store
	store *store.Store[model.Feedback]
}

var _ IRepository = (*FeedbackRepository)(nil)

func New(db database.Store, options store.Options) *FeedbackRepository {
	target := database.Target{Collection: feedbacksNode, OrderBy: database.TimestampField, Direction: database.Desc}
	decode := helper.Decoder(func() model.Feedback { return model.Feedback{} }, func(f *model.Feedback, id string) { f.Id = id })
	return &FeedbackRepository{
		db:    db,
		store: store.New(feedbacksNode, db, target, decode, options),
	}
}

func (r *FeedbackRepository) Store() *store.Store[model.Feedback] {
	return r.store
}

func (r *FeedbackRepository) Start(ctx context.Context) {
	r.store.Start(ctx)
}

func (r *FeedbackRepository) Stop() {
	r.store.Stop()
}

func (r *FeedbackRepository) WaitReady(ctx context.Context) error {
	return r.store.WaitReady(ctx)
}

// List returns the feedbacks, newest first.
func (r *FeedbackRepository) List() []model.Feedback {
	return r.store.Items()
}

func (r *FeedbackRepository) Submit(ctx context.Context, name, comment string) (string, error) {
	f := model.Feedback{
		Name:    strings.TrimSpace(name),
		Comment: strings.TrimSpace(comment),
	}
	if err := helper.Validate(f); err != nil {
		return "", fmt.Errorf("submit feedback: %w", err)
	}

	data, err := helper.ToData(f)
	if err != nil {
		return "", fmt.Errorf("submit feedback: %w", err)
	}

	id, err := r.db.Create(ctx, feedbacksNode, data)
	if err != nil {
		return "", fmt.Errorf("submit feedback: %w", err)
	}
	return id, nil
}

func (r *FeedbackRepository) Delete(ctx context.Context, capability admin.Capability, id string) error {
	if err := admin.Require(capability); err != nil {
		return err
	}
	if err := r.db.Delete(ctx, feedbacksNode, id); err != nil {
		return fmt.Errorf("delete feedback: %w, id: %s", err, id)
	}
	return nil
}
