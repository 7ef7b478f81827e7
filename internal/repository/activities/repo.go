package activities

import (
	"context"
	"fmt"

	"frailes/internal/admin"
	"frailes/internal/database"
	ierr "frailes/internal/errors"
	"frailes/internal/listmut"
	"frailes/internal/model"
	"frailes/internal/optimistic"
	"frailes/internal/repository/helper"
	"frailes/internal/store"
)

type ActivityRepository struct {
	db          database.Store
	store       *store.Store[model.Activity]
	coordinator *optimistic.Coordinator
}

var _ IRepository = (*ActivityRepository)(nil)

func New(db database.Store, coordinator *optimistic.Coordinator, options store.Options) *ActivityRepository {
	target := database.Target{Collection: activitiesNode, OrderBy: database.TimestampField, Direction: database.Desc}
	decode := helper.Decoder(func() model.Activity { return model.Activity{} }, func(a *model.Activity, id string) { a.Id = id })
	return &ActivityRepository{
		db:          db,
		store:       store.New(activitiesNode, db, target, decode, options),
		coordinator: coordinator,
	}
}

func (r *ActivityRepository) Store() *store.Store[model.Activity] {
	return r.store
}

func (r *ActivityRepository) Start(ctx context.Context) {
	r.store.Start(ctx)
}

func (r *ActivityRepository) Stop() {
	r.store.Stop()
}

func (r *ActivityRepository) WaitReady(ctx context.Context) error {
	return r.store.WaitReady(ctx)
}

// List returns the activities, newest first.
func (r *ActivityRepository) List() []model.Activity {
	return r.store.Items()
}

func (r *ActivityRepository) GetById(id string) (model.Activity, error) {
	a, ok := r.store.Read().Item(id)
	if !ok {
		return model.Activity{}, fmt.Errorf("get activity: %w, id: %s", ierr.NotFound, id)
	}
	return a, nil
}

// Add creates an activity or service with placeholder fields for the admin
// to fill in. It is not optimistic: the new activity shows up with the next
// snapshot.
func (r *ActivityRepository) Add(ctx context.Context, capability admin.Capability, kind model.ActivityType) (string, error) {
	if err := admin.Require(capability); err != nil {
		return "", err
	}

	a := model.Activity{
		Title:       placeholderTitle,
		Description: placeholderDescription,
		Type:        kind,
	}
	if kind == model.ActivityTypeService {
		a.Price = placeholderServicePrice
	}
	if err := helper.Validate(a); err != nil {
		return "", fmt.Errorf("add activity: %w", err)
	}

	data, err := helper.ToData(a)
	if err != nil {
		return "", fmt.Errorf("add activity: %w", err)
	}
	// new activities always carry the image and price fields
	data[ImageFieldPath] = ""
	data[PriceFieldPath] = a.Price

	id, err := r.db.Create(ctx, activitiesNode, data)
	if err != nil {
		return "", fmt.Errorf("add activity: %w", err)
	}
	return id, nil
}

func (r *ActivityRepository) EditText(ctx context.Context, capability admin.Capability, id, field, value string) *optimistic.Ack {
	if !textFields[field] {
		return helper.Reject(capability, fmt.Errorf("edit activity: %w, unknown text field %s", ierr.ErrValidation, field))
	}
	if field == TitleFieldPath {
		if err := helper.ValidateVar(value, "required"); err != nil {
			return helper.Reject(capability, fmt.Errorf("edit activity title: %w, id: %s", err, id))
		}
	}
	return r.coordinator.EditField(ctx, capability, optimistic.Doc(r.store, id), field, value)
}

func (r *ActivityRepository) SetImage(ctx context.Context, capability admin.Capability, id, url string) *optimistic.Ack {
	if err := helper.ValidateVar(url, "omitempty,url"); err != nil {
		return helper.Reject(capability, fmt.Errorf("set activity image: %w, id: %s", err, id))
	}
	return r.coordinator.EditField(ctx, capability, optimistic.Doc(r.store, id), ImageFieldPath, url)
}

func (r *ActivityRepository) SetType(ctx context.Context, capability admin.Capability, id string, kind model.ActivityType) *optimistic.Ack {
	if err := helper.ValidateVar(string(kind), "oneof=activity service"); err != nil {
		return helper.Reject(capability, fmt.Errorf("set activity type: %w, id: %s", err, id))
	}
	return r.coordinator.EditField(ctx, capability, optimistic.Doc(r.store, id), TypeFieldPath, kind)
}

// MutateList changes the what-to-bring or safety-tips list of an activity.
func (r *ActivityRepository) MutateList(ctx context.Context, capability admin.Capability, id, field string, op listmut.ListOp) *optimistic.Ack {
	if !listFields[field] {
		return helper.Reject(capability, fmt.Errorf("mutate activity list: %w, unknown list %s", ierr.ErrValidation, field))
	}
	if op.Kind != listmut.OpRemoveAt {
		if err := helper.ValidateVar(op.Value, "required"); err != nil {
			return helper.Reject(capability, fmt.Errorf("mutate activity list %s: %w, id: %s", field, err, id))
		}
	}
	return r.coordinator.MutateList(ctx, capability, optimistic.Doc(r.store, id), field, op)
}

// ApplyGuide sets all guide fields with a single write.
func (r *ActivityRepository) ApplyGuide(ctx context.Context, capability admin.Capability, id string, guide model.ActivityGuide) *optimistic.Ack {
	fields := map[string]interface{}{
		ExtendedDescriptionFieldPath: guide.ExtendedDescription,
		WhatToBringFieldPath:         nonNil(guide.WhatToBring),
		BestTimeFieldPath:            guide.BestTime,
		SafetyTipsFieldPath:          nonNil(guide.SafetyTips),
	}
	return r.coordinator.EditFields(ctx, capability, optimistic.Doc(r.store, id), fields)
}

func (r *ActivityRepository) Delete(ctx context.Context, capability admin.Capability, id string) error {
	if err := admin.Require(capability); err != nil {
		return err
	}
	if err := r.db.Delete(ctx, activitiesNode, id); err != nil {
		return fmt.Errorf("delete activity: %w, id: %s", err, id)
	}
	return nil
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
