package helper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"frailes/internal/admin"
	"frailes/internal/database"
	"frailes/internal/database/utils"
	ierr "frailes/internal/errors"
	"frailes/internal/optimistic"
	"frailes/internal/store"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the validate tags of v. Failures wrap ErrValidation.
func Validate(v interface{}) error {
	if err := validatorInstance().Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ierr.ErrValidation, err)
	}
	return nil
}

// ValidateVar checks a single value against a validator tag, e.g. "omitempty,url".
func ValidateVar(v interface{}, tag string) error {
	if err := validatorInstance().Var(v, tag); err != nil {
		return fmt.Errorf("%w: %v", ierr.ErrValidation, err)
	}
	return nil
}

// Reject resolves a mutation that failed before reaching the coordinator. A
// missing capability is reported ahead of err.
func Reject(capability admin.Capability, err error) *optimistic.Ack {
	if capErr := admin.Require(capability); capErr != nil {
		return optimistic.Failed(capErr)
	}
	return optimistic.Failed(err)
}

// Decoder builds a store decoder for T. newItem returns the value the
// document fields are decoded onto, so it can carry defaults.
func Decoder[T any](newItem func() T, setId func(item *T, id string)) store.Decoder[T] {
	return func(doc database.Document) (T, error) {
		item := newItem()
		if err := utils.DataToType(doc.Data, &item); err != nil {
			var zero T
			return zero, fmt.Errorf("decode %s: %w", doc.ID, err)
		}
		setId(&item, doc.ID)
		return item, nil
	}
}

// ToData encodes v into document fields, dropping fields the store assigns.
func ToData(v interface{}) (map[string]interface{}, error) {
	data, err := utils.TypeToData(v)
	if err != nil {
		return nil, err
	}
	delete(data, database.TimestampField)
	return data, nil
}

// NonblockingWrite is a generic function that can write any type of event to any channel type.
// T is the type parameter for the event.
func NonblockingWrite[T any](ctx context.Context, timeout time.Duration, ch chan<- T, event T) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
