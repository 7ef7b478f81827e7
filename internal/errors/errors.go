package errors

import "errors"

var (
	NotFound       = errors.New("not found")
	ErrNotAdmin    = errors.New("admin capability required")
	ErrValidation  = errors.New("validation failed")
	ErrUnknownItem = errors.New("unknown embedded item")
	ErrStep        = errors.New("invalid booking step")
	ErrNotReady    = errors.New("store is not ready")
)

var ErrAlreadyExists = errors.New("already exists")
