package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestRetryStopsOnSuccess(t *testing.T) {
	calls := 0
	err := NewRetryHandler(time.Second, time.Millisecond, 5).Do(func() error {
		calls++
		if calls < 3 {
			return errors.New("busy")
		}
		return nil
	})
	assert.Equal(t, err, nil)
	assert.Equal(t, calls, 3)
}

func TestRetryReturnsLastError(t *testing.T) {
	calls := 0
	last := errors.New("still busy")
	err := NewRetryHandler(time.Second, time.Millisecond, 2).Do(func() error {
		calls++
		return last
	})
	assert.Equal(t, err, last)
	assert.Equal(t, calls, 2)
}

func TestHashSeparatesParts(t *testing.T) {
	assert.Equal(t, Hash("ab", "c") == Hash("a", "bc"), false)
	assert.Equal(t, Hash("a", "b"), Hash("a", "b"))
	assert.Equal(t, len(Hash("x")), 64)
}
