package config

import (
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestWriteTimeoutIsDuration(t *testing.T) {
	t.Setenv("FIREBASE_PRIVATE_KEY", "")
	t.Setenv("FIREBASE_WRITE_TIMEOUT", "45s")

	cnf := LoadConfigOrPanic()
	assert.Equal(t, cnf.Firebase.WriteTimeout, 45*time.Second)
}

func TestNormalizeDefaults(t *testing.T) {
	cnf := Config{}
	cnf.normalize()

	assert.Equal(t, cnf.Firebase.WriteTimeout, 30*time.Second)
	assert.Equal(t, cnf.Sync.FirstSnapshotTimeout, 5*time.Second)
	assert.Equal(t, cnf.Sync.Backend, BackendFirestore)
	assert.Equal(t, cnf.Copy.Provider, ProviderGPT)
	assert.Equal(t, cnf.App.Language, "es")
}
