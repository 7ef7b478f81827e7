// Package admin hands out the capability required by every mutation. The
// password is a shared secret that unlocks the editing controls of a client;
// it does not protect the remote store.
package admin

import (
	"crypto/subtle"
	"fmt"

	ierr "frailes/internal/errors"
)

// Capability is passed into mutations. Only Gate.Unlock can produce one that
// allows editing; the zero value is a visitor.
type Capability struct {
	token *token
}

type token struct {
	gate *Gate
}

func (c Capability) IsAdmin() bool {
	return c.token != nil
}

// Visitor is the capability of a client that never unlocked the gate.
var Visitor = Capability{}

type Gate struct {
	password []byte
}

func NewGate(password string) *Gate {
	return &Gate{password: []byte(password)}
}

func (g *Gate) Unlock(password string) (Capability, error) {
	if len(g.password) == 0 || subtle.ConstantTimeCompare(g.password, []byte(password)) != 1 {
		return Visitor, fmt.Errorf("unlock: %w", ierr.ErrNotAdmin)
	}
	return Capability{token: &token{gate: g}}, nil
}

// Require returns ErrNotAdmin unless c allows editing.
func Require(c Capability) error {
	if !c.IsAdmin() {
		return ierr.ErrNotAdmin
	}
	return nil
}
