package domain

import (
	"errors"
	"time"
)

// ErrNoSession indicates that no session is active.
var ErrNoSession = errors.New("no active session")

// Session holds the single authenticated identity for the client context.
// It is a pointer back to a User by id, not an ownership relation.
type Session struct {
	AccountID string    `json:"userId"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	LoginTime time.Time `json:"loginTime"`
}
