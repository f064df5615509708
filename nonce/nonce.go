// Package nonce implements short-lived, single-use tokens bound to an
// action string. A token issued for one action never verifies against
// another, and verifying consumes it: the second verification of the same
// token fails.
//
// The Store interface separates token state from token logic. The memory
// store suits single-process hosts; the Redis store makes tokens valid
// across every replica of a multi-instance deployment.
package nonce

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInvalid is returned when a token is unknown, expired, already
// consumed, or bound to a different action. Callers get no finer detail
// than this.
var ErrInvalid = errors.New("nonce: invalid or expired token")

// DefaultTTL is how long an issued token stays valid.
const DefaultTTL = 15 * time.Minute

// Store persists live tokens.
type Store interface {
	// Save records a token for the action with the given lifetime.
	Save(ctx context.Context, action, token string, ttl time.Duration) error

	// Consume removes the token and reports whether it was present and
	// unexpired. Consume must be atomic: two concurrent calls for the
	// same token succeed at most once.
	Consume(ctx context.Context, action, token string) (bool, error)
}

// Issuer issues and verifies tokens against a Store.
type Issuer struct {
	store Store
	ttl   time.Duration
}

// Option configures an Issuer.
type Option func(*Issuer)

// WithTTL sets the token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(i *Issuer) { i.ttl = ttl }
}

// NewIssuer creates an Issuer backed by the given store.
func NewIssuer(store Store, opts ...Option) *Issuer {
	i := &Issuer{store: store, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue creates a fresh token bound to the action.
func (i *Issuer) Issue(ctx context.Context, action string) (string, error) {
	token := uuid.NewString()
	if err := i.store.Save(ctx, action, token, i.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// Verify consumes the token. It returns ErrInvalid unless the token was
// issued for this exact action, is unexpired, and has not been consumed
// before.
func (i *Issuer) Verify(ctx context.Context, token, action string) error {
	ok, err := i.store.Consume(ctx, action, token)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalid
	}
	return nil
}
