package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

const denylistKeyPrefix = "session:denylist:"

// TokenStore is the slice of the application cache the denylist needs.
type TokenStore interface {
	// Get returns ("", nil) when a key is not found.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// Denylist remembers signed-out tokens until they would have expired anyway.
type Denylist interface {
	Add(ctx context.Context, token string, until time.Time) error
	Contains(ctx context.Context, token string) (bool, error)
}

type cacheDenylist struct {
	store TokenStore
	now   func() time.Time
}

// NewDenylist stores revoked tokens in store. Without a store nothing is revoked
// and tokens stay valid until they expire.
func NewDenylist(store TokenStore) Denylist {
	if store == nil {
		return nopDenylist{}
	}
	return &cacheDenylist{store: store, now: time.Now}
}

func denylistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return denylistKeyPrefix + hex.EncodeToString(sum[:])
}

func (d *cacheDenylist) Add(ctx context.Context, token string, until time.Time) error {
	ttl := until.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	if err := d.store.Set(ctx, denylistKey(token), "1", ttl); err != nil {
		return fmt.Errorf("denylist add: %w", err)
	}
	return nil
}

func (d *cacheDenylist) Contains(ctx context.Context, token string) (bool, error) {
	value, err := d.store.Get(ctx, denylistKey(token))
	if err != nil {
		return false, fmt.Errorf("denylist lookup: %w", err)
	}
	return value != "", nil
}

type nopDenylist struct{}

func (nopDenylist) Add(context.Context, string, time.Time) error { return nil }

func (nopDenylist) Contains(context.Context, string) (bool, error) { return false, nil }
