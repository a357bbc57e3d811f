// Package kvstore defines the durable key-value contract the collection
// repositories persist through, plus memory, file and PostgreSQL backends.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidKey is returned for keys that are empty or contain characters a
// backend cannot store safely.
var ErrInvalidKey = errors.New("invalid storage key")

// Store is a persistent mapping from string keys to text values. A single Set
// is atomic; nothing is atomic across keys.
type Store interface {
	// Get returns the stored text and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	RemoveMany(ctx context.Context, keys []string) error
	ListKeys(ctx context.Context) ([]string, error)
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,128}$`)

// ValidateKey rejects keys outside the portable charset.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
