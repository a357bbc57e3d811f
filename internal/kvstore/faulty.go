package kvstore

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrInjected is the error a FaultyStore returns for a failing operation.
var ErrInjected = errors.New("injected storage failure")

// FaultyStore wraps a Store and fails reads or writes on demand. It is meant
// for tests that exercise storage failure paths.
type FaultyStore struct {
	Store

	failReads  atomic.Bool
	failWrites atomic.Bool
	reads      atomic.Int64
	writes     atomic.Int64
}

// NewFaultyStore wraps inner.
func NewFaultyStore(inner Store) *FaultyStore {
	return &FaultyStore{Store: inner}
}

// FailReads toggles failures for Get and ListKeys.
func (f *FaultyStore) FailReads(fail bool) { f.failReads.Store(fail) }

// FailWrites toggles failures for Set, Remove and RemoveMany.
func (f *FaultyStore) FailWrites(fail bool) { f.failWrites.Store(fail) }

// Reads returns the number of Get calls seen.
func (f *FaultyStore) Reads() int64 { return f.reads.Load() }

// Writes returns the number of Set calls seen.
func (f *FaultyStore) Writes() int64 { return f.writes.Load() }

func (f *FaultyStore) Get(ctx context.Context, key string) (string, bool, error) {
	f.reads.Add(1)
	if f.failReads.Load() {
		return "", false, ErrInjected
	}
	return f.Store.Get(ctx, key)
}

func (f *FaultyStore) ListKeys(ctx context.Context) ([]string, error) {
	if f.failReads.Load() {
		return nil, ErrInjected
	}
	return f.Store.ListKeys(ctx)
}

func (f *FaultyStore) Set(ctx context.Context, key, value string) error {
	f.writes.Add(1)
	if f.failWrites.Load() {
		return ErrInjected
	}
	return f.Store.Set(ctx, key, value)
}

func (f *FaultyStore) Remove(ctx context.Context, key string) error {
	if f.failWrites.Load() {
		return ErrInjected
	}
	return f.Store.Remove(ctx, key)
}

func (f *FaultyStore) RemoveMany(ctx context.Context, keys []string) error {
	if f.failWrites.Load() {
		return ErrInjected
	}
	return f.Store.RemoveMany(ctx, keys)
}
