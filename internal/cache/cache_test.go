package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/invoicekit/internal/models"
)

type countingLoader struct {
	calls   atomic.Int64
	release chan struct{}
	value   []string
	err     error
}

func (l *countingLoader) Load(context.Context) ([]string, error) {
	l.calls.Add(1)
	if l.release != nil {
		<-l.release
	}
	return l.value, l.err
}

func TestFetch(t *testing.T) {
	t.Parallel()

	t.Run("second fetch is served from cache", func(t *testing.T) {
		t.Parallel()
		c := New(time.Hour, nil)
		loader := &countingLoader{value: []string{"a"}}

		got, err := Fetch(context.Background(), c, models.KindClients, loader.Load)
		require.NoError(t, err)
		require.Equal(t, []string{"a"}, got)

		got, err = Fetch(context.Background(), c, models.KindClients, loader.Load)
		require.NoError(t, err)
		require.Equal(t, []string{"a"}, got)
		require.EqualValues(t, 1, loader.calls.Load())
		require.True(t, c.Cached(models.KindClients))
	})

	t.Run("kinds are cached separately", func(t *testing.T) {
		t.Parallel()
		c := New(time.Hour, nil)
		loader := &countingLoader{value: []string{"a"}}

		_, err := Fetch(context.Background(), c, models.KindClients, loader.Load)
		require.NoError(t, err)
		_, err = Fetch(context.Background(), c, models.KindItems, loader.Load)
		require.NoError(t, err)
		require.EqualValues(t, 2, loader.calls.Load())
	})

	t.Run("concurrent misses share one load", func(t *testing.T) {
		t.Parallel()
		c := New(time.Hour, nil)
		loader := &countingLoader{value: []string{"a"}, release: make(chan struct{})}

		var wg sync.WaitGroup
		results := make([][]string, 10)
		errs := make([]error, 10)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i], errs[i] = Fetch(context.Background(), c, models.KindInvoices, loader.Load)
			}()
		}

		require.Eventually(t, func() bool { return loader.calls.Load() == 1 }, time.Second, time.Millisecond)
		close(loader.release)
		wg.Wait()

		require.EqualValues(t, 1, loader.calls.Load())
		for i, got := range results {
			require.NoError(t, errs[i])
			require.Equal(t, []string{"a"}, got)
		}
	})

	t.Run("failed load is returned but not cached", func(t *testing.T) {
		t.Parallel()
		c := New(time.Hour, nil)
		boom := errors.New("boom")
		loader := &countingLoader{value: []string{}, err: boom}

		got, err := Fetch(context.Background(), c, models.KindItems, loader.Load)
		require.ErrorIs(t, err, boom)
		require.Equal(t, []string{}, got)
		require.False(t, c.Cached(models.KindItems))

		loader.err = nil
		loader.value = []string{"ok"}
		got, err = Fetch(context.Background(), c, models.KindItems, loader.Load)
		require.NoError(t, err)
		require.Equal(t, []string{"ok"}, got)
		require.EqualValues(t, 2, loader.calls.Load())
	})

	t.Run("expired entry is reloaded", func(t *testing.T) {
		t.Parallel()
		var now atomic.Int64
		now.Store(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).UnixNano())
		clock := func() time.Time { return time.Unix(0, now.Load()) }
		c := New(time.Minute, clock)
		loader := &countingLoader{value: []string{"a"}}

		_, err := Fetch(context.Background(), c, models.KindBookings, loader.Load)
		require.NoError(t, err)
		now.Add(int64(2 * time.Minute))
		_, err = Fetch(context.Background(), c, models.KindBookings, loader.Load)
		require.NoError(t, err)
		require.EqualValues(t, 2, loader.calls.Load())
	})

	t.Run("cancelled waiter returns early while the load completes", func(t *testing.T) {
		t.Parallel()
		c := New(time.Hour, nil)
		loader := &countingLoader{value: []string{"a"}, release: make(chan struct{})}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Fetch(ctx, c, models.KindExpenses, loader.Load)
		require.ErrorIs(t, err, context.Canceled)

		close(loader.release)
		require.Eventually(t, func() bool { return c.Cached(models.KindExpenses) }, time.Second, time.Millisecond)
	})
}

func TestInvalidate(t *testing.T) {
	t.Parallel()

	t.Run("invalidate forces a reload", func(t *testing.T) {
		t.Parallel()
		c := New(time.Hour, nil)
		loader := &countingLoader{value: []string{"a"}}

		_, err := Fetch(context.Background(), c, models.KindClients, loader.Load)
		require.NoError(t, err)
		c.Invalidate(models.KindClients)
		require.False(t, c.Cached(models.KindClients))

		_, err = Fetch(context.Background(), c, models.KindClients, loader.Load)
		require.NoError(t, err)
		require.EqualValues(t, 2, loader.calls.Load())
	})

	t.Run("invalidate all drops every kind", func(t *testing.T) {
		t.Parallel()
		c := New(time.Hour, nil)
		loader := &countingLoader{value: []string{"a"}}
		for _, kind := range models.AllKinds {
			_, err := Fetch(context.Background(), c, kind, loader.Load)
			require.NoError(t, err)
		}

		c.InvalidateAll()
		for _, kind := range models.AllKinds {
			require.False(t, c.Cached(kind))
		}
	})

	t.Run("load started before invalidation does not repopulate", func(t *testing.T) {
		t.Parallel()
		c := New(time.Hour, nil)
		stale := &countingLoader{value: []string{"stale"}, release: make(chan struct{})}

		done := make(chan []string)
		go func() {
			got, _ := Fetch(context.Background(), c, models.KindInvoices, stale.Load)
			done <- got
		}()
		require.Eventually(t, func() bool { return stale.calls.Load() == 1 }, time.Second, time.Millisecond)

		c.Invalidate(models.KindInvoices)
		close(stale.release)
		require.Equal(t, []string{"stale"}, <-done, "the original waiter still gets its result")
		require.False(t, c.Cached(models.KindInvoices))

		fresh := &countingLoader{value: []string{"fresh"}}
		got, err := Fetch(context.Background(), c, models.KindInvoices, fresh.Load)
		require.NoError(t, err)
		require.Equal(t, []string{"fresh"}, got)
		require.EqualValues(t, 1, fresh.calls.Load())
	})
}
