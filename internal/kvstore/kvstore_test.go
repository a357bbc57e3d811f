package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/invoicekit/internal/database"
)

func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key reports absent", func(t *testing.T) {
		s := newStore(t)
		v, ok, err := s.Get(ctx, "invoices")
		require.NoError(t, err)
		require.False(t, ok)
		require.Empty(t, v)
	})

	t.Run("set then get returns value", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "clients", `[{"id":"1"}]`))
		v, ok, err := s.Get(ctx, "clients")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, `[{"id":"1"}]`, v)
	})

	t.Run("set overwrites", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "items", "[]"))
		require.NoError(t, s.Set(ctx, "items", `[{"id":"2"}]`))
		v, _, err := s.Get(ctx, "items")
		require.NoError(t, err)
		require.Equal(t, `[{"id":"2"}]`, v)
	})

	t.Run("empty value is stored as present", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "bookings", ""))
		v, ok, err := s.Get(ctx, "bookings")
		require.NoError(t, err)
		require.True(t, ok)
		require.Empty(t, v)
	})

	t.Run("remove and remove many", func(t *testing.T) {
		s := newStore(t)
		for _, k := range []string{"invoices", "clients", "items", "lastInvoiceNumber"} {
			require.NoError(t, s.Set(ctx, k, "1"))
		}
		require.NoError(t, s.Remove(ctx, "invoices"))
		require.NoError(t, s.Remove(ctx, "invoices"), "removing a missing key is not an error")
		require.NoError(t, s.RemoveMany(ctx, []string{"clients", "lastInvoiceNumber", "expenses"}))

		keys, err := s.ListKeys(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"items"}, keys)
	})

	t.Run("list keys is sorted", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "items", "[]"))
		require.NoError(t, s.Set(ctx, "clients", "[]"))
		require.NoError(t, s.Set(ctx, "expenses", "[]"))
		keys, err := s.ListKeys(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"clients", "expenses", "items"}, keys)
	})

	t.Run("rejects unsafe keys", func(t *testing.T) {
		s := newStore(t)
		require.ErrorIs(t, s.Set(ctx, "../escape", "x"), ErrInvalidKey)
		require.ErrorIs(t, s.Set(ctx, "", "x"), ErrInvalidKey)
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		return NewMemoryStore()
	})
}

func TestFileStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		s, err := NewFileStore(filepath.Join(t.TempDir(), "data"))
		require.NoError(t, err)
		return s
	})

	t.Run("values survive a new store on the same dir", func(t *testing.T) {
		dir := t.TempDir()
		s1, err := NewFileStore(dir)
		require.NoError(t, err)
		require.NoError(t, s1.Set(context.Background(), "invoices", `[{"id":"a"}]`))

		s2, err := NewFileStore(dir)
		require.NoError(t, err)
		v, ok, err := s2.Get(context.Background(), "invoices")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, `[{"id":"a"}]`, v)
	})

	t.Run("ignores foreign files and leaves no temp files", func(t *testing.T) {
		dir := t.TempDir()
		s, err := NewFileStore(dir)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
		require.NoError(t, s.Set(context.Background(), "items", "[]"))

		keys, err := s.ListKeys(context.Background())
		require.NoError(t, err)
		require.Equal(t, []string{"items"}, keys)

		_, err = os.Stat(filepath.Join(dir, "items.json.tmp"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unreadable value surfaces an error", func(t *testing.T) {
		dir := t.TempDir()
		s, err := NewFileStore(dir)
		require.NoError(t, err)
		require.NoError(t, os.Mkdir(filepath.Join(dir, "clients.json"), 0o755))

		_, _, err = s.Get(context.Background(), "clients")
		require.Error(t, err)
	})
}

func TestPostgresStore(t *testing.T) {
	pool := database.TestDB(t)
	require.NoError(t, database.RunMigrations(context.Background(), pool))

	runStoreContract(t, func(t *testing.T) Store {
		database.CleanupTables(t, pool)
		return NewPostgresStore(pool)
	})
}

func TestValidateKey(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"invoices", "lastInvoiceNumber", "a.b-c_d"} {
		require.NoError(t, ValidateKey(key), key)
	}
	for _, key := range []string{"", ".", "..", "a/b", `a\b`, "white space"} {
		require.ErrorIs(t, ValidateKey(key), ErrInvalidKey, key)
	}
}

func TestFaultyStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := NewFaultyStore(NewMemoryStore())
	require.NoError(t, f.Set(ctx, "items", "[]"))

	f.FailReads(true)
	_, _, err := f.Get(ctx, "items")
	require.ErrorIs(t, err, ErrInjected)
	f.FailReads(false)

	f.FailWrites(true)
	require.ErrorIs(t, f.Set(ctx, "items", "x"), ErrInjected)
	require.ErrorIs(t, f.RemoveMany(ctx, []string{"items"}), ErrInjected)
	f.FailWrites(false)

	v, ok, err := f.Get(ctx, "items")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "[]", v)
	require.EqualValues(t, 2, f.Reads())
	require.EqualValues(t, 2, f.Writes())
}
