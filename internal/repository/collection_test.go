package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/invoicekit/internal/kvstore"
	"gitlab.com/yelinaung/invoicekit/internal/models"
	"pgregory.net/rapid"
)

var fixedNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func stored(t *testing.T, kv kvstore.Store, key string) (string, bool) {
	t.Helper()
	v, ok, err := kv.Get(context.Background(), key)
	require.NoError(t, err)
	return v, ok
}

func TestCollection_LoadSelfHeals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       *string
		wantValue string
	}{
		{name: "absent key", raw: nil},
		{name: "empty string", raw: ptr(""), wantValue: ""},
		{name: "null", raw: ptr("null"), wantValue: "null"},
		{name: "undefined", raw: ptr("undefined"), wantValue: "undefined"},
		{name: "invalid json", raw: ptr("{not json"), wantValue: "[]"},
		{name: "object instead of array", raw: ptr(`{"id":"a"}`), wantValue: "[]"},
		{name: "number", raw: ptr("42"), wantValue: "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			kv := kvstore.NewMemoryStore()
			if tt.raw != nil {
				require.NoError(t, kv.Set(ctx, "clients", *tt.raw))
			}
			repo := NewClientRepository(kv)

			for range 2 {
				got, err := repo.Load(ctx)
				require.NoError(t, err)
				require.NotNil(t, got)
				require.Empty(t, got)
			}

			v, ok := stored(t, kv, "clients")
			if tt.raw == nil {
				require.False(t, ok, "absent key must not be written")
				return
			}
			require.True(t, ok)
			require.Equal(t, tt.wantValue, v)
		})
	}
}

func TestCollection_LoadSkipsInvalidRecords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "element without id", raw: `[{"id":"a"},{"name":"Acme"}]`, want: []string{"a"}},
		{name: "element with wrong field type", raw: `[{"id":7},{"id":"b"}]`, want: []string{"b"}},
		{name: "null element", raw: `[null,{"id":"c"}]`, want: []string{"c"}},
		{name: "only invalid elements", raw: `[{"name":"Acme"}]`, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			kv := kvstore.NewMemoryStore()
			require.NoError(t, kv.Set(ctx, "clients", tt.raw))

			got, err := NewClientRepository(kv).Load(ctx)
			require.NoError(t, err)
			ids := []string{}
			for _, c := range got {
				ids = append(ids, c.ID)
			}
			require.Equal(t, tt.want, ids)

			v, _ := stored(t, kv, "clients")
			require.Equal(t, tt.raw, v, "invalid records stay in storage")
		})
	}
}

func TestInvoiceRepository_MixedRecordsSurviveLoad(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	raw := `[` +
		`{"id":"paid","invoiceNumber":"INV-0001","status":"paid","total":100,` +
		`"items":[{"id":"l1","description":"Design","quantity":1,"rate":100,"amount":100}]},` +
		`{"id":"hours","invoiceNumber":"INV-0002","status":"draft","total":120,` +
		`"items":[{"id":"l2","description":"Support","quantity":1.5,"rate":80,"amount":120}]},` +
		`{"id":"broken","status":"archived"},` +
		`{"id":"late","status":"sent","dueDate":"2026-06-01T00:00:00Z"}` +
		`]`
	require.NoError(t, kv.Set(ctx, "invoices", raw))

	got, err := NewInvoiceRepository(kv, clock).Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "paid", got[0].ID)
	require.Equal(t, "hours", got[1].ID)
	require.True(t, decimal.RequireFromString("1.5").Equal(got[1].Items[0].Quantity))
	require.True(t, decimal.NewFromInt(120).Equal(got[1].Items[0].Amount))
	require.Equal(t, models.InvoiceStatusOverdue, got[2].Status)

	v, _ := stored(t, kv, "invoices")
	require.Equal(t, raw, v, "a collection with invalid records is not rewritten on load")

	result, err := NewInvoiceRepository(kv, clock).Repair(ctx)
	require.NoError(t, err)
	require.Equal(t, RepairSalvaged, result.Outcome)
	require.Equal(t, 3, result.Count)
	require.Equal(t, 1, result.Dropped)

	got, err = NewInvoiceRepository(kv, clock).Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
}

func TestCollection_ExtraFieldsAreTolerated(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, "items", `[{"id":"1","name":"Web Development","price":2500,"tax":20}]`))

	items, err := NewItemRepository(kv).Load(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.True(t, decimal.NewFromInt(2500).Equal(items[0].Price))
}

func TestCollection_SaveAllThenLoad(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	repo := NewClientRepository(kv)

	clients := []models.Client{
		{ID: "c1", Name: "Acme", Email: "billing@acme.test"},
		{ID: "c2", Name: "Globex", Company: "Globex Corp"},
	}
	require.NoError(t, repo.SaveAll(ctx, clients))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, clients, got)

	require.NoError(t, repo.SaveAll(ctx, nil))
	v, _ := stored(t, kv, "clients")
	require.Equal(t, "[]", v)
}

func TestCollection_SaveAllIgnoresCancellation(t *testing.T) {
	t.Parallel()
	kv := kvstore.NewMemoryStore()
	repo := NewClientRepository(kv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, repo.SaveAll(ctx, []models.Client{{ID: "c1"}}))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestCollection_RoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		repo := NewExpenseRepository(kvstore.NewMemoryStore())

		n := rapid.IntRange(0, 8).Draw(t, "n")
		expenses := make([]models.Expense, 0, n)
		for i := range n {
			cat := rapid.SampledFrom(models.ExpenseCategories).Draw(t, "category")
			cents := rapid.Int64Range(0, 1_000_000).Draw(t, "cents")
			expenses = append(expenses, models.Expense{
				ID:          rapid.StringMatching(`[a-z0-9]{1,12}`).Draw(t, "id") + string(rune('a'+i)),
				Date:        "2026-01-02",
				Merchant:    rapid.String().Draw(t, "merchant"),
				Category:    cat.Value,
				Description: rapid.String().Draw(t, "description"),
				Subtotal:    decimal.New(cents, -2),
				Total:       decimal.New(cents, -2),
				CreatedAt:   fixedNow,
				UpdatedAt:   fixedNow,
			})
		}

		if err := repo.SaveAll(ctx, expenses); err != nil {
			t.Fatalf("save: %v", err)
		}
		got, err := repo.Load(ctx)
		if err != nil {
			t.Fatalf("load: %v", err)
		}

		want, _ := json.Marshal(expenses)
		have, _ := json.Marshal(got)
		if string(want) != string(have) {
			t.Fatalf("round trip mismatch\nwant %s\nhave %s", want, have)
		}
	})
}

func TestCollection_StorageFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("read failure returns empty and a read error", func(t *testing.T) {
		t.Parallel()
		kv := kvstore.NewFaultyStore(kvstore.NewMemoryStore())
		require.NoError(t, kv.Set(ctx, "clients", `[{"id":"c1"}]`))
		kv.FailReads(true)

		got, err := NewClientRepository(kv).Load(ctx)
		require.ErrorIs(t, err, ErrStorageRead)
		require.ErrorIs(t, err, kvstore.ErrInjected)
		require.Empty(t, got)
	})

	t.Run("mutations abort on read failure and keep data", func(t *testing.T) {
		t.Parallel()
		kv := kvstore.NewFaultyStore(kvstore.NewMemoryStore())
		require.NoError(t, kv.Set(ctx, "clients", `[{"id":"c1"}]`))
		repo := NewClientRepository(kv)

		kv.FailReads(true)
		require.ErrorIs(t, repo.Upsert(ctx, models.Client{ID: "c2"}), ErrStorageRead)
		_, err := repo.RemoveByID(ctx, "c1")
		require.ErrorIs(t, err, ErrStorageRead)
		kv.FailReads(false)

		got, err := repo.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, []models.Client{{ID: "c1"}}, got)
	})

	t.Run("write failure surfaces and leaves previous value", func(t *testing.T) {
		t.Parallel()
		kv := kvstore.NewFaultyStore(kvstore.NewMemoryStore())
		repo := NewClientRepository(kv)
		require.NoError(t, repo.SaveAll(ctx, []models.Client{{ID: "c1"}}))

		kv.FailWrites(true)
		err := repo.SaveAll(ctx, []models.Client{{ID: "c2"}})
		require.ErrorIs(t, err, ErrStorageWrite)
		kv.FailWrites(false)

		got, err := repo.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, []models.Client{{ID: "c1"}}, got)
	})

	t.Run("self heal write failure still returns empty", func(t *testing.T) {
		t.Parallel()
		kv := kvstore.NewFaultyStore(kvstore.NewMemoryStore())
		require.NoError(t, kv.Set(ctx, "clients", "garbage"))
		kv.FailWrites(true)

		got, err := NewClientRepository(kv).Load(ctx)
		require.NoError(t, err)
		require.Empty(t, got)
	})
}

func TestCollection_FindUpsertRemove(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewItemRepository(kvstore.NewMemoryStore())

	_, found, err := repo.FindByID(ctx, "missing")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, repo.Upsert(ctx, models.Item{ID: "a", Name: "Logo Design"}))
	require.NoError(t, repo.Upsert(ctx, models.Item{ID: "b", Name: "Consultation"}))
	require.NoError(t, repo.Upsert(ctx, models.Item{ID: "a", Name: "Logo Redesign"}))

	items, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "Logo Redesign", items[0].Name, "upsert replaces in place")

	item, found, err := repo.FindByID(ctx, "b")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Consultation", item.Name)

	removed, err := repo.RemoveByID(ctx, "a")
	require.NoError(t, err)
	require.True(t, removed)
	removed, err = repo.RemoveByID(ctx, "a")
	require.NoError(t, err)
	require.False(t, removed)

	items, err = repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "b", items[0].ID)
	require.Equal(t, "Consultation", items[0].Name)
	require.True(t, items[0].Price.IsZero())
}

func TestPureHelpers(t *testing.T) {
	t.Parallel()

	base := []models.Client{{ID: "a"}, {ID: "b"}}
	require.Equal(t, 1, Index(base, "b"))
	require.Equal(t, -1, Index(base, "z"))

	found, ok := Find(base, "b")
	require.True(t, ok)
	require.Equal(t, "b", found.EntityID())
	_, ok = Find(base, "z")
	require.False(t, ok)

	next := Upsert(base, models.Client{ID: "a", Name: "changed"})
	require.Equal(t, "", base[0].Name, "input is not mutated")
	require.Equal(t, "changed", next[0].Name)

	next, removed := Remove(base, "a")
	require.True(t, removed)
	require.Equal(t, []models.Client{{ID: "b"}}, next)
	require.Len(t, base, 2)
}

func TestInvoiceRepository_SweepsOverdueOnLoad(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	repo := NewInvoiceRepository(kv, clock)

	invoices := []models.Invoice{
		{ID: "late", Status: models.InvoiceStatusSent, DueDate: fixedNow.AddDate(0, 0, -1)},
		{ID: "on-time", Status: models.InvoiceStatusSent, DueDate: fixedNow.AddDate(0, 0, 1)},
		{ID: "draft", Status: models.InvoiceStatusDraft, DueDate: fixedNow.AddDate(0, 0, -10)},
		{ID: "paid", Status: models.InvoiceStatusPaid, DueDate: fixedNow.AddDate(0, 0, -10)},
	}
	require.NoError(t, repo.SaveAll(ctx, invoices))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	statuses := map[string]models.InvoiceStatus{}
	for _, inv := range got {
		statuses[inv.ID] = inv.Status
	}
	require.Equal(t, map[string]models.InvoiceStatus{
		"late":    models.InvoiceStatusOverdue,
		"on-time": models.InvoiceStatusSent,
		"draft":   models.InvoiceStatusDraft,
		"paid":    models.InvoiceStatusPaid,
	}, statuses)
	require.True(t, fixedNow.Equal(got[0].UpdatedAt))

	raw, _ := stored(t, kv, "invoices")
	var persisted []models.Invoice
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	require.Equal(t, models.InvoiceStatusOverdue, persisted[0].Status, "correction is persisted")
}

func TestInvoiceRepository_SweepWithoutChangesDoesNotWrite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := kvstore.NewFaultyStore(kvstore.NewMemoryStore())
	repo := NewInvoiceRepository(kv, clock)
	require.NoError(t, repo.SaveAll(ctx, []models.Invoice{
		{ID: "a", Status: models.InvoiceStatusSent, DueDate: fixedNow.AddDate(0, 1, 0)},
	}))
	writes := kv.Writes()

	_, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, writes, kv.Writes())
}

func TestCollection_Repair(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       *string
		want        RepairOutcome
		wantCount   int
		wantDropped int
		wantValue   string
	}{
		{name: "valid", raw: ptr(`[{"id":"a"}]`), want: RepairValid, wantCount: 1, wantValue: `[{"id":"a"}]`},
		{name: "absent", raw: nil, want: RepairInitialized, wantValue: "[]"},
		{name: "blank", raw: ptr(""), want: RepairInitialized, wantValue: "[]"},
		{name: "salvageable", raw: ptr(`garbage [{"id":"a","name":"Acme"}] trailing`), want: RepairSalvaged, wantCount: 1, wantValue: `[{"id":"a","name":"Acme","email":""}]`},
		{name: "unsalvageable", raw: ptr(`{{{`), want: RepairReset, wantValue: "[]"},
		{name: "array with an invalid record", raw: ptr(`[{"id":"a"},{"name":"no id"}]`), want: RepairSalvaged, wantCount: 1, wantDropped: 1, wantValue: `[{"id":"a","name":"","email":""}]`},
		{name: "embedded array with bad elements", raw: ptr(`x[{"name":"no id"}]`), want: RepairSalvaged, wantDropped: 1, wantValue: "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			kv := kvstore.NewMemoryStore()
			if tt.raw != nil {
				require.NoError(t, kv.Set(ctx, "clients", *tt.raw))
			}

			result, err := NewClientRepository(kv).Repair(ctx)
			require.NoError(t, err)
			require.Equal(t, "clients", result.Key)
			require.Equal(t, tt.want, result.Outcome)
			require.Equal(t, tt.wantCount, result.Count)
			require.Equal(t, tt.wantDropped, result.Dropped)

			v, ok := stored(t, kv, "clients")
			require.True(t, ok)
			require.Equal(t, tt.wantValue, v)
		})
	}
}

func TestCollection_Inspect(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	repo := NewClientRepository(kv)

	report, err := repo.Inspect(ctx)
	require.NoError(t, err)
	require.Equal(t, KeyReport{Key: "clients"}, report)

	require.NoError(t, kv.Set(ctx, "clients", `[{"id":"a"},{"id":"b"}]`))
	report, err = repo.Inspect(ctx)
	require.NoError(t, err)
	require.True(t, report.Present)
	require.True(t, report.Valid)
	require.Equal(t, 2, report.Count)
	require.Equal(t, len(`[{"id":"a"},{"id":"b"}]`), report.Bytes)

	require.NoError(t, kv.Set(ctx, "clients", `[{"id":"a"},{"id":5}]`))
	report, err = repo.Inspect(ctx)
	require.NoError(t, err)
	require.False(t, report.Valid)
	require.Equal(t, 1, report.Count)
	require.Equal(t, 1, report.Invalid)

	require.NoError(t, kv.Set(ctx, "clients", "oops"))
	report, err = repo.Inspect(ctx)
	require.NoError(t, err)
	require.False(t, report.Valid)
	v, _ := stored(t, kv, "clients")
	require.Equal(t, "oops", v, "inspect does not modify")
}

func FuzzDecode(f *testing.F) {
	f.Add(`[]`)
	f.Add(`[{"id":"a","status":"draft"}]`)
	f.Add(`{"id":"a"}`)
	f.Add(`null`)
	f.Add(`[null]`)
	f.Add(`[{"id":"a","status":"sent","subtotal":"12.5","items":[{"id":"l","quantity":2,"rate":3}]}]`)

	f.Fuzz(func(t *testing.T, raw string) {
		items, _, err := decode[models.Invoice](raw)
		if err != nil {
			return
		}
		for _, inv := range items {
			if inv.Validate() != nil {
				t.Fatalf("decoded invalid invoice %+v", inv)
			}
		}
	})
}

func ptr(s string) *string { return &s }
