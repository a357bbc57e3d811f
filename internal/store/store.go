// Package store is the application-facing data layer. It composes the
// collection repositories, the query cache, the invoice number sequence and
// input validation behind one explicitly constructed Store.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/invoicekit/internal/cache"
	"gitlab.com/yelinaung/invoicekit/internal/kvstore"
	"gitlab.com/yelinaung/invoicekit/internal/lifecycle"
	"gitlab.com/yelinaung/invoicekit/internal/logger"
	"gitlab.com/yelinaung/invoicekit/internal/models"
	"gitlab.com/yelinaung/invoicekit/internal/repository"
	"gitlab.com/yelinaung/invoicekit/internal/sequence"
	"gitlab.com/yelinaung/invoicekit/internal/validation"
)

var (
	// ErrNotFound is returned when an id does not exist in its collection.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is matched by every validation failure.
	ErrInvalidInput = validation.ErrInvalidInput
)

// Defaults applied when Options leaves a field unset.
const (
	DefaultDueDays  = 30
	DefaultUpcoming = 10
)

// DefaultTaxRate is the tax percentage of new invoice drafts.
var DefaultTaxRate = decimal.NewFromInt(10)

// Options configures a Store. Zero values select the defaults.
type Options struct {
	Now            func() time.Time
	NewID          func() string
	CacheTTL       time.Duration
	DefaultTaxRate *decimal.Decimal
	DefaultDueDays int
	UpcomingLimit  int
}

// Store owns every persisted collection.
type Store struct {
	kv       kvstore.Store
	invoices *repository.InvoiceRepository
	clients  *repository.ClientRepository
	items    *repository.ItemRepository
	bookings *repository.BookingRepository
	expenses *repository.ExpenseRepository
	cache    *cache.QueryCache
	sequence *sequence.Generator

	now           func() time.Time
	newID         func() string
	taxRate       decimal.Decimal
	dueDays       int
	upcomingLimit int

	locks map[models.Kind]*sync.Mutex
}

// New creates a Store persisting through kv.
func New(kv kvstore.Store, opts Options) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.NewString() }
	}
	taxRate := DefaultTaxRate
	if opts.DefaultTaxRate != nil {
		taxRate = *opts.DefaultTaxRate
	}
	if opts.DefaultDueDays <= 0 {
		opts.DefaultDueDays = DefaultDueDays
	}
	if opts.UpcomingLimit <= 0 {
		opts.UpcomingLimit = DefaultUpcoming
	}

	locks := make(map[models.Kind]*sync.Mutex, len(models.AllKinds))
	for _, kind := range models.AllKinds {
		locks[kind] = &sync.Mutex{}
	}

	return &Store{
		kv:            kv,
		invoices:      repository.NewInvoiceRepository(kv, opts.Now),
		clients:       repository.NewClientRepository(kv),
		items:         repository.NewItemRepository(kv),
		bookings:      repository.NewBookingRepository(kv),
		expenses:      repository.NewExpenseRepository(kv),
		cache:         cache.New(opts.CacheTTL, opts.Now),
		sequence:      sequence.NewGenerator(kv, opts.Now),
		now:           opts.Now,
		newID:         opts.NewID,
		taxRate:       taxRate,
		dueDays:       opts.DefaultDueDays,
		upcomingLimit: opts.UpcomingLimit,
		locks:         locks,
	}
}

// fetch returns the current collection through the cache. A cached invoice
// list holding a sent invoice that has since passed its due date is reloaded,
// so the overdue sweep runs and is persisted.
func fetch[T repository.Entity](ctx context.Context, s *Store, repo *repository.Collection[T]) ([]T, error) {
	items, err := cache.Fetch(ctx, s.cache, repo.Kind(), repo.Load)
	if err != nil || !s.sweepDue(items) {
		return items, err
	}
	s.cache.Invalidate(repo.Kind())
	return cache.Fetch(ctx, s.cache, repo.Kind(), repo.Load)
}

func (s *Store) sweepDue(items any) bool {
	invoices, ok := items.([]models.Invoice)
	if !ok {
		return false
	}
	now := s.now()
	return slices.ContainsFunc(invoices, func(inv models.Invoice) bool {
		return lifecycle.IsOverdue(inv, now)
	})
}

// read is the public read path: storage failures degrade to an empty list.
func read[T repository.Entity](ctx context.Context, s *Store, repo *repository.Collection[T]) []T {
	items, err := fetch(ctx, s, repo)
	if err != nil {
		logger.WithComponent("store").Warn().
			Err(err).
			Str("kind", string(repo.Kind())).
			Msg("Failed to load collection, showing empty list")
		return []T{}
	}
	return slices.Clone(items)
}

// mutate runs a read-modify-overwrite of one collection under its kind lock.
// fn receives a copy of the current collection and returns the next one. The
// cache is invalidated only after the write succeeds.
func mutate[T repository.Entity](
	ctx context.Context,
	s *Store,
	repo *repository.Collection[T],
	fn func(current []T) ([]T, error),
) error {
	kind := repo.Kind()
	mu := s.locks[kind]
	mu.Lock()
	defer mu.Unlock()

	current, err := fetch(ctx, s, repo)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", kind, err)
	}

	next, err := fn(slices.Clone(current))
	if err != nil {
		return err
	}

	if err := repo.SaveAll(ctx, next); err != nil {
		return fmt.Errorf("failed to save %s: %w", kind, err)
	}
	s.cache.Invalidate(kind)
	return nil
}

func notFound(kind models.Kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}
