package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/invoicekit/internal/logger"
	"gitlab.com/yelinaung/invoicekit/internal/models"
	"gitlab.com/yelinaung/invoicekit/internal/repository"
)

type maintainer interface {
	Kind() models.Kind
	Repair(ctx context.Context) (repository.RepairResult, error)
	Inspect(ctx context.Context) (repository.KeyReport, error)
}

func (s *Store) maintainers() []maintainer {
	return []maintainer{s.invoices, s.clients, s.items, s.bookings, s.expenses}
}

// Recover repairs every stored collection: valid data is kept, blank keys are
// initialised, corrupted data is salvaged when it embeds a readable array and
// reset otherwise.
func (s *Store) Recover(ctx context.Context) ([]repository.RepairResult, error) {
	results := make([]repository.RepairResult, 0, len(models.AllKinds))
	for _, m := range s.maintainers() {
		result, err := s.repairLocked(ctx, m)
		if err != nil {
			return results, fmt.Errorf("failed to repair %s: %w", m.Kind(), err)
		}
		results = append(results, result)
	}

	logger.WithComponent("store").Info().Int("collections", len(results)).Msg("Recovery complete")
	return results, nil
}

func (s *Store) repairLocked(ctx context.Context, m maintainer) (repository.RepairResult, error) {
	mu := s.locks[m.Kind()]
	mu.Lock()
	defer mu.Unlock()
	defer s.cache.Invalidate(m.Kind())
	return m.Repair(ctx)
}

// Reset deletes every collection and the invoice counter.
func (s *Store) Reset(ctx context.Context) error {
	for _, kind := range models.AllKinds {
		s.locks[kind].Lock()
		defer s.locks[kind].Unlock()
	}
	defer s.cache.InvalidateAll()

	if err := s.kv.RemoveMany(context.WithoutCancel(ctx), models.AllStorageKeys()); err != nil {
		return fmt.Errorf("failed to reset store: %w", err)
	}
	logger.WithComponent("store").Warn().Msg("All stored data removed")
	return nil
}

// Inspect reports the raw state of every key the store owns, the invoice
// counter last.
func (s *Store) Inspect(ctx context.Context) ([]repository.KeyReport, error) {
	reports := make([]repository.KeyReport, 0, len(models.AllKinds)+1)
	for _, m := range s.maintainers() {
		report, err := m.Inspect(ctx)
		if err != nil {
			return reports, fmt.Errorf("failed to inspect %s: %w", m.Kind(), err)
		}
		reports = append(reports, report)
	}

	raw, ok, err := s.kv.Get(ctx, models.LastInvoiceNumberKey)
	if err != nil {
		return reports, fmt.Errorf("failed to inspect %s: %w", models.LastInvoiceNumberKey, err)
	}
	counter := repository.KeyReport{Key: models.LastInvoiceNumberKey, Present: ok}
	if ok {
		counter.Bytes = len(raw)
		counter.Preview = raw
		n, convErr := strconv.Atoi(strings.TrimSpace(raw))
		counter.Valid = convErr == nil && n >= 0
		counter.Count = n
	}
	return append(reports, counter), nil
}

// Sample catalog added by SeedSampleData.
var (
	SampleClients = []models.Client{
		{
			ID:      "client-1",
			Name:    "John Smith",
			Email:   "john@example.com",
			Phone:   "+1 234 567 8900",
			Company: "Tech Solutions Inc.",
			Address: "123 Main St, New York, NY 10001",
		},
		{
			ID:      "client-2",
			Name:    "Sarah Johnson",
			Email:   "sarah@example.com",
			Phone:   "+1 234 567 8901",
			Company: "Creative Agency",
			Address: "456 Oak Ave, Los Angeles, CA 90001",
		},
	}
	SampleItems = []models.Item{
		{Name: "Web Development", Description: "Custom website development", Price: decimal.NewFromInt(2500)},
		{Name: "Logo Design", Description: "Professional logo design package", Price: decimal.NewFromInt(500)},
		{Name: "Consultation", Description: "Hourly consultation rate", Price: decimal.NewFromInt(150)},
	}
)

// SeedSampleData saves the sample clients and adds the sample items. Clients
// are replaced by id; items are appended each time.
func (s *Store) SeedSampleData(ctx context.Context) error {
	for _, c := range SampleClients {
		if _, err := s.SaveClient(ctx, c); err != nil {
			return fmt.Errorf("failed to seed client %s: %w", c.ID, err)
		}
	}
	for _, item := range SampleItems {
		if _, err := s.AddItem(ctx, item); err != nil {
			return fmt.Errorf("failed to seed item %s: %w", item.Name, err)
		}
	}
	return nil
}
