package store

import (
	"context"
	"slices"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/invoicekit/internal/analytics"
	"gitlab.com/yelinaung/invoicekit/internal/lifecycle"
	"gitlab.com/yelinaung/invoicekit/internal/logger"
	"gitlab.com/yelinaung/invoicekit/internal/models"
	"gitlab.com/yelinaung/invoicekit/internal/repository"
	"gitlab.com/yelinaung/invoicekit/internal/validation"
)

// LoadInvoices returns every invoice. Sent invoices past their due date are
// already marked overdue.
func (s *Store) LoadInvoices(ctx context.Context) []models.Invoice {
	return read(ctx, s, s.invoices)
}

// Invoice returns the invoice with id.
func (s *Store) Invoice(ctx context.Context, id string) (models.Invoice, error) {
	inv, ok := repository.Find(s.LoadInvoices(ctx), id)
	if !ok {
		return models.Invoice{}, notFound(models.KindInvoices, id)
	}
	return inv, nil
}

// FilteredInvoices applies filter to the current invoices, newest first.
func (s *Store) FilteredInvoices(ctx context.Context, filter analytics.InvoiceFilter) []models.Invoice {
	return analytics.FilterInvoices(s.LoadInvoices(ctx), filter)
}

// Statistics summarises every invoice.
func (s *Store) Statistics(ctx context.Context) analytics.Statistics {
	return analytics.ComputeStatistics(s.LoadInvoices(ctx))
}

// PeriodReport summarises invoices issued within period.
func (s *Store) PeriodReport(ctx context.Context, period analytics.Period) analytics.PeriodReport {
	return analytics.ComputePeriod(s.LoadInvoices(ctx), period, s.now())
}

// MonthlyRevenue returns paid revenue for the last six calendar months.
func (s *Store) MonthlyRevenue(ctx context.Context) []analytics.MonthRevenue {
	return analytics.MonthlyRevenue(s.LoadInvoices(ctx), s.now())
}

// GetNextInvoiceNumber consumes and returns the next invoice number.
func (s *Store) GetNextInvoiceNumber(ctx context.Context) string {
	return s.sequence.Next(ctx)
}

// SaveInvoice creates or replaces an invoice and returns what was stored.
//
// Line amounts and totals are recomputed from the lines and tax rate. A
// missing id or invoice number is assigned. Replacing an invoice keeps its
// creation time and routes a status change through the lifecycle rules; a
// new invoice starts as draft and then moves to the requested status. A
// number is drawn only once the invoice has passed validation and the
// lifecycle check; a failed write still leaves a gap in the sequence.
func (s *Store) SaveInvoice(ctx context.Context, inv models.Invoice) (models.Invoice, error) {
	if err := validation.Invoice(inv); err != nil {
		return models.Invoice{}, err
	}

	var saved models.Invoice
	err := mutate(ctx, s, s.invoices, func(invoices []models.Invoice) ([]models.Invoice, error) {
		now := s.now()
		requested := inv.Status

		if inv.ID == "" {
			inv.ID = s.newID()
		}
		inv.Items = slices.Clone(inv.Items)
		for i := range inv.Items {
			if inv.Items[i].ID == "" {
				inv.Items[i].ID = s.newID()
			}
		}

		if i := repository.Index(invoices, inv.ID); i >= 0 {
			existing := invoices[i]
			inv.CreatedAt = existing.CreatedAt
			inv.Status = existing.Status
			inv.SentAt = existing.SentAt
			inv.PaidAt = existing.PaidAt
		} else {
			inv.CreatedAt = now
			inv.Status = models.InvoiceStatusDraft
			inv.SentAt = nil
			inv.PaidAt = nil
			if inv.IssueDate.IsZero() {
				inv.IssueDate = now
			}
			if inv.DueDate.IsZero() {
				inv.DueDate = inv.IssueDate.AddDate(0, 0, s.dueDays)
			}
		}

		if requested != "" && requested != inv.Status {
			if err := lifecycle.Transition(&inv, requested, now); err != nil {
				return nil, err
			}
		}
		if inv.InvoiceNumber == "" {
			inv.InvoiceNumber = s.sequence.Next(ctx)
		}
		inv.Recalculate()
		inv.UpdatedAt = now

		saved = inv
		return repository.Upsert(invoices, inv), nil
	})
	if err != nil {
		return models.Invoice{}, err
	}

	logger.WithComponent("store").Info().
		Str("invoice_id", logger.HashID(saved.ID)).
		Str("status", string(saved.Status)).
		Msg("Invoice saved")
	return saved, nil
}

// DeleteInvoice removes the invoice with id.
func (s *Store) DeleteInvoice(ctx context.Context, id string) error {
	return mutate(ctx, s, s.invoices, func(invoices []models.Invoice) ([]models.Invoice, error) {
		next, removed := repository.Remove(invoices, id)
		if !removed {
			return nil, notFound(models.KindInvoices, id)
		}
		return next, nil
	})
}

// UpdateInvoiceStatus moves the invoice with id to status.
func (s *Store) UpdateInvoiceStatus(ctx context.Context, id string, status models.InvoiceStatus) (models.Invoice, error) {
	return s.updateInvoice(ctx, id, func(inv *models.Invoice) error {
		return lifecycle.Transition(inv, status, s.now())
	})
}

// AddAttachment appends a to the invoice with id and returns it with its id
// and upload time filled in.
func (s *Store) AddAttachment(ctx context.Context, invoiceID string, a models.Attachment) (models.Attachment, error) {
	if a.ID == "" {
		a.ID = s.newID()
	}
	if a.UploadedAt.IsZero() {
		a.UploadedAt = s.now()
	}
	_, err := s.updateInvoice(ctx, invoiceID, func(inv *models.Invoice) error {
		inv.Attachments = append(slices.Clone(inv.Attachments), a)
		inv.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return models.Attachment{}, err
	}
	return a, nil
}

// RemoveAttachment removes one attachment from the invoice with invoiceID.
func (s *Store) RemoveAttachment(ctx context.Context, invoiceID, attachmentID string) error {
	_, err := s.updateInvoice(ctx, invoiceID, func(inv *models.Invoice) error {
		i := slices.IndexFunc(inv.Attachments, func(a models.Attachment) bool { return a.ID == attachmentID })
		if i < 0 {
			return notFound("attachments", attachmentID)
		}
		inv.Attachments = slices.Delete(slices.Clone(inv.Attachments), i, i+1)
		inv.UpdatedAt = s.now()
		return nil
	})
	return err
}

func (s *Store) updateInvoice(ctx context.Context, id string, fn func(inv *models.Invoice) error) (models.Invoice, error) {
	var updated models.Invoice
	err := mutate(ctx, s, s.invoices, func(invoices []models.Invoice) ([]models.Invoice, error) {
		i := repository.Index(invoices, id)
		if i < 0 {
			return nil, notFound(models.KindInvoices, id)
		}
		inv := invoices[i]
		if err := fn(&inv); err != nil {
			return nil, err
		}
		invoices[i] = inv
		updated = inv
		return invoices, nil
	})
	if err != nil {
		return models.Invoice{}, err
	}
	return updated, nil
}

// NewInvoiceDraft builds an unsaved draft for client with the given lines. It
// consumes the next invoice number and applies the default tax rate and
// payment term.
func (s *Store) NewInvoiceDraft(ctx context.Context, client models.Client, lines []models.InvoiceItem) models.Invoice {
	now := s.now()
	inv := models.Invoice{
		InvoiceNumber: s.GetNextInvoiceNumber(ctx),
		Client:        client,
		Items:         slices.Clone(lines),
		TaxRate:       s.taxRate,
		Status:        models.InvoiceStatusDraft,
		IssueDate:     now,
		DueDate:       now.AddDate(0, 0, s.dueDays),
	}
	inv.Recalculate()
	return inv
}

// InvoiceItemFromCatalog builds an invoice line from catalog item itemID.
func (s *Store) InvoiceItemFromCatalog(ctx context.Context, itemID string, quantity decimal.Decimal) (models.InvoiceItem, error) {
	item, ok := repository.Find(s.LoadItems(ctx), itemID)
	if !ok {
		return models.InvoiceItem{}, notFound(models.KindItems, itemID)
	}
	return models.NewInvoiceItem(s.newID(), item.Name, quantity, item.Price), nil
}

// ClientByID returns the client with id.
func (s *Store) ClientByID(ctx context.Context, id string) (models.Client, error) {
	client, ok := repository.Find(s.LoadClients(ctx), id)
	if !ok {
		return models.Client{}, notFound(models.KindClients, id)
	}
	return client, nil
}

// TaxRate returns the tax percentage applied to new drafts.
func (s *Store) TaxRate() decimal.Decimal {
	return s.taxRate
}
