// Package lifecycle enforces the invoice status state machine.
//
//	draft ──▶ sent ──▶ paid
//	  │        │        ▲
//	  │        ▼        │
//	  │     overdue ────┘
//	  └────────────────▶ paid
//
// sent → overdue happens only through SweepOverdue, when invoices are loaded.
// Nothing moves an invoice back to draft and nothing leaves overdue on its own.
package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"gitlab.com/yelinaung/invoicekit/internal/models"
)

// ErrInvalidTransition is returned for status changes the state machine forbids.
var ErrInvalidTransition = errors.New("invalid invoice status transition")

var allowed = map[models.InvoiceStatus][]models.InvoiceStatus{
	models.InvoiceStatusDraft:   {models.InvoiceStatusDraft, models.InvoiceStatusSent, models.InvoiceStatusPaid},
	models.InvoiceStatusSent:    {models.InvoiceStatusSent, models.InvoiceStatusPaid, models.InvoiceStatusOverdue},
	models.InvoiceStatusOverdue: {models.InvoiceStatusOverdue, models.InvoiceStatusPaid},
	models.InvoiceStatusPaid:    {models.InvoiceStatusPaid},
}

// CanTransition reports whether from → to is permitted.
func CanTransition(from, to models.InvoiceStatus) bool {
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition moves inv to status to and applies the side effects: sentAt is
// set the first time the invoice is sent, paidAt is set every time it is
// marked paid, and updatedAt is always refreshed.
func Transition(inv *models.Invoice, to models.InvoiceStatus, now time.Time) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	from := inv.Status
	if from == "" {
		from = models.InvoiceStatusDraft
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	inv.Status = to
	inv.UpdatedAt = now
	switch to {
	case models.InvoiceStatusSent:
		if inv.SentAt == nil {
			sentAt := now
			inv.SentAt = &sentAt
		}
	case models.InvoiceStatusPaid:
		paidAt := now
		inv.PaidAt = &paidAt
	}
	return nil
}

// IsOverdue reports whether a sent invoice is past its due date.
func IsOverdue(inv models.Invoice, now time.Time) bool {
	return inv.Status == models.InvoiceStatusSent && inv.DueDate.Before(now)
}

// SweepOverdue marks every sent invoice whose due date has passed as overdue,
// in place. It reports whether anything changed.
func SweepOverdue(invoices []models.Invoice, now time.Time) bool {
	changed := false
	for i := range invoices {
		if IsOverdue(invoices[i], now) {
			invoices[i].Status = models.InvoiceStatusOverdue
			invoices[i].UpdatedAt = now
			changed = true
		}
	}
	return changed
}
