package repository

import (
	"time"

	"gitlab.com/yelinaung/invoicekit/internal/kvstore"
	"gitlab.com/yelinaung/invoicekit/internal/lifecycle"
	"gitlab.com/yelinaung/invoicekit/internal/models"
)

// Typed repositories for each collection kind.
type (
	InvoiceRepository = Collection[models.Invoice]
	ClientRepository  = Collection[models.Client]
	ItemRepository    = Collection[models.Item]
	BookingRepository = Collection[models.Booking]
	ExpenseRepository = Collection[models.Expense]
)

// NewInvoiceRepository creates the invoice repository. Every load marks sent
// invoices past their due date as overdue and persists the change.
func NewInvoiceRepository(kv kvstore.Store, now func() time.Time) *InvoiceRepository {
	if now == nil {
		now = time.Now
	}
	r := NewCollection[models.Invoice](kv, models.KindInvoices)
	r.afterLoad = func(invoices []models.Invoice) bool {
		return lifecycle.SweepOverdue(invoices, now())
	}
	return r
}

// NewClientRepository creates the client repository.
func NewClientRepository(kv kvstore.Store) *ClientRepository {
	return NewCollection[models.Client](kv, models.KindClients)
}

// NewItemRepository creates the catalog item repository.
func NewItemRepository(kv kvstore.Store) *ItemRepository {
	return NewCollection[models.Item](kv, models.KindItems)
}

// NewBookingRepository creates the booking repository.
func NewBookingRepository(kv kvstore.Store) *BookingRepository {
	return NewCollection[models.Booking](kv, models.KindBookings)
}

// NewExpenseRepository creates the expense repository.
func NewExpenseRepository(kv kvstore.Store) *ExpenseRepository {
	return NewCollection[models.Expense](kv, models.KindExpenses)
}
