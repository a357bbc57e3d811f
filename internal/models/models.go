// Package models defines the domain entities persisted by the invoicing store.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts persist as JSON numbers. Quoted amounts still decode.
	decimal.MarshalJSONWithoutQuotes = true
}

// Kind identifies a persisted collection. The storage key of a collection is
// the kind's name.
type Kind string

// Collection kinds.
const (
	KindInvoices Kind = "invoices"
	KindClients  Kind = "clients"
	KindItems    Kind = "items"
	KindBookings Kind = "bookings"
	KindExpenses Kind = "expenses"
)

// LastInvoiceNumberKey stores the invoice sequence counter.
const LastInvoiceNumberKey = "lastInvoiceNumber"

// AllKinds lists every collection kind in a stable order.
var AllKinds = []Kind{KindInvoices, KindClients, KindItems, KindBookings, KindExpenses}

// StorageKey returns the durable store key backing the collection.
func (k Kind) StorageKey() string {
	return string(k)
}

// AllStorageKeys returns every key owned by the store, including the counter.
func AllStorageKeys() []string {
	keys := make([]string, 0, len(AllKinds)+1)
	for _, k := range AllKinds {
		keys = append(keys, k.StorageKey())
	}
	return append(keys, LastInvoiceNumberKey)
}

// ErrInvalidEntity is returned by Validate when a decoded record does not match
// the persisted schema.
var ErrInvalidEntity = errors.New("invalid entity")

// DateLayout is the calendar date format used by bookings and expenses.
const DateLayout = "2006-01-02"

// TimeLayout is the local time-of-day format used by bookings.
const TimeLayout = "15:04"

// Client is a customer that invoices are issued to.
type Client struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Company string `json:"company,omitempty"`
}

// EntityID implements repository.Entity.
func (c Client) EntityID() string { return c.ID }

// Validate checks the persisted shape of a client.
func (c Client) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: client without id", ErrInvalidEntity)
	}
	return nil
}

// Item is a catalog entry that can be copied onto invoices.
type Item struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

// EntityID implements repository.Entity.
func (i Item) EntityID() string { return i.ID }

// Validate checks the persisted shape of an item.
func (i Item) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return fmt.Errorf("%w: item without id", ErrInvalidEntity)
	}
	return nil
}

// ParseDay parses a calendar date stored either as YYYY-MM-DD or as a full
// RFC 3339 instant. Bare dates are interpreted in loc.
func ParseDay(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(DateLayout, value, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.In(loc), true
	}
	return time.Time{}, false
}
