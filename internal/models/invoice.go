package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

// Invoice statuses.
const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// InvoiceStatuses lists every status in display order.
var InvoiceStatuses = []InvoiceStatus{
	InvoiceStatusDraft,
	InvoiceStatusSent,
	InvoiceStatusPaid,
	InvoiceStatusOverdue,
}

// Valid reports whether s is a known status.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

var hundred = decimal.NewFromInt(100)

// InvoiceItem is a line on an invoice. Amount always equals Quantity * Rate.
// Quantities may be fractional, such as 1.5 hours.
type InvoiceItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// NewInvoiceItem builds a line with its amount already computed.
func NewInvoiceItem(id, description string, quantity, rate decimal.Decimal) InvoiceItem {
	li := InvoiceItem{ID: id, Description: description, Quantity: quantity, Rate: rate}
	li.Recalculate()
	return li
}

// SetQuantity updates the quantity and recomputes the amount.
func (li *InvoiceItem) SetQuantity(quantity decimal.Decimal) {
	li.Quantity = quantity
	li.Recalculate()
}

// SetRate updates the rate and recomputes the amount.
func (li *InvoiceItem) SetRate(rate decimal.Decimal) {
	li.Rate = rate
	li.Recalculate()
}

// Recalculate sets Amount to Quantity * Rate.
func (li *InvoiceItem) Recalculate() {
	li.Amount = li.Rate.Mul(li.Quantity)
}

// Attachment is a file reference attached to an invoice. The URI points into
// device storage that this package does not own.
type Attachment struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	URI        string    `json:"uri"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Invoice is a bill issued to a client. Client is a snapshot taken when the
// invoice was written, not a live reference.
type Invoice struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoiceNumber"`
	Client        Client          `json:"client"`
	Items         []InvoiceItem   `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	TaxRate       decimal.Decimal `json:"taxRate"`
	Total         decimal.Decimal `json:"total"`
	Status        InvoiceStatus   `json:"status"`
	IssueDate     time.Time       `json:"issueDate"`
	DueDate       time.Time       `json:"dueDate"`
	Notes         string          `json:"notes,omitempty"`
	Attachments   []Attachment    `json:"attachments,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	SentAt        *time.Time      `json:"sentAt,omitempty"`
	PaidAt        *time.Time      `json:"paidAt,omitempty"`
}

// EntityID implements repository.Entity.
func (inv Invoice) EntityID() string { return inv.ID }

// Validate checks the persisted shape of an invoice.
func (inv Invoice) Validate() error {
	if strings.TrimSpace(inv.ID) == "" {
		return fmt.Errorf("%w: invoice without id", ErrInvalidEntity)
	}
	if !inv.Status.Valid() {
		return fmt.Errorf("%w: invoice %s has unknown status %q", ErrInvalidEntity, inv.ID, inv.Status)
	}
	return nil
}

// Recalculate recomputes every line amount and the subtotal, tax and total.
func (inv *Invoice) Recalculate() {
	subtotal := decimal.Zero
	for i := range inv.Items {
		inv.Items[i].Recalculate()
		subtotal = subtotal.Add(inv.Items[i].Amount)
	}
	inv.Subtotal = subtotal
	inv.Tax = subtotal.Mul(inv.TaxRate).Div(hundred)
	inv.Total = inv.Subtotal.Add(inv.Tax)
}
