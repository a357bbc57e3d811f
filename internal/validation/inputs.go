package validation

import (
	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/invoicekit/internal/models"
)

// ClientInput is the editable part of a client.
type ClientInput struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Company string `json:"company"`
}

// ItemInput is the editable part of a catalog item.
type ItemInput struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
}

// LineInput is one invoice line.
type LineInput struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gte=0"`
	Rate        decimal.Decimal `json:"rate" validate:"gte=0"`
}

// InvoiceInput is the editable part of an invoice.
type InvoiceInput struct {
	ClientName string          `json:"clientName" validate:"required"`
	TaxRate    decimal.Decimal `json:"taxRate" validate:"gte=0"`
	Status     string          `json:"status" validate:"omitempty,oneof=draft sent paid overdue"`
	Items      []LineInput     `json:"items" validate:"dive"`
}

// BookingInput is the editable part of a booking.
type BookingInput struct {
	ClientID string `json:"clientId" validate:"required"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Time     string `json:"time" validate:"required,datetime=15:04"`
	Duration int    `json:"duration" validate:"gte=0"`
	Status   string `json:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
}

// ExpenseInput is the editable part of an expense.
type ExpenseInput struct {
	Date          string          `json:"date" validate:"required,datetime=2006-01-02"`
	Merchant      string          `json:"merchant" validate:"required"`
	Category      string          `json:"category" validate:"required,oneof=office_supplies travel meals equipment utilities marketing professional_services insurance rent other"`
	PaymentMethod string          `json:"paymentMethod" validate:"omitempty,oneof=cash credit_card debit_card bank_transfer check other"`
	Subtotal      decimal.Decimal `json:"subtotal" validate:"gte=0"`
	Tax           decimal.Decimal `json:"tax" validate:"gte=0"`
	Total         decimal.Decimal `json:"total" validate:"gte=0"`
}

// Client validates the editable fields of c.
func Client(c models.Client) error {
	return Struct(ClientInput{
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		Address: c.Address,
		Company: c.Company,
	})
}

// Item validates the editable fields of i.
func Item(i models.Item) error {
	return Struct(ItemInput{Name: i.Name, Description: i.Description, Price: i.Price})
}

// Invoice validates the editable fields of inv.
func Invoice(inv models.Invoice) error {
	in := InvoiceInput{
		ClientName: inv.Client.Name,
		TaxRate:    inv.TaxRate,
		Status:     string(inv.Status),
		Items:      make([]LineInput, len(inv.Items)),
	}
	for i, li := range inv.Items {
		in.Items[i] = LineInput{Description: li.Description, Quantity: li.Quantity, Rate: li.Rate}
	}
	return Struct(in)
}

// Booking validates the editable fields of b.
func Booking(b models.Booking) error {
	return Struct(BookingInput{
		ClientID: b.ClientID,
		Date:     b.Date,
		Time:     b.Time,
		Duration: b.Duration,
		Status:   string(b.Status),
	})
}

// Expense validates the editable fields of e.
func Expense(e models.Expense) error {
	return Struct(ExpenseInput{
		Date:          e.Date,
		Merchant:      e.Merchant,
		Category:      string(e.Category),
		PaymentMethod: string(e.PaymentMethod),
		Subtotal:      e.Subtotal,
		Tax:           e.Tax,
		Total:         e.Total,
	})
}
