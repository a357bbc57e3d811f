package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseCategory is the closed set of expense categories.
type ExpenseCategory string

// Expense categories.
const (
	CategoryOfficeSupplies       ExpenseCategory = "office_supplies"
	CategoryTravel               ExpenseCategory = "travel"
	CategoryMeals                ExpenseCategory = "meals"
	CategoryEquipment            ExpenseCategory = "equipment"
	CategoryUtilities            ExpenseCategory = "utilities"
	CategoryMarketing            ExpenseCategory = "marketing"
	CategoryProfessionalServices ExpenseCategory = "professional_services"
	CategoryInsurance            ExpenseCategory = "insurance"
	CategoryRent                 ExpenseCategory = "rent"
	CategoryOther                ExpenseCategory = "other"
)

// ExpenseCategories lists every category with its display label.
var ExpenseCategories = []struct {
	Value ExpenseCategory
	Label string
}{
	{CategoryOfficeSupplies, "Office Supplies"},
	{CategoryTravel, "Travel"},
	{CategoryMeals, "Meals & Entertainment"},
	{CategoryEquipment, "Equipment"},
	{CategoryUtilities, "Utilities"},
	{CategoryMarketing, "Marketing & Advertising"},
	{CategoryProfessionalServices, "Professional Services"},
	{CategoryInsurance, "Insurance"},
	{CategoryRent, "Rent"},
	{CategoryOther, "Other"},
}

// Valid reports whether c is a known category.
func (c ExpenseCategory) Valid() bool {
	for _, ec := range ExpenseCategories {
		if ec.Value == c {
			return true
		}
	}
	return false
}

// Label returns the display label of the category.
func (c ExpenseCategory) Label() string {
	for _, ec := range ExpenseCategories {
		if ec.Value == c {
			return ec.Label
		}
	}
	return string(c)
}

// PaymentMethod is the closed set of ways an expense was paid.
type PaymentMethod string

// Payment methods.
const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentDebitCard    PaymentMethod = "debit_card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCheck        PaymentMethod = "check"
	PaymentOther        PaymentMethod = "other"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCreditCard, PaymentDebitCard, PaymentBankTransfer, PaymentCheck, PaymentOther:
		return true
	}
	return false
}

// Expense is a business cost. Subtotal, Tax and Total are supplied by the caller
// independently and are not reconciled against each other.
type Expense struct {
	ID            string          `json:"id"`
	Date          string          `json:"date"`
	Merchant      string          `json:"merchant"`
	Category      ExpenseCategory `json:"category"`
	Description   string          `json:"description"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	ReceiptURI    string          `json:"receiptUri,omitempty"`
	PaymentMethod PaymentMethod   `json:"paymentMethod,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// EntityID implements repository.Entity.
func (e Expense) EntityID() string { return e.ID }

// Validate checks the persisted shape of an expense.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("%w: expense without id", ErrInvalidEntity)
	}
	if !e.Category.Valid() {
		return fmt.Errorf("%w: expense %s has unknown category %q", ErrInvalidEntity, e.ID, e.Category)
	}
	if e.PaymentMethod != "" && !e.PaymentMethod.Valid() {
		return fmt.Errorf("%w: expense %s has unknown payment method %q", ErrInvalidEntity, e.ID, e.PaymentMethod)
	}
	return nil
}
