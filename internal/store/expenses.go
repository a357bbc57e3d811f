package store

import (
	"context"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/invoicekit/internal/analytics"
	"gitlab.com/yelinaung/invoicekit/internal/models"
	"gitlab.com/yelinaung/invoicekit/internal/repository"
	"gitlab.com/yelinaung/invoicekit/internal/validation"
)

// LoadExpenses returns every expense.
func (s *Store) LoadExpenses(ctx context.Context) []models.Expense {
	return read(ctx, s, s.expenses)
}

// Expense returns the expense with id.
func (s *Store) Expense(ctx context.Context, id string) (models.Expense, error) {
	expense, ok := repository.Find(s.LoadExpenses(ctx), id)
	if !ok {
		return models.Expense{}, notFound(models.KindExpenses, id)
	}
	return expense, nil
}

// ExpenseSummary totals every expense and collects the current month.
func (s *Store) ExpenseSummary(ctx context.Context) analytics.ExpenseSummary {
	return analytics.SummarizeExpenses(s.LoadExpenses(ctx), s.now())
}

// ExpensesByCategory groups every expense by category, largest first.
func (s *Store) ExpensesByCategory(ctx context.Context) []analytics.CategoryTotal {
	return analytics.ExpensesByCategory(s.LoadExpenses(ctx))
}

// AddExpense stores a new expense. Subtotal, tax and total are kept as given.
func (s *Store) AddExpense(ctx context.Context, e models.Expense) (models.Expense, error) {
	if err := validation.Expense(e); err != nil {
		return models.Expense{}, err
	}
	now := s.now()
	e.ID = s.newID()
	e.CreatedAt = now
	e.UpdatedAt = now

	err := mutate(ctx, s, s.expenses, func(expenses []models.Expense) ([]models.Expense, error) {
		return append(expenses, e), nil
	})
	if err != nil {
		return models.Expense{}, err
	}
	return e, nil
}

// ExpensePatch lists the expense fields to change. Nil fields are left as
// they are.
type ExpensePatch struct {
	Date          *string
	Merchant      *string
	Category      *models.ExpenseCategory
	Description   *string
	Subtotal      *decimal.Decimal
	Tax           *decimal.Decimal
	Total         *decimal.Decimal
	ReceiptURI    *string
	PaymentMethod *models.PaymentMethod
	Notes         *string
}

func (p ExpensePatch) apply(e *models.Expense) {
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Merchant != nil {
		e.Merchant = *p.Merchant
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Subtotal != nil {
		e.Subtotal = *p.Subtotal
	}
	if p.Tax != nil {
		e.Tax = *p.Tax
	}
	if p.Total != nil {
		e.Total = *p.Total
	}
	if p.ReceiptURI != nil {
		e.ReceiptURI = *p.ReceiptURI
	}
	if p.PaymentMethod != nil {
		e.PaymentMethod = *p.PaymentMethod
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
}

// UpdateExpense applies patch to the expense with id.
func (s *Store) UpdateExpense(ctx context.Context, id string, patch ExpensePatch) (models.Expense, error) {
	var updated models.Expense
	err := mutate(ctx, s, s.expenses, func(expenses []models.Expense) ([]models.Expense, error) {
		i := repository.Index(expenses, id)
		if i < 0 {
			return nil, notFound(models.KindExpenses, id)
		}
		e := expenses[i]
		patch.apply(&e)
		if err := validation.Expense(e); err != nil {
			return nil, err
		}
		e.UpdatedAt = s.now()
		expenses[i] = e
		updated = e
		return expenses, nil
	})
	if err != nil {
		return models.Expense{}, err
	}
	return updated, nil
}

// DeleteExpense removes the expense with id.
func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	return mutate(ctx, s, s.expenses, func(expenses []models.Expense) ([]models.Expense, error) {
		next, removed := repository.Remove(expenses, id)
		if !removed {
			return nil, notFound(models.KindExpenses, id)
		}
		return next, nil
	})
}
