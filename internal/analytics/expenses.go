package analytics

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/invoicekit/internal/models"
)

// ExpenseSummary holds running totals over an expense collection.
type ExpenseSummary struct {
	TotalExpenses     decimal.Decimal                            `json:"totalExpenses"`
	TotalTax          decimal.Decimal                            `json:"totalTax"`
	ByCategory        map[models.ExpenseCategory]decimal.Decimal `json:"byCategory"`
	CurrentMonth      []models.Expense                           `json:"currentMonth"`
	CurrentMonthTotal decimal.Decimal                            `json:"currentMonthTotal"`
}

// SummarizeExpenses totals expenses overall and per category, and collects the
// expenses dated in the calendar month of now.
func SummarizeExpenses(expenses []models.Expense, now time.Time) ExpenseSummary {
	summary := ExpenseSummary{
		ByCategory:   make(map[models.ExpenseCategory]decimal.Decimal),
		CurrentMonth: []models.Expense{},
	}

	for _, e := range expenses {
		summary.TotalExpenses = summary.TotalExpenses.Add(e.Total)
		summary.TotalTax = summary.TotalTax.Add(e.Tax)
		summary.ByCategory[e.Category] = summary.ByCategory[e.Category].Add(e.Total)

		day, ok := models.ParseDay(e.Date, now.Location())
		if ok && day.Year() == now.Year() && day.Month() == now.Month() {
			summary.CurrentMonth = append(summary.CurrentMonth, e)
			summary.CurrentMonthTotal = summary.CurrentMonthTotal.Add(e.Total)
		}
	}
	return summary
}

// CategoryTotal is the spend recorded under one category.
type CategoryTotal struct {
	Category models.ExpenseCategory `json:"category"`
	Label    string                 `json:"label"`
	Total    decimal.Decimal        `json:"total"`
	Count    int                    `json:"count"`
}

// ExpensesByCategory groups expenses by category, largest total first.
// Categories with equal totals keep the order they were first seen in.
func ExpensesByCategory(expenses []models.Expense) []CategoryTotal {
	var out []CategoryTotal
	index := make(map[models.ExpenseCategory]int)
	for _, e := range expenses {
		i, ok := index[e.Category]
		if !ok {
			i = len(out)
			index[e.Category] = i
			out = append(out, CategoryTotal{Category: e.Category, Label: e.Category.Label()})
		}
		out[i].Total = out[i].Total.Add(e.Total)
		out[i].Count++
	}

	slices.SortStableFunc(out, func(a, b CategoryTotal) int {
		return b.Total.Cmp(a.Total)
	})
	return out
}
