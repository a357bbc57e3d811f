// Package quickentry parses one-line expense notes such as
// "12.50 Lunch with client Meals" into an expense draft.
package quickentry

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/invoicekit/internal/models"
)

// Entry is a parsed expense note.
type Entry struct {
	Amount      decimal.Decimal
	Description string
	Category    models.ExpenseCategory
}

// amountRegex matches amounts like "5", "5.50", "5,50".
var amountRegex = regexp.MustCompile(`^(\d+(?:[.,]\d{1,2})?)`)

// Parse reads a leading positive amount followed by a description. A category
// value or label at the end of the description is split off; the longest such
// suffix wins. The second result is false when no amount leads the input.
func Parse(input string) (Entry, bool) {
	input = strings.TrimSpace(input)
	match := amountRegex.FindString(input)
	if match == "" {
		return Entry{}, false
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(match, ",", "."))
	if err != nil || !amount.IsPositive() {
		return Entry{}, false
	}

	rest := input[len(match):]
	if rest != "" && !startsWithSpace(rest) {
		return Entry{}, false
	}

	entry := Entry{Amount: amount, Description: strings.TrimSpace(rest)}
	entry.Description, entry.Category = splitCategory(entry.Description)
	return entry, true
}

func startsWithSpace(s string) bool {
	return strings.TrimLeft(s, " \t") != s
}

func splitCategory(desc string) (string, models.ExpenseCategory) {
	var (
		matched    models.ExpenseCategory
		matchedLen int
	)
	for _, ec := range models.ExpenseCategories {
		for _, name := range []string{ec.Label, string(ec.Value)} {
			if len(name) > len(desc) || len(name) <= matchedLen {
				continue
			}
			cut := len(desc) - len(name)
			if !strings.EqualFold(desc[cut:], name) {
				continue
			}
			// Only whole trailing words count as a category.
			if cut > 0 && desc[cut-1] != ' ' {
				continue
			}
			matched, matchedLen = ec.Value, len(name)
		}
	}

	if matched == "" {
		return desc, ""
	}
	return strings.TrimSpace(desc[:len(desc)-matchedLen]), matched
}

// Expense turns the entry into an expense draft dated on now's calendar day.
// The description doubles as the merchant; an unmatched category becomes
// other.
func (e Entry) Expense(now time.Time) models.Expense {
	category := e.Category
	if category == "" {
		category = models.CategoryOther
	}
	merchant := e.Description
	if merchant == "" {
		merchant = category.Label()
	}
	return models.Expense{
		Date:        now.Format(models.DateLayout),
		Merchant:    merchant,
		Category:    category,
		Description: e.Description,
		Subtotal:    e.Amount,
		Total:       e.Amount,
	}
}
