package models

import "strings"

// MatchExpenseCategory maps a loosely written category name onto the closed
// set. Matching tries, in order: exact value or label (case-insensitive), the
// shortest label containing the text, the longest label contained in the
// text, and finally any shared significant word.
func MatchExpenseCategory(suggested string) (ExpenseCategory, bool) {
	suggestedLower := strings.ToLower(strings.TrimSpace(suggested))
	if suggestedLower == "" {
		return "", false
	}

	for _, ec := range ExpenseCategories {
		if strings.EqualFold(string(ec.Value), suggestedLower) || strings.EqualFold(ec.Label, suggestedLower) {
			return ec.Value, true
		}
	}

	var best ExpenseCategory
	bestLen := 0
	for _, ec := range ExpenseCategories {
		if strings.Contains(strings.ToLower(ec.Label), suggestedLower) {
			if best == "" || len(ec.Label) < bestLen {
				best, bestLen = ec.Value, len(ec.Label)
			}
		}
	}
	if best != "" {
		return best, true
	}

	for _, ec := range ExpenseCategories {
		if strings.Contains(suggestedLower, strings.ToLower(ec.Label)) {
			if len(ec.Label) > bestLen {
				best, bestLen = ec.Value, len(ec.Label)
			}
		}
	}
	if best != "" {
		return best, true
	}

	suggestedWords := significantWords(suggestedLower)
	for _, ec := range ExpenseCategories {
		for _, cw := range significantWords(ec.Label + " " + string(ec.Value)) {
			for _, sw := range suggestedWords {
				if sw == cw {
					return ec.Value, true
				}
			}
		}
	}

	return "", false
}

func significantWords(s string) []string {
	s = strings.NewReplacer("-", " ", "/", " ", "&", " ", "_", " ").Replace(strings.ToLower(s))

	var significant []string
	for _, w := range strings.Fields(s) {
		switch w {
		case "and", "the", "for":
			continue
		}
		if len(w) >= 3 {
			significant = append(significant, w)
		}
	}
	return significant
}
