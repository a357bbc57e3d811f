// Package analytics computes derived views over loaded collections. Every
// function is pure: it reads its inputs and never mutates them.
package analytics

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/invoicekit/internal/models"
)

// StatusAll selects every status in an InvoiceFilter.
const StatusAll models.InvoiceStatus = "all"

// InvoiceFilter narrows an invoice list. An empty Status or StatusAll keeps
// every status; an empty Query keeps every invoice.
type InvoiceFilter struct {
	Status models.InvoiceStatus
	Query  string
}

// FilterInvoices applies f and orders the result newest first by creation
// time. Invoices created at the same instant keep their stored order.
func FilterInvoices(invoices []models.Invoice, f InvoiceFilter) []models.Invoice {
	query := strings.ToLower(strings.TrimSpace(f.Query))

	out := make([]models.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if f.Status != "" && f.Status != StatusAll && inv.Status != f.Status {
			continue
		}
		if query != "" && !matchesQuery(inv, query) {
			continue
		}
		out = append(out, inv)
	}

	slices.SortStableFunc(out, func(a, b models.Invoice) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

func matchesQuery(inv models.Invoice, query string) bool {
	return strings.Contains(strings.ToLower(inv.InvoiceNumber), query) ||
		strings.Contains(strings.ToLower(inv.Client.Name), query) ||
		strings.Contains(strings.ToLower(inv.Client.Company), query)
}

// Statistics are counts and revenue totals over a whole invoice collection.
type Statistics struct {
	Total          int             `json:"total"`
	Draft          int             `json:"draft"`
	Sent           int             `json:"sent"`
	Paid           int             `json:"paid"`
	Overdue        int             `json:"overdue"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	PendingRevenue decimal.Decimal `json:"pendingRevenue"`
}

// ComputeStatistics counts invoices by status. Revenue sums paid totals and
// pending revenue sums sent and overdue totals.
func ComputeStatistics(invoices []models.Invoice) Statistics {
	stats := Statistics{Total: len(invoices)}
	for _, inv := range invoices {
		switch inv.Status {
		case models.InvoiceStatusDraft:
			stats.Draft++
		case models.InvoiceStatusSent:
			stats.Sent++
			stats.PendingRevenue = stats.PendingRevenue.Add(inv.Total)
		case models.InvoiceStatusPaid:
			stats.Paid++
			stats.TotalRevenue = stats.TotalRevenue.Add(inv.Total)
		case models.InvoiceStatusOverdue:
			stats.Overdue++
			stats.PendingRevenue = stats.PendingRevenue.Add(inv.Total)
		}
	}
	return stats
}

// Period is a trailing analytics window ending now.
type Period string

// Analytics periods.
const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
	PeriodAll     Period = "all"
)

// Periods lists every period in display order.
var Periods = []Period{PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear, PeriodAll}

// ParsePeriod converts a period name.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Periods, p) {
		return p, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// Start returns the first instant of the window ending at now.
func (p Period) Start(now time.Time) time.Time {
	switch p {
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodMonth:
		return now.AddDate(0, -1, 0)
	case PeriodQuarter:
		return now.AddDate(0, -3, 0)
	case PeriodYear:
		return now.AddDate(-1, 0, 0)
	default:
		return time.Unix(0, 0).In(now.Location())
	}
}

// PeriodReport summarises invoices issued within one period window.
type PeriodReport struct {
	Period              Period          `json:"period"`
	Start               time.Time       `json:"start"`
	End                 time.Time       `json:"end"`
	Revenue             decimal.Decimal `json:"revenue"`
	PreviousRevenue     decimal.Decimal `json:"previousRevenue"`
	PaidCount           int             `json:"paidCount"`
	PendingCount        int             `json:"pendingCount"`
	OverdueCount        int             `json:"overdueCount"`
	AverageInvoiceValue decimal.Decimal `json:"averageInvoiceValue"`
	TopClient           string          `json:"topClient,omitempty"`
	Growth              decimal.Decimal `json:"growth"`
}

// ComputePeriod reports on invoices whose issue date lies in [start, now].
// Pending counts only sent invoices. Growth compares paid revenue with the
// window of equal length just before start, [start-len, start), and is zero
// when that window earned nothing.
func ComputePeriod(invoices []models.Invoice, period Period, now time.Time) PeriodReport {
	start := period.Start(now)
	report := PeriodReport{Period: period, Start: start, End: now}

	var paid []models.Invoice
	for _, inv := range invoices {
		if inv.IssueDate.Before(start) || inv.IssueDate.After(now) {
			continue
		}
		switch inv.Status {
		case models.InvoiceStatusPaid:
			paid = append(paid, inv)
			report.Revenue = report.Revenue.Add(inv.Total)
		case models.InvoiceStatusSent:
			report.PendingCount++
		case models.InvoiceStatusOverdue:
			report.OverdueCount++
		}
	}
	report.PaidCount = len(paid)

	if len(paid) > 0 {
		report.AverageInvoiceValue = report.Revenue.Div(decimal.NewFromInt(int64(len(paid))))
	}
	report.TopClient = topClient(RevenueByClient(paid))

	prevStart := start.Add(-now.Sub(start))
	for _, inv := range invoices {
		if inv.Status != models.InvoiceStatusPaid {
			continue
		}
		if !inv.IssueDate.Before(prevStart) && inv.IssueDate.Before(start) {
			report.PreviousRevenue = report.PreviousRevenue.Add(inv.Total)
		}
	}
	if report.PreviousRevenue.IsPositive() {
		report.Growth = report.Revenue.Sub(report.PreviousRevenue).
			Div(report.PreviousRevenue).
			Mul(decimal.NewFromInt(100))
	}
	return report
}

// ClientRevenue is paid revenue attributed to one client name.
type ClientRevenue struct {
	Name    string          `json:"name"`
	Revenue decimal.Decimal `json:"revenue"`
}

// RevenueByClient sums paid totals per client name, in the order each name is
// first seen.
func RevenueByClient(invoices []models.Invoice) []ClientRevenue {
	var out []ClientRevenue
	index := make(map[string]int)
	for _, inv := range invoices {
		if inv.Status != models.InvoiceStatusPaid {
			continue
		}
		i, ok := index[inv.Client.Name]
		if !ok {
			i = len(out)
			index[inv.Client.Name] = i
			out = append(out, ClientRevenue{Name: inv.Client.Name})
		}
		out[i].Revenue = out[i].Revenue.Add(inv.Total)
	}
	return out
}

func topClient(revenues []ClientRevenue) string {
	var (
		best    string
		bestRev decimal.Decimal
	)
	for i, cr := range revenues {
		if i == 0 || cr.Revenue.GreaterThan(bestRev) {
			best, bestRev = cr.Name, cr.Revenue
		}
	}
	return best
}

// MonthRevenue is paid revenue for one calendar month.
type MonthRevenue struct {
	Month   time.Time       `json:"month"`
	Label   string          `json:"label"`
	Revenue decimal.Decimal `json:"revenue"`
}

// MonthlyRevenue returns six calendar-month buckets ending with the month of
// now, oldest first. Each bucket sums paid invoices issued in that month, in
// now's location.
func MonthlyRevenue(invoices []models.Invoice, now time.Time) []MonthRevenue {
	const months = 6
	loc := now.Location()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	buckets := make([]MonthRevenue, months)
	for i := range buckets {
		start := current.AddDate(0, i-(months-1), 0)
		buckets[i] = MonthRevenue{Month: start, Label: start.Format("Jan")}
	}

	first := buckets[0].Month
	for _, inv := range invoices {
		if inv.Status != models.InvoiceStatusPaid {
			continue
		}
		issued := inv.IssueDate.In(loc)
		if issued.Before(first) || !issued.Before(current.AddDate(0, 1, 0)) {
			continue
		}
		i := (issued.Year()-first.Year())*12 + int(issued.Month()-first.Month())
		buckets[i].Revenue = buckets[i].Revenue.Add(inv.Total)
	}
	return buckets
}
