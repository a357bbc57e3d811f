package report

import (
	"errors"
	"fmt"

	"github.com/go-analyze/charts"

	"gitlab.com/yelinaung/invoicekit/internal/analytics"
	"gitlab.com/yelinaung/invoicekit/internal/models"
)

// ErrNothingToChart is returned when a chart would have no slices.
var ErrNothingToChart = errors.New("nothing to chart")

// ExpenseCategoryChart renders a pie chart of spend per category as PNG.
func ExpenseCategoryChart(expenses []models.Expense, title string) ([]byte, error) {
	totals := analytics.ExpensesByCategory(expenses)

	values := make([]float64, 0, len(totals))
	labels := make([]string, 0, len(totals))
	for _, ct := range totals {
		if !ct.Total.IsPositive() {
			continue
		}
		values = append(values, ct.Total.InexactFloat64())
		labels = append(labels, ct.Label)
	}
	return renderPie(values, labels, fmt.Sprintf("Expense Breakdown - %s", title))
}

// ClientRevenueChart renders a pie chart of paid revenue per client as PNG.
func ClientRevenueChart(invoices []models.Invoice, title string) ([]byte, error) {
	revenues := analytics.RevenueByClient(invoices)

	values := make([]float64, 0, len(revenues))
	labels := make([]string, 0, len(revenues))
	for _, cr := range revenues {
		if !cr.Revenue.IsPositive() {
			continue
		}
		values = append(values, cr.Revenue.InexactFloat64())
		labels = append(labels, cr.Name)
	}
	return renderPie(values, labels, fmt.Sprintf("Revenue by Client - %s", title))
}

func renderPie(values []float64, labels []string, title string) ([]byte, error) {
	if len(values) == 0 {
		return nil, ErrNothingToChart
	}

	p, err := charts.PieRender(
		values,
		charts.TitleOptionFunc(charts.TitleOption{Text: title}),
		charts.LegendLabelsOptionFunc(labels),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf, nil
}
