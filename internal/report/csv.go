// Package report renders collections as CSV exports and PNG charts.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"gitlab.com/yelinaung/invoicekit/internal/models"
)

const timestampLayout = "2006-01-02 15:04:05"

// ExpensesCSV renders expenses with a header row.
func ExpensesCSV(expenses []models.Expense) ([]byte, error) {
	header := []string{"ID", "Date", "Merchant", "Category", "Description", "Subtotal", "Tax", "Total", "Payment Method", "Notes"}
	rows := make([][]string, len(expenses))
	for i, e := range expenses {
		rows[i] = []string{
			e.ID,
			e.Date,
			e.Merchant,
			e.Category.Label(),
			e.Description,
			e.Subtotal.StringFixed(2),
			e.Tax.StringFixed(2),
			e.Total.StringFixed(2),
			string(e.PaymentMethod),
			e.Notes,
		}
	}
	return writeCSV(header, rows)
}

// InvoicesCSV renders invoices with a header row, one row per invoice.
func InvoicesCSV(invoices []models.Invoice) ([]byte, error) {
	header := []string{"Number", "Client", "Company", "Status", "Issue Date", "Due Date", "Lines", "Subtotal", "Tax Rate", "Tax", "Total", "Sent At", "Paid At"}
	rows := make([][]string, len(invoices))
	for i, inv := range invoices {
		rows[i] = []string{
			inv.InvoiceNumber,
			inv.Client.Name,
			inv.Client.Company,
			string(inv.Status),
			inv.IssueDate.Format(models.DateLayout),
			inv.DueDate.Format(models.DateLayout),
			strconv.Itoa(len(inv.Items)),
			inv.Subtotal.StringFixed(2),
			inv.TaxRate.String(),
			inv.Tax.StringFixed(2),
			inv.Total.StringFixed(2),
			formatOptional(inv.SentAt),
			formatOptional(inv.PaidAt),
		}
	}
	return writeCSV(header, rows)
}

func formatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timestampLayout)
}

func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename builds a descriptive export name such as invoices_2026-06-15.csv.
func Filename(kind, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", kind, now.Format(models.DateLayout), ext)
}
