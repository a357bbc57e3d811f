package cli

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gitlab.com/yelinaung/invoicekit/internal/analytics"
	"gitlab.com/yelinaung/invoicekit/internal/gemini"
	"gitlab.com/yelinaung/invoicekit/internal/logger"
	"gitlab.com/yelinaung/invoicekit/internal/models"
	"gitlab.com/yelinaung/invoicekit/internal/quickentry"
	"gitlab.com/yelinaung/invoicekit/internal/store"
)

func newExpenseCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Record and summarise business expenses",
	}
	cmd.AddCommand(
		newExpenseListCommand(app),
		newExpenseAddCommand(app),
		newExpenseQuickCommand(app),
		newExpenseUpdateCommand(app),
		newExpenseDeleteCommand(app),
		newExpenseSummaryCommand(app),
		newExpenseScanCommand(app),
	)
	return cmd
}

func newExpenseListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			expenses := app.Store.LoadExpenses(cmd.Context())
			return app.emit(expenses, func(w *tabwriter.Writer) {
				row(w, "ID", "DATE", "MERCHANT", "CATEGORY", "TAX", "TOTAL")
				for _, e := range expenses {
					row(w, e.ID, e.Date, e.Merchant, e.Category.Label(), money(e.Tax), money(e.Total))
				}
			})
		},
	}
}

type expenseFlags struct {
	date, merchant, category, description string
	subtotal, tax, total                  string
	payment, receipt, notes               string
}

func (f *expenseFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "Day of purchase (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&f.merchant, "merchant", "", "Merchant name")
	cmd.Flags().StringVar(&f.category, "category", "", "Expense category")
	cmd.Flags().StringVar(&f.description, "description", "", "What was bought")
	cmd.Flags().StringVar(&f.subtotal, "subtotal", "0", "Amount before tax")
	cmd.Flags().StringVar(&f.tax, "tax", "0", "Tax amount")
	cmd.Flags().StringVar(&f.total, "total", "0", "Amount paid")
	cmd.Flags().StringVar(&f.payment, "payment", "", "cash, credit_card, debit_card, bank_transfer, check or other")
	cmd.Flags().StringVar(&f.receipt, "receipt", "", "Receipt file or URI")
	cmd.Flags().StringVar(&f.notes, "notes", "", "Free-form notes")
}

func newExpenseAddCommand(app *App) *cobra.Command {
	var (
		f       expenseFlags
		suggest bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense",
		Long: `Records an expense. Subtotal, tax and total are stored as given.
With --suggest and no --category, Gemini proposes a category from the
description (requires GEMINI_API_KEY).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			e := models.Expense{
				Date:          f.date,
				Merchant:      f.merchant,
				Category:      models.ExpenseCategory(f.category),
				Description:   f.description,
				ReceiptURI:    f.receipt,
				PaymentMethod: models.PaymentMethod(f.payment),
				Notes:         f.notes,
			}
			if e.Date == "" {
				e.Date = app.Now().Format(models.DateLayout)
			}
			var err error
			if e.Subtotal, err = parseMoney("subtotal", f.subtotal); err != nil {
				return err
			}
			if e.Tax, err = parseMoney("tax", f.tax); err != nil {
				return err
			}
			if e.Total, err = parseMoney("total", f.total); err != nil {
				return err
			}

			if e.Category == "" && suggest {
				client, err := app.geminiClient(ctx)
				if err != nil {
					return err
				}
				text := e.Description
				if text == "" {
					text = e.Merchant
				}
				suggestion, err := client.SuggestCategory(ctx, text)
				if err != nil {
					return fmt.Errorf("failed to suggest category: %w", err)
				}
				e.Category = suggestion.Category
				logger.WithComponent("cli").Info().
					Str("category", string(suggestion.Category)).
					Float64("confidence", suggestion.Confidence).
					Msg("Using suggested category")
			}
			if e.Category == "" {
				e.Category = models.CategoryOther
			}

			saved, err := app.Store.AddExpense(ctx, e)
			if err != nil {
				return err
			}
			return app.emit(saved, func(w *tabwriter.Writer) {
				row(w, "Recorded expense", saved.ID, saved.Merchant, saved.Category.Label(), money(saved.Total))
			})
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&suggest, "suggest", false, "Ask Gemini for a category when --category is omitted")
	return cmd
}

func newExpenseQuickCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "quick <note>",
		Short: "Record an expense from a one-line note",
		Example: `  invoicekit expense quick "12.50 Lunch with client Meals & Entertainment"
  invoicekit expense quick 45 Rent`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			note := strings.Join(args, " ")
			entry, ok := quickentry.Parse(note)
			if !ok {
				return fmt.Errorf("could not read an amount from %q; start the note with one, e.g. \"5.50 Coffee\"", note)
			}

			saved, err := app.Store.AddExpense(cmd.Context(), entry.Expense(app.Now()))
			if err != nil {
				return err
			}
			return app.emit(saved, func(w *tabwriter.Writer) {
				row(w, "Recorded expense", saved.ID, saved.Merchant, saved.Category.Label(), money(saved.Total))
			})
		},
	}
}

func newExpenseUpdateCommand(app *App) *cobra.Command {
	var f expenseFlags
	cmd := &cobra.Command{
		Use:   "update <expense-id>",
		Short: "Change the fields given as flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch store.ExpensePatch
			flags := cmd.Flags()
			if flags.Changed("date") {
				patch.Date = &f.date
			}
			if flags.Changed("merchant") {
				patch.Merchant = &f.merchant
			}
			if flags.Changed("category") {
				c := models.ExpenseCategory(f.category)
				patch.Category = &c
			}
			if flags.Changed("description") {
				patch.Description = &f.description
			}
			if flags.Changed("receipt") {
				patch.ReceiptURI = &f.receipt
			}
			if flags.Changed("payment") {
				m := models.PaymentMethod(f.payment)
				patch.PaymentMethod = &m
			}
			if flags.Changed("notes") {
				patch.Notes = &f.notes
			}
			if flags.Changed("subtotal") {
				d, err := parseMoney("subtotal", f.subtotal)
				if err != nil {
					return err
				}
				patch.Subtotal = &d
			}
			if flags.Changed("tax") {
				d, err := parseMoney("tax", f.tax)
				if err != nil {
					return err
				}
				patch.Tax = &d
			}
			if flags.Changed("total") {
				d, err := parseMoney("total", f.total)
				if err != nil {
					return err
				}
				patch.Total = &d
			}

			saved, err := app.Store.UpdateExpense(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			return app.emit(saved, func(w *tabwriter.Writer) {
				row(w, "Updated expense", saved.ID, saved.Merchant, money(saved.Total))
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newExpenseDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <expense-id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Store.DeleteExpense(cmd.Context(), args[0]); err != nil {
				return err
			}
			app.printf("Deleted expense %s\n", args[0])
			return nil
		},
	}
}

type expenseSummaryOutput struct {
	Summary    analytics.ExpenseSummary  `json:"summary"`
	ByCategory []analytics.CategoryTotal `json:"byCategory"`
}

func newExpenseSummaryCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show expense totals overall, per category and this month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := expenseSummaryOutput{
				Summary:    app.Store.ExpenseSummary(ctx),
				ByCategory: app.Store.ExpensesByCategory(ctx),
			}
			return app.emit(out, func(w *tabwriter.Writer) {
				row(w, "Total expenses", money(out.Summary.TotalExpenses))
				row(w, "Total tax", money(out.Summary.TotalTax))
				row(w, "This month", money(out.Summary.CurrentMonthTotal),
					strconv.Itoa(len(out.Summary.CurrentMonth))+" expenses")
				row(w, "", "")
				row(w, "CATEGORY", "TOTAL", "COUNT")
				for _, ct := range out.ByCategory {
					row(w, ct.Label, money(ct.Total), strconv.Itoa(ct.Count))
				}
			})
		},
	}
}

func newExpenseScanCommand(app *App) *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "scan <receipt-image>",
		Short: "Read a receipt image with Gemini",
		Long: `Extracts merchant, date, amounts and a category from a receipt image.
With --save the result is recorded as a new expense referencing the image.
Requires GEMINI_API_KEY.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			image, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read receipt: %w", err)
			}
			client, err := app.geminiClient(ctx)
			if err != nil {
				return err
			}

			data, err := client.ExtractReceipt(ctx, image, http.DetectContentType(image))
			if err != nil {
				if errors.Is(err, gemini.ErrNoData) {
					return fmt.Errorf("could not read anything useful from %s: %w", args[0], err)
				}
				return err
			}
			e := data.ExpenseInput(app.Now())
			if data.IsPartial() {
				logger.WithComponent("cli").Warn().Msg("Receipt was only partially read")
			}

			if save {
				path, err := filepath.Abs(args[0])
				if err != nil {
					return fmt.Errorf("failed to resolve %s: %w", args[0], err)
				}
				e.ReceiptURI = "file://" + filepath.ToSlash(path)
				if e.Merchant == "" {
					e.Merchant = "Unknown merchant"
				}
				e, err = app.Store.AddExpense(ctx, e)
				if err != nil {
					return err
				}
			}

			return app.emit(e, func(w *tabwriter.Writer) {
				row(w, "Merchant", orDash(e.Merchant))
				row(w, "Date", e.Date)
				row(w, "Category", e.Category.Label())
				row(w, "Subtotal", money(e.Subtotal))
				row(w, "Tax", money(e.Tax))
				row(w, "Total", money(e.Total))
				row(w, "Confidence", strconv.FormatFloat(data.Confidence, 'f', 2, 64))
				if e.ID != "" {
					row(w, "Saved as", e.ID)
				}
			})
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "Record the scanned receipt as an expense")
	return cmd
}
