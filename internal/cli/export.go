package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gitlab.com/yelinaung/invoicekit/internal/report"
)

func newExportCommand(app *App) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:       "export <expenses|invoices>",
		Short:     "Export a collection as CSV",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"expenses", "invoices"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var (
				data []byte
				err  error
			)
			switch args[0] {
			case "expenses":
				data, err = report.ExpensesCSV(app.Store.LoadExpenses(ctx))
			case "invoices":
				data, err = report.InvoicesCSV(app.Store.LoadInvoices(ctx))
			}
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = app.out.Write(data)
				return err
			}
			return app.writeFile(output, data)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func newChartCommand(app *App) *cobra.Command {
	var output, title string
	cmd := &cobra.Command{
		Use:       "chart <expenses|clients>",
		Short:     "Render a PNG pie chart of expenses by category or revenue by client",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"expenses", "clients"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			now := app.Now()
			if title == "" {
				title = now.Format("January 2006")
			}

			var (
				data []byte
				err  error
			)
			switch args[0] {
			case "expenses":
				data, err = report.ExpenseCategoryChart(app.Store.LoadExpenses(ctx), title)
			case "clients":
				data, err = report.ClientRevenueChart(app.Store.LoadInvoices(ctx), title)
			}
			if err != nil {
				return err
			}

			if output == "" {
				output = report.Filename(args[0], "png", now)
			}
			return app.writeFile(output, data)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: <kind>_<date>.png)")
	cmd.Flags().StringVar(&title, "title", "", "Chart subtitle (default: current month)")
	return cmd
}

func (a *App) writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	a.printf("Wrote %s (%d bytes)\n", path, len(data))
	return nil
}
