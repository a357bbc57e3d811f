package cli

import (
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gitlab.com/yelinaung/invoicekit/internal/analytics"
)

type statsOutput struct {
	Statistics analytics.Statistics     `json:"statistics"`
	Period     analytics.PeriodReport   `json:"period"`
	Monthly    []analytics.MonthRevenue `json:"monthly"`
}

func newStatsCommand(app *App) *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show invoice statistics, a period report and monthly revenue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := analytics.ParsePeriod(period)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			out := statsOutput{
				Statistics: app.Store.Statistics(ctx),
				Period:     app.Store.PeriodReport(ctx, p),
				Monthly:    app.Store.MonthlyRevenue(ctx),
			}

			return app.emit(out, func(w *tabwriter.Writer) {
				s := out.Statistics
				row(w, "Invoices", strconv.Itoa(s.Total))
				row(w, "Draft / Sent / Paid / Overdue",
					strconv.Itoa(s.Draft)+" / "+strconv.Itoa(s.Sent)+" / "+
						strconv.Itoa(s.Paid)+" / "+strconv.Itoa(s.Overdue))
				row(w, "Revenue", money(s.TotalRevenue))
				row(w, "Pending", money(s.PendingRevenue))
				row(w, "", "")

				r := out.Period
				row(w, "Period", string(r.Period), day(r.Start)+" .. "+day(r.End))
				row(w, "Revenue", money(r.Revenue))
				row(w, "Previous period", money(r.PreviousRevenue))
				row(w, "Growth %", r.Growth.StringFixed(1))
				row(w, "Average invoice", money(r.AverageInvoiceValue))
				row(w, "Paid / Pending / Overdue",
					strconv.Itoa(r.PaidCount)+" / "+strconv.Itoa(r.PendingCount)+" / "+strconv.Itoa(r.OverdueCount))
				row(w, "Top client", orDash(r.TopClient))
				row(w, "", "")

				row(w, "MONTH", "REVENUE")
				for _, m := range out.Monthly {
					row(w, m.Label, money(m.Revenue))
				}
			})
		},
	}
	cmd.Flags().StringVarP(&period, "period", "p", string(analytics.PeriodMonth), "week, month, quarter, year or all")
	return cmd
}
