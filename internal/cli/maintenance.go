package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newMaintenanceCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maintenance",
		Short: "Inspect, repair, reset or seed the stored data",
	}

	inspect := &cobra.Command{
		Use:   "inspect",
		Short: "Report on every stored key without changing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reports, err := app.Store.Inspect(cmd.Context())
			if err != nil {
				return err
			}
			return app.emit(reports, func(w *tabwriter.Writer) {
				row(w, "KEY", "PRESENT", "BYTES", "VALID", "COUNT", "INVALID", "PREVIEW")
				for _, r := range reports {
					row(w, r.Key, strconv.FormatBool(r.Present), strconv.Itoa(r.Bytes),
						strconv.FormatBool(r.Valid), strconv.Itoa(r.Count), strconv.Itoa(r.Invalid), orDash(r.Preview))
				}
			})
		},
	}

	repair := &cobra.Command{
		Use:   "recover",
		Short: "Rewrite corrupted collections, salvaging what can be decoded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			results, err := app.Store.Recover(cmd.Context())
			if err != nil {
				return err
			}
			return app.emit(results, func(w *tabwriter.Writer) {
				row(w, "KEY", "OUTCOME", "RECORDS", "DROPPED")
				for _, r := range results {
					row(w, r.Key, string(r.Outcome), strconv.Itoa(r.Count), strconv.Itoa(r.Dropped))
				}
			})
		},
	}

	var yes bool
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Delete every stored collection and the invoice counter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("reset deletes all data; pass --yes to confirm")
			}
			if err := app.Store.Reset(cmd.Context()); err != nil {
				return err
			}
			app.printf("All data removed\n")
			return nil
		},
	}
	reset.Flags().BoolVar(&yes, "yes", false, "Confirm deleting all data")

	seed := &cobra.Command{
		Use:   "seed",
		Short: "Add sample clients and catalog items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.Store.SeedSampleData(cmd.Context()); err != nil {
				return err
			}
			app.printf("Sample data added\n")
			return nil
		},
	}

	cmd.AddCommand(inspect, repair, reset, seed)
	return cmd
}
