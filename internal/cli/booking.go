package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"gitlab.com/yelinaung/invoicekit/internal/models"
	"gitlab.com/yelinaung/invoicekit/internal/store"
)

func newBookingCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "booking",
		Short: "Schedule and review client bookings",
	}
	cmd.AddCommand(
		newBookingListCommand(app),
		newBookingAddCommand(app),
		newBookingUpdateCommand(app),
		newBookingDeleteCommand(app),
		newBookingUpcomingCommand(app),
	)
	return cmd
}

func printBookings(app *App, bookings []models.Booking) error {
	return app.emit(bookings, func(w *tabwriter.Writer) {
		row(w, "ID", "DATE", "TIME", "MIN", "CLIENT", "SERVICE", "STATUS")
		for _, b := range bookings {
			row(w, b.ID, b.Date, b.Time, strconv.Itoa(b.Duration), orDash(b.ClientName),
				orDash(b.Service), string(b.Status))
		}
	})
}

func newBookingListCommand(app *App) *cobra.Command {
	var date, month string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bookings, optionally for one day or one month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			switch {
			case date != "":
				return printBookings(app, app.Store.BookingsByDate(ctx, date))
			case month != "":
				m, err := time.Parse("2006-01", month)
				if err != nil {
					return fmt.Errorf("invalid --month %q: want YYYY-MM", month)
				}
				return printBookings(app, app.Store.BookingsByMonth(ctx, m.Year(), m.Month()))
			default:
				return printBookings(app, app.Store.LoadBookings(ctx))
			}
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Only bookings on this day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&month, "month", "", "Only bookings in this month (YYYY-MM)")
	cmd.MarkFlagsMutuallyExclusive("date", "month")
	return cmd
}

func newBookingAddCommand(app *App) *cobra.Command {
	var b models.Booking
	var status string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a booking",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b.Status = models.BookingStatus(status)
			saved, err := app.Store.AddBooking(cmd.Context(), b)
			if err != nil {
				return err
			}
			return app.emit(saved, func(w *tabwriter.Writer) {
				row(w, "Booked", saved.ID, saved.Date, saved.Time)
			})
		},
	}
	cmd.Flags().StringVar(&b.ClientID, "client-id", "", "Client id")
	cmd.Flags().StringVar(&b.ClientName, "client-name", "", "Client display name")
	cmd.Flags().StringVar(&b.Date, "date", "", "Day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&b.Time, "time", "", "Start time (HH:MM)")
	cmd.Flags().IntVar(&b.Duration, "duration", 60, "Length in minutes")
	cmd.Flags().StringVar(&b.Service, "service", "", "Service booked")
	cmd.Flags().StringVar(&b.Notes, "notes", "", "Free-form notes")
	cmd.Flags().StringVar(&status, "status", "", "scheduled, completed or cancelled (default scheduled)")
	return cmd
}

func newBookingUpdateCommand(app *App) *cobra.Command {
	var (
		clientID, clientName, date, clock, service, notes, status string
		duration                                                  int
	)
	cmd := &cobra.Command{
		Use:   "update <booking-id>",
		Short: "Change the fields given as flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch store.BookingPatch
			flags := cmd.Flags()
			if flags.Changed("client-id") {
				patch.ClientID = &clientID
			}
			if flags.Changed("client-name") {
				patch.ClientName = &clientName
			}
			if flags.Changed("date") {
				patch.Date = &date
			}
			if flags.Changed("time") {
				patch.Time = &clock
			}
			if flags.Changed("duration") {
				patch.Duration = &duration
			}
			if flags.Changed("service") {
				patch.Service = &service
			}
			if flags.Changed("notes") {
				patch.Notes = &notes
			}
			if flags.Changed("status") {
				s := models.BookingStatus(status)
				patch.Status = &s
			}

			saved, err := app.Store.UpdateBooking(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			return app.emit(saved, func(w *tabwriter.Writer) {
				row(w, "Updated booking", saved.ID, saved.Date, saved.Time, string(saved.Status))
			})
		},
	}
	cmd.Flags().StringVar(&clientID, "client-id", "", "Client id")
	cmd.Flags().StringVar(&clientName, "client-name", "", "Client display name")
	cmd.Flags().StringVar(&date, "date", "", "Day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&clock, "time", "", "Start time (HH:MM)")
	cmd.Flags().IntVar(&duration, "duration", 0, "Length in minutes")
	cmd.Flags().StringVar(&service, "service", "", "Service booked")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	cmd.Flags().StringVar(&status, "status", "", "scheduled, completed or cancelled")
	return cmd
}

func newBookingDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <booking-id>",
		Short: "Delete a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Store.DeleteBooking(cmd.Context(), args[0]); err != nil {
				return err
			}
			app.printf("Deleted booking %s\n", args[0])
			return nil
		},
	}
}

func newBookingUpcomingCommand(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List the next scheduled bookings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printBookings(app, app.Store.UpcomingBookings(cmd.Context(), limit))
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum bookings to show (default UPCOMING_LIMIT)")
	return cmd
}
