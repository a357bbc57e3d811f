package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/invoicekit/internal/models"
)

func bookingIDs(bookings []models.Booking) []string {
	out := make([]string, len(bookings))
	for i, b := range bookings {
		out[i] = b.ID
	}
	return out
}

func TestBookingLookups(t *testing.T) {
	t.Parallel()

	bookings := []models.Booking{
		{ID: "a", Date: "2026-06-15", Time: "09:00", Status: models.BookingStatusScheduled},
		{ID: "b", Date: "2026-06-15", Time: "14:00", Status: models.BookingStatusScheduled},
		{ID: "c", Date: "2026-06-20", Time: "10:00", Status: models.BookingStatusScheduled},
		{ID: "d", Date: "2026-06-16", Time: "08:00", Status: models.BookingStatusCancelled},
		{ID: "e", Date: "2026-07-01", Time: "", Status: models.BookingStatusScheduled},
		{ID: "f", Date: "2026-06-17", Time: "11:30", Status: models.BookingStatusScheduled},
		{ID: "g", Date: "not a date", Status: models.BookingStatusScheduled},
	}

	t.Run("by date", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, []string{"a", "b"}, bookingIDs(BookingsByDate(bookings, "2026-06-15")))
		require.Empty(t, BookingsByDate(bookings, "2026-06-14"))
	})

	t.Run("by month", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, []string{"a", "b", "c", "d", "f"}, bookingIDs(BookingsByMonth(bookings, 2026, time.June, time.UTC)))
		require.Equal(t, []string{"e"}, bookingIDs(BookingsByMonth(bookings, 2026, time.July, time.UTC)))
	})

	t.Run("upcoming skips past starts and non-scheduled", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, []string{"b", "f", "c", "e"}, bookingIDs(UpcomingBookings(bookings, now, 0)))
	})

	t.Run("upcoming honours limit", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, []string{"b", "f"}, bookingIDs(UpcomingBookings(bookings, now, 2)))
	})
}
