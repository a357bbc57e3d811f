package analytics

import (
	"slices"
	"strings"
	"time"

	"gitlab.com/yelinaung/invoicekit/internal/models"
)

// BookingsByDate returns bookings whose date string equals date exactly.
func BookingsByDate(bookings []models.Booking, date string) []models.Booking {
	date = strings.TrimSpace(date)
	var out []models.Booking
	for _, b := range bookings {
		if b.Date == date {
			out = append(out, b)
		}
	}
	return out
}

// BookingsByMonth returns bookings dated within year and month in loc.
func BookingsByMonth(bookings []models.Booking, year int, month time.Month, loc *time.Location) []models.Booking {
	var out []models.Booking
	for _, b := range bookings {
		day, ok := models.ParseDay(b.Date, loc)
		if ok && day.Year() == year && day.Month() == month {
			out = append(out, b)
		}
	}
	return out
}

// UpcomingBookings returns scheduled bookings starting at or after now,
// soonest first. Date and time are read in now's location. A positive limit
// caps the result.
func UpcomingBookings(bookings []models.Booking, now time.Time, limit int) []models.Booking {
	type upcoming struct {
		booking models.Booking
		start   time.Time
	}

	var found []upcoming
	for _, b := range bookings {
		if b.Status != models.BookingStatusScheduled {
			continue
		}
		start, ok := b.StartsAt(now.Location())
		if !ok || start.Before(now) {
			continue
		}
		found = append(found, upcoming{booking: b, start: start})
	}

	slices.SortStableFunc(found, func(a, b upcoming) int {
		return a.start.Compare(b.start)
	})
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}

	out := make([]models.Booking, len(found))
	for i, u := range found {
		out[i] = u.booking
	}
	return out
}
