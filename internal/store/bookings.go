package store

import (
	"context"
	"time"

	"gitlab.com/yelinaung/invoicekit/internal/analytics"
	"gitlab.com/yelinaung/invoicekit/internal/models"
	"gitlab.com/yelinaung/invoicekit/internal/repository"
	"gitlab.com/yelinaung/invoicekit/internal/validation"
)

// LoadBookings returns every booking.
func (s *Store) LoadBookings(ctx context.Context) []models.Booking {
	return read(ctx, s, s.bookings)
}

// BookingsByDate returns bookings on the calendar date YYYY-MM-DD.
func (s *Store) BookingsByDate(ctx context.Context, date string) []models.Booking {
	return analytics.BookingsByDate(s.LoadBookings(ctx), date)
}

// BookingsByMonth returns bookings within year and month.
func (s *Store) BookingsByMonth(ctx context.Context, year int, month time.Month) []models.Booking {
	return analytics.BookingsByMonth(s.LoadBookings(ctx), year, month, s.now().Location())
}

// UpcomingBookings returns the next scheduled bookings, soonest first. A
// non-positive limit selects the configured default.
func (s *Store) UpcomingBookings(ctx context.Context, limit int) []models.Booking {
	if limit <= 0 {
		limit = s.upcomingLimit
	}
	return analytics.UpcomingBookings(s.LoadBookings(ctx), s.now(), limit)
}

// AddBooking stores a new booking. A missing status defaults to scheduled.
func (s *Store) AddBooking(ctx context.Context, b models.Booking) (models.Booking, error) {
	if b.Status == "" {
		b.Status = models.BookingStatusScheduled
	}
	if err := validation.Booking(b); err != nil {
		return models.Booking{}, err
	}
	now := s.now()
	b.ID = s.newID()
	b.CreatedAt = now
	b.UpdatedAt = now

	err := mutate(ctx, s, s.bookings, func(bookings []models.Booking) ([]models.Booking, error) {
		return append(bookings, b), nil
	})
	if err != nil {
		return models.Booking{}, err
	}
	return b, nil
}

// BookingPatch lists the booking fields to change. Nil fields are left as
// they are.
type BookingPatch struct {
	ClientID   *string
	ClientName *string
	Date       *string
	Time       *string
	Duration   *int
	Service    *string
	Notes      *string
	Status     *models.BookingStatus
}

func (p BookingPatch) apply(b *models.Booking) {
	if p.ClientID != nil {
		b.ClientID = *p.ClientID
	}
	if p.ClientName != nil {
		b.ClientName = *p.ClientName
	}
	if p.Date != nil {
		b.Date = *p.Date
	}
	if p.Time != nil {
		b.Time = *p.Time
	}
	if p.Duration != nil {
		b.Duration = *p.Duration
	}
	if p.Service != nil {
		b.Service = *p.Service
	}
	if p.Notes != nil {
		b.Notes = *p.Notes
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
}

// UpdateBooking applies patch to the booking with id.
func (s *Store) UpdateBooking(ctx context.Context, id string, patch BookingPatch) (models.Booking, error) {
	var updated models.Booking
	err := mutate(ctx, s, s.bookings, func(bookings []models.Booking) ([]models.Booking, error) {
		i := repository.Index(bookings, id)
		if i < 0 {
			return nil, notFound(models.KindBookings, id)
		}
		b := bookings[i]
		patch.apply(&b)
		if err := validation.Booking(b); err != nil {
			return nil, err
		}
		b.UpdatedAt = s.now()
		bookings[i] = b
		updated = b
		return bookings, nil
	})
	if err != nil {
		return models.Booking{}, err
	}
	return updated, nil
}

// DeleteBooking removes the booking with id.
func (s *Store) DeleteBooking(ctx context.Context, id string) error {
	return mutate(ctx, s, s.bookings, func(bookings []models.Booking) ([]models.Booking, error) {
		next, removed := repository.Remove(bookings, id)
		if !removed {
			return nil, notFound(models.KindBookings, id)
		}
		return next, nil
	})
}
