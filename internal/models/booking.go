package models

import (
	"fmt"
	"strings"
	"time"
)

// BookingStatus is the state of an appointment.
type BookingStatus string

// Booking statuses.
const (
	BookingStatusScheduled BookingStatus = "scheduled"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusScheduled, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// Booking is an appointment with a client. ClientID and Service are not checked
// against the client and item collections.
type Booking struct {
	ID         string        `json:"id"`
	ClientID   string        `json:"clientId"`
	ClientName string        `json:"clientName"`
	Date       string        `json:"date"`
	Time       string        `json:"time"`
	Duration   int           `json:"duration"`
	Service    string        `json:"service"`
	Notes      string        `json:"notes,omitempty"`
	Status     BookingStatus `json:"status"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// EntityID implements repository.Entity.
func (b Booking) EntityID() string { return b.ID }

// Validate checks the persisted shape of a booking.
func (b Booking) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("%w: booking without id", ErrInvalidEntity)
	}
	if !b.Status.Valid() {
		return fmt.Errorf("%w: booking %s has unknown status %q", ErrInvalidEntity, b.ID, b.Status)
	}
	return nil
}

// StartsAt combines Date and Time in loc. A missing or unparseable time falls
// back to midnight.
func (b Booking) StartsAt(loc *time.Location) (time.Time, bool) {
	day, ok := ParseDay(b.Date, loc)
	if !ok {
		return time.Time{}, false
	}
	if tod, err := time.Parse(TimeLayout, strings.TrimSpace(b.Time)); err == nil {
		day = time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), 0, 0, day.Location())
	}
	return day, true
}
