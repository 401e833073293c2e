package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID              int64
	UserID          int64
	FlightID        int64
	PassengerName   string
	PassengerEmail  string
	NumberOfSeats   int
	TotalPrice      float64
	Status          BookingStatus
	ClassType       string
	FlightName      string
	PaymentIntentID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CanTransition reports whether a booking may move from its current status
// to the target one. Cancelled is terminal; nothing goes back to pending.
func (b *Booking) CanTransition(target BookingStatus) bool {
	switch b.Status {
	case BookingStatusPending:
		return target == BookingStatusConfirmed || target == BookingStatusCancelled
	case BookingStatusConfirmed:
		return target == BookingStatusCancelled
	default:
		return false
	}
}
