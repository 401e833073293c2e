package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/nmoskvitin/skyfare/internal/domain"
	"github.com/nmoskvitin/skyfare/internal/kafka"
	"github.com/nmoskvitin/skyfare/internal/payments"
	"github.com/nmoskvitin/skyfare/internal/repository"
	"github.com/sirupsen/logrus"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, userID int64, input CreateBookingInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, userID, bookingID int64) (*domain.Booking, error)
	ListBookings(ctx context.Context) ([]domain.Booking, error)
	ListUserBookings(ctx context.Context, userID int64) ([]domain.Booking, error)
	UpdateBooking(ctx context.Context, userID, bookingID int64, input UpdateBookingInput) (*domain.Booking, error)
	ProcessPayment(ctx context.Context, userID, bookingID int64, totalPrice float64) (*PaymentResult, error)
	ConfirmBooking(ctx context.Context, userID, bookingID int64) (*domain.Booking, error)
	CancelBooking(ctx context.Context, userID, bookingID int64) (*domain.Booking, error)
	CancelStalePending(ctx context.Context, maxAge time.Duration) ([]domain.Booking, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CreateBookingInput struct {
	FlightID       int64
	PassengerName  string
	PassengerEmail string
	NumberOfSeats  int
	TotalPrice     float64
	ClassType      string
}

type UpdateBookingInput struct {
	PassengerName  *string
	PassengerEmail *string
	NumberOfSeats  *int
	TotalPrice     *float64
	ClassType      *string
}

// PaymentResult carries the client secret the frontend needs to finish the
// charge, together with the updated booking.
type PaymentResult struct {
	Booking      *domain.Booking
	ClientSecret string
}

type BookingService struct {
	bookings           repository.BookingRepository
	flights            repository.FlightRepository
	gateway            payments.Gateway
	producer           Producer
	bookingTopic       string
	notificationsTopic string
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	gateway payments.Gateway,
	producer Producer,
	bookingTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		flights:      flights,
		gateway:      gateway,
		producer:     producer,
		bookingTopic: bookingTopic,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, userID int64, input CreateBookingInput) (*domain.Booking, error) {
	switch {
	case input.PassengerName == "":
		return nil, fmt.Errorf("%w: passenger name is required", domain.ErrInvalidInput)
	case input.PassengerEmail == "":
		return nil, fmt.Errorf("%w: passenger email is required", domain.ErrInvalidInput)
	case input.NumberOfSeats <= 0:
		return nil, fmt.Errorf("%w: number of seats must be positive", domain.ErrInvalidInput)
	case input.TotalPrice <= 0:
		return nil, fmt.Errorf("%w: total price must be positive", domain.ErrInvalidInput)
	}

	flight, err := s.flights.GetByID(ctx, input.FlightID)
	if err != nil {
		return nil, err
	}

	classType := input.ClassType
	if classType == "" {
		classType = flight.ClassType
	}

	booking := &domain.Booking{
		UserID:         userID,
		FlightID:       flight.ID,
		PassengerName:  input.PassengerName,
		PassengerEmail: input.PassengerEmail,
		NumberOfSeats:  input.NumberOfSeats,
		TotalPrice:     input.TotalPrice,
		ClassType:      classType,
		FlightName:     flight.FlightName,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.publish(ctx, "booking_created", booking)
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, userID, bookingID int64) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return booking, nil
}

func (s *BookingService) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	return s.bookings.List(ctx)
}

func (s *BookingService) ListUserBookings(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

func (s *BookingService) UpdateBooking(ctx context.Context, userID, bookingID int64, input UpdateBookingInput) (*domain.Booking, error) {
	booking, err := s.GetBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	if input.PassengerName != nil {
		booking.PassengerName = *input.PassengerName
	}
	if input.PassengerEmail != nil {
		booking.PassengerEmail = *input.PassengerEmail
	}
	if input.NumberOfSeats != nil {
		if *input.NumberOfSeats <= 0 {
			return nil, fmt.Errorf("%w: number of seats must be positive", domain.ErrInvalidInput)
		}
		booking.NumberOfSeats = *input.NumberOfSeats
	}
	if input.TotalPrice != nil {
		if *input.TotalPrice <= 0 {
			return nil, fmt.Errorf("%w: total price must be positive", domain.ErrInvalidInput)
		}
		booking.TotalPrice = *input.TotalPrice
	}
	if input.ClassType != nil {
		booking.ClassType = *input.ClassType
	}

	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// ProcessPayment requests a payment intent for a pending booking owned by the
// caller and marks the booking confirmed, returning the intent's client
// secret. Confirmation is not gated on the charge actually completing; the
// frontend finishes the charge with the client secret.
func (s *BookingService) ProcessPayment(ctx context.Context, userID, bookingID int64, totalPrice float64) (*PaymentResult, error) {
	if totalPrice <= 0 {
		return nil, fmt.Errorf("%w: total price must be positive", domain.ErrInvalidInput)
	}

	booking, err := s.GetBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingStatusPending {
		return nil, domain.ErrNotPending
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, totalPrice, booking.PassengerEmail, booking.ID)
	if err != nil {
		return nil, err
	}

	updated, err := s.bookings.UpdateStatus(ctx, booking.ID, domain.BookingStatusConfirmed, intent.ID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "booking_confirmed", updated)
	return &PaymentResult{Booking: updated, ClientSecret: intent.ClientSecret}, nil
}

func (s *BookingService) ConfirmBooking(ctx context.Context, userID, bookingID int64) (*domain.Booking, error) {
	booking, err := s.GetBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status == domain.BookingStatusConfirmed {
		return booking, nil
	}
	if !booking.CanTransition(domain.BookingStatusConfirmed) {
		return nil, domain.ErrBookingCancelled
	}

	updated, err := s.bookings.UpdateStatus(ctx, booking.ID, domain.BookingStatusConfirmed, "")
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "booking_confirmed", updated)
	return updated, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, userID, bookingID int64) (*domain.Booking, error) {
	booking, err := s.GetBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status == domain.BookingStatusCancelled {
		return booking, nil
	}

	updated, err := s.bookings.UpdateStatus(ctx, booking.ID, domain.BookingStatusCancelled, "")
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "booking_cancelled", updated)
	return updated, nil
}

// CancelStalePending cancels pending bookings older than maxAge. Driven by
// the worker's sweep ticker.
func (s *BookingService) CancelStalePending(ctx context.Context, maxAge time.Duration) ([]domain.Booking, error) {
	deadline := time.Now().Add(-maxAge)
	cancelled, err := s.bookings.CancelPendingBefore(ctx, deadline)
	if err != nil {
		return nil, err
	}
	for i := range cancelled {
		s.publish(ctx, "booking_cancelled", &cancelled[i])
	}
	return cancelled, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:           eventType,
		BookingID:      booking.ID,
		UserID:         booking.UserID,
		FlightID:       booking.FlightID,
		FlightName:     booking.FlightName,
		PassengerName:  booking.PassengerName,
		PassengerEmail: booking.PassengerEmail,
		NumberOfSeats:  booking.NumberOfSeats,
		TotalPrice:     booking.TotalPrice,
		Status:         string(booking.Status),
		OccurredAt:     time.Now(),
	}
	key := fmt.Sprintf("%d", booking.ID)
	if err := s.producer.Publish(ctx, s.bookingTopic, key, event); err != nil {
		logrus.WithError(err).WithField("booking_id", booking.ID).Warnf("publish %s event", eventType)
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, key, event); err != nil {
			logrus.WithError(err).WithField("booking_id", booking.ID).Warnf("publish %s notification", eventType)
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
