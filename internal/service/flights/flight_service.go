package flights

import (
	"context"
	"fmt"
	"time"

	"github.com/nmoskvitin/skyfare/internal/domain"
	"github.com/nmoskvitin/skyfare/internal/repository"
	"github.com/sirupsen/logrus"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Create(ctx context.Context, input FlightInput) (*domain.Flight, error)
	Update(ctx context.Context, id int64, input FlightInput) (*domain.Flight, error)
	Delete(ctx context.Context, id int64) error
	Filter(ctx context.Context, filter repository.FlightFilter) ([]domain.Flight, error)
}

type Cache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type FlightInput struct {
	FlightNumber     string
	FlightName       string
	DepartureAirport string
	ArrivalAirport   string
	DepartureTime    time.Time
	ArrivalTime      time.Time
	Price            float64
	AvailableSeats   int
	ClassType        string
}

func (in FlightInput) validate() error {
	switch {
	case in.FlightNumber == "", in.FlightName == "", in.DepartureAirport == "", in.ArrivalAirport == "":
		return fmt.Errorf("%w: missing required fields", domain.ErrInvalidInput)
	case in.DepartureTime.IsZero(), in.ArrivalTime.IsZero():
		return fmt.Errorf("%w: departure and arrival times are required", domain.ErrInvalidInput)
	case !in.DepartureTime.Before(in.ArrivalTime):
		return fmt.Errorf("%w: departure time must be before arrival time", domain.ErrInvalidInput)
	case in.Price <= 0:
		return fmt.Errorf("%w: price must be positive", domain.ErrInvalidInput)
	case in.AvailableSeats < 0:
		return fmt.Errorf("%w: available seats must not be negative", domain.ErrInvalidInput)
	case !domain.ValidClassType(in.ClassType):
		return fmt.Errorf("%w: unknown class type %q", domain.ErrInvalidInput, in.ClassType)
	}
	return nil
}

type FlightService struct {
	repo     repository.FlightRepository
	cache    Cache
	cacheTTL time.Duration
}

func NewFlightService(repo repository.FlightRepository, cache Cache, cacheTTL time.Duration) *FlightService {
	return &FlightService{repo: repo, cache: cache, cacheTTL: cacheTTL}
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetFlights(ctx, flights)
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) Create(ctx context.Context, input FlightInput) (*domain.Flight, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	flight := &domain.Flight{
		FlightNumber:     input.FlightNumber,
		FlightName:       input.FlightName,
		DepartureAirport: input.DepartureAirport,
		ArrivalAirport:   input.ArrivalAirport,
		DepartureTime:    input.DepartureTime,
		ArrivalTime:      input.ArrivalTime,
		Price:            input.Price,
		AvailableSeats:   input.AvailableSeats,
		ClassType:        input.ClassType,
	}
	if err := s.repo.Create(ctx, flight); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return flight, nil
}

func (s *FlightService) Update(ctx context.Context, id int64, input FlightInput) (*domain.Flight, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	flight := &domain.Flight{
		ID:               id,
		FlightNumber:     input.FlightNumber,
		FlightName:       input.FlightName,
		DepartureAirport: input.DepartureAirport,
		ArrivalAirport:   input.ArrivalAirport,
		DepartureTime:    input.DepartureTime,
		ArrivalTime:      input.ArrivalTime,
		Price:            input.Price,
		AvailableSeats:   input.AvailableSeats,
		ClassType:        input.ClassType,
	}
	if err := s.repo.Update(ctx, flight); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *FlightService) Filter(ctx context.Context, filter repository.FlightFilter) ([]domain.Flight, error) {
	return s.repo.Filter(ctx, filter)
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		logrus.WithError(err).Warn("invalidate flights cache")
	}
}

var _ FlightUseCase = (*FlightService)(nil)
