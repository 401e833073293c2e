package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nmoskvitin/skyfare/internal/domain"
)

// FlightFilter holds optional search criteria. Airports match exactly,
// times match greater-or-equal.
type FlightFilter struct {
	DepartureAirport string
	ArrivalAirport   string
	DepartureTime    *time.Time
	ArrivalTime      *time.Time
}

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Create(ctx context.Context, flight *domain.Flight) error
	Update(ctx context.Context, flight *domain.Flight) error
	Delete(ctx context.Context, id int64) error
	Filter(ctx context.Context, filter FlightFilter) ([]domain.Flight, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, flight_number, flight_name, departure_airport, arrival_airport, departure_time, arrival_time, price, available_seats, class_type, created_at, updated_at`

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.FlightNumber, &f.FlightName, &f.DepartureAirport, &f.ArrivalAirport, &f.DepartureTime, &f.ArrivalTime, &f.Price, &f.AvailableSeats, &f.ClassType, &f.CreatedAt, &f.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func collectFlights(rows pgx.Rows) ([]domain.Flight, error) {
	defer rows.Close()
	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := rows.Scan(&f.ID, &f.FlightNumber, &f.FlightName, &f.DepartureAirport, &f.ArrivalAirport, &f.DepartureTime, &f.ArrivalTime, &f.Price, &f.AvailableSeats, &f.ClassType, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY departure_time`)
	if err != nil {
		return nil, err
	}
	return collectFlights(rows)
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id)
	return scanFlight(row)
}

func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	return r.db.QueryRow(ctx, `INSERT INTO flights (flight_number, flight_name, departure_airport, arrival_airport, departure_time, arrival_time, price, available_seats, class_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		flight.FlightNumber, flight.FlightName, flight.DepartureAirport, flight.ArrivalAirport,
		flight.DepartureTime, flight.ArrivalTime, flight.Price, flight.AvailableSeats, flight.ClassType).
		Scan(&flight.ID, &flight.CreatedAt, &flight.UpdatedAt)
}

func (r *PGFlightRepository) Update(ctx context.Context, flight *domain.Flight) error {
	res, err := r.db.Exec(ctx, `UPDATE flights SET flight_number=$1, flight_name=$2, departure_airport=$3, arrival_airport=$4, departure_time=$5, arrival_time=$6, price=$7, available_seats=$8, class_type=$9, updated_at=now() WHERE id=$10`,
		flight.FlightNumber, flight.FlightName, flight.DepartureAirport, flight.ArrivalAirport,
		flight.DepartureTime, flight.ArrivalTime, flight.Price, flight.AvailableSeats, flight.ClassType, flight.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGFlightRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.Exec(ctx, `DELETE FROM flights WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGFlightRepository) Filter(ctx context.Context, filter FlightFilter) ([]domain.Flight, error) {
	query := `SELECT ` + flightColumns + ` FROM flights WHERE 1=1`
	args := make([]any, 0, 4)

	if filter.DepartureAirport != "" {
		args = append(args, filter.DepartureAirport)
		query += fmt.Sprintf(" AND departure_airport=$%d", len(args))
	}
	if filter.ArrivalAirport != "" {
		args = append(args, filter.ArrivalAirport)
		query += fmt.Sprintf(" AND arrival_airport=$%d", len(args))
	}
	if filter.DepartureTime != nil {
		args = append(args, *filter.DepartureTime)
		query += fmt.Sprintf(" AND departure_time >= $%d", len(args))
	}
	if filter.ArrivalTime != nil {
		args = append(args, *filter.ArrivalTime)
		query += fmt.Sprintf(" AND arrival_time >= $%d", len(args))
	}
	query += " ORDER BY departure_time"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectFlights(rows)
}

var _ FlightRepository = (*PGFlightRepository)(nil)
