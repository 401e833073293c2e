package domain

import "time"

type Flight struct {
	ID               int64
	FlightNumber     string
	FlightName       string
	DepartureAirport string
	ArrivalAirport   string
	DepartureTime    time.Time
	ArrivalTime      time.Time
	Price            float64
	AvailableSeats   int
	ClassType        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

var ClassTypes = []string{"Economy", "Business", "First"}

func ValidClassType(class string) bool {
	for _, c := range ClassTypes {
		if c == class {
			return true
		}
	}
	return false
}
