package receipt

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/nmoskvitin/skyfare/internal/domain"
)

// Generate renders a one-page PDF receipt for a booking.
func Generate(booking *domain.Booking) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(190, 10, "skyfare")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(190, 10, fmt.Sprintf("Booking receipt #%d", booking.ID))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(190, 10, fmt.Sprintf("Passenger: %s", booking.PassengerName))
	pdf.Ln(8)
	pdf.Cell(190, 10, fmt.Sprintf("Flight: %s", booking.FlightName))
	pdf.Ln(8)
	pdf.Cell(190, 10, fmt.Sprintf("Class: %s", booking.ClassType))
	pdf.Ln(8)
	pdf.Cell(190, 10, fmt.Sprintf("Seats: %d", booking.NumberOfSeats))
	pdf.Ln(8)
	pdf.Cell(190, 10, fmt.Sprintf("Total: %.2f", booking.TotalPrice))
	pdf.Ln(8)
	pdf.Cell(190, 10, fmt.Sprintf("Status: %s", booking.Status))
	pdf.Ln(8)
	pdf.Cell(190, 10, fmt.Sprintf("Booked at: %s", booking.CreatedAt.Format("2006-01-02 15:04:05")))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
