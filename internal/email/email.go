package email

import (
	"fmt"
	"net/smtp"

	"github.com/nmoskvitin/skyfare/config"
	"github.com/nmoskvitin/skyfare/internal/kafka"
	"github.com/sirupsen/logrus"
)

// Sender delivers plain-text mail over SMTP. When disabled it only logs,
// which keeps local development working without credentials.
type Sender struct {
	cfg config.EmailConfig
}

func NewSender(cfg config.EmailConfig) *Sender {
	return &Sender{cfg: cfg}
}

func (s *Sender) SendWelcome(to, name string) error {
	body := fmt.Sprintf("Hello %s,\n\nYour skyfare account is ready. Happy travels!\n", name)
	return s.send(to, "Welcome to skyfare", body)
}

func (s *Sender) SendBookingEvent(event kafka.BookingEvent) error {
	var subject, body string
	switch event.Type {
	case "booking_confirmed":
		subject = fmt.Sprintf("Booking #%d confirmed", event.BookingID)
		body = fmt.Sprintf("Hello %s,\n\nYour booking on %s is confirmed.\nSeats: %d\nTotal: %.2f\n",
			event.PassengerName, event.FlightName, event.NumberOfSeats, event.TotalPrice)
	case "booking_cancelled":
		subject = fmt.Sprintf("Booking #%d cancelled", event.BookingID)
		body = fmt.Sprintf("Hello %s,\n\nYour booking on %s has been cancelled.\n",
			event.PassengerName, event.FlightName)
	default:
		return nil
	}
	return s.send(event.PassengerEmail, subject, body)
}

func (s *Sender) send(to, subject, body string) error {
	if !s.cfg.Enabled {
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("email disabled, skipping send")
		return nil
	}

	headers := map[string]string{
		"From":         s.cfg.From,
		"To":           to,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/plain; charset=UTF-8",
	}

	message := ""
	for key, value := range headers {
		message += fmt.Sprintf("%s: %s\r\n", key, value)
	}
	message += "\r\n" + body

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(message))
}
