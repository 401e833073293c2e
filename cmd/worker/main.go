package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nmoskvitin/skyfare/config"
	"github.com/nmoskvitin/skyfare/internal/email"
	"github.com/nmoskvitin/skyfare/internal/kafka"
	"github.com/nmoskvitin/skyfare/internal/repository"
	"github.com/nmoskvitin/skyfare/internal/service/booking"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logrus.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	bookingService := booking.NewBookingService(
		bookingRepo,
		flightRepo,
		nil, // the sweep never talks to the payment gateway
		producer,
		cfg.Kafka.BookingTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	mailer := email.NewSender(cfg.Email)

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.BookingEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				logrus.WithError(err).Warn("decode booking event")
				return nil
			}
			if err := mailer.SendBookingEvent(event); err != nil {
				logrus.WithError(err).WithField("booking_id", event.BookingID).Warn("send notification email")
			}
			return nil
		}); err != nil {
			logrus.WithError(err).Info("consumer stopped")
		}
	}()

	sweepInterval := time.Duration(cfg.Worker.SweepIntervalMinutes) * time.Minute
	if sweepInterval == 0 {
		sweepInterval = 5 * time.Minute
	}
	maxAge := time.Duration(cfg.Worker.PendingMaxAgeMinutes) * time.Minute
	if maxAge == 0 {
		maxAge = 30 * time.Minute
	}

	sweepTicker := time.NewTicker(sweepInterval)
	defer sweepTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sweepTicker.C:
			cancelled, err := bookingService.CancelStalePending(ctx, maxAge)
			if err != nil {
				logrus.WithError(err).Error("cancel stale bookings")
				continue
			}
			if len(cancelled) > 0 {
				logrus.Infof("cancelled %d stale pending bookings", len(cancelled))
			}
		case s := <-sig:
			logrus.Infof("received signal %v, shutting down", s)
			return
		}
	}
}
