package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nmoskvitin/skyfare/config"
	"github.com/nmoskvitin/skyfare/internal/auth"
	"github.com/nmoskvitin/skyfare/internal/bootstrap"
	"github.com/nmoskvitin/skyfare/internal/cache"
	"github.com/nmoskvitin/skyfare/internal/email"
	"github.com/nmoskvitin/skyfare/internal/kafka"
	"github.com/nmoskvitin/skyfare/internal/payments"
	"github.com/nmoskvitin/skyfare/internal/repository"
	"github.com/nmoskvitin/skyfare/internal/service/booking"
	"github.com/nmoskvitin/skyfare/internal/service/flights"
	"github.com/nmoskvitin/skyfare/internal/service/users"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logrus.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	flightsTTL := time.Duration(cfg.Booking.FlightsCacheTTLSeconds) * time.Second
	redisCache := cache.NewRedisCache(cfg.Redis, flightsTTL)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	tokenTTL := time.Duration(cfg.Auth.TokenTTLHours) * time.Hour
	if tokenTTL == 0 {
		tokenTTL = 24 * time.Hour
	}
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, tokenTTL)
	gateway := payments.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.Currency)
	mailer := email.NewSender(cfg.Email)

	userRepo := repository.NewUserRepository(pool)
	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	userService := users.NewUserService(userRepo, tokens, redisCache, mailer)
	flightService := flights.NewFlightService(flightRepo, redisCache, flightsTTL)
	bookingService := booking.NewBookingService(
		bookingRepo,
		flightRepo,
		gateway,
		producer,
		cfg.Kafka.BookingTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	deps := bootstrap.Deps{
		Tokens:     tokens,
		Revocation: redisCache,
		Users:      userService,
		Flights:    flightService,
		Bookings:   bookingService,
	}

	if err := bootstrap.Run(ctx, cfg, deps); err != nil {
		logrus.Fatalf("server error: %v", err)
	}
}
