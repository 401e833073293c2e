package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/nmoskvitin/skyfare/api"
	"github.com/nmoskvitin/skyfare/config"
	"github.com/nmoskvitin/skyfare/internal/auth"
	"github.com/nmoskvitin/skyfare/internal/service/booking"
	"github.com/nmoskvitin/skyfare/internal/service/flights"
	"github.com/nmoskvitin/skyfare/internal/service/users"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Deps struct {
	Tokens     *auth.TokenManager
	Revocation auth.RevocationStore
	Users      users.UserUseCase
	Flights    flights.FlightUseCase
	Bookings   booking.BookingUseCase
}

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, deps Deps) error {
	engine := newEngine(cfg, deps)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newEngine(cfg *config.Config, deps Deps) *gin.Engine {
	api.RegisterValidators()

	engine := gin.Default()
	if len(cfg.HTTP.AllowedOrigins) > 0 {
		engine.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.HTTP.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
		}))
	}

	authMW := auth.Middleware(deps.Tokens, deps.Revocation)

	v1 := engine.Group("/api/v1")

	authHandler := api.NewAuthHandler(deps.Users)
	authHandler.Register(v1.Group("/auth"))

	flightHandler := api.NewFlightHandler(deps.Flights)
	flightHandler.Register(v1.Group("/flights"), v1.Group("/flights", authMW))

	bookingHandler := api.NewBookingHandler(deps.Bookings)
	bookingHandler.Register(v1.Group("/bookings", authMW))

	userHandler := api.NewUserHandler(deps.Users)
	userHandler.Register(v1.Group("/users", authMW))

	if cfg.HTTP.SwaggerDir != "" {
		engine.StaticFS("/swagger", http.Dir(cfg.HTTP.SwaggerDir))
		engine.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(
			httpSwagger.URL("/swagger/openapi.json"),
		)))
	}

	return engine
}
