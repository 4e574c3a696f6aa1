package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"orders/internal/application/services"
	"orders/internal/domain/bookings"
	"orders/internal/idempotency"
)

type BookingService interface {
	Create(ctx context.Context, menuID int64, status *bookings.Status) (services.EnrichedBooking, error)
	Get(ctx context.Context, id int64) (services.EnrichedBooking, error)
	List(ctx context.Context, userID *int64) ([]services.EnrichedBooking, error)
	ListMine(ctx context.Context) ([]services.EnrichedBooking, error)
	Update(ctx context.Context, id int64, patch bookings.Patch) (services.EnrichedBooking, error)
	UpdateStatus(ctx context.Context, id int64, status bookings.Status) (services.EnrichedBooking, error)
	Cancel(ctx context.Context, id int64) (services.EnrichedBooking, error)
	Delete(ctx context.Context, id int64) error
}

type Server struct {
	e    *echo.Echo
	addr string

	bookings BookingService
}

func NewServer(
	e *echo.Echo,
	addr string,
	bookingService BookingService,
	jwtSecret []byte,
	routerIsRunning func() bool,
) *Server {
	srv := &Server{
		e:        e,
		addr:     addr,
		bookings: bookingService,
	}

	e.HTTPErrorHandler = HandleError

	// logging middleware
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log.FromContext(c.Request().Context()).
				WithField("path", c.Request().URL.Path).
				WithField("method", c.Request().Method).
				Info("Handling a request")

			err := next(c)

			if err != nil {
				log.FromContext(c.Request().Context()).
					WithField("error", err).
					Warn("Request handling error")
			}

			return err
		}
	})
	e.Use(MetricsMiddleware)

	e.GET("/health", func(c echo.Context) error {
		if !routerIsRunning() {
			return c.String(http.StatusServiceUnavailable, "router is not running")
		}
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	orders := e.Group("/orders", JWTMiddleware(jwtSecret), idempotencyMiddleware)
	orders.GET("", srv.ListOrdersHandler)
	orders.GET("/user", srv.ListMyOrdersHandler)
	// the path id is ignored: users only list their own orders here
	orders.GET("/user/:user_id", srv.ListMyOrdersHandler)
	orders.GET("/:id", srv.GetOrderHandler)
	orders.POST("", srv.CreateOrderHandler)
	orders.PUT("/:id", srv.UpdateOrderHandler)
	orders.PATCH("/:id/status", srv.UpdateOrderStatusHandler)
	orders.POST("/:id/cancel", srv.CancelOrderHandler)
	orders.DELETE("/:id", srv.DeleteOrderHandler)

	return srv
}

func idempotencyMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Request().Header.Get(idempotency.Header)
		if key != "" {
			c.SetRequest(c.Request().WithContext(idempotency.WithKey(c.Request().Context(), key)))
		}
		return next(c)
	}
}

func (s *Server) Start() error {
	err := s.e.Start(s.addr)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
