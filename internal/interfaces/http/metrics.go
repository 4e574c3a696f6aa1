package http

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewSummaryVec(prometheus.SummaryOpts{
		Name:       "http_request_duration_seconds",
		Help:       "Duration of HTTP requests in seconds",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	}, []string{"method", "path"})
)

func MetricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)

		status := c.Response().Status
		if err != nil {
			status = statusCode(err)
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
		}

		httpRequestDuration.WithLabelValues(c.Request().Method, c.Path()).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(c.Request().Method, c.Path(), strconv.Itoa(status)).Inc()

		return err
	}
}
