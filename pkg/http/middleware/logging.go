package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	applogger "CoinScope/pkg/logger"
)

// RequestLogging logs every request with its id, route, status and latency.
// 5xx responses are logged as errors, 4xx as warnings.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if l == nil {
				return next(c)
			}
			req := c.Request()
			res := c.Response()
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			fields := []applogger.Field{
				applogger.String("request_id", RequestIDFrom(c)),
				applogger.String("method", req.Method),
				applogger.String("route", routeLabel(c)),
				applogger.String("uri", req.RequestURI),
				applogger.String("remote", c.RealIP()),
				applogger.Int("status", res.Status),
				applogger.Int64("bytes", res.Size),
				applogger.Duration("latency", time.Since(start)),
			}
			switch {
			case res.Status >= 500:
				l.Error("http request failed", fields...)
			case res.Status >= 400:
				l.Warn("http request rejected", fields...)
			default:
				l.Info("http request", fields...)
			}
			return nil
		}
	}
}
