package middleware

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestLogging writes one line per request with status, caller, and
// latency once the handler chain returns.
func RequestLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			req := c.Request()
			log.Printf("%d %s %s from=%s took=%s",
				c.Response().Status,
				req.Method,
				req.RequestURI,
				c.RealIP(),
				time.Since(start),
			)
			return err
		}
	}
}
