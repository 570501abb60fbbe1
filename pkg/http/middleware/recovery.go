package middleware

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
)

// Recover converts a handler panic into a logged 500 so one bad
// request cannot take the serving process down.
func Recover() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = recovered(c, r)
				}
			}()
			return next(c)
		}
	}
}

func recovered(c echo.Context, r interface{}) error {
	cause, ok := r.(error)
	if !ok {
		cause = fmt.Errorf("%v", r)
	}
	req := c.Request()
	log.Printf("panic on %s %s: %v\n%s", req.Method, req.RequestURI, cause, debug.Stack())

	if c.Response().Committed {
		return nil
	}
	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"status":  http.StatusInternalServerError,
		"message": "Internal Server Error",
	})
}
