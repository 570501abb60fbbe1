package http

import "github.com/labstack/echo/v4"

// Handler is implemented by every endpoint group the server mounts.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}
