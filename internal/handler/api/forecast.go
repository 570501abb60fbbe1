package api

import (
	models "GridCast/internal/domain/models"
	"GridCast/internal/forecast"
	"GridCast/internal/service/ratelimit"
	"GridCast/internal/usecase"
	xhttp "GridCast/pkg/http"
	xlogger "GridCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ForecastHandler exposes the forecast, alerting, history, and model
// performance endpoints.
type ForecastHandler struct {
	logger      *xlogger.Logger
	forecasts   *usecase.ForecastUseCase
	alerts      *usecase.AlertsUseCase
	historical  *usecase.HistoricalUseCase
	performance *usecase.PerformanceUseCase
	rl          *ratelimit.Limiter
}

func NewForecastHandler(
	logger *xlogger.Logger,
	forecasts *usecase.ForecastUseCase,
	alerts *usecase.AlertsUseCase,
	historical *usecase.HistoricalUseCase,
	performance *usecase.PerformanceUseCase,
) *ForecastHandler {
	return &ForecastHandler{
		logger:      logger,
		forecasts:   forecasts,
		alerts:      alerts,
		historical:  historical,
		performance: performance,
		rl:          ratelimit.New(),
	}
}

func (h *ForecastHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.GET("/forecast/hourly", h.HourlyForecast)
	g.GET("/alerts/check", h.CheckAlerts)
	g.GET("/data/historical", h.Historical)
	g.GET("/model/performance", h.Performance)
}

func (h *ForecastHandler) HourlyForecast(c echo.Context) error {
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":forecast", 5, 2) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", 429))
	}

	res, err := h.forecasts.HourlyForecast(c.Request().Context(), req.Meter, req.Horizon)
	if err != nil {
		return h.forecastError(c, "forecast.hourly", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastHandler) CheckAlerts(c echo.Context) error {
	req := &models.AlertCheckRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":alerts", 5, 2) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", 429))
	}

	alerts, err := h.alerts.Check(c.Request().Context(), req.Meter, req.Threshold)
	if err != nil {
		return h.forecastError(c, "alerts.check", err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"meter":     req.Meter,
		"threshold": req.Threshold,
		"count":     len(alerts),
		"alerts":    alerts,
	})
}

func (h *ForecastHandler) Historical(c echo.Context) error {
	req := &models.HistoricalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	from, ok := xhttp.ParseTime(req.Start)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("invalid start time %q", req.Start))
	}
	to, ok := xhttp.ParseTime(req.End)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("invalid end time %q", req.End))
	}
	if !h.rl.Allow(c.RealIP()+":historical", 3, 1) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", 429))
	}

	res, err := h.historical.GetHistorical(c.Request().Context(), usecase.GetHistoricalParams{
		Meter: req.Meter,
		From:  from,
		To:    to,
		Limit: req.Limit,
	})
	if err != nil {
		h.logger.Error("historical usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastHandler) Performance(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"models": h.performance.Scores(),
	})
}

// forecastError maps engine failures to HTTP responses. Upstream data
// problems (short or stale window, storage outage) are 503 so callers
// can retry; everything else is internal.
func (h *ForecastHandler) forecastError(c echo.Context, endpoint string, err error) error {
	h.logger.Error(endpoint+" usecase error", xlogger.Error(err))
	if forecast.IsKind(err, forecast.ErrUpstream) {
		return xhttp.AppErrorResponse(c, xhttp.UnavailableError("insufficient recent data to forecast").WithError(err))
	}
	return xhttp.AppErrorResponse(c, xhttp.InternalError("forecast failed").WithError(err))
}

var _ xhttp.Handler = (*ForecastHandler)(nil)
