package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/service"
)

// WeatherHandler handles weather and clothing suggestion requests
type WeatherHandler struct {
	weatherService *service.WeatherService
}

// NewWeatherHandler creates a new WeatherHandler
func NewWeatherHandler(weatherService *service.WeatherService) *WeatherHandler {
	return &WeatherHandler{weatherService: weatherService}
}

// GetCurrent returns current conditions and a clothing suggestion. The city
// query parameter overrides the configured default city.
func (h *WeatherHandler) GetCurrent(c echo.Context) error {
	report, err := h.weatherService.Current(c.Request().Context(), c.QueryParam("city"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch weather")
		return NewInternalError(c, "Failed to fetch weather")
	}

	return c.JSON(http.StatusOK, report)
}

// GetHistory returns the past week of daily conditions with trend aggregates
func (h *WeatherHandler) GetHistory(c echo.Context) error {
	history := h.weatherService.History(c.QueryParam("city"), service.HistoryDays)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"history": history,
		"trends":  service.Trends(history),
	})
}
