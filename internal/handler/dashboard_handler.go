package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/middleware"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/service"
)

// DashboardHandler handles the aggregated home-screen view
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetSummary returns the dashboard for the authenticated user
func (h *DashboardHandler) GetSummary(c echo.Context) error {
	userID := middleware.GetUserID(c)

	dashboard, err := h.dashboardService.Get(c.Request().Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build dashboard")
		return NewInternalError(c, "Failed to build dashboard")
	}

	return c.JSON(http.StatusOK, dashboard)
}
