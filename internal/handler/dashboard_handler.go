package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nptel-tracker-api/internal/dto"
	"github.com/noah-isme/nptel-tracker-api/internal/service"
	"github.com/noah-isme/nptel-tracker-api/internal/utils"
)

// DashboardHandler exposes the composite dashboard endpoint.
type DashboardHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

// NewDashboardHandler creates a new handler instance.
func NewDashboardHandler(service service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register attaches the dashboard endpoint.
func (h *DashboardHandler) Register(router fiber.Router) {
	router.Get("/dashboard", h.getDashboard)
}

func (h *DashboardHandler) getDashboard(c *fiber.Ctx) error {
	var filter dto.ReportFilter
	if err := c.QueryParser(&filter); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid filter parameters")
	}

	response, err := h.service.Dashboard(c.Context(), filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to compute dashboard")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute dashboard")
	}

	return c.JSON(response)
}
