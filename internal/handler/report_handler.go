package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nptel-tracker-api/internal/service"
	"github.com/noah-isme/nptel-tracker-api/internal/utils"
)

// ReportHandler exposes the course statistics endpoints. Responses are the
// bare report shapes consumed by the dashboard frontend, not wrapped in the
// API envelope.
type ReportHandler struct {
	service service.ReportService
	logger  zerolog.Logger
}

// NewReportHandler creates a new handler instance.
func NewReportHandler(service service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With().Str("component", "report_handler").Logger(),
	}
}

// Register attaches the report endpoints.
func (h *ReportHandler) Register(router fiber.Router) {
	router.Get("/courses/stats", h.courseStats)
	router.Get("/courses/:courseId/stats", h.courseDetail)
}

func (h *ReportHandler) courseStats(c *fiber.Ctx) error {
	response, err := h.service.CourseStats(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to compute course statistics")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute course statistics")
	}

	return c.JSON(response)
}

func (h *ReportHandler) courseDetail(c *fiber.Ctx) error {
	courseID := strings.TrimSpace(c.Params("courseId"))
	if courseID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "course id is required")
	}

	response, err := h.service.CourseDetail(c.Context(), courseID)
	if err != nil {
		h.logger.Error().Err(err).Str("course_id", courseID).Msg("failed to compute course detail")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute course detail")
	}

	return c.JSON(response)
}
