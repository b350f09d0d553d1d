package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nptel-tracker-api/internal/service"
	"github.com/noah-isme/nptel-tracker-api/internal/utils"
)

// ImportHandler exposes the CSV ingestion endpoints.
type ImportHandler struct {
	service service.ImportService
	logger  zerolog.Logger
}

// NewImportHandler creates a new handler instance.
func NewImportHandler(service service.ImportService, logger zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		service: service,
		logger:  logger.With().Str("component", "import_handler").Logger(),
	}
}

// Register attaches the import endpoints and the audit listing. Guards are
// applied per route so the public roster and report routes sharing the same
// prefix stay unguarded.
func (h *ImportHandler) Register(router fiber.Router, guards ...fiber.Handler) {
	router.Post("/bulk", withGuards(guards, h.importStudents)...)
	router.Post("/updateweekscore", withGuards(guards, h.importWeekScores)...)
	router.Get("/imports", withGuards(guards, h.recentImports)...)
}

func withGuards(guards []fiber.Handler, last fiber.Handler) []fiber.Handler {
	chain := make([]fiber.Handler, 0, len(guards)+1)
	chain = append(chain, guards...)
	return append(chain, last)
}

func (h *ImportHandler) importStudents(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	summary, err := h.service.ImportStudents(c.Context(), file)
	if err != nil {
		return h.importError(c, err, "student import failed")
	}

	return c.JSON(summary)
}

func (h *ImportHandler) importWeekScores(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	summary, err := h.service.ImportWeekScores(c.Context(), file)
	if err != nil {
		return h.importError(c, err, "week score import failed")
	}

	return c.JSON(summary)
}

func (h *ImportHandler) recentImports(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)

	jobs, err := h.service.RecentImports(c.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list import jobs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list import jobs")
	}

	return c.JSON(jobs)
}

func (h *ImportHandler) importError(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, service.ErrImportTooLarge),
		errors.Is(err, service.ErrImportTypeNotAllowed),
		errors.Is(err, service.ErrImportEmpty),
		errors.Is(err, service.ErrImportBadFileName):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg(message)
		return utils.SendError(c, fiber.StatusInternalServerError, message)
	}
}
