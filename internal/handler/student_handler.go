package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nptel-tracker-api/internal/dto"
	"github.com/noah-isme/nptel-tracker-api/internal/service"
	"github.com/noah-isme/nptel-tracker-api/internal/utils"
)

// StudentHandler exposes read access to the student roster.
type StudentHandler struct {
	service service.StudentService
	logger  zerolog.Logger
}

// NewStudentHandler creates a new handler instance.
func NewStudentHandler(service service.StudentService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		service: service,
		logger:  logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register attaches the student endpoints. The unsubmitted route registers
// before the roll number parameter so "unsubmitted" never binds as one.
func (h *StudentHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/unsubmitted", h.unsubmitted)
	router.Get("/:rollNumber", h.get)
}

func (h *StudentHandler) list(c *fiber.Ctx) error {
	var req dto.StudentListRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid filter parameters")
	}

	students, err := h.service.List(c.Context(), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list students")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list students")
	}

	return c.JSON(students)
}

func (h *StudentHandler) unsubmitted(c *fiber.Ctx) error {
	var filter dto.ReportFilter
	if err := c.QueryParser(&filter); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid filter parameters")
	}

	if strings.TrimSpace(filter.Week) == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "week is required")
	}
	if strings.TrimSpace(filter.CourseID) == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "courseId is required")
	}

	students, err := h.service.Unsubmitted(c.Context(), filter)
	if err != nil {
		h.logger.Error().Err(err).Str("week", filter.Week).Msg("failed to list unsubmitted students")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list unsubmitted students")
	}

	return c.JSON(students)
}

func (h *StudentHandler) get(c *fiber.Ctx) error {
	rollNumber := strings.TrimSpace(c.Params("rollNumber"))

	student, err := h.service.GetByRollNumber(c.Context(), rollNumber)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		h.logger.Error().Err(err).Str("roll_number", rollNumber).Msg("failed to load student")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load student")
	}

	return c.JSON(student)
}
