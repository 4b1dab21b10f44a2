package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/hadir-app/hadir-api/internal/dto"
	"github.com/hadir-app/hadir-api/internal/service"
	"github.com/hadir-app/hadir-api/internal/utils"
)

// AttendanceHandler exposes the ledger CRUD endpoints plus the QR scan
// check-in endpoint.
type AttendanceHandler struct {
	attendance service.AttendanceService
	checkIn    service.CheckInService
	logger     zerolog.Logger
}

// NewAttendanceHandler constructs an attendance handler.
func NewAttendanceHandler(attendance service.AttendanceService, checkIn service.CheckInService, logger zerolog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		attendance: attendance,
		checkIn:    checkIn,
		logger:     logger.With().Str("component", "attendance_handler").Logger(),
	}
}

// Register wires attendance routes. Scan carries its own rate limiter,
// applied by the router.
func (h *AttendanceHandler) Register(router fiber.Router, scanLimiter fiber.Handler) {
	router.Get("", h.list)
	router.Post("", h.create)
	if scanLimiter != nil {
		router.Post("/scan", scanLimiter, h.scan)
	} else {
		router.Post("/scan", h.scan)
	}
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *AttendanceHandler) list(c *fiber.Ctx) error {
	var req dto.AttendanceListRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	response, err := h.attendance.List(c.Context(), req)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list attendances")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list attendances")
	}

	return utils.SendSuccess(c, "attendances retrieved", response)
}

func (h *AttendanceHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	record, err := h.attendance.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAttendanceNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "attendance record not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch attendance")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch attendance")
	}

	return utils.SendSuccess(c, "attendance retrieved", record)
}

func (h *AttendanceHandler) create(c *fiber.Ctx) error {
	var payload dto.AttendanceCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	record, err := h.attendance.Record(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		var duplicate *service.DuplicateAttendanceError
		switch {
		case errors.As(err, &duplicate):
			return c.Status(fiber.StatusConflict).JSON(utils.APIResponse{
				Success: false,
				Data:    fiber.Map{"existing_attendance": duplicate.Existing},
				Message: duplicate.Error(),
			})
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to record attendance")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to record attendance")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "attendance recorded", record)
}

func (h *AttendanceHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.AttendanceUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	record, err := h.attendance.Update(c.Context(), id, payload)
	if err != nil {
		var duplicate *service.DuplicateAttendanceError
		switch {
		case errors.Is(err, service.ErrAttendanceNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "attendance record not found")
		case errors.As(err, &duplicate):
			return c.Status(fiber.StatusConflict).JSON(utils.APIResponse{
				Success: false,
				Data:    fiber.Map{"existing_attendance": duplicate.Existing},
				Message: duplicate.Error(),
			})
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update attendance")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update attendance")
		}
	}

	return utils.SendSuccess(c, "attendance updated", record)
}

func (h *AttendanceHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.attendance.Delete(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrAttendanceNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "attendance record not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete attendance")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete attendance")
	}

	return utils.SendSuccess(c, "attendance deleted", fiber.Map{"id": id})
}

// scan returns the bare scan envelope rather than the standard wrapper
// so scanner clients get one stable shape for success and rejection.
func (h *AttendanceHandler) scan(c *fiber.Ctx) error {
	var payload dto.ScanRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.checkIn.Scan(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		var duplicate *service.DuplicateAttendanceError
		switch {
		case errors.Is(err, service.ErrCredentialNotFound):
			return c.Status(fiber.StatusNotFound).JSON(response)
		case errors.As(err, &duplicate):
			return c.Status(fiber.StatusConflict).JSON(response)
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("scan check-in failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "scan check-in failed")
		}
	}

	return c.JSON(response)
}
