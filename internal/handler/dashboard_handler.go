package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/hadir-app/hadir-api/internal/dto"
	"github.com/hadir-app/hadir-api/internal/models"
	"github.com/hadir-app/hadir-api/internal/service"
	"github.com/hadir-app/hadir-api/internal/utils"
)

// DashboardHandler serves the role-scoped dashboard.
type DashboardHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

// NewDashboardHandler constructs a dashboard handler.
func NewDashboardHandler(service service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register wires the dashboard route.
func (h *DashboardHandler) Register(router fiber.Router) {
	router.Get("", h.dashboard)
}

// dashboard dispatches on the authenticated role; each role sees a
// different aggregate.
func (h *DashboardHandler) dashboard(c *fiber.Ctx) error {
	role := userRoleFromContext(c)
	userID := userIDFromContext(c)

	response := dto.DashboardResponse{Role: role}

	var err error
	switch role {
	case models.RoleAdmin:
		var admin dto.AdminDashboardResponse
		admin, err = h.service.GetAdminDashboard(c.Context())
		response.Admin = &admin
	case models.RoleTeacher:
		var teacher dto.TeacherDashboardResponse
		teacher, err = h.service.GetTeacherDashboard(c.Context(), userID)
		response.Teacher = &teacher
	case models.RoleStudent:
		var student dto.StudentDashboardResponse
		student, err = h.service.GetStudentDashboard(c.Context(), userID)
		response.Student = &student
	default:
		return utils.SendError(c, fiber.StatusForbidden, "unknown role")
	}

	if err != nil {
		switch {
		case errors.Is(err, service.ErrTeacherNotFound), errors.Is(err, service.ErrStudentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Str("role", role).Msg("failed to build dashboard")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to build dashboard")
		}
	}

	return utils.SendSuccess(c, "dashboard retrieved", response)
}
