package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizmaster-api/internal/service"
)

type dashboardService interface {
	TeacherDashboard(teacherID uint) (*service.TeacherDashboard, error)
	StudentDashboard(studentID uint) (*service.StudentDashboard, error)
}

// DashboardHandler отдаёт дашборды преподавателя и студента
type DashboardHandler struct {
	dashboardService dashboardService
}

// NewDashboardHandler создает новый обработчик дашбордов
func NewDashboardHandler(dashboardService dashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// TeacherDashboard GET /api/teacher/dashboard
func (h *DashboardHandler) TeacherDashboard(c *gin.Context) {
	teacherID, ok := requireUserID(c)
	if !ok {
		return
	}

	dashboard, err := h.dashboardService.TeacherDashboard(teacherID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// StudentDashboard GET /api/student/dashboard
func (h *DashboardHandler) StudentDashboard(c *gin.Context) {
	studentID, ok := requireUserID(c)
	if !ok {
		return
	}

	dashboard, err := h.dashboardService.StudentDashboard(studentID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
