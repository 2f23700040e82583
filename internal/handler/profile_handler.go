package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizmaster-api/internal/handler/dto"
	"github.com/yourusername/quizmaster-api/internal/service"
)

type profileService interface {
	GetProfile(userID uint) (*service.Profile, error)
	UpdateProfile(userID uint, in service.ProfileUpdate) (*service.Profile, error)
}

// ProfileHandler обрабатывает запросы к профилю текущего пользователя
type ProfileHandler struct {
	profileService profileService
}

// NewProfileHandler создает новый обработчик профилей
func NewProfileHandler(profileService profileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// GetProfile GET /api/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetProfile(userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile PUT /api/profile
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	profile, err := h.profileService.UpdateProfile(userID, service.ProfileUpdate{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           req.Phone,
		Bio:             req.Bio,
		Qualification:   req.Qualification,
		Specialization:  req.Specialization,
		YearsExperience: req.YearsExperience,
		Institution:     req.Institution,
		Grade:           req.Grade,
		School:          req.School,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully!", "profile": profile})
}
