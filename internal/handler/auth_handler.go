package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/handler/dto"
	"github.com/yourusername/quizmaster-api/internal/middleware"
	"github.com/yourusername/quizmaster-api/internal/service"
	"github.com/yourusername/quizmaster-api/pkg/auth"
)

// authService операции AuthService, нужные обработчику
type authService interface {
	RegisterTeacher(input service.RegisterInput) (*entity.User, error)
	RegisterStudent(input service.RegisterInput) (*entity.User, error)
	Login(identifier, password, expectedRole string) (*service.LoginResult, error)
	Logout(ctx context.Context, claims *auth.JWTCustomClaims) error
}

// AuthHandler обрабатывает запросы, связанные с аутентификацией
type AuthHandler struct {
	authService authService
}

// NewAuthHandler создает новый обработчик аутентификации
func NewAuthHandler(authService authService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterTeacher POST /api/auth/teacher/register
func (h *AuthHandler) RegisterTeacher(c *gin.Context) {
	h.register(c, h.authService.RegisterTeacher)
}

// RegisterStudent POST /api/auth/student/register
func (h *AuthHandler) RegisterStudent(c *gin.Context) {
	h.register(c, h.authService.RegisterStudent)
}

func (h *AuthHandler) register(c *gin.Context, create func(service.RegisterInput) (*entity.User, error)) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := create(service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Password2: req.Password2,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	log.Printf("[AuthHandler] Пользователь ID=%d (%s, %s) зарегистрирован", user.ID, user.Username, user.Role)
	c.JSON(http.StatusCreated, gin.H{
		"user":    user,
		"message": "Registration successful! Please login.",
	})
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	res, err := h.authService.Login(req.Username, req.Password, req.Role)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":       res.User,
		"token":      res.Token,
		"token_type": "Bearer",
		"expires_at": res.ExpiresAt,
	})
}

// Logout POST /api/auth/logout: отзывает текущий токен
func (h *AuthHandler) Logout(c *gin.Context) {
	raw, exists := c.Get(middleware.ContextClaims)
	claims, ok := raw.(*auth.JWTCustomClaims)
	if !exists || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		log.Printf("[AuthHandler] Ошибка отзыва токена пользователя ID=%d: %v", claims.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to logout"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
