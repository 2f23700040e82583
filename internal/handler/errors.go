package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizmaster-api/internal/middleware"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

// Ограничения пагинации
const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// handleError преобразует ошибку сервиса в HTTP ответ
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("ERROR: Internal server error in %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// currentUserID возвращает ID пользователя, сохранённый middleware аутентификации
func currentUserID(c *gin.Context) (uint, bool) {
	raw, exists := c.Get(middleware.ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := raw.(uint)
	return id, ok && id > 0
}

// requireUserID как currentUserID, но сам отвечает 401
func requireUserID(c *gin.Context) (uint, bool) {
	id, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
	return id, ok
}

// pageParams читает page и page_size из query и возвращает limit и offset
func pageParams(c *gin.Context) (page, pageSize, offset int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if err != nil || pageSize < 1 {
		pageSize = defaultPageSize
	} else if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize, (page - 1) * pageSize
}
