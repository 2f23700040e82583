package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
)

// RegisterValidators регистрирует пользовательские правила в валидаторе gin.
// Вызывается один раз при старте, до регистрации маршрутов.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("difficulty", validateDifficulty); err != nil {
		return fmt.Errorf("register difficulty validator: %w", err)
	}
	return nil
}

func validateDifficulty(fl validator.FieldLevel) bool {
	return entity.IsValidDifficulty(fl.Field().String())
}

// respondBindError отвечает 400 на ошибку разбора или валидации тела запроса.
// Ошибки валидатора группируются по полям: {"title": "required"}.
func respondBindError(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fe.Tag()
	}
	log.Printf("[Handler] Validation failed for %s %s: %v", c.Request.Method, c.FullPath(), fields)
	c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": fields})
}
