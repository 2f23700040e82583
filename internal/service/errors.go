package service

import (
	"errors"
	"fmt"

	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

// Ошибки сервисного слоя, на которые опираются обработчики
var (
	// ErrAttemptNotFound нет незавершённой попытки студента (или попытка чужая)
	ErrAttemptNotFound = errors.New("quiz attempt not found")
	// ErrAttemptAlreadySubmitted попытка уже завершена
	ErrAttemptAlreadySubmitted = fmt.Errorf("%w: quiz attempt already submitted", apperrors.ErrConflict)
	// ErrInvalidCredentials неверный логин или пароль
	ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", apperrors.ErrUnauthorized)
)

// CompletedAttemptError студент уже прошёл викторину; повторные попытки не поддерживаются
type CompletedAttemptError struct {
	AttemptID uint
}

func (e *CompletedAttemptError) Error() string {
	return fmt.Sprintf("quiz already completed (attempt #%d)", e.AttemptID)
}

// Is позволяет errors.Is(err, apperrors.ErrConflict)
func (e *CompletedAttemptError) Is(target error) bool {
	return target == apperrors.ErrConflict
}
