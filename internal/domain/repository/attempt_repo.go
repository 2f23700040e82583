package repository

import (
	"time"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
)

// AttemptScope выбирает набор попыток для списков и аналитики.
// Ненулевые поля комбинируются через AND.
type AttemptScope struct {
	TeacherID     uint // попытки по викторинам преподавателя
	QuizID        uint
	StudentID     uint
	CompletedOnly bool
}

// AttemptRepository определяет методы для работы с попытками
type AttemptRepository interface {
	// GetByID возвращает попытку вместе с викториной
	GetByID(id uint) (*entity.Attempt, error)
	// StartOrResume атомарно возвращает завершённую попытку студента, если она есть,
	// иначе существующую in_progress попытку или новую. created=true, если попытка была создана.
	StartOrResume(studentID, quizID uint, now time.Time) (attempt *entity.Attempt, created bool, err error)
	FindInProgress(studentID, quizID uint) (*entity.Attempt, error)
	// List возвращает попытки в рамках scope; limit <= 0 - без ограничения.
	// Завершённые сортируются по end_time DESC, остальные по start_time DESC.
	List(scope AttemptScope, limit int) ([]entity.Attempt, error)
	Count(scope AttemptScope) (int64, error)
	// CountDistinctStudents количество уникальных студентов, проходивших викторины преподавателя
	CountDistinctStudents(teacherID uint) (int64, error)
	// GetAnswers возвращает ответы попытки с вопросами и выбранными вариантами
	GetAnswers(attemptID uint) ([]entity.StudentAnswer, error)
}
