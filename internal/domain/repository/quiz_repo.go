package repository

import (
	"github.com/yourusername/quizmaster-api/internal/domain/entity"
)

// QuizFilters определяет фильтры для поиска викторин
type QuizFilters struct {
	CreatedBy  uint   // Только викторины преподавателя (0 - все)
	Status     string // active / inactive
	Category   string
	Difficulty string
	Search     string // Поиск по названию/описанию
}

// QuizCounts количество вопросов и попыток по викторине
type QuizCounts struct {
	QuestionCount int64 `json:"question_count"`
	AttemptCount  int64 `json:"attempt_count"`
}

// QuizRepository определяет методы для работы с викторинами
type QuizRepository interface {
	// CreateWithQuestions сохраняет викторину вместе с вопросами и вариантами атомарно
	CreateWithQuestions(quiz *entity.Quiz) error
	GetByID(id uint) (*entity.Quiz, error)
	// GetWithQuestions возвращает викторину с вопросами (по order) и вариантами
	GetWithQuestions(id uint) (*entity.Quiz, error)
	Update(quiz *entity.Quiz) error
	Delete(id uint) error
	List(filters QuizFilters, limit, offset int) ([]entity.Quiz, int64, error)
	// CountByTeacher возвращает общее количество викторин преподавателя и количество активных
	CountByTeacher(teacherID uint) (total int64, active int64, err error)
	GetCounts(quizIDs []uint) (map[uint]QuizCounts, error)
}

// QuestionRepository определяет методы для работы с вопросами и вариантами
type QuestionRepository interface {
	GetByID(id uint) (*entity.Question, error)
	// GetByQuizID возвращает вопросы викторины по полю order, с вариантами
	GetByQuizID(quizID uint) ([]entity.Question, error)
	CountByQuizID(quizID uint) (int64, error)
	// AddToQuiz добавляет вопросы в конец викторины, продолжая нумерацию order
	AddToQuiz(quizID uint, questions []entity.Question) error
	Delete(id uint) error
	// ReplaceOptions атомарно заменяет варианты ответа вопроса
	ReplaceOptions(questionID uint, options []entity.Option) error
}
