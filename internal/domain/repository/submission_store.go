package repository

import (
	"context"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
)

// SubmissionStore выполняет обработку отправки ответов в одной транзакции.
// Если fn возвращает ошибку, все изменения откатываются.
type SubmissionStore interface {
	RunInTx(ctx context.Context, fn func(tx SubmissionTx) error) error
}

// SubmissionTx операции, доступные внутри транзакции отправки
type SubmissionTx interface {
	// LockAttempt читает попытку с блокировкой строки (SELECT ... FOR UPDATE)
	LockAttempt(attemptID uint) (*entity.Attempt, error)
	GetQuiz(quizID uint) (*entity.Quiz, error)
	// GetQuestionInQuiz ищет вопрос только среди вопросов викторины; ErrNotFound если чужой
	GetQuestionInQuiz(quizID, questionID uint) (*entity.Question, error)
	// GetOptionForQuestion ищет вариант только среди вариантов вопроса; ErrNotFound если чужой
	GetOptionForQuestion(questionID, optionID uint) (*entity.Option, error)
	// UpsertAnswer вставляет или перезаписывает ответ по (attempt_id, question_id)
	UpsertAnswer(answer *entity.StudentAnswer) error
	// CompleteAttempt переводит попытку in_progress -> completed условным UPDATE.
	// Если попытка уже не in_progress, возвращает ErrConflict.
	CompleteAttempt(attempt *entity.Attempt) error
}
