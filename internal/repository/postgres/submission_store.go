package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

// SubmissionStore реализует repository.SubmissionStore поверх gorm-транзакции
type SubmissionStore struct {
	db *gorm.DB
}

// NewSubmissionStore создает хранилище для обработки отправок
func NewSubmissionStore(db *gorm.DB) *SubmissionStore {
	return &SubmissionStore{db: db}
}

// RunInTx выполняет fn в транзакции. Ошибка или паника внутри fn откатывают все изменения.
func (s *SubmissionStore) RunInTx(ctx context.Context, fn func(tx repository.SubmissionTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&submissionTx{tx: tx})
	})
}

// submissionTx реализует repository.SubmissionTx
type submissionTx struct {
	tx *gorm.DB
}

func (t *submissionTx) LockAttempt(attemptID uint) (*entity.Attempt, error) {
	var attempt entity.Attempt
	err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&attempt, attemptID).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &attempt, nil
}

func (t *submissionTx) GetQuiz(quizID uint) (*entity.Quiz, error) {
	var quiz entity.Quiz
	if err := t.tx.First(&quiz, quizID).Error; err != nil {
		return nil, translateError(err)
	}
	return &quiz, nil
}

func (t *submissionTx) GetQuestionInQuiz(quizID, questionID uint) (*entity.Question, error) {
	var question entity.Question
	err := t.tx.Where("id = ? AND quiz_id = ?", questionID, quizID).First(&question).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &question, nil
}

func (t *submissionTx) GetOptionForQuestion(questionID, optionID uint) (*entity.Option, error) {
	var option entity.Option
	err := t.tx.Where("id = ? AND question_id = ?", optionID, questionID).First(&option).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &option, nil
}

// UpsertAnswer INSERT ... ON CONFLICT (attempt_id, question_id) DO UPDATE
func (t *submissionTx) UpsertAnswer(answer *entity.StudentAnswer) error {
	now := time.Now()
	answer.UpdatedAt = now
	if answer.CreatedAt.IsZero() {
		answer.CreatedAt = now
	}
	return t.tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"selected_option_id", "is_correct", "updated_at"}),
	}).Create(answer).Error
}

// CompleteAttempt условно переводит попытку в completed.
// RowsAffected == 0 означает, что попытку уже завершил другой запрос.
func (t *submissionTx) CompleteAttempt(attempt *entity.Attempt) error {
	result := t.tx.Model(&entity.Attempt{}).
		Where("id = ? AND status = ?", attempt.ID, entity.AttemptStatusInProgress).
		Updates(map[string]interface{}{
			"status":            entity.AttemptStatusCompleted,
			"end_time":          attempt.EndTime,
			"time_spent":        attempt.TimeSpent,
			"score":             attempt.Score,
			"max_score":         attempt.MaxScore,
			"percentage":        attempt.Percentage,
			"passed":            attempt.Passed,
			"correct_answers":   attempt.CorrectAnswers,
			"incorrect_answers": attempt.IncorrectAnswers,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("complete attempt #%d failed: %w", attempt.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: attempt #%d is already completed", apperrors.ErrConflict, attempt.ID)
	}
	attempt.Status = entity.AttemptStatusCompleted
	return nil
}
