package postgres

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
)

// AttemptRepo реализует repository.AttemptRepository
type AttemptRepo struct {
	db *gorm.DB
}

// NewAttemptRepo создает новый репозиторий попыток
func NewAttemptRepo(db *gorm.DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// GetByID возвращает попытку с викториной
func (r *AttemptRepo) GetByID(id uint) (*entity.Attempt, error) {
	var attempt entity.Attempt
	if err := r.db.Preload("Quiz").Preload("Student").First(&attempt, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &attempt, nil
}

// StartOrResume в одной транзакции блокирует попытки студента по викторине (FOR UPDATE)
// и возвращает завершённую, незавершённую или новую попытку.
// Завершить можно только существующую in_progress попытку, а отправка ответов держит её строку
// под тем же локом, поэтому параллельный submit сериализуется с этим чтением.
// Частичный уникальный индекс idx_attempts_single_in_progress не даёт создать вторую
// in_progress попытку: при гонке проигравший получает 23505 и повторяет выборку.
func (r *AttemptRepo) StartOrResume(studentID, quizID uint, now time.Time) (*entity.Attempt, bool, error) {
	attempt, created, err := r.startOrResume(studentID, quizID, now)
	if err != nil && isUniqueViolation(err) {
		return r.startOrResume(studentID, quizID, now)
	}
	return attempt, created, err
}

func (r *AttemptRepo) startOrResume(studentID, quizID uint, now time.Time) (*entity.Attempt, bool, error) {
	var (
		result  *entity.Attempt
		created bool
	)
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing []entity.Attempt
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("student_id = ? AND quiz_id = ?", studentID, quizID).
			Order("id ASC").
			Find(&existing).Error; err != nil {
			return err
		}

		var inProgress *entity.Attempt
		for i := range existing {
			if existing[i].IsCompleted() {
				result = &existing[i]
				return nil
			}
			if inProgress == nil && existing[i].IsInProgress() {
				inProgress = &existing[i]
			}
		}
		if inProgress != nil {
			result = inProgress
			return nil
		}

		attempt := &entity.Attempt{
			StudentID: studentID,
			QuizID:    quizID,
			Status:    entity.AttemptStatusInProgress,
			StartTime: now,
		}
		if err := tx.Create(attempt).Error; err != nil {
			return err
		}
		result, created = attempt, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, created, nil
}

// FindInProgress возвращает незавершённую попытку студента по викторине
func (r *AttemptRepo) FindInProgress(studentID, quizID uint) (*entity.Attempt, error) {
	return r.findByStatus(studentID, quizID, entity.AttemptStatusInProgress)
}

func (r *AttemptRepo) findByStatus(studentID, quizID uint, status string) (*entity.Attempt, error) {
	var attempt entity.Attempt
	err := r.db.Where("student_id = ? AND quiz_id = ? AND status = ?", studentID, quizID, status).
		Order("id ASC").
		First(&attempt).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &attempt, nil
}

// scoped применяет AttemptScope к запросу
func (r *AttemptRepo) scoped(scope repository.AttemptScope) *gorm.DB {
	query := r.db.Model(&entity.Attempt{})
	if scope.TeacherID != 0 {
		query = query.Joins("JOIN quizzes ON quizzes.id = quiz_attempts.quiz_id").
			Where("quizzes.created_by = ?", scope.TeacherID)
	}
	if scope.QuizID != 0 {
		query = query.Where("quiz_attempts.quiz_id = ?", scope.QuizID)
	}
	if scope.StudentID != 0 {
		query = query.Where("quiz_attempts.student_id = ?", scope.StudentID)
	}
	if scope.CompletedOnly {
		query = query.Where("quiz_attempts.status = ?", entity.AttemptStatusCompleted)
	}
	return query
}

// List возвращает попытки по scope
func (r *AttemptRepo) List(scope repository.AttemptScope, limit int) ([]entity.Attempt, error) {
	var attempts []entity.Attempt

	query := r.scoped(scope).Preload("Quiz").Preload("Student")
	if scope.CompletedOnly {
		query = query.Order("quiz_attempts.end_time DESC NULLS LAST, quiz_attempts.id DESC")
	} else {
		query = query.Order("quiz_attempts.start_time DESC, quiz_attempts.id DESC")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Select("quiz_attempts.*").Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

// Count возвращает количество попыток по scope
func (r *AttemptRepo) Count(scope repository.AttemptScope) (int64, error) {
	var count int64
	err := r.scoped(scope).Count(&count).Error
	return count, err
}

// CountDistinctStudents количество уникальных студентов у викторин преподавателя
func (r *AttemptRepo) CountDistinctStudents(teacherID uint) (int64, error) {
	var count int64
	err := r.scoped(repository.AttemptScope{TeacherID: teacherID}).
		Distinct("quiz_attempts.student_id").
		Count(&count).Error
	return count, err
}

// GetAnswers возвращает ответы попытки с вопросами и выбранными вариантами
func (r *AttemptRepo) GetAnswers(attemptID uint) ([]entity.StudentAnswer, error) {
	var answers []entity.StudentAnswer
	err := r.db.
		Preload("Question").
		Preload("Question.Options", orderedOptions).
		Preload("SelectedOption").
		Joins("JOIN questions ON questions.id = student_answers.question_id").
		Where("student_answers.attempt_id = ?", attemptID).
		Order("questions.sort_order ASC").
		Find(&answers).Error
	if err != nil {
		return nil, err
	}
	return answers, nil
}
