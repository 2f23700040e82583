package postgres

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// GetByID возвращает вопрос по ID вместе с вариантами
func (r *QuestionRepo) GetByID(id uint) (*entity.Question, error) {
	var question entity.Question
	if err := r.db.Preload("Options", orderedOptions).First(&question, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &question, nil
}

// GetByQuizID возвращает все вопросы викторины в порядке отображения
func (r *QuestionRepo) GetByQuizID(quizID uint) ([]entity.Question, error) {
	var questions []entity.Question
	err := r.db.Preload("Options", orderedOptions).
		Where("quiz_id = ?", quizID).
		Order("sort_order ASC").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// CountByQuizID возвращает количество вопросов викторины
func (r *QuestionRepo) CountByQuizID(quizID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Question{}).Where("quiz_id = ?", quizID).Count(&count).Error
	return count, err
}

// AddToQuiz добавляет вопросы с вариантами, продолжая нумерацию order.
// Строка викторины блокируется, чтобы параллельные добавления не получили одинаковый order.
func (r *QuestionRepo) AddToQuiz(quizID uint, questions []entity.Question) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var quiz entity.Quiz
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&quiz, quizID).Error; err != nil {
			return err
		}

		var maxOrder int
		if err := tx.Model(&entity.Question{}).
			Where("quiz_id = ?", quizID).
			Select("COALESCE(MAX(sort_order), 0)").
			Scan(&maxOrder).Error; err != nil {
			return err
		}

		for i := range questions {
			questions[i].ID = 0
			questions[i].QuizID = quizID
			questions[i].Order = maxOrder + i + 1
		}
		return tx.Create(&questions).Error
	})
	return translateError(err)
}

// Delete удаляет вопрос; варианты и ответы удаляются каскадом
func (r *QuestionRepo) Delete(id uint) error {
	result := r.db.Delete(&entity.Question{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound)
	}
	return nil
}

// ReplaceOptions удаляет старые варианты вопроса и создает новые в одной транзакции.
// Ссылки из student_answers на удалённые варианты обнуляются внешним ключом.
func (r *QuestionRepo) ReplaceOptions(questionID uint, options []entity.Option) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", questionID).Delete(&entity.Option{}).Error; err != nil {
			return err
		}
		for i := range options {
			options[i].ID = 0
			options[i].QuestionID = questionID
		}
		return tx.Create(&options).Error
	})
	return translateError(err)
}
