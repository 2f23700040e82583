package postgres

import (
	"gorm.io/gorm"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
)

// QuizRepo реализует repository.QuizRepository
type QuizRepo struct {
	db *gorm.DB
}

// NewQuizRepo создает новый репозиторий викторин
func NewQuizRepo(db *gorm.DB) *QuizRepo {
	return &QuizRepo{db: db}
}

// orderedQuestions сортирует вопросы по order, варианты по order и id
func orderedQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC")
}

func orderedOptions(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC, id ASC")
}

// CreateWithQuestions создает викторину; вопросы и варианты сохраняются через ассоциации
func (r *QuizRepo) CreateWithQuestions(quiz *entity.Quiz) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(quiz).Error
	})
	return translateError(err)
}

// GetByID возвращает викторину по ID
func (r *QuizRepo) GetByID(id uint) (*entity.Quiz, error) {
	var quiz entity.Quiz
	if err := r.db.First(&quiz, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &quiz, nil
}

// GetWithQuestions возвращает викторину вместе с вопросами и вариантами
func (r *QuizRepo) GetWithQuestions(id uint) (*entity.Quiz, error) {
	var quiz entity.Quiz
	err := r.db.
		Preload("Questions", orderedQuestions).
		Preload("Questions.Options", orderedOptions).
		First(&quiz, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &quiz, nil
}

// Update обновляет метаданные викторины (без вопросов)
func (r *QuizRepo) Update(quiz *entity.Quiz) error {
	err := r.db.Model(quiz).
		Select("title", "category", "difficulty", "description", "total_marks", "time_limit", "passing_marks", "status", "updated_at").
		Updates(quiz).Error
	return translateError(err)
}

// Delete удаляет викторину; вопросы, варианты и попытки удаляются каскадом в БД
func (r *QuizRepo) Delete(id uint) error {
	result := r.db.Delete(&entity.Quiz{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound)
	}
	return nil
}

// List возвращает список викторин с фильтрами и total count
func (r *QuizRepo) List(filters repository.QuizFilters, limit, offset int) ([]entity.Quiz, int64, error) {
	var quizzes []entity.Quiz
	var total int64

	query := r.db.Model(&entity.Quiz{})

	if filters.CreatedBy != 0 {
		query = query.Where("created_by = ?", filters.CreatedBy)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.Difficulty != "" {
		query = query.Where("difficulty = ?", filters.Difficulty)
	}
	if filters.Search != "" {
		search := "%" + filters.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", search, search)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Order("created_at DESC, id DESC").Find(&quizzes).Error; err != nil {
		return nil, 0, err
	}

	return quizzes, total, nil
}

// CountByTeacher возвращает общее количество викторин преподавателя и количество активных
func (r *QuizRepo) CountByTeacher(teacherID uint) (int64, int64, error) {
	var row struct {
		Total  int64
		Active int64
	}
	err := r.db.Model(&entity.Quiz{}).
		Select("COUNT(*) AS total, COUNT(*) FILTER (WHERE status = ?) AS active", entity.QuizStatusActive).
		Where("created_by = ?", teacherID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Total, row.Active, nil
}

// GetCounts возвращает количество вопросов и попыток для набора викторин
func (r *QuizRepo) GetCounts(quizIDs []uint) (map[uint]repository.QuizCounts, error) {
	counts := make(map[uint]repository.QuizCounts, len(quizIDs))
	if len(quizIDs) == 0 {
		return counts, nil
	}

	type countRow struct {
		QuizID uint
		Cnt    int64
	}

	var questionRows []countRow
	err := r.db.Model(&entity.Question{}).
		Select("quiz_id, COUNT(*) AS cnt").
		Where("quiz_id IN ?", quizIDs).
		Group("quiz_id").
		Scan(&questionRows).Error
	if err != nil {
		return nil, err
	}

	var attemptRows []countRow
	err = r.db.Model(&entity.Attempt{}).
		Select("quiz_id, COUNT(*) AS cnt").
		Where("quiz_id IN ?", quizIDs).
		Group("quiz_id").
		Scan(&attemptRows).Error
	if err != nil {
		return nil, err
	}

	for _, id := range quizIDs {
		counts[id] = repository.QuizCounts{}
	}
	for _, row := range questionRows {
		c := counts[row.QuizID]
		c.QuestionCount = row.Cnt
		counts[row.QuizID] = c
	}
	for _, row := range attemptRows {
		c := counts[row.QuizID]
		c.AttemptCount = row.Cnt
		counts[row.QuizID] = c
	}
	return counts, nil
}
