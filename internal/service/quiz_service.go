package service

import (
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

// Ограничения метаданных викторины
const (
	MinTimeLimit = 1
	MaxTimeLimit = 300
)

// QuestionInput вопрос при создании викторины или добавлении вопросов
type QuestionInput struct {
	Text         string
	Type         string
	Marks        int
	Explanation  string
	Options      []string
	CorrectIndex int
}

// QuizInput метаданные викторины
type QuizInput struct {
	Title        string
	Category     string
	Difficulty   string
	Description  string
	TotalMarks   int
	TimeLimit    int
	PassingMarks *int // nil - 60% от total_marks
	Status       string
}

// OptionInput вариант ответа при замене вариантов вопроса
type OptionInput struct {
	Text      string
	IsCorrect bool
}

// QuizWithCounts викторина с количеством вопросов и попыток
type QuizWithCounts struct {
	entity.Quiz
	repository.QuizCounts
}

// quizInvalidator сбрасывает кеш дашбордов, в которых видна викторина
type quizInvalidator interface {
	InvalidateQuiz(teacherID, quizID uint)
}

// QuizService предоставляет методы для работы с викторинами
type QuizService struct {
	quizRepo     repository.QuizRepository
	questionRepo repository.QuestionRepository
	dashboards   quizInvalidator
}

// NewQuizService создает новый сервис викторин. dashboards может быть nil.
func NewQuizService(
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	dashboards quizInvalidator,
) *QuizService {
	return &QuizService{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		dashboards:   dashboards,
	}
}

// CreateQuiz создает викторину вместе с вопросами в одной транзакции
func (s *QuizService) CreateQuiz(teacherID uint, in QuizInput, questions []QuestionInput) (*entity.Quiz, error) {
	quiz := &entity.Quiz{CreatedByID: teacherID}
	if err := applyQuizInput(quiz, in); err != nil {
		return nil, err
	}
	if quiz.Status == "" {
		quiz.Status = entity.QuizStatusActive
	}

	built, err := buildQuestions(questions)
	if err != nil {
		return nil, err
	}
	if len(built) == 0 {
		return nil, fmt.Errorf("%w: no questions found, please add at least one question", apperrors.ErrValidation)
	}
	for i := range built {
		built[i].Order = i + 1
	}
	quiz.Questions = built

	if err := s.quizRepo.CreateWithQuestions(quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	log.Printf("[QuizService] Teacher #%d created quiz #%d %q with %d questions", teacherID, quiz.ID, quiz.Title, len(built))
	s.invalidateQuiz(teacherID, quiz.ID)
	return quiz, nil
}

// ListActive возвращает активные викторины для студентов
func (s *QuizService) ListActive(filters repository.QuizFilters, limit, offset int) ([]entity.Quiz, int64, error) {
	filters.Status = entity.QuizStatusActive
	filters.CreatedBy = 0
	return s.quizRepo.List(filters, limit, offset)
}

// ListOwn возвращает викторины преподавателя с количеством вопросов и попыток
func (s *QuizService) ListOwn(teacherID uint, limit, offset int) ([]QuizWithCounts, int64, error) {
	quizzes, total, err := s.quizRepo.List(repository.QuizFilters{CreatedBy: teacherID}, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uint, len(quizzes))
	for i, q := range quizzes {
		ids[i] = q.ID
	}
	counts, err := s.quizRepo.GetCounts(ids)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load quiz counts: %w", err)
	}

	result := make([]QuizWithCounts, len(quizzes))
	for i, q := range quizzes {
		result[i] = QuizWithCounts{Quiz: q, QuizCounts: counts[q.ID]}
	}
	return result, total, nil
}

// GetOwn возвращает викторину преподавателя с вопросами и вариантами
func (s *QuizService) GetOwn(teacherID, quizID uint) (*entity.Quiz, error) {
	quiz, err := s.quizRepo.GetWithQuestions(quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsOwnedBy(teacherID) {
		return nil, forbiddenQuiz(quizID)
	}
	return quiz, nil
}

// UpdateQuiz обновляет метаданные викторины
func (s *QuizService) UpdateQuiz(teacherID, quizID uint, in QuizInput) (*entity.Quiz, error) {
	quiz, err := s.ownedQuiz(teacherID, quizID)
	if err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = quiz.Status
	}
	// Без passing_marks сохраняем прежний порог, пока он не больше нового total_marks
	if in.PassingMarks == nil && quiz.PassingMarks <= in.TotalMarks {
		kept := quiz.PassingMarks
		in.PassingMarks = &kept
	}
	if err := applyQuizInput(quiz, in); err != nil {
		return nil, err
	}
	if err := s.quizRepo.Update(quiz); err != nil {
		return nil, fmt.Errorf("failed to update quiz: %w", err)
	}
	s.invalidateQuiz(teacherID, quiz.ID)
	return quiz, nil
}

// DeleteQuiz удаляет викторину; вопросы, варианты и попытки удаляются каскадом
func (s *QuizService) DeleteQuiz(teacherID, quizID uint) error {
	quiz, err := s.ownedQuiz(teacherID, quizID)
	if err != nil {
		return err
	}
	// Сбрасываем до удаления: после каскада попытки студентов уже не найти
	s.invalidateQuiz(teacherID, quiz.ID)
	if err := s.quizRepo.Delete(quiz.ID); err != nil {
		return err
	}
	log.Printf("[QuizService] Teacher #%d deleted quiz #%d %q", teacherID, quiz.ID, quiz.Title)
	return nil
}

// ListQuestions возвращает вопросы викторины по порядку
func (s *QuizService) ListQuestions(teacherID, quizID uint) ([]entity.Question, error) {
	if _, err := s.ownedQuiz(teacherID, quizID); err != nil {
		return nil, err
	}
	return s.questionRepo.GetByQuizID(quizID)
}

// AddQuestions добавляет вопросы в конец викторины
func (s *QuizService) AddQuestions(teacherID, quizID uint, questions []QuestionInput) ([]entity.Question, error) {
	if _, err := s.ownedQuiz(teacherID, quizID); err != nil {
		return nil, err
	}
	built, err := buildQuestions(questions)
	if err != nil {
		return nil, err
	}
	if len(built) == 0 {
		return nil, fmt.Errorf("%w: no questions to add", apperrors.ErrValidation)
	}
	if err := s.questionRepo.AddToQuiz(quizID, built); err != nil {
		return nil, fmt.Errorf("failed to add questions: %w", err)
	}
	return built, nil
}

// DeleteQuestion удаляет вопрос викторины преподавателя
func (s *QuizService) DeleteQuestion(teacherID, questionID uint) error {
	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return err
	}
	if _, err := s.ownedQuiz(teacherID, question.QuizID); err != nil {
		return err
	}
	return s.questionRepo.Delete(questionID)
}

// ReplaceOptions заменяет варианты ответа. Ровно один вариант должен быть правильным.
func (s *QuizService) ReplaceOptions(teacherID, questionID uint, in []OptionInput) (*entity.Question, error) {
	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedQuiz(teacherID, question.QuizID); err != nil {
		return nil, err
	}

	options := make([]entity.Option, 0, len(in))
	for _, o := range in {
		text := strings.TrimSpace(o.Text)
		if text == "" {
			continue
		}
		options = append(options, entity.Option{Text: text, IsCorrect: o.IsCorrect, Order: len(options)})
	}
	if err := entity.ValidateOptions(options); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	if err := s.questionRepo.ReplaceOptions(questionID, options); err != nil {
		return nil, fmt.Errorf("failed to replace options: %w", err)
	}
	question.Options = options
	return question, nil
}

func (s *QuizService) ownedQuiz(teacherID, quizID uint) (*entity.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsOwnedBy(teacherID) {
		return nil, forbiddenQuiz(quizID)
	}
	return quiz, nil
}

func (s *QuizService) invalidateQuiz(teacherID, quizID uint) {
	if s.dashboards != nil {
		s.dashboards.InvalidateQuiz(teacherID, quizID)
	}
}

func forbiddenQuiz(quizID uint) error {
	return fmt.Errorf("%w: you do not have permission to manage quiz #%d", apperrors.ErrForbidden, quizID)
}

// applyQuizInput проверяет и переносит метаданные в викторину
func applyQuizInput(quiz *entity.Quiz, in QuizInput) error {
	title := strings.TrimSpace(in.Title)
	category := strings.TrimSpace(in.Category)
	difficulty := strings.TrimSpace(in.Difficulty)

	if title == "" || category == "" || difficulty == "" {
		return fmt.Errorf("%w: title, category and difficulty are required", apperrors.ErrValidation)
	}
	if !entity.IsValidDifficulty(difficulty) {
		return fmt.Errorf("%w: difficulty must be easy, medium or hard", apperrors.ErrValidation)
	}
	if in.TotalMarks <= 0 {
		return fmt.Errorf("%w: total marks must be a positive number", apperrors.ErrValidation)
	}
	if in.TimeLimit < MinTimeLimit || in.TimeLimit > MaxTimeLimit {
		return fmt.Errorf("%w: time limit must be between %d and %d minutes", apperrors.ErrValidation, MinTimeLimit, MaxTimeLimit)
	}

	passing := entity.DefaultPassingMarks(in.TotalMarks)
	if in.PassingMarks != nil {
		passing = *in.PassingMarks
	}
	if passing < 0 || passing > in.TotalMarks {
		return fmt.Errorf("%w: passing marks must be between 0 and total marks", apperrors.ErrValidation)
	}

	switch in.Status {
	case "", entity.QuizStatusActive, entity.QuizStatusInactive:
	default:
		return fmt.Errorf("%w: status must be active or inactive", apperrors.ErrValidation)
	}

	quiz.Title = title
	quiz.Category = category
	quiz.Difficulty = difficulty
	quiz.Description = strings.TrimSpace(in.Description)
	quiz.TotalMarks = in.TotalMarks
	quiz.TimeLimit = in.TimeLimit
	quiz.PassingMarks = passing
	if in.Status != "" {
		quiz.Status = in.Status
	}
	return nil
}

// buildQuestions превращает входные данные в вопросы. Вопросы без текста пропускаются.
func buildQuestions(in []QuestionInput) ([]entity.Question, error) {
	questions := make([]entity.Question, 0, len(in))
	for i, q := range in {
		text := strings.TrimSpace(q.Text)
		if text == "" {
			continue
		}

		qType := q.Type
		if qType == "" {
			qType = entity.QuestionTypeMultipleChoice
		}
		if qType != entity.QuestionTypeMultipleChoice {
			return nil, fmt.Errorf("%w: question %d: unsupported type %q", apperrors.ErrValidation, i+1, qType)
		}

		marks := q.Marks
		if marks == 0 {
			marks = 1
		}
		question := entity.Question{
			Text:        text,
			Type:        qType,
			Marks:       marks,
			Explanation: strings.TrimSpace(q.Explanation),
			Options:     entity.BuildOptions(q.Options, q.CorrectIndex),
		}
		if !question.HasValidMarks() {
			return nil, fmt.Errorf("%w: question %d: marks must be between %d and %d",
				apperrors.ErrValidation, i+1, entity.MinQuestionMarks, entity.MaxQuestionMarks)
		}
		if err := entity.ValidateOptions(question.Options); err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", apperrors.ErrValidation, i+1, err)
		}
		questions = append(questions, question)
	}
	return questions, nil
}
