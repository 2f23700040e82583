package service

import (
	"fmt"
	"log"
	"time"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

// TakeQuizResult данные для прохождения викторины
type TakeQuizResult struct {
	Attempt   *entity.Attempt
	Quiz      *entity.Quiz
	Questions []entity.Question
	// Resumed true, если студент продолжает уже начатую попытку
	Resumed bool
}

// AttemptResult попытка с ответами
type AttemptResult struct {
	Attempt        *entity.Attempt        `json:"attempt"`
	Answers        []entity.StudentAnswer `json:"answers"`
	TotalQuestions int                    `json:"total_questions"`
	CorrectAnswers int                    `json:"correct_answers"`
}

// AttemptService управляет жизненным циклом попыток (кроме отправки ответов)
type AttemptService struct {
	quizRepo     repository.QuizRepository
	questionRepo repository.QuestionRepository
	attemptRepo  repository.AttemptRepository
	dashboards   dashboardInvalidator
	now          func() time.Time
}

// NewAttemptService создает сервис попыток
func NewAttemptService(
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	attemptRepo repository.AttemptRepository,
	dashboards dashboardInvalidator,
) *AttemptService {
	return &AttemptService{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		dashboards:   dashboards,
		now:          time.Now,
	}
}

// Take начинает или продолжает попытку студента.
// Повторное прохождение завершённой викторины не допускается.
func (s *AttemptService) Take(studentID, quizID uint) (*TakeQuizResult, error) {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsActive() {
		return nil, fmt.Errorf("%w: quiz #%d is not available", apperrors.ErrForbidden, quizID)
	}

	questions, err := s.questionRepo.GetByQuizID(quizID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: quiz #%d has no questions yet", apperrors.ErrValidation, quizID)
	}

	attempt, created, err := s.attemptRepo.StartOrResume(studentID, quizID, s.now())
	if err != nil {
		return nil, fmt.Errorf("start attempt: %w", err)
	}
	if !attempt.IsInProgress() {
		return nil, &CompletedAttemptError{AttemptID: attempt.ID}
	}
	if created {
		log.Printf("[AttemptService] Student #%d started quiz #%d (attempt #%d)", studentID, quizID, attempt.ID)
		// новая попытка меняет счётчики на дашбордах студента и автора
		if s.dashboards != nil {
			s.dashboards.InvalidateForAttempt(quiz.CreatedByID, quizID, studentID)
		}
	}

	return &TakeQuizResult{
		Attempt:   attempt,
		Quiz:      quiz,
		Questions: questions,
		Resumed:   !created,
	}, nil
}

// Result возвращает попытку студента с ответами. Чужая попытка выглядит как несуществующая.
func (s *AttemptService) Result(studentID, attemptID uint) (*AttemptResult, error) {
	attempt, err := s.attemptRepo.GetByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.StudentID != studentID {
		return nil, fmt.Errorf("%w: attempt #%d", apperrors.ErrNotFound, attemptID)
	}
	return s.withAnswers(attempt)
}

// Details возвращает попытку для автора викторины
func (s *AttemptService) Details(teacherID, attemptID uint) (*AttemptResult, error) {
	attempt, err := s.attemptRepo.GetByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Quiz == nil || !attempt.Quiz.IsOwnedBy(teacherID) {
		return nil, fmt.Errorf("%w: attempt #%d belongs to another teacher's quiz", apperrors.ErrForbidden, attemptID)
	}
	return s.withAnswers(attempt)
}

func (s *AttemptService) withAnswers(attempt *entity.Attempt) (*AttemptResult, error) {
	answers, err := s.attemptRepo.GetAnswers(attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	correct := 0
	for _, a := range answers {
		if a.IsCorrect {
			correct++
		}
	}
	return &AttemptResult{
		Attempt:        attempt,
		Answers:        answers,
		TotalQuestions: len(answers),
		CorrectAnswers: correct,
	}, nil
}
