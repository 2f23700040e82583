package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
	"github.com/yourusername/quizmaster-api/internal/pkg/mathx"
	"github.com/yourusername/quizmaster-api/internal/service/grading"
)

// SubmissionResult итог проверки отправленных ответов
type SubmissionResult struct {
	AttemptID  uint    `json:"attempt_id"`
	Score      int     `json:"score"`
	MaxScore   int     `json:"max_score"`
	Percentage float64 `json:"percentage"`
	Passed     bool    `json:"passed"`
	Correct    int     `json:"correct_answers"`
	Incorrect  int     `json:"incorrect_answers"`
	Skipped    int     `json:"skipped"`
}

// dashboardInvalidator сбрасывает кеш дашбордов после завершения попытки
type dashboardInvalidator interface {
	InvalidateForAttempt(teacherID, quizID, studentID uint)
}

// SubmissionService принимает ответы студента и проверяет их в одной транзакции
type SubmissionService struct {
	store       repository.SubmissionStore
	attemptRepo repository.AttemptRepository
	userRepo    repository.UserRepository
	engine      *grading.Engine
	dashboards  dashboardInvalidator
	email       EmailService
	now         func() time.Time
}

// NewSubmissionService создает сервис отправки ответов.
// dashboards и email могут быть nil.
func NewSubmissionService(
	store repository.SubmissionStore,
	attemptRepo repository.AttemptRepository,
	userRepo repository.UserRepository,
	dashboards dashboardInvalidator,
	email EmailService,
) *SubmissionService {
	return &SubmissionService{
		store:       store,
		attemptRepo: attemptRepo,
		userRepo:    userRepo,
		engine:      grading.NewEngine(),
		dashboards:  dashboards,
		email:       email,
		now:         time.Now,
	}
}

// SubmitByAttempt проверяет ответы для попытки по её ID
func (s *SubmissionService) SubmitByAttempt(ctx context.Context, studentID, attemptID uint, body []byte) (*SubmissionResult, error) {
	sub, err := grading.ParseSubmission(body)
	if err != nil {
		log.Printf("[SubmissionService] Attempt #%d: некорректный payload: %v", attemptID, err)
		return nil, err
	}
	return s.submit(ctx, studentID, attemptID, sub)
}

// SubmitByQuiz находит незавершённую попытку студента по викторине и проверяет ответы
func (s *SubmissionService) SubmitByQuiz(ctx context.Context, studentID, quizID uint, body []byte) (*SubmissionResult, error) {
	sub, err := grading.ParseSubmission(body)
	if err != nil {
		log.Printf("[SubmissionService] Quiz #%d: некорректный payload от студента #%d: %v", quizID, studentID, err)
		return nil, err
	}

	attempt, err := s.attemptRepo.FindInProgress(studentID, quizID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[SubmissionService] No in-progress attempt for student #%d, quiz #%d", studentID, quizID)
			return nil, ErrAttemptNotFound
		}
		return nil, err
	}
	return s.submit(ctx, studentID, attempt.ID, sub)
}

func (s *SubmissionService) submit(ctx context.Context, studentID, attemptID uint, sub *grading.Submission) (*SubmissionResult, error) {
	log.Printf("[SubmissionService] Attempt #%d: обработка %d ответов (пропущено при разборе: %d)", attemptID, len(sub.Answers), sub.Skipped)

	var (
		result   *SubmissionResult
		finished entity.Attempt
		quiz     *entity.Quiz
	)

	err := s.store.RunInTx(ctx, func(tx repository.SubmissionTx) error {
		attempt, err := tx.LockAttempt(attemptID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return ErrAttemptNotFound
			}
			return err
		}
		if attempt.StudentID != studentID {
			log.Printf("[SubmissionService] Student #%d tried to submit attempt #%d of student #%d", studentID, attemptID, attempt.StudentID)
			return ErrAttemptNotFound
		}
		if !attempt.IsInProgress() {
			return ErrAttemptAlreadySubmitted
		}

		quiz, err = tx.GetQuiz(attempt.QuizID)
		if err != nil {
			return fmt.Errorf("load quiz #%d: %w", attempt.QuizID, err)
		}

		tally, err := s.engine.Grade(tx, attempt, sub.Answers)
		if err != nil {
			return err
		}
		tally.Skipped += sub.Skipped

		grading.Finalize(attempt, quiz, tally, sub.TimeSpent, s.now())
		if err := tx.CompleteAttempt(attempt); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				return ErrAttemptAlreadySubmitted
			}
			return err
		}

		finished = *attempt
		result = &SubmissionResult{
			AttemptID:  attempt.ID,
			Score:      *attempt.Score,
			MaxScore:   attempt.MaxScore,
			Percentage: mathx.Round(*attempt.Percentage, 2),
			Passed:     *attempt.Passed,
			Correct:    tally.Correct,
			Incorrect:  tally.Incorrect,
			Skipped:    tally.Skipped,
		}
		return nil
	})
	if err != nil {
		log.Printf("[SubmissionService] Attempt #%d: отправка отклонена: %v", attemptID, err)
		return nil, err
	}

	log.Printf("[SubmissionService] Attempt #%d submitted: score=%d/%d (%.2f%%) passed=%v",
		result.AttemptID, result.Score, result.MaxScore, result.Percentage, result.Passed)

	if s.dashboards != nil {
		s.dashboards.InvalidateForAttempt(quiz.CreatedByID, quiz.ID, studentID)
	}
	s.notify(finished, quiz, result)

	return result, nil
}

// notify отправляет письмо о результате в фоне; ошибки только логируются
func (s *SubmissionService) notify(attempt entity.Attempt, quiz *entity.Quiz, result *SubmissionResult) {
	if s.email == nil || s.userRepo == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		student, err := s.userRepo.GetByID(attempt.StudentID)
		if err != nil {
			log.Printf("[SubmissionService] Не удалось загрузить студента #%d для письма: %v", attempt.StudentID, err)
			return
		}

		n := ResultNotification{
			ToEmail:     student.Email,
			StudentName: student.FullName(),
			QuizTitle:   quiz.Title,
			Score:       result.Score,
			MaxScore:    result.MaxScore,
			Percentage:  result.Percentage,
			Passed:      result.Passed,
			AttemptID:   attempt.ID,
		}
		key := uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("quiz-result/%d", attempt.ID))).String()
		if err := s.email.SendResultNotification(ctx, n, key); err != nil {
			log.Printf("[SubmissionService] Ошибка отправки письма по попытке #%d: %v", attempt.ID, err)
		}
	}()
}
