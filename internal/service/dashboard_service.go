package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
	"github.com/yourusername/quizmaster-api/internal/service/analytics"
)

const (
	recentQuizzesLimit    = 5
	availableQuizzesLimit = 6
	recentAttemptsLimit   = 10
)

// TeacherDashboard сводка по всем викторинам преподавателя
type TeacherDashboard struct {
	TotalQuizzes  int64             `json:"total_quizzes"`
	ActiveQuizzes int64             `json:"active_quizzes"`
	TotalStudents int64             `json:"total_students"`
	TotalAttempts int64             `json:"total_attempts"`
	RecentQuizzes []entity.Quiz     `json:"recent_quizzes"`
	Summary       analytics.Summary `json:"summary"`
}

// QuizResults завершённые попытки по викторине и сводка
type QuizResults struct {
	Quiz     *entity.Quiz      `json:"quiz"`
	Attempts []entity.Attempt  `json:"attempts"`
	Summary  analytics.Summary `json:"summary"`
}

// StudentDashboard доступные викторины, последние попытки и статистика студента
type StudentDashboard struct {
	AvailableQuizzes  []entity.Quiz     `json:"available_quizzes"`
	RecentAttempts    []entity.Attempt  `json:"recent_attempts"`
	TotalAttempts     int64             `json:"total_attempts"`
	CompletedAttempts int               `json:"completed_attempts"`
	Summary           analytics.Summary `json:"summary"`
}

// DashboardService строит дашборды поверх analytics.Summarize и кеширует их в Redis
type DashboardService struct {
	quizRepo    repository.QuizRepository
	attemptRepo repository.AttemptRepository
	cacheRepo   repository.CacheRepository
	ttl         time.Duration
}

// NewDashboardService создает сервис дашбордов. cacheRepo может быть nil.
func NewDashboardService(
	quizRepo repository.QuizRepository,
	attemptRepo repository.AttemptRepository,
	cacheRepo repository.CacheRepository,
	ttl time.Duration,
) *DashboardService {
	return &DashboardService{
		quizRepo:    quizRepo,
		attemptRepo: attemptRepo,
		cacheRepo:   cacheRepo,
		ttl:         ttl,
	}
}

func teacherDashboardKey(teacherID uint) string { return fmt.Sprintf("dashboard:teacher:%d", teacherID) }
func quizResultsKey(quizID uint) string         { return fmt.Sprintf("dashboard:quiz:%d", quizID) }
func studentDashboardKey(studentID uint) string { return fmt.Sprintf("dashboard:student:%d", studentID) }

// общий для всех студентов список активных викторин
const availableQuizzesKey = "dashboard:available_quizzes"

// TeacherDashboard возвращает сводку преподавателя
func (s *DashboardService) TeacherDashboard(teacherID uint) (*TeacherDashboard, error) {
	var cached TeacherDashboard
	if s.readCache(teacherDashboardKey(teacherID), &cached) {
		return &cached, nil
	}

	total, active, err := s.quizRepo.CountByTeacher(teacherID)
	if err != nil {
		return nil, fmt.Errorf("count quizzes: %w", err)
	}
	students, err := s.attemptRepo.CountDistinctStudents(teacherID)
	if err != nil {
		return nil, fmt.Errorf("count students: %w", err)
	}
	attemptsTotal, err := s.attemptRepo.Count(repository.AttemptScope{TeacherID: teacherID})
	if err != nil {
		return nil, fmt.Errorf("count attempts: %w", err)
	}
	recent, _, err := s.quizRepo.List(repository.QuizFilters{CreatedBy: teacherID}, recentQuizzesLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("list recent quizzes: %w", err)
	}
	completed, err := s.attemptRepo.List(repository.AttemptScope{TeacherID: teacherID, CompletedOnly: true}, 0)
	if err != nil {
		return nil, fmt.Errorf("list completed attempts: %w", err)
	}

	dashboard := &TeacherDashboard{
		TotalQuizzes:  total,
		ActiveQuizzes: active,
		TotalStudents: students,
		TotalAttempts: attemptsTotal,
		RecentQuizzes: recent,
		Summary:       analytics.Summarize(completed),
	}
	s.writeCache(teacherDashboardKey(teacherID), dashboard)
	return dashboard, nil
}

// QuizResults возвращает результаты викторины; доступно только автору
func (s *DashboardService) QuizResults(teacherID, quizID uint) (*QuizResults, error) {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsOwnedBy(teacherID) {
		return nil, fmt.Errorf("%w: quiz #%d belongs to another teacher", apperrors.ErrForbidden, quizID)
	}

	var cached QuizResults
	if s.readCache(quizResultsKey(quizID), &cached) {
		cached.Quiz = quiz
		return &cached, nil
	}

	attempts, err := s.attemptRepo.List(repository.AttemptScope{QuizID: quizID, CompletedOnly: true}, 0)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	results := &QuizResults{
		Quiz:     quiz,
		Attempts: attempts,
		Summary:  analytics.Summarize(attempts),
	}
	s.writeCache(quizResultsKey(quizID), results)
	return results, nil
}

// StudentDashboard возвращает дашборд студента.
// Список доступных викторин кешируется отдельно: он общий и сбрасывается при изменении любой викторины.
func (s *DashboardService) StudentDashboard(studentID uint) (*StudentDashboard, error) {
	var available []entity.Quiz
	if !s.readCache(availableQuizzesKey, &available) {
		quizzes, _, err := s.quizRepo.List(repository.QuizFilters{Status: entity.QuizStatusActive}, availableQuizzesLimit, 0)
		if err != nil {
			return nil, fmt.Errorf("list available quizzes: %w", err)
		}
		available = quizzes
		s.writeCache(availableQuizzesKey, available)
	}

	var dashboard StudentDashboard
	if !s.readCache(studentDashboardKey(studentID), &dashboard) {
		built, err := s.buildStudentDashboard(studentID)
		if err != nil {
			return nil, err
		}
		dashboard = *built
		s.writeCache(studentDashboardKey(studentID), built)
	}

	dashboard.AvailableQuizzes = available
	return &dashboard, nil
}

func (s *DashboardService) buildStudentDashboard(studentID uint) (*StudentDashboard, error) {
	recent, err := s.attemptRepo.List(repository.AttemptScope{StudentID: studentID}, recentAttemptsLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent attempts: %w", err)
	}
	total, err := s.attemptRepo.Count(repository.AttemptScope{StudentID: studentID})
	if err != nil {
		return nil, fmt.Errorf("count attempts: %w", err)
	}
	completed, err := s.attemptRepo.List(repository.AttemptScope{StudentID: studentID, CompletedOnly: true}, 0)
	if err != nil {
		return nil, fmt.Errorf("list completed attempts: %w", err)
	}

	return &StudentDashboard{
		RecentAttempts:    recent,
		TotalAttempts:     total,
		CompletedAttempts: len(completed),
		Summary:           analytics.Summarize(completed),
	}, nil
}

// InvalidateForAttempt сбрасывает кеш всех дашбордов, затронутых попыткой
func (s *DashboardService) InvalidateForAttempt(teacherID, quizID, studentID uint) {
	s.invalidate(teacherDashboardKey(teacherID), quizResultsKey(quizID), studentDashboardKey(studentID))
}

// InvalidateQuiz сбрасывает кеш после создания, изменения или удаления викторины:
// дашборд автора, результаты, общий список доступных викторин
// и дашборды студентов, у которых есть попытки по этой викторине.
func (s *DashboardService) InvalidateQuiz(teacherID, quizID uint) {
	if s.cacheRepo == nil {
		return
	}
	keys := []string{teacherDashboardKey(teacherID), quizResultsKey(quizID), availableQuizzesKey}

	attempts, err := s.attemptRepo.List(repository.AttemptScope{QuizID: quizID}, 0)
	if err != nil {
		log.Printf("[DashboardService] Не удалось получить попытки викторины #%d для сброса кеша: %v", quizID, err)
	}
	seen := make(map[uint]bool, len(attempts))
	for _, a := range attempts {
		if !seen[a.StudentID] {
			seen[a.StudentID] = true
			keys = append(keys, studentDashboardKey(a.StudentID))
		}
	}

	s.invalidate(keys...)
}

func (s *DashboardService) invalidate(keys ...string) {
	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.Delete(keys...); err != nil {
		log.Printf("[DashboardService] Не удалось сбросить кеш %v: %v", keys, err)
	}
}

func (s *DashboardService) readCache(key string, dest interface{}) bool {
	if s.cacheRepo == nil || s.ttl <= 0 {
		return false
	}
	if err := s.cacheRepo.GetJSON(key, dest); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[DashboardService] Ошибка чтения кеша %s: %v", key, err)
		}
		return false
	}
	return true
}

func (s *DashboardService) writeCache(key string, value interface{}) {
	if s.cacheRepo == nil || s.ttl <= 0 {
		return
	}
	if err := s.cacheRepo.SetJSON(key, value, s.ttl); err != nil {
		log.Printf("[DashboardService] Ошибка записи кеша %s: %v", key, err)
	}
}
