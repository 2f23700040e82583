package service

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
)

// ============================================================================
// Моки репозиториев для тестов сервисов
// ============================================================================

// MockQuizRepository реализует repository.QuizRepository
type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) CreateWithQuestions(quiz *entity.Quiz) error {
	args := m.Called(quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) GetByID(id uint) (*entity.Quiz, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetWithQuestions(id uint) (*entity.Quiz, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

func (m *MockQuizRepository) Update(quiz *entity.Quiz) error {
	args := m.Called(quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockQuizRepository) List(filters repository.QuizFilters, limit, offset int) ([]entity.Quiz, int64, error) {
	args := m.Called(filters, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]entity.Quiz), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuizRepository) CountByTeacher(teacherID uint) (int64, int64, error) {
	args := m.Called(teacherID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuizRepository) GetCounts(quizIDs []uint) (map[uint]repository.QuizCounts, error) {
	args := m.Called(quizIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint]repository.QuizCounts), args.Error(1)
}

// MockQuestionRepository реализует repository.QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) GetByID(id uint) (*entity.Question, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByQuizID(quizID uint) ([]entity.Question, error) {
	args := m.Called(quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) CountByQuizID(quizID uint) (int64, error) {
	args := m.Called(quizID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuestionRepository) AddToQuiz(quizID uint, questions []entity.Question) error {
	args := m.Called(quizID, questions)
	return args.Error(0)
}

func (m *MockQuestionRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockQuestionRepository) ReplaceOptions(questionID uint, options []entity.Option) error {
	args := m.Called(questionID, options)
	return args.Error(0)
}

// MockAttemptRepository реализует repository.AttemptRepository
type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) GetByID(id uint) (*entity.Attempt, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) StartOrResume(studentID, quizID uint, now time.Time) (*entity.Attempt, bool, error) {
	args := m.Called(studentID, quizID, now)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entity.Attempt), args.Bool(1), args.Error(2)
}

func (m *MockAttemptRepository) FindInProgress(studentID, quizID uint) (*entity.Attempt, error) {
	args := m.Called(studentID, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) List(scope repository.AttemptScope, limit int) ([]entity.Attempt, error) {
	args := m.Called(scope, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) Count(scope repository.AttemptScope) (int64, error) {
	args := m.Called(scope)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAttemptRepository) CountDistinctStudents(teacherID uint) (int64, error) {
	args := m.Called(teacherID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAttemptRepository) GetAnswers(attemptID uint) ([]entity.StudentAnswer, error) {
	args := m.Called(attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.StudentAnswer), args.Error(1)
}

// MockUserRepository реализует repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateTeacher(user *entity.User, profile *entity.Teacher) error {
	args := m.Called(user, profile)
	return args.Error(0)
}

func (m *MockUserRepository) CreateStudent(user *entity.User, profile *entity.Student) error {
	args := m.Called(user, profile)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id uint) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*entity.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(username string) (*entity.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsernameOrEmail(username, email string) (bool, bool, error) {
	args := m.Called(username, email)
	return args.Bool(0), args.Bool(1), args.Error(2)
}

func (m *MockUserRepository) UpdateProfile(userID uint, updates map[string]interface{}) error {
	args := m.Called(userID, updates)
	return args.Error(0)
}

func (m *MockUserRepository) GetTeacherProfile(userID uint) (*entity.Teacher, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Teacher), args.Error(1)
}

func (m *MockUserRepository) GetStudentProfile(userID uint) (*entity.Student, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Student), args.Error(1)
}

func (m *MockUserRepository) UpdateTeacherProfile(userID uint, updates map[string]interface{}) error {
	args := m.Called(userID, updates)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateStudentProfile(userID uint, updates map[string]interface{}) error {
	args := m.Called(userID, updates)
	return args.Error(0)
}

// MockCacheRepository реализует repository.CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) SetJSON(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) GetJSON(key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(keys ...string) error {
	args := m.Called(keys)
	return args.Error(0)
}
