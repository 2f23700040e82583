package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/middleware"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
	"github.com/yourusername/quizmaster-api/internal/service"
)

type mockAttemptService struct {
	mock.Mock
}

func (m *mockAttemptService) Take(studentID, quizID uint) (*service.TakeQuizResult, error) {
	args := m.Called(studentID, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TakeQuizResult), args.Error(1)
}

func (m *mockAttemptService) Result(studentID, attemptID uint) (*service.AttemptResult, error) {
	args := m.Called(studentID, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AttemptResult), args.Error(1)
}

func (m *mockAttemptService) Details(teacherID, attemptID uint) (*service.AttemptResult, error) {
	args := m.Called(teacherID, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AttemptResult), args.Error(1)
}

type mockSubmissionService struct {
	mock.Mock
}

func (m *mockSubmissionService) SubmitByAttempt(ctx context.Context, studentID, attemptID uint, body []byte) (*service.SubmissionResult, error) {
	args := m.Called(studentID, attemptID, string(body))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SubmissionResult), args.Error(1)
}

func (m *mockSubmissionService) SubmitByQuiz(ctx context.Context, studentID, quizID uint, body []byte) (*service.SubmissionResult, error) {
	args := m.Called(studentID, quizID, string(body))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SubmissionResult), args.Error(1)
}

func TestSubmitAttempt_Responses(t *testing.T) {
	const body = `{"answers": {"10": "101"}, "time_spent": 42}`

	tests := []struct {
		name       string
		result     *service.SubmissionResult
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "malformed payload",
			err:        fmt.Errorf("%w: answers must be an object", apperrors.ErrInvalidRequest),
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request",
		},
		{
			name:       "no in-progress attempt",
			err:        service.ErrAttemptNotFound,
			wantStatus: http.StatusBadRequest,
			wantError:  "Quiz attempt not found",
		},
		{
			name:       "already submitted",
			err:        service.ErrAttemptAlreadySubmitted,
			wantStatus: http.StatusConflict,
			wantError:  "Quiz attempt already submitted",
		},
		{
			name:       "unexpected failure",
			err:        errors.New("deadlock detected"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "An error occurred: deadlock detected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submissions := new(mockSubmissionService)
			submissions.On("SubmitByAttempt", uint(3), uint(7), body).Return(tt.result, tt.err)
			h := NewAttemptHandler(new(mockAttemptService), submissions)

			c, w := newRawTestGinContext(http.MethodPost, "/api/student/attempts/7/submit", strings.NewReader(body))
			c.Set(middleware.ContextUserID, uint(3))
			c.Set("attemptID", uint(7))
			h.SubmitAttempt(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := parseJSONResponse(t, w)
			assert.Equal(t, false, resp["success"])
			assert.Equal(t, tt.wantError, resp["error"])
		})
	}
}

func TestSubmitAttempt_Success(t *testing.T) {
	const body = `{"answers": {"10": "101", "20": "202"}}`
	submissions := new(mockSubmissionService)
	submissions.On("SubmitByAttempt", uint(3), uint(7), body).Return(&service.SubmissionResult{
		AttemptID: 7, Score: 5, MaxScore: 10, Percentage: 50, Passed: false, Correct: 1, Incorrect: 1,
	}, nil)
	h := NewAttemptHandler(new(mockAttemptService), submissions)

	c, w := newRawTestGinContext(http.MethodPost, "/api/student/attempts/7/submit", strings.NewReader(body))
	c.Set(middleware.ContextUserID, uint(3))
	c.Set("attemptID", uint(7))
	h.SubmitAttempt(c)

	require.Equal(t, http.StatusOK, w.Code)
	resp := parseJSONResponse(t, w)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, float64(7), resp["attempt_id"])
	assert.Equal(t, float64(5), resp["score"])
	assert.Equal(t, float64(10), resp["max_score"])
	assert.Equal(t, float64(50), resp["percentage"])
	assert.Equal(t, false, resp["passed"])
	assert.Equal(t, "Quiz submitted successfully!", resp["message"])
}

func TestSubmitQuiz_UsesQuizID(t *testing.T) {
	const body = `{"answers": {}}`
	submissions := new(mockSubmissionService)
	submissions.On("SubmitByQuiz", uint(3), uint(1), body).Return(&service.SubmissionResult{AttemptID: 9}, nil)
	h := NewAttemptHandler(new(mockAttemptService), submissions)

	c, w := newRawTestGinContext(http.MethodPost, "/api/student/quizzes/1/submit", strings.NewReader(body))
	c.Set(middleware.ContextUserID, uint(3))
	c.Set("quizID", uint(1))
	h.SubmitQuiz(c)

	assert.Equal(t, http.StatusOK, w.Code)
	submissions.AssertExpectations(t)
}

func TestSubmitAttempt_Unauthorized(t *testing.T) {
	submissions := new(mockSubmissionService)
	h := NewAttemptHandler(new(mockAttemptService), submissions)

	c, w := newRawTestGinContext(http.MethodPost, "/api/student/attempts/7/submit", strings.NewReader(`{}`))
	c.Set("attemptID", uint(7))
	h.SubmitAttempt(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	submissions.AssertNotCalled(t, "SubmitByAttempt", mock.Anything, mock.Anything, mock.Anything)
}

func TestTakeQuiz_HidesCorrectness(t *testing.T) {
	attempts := new(mockAttemptService)
	attempts.On("Take", uint(3), uint(1)).Return(&service.TakeQuizResult{
		Attempt: &entity.Attempt{ID: 7, StartTime: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
		Quiz:    &entity.Quiz{ID: 1, Title: "Go basics"},
		Questions: []entity.Question{{
			ID:          10,
			Text:        "2+2?",
			Explanation: "arithmetic",
			Options:     []entity.Option{{ID: 101, Text: "4", IsCorrect: true}, {ID: 102, Text: "5"}},
		}},
	}, nil)
	h := NewAttemptHandler(attempts, new(mockSubmissionService))

	c, w := newTestGinContext(http.MethodPost, "/api/student/quizzes/1/take", nil)
	c.Set(middleware.ContextUserID, uint(3))
	c.Set("quizID", uint(1))
	h.TakeQuiz(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "is_correct")
	assert.NotContains(t, w.Body.String(), "arithmetic")

	resp := parseJSONResponse(t, w)
	assert.Equal(t, float64(7), resp["attempt_id"])
	assert.Equal(t, false, resp["resumed"])
}

func TestTakeQuiz_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"already completed", &service.CompletedAttemptError{AttemptID: 4}, http.StatusConflict},
		{"inactive quiz", fmt.Errorf("%w: quiz #1 is not available", apperrors.ErrForbidden), http.StatusForbidden},
		{"no questions", fmt.Errorf("%w: quiz #1 has no questions yet", apperrors.ErrValidation), http.StatusUnprocessableEntity},
		{"missing quiz", apperrors.ErrNotFound, http.StatusNotFound},
		{"database down", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := new(mockAttemptService)
			attempts.On("Take", uint(3), uint(1)).Return(nil, tt.err)
			h := NewAttemptHandler(attempts, new(mockSubmissionService))

			c, w := newTestGinContext(http.MethodPost, "/api/student/quizzes/1/take", nil)
			c.Set(middleware.ContextUserID, uint(3))
			c.Set("quizID", uint(1))
			h.TakeQuiz(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusConflict {
				resp := parseJSONResponse(t, w)
				assert.Equal(t, float64(4), resp["attempt_id"])
			}
		})
	}
}

func TestGetAttemptDetails_Forbidden(t *testing.T) {
	attempts := new(mockAttemptService)
	attempts.On("Details", uint(51), uint(7)).Return(nil, fmt.Errorf("%w: attempt #7", apperrors.ErrForbidden))
	h := NewAttemptHandler(attempts, new(mockSubmissionService))

	c, w := newTestGinContext(http.MethodGet, "/api/teacher/attempts/7", nil)
	c.Set(middleware.ContextUserID, uint(51))
	c.Set("attemptID", uint(7))
	h.GetAttemptDetails(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
