package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizmaster-api/internal/handler/dto"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
	"github.com/yourusername/quizmaster-api/internal/service"
)

// maxSubmissionBody ограничение размера тела отправки ответов
const maxSubmissionBody = 1 << 20

type attemptService interface {
	Take(studentID, quizID uint) (*service.TakeQuizResult, error)
	Result(studentID, attemptID uint) (*service.AttemptResult, error)
	Details(teacherID, attemptID uint) (*service.AttemptResult, error)
}

type submissionService interface {
	SubmitByAttempt(ctx context.Context, studentID, attemptID uint, body []byte) (*service.SubmissionResult, error)
	SubmitByQuiz(ctx context.Context, studentID, quizID uint, body []byte) (*service.SubmissionResult, error)
}

// AttemptHandler обрабатывает прохождение викторин: начало попытки, отправку ответов, результаты
type AttemptHandler struct {
	attemptService    attemptService
	submissionService submissionService
}

// NewAttemptHandler создает новый обработчик попыток
func NewAttemptHandler(attemptService attemptService, submissionService submissionService) *AttemptHandler {
	return &AttemptHandler{
		attemptService:    attemptService,
		submissionService: submissionService,
	}
}

// TakeQuiz POST /api/student/quizzes/:id/take: начинает или продолжает попытку
func (h *AttemptHandler) TakeQuiz(c *gin.Context) {
	studentID, ok := requireUserID(c)
	if !ok {
		return
	}
	quizID := c.MustGet("quizID").(uint)

	res, err := h.attemptService.Take(studentID, quizID)
	if err != nil {
		var completed *service.CompletedAttemptError
		if errors.As(err, &completed) {
			c.JSON(http.StatusConflict, gin.H{
				"error":      "You have already completed this quiz",
				"attempt_id": completed.AttemptID,
			})
			return
		}
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TakeQuizResponse{
		AttemptID: res.Attempt.ID,
		Resumed:   res.Resumed,
		StartTime: res.Attempt.StartTime,
		Quiz:      dto.NewQuizResponse(res.Quiz, false),
		Questions: dto.NewQuestionListResponse(res.Questions),
	})
}

// SubmitAttempt POST /api/student/attempts/:id/submit
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	h.submit(c, "attemptID", h.submissionService.SubmitByAttempt)
}

// SubmitQuiz POST /api/student/quizzes/:id/submit: ответы к единственной незавершённой попытке
func (h *AttemptHandler) SubmitQuiz(c *gin.Context) {
	h.submit(c, "quizID", h.submissionService.SubmitByQuiz)
}

type submitFunc func(ctx context.Context, studentID, id uint, body []byte) (*service.SubmissionResult, error)

func (h *AttemptHandler) submit(c *gin.Context, idKey string, fn submitFunc) {
	studentID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}
	id := c.MustGet(idKey).(uint)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSubmissionBody)
	body, err := c.GetRawData()
	if err != nil {
		log.Printf("[AttemptHandler] Не удалось прочитать тело запроса: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request"})
		return
	}

	res, err := fn(c.Request.Context(), studentID, id, body)
	if err != nil {
		respondSubmitError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SubmitResponse{
		Success:    true,
		AttemptID:  res.AttemptID,
		Score:      res.Score,
		MaxScore:   res.MaxScore,
		Percentage: res.Percentage,
		Passed:     res.Passed,
		Correct:    res.Correct,
		Incorrect:  res.Incorrect,
		Skipped:    res.Skipped,
		Message:    "Quiz submitted successfully!",
	})
}

// respondSubmitError ответы отправки всегда содержат success:false и короткое сообщение
func respondSubmitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request"})
	case errors.Is(err, service.ErrAttemptNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Quiz attempt not found"})
	case errors.Is(err, service.ErrAttemptAlreadySubmitted):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": "Quiz attempt already submitted"})
	default:
		log.Printf("ERROR: [AttemptHandler] Submission failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "An error occurred: " + err.Error()})
	}
}

// GetResult GET /api/student/attempts/:id/result
func (h *AttemptHandler) GetResult(c *gin.Context) {
	studentID, ok := requireUserID(c)
	if !ok {
		return
	}
	attemptID := c.MustGet("attemptID").(uint)

	res, err := h.attemptService.Result(studentID, attemptID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetAttemptDetails GET /api/teacher/attempts/:id
func (h *AttemptHandler) GetAttemptDetails(c *gin.Context) {
	teacherID, ok := requireUserID(c)
	if !ok {
		return
	}
	attemptID := c.MustGet("attemptID").(uint)

	res, err := h.attemptService.Details(teacherID, attemptID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
