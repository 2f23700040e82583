package dto

import (
	"time"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/handler/helper"
)

// QuestionRequest вопрос с вариантами при создании викторины или добавлении вопросов
type QuestionRequest struct {
	Text          string   `json:"text" binding:"required,max=2000"`
	Type          string   `json:"type" binding:"omitempty,oneof=multiple_choice"`
	Marks         int      `json:"marks" binding:"omitempty,min=1,max=100"`
	Explanation   string   `json:"explanation" binding:"omitempty,max=2000"`
	Options       []string `json:"options" binding:"required,min=2,max=10,dive,max=500"`
	CorrectOption int      `json:"correct_option" binding:"min=0"`
}

// QuizRequest метаданные викторины
type QuizRequest struct {
	Title        string `json:"title" binding:"required,min=3,max=200"`
	Category     string `json:"category" binding:"required,max=100"`
	Difficulty   string `json:"difficulty" binding:"required,difficulty"`
	Description  string `json:"description" binding:"omitempty,max=5000"`
	TotalMarks   int    `json:"total_marks" binding:"required,min=1"`
	TimeLimit    int    `json:"time_limit" binding:"required,min=1,max=300"`
	PassingMarks *int   `json:"passing_marks" binding:"omitempty,min=0"`
	Status       string `json:"status" binding:"omitempty,oneof=active inactive"`
}

// CreateQuizRequest викторина вместе с вопросами
type CreateQuizRequest struct {
	QuizRequest
	Questions []QuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

// AddQuestionsRequest вопросы для добавления в конец викторины
type AddQuestionsRequest struct {
	Questions []QuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

// OptionRequest вариант ответа при замене вариантов вопроса
type OptionRequest struct {
	Text      string `json:"text" binding:"required,max=500"`
	IsCorrect bool   `json:"is_correct"`
}

// ReplaceOptionsRequest новый набор вариантов вопроса
type ReplaceOptionsRequest struct {
	Options []OptionRequest `json:"options" binding:"required,min=2,max=10,dive"`
}

// QuestionResponse вопрос для студента: варианты без is_correct, без пояснения
type QuestionResponse struct {
	ID      uint                    `json:"id"`
	QuizID  uint                    `json:"quiz_id"`
	Text    string                  `json:"text"`
	Type    string                  `json:"type"`
	Marks   int                     `json:"marks"`
	Order   int                     `json:"order"`
	Options []helper.QuestionOption `json:"options"`
}

// QuizResponse викторина в формате для ответа клиенту
type QuizResponse struct {
	ID            uint               `json:"id"`
	CreatedBy     uint               `json:"created_by"`
	Title         string             `json:"title"`
	Category      string             `json:"category"`
	Difficulty    string             `json:"difficulty"`
	Description   string             `json:"description,omitempty"`
	TotalMarks    int                `json:"total_marks"`
	TimeLimit     int                `json:"time_limit"`
	PassingMarks  int                `json:"passing_marks"`
	Status        string             `json:"status"`
	QuestionCount int                `json:"question_count,omitempty"`
	Questions     []QuestionResponse `json:"questions,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// TakeQuizResponse ответ на начало или продолжение попытки
type TakeQuizResponse struct {
	AttemptID uint               `json:"attempt_id"`
	Resumed   bool               `json:"resumed"`
	StartTime time.Time          `json:"start_time"`
	Quiz      *QuizResponse      `json:"quiz"`
	Questions []QuestionResponse `json:"questions"`
}

// SubmitResponse результат отправки ответов
type SubmitResponse struct {
	Success    bool    `json:"success"`
	AttemptID  uint    `json:"attempt_id"`
	Score      int     `json:"score"`
	MaxScore   int     `json:"max_score"`
	Percentage float64 `json:"percentage"`
	Passed     bool    `json:"passed"`
	Correct    int     `json:"correct_answers"`
	Incorrect  int     `json:"incorrect_answers"`
	Skipped    int     `json:"skipped"`
	Message    string  `json:"message"`
}

// NewQuestionResponse создает DTO вопроса без признаков правильности
func NewQuestionResponse(q *entity.Question) QuestionResponse {
	return QuestionResponse{
		ID:      q.ID,
		QuizID:  q.QuizID,
		Text:    q.Text,
		Type:    q.Type,
		Marks:   q.Marks,
		Order:   q.Order,
		Options: helper.ConvertOptionsToObjects(q.Options),
	}
}

// NewQuestionListResponse создает DTO для списка вопросов
func NewQuestionListResponse(questions []entity.Question) []QuestionResponse {
	result := make([]QuestionResponse, len(questions))
	for i := range questions {
		result[i] = NewQuestionResponse(&questions[i])
	}
	return result
}

// NewQuizResponse создает DTO викторины; includeQuestions добавляет вопросы в публичном виде
func NewQuizResponse(quiz *entity.Quiz, includeQuestions bool) *QuizResponse {
	resp := &QuizResponse{
		ID:            quiz.ID,
		CreatedBy:     quiz.CreatedByID,
		Title:         quiz.Title,
		Category:      quiz.Category,
		Difficulty:    quiz.Difficulty,
		Description:   quiz.Description,
		TotalMarks:    quiz.TotalMarks,
		TimeLimit:     quiz.TimeLimit,
		PassingMarks:  quiz.PassingMarks,
		Status:        quiz.Status,
		QuestionCount: len(quiz.Questions),
		CreatedAt:     quiz.CreatedAt,
		UpdatedAt:     quiz.UpdatedAt,
	}
	if includeQuestions {
		resp.Questions = NewQuestionListResponse(quiz.Questions)
	}
	return resp
}

// NewListQuizResponse создает DTO для списка викторин (без вопросов)
func NewListQuizResponse(quizzes []entity.Quiz) []*QuizResponse {
	result := make([]*QuizResponse, len(quizzes))
	for i := range quizzes {
		result[i] = NewQuizResponse(&quizzes[i], false)
	}
	return result
}
