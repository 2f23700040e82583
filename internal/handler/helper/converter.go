package helper

import (
	"github.com/yourusername/quizmaster-api/internal/domain/entity"
)

// QuestionOption вариант ответа для студента, без признака правильности
type QuestionOption struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// ConvertOptionsToObjects оставляет у вариантов только id и текст.
// Используется везде, где вопрос показывается студенту до отправки ответов.
func ConvertOptionsToObjects(options []entity.Option) []QuestionOption {
	converted := make([]QuestionOption, len(options))
	for i, opt := range options {
		converted[i] = QuestionOption{ID: opt.ID, Text: opt.Text}
	}
	return converted
}
