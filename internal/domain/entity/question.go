package entity

import (
	"errors"
	"strings"
	"time"
)

// Типы вопросов
const (
	QuestionTypeMultipleChoice = "multiple_choice"
)

// Ограничения на баллы за вопрос
const (
	MinQuestionMarks = 1
	MaxQuestionMarks = 100
)

var (
	// ErrNoCorrectOption вопрос без правильного варианта
	ErrNoCorrectOption = errors.New("question must have exactly one correct option, got none")
	// ErrMultipleCorrectOptions вопрос с несколькими правильными вариантами
	ErrMultipleCorrectOptions = errors.New("question must have exactly one correct option, got several")
	// ErrTooFewOptions меньше двух непустых вариантов
	ErrTooFewOptions = errors.New("question must have at least two options")
)

// Question представляет вопрос в викторине
type Question struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	QuizID      uint      `gorm:"not null;index;uniqueIndex:idx_questions_quiz_order" json:"quiz_id"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	Type        string    `gorm:"size:20;not null;default:'multiple_choice'" json:"type"`
	Marks       int       `gorm:"not null;default:1" json:"marks"`
	Order       int       `gorm:"column:sort_order;not null;uniqueIndex:idx_questions_quiz_order" json:"order"`
	Explanation string    `gorm:"type:text;not null;default:''" json:"explanation"`
	Options     []Option  `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"options,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// CorrectOption возвращает правильный вариант ответа.
// При нескольких помеченных вариантах побеждает первый по порядку.
func (q *Question) CorrectOption() (*Option, bool) {
	for i := range q.Options {
		if q.Options[i].IsCorrect {
			return &q.Options[i], true
		}
	}
	return nil, false
}

// HasValidMarks проверяет диапазон баллов
func (q *Question) HasValidMarks() bool {
	return q.Marks >= MinQuestionMarks && q.Marks <= MaxQuestionMarks
}

// Option вариант ответа на вопрос
type Option struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID uint      `gorm:"not null;index" json:"question_id"`
	Text       string    `gorm:"size:500;not null" json:"text"`
	IsCorrect  bool      `gorm:"not null;default:false" json:"is_correct"`
	Order      int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Option) TableName() string {
	return "options"
}

// ValidateOptions проверяет, что среди вариантов ровно один правильный
// и что вариантов не меньше двух
func ValidateOptions(options []Option) error {
	if len(options) < 2 {
		return ErrTooFewOptions
	}
	correct := 0
	for _, o := range options {
		if o.IsCorrect {
			correct++
		}
	}
	switch {
	case correct == 0:
		return ErrNoCorrectOption
	case correct > 1:
		return ErrMultipleCorrectOptions
	}
	return nil
}

// BuildOptions создаёт варианты из текстов, помечая правильным вариант с индексом correctIndex.
// Пустые тексты пропускаются, но индекс считается по исходному списку.
func BuildOptions(texts []string, correctIndex int) []Option {
	options := make([]Option, 0, len(texts))
	order := 0
	for idx, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		options = append(options, Option{
			Text:      text,
			IsCorrect: idx == correctIndex,
			Order:     order,
		})
		order++
	}
	return options
}
