package entity

import (
	"time"
)

// Статусы попытки
const (
	AttemptStatusInProgress = "in_progress"
	AttemptStatusCompleted  = "completed"
)

// Attempt одна попытка студента пройти викторину.
// ID попытки служит явным дескриптором для клиента: отправка ответов идёт по нему.
type Attempt struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	StudentID        uint       `gorm:"not null;index:idx_attempts_student_quiz" json:"student_id"`
	QuizID           uint       `gorm:"not null;index:idx_attempts_student_quiz" json:"quiz_id"`
	Quiz             *Quiz      `gorm:"foreignKey:QuizID" json:"quiz,omitempty"`
	Student          *User      `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Status           string     `gorm:"size:20;not null;default:'in_progress';index" json:"status"`
	StartTime        time.Time  `gorm:"not null;index" json:"start_time"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	TimeSpent        int        `gorm:"not null;default:0" json:"time_spent"` // секунды
	Score            *int       `json:"score"`
	MaxScore         int        `gorm:"not null;default:0" json:"max_score"`
	Percentage       *float64   `json:"percentage"`
	Passed           *bool      `json:"passed"`
	CorrectAnswers   int        `gorm:"not null;default:0" json:"correct_answers"`
	IncorrectAnswers int        `gorm:"not null;default:0" json:"incorrect_answers"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Attempt) TableName() string {
	return "quiz_attempts"
}

// IsCompleted проверяет, завершена ли попытка
func (a *Attempt) IsCompleted() bool {
	return a.Status == AttemptStatusCompleted
}

// IsInProgress проверяет, что попытка ещё принимает ответы
func (a *Attempt) IsInProgress() bool {
	return a.Status == AttemptStatusInProgress
}

// StudentAnswer ответ студента на один вопрос в рамках попытки.
// Уникален по (attempt_id, question_id).
type StudentAnswer struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	AttemptID        uint      `gorm:"not null;uniqueIndex:idx_student_answers_attempt_question" json:"attempt_id"`
	QuestionID       uint      `gorm:"not null;uniqueIndex:idx_student_answers_attempt_question" json:"question_id"`
	Question         *Question `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
	SelectedOptionID *uint     `json:"selected_option_id"`
	SelectedOption   *Option   `gorm:"foreignKey:SelectedOptionID" json:"selected_option,omitempty"`
	IsCorrect        bool      `gorm:"not null;default:false" json:"is_correct"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (StudentAnswer) TableName() string {
	return "student_answers"
}
