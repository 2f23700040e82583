package entity

import (
	"time"
)

// Константы статусов викторины
const (
	QuizStatusActive   = "active"
	QuizStatusInactive = "inactive"
)

// Уровни сложности
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// DefaultPassingRatio доля от total_marks, если проходной балл не задан
const DefaultPassingRatio = 0.6

// Quiz представляет викторину, созданную преподавателем
type Quiz struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	CreatedByID  uint       `gorm:"column:created_by;not null;index" json:"created_by"`
	Title        string     `gorm:"size:200;not null;index" json:"title"`
	Category     string     `gorm:"size:100;not null;index" json:"category"`
	Difficulty   string     `gorm:"size:20;not null;default:'medium'" json:"difficulty"`
	Description  string     `gorm:"type:text;not null;default:''" json:"description"`
	TotalMarks   int        `gorm:"not null" json:"total_marks"`
	TimeLimit    int        `gorm:"not null" json:"time_limit"` // минуты
	PassingMarks int        `gorm:"not null" json:"passing_marks"`
	Status       string     `gorm:"size:20;not null;default:'active';index" json:"status"`
	Questions    []Question `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Quiz) TableName() string {
	return "quizzes"
}

// IsActive проверяет, доступна ли викторина студентам
func (q *Quiz) IsActive() bool {
	return q.Status == QuizStatusActive
}

// IsOwnedBy проверяет, что викторина создана указанным преподавателем
func (q *Quiz) IsOwnedBy(userID uint) bool {
	return q.CreatedByID == userID
}

// DefaultPassingMarks возвращает 60% от общего количества баллов (с округлением вниз)
func DefaultPassingMarks(totalMarks int) int {
	return int(float64(totalMarks) * DefaultPassingRatio)
}

// IsValidDifficulty проверяет допустимость значения сложности
func IsValidDifficulty(d string) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}
