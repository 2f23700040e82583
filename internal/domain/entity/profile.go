package entity

import (
	"time"
)

// Teacher профиль преподавателя (1:1 с User)
type Teacher struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	User            *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Phone           string    `gorm:"size:15;not null;default:''" json:"phone"`
	Qualification   string    `gorm:"size:100;not null;default:''" json:"qualification"`
	Specialization  string    `gorm:"size:100;not null;default:''" json:"specialization"`
	YearsExperience int       `gorm:"not null;default:0" json:"years_experience"`
	Institution     string    `gorm:"size:200;not null;default:''" json:"institution"`
	Bio             string    `gorm:"type:text;not null;default:''" json:"bio"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Teacher) TableName() string {
	return "teachers"
}

// Student профиль студента (1:1 с User)
type Student struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	User           *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Phone          string    `gorm:"size:15;not null;default:''" json:"phone"`
	Grade          string    `gorm:"size:20;not null;default:''" json:"grade"`
	School         string    `gorm:"size:200;not null;default:''" json:"school"`
	Bio            string    `gorm:"type:text;not null;default:''" json:"bio"`
	EnrollmentDate time.Time `gorm:"type:date;not null" json:"enrollment_date"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Student) TableName() string {
	return "students"
}
