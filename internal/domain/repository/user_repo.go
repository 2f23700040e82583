package repository

import (
	"github.com/yourusername/quizmaster-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями и их профилями
type UserRepository interface {
	// CreateTeacher создаёт пользователя и профиль преподавателя в одной транзакции
	CreateTeacher(user *entity.User, profile *entity.Teacher) error
	// CreateStudent создаёт пользователя и профиль студента в одной транзакции
	CreateStudent(user *entity.User, profile *entity.Student) error
	GetByID(id uint) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	GetByUsername(username string) (*entity.User, error)
	// ExistsByUsernameOrEmail сообщает, заняты ли username и email
	ExistsByUsernameOrEmail(username, email string) (usernameTaken bool, emailTaken bool, err error)
	UpdateProfile(userID uint, updates map[string]interface{}) error

	GetTeacherProfile(userID uint) (*entity.Teacher, error)
	GetStudentProfile(userID uint) (*entity.Student, error)
	UpdateTeacherProfile(userID uint, updates map[string]interface{}) error
	UpdateStudentProfile(userID uint, updates map[string]interface{}) error
}
