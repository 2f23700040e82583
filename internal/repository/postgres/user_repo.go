package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
)

// UserRepo реализует repository.UserRepository
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo создает новый репозиторий пользователей
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// CreateTeacher создает пользователя и профиль преподавателя
func (r *UserRepo) CreateTeacher(user *entity.User, profile *entity.Teacher) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile.UserID = user.ID
		return tx.Create(profile).Error
	})
	return translateError(err)
}

// CreateStudent создает пользователя и профиль студента
func (r *UserRepo) CreateStudent(user *entity.User, profile *entity.Student) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile.UserID = user.ID
		if profile.EnrollmentDate.IsZero() {
			profile.EnrollmentDate = time.Now()
		}
		return tx.Create(profile).Error
	})
	return translateError(err)
}

// GetByID возвращает пользователя по ID
func (r *UserRepo) GetByID(id uint) (*entity.User, error) {
	var user entity.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// GetByEmail возвращает пользователя по email
func (r *UserRepo) GetByEmail(email string) (*entity.User, error) {
	var user entity.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// GetByUsername возвращает пользователя по имени пользователя
func (r *UserRepo) GetByUsername(username string) (*entity.User, error) {
	var user entity.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// ExistsByUsernameOrEmail проверяет занятость username и email одним запросом
func (r *UserRepo) ExistsByUsernameOrEmail(username, email string) (bool, bool, error) {
	var users []entity.User
	err := r.db.Select("id", "username", "email").
		Where("username = ? OR email = ?", username, email).
		Find(&users).Error
	if err != nil {
		return false, false, err
	}

	var usernameTaken, emailTaken bool
	for _, u := range users {
		if u.Username == username {
			usernameTaken = true
		}
		if u.Email == email {
			emailTaken = true
		}
	}
	return usernameTaken, emailTaken, nil
}

// UpdateProfile обновляет поля пользователя без изменения пароля и роли
func (r *UserRepo) UpdateProfile(userID uint, updates map[string]interface{}) error {
	delete(updates, "password")
	delete(updates, "role")
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now()

	err := r.db.Model(&entity.User{}).Where("id = ?", userID).Updates(updates).Error
	return translateError(err)
}

// GetTeacherProfile возвращает профиль преподавателя вместе с пользователем
func (r *UserRepo) GetTeacherProfile(userID uint) (*entity.Teacher, error) {
	var teacher entity.Teacher
	if err := r.db.Preload("User").Where("user_id = ?", userID).First(&teacher).Error; err != nil {
		return nil, translateError(err)
	}
	return &teacher, nil
}

// GetStudentProfile возвращает профиль студента вместе с пользователем
func (r *UserRepo) GetStudentProfile(userID uint) (*entity.Student, error) {
	var student entity.Student
	if err := r.db.Preload("User").Where("user_id = ?", userID).First(&student).Error; err != nil {
		return nil, translateError(err)
	}
	return &student, nil
}

// UpdateTeacherProfile точечно обновляет профиль преподавателя
func (r *UserRepo) UpdateTeacherProfile(userID uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now()
	return r.db.Model(&entity.Teacher{}).Where("user_id = ?", userID).Updates(updates).Error
}

// UpdateStudentProfile точечно обновляет профиль студента
func (r *UserRepo) UpdateStudentProfile(userID uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now()
	return r.db.Model(&entity.Student{}).Where("user_id = ?", userID).Updates(updates).Error
}
