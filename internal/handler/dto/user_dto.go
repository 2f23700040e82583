package dto

// RegisterRequest запрос на регистрацию преподавателя или студента
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=50"`
	Email     string `json:"email" binding:"required,email,max=100"`
	Password  string `json:"password" binding:"required,max=128"`
	Password2 string `json:"password2" binding:"required"`
	FirstName string `json:"first_name" binding:"omitempty,max=100"`
	LastName  string `json:"last_name" binding:"omitempty,max=100"`
}

// LoginRequest вход по username или email
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	// Role ограничивает вход одной ролью (страницы входа преподавателя и студента раздельные)
	Role string `json:"role" binding:"omitempty,oneof=teacher student"`
}

// ProfileUpdateRequest изменяемые поля профиля; отсутствующие поля не меняются
type ProfileUpdateRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,max=100"`
	Email     *string `json:"email" binding:"omitempty,email,max=100"`
	Phone     *string `json:"phone" binding:"omitempty,max=15"`
	Bio       *string `json:"bio" binding:"omitempty,max=2000"`

	Qualification   *string `json:"qualification" binding:"omitempty,max=100"`
	Specialization  *string `json:"specialization" binding:"omitempty,max=100"`
	YearsExperience *int    `json:"years_experience" binding:"omitempty,min=0,max=50"`
	Institution     *string `json:"institution" binding:"omitempty,max=200"`

	Grade  *string `json:"grade" binding:"omitempty,max=20"`
	School *string `json:"school" binding:"omitempty,max=200"`
}
