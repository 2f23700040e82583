package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUser_BeforeSave(t *testing.T) {
	preHashed, err := bcrypt.GenerateFromPassword([]byte("s3cretpass"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name      string
		password  string
		unchanged bool
	}{
		{"открытый пароль хешируется", "s3cretpass", false},
		{"готовый хеш не трогаем", string(preHashed), true},
		{"пустой пароль", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{Username: "alice", Email: "a@example.com", Password: tt.password, Role: RoleStudent}
			require.NoError(t, u.BeforeSave(nil))

			if tt.unchanged {
				assert.Equal(t, tt.password, u.Password)
				return
			}
			assert.NotEqual(t, tt.password, u.Password)
			assert.True(t, u.CheckPassword(tt.password))
			assert.False(t, u.CheckPassword("wrong-password"))
		})
	}
}

func TestUser_FullName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{"имя и фамилия", User{Username: "ivan", FirstName: "Иван", LastName: "Петров"}, "Иван Петров"},
		{"только имя", User{Username: "ivan", FirstName: "Иван"}, "Иван"},
		{"пусто - username", User{Username: "ivan"}, "ivan"},
		{"пробелы - username", User{Username: "ivan", FirstName: "  ", LastName: " "}, "ivan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.FullName())
		})
	}
}

func TestUser_Roles(t *testing.T) {
	teacher := &User{Role: RoleTeacher}
	student := &User{Role: RoleStudent}

	assert.True(t, teacher.IsTeacher())
	assert.False(t, teacher.IsStudent())
	assert.True(t, student.IsStudent())
	assert.False(t, student.IsTeacher())
}
