package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
	"github.com/yourusername/quizmaster-api/pkg/auth"
)

// MockTokenIssuer реализует TokenIssuer
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) GenerateToken(userID uint, username, role string) (string, time.Time, error) {
	args := m.Called(userID, username, role)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenIssuer) RevokeToken(ctx context.Context, claims *auth.JWTCustomClaims) error {
	args := m.Called(ctx, claims)
	return args.Error(0)
}

func hashedUser(t *testing.T, id uint, username, email, password, role string) *entity.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &entity.User{ID: id, Username: username, Email: email, Password: string(hash), Role: role}
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Username:  "alice",
		Email:     "  Alice@Example.COM ",
		Password:  "s3cretpass",
		Password2: "s3cretpass",
		FirstName: " Alice ",
		LastName:  "Smith",
	}
}

func TestAuthService_RegisterTeacher_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewAuthService(userRepo, new(MockTokenIssuer), 0)

	userRepo.On("ExistsByUsernameOrEmail", "alice", "alice@example.com").Return(false, false, nil)
	userRepo.On("CreateTeacher", mock.MatchedBy(func(u *entity.User) bool {
		return u.Role == entity.RoleTeacher && u.Email == "alice@example.com" && u.FirstName == "Alice"
	}), mock.AnythingOfType("*entity.Teacher")).Return(nil)

	user, err := svc.RegisterTeacher(validRegisterInput())
	require.NoError(t, err)
	assert.Equal(t, entity.RoleTeacher, user.Role)
	userRepo.AssertExpectations(t)
}

func TestAuthService_RegisterStudent_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewAuthService(userRepo, new(MockTokenIssuer), 0)

	userRepo.On("ExistsByUsernameOrEmail", "alice", "alice@example.com").Return(false, false, nil)
	userRepo.On("CreateStudent", mock.AnythingOfType("*entity.User"), mock.AnythingOfType("*entity.Student")).Return(nil)

	user, err := svc.RegisterStudent(validRegisterInput())
	require.NoError(t, err)
	assert.Equal(t, entity.RoleStudent, user.Role)
	userRepo.AssertNotCalled(t, "CreateTeacher", mock.Anything, mock.Anything)
}

func TestAuthService_Register_Validation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(in *RegisterInput)
		want   string
	}{
		{"missing username", func(in *RegisterInput) { in.Username = "  " }, "all fields are required"},
		{"missing password2", func(in *RegisterInput) { in.Password2 = "" }, "all fields are required"},
		{"passwords differ", func(in *RegisterInput) { in.Password2 = "other-pass" }, "passwords do not match"},
		{"short password", func(in *RegisterInput) { in.Password, in.Password2 = "short", "short" }, "at least 8 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := new(MockUserRepository)
			svc := NewAuthService(userRepo, new(MockTokenIssuer), 8)

			in := validRegisterInput()
			tt.modify(&in)
			_, err := svc.RegisterStudent(in)

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
			assert.Contains(t, err.Error(), tt.want)
			userRepo.AssertNotCalled(t, "CreateStudent", mock.Anything, mock.Anything)
		})
	}
}

func TestAuthService_Register_Duplicates(t *testing.T) {
	tests := []struct {
		name          string
		usernameTaken bool
		emailTaken    bool
		want          string
	}{
		{"username taken", true, false, "username already exists"},
		{"email taken", false, true, "email already registered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := new(MockUserRepository)
			svc := NewAuthService(userRepo, new(MockTokenIssuer), 0)
			userRepo.On("ExistsByUsernameOrEmail", "alice", "alice@example.com").Return(tt.usernameTaken, tt.emailTaken, nil)

			_, err := svc.RegisterTeacher(validRegisterInput())
			assert.ErrorIs(t, err, apperrors.ErrConflict)
			assert.Contains(t, err.Error(), tt.want)
			userRepo.AssertNotCalled(t, "CreateTeacher", mock.Anything, mock.Anything)
		})
	}
}

func TestAuthService_Login_ByUsernameAndEmail(t *testing.T) {
	user := hashedUser(t, 5, "alice", "alice@example.com", "s3cretpass", entity.RoleStudent)
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	userRepo := new(MockUserRepository)
	tokens := new(MockTokenIssuer)
	svc := NewAuthService(userRepo, tokens, 0)

	userRepo.On("GetByUsername", "alice").Return(user, nil)
	userRepo.On("GetByEmail", "alice@example.com").Return(user, nil)
	tokens.On("GenerateToken", uint(5), "alice", entity.RoleStudent).Return("token-123", expires, nil)

	res, err := svc.Login(" alice ", "s3cretpass", entity.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, "token-123", res.Token)
	assert.Equal(t, expires, res.ExpiresAt)

	res, err = svc.Login("ALICE@example.com", "s3cretpass", "")
	require.NoError(t, err)
	assert.Equal(t, uint(5), res.User.ID)
}

func TestAuthService_Login_Failures(t *testing.T) {
	user := hashedUser(t, 5, "alice", "alice@example.com", "s3cretpass", entity.RoleStudent)

	tests := []struct {
		name     string
		login    string
		password string
		role     string
	}{
		{"unknown user", "bob", "s3cretpass", ""},
		{"wrong password", "alice", "wrong-pass", ""},
		{"wrong role", "alice", "s3cretpass", entity.RoleTeacher},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := new(MockUserRepository)
			tokens := new(MockTokenIssuer)
			svc := NewAuthService(userRepo, tokens, 0)
			userRepo.On("GetByUsername", "alice").Return(user, nil)
			userRepo.On("GetByUsername", "bob").Return(nil, apperrors.ErrNotFound)

			_, err := svc.Login(tt.login, tt.password, tt.role)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
			assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
			tokens.AssertNotCalled(t, "GenerateToken", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAuthService_Login_RepositoryError(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := NewAuthService(userRepo, new(MockTokenIssuer), 0)
	dbErr := errors.New("connection refused")
	userRepo.On("GetByUsername", "alice").Return(nil, dbErr)

	_, err := svc.Login("alice", "whatever", "")
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Logout(t *testing.T) {
	tokens := new(MockTokenIssuer)
	svc := NewAuthService(new(MockUserRepository), tokens, 0)
	claims := &auth.JWTCustomClaims{UserID: 5}
	tokens.On("RevokeToken", mock.Anything, claims).Return(nil)

	require.NoError(t, svc.Logout(context.Background(), claims))
	tokens.AssertExpectations(t)
}
