package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
	"github.com/yourusername/quizmaster-api/pkg/auth"
)

// DefaultMinPasswordLength минимальная длина пароля по умолчанию
const DefaultMinPasswordLength = 8

// TokenIssuer выпускает и отзывает токены доступа
type TokenIssuer interface {
	GenerateToken(userID uint, username, role string) (string, time.Time, error)
	RevokeToken(ctx context.Context, claims *auth.JWTCustomClaims) error
}

// RegisterInput содержит данные для регистрации
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	Password2 string
	FirstName string
	LastName  string
}

// LoginResult токен и пользователь после успешного входа
type LoginResult struct {
	User      *entity.User
	Token     string
	ExpiresAt time.Time
}

// AuthService регистрирует пользователей и выдаёт токены
type AuthService struct {
	userRepo          repository.UserRepository
	tokens            TokenIssuer
	minPasswordLength int
}

// NewAuthService создает сервис аутентификации
func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer, minPasswordLength int) *AuthService {
	if minPasswordLength <= 0 {
		minPasswordLength = DefaultMinPasswordLength
	}
	return &AuthService{
		userRepo:          userRepo,
		tokens:            tokens,
		minPasswordLength: minPasswordLength,
	}
}

// RegisterTeacher создает преподавателя с пустым профилем
func (s *AuthService) RegisterTeacher(input RegisterInput) (*entity.User, error) {
	user, err := s.prepareUser(input, entity.RoleTeacher)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.CreateTeacher(user, &entity.Teacher{}); err != nil {
		return nil, fmt.Errorf("failed to create teacher: %w", err)
	}
	log.Printf("[AuthService] Registered teacher #%d (%s)", user.ID, user.Username)
	return user, nil
}

// RegisterStudent создает студента с пустым профилем
func (s *AuthService) RegisterStudent(input RegisterInput) (*entity.User, error) {
	user, err := s.prepareUser(input, entity.RoleStudent)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.CreateStudent(user, &entity.Student{}); err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}
	log.Printf("[AuthService] Registered student #%d (%s)", user.ID, user.Username)
	return user, nil
}

func (s *AuthService) prepareUser(input RegisterInput, role string) (*entity.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = normalizeEmail(input.Email)
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)

	if input.Username == "" || input.Email == "" || input.Password == "" || input.Password2 == "" {
		return nil, fmt.Errorf("%w: all fields are required", apperrors.ErrValidation)
	}
	if input.Password != input.Password2 {
		return nil, fmt.Errorf("%w: passwords do not match", apperrors.ErrValidation)
	}
	if len(input.Password) < s.minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters long", apperrors.ErrValidation, s.minPasswordLength)
	}

	usernameTaken, emailTaken, err := s.userRepo.ExistsByUsernameOrEmail(input.Username, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}
	if usernameTaken {
		return nil, fmt.Errorf("%w: username already exists", apperrors.ErrConflict)
	}
	if emailTaken {
		return nil, fmt.Errorf("%w: email already registered", apperrors.ErrConflict)
	}

	return &entity.User{
		Username:  input.Username,
		Email:     input.Email,
		Password:  input.Password,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Role:      role,
	}, nil
}

// Login проверяет логин (username или email) и пароль и выдаёт токен.
// expectedRole пустая строка - любая роль.
func (s *AuthService) Login(identifier, password, expectedRole string) (*LoginResult, error) {
	user, err := s.findByIdentifier(strings.TrimSpace(identifier))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[AuthService] Login failed: user %q not found", identifier)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.CheckPassword(password) {
		log.Printf("[AuthService] Login failed: wrong password for user #%d", user.ID)
		return nil, ErrInvalidCredentials
	}
	if expectedRole != "" && user.Role != expectedRole {
		log.Printf("[AuthService] Login failed: user #%d has role %s, expected %s", user.ID, user.Role, expectedRole)
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Logout отзывает текущий токен
func (s *AuthService) Logout(ctx context.Context, claims *auth.JWTCustomClaims) error {
	return s.tokens.RevokeToken(ctx, claims)
}

func (s *AuthService) findByIdentifier(identifier string) (*entity.User, error) {
	if strings.Contains(identifier, "@") {
		return s.userRepo.GetByEmail(normalizeEmail(identifier))
	}
	return s.userRepo.GetByUsername(identifier)
}

// normalizeEmail приводит email к стандартному виду: trim пробелов + lowercase
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
