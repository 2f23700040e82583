package service

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

// MaxYearsExperience верхняя граница стажа преподавателя
const MaxYearsExperience = 50

// Profile пользователь и его профиль по роли
type Profile struct {
	User    *entity.User    `json:"user"`
	Teacher *entity.Teacher `json:"teacher,omitempty"`
	Student *entity.Student `json:"student,omitempty"`
}

// ProfileUpdate изменяемые поля. nil - поле не меняется.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Bio       *string

	// только преподаватель
	Qualification   *string
	Specialization  *string
	YearsExperience *int
	Institution     *string

	// только студент
	Grade  *string
	School *string
}

// ProfileService предоставляет методы для работы с профилями пользователей
type ProfileService struct {
	userRepo repository.UserRepository
}

// NewProfileService создает новый сервис профилей
func NewProfileService(userRepo repository.UserRepository) *ProfileService {
	return &ProfileService{userRepo: userRepo}
}

// GetProfile возвращает пользователя вместе с профилем его роли
func (s *ProfileService) GetProfile(userID uint) (*Profile, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{User: user}
	switch user.Role {
	case entity.RoleTeacher:
		teacher, err := s.userRepo.GetTeacherProfile(userID)
		if err != nil {
			return nil, fmt.Errorf("teacher profile not found: %w", err)
		}
		teacher.User = nil
		profile.Teacher = teacher
	case entity.RoleStudent:
		student, err := s.userRepo.GetStudentProfile(userID)
		if err != nil {
			return nil, fmt.Errorf("student profile not found: %w", err)
		}
		student.User = nil
		profile.Student = student
	}
	return profile, nil
}

// UpdateProfile обновляет учётную запись и профиль роли
func (s *ProfileService) UpdateProfile(userID uint, in ProfileUpdate) (*Profile, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	userUpdates := map[string]interface{}{}
	if in.FirstName != nil {
		userUpdates["first_name"] = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		userUpdates["last_name"] = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email == "" {
			return nil, fmt.Errorf("%w: email cannot be empty", apperrors.ErrValidation)
		}
		if email != user.Email {
			existing, err := s.userRepo.GetByEmail(email)
			if err == nil && existing.ID != userID {
				return nil, fmt.Errorf("%w: email already registered", apperrors.ErrConflict)
			}
			if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			userUpdates["email"] = email
		}
	}

	roleUpdates := map[string]interface{}{}
	if in.Phone != nil {
		roleUpdates["phone"] = strings.TrimSpace(*in.Phone)
	}
	if in.Bio != nil {
		roleUpdates["bio"] = strings.TrimSpace(*in.Bio)
	}

	switch user.Role {
	case entity.RoleTeacher:
		if in.Qualification != nil {
			roleUpdates["qualification"] = strings.TrimSpace(*in.Qualification)
		}
		if in.Specialization != nil {
			roleUpdates["specialization"] = strings.TrimSpace(*in.Specialization)
		}
		if in.Institution != nil {
			roleUpdates["institution"] = strings.TrimSpace(*in.Institution)
		}
		if in.YearsExperience != nil {
			if *in.YearsExperience < 0 || *in.YearsExperience > MaxYearsExperience {
				return nil, fmt.Errorf("%w: years of experience must be between 0 and %d", apperrors.ErrValidation, MaxYearsExperience)
			}
			roleUpdates["years_experience"] = *in.YearsExperience
		}
	case entity.RoleStudent:
		if in.Grade != nil {
			roleUpdates["grade"] = strings.TrimSpace(*in.Grade)
		}
		if in.School != nil {
			roleUpdates["school"] = strings.TrimSpace(*in.School)
		}
	}

	if err := s.userRepo.UpdateProfile(userID, userUpdates); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if len(roleUpdates) > 0 {
		switch user.Role {
		case entity.RoleTeacher:
			err = s.userRepo.UpdateTeacherProfile(userID, roleUpdates)
		case entity.RoleStudent:
			err = s.userRepo.UpdateStudentProfile(userID, roleUpdates)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	log.Printf("[ProfileService] Profile of user #%d updated (%d user fields, %d profile fields)", userID, len(userUpdates), len(roleUpdates))
	return s.GetProfile(userID)
}
