package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (неверный токен, неверный пароль).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у пользователя недостаточно прав для действия.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidRequest используется, когда тело запроса нельзя разобрать.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrConflict используется для конфликтов состояния (например, повторная отправка завершённой попытки).
	ErrConflict = errors.New("resource state conflict")
)
