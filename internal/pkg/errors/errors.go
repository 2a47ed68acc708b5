package errors

import (
	"errors"
	"fmt"
)

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (неверные учетные данные, неверный токен).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у вызывающего недостаточно прав для действия.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrExpiredToken используется, когда токен администратора истек.
	ErrExpiredToken = errors.New("token is expired")

	// ErrConflict используется для конфликтов уникальности (slug курса, slug урока в курсе).
	ErrConflict = errors.New("resource state conflict")

	// ErrConversion используется, когда загруженный документ не удалось преобразовать.
	ErrConversion = errors.New("document conversion failed")

	// ErrIntegrity используется, когда операция нарушила бы ссылочную целостность.
	ErrIntegrity = errors.New("referential integrity violation")
)

// FieldError описывает ошибку валидации конкретного поля.
// errors.Is(err, ErrValidation) для нее возвращает true.
type FieldError struct {
	Field  string
	Reason string
}

// NewFieldError создает ошибку валидации поля
func NewFieldError(field, reason string) *FieldError {
	return &FieldError{Field: field, Reason: reason}
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Reason)
}

// Unwrap позволяет сопоставлять FieldError с ErrValidation
func (e *FieldError) Unwrap() error {
	return ErrValidation
}

// ConversionError возникает при сбое преобразования документа определенного формата.
type ConversionError struct {
	Format string
	Err    error
}

func (e *ConversionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s (%s)", ErrConversion.Error(), e.Format)
	}
	return fmt.Sprintf("%s (%s): %v", ErrConversion.Error(), e.Format, e.Err)
}

// Is сопоставляет ConversionError с ErrConversion
func (e *ConversionError) Is(target error) bool {
	return target == ErrConversion
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// AsFieldError извлекает FieldError из цепочки ошибок
func AsFieldError(err error) (*FieldError, bool) {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
