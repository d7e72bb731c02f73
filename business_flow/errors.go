// Package businessflow contains the use cases of the code registry
package businessflow

import (
	"errors"
	"fmt"

	"github.com/amirphl/Kyu-Ar/models"
)

// Business flow error constants
var (
	// Input errors
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidURL      = fmt.Errorf("%w: target_url must be an absolute URL", ErrInvalidInput)
	ErrMissingData     = fmt.Errorf("%w: data or slug is required", ErrInvalidInput)
	ErrUnsupportedType = models.ErrUnsupportedCodeType

	// Lookup errors
	ErrCodeNotFound = errors.New("code not found")

	// Storage errors
	ErrStorage = errors.New("storage failure")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// storageError wraps a repository failure so it matches both ErrStorage and the cause
func storageError(code, message string, err error) *BusinessError {
	return NewBusinessError(code, message, fmt.Errorf("%w: %w", ErrStorage, err))
}

func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsUnsupportedType(err error) bool {
	return errors.Is(err, ErrUnsupportedType)
}

func IsCodeNotFound(err error) bool {
	return errors.Is(err, ErrCodeNotFound)
}

func IsStorageError(err error) bool {
	return errors.Is(err, ErrStorage)
}

// ErrorCode returns the BusinessError code carried by err, or fallback
func ErrorCode(err error, fallback string) string {
	var be *BusinessError
	if errors.As(err, &be) && be.Code != "" {
		return be.Code
	}
	return fallback
}
