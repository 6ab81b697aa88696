package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Failure taxonomy for one submission. The first four are fatal to the whole
// submission; the catalog/promotion errors are fatal to a single line item only.
var (
	ErrInference       = errors.New("inference failed")
	ErrArtifactUpload  = errors.New("artifact upload failed")
	ErrPayloadParse    = errors.New("payload parse failed")
	ErrFlyerInsert     = errors.New("flyer insert failed")
	ErrCatalogLookup   = errors.New("catalog lookup failed")
	ErrCatalogInsert   = errors.New("catalog insert failed")
	ErrPromotionInsert = errors.New("promotion insert failed")

	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
)

// NewAppError builds an AppError with a machine-readable code.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
