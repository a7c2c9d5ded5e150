package services

import (
	"errors"

	apperrors "github.com/linguabridge/learning-service/internal/errors"
	"github.com/linguabridge/learning-service/internal/session"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Content specific errors
	ErrUnitNotFound     = errors.New("unit not found")
	ErrSubtopicNotFound = errors.New("subtopic not found")
	ErrSubtopicEmpty    = errors.New("subtopic has no questions")

	// Session specific errors
	ErrSessionNotFound  = errors.New("session not found")
	ErrSubtopicLocked   = errors.New("subtopic is locked")
	ErrSessionCompleted = errors.New("session already completed")

	// Progress specific errors
	ErrProgressNotFound = errors.New("progress not found")
)

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUnitNotFound) ||
		errors.Is(err, ErrSubtopicNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrProgressNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if error represents a state the request cannot act on
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrSessionCompleted) ||
		errors.Is(err, session.ErrSessionFinished) ||
		errors.Is(err, session.ErrQuestionChecked)
}

// IsForbidden checks if error represents a locked resource
func IsForbidden(err error) bool {
	return errors.Is(err, ErrSubtopicLocked)
}

// IsPrecondition checks if error represents a session state machine rule
// the client tripped over (answer missing, check pending, navigation edge).
func IsPrecondition(err error) bool {
	return errors.Is(err, session.ErrAnswerRequired) ||
		errors.Is(err, session.ErrCheckRequired) ||
		errors.Is(err, session.ErrAtFirstQuestion) ||
		errors.Is(err, session.ErrResultsNotReached) ||
		errors.Is(err, session.ErrNotDragAndDrop) ||
		errors.Is(err, session.ErrBlankOutOfRange) ||
		errors.Is(err, session.ErrBlankUnassigned) ||
		errors.Is(err, session.ErrTokenNotFound)
}
