package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrLessonNotFound is returned when a referenced lesson does not exist.
	ErrLessonNotFound = errors.New("lesson not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrProgressNotFound is returned when a student has no progress row for a lesson.
	ErrProgressNotFound = errors.New("lesson progress not found")
	// ErrUserNotFound is returned by user stores for unknown ids or emails.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned on sign up with an already registered email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials hides whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthenticated is returned for missing or invalid tokens.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is returned when the actor's role or ownership does not allow an action.
	ErrForbidden = errors.New("forbidden")
	// ErrUnanswered rejects advancing past a question that has no answer selected.
	ErrUnanswered = errors.New("current question is unanswered")
	// ErrAlreadySubmitted rejects answer changes and navigation on a submitted quiz.
	ErrAlreadySubmitted = errors.New("quiz already submitted")
)

// ValidationError reports malformed input, keyed by field.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError with a single field message.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// PersistenceError wraps a failed gateway read or write.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPersistence reports whether err carries a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
