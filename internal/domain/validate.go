package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct runs tag validation and converts failures into a ValidationError.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fieldPath(fe)] = describe(fe)
	}
	return out
}

// fieldPath drops the root struct name: "Quiz.questions[0].options" -> "questions[0].options".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("needs at least %s entries", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return "must be one of " + fe.Param()
	case "email":
		return "must be a valid email"
	default:
		return "failed " + fe.Tag()
	}
}

// ValidateLesson checks the fields a lesson needs before it can be stored.
func ValidateLesson(l Lesson) error {
	return Struct(l)
}

// ValidateQuiz checks a quiz before it is stored or an attempt session starts.
// On top of the struct tags every CorrectAnswer must index into its Options.
func ValidateQuiz(q Quiz) error {
	var out *ValidationError
	if err := Struct(q); err != nil {
		if !errors.As(err, &out) {
			return err
		}
	}
	for i, question := range q.Questions {
		if question.CorrectAnswer < 0 || question.CorrectAnswer >= len(question.Options) {
			if out == nil {
				out = &ValidationError{Fields: map[string]string{}}
			}
			out.Fields[fmt.Sprintf("questions[%d].correctAnswer", i)] =
				fmt.Sprintf("must index one of %d options", len(question.Options))
		}
	}
	if out != nil {
		return out
	}
	return nil
}

// ValidateAnswers checks an attempt's answers against the quiz it belongs to:
// one entry per question, each either Unanswered or a valid option index.
func ValidateAnswers(q Quiz, answers []int) error {
	if len(answers) != len(q.Questions) {
		return NewValidationError("answers", fmt.Sprintf("expected %d answers, got %d", len(q.Questions), len(answers)))
	}
	for i, a := range answers {
		if a == Unanswered {
			continue
		}
		if a < 0 || a >= len(q.Questions[i].Options) {
			return NewValidationError(fmt.Sprintf("answers[%d]", i), "option out of range")
		}
	}
	return nil
}
