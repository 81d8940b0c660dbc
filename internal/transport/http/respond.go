package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"learnhub/internal/domain"
)

type errorPayload struct {
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := classify(err)
	writeJSON(w, status, payload)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	return nil
}

// classify maps domain errors to a status code and a client safe payload.
func classify(err error) (int, errorPayload) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, errorPayload{Message: "validation failed", Code: "validation", Fields: ve.Fields}
	case errors.Is(err, domain.ErrUnanswered):
		return http.StatusConflict, errorPayload{Message: err.Error(), Code: "unanswered"}
	case errors.Is(err, domain.ErrAlreadySubmitted):
		return http.StatusConflict, errorPayload{Message: err.Error(), Code: "submitted"}
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict, errorPayload{Message: err.Error(), Code: "email_taken"}
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, errorPayload{Message: err.Error(), Code: "unauthenticated"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorPayload{Message: err.Error(), Code: "forbidden"}
	case errors.Is(err, domain.ErrLessonNotFound), errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrProgressNotFound), errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorPayload{Message: err.Error(), Code: "not_found"}
	case domain.IsPersistence(err):
		return http.StatusBadGateway, errorPayload{Message: "storage unavailable", Code: "persistence"}
	default:
		return http.StatusInternalServerError, errorPayload{Message: "internal error", Code: "internal"}
	}
}
