package prompts

import (
	"errors"
	"net/http"
)

// Domain errors for prompt operations.
var (
	ErrNotFound      = errors.New("prompt not found")
	ErrDuplicate     = errors.New("prompt name already exists")
	ErrInvalidAgent  = errors.New("unknown collaborating agent")
	ErrInvalidPrompt = errors.New("prompt requires a name and instructions")
)

// MapHTTPStatus maps prompt domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidAgent), errors.Is(err, ErrInvalidPrompt):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
