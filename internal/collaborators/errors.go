package collaborators

import (
	"errors"
	"net/http"
)

// Domain errors for collaborator execution.
var (
	ErrNotExecutable   = errors.New("action is not executed by a collaborator")
	ErrNoAgent         = errors.New("decision names no collaborating agent")
	ErrCallFailed      = errors.New("collaborator call failed")
	ErrEmptyReply      = errors.New("collaborator returned no content")
	ErrIncompleteReply = errors.New("collaborator reply is missing required fields")
)

// MapHTTPStatus maps collaborator errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotExecutable), errors.Is(err, ErrNoAgent):
		return http.StatusBadRequest
	case errors.Is(err, ErrCallFailed), errors.Is(err, ErrEmptyReply), errors.Is(err, ErrIncompleteReply):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
