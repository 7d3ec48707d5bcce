package sources

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/tariff/pkg/storage"
)

// Domain errors for legal source operations.
var (
	ErrNotFound       = errors.New("source not found")
	ErrInvalidHeading = errors.New("invalid tariff heading")
	ErrInvalidKey     = errors.New("invalid source key")
	ErrInvalidFile    = errors.New("invalid file")
	ErrFileTooLarge   = errors.New("file exceeds maximum upload size")
	ErrNotText        = errors.New("source is not a text document")
	ErrNoDescription  = errors.New("product description is required")
)

// MapHTTPStatus maps source domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrNotText):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrInvalidHeading),
		errors.Is(err, ErrInvalidKey),
		errors.Is(err, ErrInvalidFile),
		errors.Is(err, ErrNoDescription),
		errors.Is(err, storage.ErrInvalidMaxResults):
		return http.StatusBadRequest
	default:
		return storage.MapHTTPStatus(err)
	}
}
