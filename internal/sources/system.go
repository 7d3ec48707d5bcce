package sources

import (
	"context"

	"github.com/JaimeStill/tariff/internal/legaltext"
	"github.com/JaimeStill/tariff/pkg/storage"
)

// System defines the public contract for legal source operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(ctx context.Context, heading, marker string, maxResults int32) (*SourceList, error)
	Find(ctx context.Context, key string) (*Source, error)
	Upload(ctx context.Context, cmd UploadCommand) (*Source, error)
	// Download opens the source blob. The caller must close Body.
	Download(ctx context.Context, key string) (*storage.BlobContent, error)
	Delete(ctx context.Context, key string) error

	// Parse reads a text source and categorizes its sentences.
	Parse(ctx context.Context, key string) (*legaltext.ParsedText, error)
	// Match checks a product description against a text source.
	Match(ctx context.Context, key, description string) (*legaltext.MatchResult, error)
}
