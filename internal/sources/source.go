// Package sources manages the legal source texts (explanatory notes, section
// and chapter notes) that back local validation. Sources live in blob storage
// under sources/<heading>/<filename>; the storage key is the identity.
package sources

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/JaimeStill/tariff/pkg/storage"
	"github.com/JaimeStill/tariff/workflow"
)

const keyPrefix = "sources/"

// Source describes a stored legal source.
type Source struct {
	Key          string    `json:"key"`
	Heading      string    `json:"heading"`
	Filename     string    `json:"filename"`
	ContentType  string    `json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	PageCount    *int      `json:"page_count,omitempty"`
	LastModified time.Time `json:"last_modified,omitzero"`
}

// SourceList is one page of a heading listing. NextMarker is empty on the last page.
type SourceList struct {
	Sources    []Source `json:"sources"`
	NextMarker string   `json:"next_marker,omitempty"`
}

// UploadCommand carries the data needed to store a legal source.
// PageCount is extracted by the handler for PDF uploads.
type UploadCommand struct {
	Data        []byte
	Heading     string
	Filename    string
	ContentType string
	PageCount   *int
}

// MatchCommand is the body of a match request.
type MatchCommand struct {
	Description string `json:"description"`
}

// Key builds the storage key of a source. The heading is reduced to its
// 4-digit form; codes shorter than a heading are rejected.
func Key(heading, filename string) (string, error) {
	h := workflow.Heading(heading)
	if h == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidHeading, heading)
	}
	return keyPrefix + h + "/" + sanitizeFilename(filename), nil
}

// HeadingPrefix returns the listing prefix for a heading, or the root prefix
// when heading is empty.
func HeadingPrefix(heading string) (string, error) {
	if heading == "" {
		return keyPrefix, nil
	}
	h := workflow.Heading(heading)
	if h == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidHeading, heading)
	}
	return keyPrefix + h + "/", nil
}

func fromMeta(meta storage.BlobMeta) Source {
	s := Source{
		Key:          meta.Key,
		ContentType:  meta.ContentType,
		SizeBytes:    meta.ContentLength,
		LastModified: meta.LastModified,
	}
	rest := strings.TrimPrefix(meta.Key, keyPrefix)
	if heading, name, ok := strings.Cut(rest, "/"); ok {
		s.Heading = heading
		s.Filename = name
	}
	return s
}

func validateKey(key string) error {
	rest, ok := strings.CutPrefix(key, keyPrefix)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	heading, name, ok := strings.Cut(rest, "/")
	if !ok || name == "" || workflow.Heading(heading) != heading {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" || name == "/" {
		name = "source"
	}
	return url.PathEscape(name)
}

func isText(contentType string) bool {
	return strings.HasPrefix(contentType, "text/")
}

func baseName(key string) string {
	return path.Base(key)
}
