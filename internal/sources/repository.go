package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/JaimeStill/tariff/internal/legaltext"
	"github.com/JaimeStill/tariff/pkg/storage"
)

type repo struct {
	storage     storage.System
	matcher     *legaltext.Matcher
	logger      *slog.Logger
	maxListSize int32
}

// New creates a legal source system backed by blob storage.
func New(
	store storage.System,
	matcher *legaltext.Matcher,
	logger *slog.Logger,
	maxListSize int32,
) System {
	return &repo{
		storage:     store,
		matcher:     matcher,
		logger:      logger.With("system", "sources"),
		maxListSize: maxListSize,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.maxListSize, maxUploadSize)
}

func (r *repo) List(ctx context.Context, heading, marker string, maxResults int32) (*SourceList, error) {
	prefix, err := HeadingPrefix(heading)
	if err != nil {
		return nil, err
	}
	if maxResults <= 0 {
		maxResults = r.maxListSize
	}

	blobs, err := r.storage.List(ctx, prefix, marker, maxResults)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	result := &SourceList{
		Sources:    make([]Source, 0, len(blobs.Blobs)),
		NextMarker: blobs.NextMarker,
	}
	for _, b := range blobs.Blobs {
		result.Sources = append(result.Sources, fromMeta(b))
	}
	return result, nil
}

func (r *repo) Find(ctx context.Context, key string) (*Source, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	meta, err := r.storage.Find(ctx, key)
	if err != nil {
		return nil, mapStorageError(err)
	}

	s := fromMeta(*meta)
	return &s, nil
}

func (r *repo) Upload(ctx context.Context, cmd UploadCommand) (*Source, error) {
	if len(cmd.Data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidFile)
	}

	key, err := Key(cmd.Heading, cmd.Filename)
	if err != nil {
		return nil, err
	}

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), cmd.ContentType); err != nil {
		return nil, fmt.Errorf("upload source blob: %w", err)
	}

	s := fromMeta(storage.BlobMeta{
		Key:           key,
		ContentType:   cmd.ContentType,
		ContentLength: int64(len(cmd.Data)),
	})
	s.PageCount = cmd.PageCount

	r.logger.Info("source uploaded",
		"key", key,
		"heading", s.Heading,
		"content_type", s.ContentType,
		"size", s.SizeBytes,
	)
	return &s, nil
}

func (r *repo) Download(ctx context.Context, key string) (*storage.BlobContent, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	content, err := r.storage.Download(ctx, key)
	if err != nil {
		return nil, mapStorageError(err)
	}
	return content, nil
}

func (r *repo) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	if err := r.storage.Delete(ctx, key); err != nil {
		return mapStorageError(err)
	}

	r.logger.Info("source deleted", "key", key)
	return nil
}

func (r *repo) Parse(ctx context.Context, key string) (*legaltext.ParsedText, error) {
	text, err := r.readText(ctx, key)
	if err != nil {
		return nil, err
	}

	parsed := r.matcher.Parse(text)
	return &parsed, nil
}

func (r *repo) Match(ctx context.Context, key, description string) (*legaltext.MatchResult, error) {
	if strings.TrimSpace(description) == "" {
		return nil, ErrNoDescription
	}

	text, err := r.readText(ctx, key)
	if err != nil {
		return nil, err
	}

	result := r.matcher.Match(description, r.matcher.Parse(text))
	return &result, nil
}

func (r *repo) readText(ctx context.Context, key string) (string, error) {
	content, err := r.Download(ctx, key)
	if err != nil {
		return "", err
	}
	defer content.Body.Close()

	if !isText(content.ContentType) {
		return "", fmt.Errorf("%w: %s is %s", ErrNotText, baseName(key), content.ContentType)
	}

	data, err := io.ReadAll(content.Body)
	if err != nil {
		return "", fmt.Errorf("read source %s: %w", key, err)
	}
	return string(data), nil
}

func mapStorageError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
