package digest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/chat-digest/internal/conversation"
	"github.com/zombor/chat-digest/internal/scanning"
	"github.com/zombor/chat-digest/internal/summary"
)

// IDGenerator generates unique IDs for digests
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (uuidGenerator) Generate() string {
	return uuid.NewString()
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// Service runs the screenshot-to-narrative pipeline and manages stored digests
type Service struct {
	db          DB
	scanner     scanning.Scanner
	storage     Storage
	builder     *conversation.Builder
	composer    *summary.Composer
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with UUID identifiers and the system clock
func NewService(db DB, scanner scanning.Scanner, storage Storage, builder *conversation.Builder, composer *summary.Composer) *Service {
	return NewServiceWithDeps(db, scanner, storage, builder, composer, uuidGenerator{}, systemClock{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, scanner scanning.Scanner, storage Storage, builder *conversation.Builder, composer *summary.Composer, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		scanner:     scanner,
		storage:     storage,
		builder:     builder,
		composer:    composer,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	whitespaceRun       = regexp.MustCompile(`\s+`)
)

// sanitizeFilename reduces an uploaded name to a short, filesystem-safe form
func sanitizeFilename(filename string) string {
	filename = filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	ext := strings.ToLower(unsafeFilenameChars.ReplaceAllString(filepath.Ext(filename), ""))
	base := strings.TrimSuffix(filename, filepath.Ext(filename))

	base = unsafeFilenameChars.ReplaceAllString(base, "")
	base = whitespaceRun.ReplaceAllString(strings.TrimSpace(base), "_")
	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "screenshot"
	}
	if ext != "" {
		ext = "." + ext
	}
	return base + ext
}

// Summarize stores an uploaded screenshot, extracts its lines, reconstructs
// the conversation and summarizes it. Nothing is kept if any stage fails.
func (s *Service) Summarize(ctx context.Context, filename string, data []byte, contentType string) (*Digest, error) {
	if len(data) == 0 {
		return nil, ErrNoInput
	}

	id := s.idGenerator.Generate()

	stored, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, stageErr(StageStore, err)
	}

	digest, err := s.process(ctx, id, data, contentType)
	if err != nil {
		slog.Error("Failed to summarize screenshot",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		if delErr := s.storage.Delete(stored); delErr != nil {
			slog.Warn("Failed to remove upload", "filename", stored, "error", delErr)
		}
		return nil, err
	}

	digest.Filename = stored
	digest.ContentType = contentType
	if err := s.db.SaveDigest(digest); err != nil {
		if delErr := s.storage.Delete(stored); delErr != nil {
			slog.Warn("Failed to remove upload", "filename", stored, "error", delErr)
		}
		return nil, stageErr(StagePersist, err)
	}

	slog.Info("Summarized screenshot", "id", id, "lines", len(digest.Lines), "entries", len(digest.Entries))
	return digest, nil
}

func (s *Service) process(ctx context.Context, id string, data []byte, contentType string) (*Digest, error) {
	lines, err := s.scanner.ExtractLines(ctx, data, contentType)
	if err != nil {
		return nil, stageErr(StageScan, err)
	}
	return s.digest(ctx, id, lines)
}

// SummarizeLines runs the pipeline on lines that were extracted elsewhere
func (s *Service) SummarizeLines(ctx context.Context, lines []string) (*Digest, error) {
	if len(lines) == 0 {
		return nil, ErrNoInput
	}

	digest, err := s.digest(ctx, s.idGenerator.Generate(), lines)
	if err != nil {
		return nil, err
	}
	if err := s.db.SaveDigest(digest); err != nil {
		return nil, stageErr(StagePersist, err)
	}
	return digest, nil
}

// digest turns extracted lines into an unsaved Digest
func (s *Service) digest(ctx context.Context, id string, lines []string) (*Digest, error) {
	entries, err := s.builder.Build(ctx, lines)
	if err != nil {
		return nil, stageErr(StageReconstruct, err)
	}

	narrative, err := s.composer.Compose(ctx, entries)
	if err != nil {
		return nil, stageErr(StageSummarize, err)
	}

	return &Digest{
		ID:        id,
		Lines:     lines,
		Entries:   entries,
		Summary:   narrative,
		CreatedAt: s.timeSource.Now(),
	}, nil
}

// GetDigest retrieves a digest by ID
func (s *Service) GetDigest(id string) (*Digest, error) {
	digest, err := s.db.GetDigest(id)
	if err != nil {
		return nil, fmt.Errorf("getting digest: %w", err)
	}
	return digest, nil
}

// ListDigests returns all digests
func (s *Service) ListDigests() ([]*Digest, error) {
	digests, err := s.db.ListDigests()
	if err != nil {
		return nil, fmt.Errorf("listing digests: %w", err)
	}
	return digests, nil
}

// DeleteDigest removes a digest and its upload
func (s *Service) DeleteDigest(id string) error {
	digest, err := s.db.GetDigest(id)
	if err != nil {
		return fmt.Errorf("getting digest for deletion: %w", err)
	}

	if digest.Filename != "" {
		if err := s.storage.Delete(digest.Filename); err != nil {
			// Log error but continue with database deletion
			slog.Warn("Failed to delete file", "filename", digest.Filename, "error", err)
		}
	}

	if err := s.db.DeleteDigest(id); err != nil {
		return fmt.Errorf("deleting digest from database: %w", err)
	}
	return nil
}

// GetDigestImage returns the uploaded screenshot of a digest and its content type
func (s *Service) GetDigestImage(id string) ([]byte, string, error) {
	digest, err := s.db.GetDigest(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting digest: %w", err)
	}
	if digest.Filename == "" {
		return nil, "", fmt.Errorf("%w: digest %s has no image", ErrNotFound, id)
	}

	data, err := s.storage.Get(digest.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting digest image: %w", err)
	}
	return data, digest.ContentType, nil
}
