// Package ingest orchestrates document ingestion.
//
// Submit operations create a placeholder record in the processing state
// and return immediately; the parse runs in a single-shot background task
// whose completion callback performs the one terminal write
// (ready+content or error). Callers poll Get until the status leaves
// processing.
//
// The pipeline guarantees: a document never stays processing once its
// parser has returned or panicked, terminal states are written exactly
// once, and a terminal write against a deleted document is a no-op.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kurate/kurate/parse"
)

// Store is the narrow persistence contract the orchestrator needs.
// Implementations must make each method an atomic operation; the
// conditional terminal updates (MarkReady, MarkError) only apply when the
// document still exists in the processing state, and report whether they
// did.
type Store interface {
	CreateDocument(ctx context.Context, d *Document) error
	Document(ctx context.Context, owner, id string) (*Document, error)
	Documents(ctx context.Context, owner string) ([]*Document, error)
	DeleteDocument(ctx context.Context, owner, id string) error
	MarkReady(ctx context.Context, id string, c *parse.Content) (bool, error)
	MarkError(ctx context.Context, id string) (bool, error)
}

// Service is the ingestion orchestrator.
type Service struct {
	store    Store
	pipeline *parse.Pipeline
	logger   *slog.Logger
	newID    func() string

	wg sync.WaitGroup
}

// Option customises a Service.
type Option func(*Service)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithIDGenerator overrides document ID generation (tests).
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// New creates a Service.
func New(store Store, pipeline *parse.Pipeline, opts ...Option) *Service {
	s := &Service{
		store:    store,
		pipeline: pipeline,
		logger:   slog.Default(),
		newID:    func() string { return uuid.Must(uuid.NewV7()).String() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Receipt is returned by Submit operations while processing continues out
// of band.
type Receipt struct {
	DocumentID string `json:"documentId"`
	Title      string `json:"title"`
	Status     Status `json:"status"`
}

// SubmitUpload accepts an uploaded artifact stored at tmpPath and starts
// parsing it in the background. The temp file is owned by the pipeline
// from this call on and is removed on every outcome, including a
// synchronous rejection.
//
// An unsupported MIME type fails with ErrUnsupportedFormat and an
// oversized artifact with ErrFileTooLarge, both before any document
// record exists.
func (s *Service) SubmitUpload(ctx context.Context, owner, filename, mimeType, tmpPath string) (*Receipt, error) {
	if _, ok := parse.FormatForMIME(mimeType); !ok {
		removeTemp(tmpPath, s.logger)
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}

	info, err := os.Stat(tmpPath)
	if err != nil {
		removeTemp(tmpPath, s.logger)
		return nil, fmt.Errorf("stat upload: %w", err)
	}
	if max := s.pipeline.MaxFileSize(); info.Size() > max {
		removeTemp(tmpPath, s.logger)
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, info.Size(), max)
	}

	doc := &Document{
		ID:          s.newID(),
		Owner:       owner,
		Title:       strings.TrimSuffix(filename, filepath.Ext(filename)),
		SourceKind:  SourceUpload,
		OriginalRef: filename,
		Status:      StatusProcessing,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateDocument(ctx, doc); err != nil {
		removeTemp(tmpPath, s.logger)
		return nil, fmt.Errorf("create document: %w", err)
	}

	s.schedule(task{
		docID: doc.ID,
		parse: func(ctx context.Context) (*parse.Content, error) {
			return s.pipeline.ParseFile(ctx, mimeType, tmpPath)
		},
		cleanup: func() { removeTemp(tmpPath, s.logger) },
	})

	return &Receipt{DocumentID: doc.ID, Title: doc.Title, Status: StatusProcessing}, nil
}

// SubmitURL accepts a web page URL and starts fetching and extracting it
// in the background. The URL must be absolute http(s); the hostname
// becomes the default title.
func (s *Service) SubmitURL(ctx context.Context, owner, rawURL string) (*Receipt, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !u.IsAbs() || u.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme %q", ErrInvalidURL, u.Scheme)
	}

	doc := &Document{
		ID:          s.newID(),
		Owner:       owner,
		Title:       u.Hostname(),
		SourceKind:  SourceURL,
		OriginalRef: u.String(),
		Status:      StatusProcessing,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	target := u.String()
	s.schedule(task{
		docID: doc.ID,
		parse: func(ctx context.Context) (*parse.Content, error) {
			return s.pipeline.ParseURL(ctx, target)
		},
	})

	return &Receipt{DocumentID: doc.ID, Title: doc.Title, Status: StatusProcessing}, nil
}

// Get returns the document as currently persisted. Content is non-nil
// iff the document is ready. Documents the caller does not own are
// reported as not found.
func (s *Service) Get(ctx context.Context, owner, id string) (*Document, error) {
	return s.store.Document(ctx, owner, id)
}

// List returns the owner's documents, newest first, as summaries: the toc
// is retained but section bodies and images are omitted.
func (s *Service) List(ctx context.Context, owner string) ([]*Document, error) {
	return s.store.Documents(ctx, owner)
}

// Delete removes a document. Safe to call while its parse is in flight;
// the parse's terminal write then becomes a no-op.
func (s *Service) Delete(ctx context.Context, owner, id string) error {
	return s.store.DeleteDocument(ctx, owner, id)
}

// Wait blocks until all in-flight parses have finished. Used on shutdown
// and in tests.
func (s *Service) Wait() {
	s.wg.Wait()
}

func removeTemp(path string, logger *slog.Logger) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("ingest: removing temp artifact", "path", path, "error", err)
	}
}
