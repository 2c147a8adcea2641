package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kurate/kurate/parse"
)

// task is one single-shot background parse bound to a document. There is
// no queue, no concurrency cap and no retry: each submission schedules
// exactly one task, and each document has at most one in-flight parse.
type task struct {
	docID string
	parse func(context.Context) (*parse.Content, error)
	// cleanup releases the temp artifact; runs on every exit path.
	cleanup func()
}

func (s *Service) schedule(t task) {
	s.wg.Add(1)
	go s.run(t)
}

// run executes the parse and performs the single terminal write. Parser
// errors and panics both resolve to the error state; they never escape
// this goroutine. The submission context is request-scoped, so the parse
// runs against a fresh background context.
func (s *Service) run(t task) {
	defer s.wg.Done()
	if t.cleanup != nil {
		defer t.cleanup()
	}

	ctx := context.Background()
	log := s.logger.With("document_id", t.docID)

	content, err := invoke(ctx, t.parse)
	if err != nil {
		log.Warn("ingest: parse failed", "error", err)
		s.finishError(ctx, t.docID, log)
		return
	}

	wrote, err := s.store.MarkReady(ctx, t.docID, content)
	if err != nil {
		// The parse succeeded but the ready write failed. Falling through
		// to the error state keeps the document out of the processing
		// limbo the caller would otherwise poll forever.
		log.Error("ingest: terminal ready write failed", "error", err)
		s.finishError(ctx, t.docID, log)
		return
	}
	if !wrote {
		log.Info("ingest: document gone before parse completed, result discarded")
		return
	}
	log.Info("ingest: document ready", "sections", len(content.TOC))
}

func (s *Service) finishError(ctx context.Context, docID string, log *slog.Logger) {
	wrote, err := s.store.MarkError(ctx, docID)
	if err != nil {
		log.Warn("ingest: terminal error write failed", "error", err)
		return
	}
	if !wrote {
		log.Warn("ingest: document gone before failure recorded")
	}
}

// invoke calls fn with panic containment: a panicking parser is reported
// as an ordinary error so the orchestrator can resolve the terminal
// state instead of crashing the process.
func invoke(ctx context.Context, fn func(context.Context) (*parse.Content, error)) (c *parse.Content, err error) {
	defer func() {
		if r := recover(); r != nil {
			c = nil
			err = fmt.Errorf("parser panic: %v", r)
		}
	}()
	return fn(ctx)
}
