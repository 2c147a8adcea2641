package ingest

import (
	"time"

	"github.com/kurate/kurate/parse"
)

// Status is a document's lifecycle state.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusError      Status = "error"
)

// Terminal reports whether the orchestrator will never transition out of
// this status.
func (s Status) Terminal() bool {
	return s == StatusReady || s == StatusError
}

// SourceKind distinguishes uploads from URL submissions. Immutable after
// creation.
type SourceKind string

const (
	SourceUpload SourceKind = "upload"
	SourceURL    SourceKind = "url"
)

// Document is one ingested artifact.
//
// OriginalRef holds the original filename for uploads and the source URL
// for URL submissions. Content is present iff Status is StatusReady.
type Document struct {
	ID          string         `json:"id"`
	Owner       string         `json:"-"`
	Title       string         `json:"title"`
	SourceKind  SourceKind     `json:"sourceKind"`
	OriginalRef string         `json:"originalReference"`
	Status      Status         `json:"status"`
	Content     *parse.Content `json:"parsedContent"`
	CreatedAt   time.Time      `json:"createdAt"`
}
