package parse

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// Format identifies an input type.
type Format string

const (
	FormatEPUB Format = "epub"
	FormatPDF  Format = "pdf"
	FormatDocx Format = "docx"
	FormatText Format = "text"
	FormatWeb  Format = "web"
)

// Accepted upload MIME types, mapped to their parser format.
var mimeFormats = map[string]Format{
	"application/epub+zip": FormatEPUB,
	"application/pdf":      FormatPDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": FormatDocx,
	"text/plain":    FormatText,
	"text/markdown": FormatText,
}

// FormatForMIME maps a declared MIME type to a parser format.
func FormatForMIME(mime string) (Format, bool) {
	f, ok := mimeFormats[mime]
	return f, ok
}

// AcceptedMIMETypes lists every upload MIME type the pipeline handles.
func AcceptedMIMETypes() []string {
	types := make([]string, 0, len(mimeFormats))
	for m := range mimeFormats {
		types = append(types, m)
	}
	return types
}

// Fetcher retrieves a URL's body. Satisfied by fetch.Client.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Config configures the pipeline.
type Config struct {
	// MaxFileSize caps uploaded artifacts (default: 50 MB).
	MaxFileSize int64

	// Fetcher retrieves web pages for ParseURL. Required for URL parsing.
	Fetcher Fetcher

	// Logger for debug messages.
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 50 * 1024 * 1024
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Pipeline dispatches artifacts to the format parsers. Parsers share no
// state; a Pipeline is safe for concurrent use.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Pipeline with the given configuration.
func New(cfg Config) *Pipeline {
	cfg.defaults()
	return &Pipeline{cfg: cfg, logger: cfg.Logger}
}

// MaxFileSize returns the upload size cap in bytes. Callers that spool
// uploads can enforce the cap before handing the artifact over.
func (p *Pipeline) MaxFileSize() int64 { return p.cfg.MaxFileSize }

// ParseFile extracts a local artifact declared as mime into a Content.
// The same bytes always yield the same toc titles and section count.
func (p *Pipeline) ParseFile(ctx context.Context, mime, path string) (*Content, error) {
	format, ok := FormatForMIME(mime)
	if !ok {
		return nil, fmt.Errorf("parse: unsupported MIME type %q", mime)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, failf(format, err, "stat artifact")
	}
	if info.Size() > p.cfg.MaxFileSize {
		return nil, failf(format, nil, "artifact too large: %d bytes (max %d)", info.Size(), p.cfg.MaxFileSize)
	}

	p.logger.Debug("parsing artifact", "path", path, "format", format)

	switch format {
	case FormatEPUB:
		return parseEPUB(path)
	case FormatPDF:
		return parsePDF(path)
	case FormatDocx:
		return parseDocx(path)
	case FormatText:
		return parseText(path)
	default:
		return nil, fmt.Errorf("parse: no parser for format %s", format)
	}
}

// ParseURL fetches a web page and reduces it to a single-section article.
func (p *Pipeline) ParseURL(ctx context.Context, url string) (*Content, error) {
	if p.cfg.Fetcher == nil {
		return nil, fmt.Errorf("parse: no fetcher configured")
	}
	p.logger.Debug("parsing url", "url", url)
	return parseWeb(ctx, p.cfg.Fetcher, url)
}
