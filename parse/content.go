// Package parse transforms submitted artifacts into browsable sections.
//
// Supported inputs:
//   - EPUB: one section per spine chapter
//   - PDF: pages grouped into batches of ten
//   - DOCX: whole document as a single HTML section
//   - text: plain text / Markdown, chunked when oversized
//   - web: fetched page reduced to its main article
//
// Every parser produces the same Content shape: an ordered table of
// contents plus a sectionId → body mapping, built in a single invocation.
//
// Usage:
//
//	pipe := parse.New(parse.Config{Fetcher: client})
//	content, err := pipe.ParseFile(ctx, "application/pdf", "/tmp/upload.pdf")
package parse

import (
	"fmt"
	"strings"
	"unicode"
)

// TOCEntry is one table-of-contents row. Sequence order is reading order.
type TOCEntry struct {
	Title     string `json:"title"`
	SectionID string `json:"sectionId"`
}

// Image is an extracted image reference, passed through untouched.
type Image struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// SectionEntry pairs a section identifier with its body. Parsers build a
// slice of these so the toc/section pairing survives until NewContent
// checks it; the body may be empty when a chapter failed to extract.
type SectionEntry struct {
	ID   string
	Body string
}

// Content is the common output of every parser: the toc, the section
// bodies it points at, and any image references. A Content is always the
// product of exactly one parser invocation, never merged across runs.
type Content struct {
	TOC      []TOCEntry        `json:"toc"`
	Sections map[string]string `json:"sections"`
	Images   []Image           `json:"images"`
}

// NewContent assembles a Content and enforces the output contract:
// toc and sections must have the same cardinality, every toc entry must
// have a matching section body (possibly empty), and section identifiers
// must be unique. A violation is a parser bug, reported as an error
// rather than silently repaired.
func NewContent(toc []TOCEntry, sections []SectionEntry, images []Image) (*Content, error) {
	if len(toc) != len(sections) {
		return nil, fmt.Errorf("parse: toc has %d entries but %d sections were produced", len(toc), len(sections))
	}

	bodies := make(map[string]string, len(sections))
	for _, s := range sections {
		if !validSectionID(s.ID) {
			return nil, fmt.Errorf("parse: invalid section id %q", s.ID)
		}
		if _, dup := bodies[s.ID]; dup {
			return nil, fmt.Errorf("parse: duplicate section id %q", s.ID)
		}
		bodies[s.ID] = s.Body
	}

	for _, e := range toc {
		if _, ok := bodies[e.SectionID]; !ok {
			return nil, fmt.Errorf("parse: toc references unknown section %q", e.SectionID)
		}
	}

	if images == nil {
		images = []Image{}
	}

	return &Content{TOC: toc, Sections: bodies, Images: images}, nil
}

// validSectionID accepts opaque ASCII tokens: letters, digits, '-', '_'.
// Identifiers only need to be stable within a single parse.
func validSectionID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r > unicode.MaxASCII {
			return false
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// chapterTitle returns the structural title, or "Chapter {n}" (1-based)
// when the chapter declares none.
func chapterTitle(declared string, pos int) string {
	if t := strings.TrimSpace(declared); t != "" {
		return t
	}
	return fmt.Sprintf("Chapter %d", pos+1)
}

// sectionTitle synthesizes "Section {n}" (1-based).
func sectionTitle(pos int) string {
	return fmt.Sprintf("Section %d", pos+1)
}

// pageRangeTitle synthesizes "Pages {a}-{b}" for a batch of pages.
func pageRangeTitle(first, last int) string {
	return fmt.Sprintf("Pages %d-%d", first, last)
}
