package parse

import (
	"fmt"

	"github.com/simp-lee/epub"
)

// parseEPUB opens an EPUB and emits one section per spine chapter, in
// spine order. A chapter that fails to extract keeps its toc entry with
// an empty body instead of failing the whole book: a reader losing one
// chapter of thirty is strictly better off than losing the book.
func parseEPUB(path string) (*Content, error) {
	book, err := epub.Open(path)
	if err != nil {
		return nil, failf(FormatEPUB, err, "open epub")
	}
	defer book.Close()

	chapters := book.Chapters()
	if len(chapters) == 0 {
		return nil, failf(FormatEPUB, nil, "epub has no spine items")
	}

	var toc []TOCEntry
	var sections []SectionEntry

	for i, ch := range chapters {
		id := fmt.Sprintf("chapter-%d", i)
		toc = append(toc, TOCEntry{Title: chapterTitle(ch.Title, i), SectionID: id})

		body, err := ch.BodyHTML()
		if err != nil {
			// Placeholder keeps toc/sections cardinality intact.
			sections = append(sections, SectionEntry{ID: id, Body: ""})
			continue
		}
		sections = append(sections, SectionEntry{ID: id, Body: body})
	}

	return NewContent(toc, sections, nil)
}
