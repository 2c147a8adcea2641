package parse

import (
	"fmt"
	"os"
)

// textChunkSize bounds a plain-text section's size. The split is purely a
// payload bound for the viewer, not a semantic boundary: chunk edges may
// fall mid-sentence or mid-word.
const textChunkSize = 5000

// parseText extracts a plain text or Markdown file. Content at or under
// textChunkSize characters becomes a single section; anything larger is
// cut into fixed-size character chunks.
func parseText(path string) (*Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, failf(FormatText, err, "read file")
	}

	text := string(data)
	runes := []rune(text)

	if len(runes) <= textChunkSize {
		toc := []TOCEntry{{Title: sectionTitle(0), SectionID: "main"}}
		sections := []SectionEntry{{ID: "main", Body: text}}
		return NewContent(toc, sections, nil)
	}

	var toc []TOCEntry
	var sections []SectionEntry
	for i := 0; i*textChunkSize < len(runes); i++ {
		start := i * textChunkSize
		end := start + textChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		id := fmt.Sprintf("section-%d", i)
		toc = append(toc, TOCEntry{Title: sectionTitle(i), SectionID: id})
		sections = append(sections, SectionEntry{ID: id, Body: string(runes[start:end])})
	}

	return NewContent(toc, sections, nil)
}
