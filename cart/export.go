package cart

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/microcosm-cc/bluemonday"
)

var exportPolicy = bluemonday.UGCPolicy()

// ExportMarkdown renders the cart as one Markdown document: a top-level
// heading with the cart name, then each snippet under a "From:" heading
// naming the section it was clipped from, separated by thematic breaks.
func (c *Cart) ExportMarkdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", c.Name)

	for _, sn := range c.Snippets {
		section := sn.SourceSection
		if section == "" {
			section = "Unknown Section"
		}
		fmt.Fprintf(&b, "### From: %s\n\n", section)
		b.WriteString(renderSnippet(sn))
		b.WriteString("\n\n---\n\n")
	}
	return b.String()
}

func renderSnippet(sn Snippet) string {
	switch sn.Type {
	case SnippetImage:
		return fmt.Sprintf("![image](%s)", sn.Content)
	default:
		return htmlToMarkdown(sn.Content)
	}
}

// htmlToMarkdown sanitizes snippet HTML and converts it to Markdown.
// Plain-text snippets pass through the converter unchanged. On
// conversion failure the sanitized text is returned as-is rather than
// dropping the snippet.
func htmlToMarkdown(content string) string {
	clean := exportPolicy.Sanitize(content)
	md, err := htmltomarkdown.ConvertString(clean)
	if err != nil {
		return strings.TrimSpace(clean)
	}
	return strings.TrimSpace(md)
}
