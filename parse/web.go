package parse

import (
	"context"
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/kurate/kurate/extract"
)

// mdConverter renders extracted article HTML as Markdown. Construction is
// moderately expensive, so one converter is shared; ConvertString is safe
// for concurrent use.
var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)

// parseWeb fetches a page and reduces it to its main article: a single
// Markdown section titled after the article, or "Untitled".
func parseWeb(ctx context.Context, fetcher Fetcher, url string) (*Content, error) {
	body, err := fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, failf(FormatWeb, err, "fetch %s", url)
	}

	article, err := extract.Article(body)
	if err != nil {
		return nil, failf(FormatWeb, err, "no extractable content")
	}

	title := strings.TrimSpace(article.Title)
	if title == "" {
		title = "Untitled"
	}

	md := htmlToMarkdown(article.HTML, url, article.Text)
	section := fmt.Sprintf("# %s\n\n%s", title, md)

	toc := []TOCEntry{{Title: title, SectionID: "main"}}
	sections := []SectionEntry{{ID: "main", Body: section}}
	return NewContent(toc, sections, nil)
}

// htmlToMarkdown converts article HTML to Markdown, falling back to the
// plain extracted text when conversion fails or comes back empty.
func htmlToMarkdown(html, sourceURL, fallback string) string {
	if html == "" {
		return fallback
	}
	result, err := mdConverter.ConvertString(html, converter.WithDomain(sourceURL))
	if err != nil || strings.TrimSpace(result) == "" {
		return fallback
	}
	return strings.TrimSpace(result)
}
