// Package extract reduces a web page to its main article content.
//
// The pipeline: raw HTML → parse → semantic landmarks (<main>, <article>)
// → text-density fallback → clean text + HTML. Boilerplate regions (nav,
// footer, sidebar, cookie banners) are filtered throughout.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoContent is returned when no region of the page passes the minimum
// content threshold.
var ErrNoContent = errors.New("extract: no article content found")

// minTextLen is the minimum text length for a region to count as content.
const minTextLen = 50

// Result is the extracted article.
type Result struct {
	Title string // page <title>, may be empty
	Text  string // clean article text
	HTML  string // article subtree serialized back to HTML
}

// Article extracts the main content from raw HTML. Semantic landmarks are
// preferred; when a page has none, the subtree with the best
// text-to-markup density wins.
func Article(rawHTML []byte) (*Result, error) {
	doc, err := html.Parse(bytes.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("extract: parse HTML: %w", err)
	}

	title := findTitle(doc)

	// Semantic landmarks first.
	if nodes := findLandmarks(doc); len(nodes) > 0 {
		var texts, htmls []string
		for _, n := range nodes {
			if isBoilerplate(n) {
				continue
			}
			if text := collectText(n); len(text) >= minTextLen {
				texts = append(texts, text)
				htmls = append(htmls, renderNode(n))
			}
		}
		if len(texts) > 0 {
			return &Result{
				Title: title,
				Text:  strings.Join(texts, "\n\n"),
				HTML:  strings.Join(htmls, "\n"),
			}, nil
		}
	}

	// Density scoring over the body.
	body := findBody(doc)
	if body == nil {
		body = doc
	}

	if best := densestNode(body); best != nil {
		return &Result{
			Title: title,
			Text:  collectText(best),
			HTML:  renderNode(best),
		}, nil
	}

	// Last resort: all non-boilerplate text from the body.
	text := collectCleanText(body)
	if len(text) < minTextLen {
		return nil, ErrNoContent
	}
	return &Result{Title: title, Text: text, HTML: renderNode(body)}, nil
}

// findTitle extracts the page <title> text.
func findTitle(doc *html.Node) string {
	var title string
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Title {
			if n.FirstChild != nil {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return
		}
		for c := n.FirstChild; c != nil && title == ""; c = c.NextSibling {
			f(c)
		}
	}
	f(doc)
	return title
}

// findLandmarks returns semantic HTML5 content containers, preferring
// <main> over <article>.
func findLandmarks(doc *html.Node) []*html.Node {
	for _, tag := range []atom.Atom{atom.Main, atom.Article} {
		if nodes := findAllByTag(doc, tag); len(nodes) > 0 {
			return nodes
		}
	}
	return nil
}

func findAllByTag(root *html.Node, tag atom.Atom) []*html.Node {
	var results []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == tag {
			results = append(results, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return results
}

// findBody returns the <body> element from a parsed document.
func findBody(doc *html.Node) *html.Node {
	var body *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if body != nil {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			body = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return body
}

// renderNode serialises an HTML node subtree back to a string.
func renderNode(n *html.Node) string {
	var buf bytes.Buffer
	html.Render(&buf, n)
	return buf.String()
}

// collectText extracts all visible text from a node subtree.
func collectText(n *html.Node) string {
	var sb strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
		}
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return sb.String()
}

// collectCleanText extracts text excluding boilerplate regions.
func collectCleanText(n *html.Node) string {
	var sb strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if isBoilerplate(n) {
				return
			}
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript:
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return sb.String()
}

// isContentTag returns true for tags likely to contain main content.
func isContentTag(a atom.Atom) bool {
	switch a {
	case atom.Main, atom.Article, atom.Section, atom.Div, atom.P,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Blockquote, atom.Pre, atom.Ul, atom.Ol, atom.Li,
		atom.Table, atom.Td, atom.Th, atom.Dl, atom.Dd, atom.Dt,
		atom.Figure, atom.Figcaption, atom.Details, atom.Summary:
		return true
	}
	return false
}

// isBoilerplate checks if a node is likely boilerplate (nav, footer, etc).
func isBoilerplate(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Nav, atom.Footer, atom.Header, atom.Aside:
		return true
	}
	for _, attr := range n.Attr {
		if attr.Key == "class" || attr.Key == "id" {
			lower := strings.ToLower(attr.Val)
			for _, pattern := range boilerplatePatterns {
				if strings.Contains(lower, pattern) {
					return true
				}
			}
		}
		if attr.Key == "role" {
			switch attr.Val {
			case "navigation", "banner", "contentinfo", "complementary":
				return true
			}
		}
	}
	return false
}

var boilerplatePatterns = []string{
	"sidebar", "footer", "header", "nav", "menu", "breadcrumb",
	"cookie", "banner", "advert", "social", "share", "comment",
	"related", "widget", "popup", "modal",
}
