package extract

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// nodeScore holds density analysis for one DOM subtree.
type nodeScore struct {
	node     *html.Node
	textLen  int
	density  float64 // text length / markup length
	linkDens float64 // fraction of text inside <a> tags
}

// densestNode walks the DOM and returns the subtree with the highest
// content density, or nil when nothing qualifies. Regions dominated by
// links are treated as navigation and skipped.
func densestNode(root *html.Node) *html.Node {
	var candidates []nodeScore

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		if isBoilerplate(n) {
			return
		}
		if !isContentTag(n.DataAtom) && n.DataAtom != atom.Body {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
			return
		}

		text := collectText(n)
		textLen := len(text)
		if textLen < minTextLen {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
			return
		}

		markupLen := len(renderNode(n))
		if markupLen == 0 {
			markupLen = 1
		}

		linkText := collectLinkText(n)

		candidates = append(candidates, nodeScore{
			node:     n,
			textLen:  textLen,
			density:  float64(textLen) / float64(markupLen),
			linkDens: float64(len(linkText)) / float64(textLen),
		})

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(root)

	var best *nodeScore
	var bestScore float64

	for i := range candidates {
		c := &candidates[i]
		if c.linkDens > 0.5 {
			continue // mostly links - probably navigation
		}

		score := c.density * logScale(c.textLen) * (1 - c.linkDens)
		if score > bestScore {
			bestScore = score
			best = c
		}
	}

	if best == nil {
		return nil
	}
	return best.node
}

// logScale returns a log-based scale factor for text length so longer
// regions beat short dense ones.
func logScale(n int) float64 {
	if n <= 0 {
		return 0
	}
	scale := 1.0
	for v := n; v > 100; v /= 2 {
		scale++
	}
	return scale
}

// collectLinkText extracts text only from <a> elements.
func collectLinkText(n *html.Node) string {
	var sb strings.Builder
	var f func(*html.Node, bool)
	f = func(n *html.Node, inLink bool) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			inLink = true
		}
		if n.Type == html.TextNode && inLink {
			if text := strings.TrimSpace(n.Data); text != "" {
				sb.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c, inLink)
		}
	}
	f(n, false)
	return sb.String()
}
