package parse

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"
)

// parseDocx reads word/document.xml from the DOCX archive and renders the
// whole document as one HTML section titled "Document". DOCX carries no
// segmentation the viewer could use, so a single section keeps the toc
// honest rather than inventing structure.
func parseDocx(path string) (*Content, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, failf(FormatDocx, err, "open archive")
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, failf(FormatDocx, nil, "word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, failf(FormatDocx, err, "open document.xml")
	}
	defer rc.Close()

	body, err := docxToHTML(xml.NewDecoder(rc))
	if err != nil {
		return nil, failf(FormatDocx, err, "decode document.xml")
	}
	if strings.TrimSpace(body) == "" {
		return nil, failf(FormatDocx, nil, "document has no text content")
	}

	toc := []TOCEntry{{Title: "Document", SectionID: "main"}}
	sections := []SectionEntry{{ID: "main", Body: body}}
	return NewContent(toc, sections, nil)
}

// docxToHTML walks the WordprocessingML token stream and emits one HTML
// element per paragraph: <h1>..<h6> for styled headings, <p> otherwise.
func docxToHTML(decoder *xml.Decoder) (string, error) {
	var sb strings.Builder
	var current strings.Builder
	var inParagraph bool
	var paragraphStyle string

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Malformed XML must fail the whole document, not quietly
			// truncate whatever was decoded so far.
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "p":
				inParagraph = true
				current.Reset()
				paragraphStyle = ""
			case t.Name.Local == "pStyle" && inParagraph:
				for _, attr := range t.Attr {
					if attr.Name.Local == "val" {
						paragraphStyle = attr.Value
					}
				}
			case t.Name.Local == "br" && inParagraph:
				current.WriteByte('\n')
			}

		case xml.CharData:
			if inParagraph {
				current.Write(t)
			}

		case xml.EndElement:
			if t.Name.Local == "p" && inParagraph {
				inParagraph = false
				text := strings.TrimSpace(current.String())
				if text == "" {
					continue
				}
				escaped := html.EscapeString(text)
				if level := docxHeadingLevel(paragraphStyle); level > 0 {
					fmt.Fprintf(&sb, "<h%d>%s</h%d>\n", level, escaped, level)
				} else {
					fmt.Fprintf(&sb, "<p>%s</p>\n", escaped)
				}
			}
		}
	}

	return sb.String(), nil
}

// docxHeadingLevel extracts the heading level from a paragraph style name.
// e.g. "Heading1" → 1, "Heading2" → 2, "Title" → 1.
func docxHeadingLevel(style string) int {
	lower := strings.ToLower(style)

	if lower == "title" {
		return 1
	}
	if lower == "subtitle" {
		return 2
	}

	// "Heading1", "heading1", "Titre1", etc.
	for _, prefix := range []string{"heading", "titre", "überschrift"} {
		if strings.HasPrefix(lower, prefix) {
			rest := lower[len(prefix):]
			if len(rest) == 1 && rest[0] >= '1' && rest[0] <= '6' {
				return int(rest[0] - '0')
			}
		}
	}
	return 0
}
