package parse

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseText_SmallSingleSection(t *testing.T) {
	path := writeTemp(t, "small.txt", "Just a short note.")

	c, err := parseText(path)
	if err != nil {
		t.Fatalf("parseText: %v", err)
	}
	if len(c.TOC) != 1 {
		t.Fatalf("toc entries = %d, want 1", len(c.TOC))
	}
	if c.TOC[0].SectionID != "main" || c.TOC[0].Title != "Section 1" {
		t.Errorf("toc[0] = %+v, want {Section 1 main}", c.TOC[0])
	}
	if c.Sections["main"] != "Just a short note." {
		t.Errorf("main section = %q", c.Sections["main"])
	}
}

func TestParseText_LargeChunked(t *testing.T) {
	// WHAT: 12000 chars split into 5000-char chunks → 3 sections.
	// WHY: Oversized single sections make client-side navigation useless.
	body := strings.Repeat("a", 12000)
	path := writeTemp(t, "large.txt", body)

	c, err := parseText(path)
	if err != nil {
		t.Fatalf("parseText: %v", err)
	}
	if len(c.TOC) != 3 {
		t.Fatalf("toc entries = %d, want 3", len(c.TOC))
	}
	wantIDs := []string{"section-0", "section-1", "section-2"}
	wantTitles := []string{"Section 1", "Section 2", "Section 3"}
	for i, e := range c.TOC {
		if e.SectionID != wantIDs[i] || e.Title != wantTitles[i] {
			t.Errorf("toc[%d] = %+v, want {%s %s}", i, e, wantTitles[i], wantIDs[i])
		}
	}
	if n := len(c.Sections["section-0"]); n != 5000 {
		t.Errorf("section-0 length = %d, want 5000", n)
	}
	if n := len(c.Sections["section-2"]); n != 2000 {
		t.Errorf("section-2 length = %d, want 2000", n)
	}
}

func TestParseText_ExactBoundaryStaysSingle(t *testing.T) {
	path := writeTemp(t, "exact.txt", strings.Repeat("b", 5000))

	c, err := parseText(path)
	if err != nil {
		t.Fatalf("parseText: %v", err)
	}
	if len(c.TOC) != 1 || c.TOC[0].SectionID != "main" {
		t.Errorf("5000-char document should stay a single main section, got %+v", c.TOC)
	}
}

func TestParseText_Deterministic(t *testing.T) {
	path := writeTemp(t, "same.txt", strings.Repeat("stable input ", 1000))

	first, err := parseText(path)
	if err != nil {
		t.Fatal(err)
	}
	second, err := parseText(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("same bytes should parse to identical content")
	}
}

func TestParseText_MultibyteRunesNotSplit(t *testing.T) {
	// Chunking counts runes, not bytes, so multibyte characters never
	// straddle a section boundary.
	body := strings.Repeat("é", 6000)
	path := writeTemp(t, "utf8.txt", body)

	c, err := parseText(path)
	if err != nil {
		t.Fatalf("parseText: %v", err)
	}
	if len(c.TOC) != 2 {
		t.Fatalf("toc entries = %d, want 2", len(c.TOC))
	}
	for id, s := range c.Sections {
		if strings.Contains(s, "�") {
			t.Errorf("section %s contains replacement character", id)
		}
	}
}
