package parse

import "testing"

func TestNewContent_Valid(t *testing.T) {
	c, err := NewContent(
		[]TOCEntry{{Title: "Chapter 1", SectionID: "chapter-0"}},
		[]SectionEntry{{ID: "chapter-0", Body: "hello"}},
		nil,
	)
	if err != nil {
		t.Fatalf("NewContent: %v", err)
	}
	if c.Sections["chapter-0"] != "hello" {
		t.Errorf("section body = %q", c.Sections["chapter-0"])
	}
}

func TestNewContent_DuplicateSectionID(t *testing.T) {
	_, err := NewContent(
		[]TOCEntry{{Title: "A", SectionID: "main"}, {Title: "B", SectionID: "main"}},
		[]SectionEntry{{ID: "main", Body: "a"}, {ID: "main", Body: "b"}},
		nil,
	)
	if err == nil {
		t.Fatal("expected error for duplicate section id")
	}
}

func TestNewContent_TOCWithoutSection(t *testing.T) {
	_, err := NewContent(
		[]TOCEntry{{Title: "A", SectionID: "chapter-0"}},
		[]SectionEntry{{ID: "chapter-1", Body: "b"}},
		nil,
	)
	if err == nil {
		t.Fatal("expected error for toc entry without matching section")
	}
}

func TestNewContent_InvalidSectionID(t *testing.T) {
	for _, id := range []string{"", "has space", "emoji-✓", "semi;colon"} {
		_, err := NewContent(
			[]TOCEntry{{Title: "A", SectionID: id}},
			[]SectionEntry{{ID: id, Body: "x"}},
			nil,
		)
		if err == nil {
			t.Errorf("id %q: expected error", id)
		}
	}
}

func TestChapterTitle(t *testing.T) {
	if got := chapterTitle("", 0); got != "Chapter 1" {
		t.Errorf("chapterTitle(\"\", 0) = %q", got)
	}
	if got := chapterTitle("  ", 4); got != "Chapter 5" {
		t.Errorf("blank declared title should fall back, got %q", got)
	}
	if got := chapterTitle("Prologue", 0); got != "Prologue" {
		t.Errorf("declared title should win, got %q", got)
	}
}

func TestPageRangeTitle(t *testing.T) {
	if got := pageRangeTitle(11, 20); got != "Pages 11-20" {
		t.Errorf("pageRangeTitle = %q", got)
	}
}
