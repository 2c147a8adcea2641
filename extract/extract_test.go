package extract

import (
	"strings"
	"testing"
)

func TestArticle_SemanticLandmark(t *testing.T) {
	page := `<html><head><title>Post Title</title></head><body>
<nav>Home About Contact</nav>
<article><p>` + strings.Repeat("Real article content here. ", 10) + `</p></article>
<footer>Legal notice and sitemap links</footer>
</body></html>`

	r, err := Article([]byte(page))
	if err != nil {
		t.Fatalf("Article: %v", err)
	}
	if r.Title != "Post Title" {
		t.Errorf("title = %q", r.Title)
	}
	if !strings.Contains(r.Text, "Real article content") {
		t.Errorf("text = %q", r.Text)
	}
	if strings.Contains(r.Text, "Legal notice") {
		t.Errorf("footer leaked: %q", r.Text)
	}
	if !strings.Contains(r.HTML, "<article>") {
		t.Errorf("html should be the article subtree: %q", r.HTML)
	}
}

func TestArticle_DensityFallback(t *testing.T) {
	// No <main>/<article>; the text-dense div must win over the link list.
	page := `<html><body>
<div class="menu"><a href="/a">A</a> <a href="/b">B</a> <a href="/c">C</a></div>
<div>` + strings.Repeat("<p>Paragraphs of body text with enough words to score well.</p>", 5) + `</div>
</body></html>`

	r, err := Article([]byte(page))
	if err != nil {
		t.Fatalf("Article: %v", err)
	}
	if !strings.Contains(r.Text, "Paragraphs of body text") {
		t.Errorf("text = %q", r.Text)
	}
}

func TestArticle_NoContent(t *testing.T) {
	page := `<html><body><nav>just navigation</nav></body></html>`

	if _, err := Article([]byte(page)); err == nil {
		t.Fatal("expected ErrNoContent")
	}
}

func TestArticle_BoilerplateClassSkipped(t *testing.T) {
	page := `<html><body>
<article class="cookie-banner">` + strings.Repeat("We value your privacy. ", 10) + `</article>
<article>` + strings.Repeat("The actual story text goes here. ", 10) + `</article>
</body></html>`

	r, err := Article([]byte(page))
	if err != nil {
		t.Fatalf("Article: %v", err)
	}
	if strings.Contains(r.Text, "We value your privacy") {
		t.Errorf("cookie banner leaked: %q", r.Text)
	}
	if !strings.Contains(r.Text, "actual story text") {
		t.Errorf("text = %q", r.Text)
	}
}

func TestIsBoilerplate_Roles(t *testing.T) {
	page := `<html><body><div role="navigation">x</div></body></html>`
	r, err := Article([]byte(page))
	if err == nil && strings.Contains(r.Text, "x") {
		t.Error("role=navigation region should be excluded")
	}
}
