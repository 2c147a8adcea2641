package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/kurate/kurate/cart"
	"github.com/kurate/kurate/ingest"
	"github.com/kurate/kurate/parse"
	"github.com/kurate/kurate/store"
)

type testEnv struct {
	srv    *httptest.Server
	ingest *ingest.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := store.OpenMemory(t)
	pipe := parse.New(parse.Config{})
	ing := ingest.New(st, pipe)
	carts := cart.New(st, ing, nil)

	s := New(ing, carts, HeaderAuth("X-User-ID"), nil)
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, ingest: ing}
}

func (e *testEnv) do(t *testing.T, method, path, owner string, body *bytes.Buffer, contentType string) *http.Response {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req, err := http.NewRequest(method, e.srv.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}
	if owner != "" {
		req.Header.Set("X-User-ID", owner)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

// multipartUpload builds a multipart body with an explicit part MIME type.
func multipartUpload(t *testing.T, filename, mimeType, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte(content))
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestUploadFlow(t *testing.T) {
	env := newTestEnv(t)

	body, ct := multipartUpload(t, "notes.txt", "text/plain", "uploaded text body")
	resp := env.do(t, http.MethodPost, "/api/documents/upload", "alice", body, ct)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("upload status = %d, want 202", resp.StatusCode)
	}
	receipt := decode[ingest.Receipt](t, resp)
	if receipt.DocumentID == "" || receipt.Status != ingest.StatusProcessing {
		t.Fatalf("receipt = %+v", receipt)
	}
	if receipt.Title != "notes" {
		t.Errorf("title = %q", receipt.Title)
	}

	env.ingest.Wait()

	resp = env.do(t, http.MethodGet, "/api/documents/"+receipt.DocumentID, "alice", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	doc := decode[ingest.Document](t, resp)
	if doc.Status != ingest.StatusReady {
		t.Fatalf("doc status = %s", doc.Status)
	}
	if doc.Content == nil || doc.Content.Sections["main"] != "uploaded text body" {
		t.Errorf("content = %+v", doc.Content)
	}
}

func TestUploadUnsupportedMIME(t *testing.T) {
	env := newTestEnv(t)

	body, ct := multipartUpload(t, "pic.png", "image/png", "fake image")
	resp := env.do(t, http.MethodPost, "/api/documents/upload", "alice", body, ct)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	// No document record must exist for the rejected upload.
	resp = env.do(t, http.MethodGet, "/api/documents/", "alice", nil, "")
	docs := decode[[]ingest.Document](t, resp)
	if len(docs) != 0 {
		t.Errorf("documents = %+v, want none", docs)
	}
}

func TestUploadOversizeRejectedSynchronously(t *testing.T) {
	// WHAT: an upload over the size cap gets a 413 and leaves no record.
	// WHY: the cap must hold at submission; a document created only to
	// fail in the background would report the rejection asynchronously.
	st := store.OpenMemory(t)
	pipe := parse.New(parse.Config{MaxFileSize: 64})
	ing := ingest.New(st, pipe)
	carts := cart.New(st, ing, nil)
	srv := httptest.NewServer(New(ing, carts, HeaderAuth("X-User-ID"), nil).Router())
	t.Cleanup(srv.Close)
	env := &testEnv{srv: srv, ingest: ing}

	body, ct := multipartUpload(t, "big.txt", "text/plain", strings.Repeat("x", 65))
	resp := env.do(t, http.MethodPost, "/api/documents/upload", "alice", body, ct)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", resp.StatusCode)
	}

	resp = env.do(t, http.MethodGet, "/api/documents/", "alice", nil, "")
	docs := decode[[]ingest.Document](t, resp)
	if len(docs) != 0 {
		t.Errorf("documents = %+v, want none", docs)
	}
}

func TestUnauthorizedWithoutIdentity(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/documents/", "", nil, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestSubmitURLValidation(t *testing.T) {
	env := newTestEnv(t)

	body := bytes.NewBufferString(`{"url": "not a url"}`)
	resp := env.do(t, http.MethodPost, "/api/documents/url", "alice", body, "application/json")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestDocumentOwnershipCollapsesTo404(t *testing.T) {
	env := newTestEnv(t)

	body, ct := multipartUpload(t, "mine.txt", "text/plain", "private")
	resp := env.do(t, http.MethodPost, "/api/documents/upload", "alice", body, ct)
	receipt := decode[ingest.Receipt](t, resp)
	env.ingest.Wait()

	resp = env.do(t, http.MethodGet, "/api/documents/"+receipt.DocumentID, "bob", nil, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("cross-owner get status = %d, want 404", resp.StatusCode)
	}

	resp = env.do(t, http.MethodDelete, "/api/documents/"+receipt.DocumentID, "bob", nil, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("cross-owner delete status = %d, want 404", resp.StatusCode)
	}
}

func TestDeleteDocument(t *testing.T) {
	env := newTestEnv(t)

	body, ct := multipartUpload(t, "gone.txt", "text/plain", "bye")
	resp := env.do(t, http.MethodPost, "/api/documents/upload", "alice", body, ct)
	receipt := decode[ingest.Receipt](t, resp)
	env.ingest.Wait()

	resp = env.do(t, http.MethodDelete, "/api/documents/"+receipt.DocumentID, "alice", nil, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}

	resp = env.do(t, http.MethodGet, "/api/documents/"+receipt.DocumentID, "alice", nil, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", resp.StatusCode)
	}
}

func TestCartFlow(t *testing.T) {
	env := newTestEnv(t)

	// A cart needs a document to reference.
	body, ct := multipartUpload(t, "source.txt", "text/plain", "source text")
	resp := env.do(t, http.MethodPost, "/api/documents/upload", "alice", body, ct)
	receipt := decode[ingest.Receipt](t, resp)
	env.ingest.Wait()

	cartBody := bytes.NewBufferString(fmt.Sprintf(`{
		"documentId": %q,
		"name": "Quotes",
		"snippets": [{"type": "text", "content": "<p>first pick</p>", "sourceSection": "Document"}]
	}`, receipt.DocumentID))
	resp = env.do(t, http.MethodPost, "/api/carts/", "alice", cartBody, "application/json")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create cart status = %d", resp.StatusCode)
	}
	created := decode[cart.Cart](t, resp)
	if created.ID == "" || created.Name != "Quotes" {
		t.Fatalf("cart = %+v", created)
	}

	resp = env.do(t, http.MethodGet, "/api/carts/"+created.ID+"/export", "alice", nil, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); !strings.HasPrefix(got, "text/markdown") {
		t.Errorf("export content-type = %q", got)
	}
	var md bytes.Buffer
	md.ReadFrom(resp.Body)
	if !strings.Contains(md.String(), "# Quotes") || !strings.Contains(md.String(), "### From: Document") {
		t.Errorf("export body:\n%s", md.String())
	}

	// Carts collapse ownership the same way documents do.
	resp = env.do(t, http.MethodGet, "/api/carts/"+created.ID, "bob", nil, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("cross-owner cart status = %d, want 404", resp.StatusCode)
	}
}

func TestCartRejectsUnknownDocument(t *testing.T) {
	env := newTestEnv(t)

	body := bytes.NewBufferString(`{"documentId": "missing", "name": "n", "snippets": []}`)
	resp := env.do(t, http.MethodPost, "/api/carts/", "alice", body, "application/json")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", resp.StatusCode)
	}
}
