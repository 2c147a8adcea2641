package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kurate/kurate/ingest"
	"github.com/kurate/kurate/parse"
)

// CreateDocument inserts a new document row in the processing state.
func (s *Store) CreateDocument(ctx context.Context, d *ingest.Document) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, owner, title, source_kind, original_ref, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Owner, d.Title, string(d.SourceKind), d.OriginalRef,
		string(d.Status), d.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// Document returns one document with its full parsed content. A missing
// row and a row owned by someone else both return ingest.ErrNotFound.
func (s *Store) Document(ctx context.Context, owner, id string) (*ingest.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner, title, source_kind, original_ref, status, toc, sections, images, created_at
		 FROM documents WHERE id = ? AND owner = ?`, id, owner)
	return scanDocument(row, true)
}

// Documents returns the owner's documents newest first. Each entry
// carries its table of contents but not the section bodies or images;
// callers fetch individual documents for those.
func (s *Store) Documents(ctx context.Context, owner string) ([]*ingest.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner, title, source_kind, original_ref, status, toc, NULL, NULL, created_at
		 FROM documents WHERE owner = ? ORDER BY created_at DESC, id DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []*ingest.Document
	for rows.Next() {
		d, err := scanDocument(rows, false)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// DeleteDocument removes a document and, via CASCADE, its carts.
func (s *Store) DeleteDocument(ctx context.Context, owner, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE id = ? AND owner = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ingest.ErrNotFound
	}
	return nil
}

// MarkReady stores parsed content and flips the document to ready. The
// update only matches rows still in the processing state, so a second
// terminal write or a write after deletion reports false without
// touching anything.
func (s *Store) MarkReady(ctx context.Context, id string, c *parse.Content) (bool, error) {
	toc, err := json.Marshal(c.TOC)
	if err != nil {
		return false, fmt.Errorf("marshal toc: %w", err)
	}
	sections, err := json.Marshal(c.Sections)
	if err != nil {
		return false, fmt.Errorf("marshal sections: %w", err)
	}
	images, err := json.Marshal(c.Images)
	if err != nil {
		return false, fmt.Errorf("marshal images: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET status = ?, toc = ?, sections = ?, images = ?
		 WHERE id = ? AND status = ?`,
		string(ingest.StatusReady), string(toc), string(sections), string(images),
		id, string(ingest.StatusProcessing),
	)
	if err != nil {
		return false, fmt.Errorf("mark ready: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// MarkError flips a still-processing document to the error state.
func (s *Store) MarkError(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET status = ? WHERE id = ? AND status = ?`,
		string(ingest.StatusError), id, string(ingest.StatusProcessing),
	)
	if err != nil {
		return false, fmt.Errorf("mark error: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner, full bool) (*ingest.Document, error) {
	var (
		d         ingest.Document
		kind      string
		status    string
		createdAt string
		toc       sql.NullString
		sections  sql.NullString
		images    sql.NullString
	)
	err := row.Scan(&d.ID, &d.Owner, &d.Title, &kind, &d.OriginalRef,
		&status, &toc, &sections, &images, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ingest.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan document: %w", err)
	}

	d.SourceKind = ingest.SourceKind(kind)
	d.Status = ingest.Status(status)
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		d.CreatedAt = t
	}

	if d.Status == ingest.StatusReady && toc.Valid {
		c := &parse.Content{}
		if err := json.Unmarshal([]byte(toc.String), &c.TOC); err != nil {
			return nil, fmt.Errorf("unmarshal toc: %w", err)
		}
		if full && sections.Valid {
			if err := json.Unmarshal([]byte(sections.String), &c.Sections); err != nil {
				return nil, fmt.Errorf("unmarshal sections: %w", err)
			}
		}
		if full && images.Valid {
			if err := json.Unmarshal([]byte(images.String), &c.Images); err != nil {
				return nil, fmt.Errorf("unmarshal images: %w", err)
			}
		}
		d.Content = c
	}
	return &d, nil
}
