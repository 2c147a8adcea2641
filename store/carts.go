package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kurate/kurate/cart"
)

// CreateCart inserts a new cart row.
func (s *Store) CreateCart(ctx context.Context, c *cart.Cart) error {
	snippets, err := json.Marshal(c.Snippets)
	if err != nil {
		return fmt.Errorf("marshal snippets: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO carts (id, owner, document_id, name, snippets, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Owner, c.DocumentID, c.Name, string(snippets),
		c.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert cart: %w", err)
	}
	return nil
}

// Cart returns one cart. Missing and not-owned rows both return
// cart.ErrNotFound.
func (s *Store) Cart(ctx context.Context, owner, id string) (*cart.Cart, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner, document_id, name, snippets, created_at
		 FROM carts WHERE id = ? AND owner = ?`, id, owner)
	return scanCart(row)
}

// Carts returns the owner's carts newest first.
func (s *Store) Carts(ctx context.Context, owner string) ([]*cart.Cart, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner, document_id, name, snippets, created_at
		 FROM carts WHERE owner = ? ORDER BY created_at DESC, id DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("list carts: %w", err)
	}
	defer rows.Close()

	var carts []*cart.Cart
	for rows.Next() {
		c, err := scanCart(rows)
		if err != nil {
			return nil, err
		}
		carts = append(carts, c)
	}
	return carts, rows.Err()
}

// UpdateCartSnippets replaces the snippet list, reporting whether a row
// matched.
func (s *Store) UpdateCartSnippets(ctx context.Context, owner, id string, snippets []cart.Snippet) (bool, error) {
	data, err := json.Marshal(snippets)
	if err != nil {
		return false, fmt.Errorf("marshal snippets: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE carts SET snippets = ? WHERE id = ? AND owner = ?`,
		string(data), id, owner)
	if err != nil {
		return false, fmt.Errorf("update cart: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteCart removes a cart, reporting whether a row matched.
func (s *Store) DeleteCart(ctx context.Context, owner, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM carts WHERE id = ? AND owner = ?`, id, owner)
	if err != nil {
		return false, fmt.Errorf("delete cart: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func scanCart(row rowScanner) (*cart.Cart, error) {
	var (
		c         cart.Cart
		snippets  string
		createdAt string
	)
	err := row.Scan(&c.ID, &c.Owner, &c.DocumentID, &c.Name, &snippets, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cart.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan cart: %w", err)
	}
	if err := json.Unmarshal([]byte(snippets), &c.Snippets); err != nil {
		return nil, fmt.Errorf("unmarshal snippets: %w", err)
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		c.CreatedAt = t
	}
	return &c, nil
}
