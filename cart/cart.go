// Package cart manages curated collections of snippets clipped from
// ingested documents. A cart belongs to one owner, references one
// document, and holds an ordered list of snippets that can be exported
// as a single Markdown file.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kurate/kurate/ingest"
)

// Snippet types. Images carry a URL or data URI in Content; text and
// table snippets carry HTML or plain text.
const (
	SnippetText  = "text"
	SnippetTable = "table"
	SnippetImage = "image"
)

var (
	// ErrNotFound is returned for carts that do not exist or belong to
	// another owner. The two cases are indistinguishable on purpose.
	ErrNotFound = errors.New("cart not found")

	// ErrInvalidCart is returned when a cart fails validation.
	ErrInvalidCart = errors.New("invalid cart")
)

// Snippet is one clipped fragment inside a cart.
type Snippet struct {
	Type          string `json:"type"`
	Content       string `json:"content"`
	SourceSection string `json:"sourceSection,omitempty"`
}

// Cart is a named collection of snippets from a single document.
type Cart struct {
	ID         string    `json:"id"`
	Owner      string    `json:"-"`
	DocumentID string    `json:"documentId"`
	Name       string    `json:"name"`
	Snippets   []Snippet `json:"snippets"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Store is the persistence boundary for carts.
type Store interface {
	CreateCart(ctx context.Context, c *Cart) error
	Cart(ctx context.Context, owner, id string) (*Cart, error)
	Carts(ctx context.Context, owner string) ([]*Cart, error)
	UpdateCartSnippets(ctx context.Context, owner, id string, snippets []Snippet) (bool, error)
	DeleteCart(ctx context.Context, owner, id string) (bool, error)
}

// DocumentChecker verifies that a document exists and belongs to an owner.
// Satisfied by ingest.Service.
type DocumentChecker interface {
	Get(ctx context.Context, owner, id string) (*ingest.Document, error)
}

// Service implements cart operations on top of a Store.
type Service struct {
	store  Store
	docs   DocumentChecker
	logger *slog.Logger
	newID  func() string
}

// New builds a cart service. A nil logger discards log output.
func New(store Store, docs DocumentChecker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		store:  store,
		docs:   docs,
		logger: logger,
		newID:  func() string { return uuid.Must(uuid.NewV7()).String() },
	}
}

// Create validates and persists a new cart. The referenced document must
// exist and belong to the same owner.
func (s *Service) Create(ctx context.Context, owner, documentID, name string, snippets []Snippet) (*Cart, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name required", ErrInvalidCart)
	}
	if err := validateSnippets(snippets); err != nil {
		return nil, err
	}
	if _, err := s.docs.Get(ctx, owner, documentID); err != nil {
		if errors.Is(err, ingest.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown document %s", ErrInvalidCart, documentID)
		}
		return nil, err
	}

	c := &Cart{
		ID:         s.newID(),
		Owner:      owner,
		DocumentID: documentID,
		Name:       name,
		Snippets:   snippets,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.CreateCart(ctx, c); err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	s.logger.Info("cart created", "cart_id", c.ID, "document_id", documentID, "snippets", len(snippets))
	return c, nil
}

// Get returns one cart for the owner.
func (s *Service) Get(ctx context.Context, owner, id string) (*Cart, error) {
	return s.store.Cart(ctx, owner, id)
}

// List returns all carts for the owner, newest first.
func (s *Service) List(ctx context.Context, owner string) ([]*Cart, error) {
	return s.store.Carts(ctx, owner)
}

// UpdateSnippets replaces a cart's snippet list.
func (s *Service) UpdateSnippets(ctx context.Context, owner, id string, snippets []Snippet) (*Cart, error) {
	if err := validateSnippets(snippets); err != nil {
		return nil, err
	}
	ok, err := s.store.UpdateCartSnippets(ctx, owner, id, snippets)
	if err != nil {
		return nil, fmt.Errorf("update cart: %w", err)
	}
	if !ok {
		return nil, ErrNotFound
	}
	return s.store.Cart(ctx, owner, id)
}

// Delete removes a cart.
func (s *Service) Delete(ctx context.Context, owner, id string) error {
	ok, err := s.store.DeleteCart(ctx, owner, id)
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func validateSnippets(snippets []Snippet) error {
	for i, sn := range snippets {
		switch sn.Type {
		case SnippetText, SnippetTable, SnippetImage:
		default:
			return fmt.Errorf("%w: snippet %d: unknown type %q", ErrInvalidCart, i, sn.Type)
		}
		if sn.Content == "" {
			return fmt.Errorf("%w: snippet %d: empty content", ErrInvalidCart, i)
		}
	}
	return nil
}
