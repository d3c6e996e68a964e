package catalog

import (
	"context"

	"bookcatalog/internal/entity"
	"bookcatalog/internal/notify"
)

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=catalog

// BookFilter narrows ListBooks. Empty fields match everything.
type BookFilter struct {
	AuthorID string
	Genre    string
}

// SummarySource is the read side the summary engine aggregates over.
type SummarySource interface {
	// BookAuthorIDs returns the author id of every stored book, one entry per book.
	BookAuthorIDs(ctx context.Context) ([]string, error)
	AuthorsByID(ctx context.Context, ids []string) (map[string]entity.Author, error)
}

// Repository is the catalog's storage. Writes are independent commits; there
// is no transaction spanning an author and a book.
type Repository interface {
	SummarySource

	CountBooks(ctx context.Context) (int, error)
	CountAuthors(ctx context.Context) (int, error)
	// ListBooks returns matching books with Author populated.
	ListBooks(ctx context.Context, f BookFilter) ([]entity.Book, error)
	FindAuthorByName(ctx context.Context, name string) (entity.Author, error)
	CreateAuthor(ctx context.Context, a *entity.Author) error
	UpdateAuthor(ctx context.Context, a *entity.Author) error
	CreateBook(ctx context.Context, b *entity.Book) error
}

// Publisher fans newly added books out to live subscribers.
type Publisher interface {
	Publish(topic notify.Topic, b entity.Book) int
}
