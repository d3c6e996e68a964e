package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"bookcatalog/internal/catalog"
	"bookcatalog/internal/entity"
)

type CatalogPG struct {
	pgBase
}

var _ catalog.Repository = (*CatalogPG)(nil)

func NewCatalogPG(db *pgxpool.Pool, timeout time.Duration) *CatalogPG {
	return &CatalogPG{pgBase{db: db, timeout: timeout}}
}

func (r *CatalogPG) CountBooks(ctx context.Context) (int, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM books`).Scan(&n)
	return n, err
}

func (r *CatalogPG) CountAuthors(ctx context.Context) (int, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM authors`).Scan(&n)
	return n, err
}

func (r *CatalogPG) ListBooks(ctx context.Context, f catalog.BookFilter) ([]entity.Book, error) {
	const query = `
	SELECT b.id, b.title, b.published_year, b.genres, a.id, a.name, a.born_year
	FROM books b
	JOIN authors a ON a.id = b.author_id
	WHERE ($1 = '' OR b.author_id::text = $1)
	AND ($2 = '' OR $2 = ANY(b.genres))
	ORDER BY b.created_at, b.id
	`
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, query, f.AuthorID, f.Genre)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []entity.Book
	for rows.Next() {
		var b entity.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.PublishedYear, &b.Genres,
			&b.Author.ID, &b.Author.Name, &b.Author.BornYear); err != nil {
			return nil, err
		}
		b.AuthorID = b.Author.ID
		if b.Genres == nil {
			b.Genres = []string{}
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (r *CatalogPG) BookAuthorIDs(ctx context.Context) ([]string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT author_id FROM books ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *CatalogPG) AuthorsByID(ctx context.Context, ids []string) (map[string]entity.Author, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT id, name, born_year FROM authors WHERE id::text = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]entity.Author, len(ids))
	for rows.Next() {
		var a entity.Author
		if err := rows.Scan(&a.ID, &a.Name, &a.BornYear); err != nil {
			return nil, err
		}
		out[a.ID] = a
	}
	return out, rows.Err()
}

func (r *CatalogPG) FindAuthorByName(ctx context.Context, name string) (entity.Author, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var a entity.Author
	err := r.db.QueryRow(ctx, `SELECT id, name, born_year FROM authors WHERE name = $1`, name).
		Scan(&a.ID, &a.Name, &a.BornYear)
	if err != nil {
		return entity.Author{}, mapErr(err)
	}
	return a, nil
}

func (r *CatalogPG) CreateAuthor(ctx context.Context, a *entity.Author) error {
	const query = `
	INSERT INTO authors (id, name, born_year)
	VALUES (gen_random_uuid(), $1, $2)
	RETURNING id
	`
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return mapErr(r.db.QueryRow(ctx, query, a.Name, a.BornYear).Scan(&a.ID))
}

func (r *CatalogPG) UpdateAuthor(ctx context.Context, a *entity.Author) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, `UPDATE authors SET name = $2, born_year = $3 WHERE id = $1`, a.ID, a.Name, a.BornYear)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *CatalogPG) CreateBook(ctx context.Context, b *entity.Book) error {
	const query = `
	INSERT INTO books (id, title, published_year, author_id, genres)
	VALUES (gen_random_uuid(), $1, $2, $3, $4)
	RETURNING id
	`
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return mapErr(r.db.QueryRow(ctx, query, b.Title, b.PublishedYear, b.AuthorID, b.Genres).Scan(&b.ID))
}

// Ping reports whether the database is reachable. Used by the readiness probe.
func (r *CatalogPG) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.Ping(ctx)
}
