package store

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"bookcatalog/internal/catalog"
	"bookcatalog/internal/entity"
)

// Memory keeps the whole catalog and user table in process. Names and
// titles are unique the same way the Postgres schema makes them unique.
type Memory struct {
	mu      sync.RWMutex
	authors []entity.Author
	books   []entity.Book
	users   []entity.User
}

var _ catalog.Repository = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) CountBooks(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.books), nil
}

func (m *Memory) CountAuthors(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.authors), nil
}

func (m *Memory) ListBooks(ctx context.Context, f catalog.BookFilter) ([]entity.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []entity.Book
	for _, b := range m.books {
		if f.AuthorID != "" && b.AuthorID != f.AuthorID {
			continue
		}
		if f.Genre != "" && !b.HasGenre(f.Genre) {
			continue
		}
		if i := m.authorIndex(b.AuthorID); i >= 0 {
			b.Author = m.authors[i]
		}
		b.Genres = slices.Clone(b.Genres)
		out = append(out, b)
	}
	return out, nil
}

func (m *Memory) BookAuthorIDs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.books))
	for _, b := range m.books {
		ids = append(ids, b.AuthorID)
	}
	return ids, nil
}

func (m *Memory) AuthorsByID(ctx context.Context, ids []string) (map[string]entity.Author, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]entity.Author, len(ids))
	for _, id := range ids {
		if i := m.authorIndex(id); i >= 0 {
			out[id] = m.authors[i]
		}
	}
	return out, nil
}

func (m *Memory) FindAuthorByName(ctx context.Context, name string) (entity.Author, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, a := range m.authors {
		if a.Name == name {
			return a, nil
		}
	}
	return entity.Author{}, entity.ErrNotFound
}

func (m *Memory) CreateAuthor(ctx context.Context, a *entity.Author) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.authors {
		if existing.Name == a.Name {
			return entity.ErrDuplicate
		}
	}
	a.ID = uuid.NewString()
	m.authors = append(m.authors, *a)
	return nil
}

func (m *Memory) UpdateAuthor(ctx context.Context, a *entity.Author) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.authorIndex(a.ID)
	if i < 0 {
		return entity.ErrNotFound
	}
	for j, existing := range m.authors {
		if j != i && existing.Name == a.Name {
			return entity.ErrDuplicate
		}
	}
	m.authors[i] = *a
	return nil
}

func (m *Memory) CreateBook(ctx context.Context, b *entity.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.authorIndex(b.AuthorID) < 0 {
		return entity.ErrNotFound
	}
	for _, existing := range m.books {
		if existing.Title == b.Title {
			return entity.ErrDuplicate
		}
	}
	b.ID = uuid.NewString()
	stored := *b
	stored.Author = entity.Author{}
	stored.Genres = slices.Clone(b.Genres)
	m.books = append(m.books, stored)
	return nil
}

func (m *Memory) CreateUser(ctx context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Username == u.Username {
			return entity.ErrDuplicate
		}
	}
	u.ID = uuid.NewString()
	m.users = append(m.users, *u)
	return nil
}

func (m *Memory) GetUserByUsername(ctx context.Context, username string) (entity.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return entity.User{}, entity.ErrNotFound
}

func (m *Memory) GetUserByID(ctx context.Context, id string) (entity.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return entity.User{}, entity.ErrNotFound
}

func (m *Memory) Ping(ctx context.Context) error {
	return nil
}

// caller holds mu
func (m *Memory) authorIndex(id string) int {
	return slices.IndexFunc(m.authors, func(a entity.Author) bool { return a.ID == id })
}
