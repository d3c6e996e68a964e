package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"bookcatalog/internal/apperr"
	"bookcatalog/internal/entity"
	"bookcatalog/internal/notify"
	"bookcatalog/internal/platform/metrics"
)

// AllGenres as a genre filter matches every book, same as no genre.
const AllGenres = "allGenres"

// Filter selects books by author name and/or genre. Both set means AND.
type Filter struct {
	AuthorName string
	Genre      string
}

// NewBook carries the addBook arguments. Author is a name, resolved or created.
type NewBook struct {
	Title         string   `json:"title"`
	PublishedYear int      `json:"published"`
	Author        string   `json:"author"`
	Genres        []string `json:"genres"`
}

type Service struct {
	repo   Repository
	events Publisher
	log    logrus.FieldLogger
}

func NewService(repo Repository, events Publisher, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, events: events, log: log}
}

func (s *Service) BookCount(ctx context.Context) (int, error) {
	return s.repo.CountBooks(ctx)
}

func (s *Service) AuthorCount(ctx context.Context) (int, error) {
	return s.repo.CountAuthors(ctx)
}

// ListBooks returns books matching f, each with its author joined. An author
// filter naming an unknown author matches nothing.
func (s *Service) ListBooks(ctx context.Context, f Filter) ([]entity.Book, error) {
	bf := BookFilter{Genre: f.Genre}
	if bf.Genre == AllGenres {
		bf.Genre = ""
	}
	if f.AuthorName != "" {
		a, err := s.repo.FindAuthorByName(ctx, f.AuthorName)
		if errors.Is(err, entity.ErrNotFound) {
			return []entity.Book{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("find author: %w", err)
		}
		bf.AuthorID = a.ID
	}

	books, err := s.repo.ListBooks(ctx, bf)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	if books == nil {
		books = []entity.Book{}
	}
	return books, nil
}

// BooksByGenre lists the books tagged genre. An empty genre or AllGenres
// lists every book.
func (s *Service) BooksByGenre(ctx context.Context, genre string) ([]entity.Book, error) {
	return s.ListBooks(ctx, Filter{Genre: genre})
}

// BooksByAuthor lists the books written by the author called name, or every
// book when name is empty.
func (s *Service) BooksByAuthor(ctx context.Context, name string) ([]entity.Book, error) {
	return s.ListBooks(ctx, Filter{AuthorName: name})
}

// AddBook stores a new book, creating its author on first reference, and
// announces it on the bookAdded topic.
func (s *Service) AddBook(ctx context.Context, in NewBook, principal *entity.User) (entity.Book, error) {
	if principal == nil {
		return entity.Book{}, apperr.ErrNotAuthenticated
	}

	author, err := s.resolveAuthor(ctx, in.Author)
	if err != nil {
		return entity.Book{}, err
	}

	b := entity.Book{
		Title:         in.Title,
		PublishedYear: in.PublishedYear,
		AuthorID:      author.ID,
		Genres:        in.Genres,
	}
	if b.Genres == nil {
		b.Genres = []string{}
	}
	if err := entity.Validate(b); err != nil {
		return entity.Book{}, apperr.WithArg(apperr.ErrBookValidation, in.Title, err)
	}
	if err := s.repo.CreateBook(ctx, &b); err != nil {
		if errors.Is(err, entity.ErrDuplicate) || errors.Is(err, entity.ErrInvalid) {
			return entity.Book{}, apperr.WithArg(apperr.ErrBookValidation, in.Title, err)
		}
		return entity.Book{}, fmt.Errorf("create book: %w", err)
	}
	b.Author = author

	metrics.RecordBookAdded()
	n := s.events.Publish(notify.BookAdded, b)
	s.log.WithFields(logrus.Fields{
		"book_id":     b.ID,
		"author_id":   author.ID,
		"user_id":     principal.ID,
		"subscribers": n,
	}).Info("book added")

	return b, nil
}

// resolveAuthor is a get-or-create on the author name. The name column is
// unique, so a concurrent creator makes our insert fail with ErrDuplicate and
// we read back the winner's row.
func (s *Service) resolveAuthor(ctx context.Context, name string) (entity.Author, error) {
	a, err := s.repo.FindAuthorByName(ctx, name)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, entity.ErrNotFound) {
		return entity.Author{}, fmt.Errorf("find author: %w", err)
	}

	a = entity.Author{Name: name}
	if err := entity.Validate(a); err != nil {
		return entity.Author{}, apperr.WithArg(apperr.ErrAuthorValidation, name, err)
	}

	err = s.repo.CreateAuthor(ctx, &a)
	switch {
	case err == nil:
		metrics.RecordAuthorCreated()
		s.log.WithFields(logrus.Fields{"author_id": a.ID, "name": name}).Info("author created")
		return a, nil
	case errors.Is(err, entity.ErrDuplicate):
		s.log.WithField("name", name).Debug("author created concurrently, reloading")
		a, err = s.repo.FindAuthorByName(ctx, name)
		if err != nil {
			return entity.Author{}, fmt.Errorf("reload author: %w", err)
		}
		return a, nil
	case errors.Is(err, entity.ErrInvalid):
		return entity.Author{}, apperr.WithArg(apperr.ErrAuthorValidation, name, err)
	default:
		return entity.Author{}, fmt.Errorf("create author: %w", err)
	}
}

// EditAuthor sets the born year of the author called name.
func (s *Service) EditAuthor(ctx context.Context, name string, setBornTo int, principal *entity.User) (entity.Author, error) {
	if principal == nil {
		return entity.Author{}, apperr.ErrNotAuthenticated
	}

	a, err := s.repo.FindAuthorByName(ctx, name)
	if errors.Is(err, entity.ErrNotFound) {
		return entity.Author{}, apperr.WithArg(apperr.ErrAuthorNotFound, name, nil)
	}
	if err != nil {
		return entity.Author{}, fmt.Errorf("find author: %w", err)
	}

	a.BornYear = &setBornTo
	if err := entity.Validate(a); err != nil {
		return entity.Author{}, apperr.WithArg(apperr.ErrAuthorSave, name, err)
	}
	if err := s.repo.UpdateAuthor(ctx, &a); err != nil {
		return entity.Author{}, apperr.WithArg(apperr.ErrAuthorSave, name, err)
	}
	return a, nil
}
