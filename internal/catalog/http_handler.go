package catalog

import (
	"encoding/json"
	"net/http"

	"bookcatalog/internal/httpx"
)

type HTTPHandler struct {
	svc       *Service
	summaries *SummaryEngine
}

func NewHTTPHandler(svc *Service, summaries *SummaryEngine) *HTTPHandler {
	return &HTTPHandler{svc: svc, summaries: summaries}
}

// Register mounts the catalog routes on mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/books/count", h.BookCount)
	mux.HandleFunc("GET /v1/authors/count", h.AuthorCount)
	mux.HandleFunc("GET /v1/books", h.ListBooks)
	mux.HandleFunc("GET /v1/books/by-genre", h.BooksByGenre)
	mux.HandleFunc("GET /v1/books/by-author", h.BooksByAuthor)
	mux.HandleFunc("GET /v1/authors", h.AllAuthors)
	mux.HandleFunc("GET /v1/authors/book-counts", h.AuthorBookCounts)
	mux.HandleFunc("POST /v1/books", h.AddBook)
	mux.HandleFunc("PUT /v1/authors/born", h.EditAuthor)
}

// BookCount handles GET /v1/books/count
// @Summary Count books
// @Tags catalog
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/books/count [get]
func (h *HTTPHandler) BookCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.BookCount(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, n, nil)
}

// AuthorCount handles GET /v1/authors/count
// @Summary Count authors
// @Tags catalog
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/authors/count [get]
func (h *HTTPHandler) AuthorCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.AuthorCount(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, n, nil)
}

// ListBooks handles GET /v1/books
// @Summary List books
// @Description List books with their authors, optionally filtered by author name and genre
// @Tags catalog
// @Produce json
// @Param author query string false "Author name"
// @Param genre query string false "Genre"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /v1/books [get]
func (h *HTTPHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	books, err := h.svc.ListBooks(r.Context(), Filter{
		AuthorName: query.Get("author"),
		Genre:      query.Get("genre"),
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, books, map[string]interface{}{"total": len(books)})
}

// BooksByGenre handles GET /v1/books/by-genre
// @Summary List books by genre
// @Description genre=allGenres or no genre lists every book
// @Tags catalog
// @Produce json
// @Param genre query string false "Genre"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/books/by-genre [get]
func (h *HTTPHandler) BooksByGenre(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.BooksByGenre(r.Context(), r.URL.Query().Get("genre"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, books, map[string]interface{}{"total": len(books)})
}

// BooksByAuthor handles GET /v1/books/by-author
// @Summary List books by author
// @Tags catalog
// @Produce json
// @Param author query string false "Author name"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/books/by-author [get]
func (h *HTTPHandler) BooksByAuthor(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.BooksByAuthor(r.Context(), r.URL.Query().Get("author"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, books, map[string]interface{}{"total": len(books)})
}

// AllAuthors handles GET /v1/authors
// @Summary Author summaries
// @Description Every author referenced by at least one book, with its book count
// @Tags catalog
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /v1/authors [get]
func (h *HTTPHandler) AllAuthors(w http.ResponseWriter, r *http.Request) {
	rows, err := h.summaries.AuthorSummaries(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, rows, nil)
}

// AddBook handles POST /v1/books
// @Summary Add a book
// @Description Store a book, creating its author on first reference. Publishes bookAdded.
// @Tags catalog
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body NewBook true "Book"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /v1/books [post]
func (h *HTTPHandler) AddBook(w http.ResponseWriter, r *http.Request) {
	var req NewBook
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}

	b, err := h.svc.AddBook(r.Context(), req, httpx.PrincipalFrom(r))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, b)
}

type editAuthorReq struct {
	Name      string `json:"name"`
	SetBornTo *int   `json:"setBornTo"`
}

// EditAuthor handles PUT /v1/authors/born
// @Summary Set an author's born year
// @Tags catalog
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body editAuthorReq true "Author name and born year"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/authors/born [put]
func (h *HTTPHandler) EditAuthor(w http.ResponseWriter, r *http.Request) {
	var req editAuthorReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SetBornTo == nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}

	a, err := h.svc.EditAuthor(r.Context(), req.Name, *req.SetBornTo, httpx.PrincipalFrom(r))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, a, nil)
}

// AuthorBookCounts handles GET /v1/authors/book-counts
// @Summary Author book counts
// @Description Same rows as GET /v1/authors without the born year
// @Tags catalog
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/authors/book-counts [get]
func (h *HTTPHandler) AuthorBookCounts(w http.ResponseWriter, r *http.Request) {
	rows, err := h.summaries.AuthorBookCounts(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, rows, nil)
}
