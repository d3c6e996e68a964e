package entity

// Author is created on first reference by name and only mutated through the
// born-year edit.
type Author struct {
	ID       string `json:"id"`
	Name     string `json:"name" validate:"required,min=4"`
	BornYear *int   `json:"born" validate:"omitempty,gte=-2147483648,lte=2147483647"`
}

// Book always references exactly one Author. Author is populated on reads.
// Years are stored as 32-bit integers, zero and negative years included.
type Book struct {
	ID            string   `json:"id"`
	Title         string   `json:"title" validate:"required"`
	PublishedYear int      `json:"published" validate:"gte=-2147483648,lte=2147483647"`
	AuthorID      string   `json:"-" validate:"required"`
	Author        Author   `json:"author" validate:"-"`
	Genres        []string `json:"genres"`
}

// HasGenre reports whether genre is one of the book's genres.
func (b Book) HasGenre(genre string) bool {
	for _, g := range b.Genres {
		if g == genre {
			return true
		}
	}
	return false
}

// AuthorSummary is one row of the per-author book count aggregation.
type AuthorSummary struct {
	AuthorID  string `json:"id"`
	Name      string `json:"name"`
	BornYear  *int   `json:"born"`
	BookCount int    `json:"bookCount"`
}

// AuthorBookCount is AuthorSummary without the born year.
type AuthorBookCount struct {
	AuthorID  string `json:"id"`
	Name      string `json:"name"`
	BookCount int    `json:"bookCount"`
}
