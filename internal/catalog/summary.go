package catalog

import (
	"context"
	"fmt"

	"bookcatalog/internal/entity"
)

// SummaryEngine aggregates books per author. It runs as three stages:
// group book author ids, join author records, project summary rows. Only
// authors referenced by at least one book appear in the output.
type SummaryEngine struct {
	src SummarySource
}

func NewSummaryEngine(src SummarySource) *SummaryEngine {
	return &SummaryEngine{src: src}
}

type authorGroup struct {
	AuthorID string
	Count    int
}

type joinedGroup struct {
	authorGroup
	Author entity.Author
}

func (e *SummaryEngine) AuthorSummaries(ctx context.Context) ([]entity.AuthorSummary, error) {
	rows, err := e.joined(ctx)
	if err != nil {
		return nil, err
	}
	return project(rows), nil
}

// AuthorBookCounts is AuthorSummaries projected without the born year.
func (e *SummaryEngine) AuthorBookCounts(ctx context.Context) ([]entity.AuthorBookCount, error) {
	rows, err := e.joined(ctx)
	if err != nil {
		return nil, err
	}
	return projectCounts(rows), nil
}

func (e *SummaryEngine) joined(ctx context.Context) ([]joinedGroup, error) {
	ids, err := e.src.BookAuthorIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load book authors: %w", err)
	}

	groups := groupByAuthor(ids)
	keys := make([]string, 0, len(groups))
	for _, g := range groups {
		keys = append(keys, g.AuthorID)
	}

	authors := map[string]entity.Author{}
	if len(keys) > 0 {
		authors, err = e.src.AuthorsByID(ctx, keys)
		if err != nil {
			return nil, fmt.Errorf("load authors: %w", err)
		}
	}

	return joinAuthors(groups, authors), nil
}

// groupByAuthor counts books per author id, keeping first-seen order.
func groupByAuthor(authorIDs []string) []authorGroup {
	index := make(map[string]int, len(authorIDs))
	var groups []authorGroup
	for _, id := range authorIDs {
		if i, ok := index[id]; ok {
			groups[i].Count++
			continue
		}
		index[id] = len(groups)
		groups = append(groups, authorGroup{AuthorID: id, Count: 1})
	}
	return groups
}

// joinAuthors attaches the author record to each group. Groups whose author
// is missing are dropped.
func joinAuthors(groups []authorGroup, authors map[string]entity.Author) []joinedGroup {
	out := make([]joinedGroup, 0, len(groups))
	for _, g := range groups {
		a, ok := authors[g.AuthorID]
		if !ok {
			continue
		}
		out = append(out, joinedGroup{authorGroup: g, Author: a})
	}
	return out
}

func project(rows []joinedGroup) []entity.AuthorSummary {
	out := make([]entity.AuthorSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, entity.AuthorSummary{
			AuthorID:  r.AuthorID,
			Name:      r.Author.Name,
			BornYear:  r.Author.BornYear,
			BookCount: r.Count,
		})
	}
	return out
}

func projectCounts(rows []joinedGroup) []entity.AuthorBookCount {
	out := make([]entity.AuthorBookCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, entity.AuthorBookCount{
			AuthorID:  r.AuthorID,
			Name:      r.Author.Name,
			BookCount: r.Count,
		})
	}
	return out
}
