// Package authors materializes the virtual Author and AuthorSeries
// aggregates. Neither is stored: an author exists only as a name
// appearing in media writer lists, a series (in this context) only as a
// title appearing in media series fields. Every nested field is derived
// at request time from the caller's scoped media query.
package authors

import (
	"context"

	"bookhub/internal/media"
	"bookhub/pkg/models"
)

type Service struct {
	Finder *media.Finder
}

func NewService(finder *media.Finder) *Service {
	return &Service{Finder: finder}
}

// Author is a computed view keyed by name. A zero-book author is a
// legitimate empty aggregate, not an error: there is no existence check
// beyond the name resolving to at least zero usages.
type Author struct {
	Name   string                     `json:"name"`
	Books  []models.MediaWithMetadata `json:"books,omitempty"`
	Series []AuthorSeries             `json:"series,omitempty"`
}

// AuthorSeries is a computed view keyed by series title, scoped to one
// author's context. It carries no stored SeriesMetadata: whether the
// title also names a stored record is deliberately not resolved here.
type AuthorSeries struct {
	Title string                     `json:"title"`
	Books []models.MediaWithMetadata `json:"books,omitempty"`
}

// Projection selects which nested fields to materialize. Unrequested
// fields cost no queries.
type Projection struct {
	Books       bool
	Series      bool
	SeriesBooks bool // also resolve books under each series entry
}

// Books resolves all visible media whose writers list contains name.
func (s *Service) Books(ctx context.Context, userID, name string) ([]models.MediaWithMetadata, error) {
	q, err := s.Finder.Visible(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Finder.Find(ctx, q.WriterContains(name))
}

// SeriesTitles resolves the distinct series titles among the author's
// visible books, lexicographically ordered.
func (s *Service) SeriesTitles(ctx context.Context, userID, name string) ([]string, error) {
	q, err := s.Finder.Visible(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Finder.DistinctSeriesTitles(ctx, q.WriterContains(name))
}

// SeriesBooks resolves all visible media whose series field contains
// title.
func (s *Service) SeriesBooks(ctx context.Context, userID, title string) ([]models.MediaWithMetadata, error) {
	q, err := s.Finder.Visible(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Finder.Find(ctx, q.SeriesContains(title))
}

// Assemble builds an Author aggregate with exactly the projected
// fields. Any scope or read failure aborts the whole assembly; a
// partially populated aggregate is never returned, so "no books" always
// means no visible books rather than a swallowed error.
func (s *Service) Assemble(ctx context.Context, userID, name string, p Projection) (*Author, error) {
	author := &Author{Name: name}

	if p.Books {
		books, err := s.Books(ctx, userID, name)
		if err != nil {
			return nil, err
		}
		author.Books = books
	}

	if p.Series || p.SeriesBooks {
		titles, err := s.SeriesTitles(ctx, userID, name)
		if err != nil {
			return nil, err
		}
		author.Series = make([]AuthorSeries, 0, len(titles))
		for _, title := range titles {
			entry := AuthorSeries{Title: title}
			if p.SeriesBooks {
				books, err := s.SeriesBooks(ctx, userID, title)
				if err != nil {
					return nil, err
				}
				entry.Books = books
			}
			author.Series = append(author.Series, entry)
		}
	}

	return author, nil
}
