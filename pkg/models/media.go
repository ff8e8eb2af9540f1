package models

import "time"

// Media is a single library item. Each item owns exactly one
// MediaMetadata record; the two are stored in separate tables and
// joined by media_id.
type Media struct {
	ID        string    `json:"id"`
	LibraryID string    `json:"library_id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Pages     int       `json:"pages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MediaMetadata holds the free-text metadata of one media item.
// Writers is a comma-delimited list ("Alan Moore, Dave Gibbons");
// Series is a plain title string. There is no normalized author or
// series table, so relationships are inferred from these fields.
type MediaMetadata struct {
	MediaID   string `json:"media_id"`
	Title     string `json:"title,omitempty"`
	Series    string `json:"series,omitempty"`
	Writers   string `json:"writers,omitempty"`
	Publisher string `json:"publisher,omitempty"`
	Genre     string `json:"genre,omitempty"`
	Summary   string `json:"summary,omitempty"`
	AgeRating *int   `json:"age_rating,omitempty"`
}

// MediaWithMetadata is the joined read shape used by all scoped queries.
type MediaWithMetadata struct {
	Media
	Metadata MediaMetadata `json:"metadata"`
}
