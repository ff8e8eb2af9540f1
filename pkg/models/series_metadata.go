package models

import "time"

// SeriesMetadata is an independently editable series-level record.
// It is deliberately not linked to media by foreign key; a series
// record is associated with media by matching Title against the
// media_metadata.series text.
type SeriesMetadata struct {
	ID         string    `json:"id"`
	MetaType   string    `json:"meta_type,omitempty"`
	Title      string    `json:"title,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	Publisher  string    `json:"publisher,omitempty"`
	Imprint    string    `json:"imprint,omitempty"`
	ExternalID *int      `json:"external_id,omitempty"`
	Volume     *int      `json:"volume,omitempty"`
	Booktype   string    `json:"booktype,omitempty"`
	AgeRating  *int      `json:"age_rating,omitempty"`
	Status     string    `json:"status,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
