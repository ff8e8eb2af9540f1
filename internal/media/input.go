package media

import (
	"bookhub/pkg/database"
	"bookhub/pkg/liberr"
)

// MetadataInput is the partial-update payload for a media item's
// metadata. Every field is individually optional: a nil pointer leaves
// the stored value untouched, a non-nil pointer overwrites it, and a
// pointer to the zero value clears it. JSON absence maps to nil, so
// "unset" and "explicit empty" stay distinct.
type MetadataInput struct {
	Title     *string `json:"title"`
	Series    *string `json:"series"`
	Writers   *string `json:"writers"`
	Publisher *string `json:"publisher"`
	Genre     *string `json:"genre"`
	Summary   *string `json:"summary"`
	AgeRating *int    `json:"age_rating"`
}

// Changeset maps the input onto a mutation descriptor: one set entry
// per present field, nothing for absent ones.
func (in MetadataInput) Changeset() (*database.Changeset, error) {
	if in.AgeRating != nil && *in.AgeRating < 0 {
		return nil, liberr.InvalidFieldValue("age_rating", "negative")
	}

	cs := &database.Changeset{}
	if in.Title != nil {
		cs.Set("title", *in.Title)
	}
	if in.Series != nil {
		cs.Set("series", *in.Series)
	}
	if in.Writers != nil {
		cs.Set("writers", *in.Writers)
	}
	if in.Publisher != nil {
		cs.Set("publisher", *in.Publisher)
	}
	if in.Genre != nil {
		cs.Set("genre", *in.Genre)
	}
	if in.Summary != nil {
		cs.Set("summary", *in.Summary)
	}
	if in.AgeRating != nil {
		cs.Set("age_rating", *in.AgeRating)
	}
	return cs, nil
}
