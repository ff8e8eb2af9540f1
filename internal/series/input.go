package series

import (
	"bookhub/pkg/database"
	"bookhub/pkg/liberr"
)

// MetadataInput is the partial-update payload for a series metadata
// record. Every field is individually optional: nil leaves the stored
// value untouched, non-nil overwrites it (including explicit empty).
type MetadataInput struct {
	MetaType   *string `json:"meta_type"`
	Title      *string `json:"title"`
	Summary    *string `json:"summary"`
	Publisher  *string `json:"publisher"`
	Imprint    *string `json:"imprint"`
	ExternalID *int    `json:"external_id"`
	Volume     *int    `json:"volume"`
	Booktype   *string `json:"booktype"`
	AgeRating  *int    `json:"age_rating"`
	Status     *string `json:"status"`
}

// Changeset validates the categorical fields and maps present fields
// onto a mutation descriptor. Absent fields produce no entry at all, so
// applying the descriptor can never clobber data the caller did not
// touch. Validation failures happen before any write.
func (in MetadataInput) Changeset() (*database.Changeset, error) {
	normalized, err := in.normalize()
	if err != nil {
		return nil, err
	}

	cs := &database.Changeset{}
	if normalized.MetaType != nil {
		cs.Set("meta_type", *normalized.MetaType)
	}
	if normalized.Title != nil {
		cs.Set("title", *normalized.Title)
	}
	if normalized.Summary != nil {
		cs.Set("summary", *normalized.Summary)
	}
	if normalized.Publisher != nil {
		cs.Set("publisher", *normalized.Publisher)
	}
	if normalized.Imprint != nil {
		cs.Set("imprint", *normalized.Imprint)
	}
	if normalized.ExternalID != nil {
		cs.Set("external_id", *normalized.ExternalID)
	}
	if normalized.Volume != nil {
		cs.Set("volume", *normalized.Volume)
	}
	if normalized.Booktype != nil {
		cs.Set("booktype", *normalized.Booktype)
	}
	if normalized.AgeRating != nil {
		cs.Set("age_rating", *normalized.AgeRating)
	}
	if normalized.Status != nil {
		cs.Set("status", *normalized.Status)
	}
	return cs, nil
}

// normalize returns a copy with categorical values mapped to their
// canonical form. An explicit empty string clears the field and is
// always allowed.
func (in MetadataInput) normalize() (MetadataInput, error) {
	if in.Status != nil && *in.Status != "" {
		canonical := normalizeStatus(*in.Status)
		if canonical == "" {
			return in, liberr.InvalidFieldValue("status", *in.Status)
		}
		in.Status = &canonical
	}
	if in.Booktype != nil && *in.Booktype != "" {
		canonical := normalizeBooktype(*in.Booktype)
		if canonical == "" {
			return in, liberr.InvalidFieldValue("booktype", *in.Booktype)
		}
		in.Booktype = &canonical
	}
	if in.AgeRating != nil && *in.AgeRating < 0 {
		return in, liberr.InvalidFieldValue("age_rating", "negative")
	}
	if in.Volume != nil && *in.Volume < 0 {
		return in, liberr.InvalidFieldValue("volume", "negative")
	}
	return in, nil
}
