package events

import "time"

// Event types broadcast to connected clients. Payload carries the
// fields that changed so clients can refresh without a round trip.
const (
	TypeMediaMetadataUpdate  = "media_metadata.update"
	TypeSeriesMetadataUpdate = "series_metadata.update"
	TypeSeriesMetadataCreate = "series_metadata.create"
	TypeLibraryCreate        = "library.create"
	TypeReadingUpdate        = "reading.update"
	TypeReadingDelete        = "reading.delete"
)

type MetadataEvent struct {
	Type     string    `json:"type"`
	EntityID string    `json:"entity_id"`
	Fields   []string  `json:"fields,omitempty"` // column names that were set
	At       time.Time `json:"at"`
}

type ReadingEvent struct {
	Type        string    `json:"type"`
	UserID      string    `json:"user_id"`
	MediaID     string    `json:"media_id"`
	CurrentPage int       `json:"current_page,omitempty"`
	Status      string    `json:"status,omitempty"`
	At          time.Time `json:"at"`
}
