package models

import "time"

// ReadingItem tracks one user's position in one media item.
type ReadingItem struct {
	UserID      string    `json:"user_id"`
	MediaID     string    `json:"media_id"`
	CurrentPage int       `json:"current_page"`
	Status      string    `json:"status"`
	UpdatedAt   time.Time `json:"updated_at"`
}
