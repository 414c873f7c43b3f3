package domain

import "time"

// Photo is an uploaded image persisted by the photo vault.
// Ref is the portable data URL stored on listings.
type Photo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Size      int64     `json:"size"`
	Ref       string    `json:"data"`
	CreatedAt time.Time `json:"timestamp"`
}
