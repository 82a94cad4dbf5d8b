package domain

import "time"

// Event is a read-only showcase item gated by a tier
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EventDate   time.Time `json:"event_date"`
	ImageURL    string    `json:"image_url"`
	Tier        Tier      `json:"tier"`
}

// EventView is an Event as seen by a particular viewer
type EventView struct {
	Event
	Locked bool `json:"locked"`
}
