package dto

import (
	"time"

	"github.com/prohmpiriya/tier-events/internal/domain"
)

// EventListFilter holds the query parameters of the event listing
type EventListFilter struct {
	Tier string `form:"tier"`
}

// EventResponse is an event as returned to a particular viewer
type EventResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EventDate   time.Time `json:"event_date"`
	ImageURL    string    `json:"image_url"`
	Tier        string    `json:"tier"`
	Locked      bool      `json:"locked"`
}

// ToEventResponse converts a classified event
func ToEventResponse(v domain.EventView) *EventResponse {
	return &EventResponse{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		EventDate:   v.EventDate,
		ImageURL:    v.ImageURL,
		Tier:        v.Tier.String(),
		Locked:      v.Locked,
	}
}

// ToEventResponses converts a slice of classified events, never returning nil
func ToEventResponses(views []domain.EventView) []*EventResponse {
	out := make([]*EventResponse, len(views))
	for i, v := range views {
		out[i] = ToEventResponse(v)
	}
	return out
}

// ViewerResponse is the body of GET /api/me
type ViewerResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	Tier      string `json:"tier"`
}

// ToViewerResponse converts a viewer
func ToViewerResponse(v *domain.Viewer) *ViewerResponse {
	return &ViewerResponse{
		ID:        v.ID,
		FirstName: v.FirstName,
		Tier:      v.Tier.String(),
	}
}
