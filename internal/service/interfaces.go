package service

import (
	"context"

	"github.com/prohmpiriya/tier-events/internal/domain"
)

// EventService defines the event listing logic
type EventService interface {
	// ListEvents returns every event. Store failures yield an empty list.
	ListEvents(ctx context.Context) []*domain.Event
	// ListForViewer classifies events for a viewer and applies an optional tier filter
	ListForViewer(ctx context.Context, viewerTier domain.Tier, filter string) *EventListing
}

// ViewerService defines viewer lookup and the tier update flow
type ViewerService interface {
	// GetViewer reads the viewer from the identity store
	GetViewer(ctx context.Context, id string) (*domain.Viewer, error)
	// UpdateTier validates and persists a tier change, then announces it
	UpdateTier(ctx context.Context, viewerID, tierName string) error
}

// TierChangePublisher announces persisted tier changes
type TierChangePublisher interface {
	PublishTierChange(ctx context.Context, change *domain.TierChange) error
}
