package repository

import (
	"context"

	"github.com/prohmpiriya/tier-events/internal/domain"
)

// EventRepository defines read access to the event store
type EventRepository interface {
	// ListAll returns every event ordered by event date
	ListAll(ctx context.Context) ([]*domain.Event, error)
}

// ViewerRepository defines access to viewer identity metadata
type ViewerRepository interface {
	// GetByID retrieves a viewer by ID, returning nil when it does not exist
	GetByID(ctx context.Context, id string) (*domain.Viewer, error)
	// UpdateTier stores a new tier and returns the tier it replaced
	UpdateTier(ctx context.Context, id string, tier domain.Tier) (domain.Tier, error)
}
