package service

import (
	"context"

	"github.com/prohmpiriya/tier-events/internal/domain"
	"github.com/prohmpiriya/tier-events/internal/repository"
	"github.com/prohmpiriya/tier-events/pkg/logger"
	"github.com/prohmpiriya/tier-events/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// EventListing is the classified event list for one viewer
type EventListing struct {
	Events []domain.EventView
	// Filter is the applied tier filter, valid only when Filtered is true
	Filter   domain.Tier
	Filtered bool
}

// eventService implements EventService
type eventService struct {
	eventRepo repository.EventRepository
}

// NewEventService creates a new EventService
func NewEventService(eventRepo repository.EventRepository) EventService {
	return &eventService{eventRepo: eventRepo}
}

// ListEvents fetches events once. An error from the store is logged and an
// empty list returned; there is no retry.
func (s *eventService) ListEvents(ctx context.Context) []*domain.Event {
	ctx, span := telemetry.StartSpan(ctx, "service.event.list")
	defer span.End()

	events, err := s.eventRepo.ListAll(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		logger.Error("Error fetching events", zap.Error(err))
		return []*domain.Event{}
	}
	if events == nil {
		events = []*domain.Event{}
	}
	span.SetAttributes(attribute.Int("events.count", len(events)))
	return events
}

// ListForViewer classifies every event for viewerTier and narrows to filter
// when it names a tier the viewer has reached.
func (s *eventService) ListForViewer(ctx context.Context, viewerTier domain.Tier, filter string) *EventListing {
	views := domain.Classify(viewerTier, s.ListEvents(ctx))

	listing := &EventListing{Events: views}
	if t, ok := domain.ResolveFilter(viewerTier, filter); ok {
		listing.Filter = t
		listing.Filtered = true
		listing.Events = domain.FilterByTier(views, t)
	}
	return listing
}
