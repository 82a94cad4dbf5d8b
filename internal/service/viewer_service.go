package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/tier-events/internal/domain"
	"github.com/prohmpiriya/tier-events/internal/repository"
	"github.com/prohmpiriya/tier-events/pkg/logger"
	"github.com/prohmpiriya/tier-events/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Common errors
var (
	ErrMissingFields  = errors.New("missing userId or tier")
	ErrInvalidTier    = errors.New("invalid tier")
	ErrViewerNotFound = errors.New("viewer not found")
)

// viewerService implements ViewerService
type viewerService struct {
	viewerRepo repository.ViewerRepository
	publisher  TierChangePublisher
	now        func() time.Time
}

// NewViewerService creates a new ViewerService. A nil publisher disables the change feed.
func NewViewerService(viewerRepo repository.ViewerRepository, publisher TierChangePublisher) ViewerService {
	if publisher == nil {
		publisher = NoopTierChangePublisher{}
	}
	return &viewerService{
		viewerRepo: viewerRepo,
		publisher:  publisher,
		now:        time.Now,
	}
}

// GetViewer always reads through to the identity store
func (s *viewerService) GetViewer(ctx context.Context, id string) (*domain.Viewer, error) {
	if id == "" {
		return nil, ErrViewerNotFound
	}
	viewer, err := s.viewerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load viewer: %w", err)
	}
	if viewer == nil {
		return nil, ErrViewerNotFound
	}
	return viewer, nil
}

// UpdateTier validates the request, persists the tier and publishes the change.
// Publishing is best effort and never fails the update.
func (s *viewerService) UpdateTier(ctx context.Context, viewerID, tierName string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.viewer.update_tier")
	defer span.End()

	viewerID = strings.TrimSpace(viewerID)
	tierName = strings.TrimSpace(tierName)
	if viewerID == "" || tierName == "" {
		return ErrMissingFields
	}

	tier, err := domain.ParseTier(tierName)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTier, tierName)
	}
	span.SetAttributes(
		attribute.String("viewer.id", viewerID),
		attribute.String("tier.new", tier.String()),
	)

	previous, err := s.viewerRepo.UpdateTier(ctx, viewerID, tier)
	if err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, domain.ErrViewerNotFound) {
			return fmt.Errorf("%w: %s", ErrViewerNotFound, viewerID)
		}
		return fmt.Errorf("failed to update tier: %w", err)
	}

	change := &domain.TierChange{
		ID:           uuid.New().String(),
		ViewerID:     viewerID,
		PreviousTier: previous,
		NewTier:      tier,
		ChangedAt:    s.now().UTC(),
	}
	if err := s.publisher.PublishTierChange(ctx, change); err != nil {
		logger.Error("failed to publish tier change",
			zap.String("viewer_id", viewerID),
			zap.String("change_id", change.ID),
			zap.Error(err),
		)
	}

	logger.Info("tier updated",
		zap.String("viewer_id", viewerID),
		zap.String("previous_tier", previous.String()),
		zap.String("new_tier", tier.String()),
	)
	return nil
}
