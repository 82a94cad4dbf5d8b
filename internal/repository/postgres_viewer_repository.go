package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/prohmpiriya/tier-events/internal/domain"
	"github.com/prohmpiriya/tier-events/pkg/database"
	"github.com/prohmpiriya/tier-events/pkg/logger"
	"go.uber.org/zap"
)

// PostgresViewerRepository implements ViewerRepository on the viewers table.
// The tier lives in public_metadata->>'tier'; a viewer without one is free.
type PostgresViewerRepository struct {
	db database.Querier
}

// NewPostgresViewerRepository creates a new PostgresViewerRepository
func NewPostgresViewerRepository(db database.Querier) *PostgresViewerRepository {
	return &PostgresViewerRepository{db: db}
}

// GetByID retrieves a viewer by ID
func (r *PostgresViewerRepository) GetByID(ctx context.Context, id string) (*domain.Viewer, error) {
	query := `
		SELECT id, COALESCE(first_name, ''), COALESCE(public_metadata->>'tier', '')
		FROM viewers
		WHERE id = $1
	`
	viewer := &domain.Viewer{}
	var tierName string
	err := r.db.QueryRow(ctx, query, id).Scan(&viewer.ID, &viewer.FirstName, &tierName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	viewer.Tier = storedTier(viewer.ID, tierName)
	return viewer, nil
}

// UpdateTier merges {"tier": tier} into public_metadata and returns the previous tier.
// ErrViewerNotFound is returned when no viewer has the given ID.
func (r *PostgresViewerRepository) UpdateTier(ctx context.Context, id string, tier domain.Tier) (domain.Tier, error) {
	query := `
		WITH prev AS (
			SELECT id, COALESCE(public_metadata->>'tier', '') AS tier
			FROM viewers
			WHERE id = $1
			FOR UPDATE
		)
		UPDATE viewers v
		SET public_metadata = COALESCE(v.public_metadata, '{}'::jsonb) || jsonb_build_object('tier', $2::text),
			updated_at = NOW()
		FROM prev
		WHERE v.id = prev.id
		RETURNING prev.tier
	`
	var previous string
	err := r.db.QueryRow(ctx, query, id, tier.String()).Scan(&previous)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TierFree, domain.ErrViewerNotFound
		}
		return domain.TierFree, fmt.Errorf("failed to update tier: %w", err)
	}
	return storedTier(id, previous), nil
}

func storedTier(viewerID, name string) domain.Tier {
	if name == "" {
		return domain.TierFree
	}
	tier, err := domain.ParseTier(name)
	if err != nil {
		logger.Warn("viewer has unknown stored tier, treating as free",
			zap.String("viewer_id", viewerID),
			zap.String("tier", name),
		)
		return domain.TierFree
	}
	return tier
}
