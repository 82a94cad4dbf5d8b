package repository

import (
	"context"
	"fmt"

	"github.com/prohmpiriya/tier-events/internal/domain"
	"github.com/prohmpiriya/tier-events/pkg/database"
	"github.com/prohmpiriya/tier-events/pkg/logger"
	"go.uber.org/zap"
)

// PostgresEventRepository implements EventRepository using PostgreSQL
type PostgresEventRepository struct {
	db database.Querier
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(db database.Querier) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

// eventColumns uses COALESCE for nullable text columns to avoid scan errors
const eventColumns = `id, title,
	COALESCE(description, '') as description,
	event_date,
	COALESCE(image_url, '') as image_url,
	COALESCE(tier, '') as tier`

// ListAll returns every event ordered by event date. Rows whose tier is not a
// known tier name are skipped.
func (r *PostgresEventRepository) ListAll(ctx context.Context) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY event_date ASC, id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		event := &domain.Event{}
		var tierName string
		if err := rows.Scan(
			&event.ID,
			&event.Title,
			&event.Description,
			&event.EventDate,
			&event.ImageURL,
			&tierName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		tier, err := domain.ParseTier(tierName)
		if err != nil {
			logger.Warn("skipping event with unknown tier",
				zap.String("event_id", event.ID),
				zap.String("tier", tierName),
			)
			continue
		}
		event.Tier = tier
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	return events, nil
}
