package domain

import "time"

// Viewer is the authenticated user whose tier decides what is visible
type Viewer struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	Tier      Tier   `json:"tier"`
}

// TierChange is published after a viewer's tier is persisted
type TierChange struct {
	ID           string    `json:"id"`
	ViewerID     string    `json:"viewer_id"`
	PreviousTier Tier      `json:"previous_tier"`
	NewTier      Tier      `json:"new_tier"`
	ChangedAt    time.Time `json:"changed_at"`
}
