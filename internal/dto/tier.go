package dto

import "strings"

// Client-facing messages for the tier update endpoint
const (
	MsgMissingFields = "Missing userId or tier"
	MsgInvalidTier   = "Invalid tier"
	MsgUpdateFailed  = "Failed to update tier"
)

// UpdateTierRequest is the body of POST /api/update-tier
type UpdateTierRequest struct {
	UserID string `json:"userId"`
	Tier   string `json:"tier"`
}

// Normalize trims surrounding whitespace from both fields
func (r *UpdateTierRequest) Normalize() {
	r.UserID = strings.TrimSpace(r.UserID)
	r.Tier = strings.TrimSpace(r.Tier)
}

// Validate checks that both fields are present
func (r *UpdateTierRequest) Validate() (bool, string) {
	if r.UserID == "" || r.Tier == "" {
		return false, MsgMissingFields
	}
	return true, ""
}
