package dto

import (
	"testing"
	"time"

	"github.com/prohmpiriya/tier-events/internal/domain"
)

func TestUpdateTierRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     UpdateTierRequest
		want    bool
		wantMsg string
	}{
		{"valid request", UpdateTierRequest{UserID: "u1", Tier: "gold"}, true, ""},
		{"missing user", UpdateTierRequest{Tier: "gold"}, false, MsgMissingFields},
		{"missing tier", UpdateTierRequest{UserID: "u1"}, false, MsgMissingFields},
		{"empty body", UpdateTierRequest{}, false, MsgMissingFields},
		{"whitespace only", UpdateTierRequest{UserID: "  ", Tier: "\t"}, false, MsgMissingFields},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Normalize()
			got, msg := tt.req.Validate()
			if got != tt.want {
				t.Errorf("Validate() got = %v, want %v", got, tt.want)
			}
			if msg != tt.wantMsg {
				t.Errorf("Validate() msg = %v, want %v", msg, tt.wantMsg)
			}
		})
	}
}

func TestToEventResponses(t *testing.T) {
	date := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	views := []domain.EventView{
		{Event: domain.Event{ID: "e1", Title: "Open Day", EventDate: date, Tier: domain.TierFree}},
		{Event: domain.Event{ID: "e2", Title: "Gold Gala", Tier: domain.TierGold}, Locked: true},
	}

	got := ToEventResponses(views)
	if len(got) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(got))
	}
	if got[0].Tier != "free" || got[0].Locked || !got[0].EventDate.Equal(date) {
		t.Errorf("unexpected first response: %+v", got[0])
	}
	if got[1].Tier != "gold" || !got[1].Locked {
		t.Errorf("unexpected second response: %+v", got[1])
	}

	if empty := ToEventResponses(nil); empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", empty)
	}
}

func TestToViewerResponse(t *testing.T) {
	got := ToViewerResponse(&domain.Viewer{ID: "u1", FirstName: "Ada", Tier: domain.TierPlatinum})
	if got.Tier != "platinum" || got.FirstName != "Ada" || got.ID != "u1" {
		t.Errorf("unexpected response: %+v", got)
	}
}
