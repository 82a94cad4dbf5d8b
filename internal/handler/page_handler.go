package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/tier-events/internal/domain"
	"github.com/prohmpiriya/tier-events/internal/service"
	"github.com/prohmpiriya/tier-events/internal/web"
	"github.com/prohmpiriya/tier-events/pkg/logger"
	"github.com/prohmpiriya/tier-events/pkg/middleware"
	"go.uber.org/zap"
)

// PageHandler renders the event gallery
type PageHandler struct {
	eventService  service.EventService
	viewerService service.ViewerService
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(eventService service.EventService, viewerService service.ViewerService) *PageHandler {
	return &PageHandler{
		eventService:  eventService,
		viewerService: viewerService,
	}
}

type tierOption struct {
	Value    string
	Label    string
	Selected bool
}

type filterLink struct {
	Label  string
	Href   string
	Active bool
}

// pageState is everything one render of the gallery needs. It is built per
// request and discarded afterwards.
type pageState struct {
	Viewer      *domain.Viewer
	Events      []domain.EventView
	Filter      domain.Tier
	Filtered    bool
	TierOptions []tierOption
	FilterLinks []filterLink
}

type messagePage struct {
	Message string
}

func newPageState(viewer *domain.Viewer, listing *service.EventListing) *pageState {
	state := &pageState{
		Viewer:   viewer,
		Events:   listing.Events,
		Filter:   listing.Filter,
		Filtered: listing.Filtered,
	}

	for _, t := range domain.AllTiers() {
		state.TierOptions = append(state.TierOptions, tierOption{
			Value:    t.String(),
			Label:    web.Title(t.String()),
			Selected: t == viewer.Tier,
		})
	}

	state.FilterLinks = append(state.FilterLinks, filterLink{Label: "All", Href: "/", Active: !listing.Filtered})
	for _, t := range domain.TiersUpTo(viewer.Tier) {
		state.FilterLinks = append(state.FilterLinks, filterLink{
			Label:  web.Title(t.String()),
			Href:   "/?tier=" + url.QueryEscape(t.String()),
			Active: listing.Filtered && listing.Filter == t,
		})
	}
	return state
}

// Gallery handles GET / - greeting, tier selector, filters and the event grid
func (h *PageHandler) Gallery(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.HTML(http.StatusUnauthorized, "signin.html", messagePage{})
		return
	}

	viewer, err := h.viewerService.GetViewer(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrViewerNotFound) {
			c.HTML(http.StatusUnauthorized, "signin.html", messagePage{Message: "Your session does not match a known account."})
			return
		}
		_ = c.Error(err)
		logger.Error("failed to load viewer", zap.String("viewer_id", userID), zap.Error(err))
		c.HTML(http.StatusInternalServerError, "error.html", messagePage{Message: "Could not load your profile. Please try again."})
		return
	}

	listing := h.eventService.ListForViewer(c.Request.Context(), viewer.Tier, c.Query("tier"))
	c.HTML(http.StatusOK, "gallery.html", newPageState(viewer, listing))
}
