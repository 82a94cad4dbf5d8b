package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/tier-events/internal/dto"
	"github.com/prohmpiriya/tier-events/internal/service"
	"github.com/prohmpiriya/tier-events/pkg/middleware"
	"github.com/prohmpiriya/tier-events/pkg/response"
)

// ViewerHandler exposes the authenticated viewer and their events as JSON
type ViewerHandler struct {
	viewerService service.ViewerService
	eventService  service.EventService
}

// NewViewerHandler creates a new ViewerHandler
func NewViewerHandler(viewerService service.ViewerService, eventService service.EventService) *ViewerHandler {
	return &ViewerHandler{
		viewerService: viewerService,
		eventService:  eventService,
	}
}

// Me handles GET /api/me
func (h *ViewerHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	viewer, err := h.viewerService.GetViewer(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrViewerNotFound) {
			response.NotFound(c, "Viewer not found")
			return
		}
		response.InternalError(c, "Failed to get viewer", err)
		return
	}

	response.Success(c, dto.ToViewerResponse(viewer))
}

// Events handles GET /api/events - every event with its lock state for the viewer
func (h *ViewerHandler) Events(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var filter dto.EventListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	viewer, err := h.viewerService.GetViewer(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrViewerNotFound) {
			response.NotFound(c, "Viewer not found")
			return
		}
		response.InternalError(c, "Failed to get viewer", err)
		return
	}

	listing := h.eventService.ListForViewer(c.Request.Context(), viewer.Tier, filter.Tier)
	response.Success(c, dto.ToEventResponses(listing.Events))
}
