package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/tier-events/internal/dto"
	"github.com/prohmpiriya/tier-events/internal/service"
	"github.com/prohmpiriya/tier-events/pkg/logger"
	"github.com/prohmpiriya/tier-events/pkg/response"
	"go.uber.org/zap"
)

// TierHandler handles tier updates
type TierHandler struct {
	viewerService service.ViewerService
}

// NewTierHandler creates a new TierHandler
func NewTierHandler(viewerService service.ViewerService) *TierHandler {
	return &TierHandler{viewerService: viewerService}
}

// UpdateTier handles POST /api/update-tier
func (h *TierHandler) UpdateTier(c *gin.Context) {
	var req dto.UpdateTierRequest
	// an unreadable body is a failed update, not a missing field
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("unreadable tier update body", zap.Error(err))
		response.InternalError(c, dto.MsgUpdateFailed, err)
		return
	}

	req.Normalize()
	if valid, msg := req.Validate(); !valid {
		response.BadRequest(c, msg)
		return
	}

	if err := h.viewerService.UpdateTier(c.Request.Context(), req.UserID, req.Tier); err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			response.BadRequest(c, dto.MsgMissingFields)
		case errors.Is(err, service.ErrInvalidTier):
			response.BadRequest(c, dto.MsgInvalidTier)
		default:
			logger.Error("tier update failed",
				zap.String("viewer_id", req.UserID),
				zap.String("tier", req.Tier),
				zap.Error(err),
			)
			response.InternalError(c, dto.MsgUpdateFailed, err)
		}
		return
	}

	response.OK(c)
}
