package handlers

import (
	"github.com/archivus/masterdocs/internal/domain/services"
	"github.com/archivus/masterdocs/pkg/logger"
	"github.com/gin-gonic/gin"
)

// ActivityHandler exposes the activity ledger
type ActivityHandler struct {
	*BaseHandler
	activityService *services.ActivityService
}

func NewActivityHandler(activityService *services.ActivityService, config *HandlerConfig, log *logger.Logger) *ActivityHandler {
	return &ActivityHandler{
		BaseHandler:     NewBaseHandler(config, log),
		activityService: activityService,
	}
}

// RegisterRoutes registers the activity routes
func (h *ActivityHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/activity-logs", h.ListActivity)
}

// ListActivity returns the ledger newest first
// @Summary List activity
// @Description Admins see every entry, other users only their own
// @Tags activity
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} services.ActivityPage
// @Router /api/v1/activity-logs [get]
func (h *ActivityHandler) ListActivity(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	page, err := h.activityService.List(c.Request.Context(), userCtx.Actor(),
		getIntParam(c, "offset", 0),
		getIntParam(c, "limit", services.DefaultActivityLimit))
	if err != nil {
		h.RespondServiceError(c, err, "Failed to list activity")
		return
	}

	h.RespondSuccess(c, page)
}
