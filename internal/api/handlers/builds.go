package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stitts-dev/fanta-optimizer/internal/models"
	"github.com/stitts-dev/fanta-optimizer/internal/services"
	"github.com/stitts-dev/fanta-optimizer/pkg/utils"
)

type BuildsHandler struct {
	history *services.HistoryService
}

func NewBuildsHandler(history *services.HistoryService) *BuildsHandler {
	return &BuildsHandler{history: history}
}

// ListBuilds returns recent builds without their payloads
func (h *BuildsHandler) ListBuilds(c *gin.Context) {
	if h.history == nil {
		sendHistoryDisabled(c)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			utils.SendValidationError(c, "Invalid limit", "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, total, err := h.history.List(c.Request.Context(), limit)
	if err != nil {
		utils.SendInternalError(c, "Failed to list builds")
		return
	}

	summaries := make([]models.BuildSummary, len(records))
	for i := range records {
		summaries[i] = records[i].Summary()
	}
	utils.SendSuccessWithMeta(c, summaries, &utils.Meta{Limit: limit, Total: total})
}

// GetBuild returns one build with its request and result
func (h *BuildsHandler) GetBuild(c *gin.Context) {
	if h.history == nil {
		sendHistoryDisabled(c)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendValidationError(c, "Invalid build id", err.Error())
		return
	}

	record, err := h.history.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrBuildNotFound) {
			utils.SendNotFound(c, "Build not found")
			return
		}
		utils.SendInternalError(c, "Failed to fetch build")
		return
	}
	utils.SendSuccess(c, record)
}

func sendHistoryDisabled(c *gin.Context) {
	utils.SendUnavailable(c, "Build history is not configured")
}
