package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/linguabridge/learning-service/internal/services"
	"github.com/linguabridge/learning-service/internal/utils"
)

// ProgressHandler exposes the learner's stored progress.
type ProgressHandler struct {
	BaseHandler
	service services.ProgressService
}

func NewProgressHandler(service services.ProgressService, logger utils.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Get returns the progress documents for every unit.
// GET /api/v1/progress/:user_id
func (h *ProgressHandler) Get(c *gin.Context) {
	userID := ParseStringIDParam(c, "user_id")
	if userID == "" {
		return
	}

	docs, err := h.service.Snapshot(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": docs})
}

// Recent returns the most recently completed subtopics, newest first.
// GET /api/v1/progress/:user_id/recent?limit=5
func (h *ProgressHandler) Recent(c *gin.Context) {
	userID := ParseStringIDParam(c, "user_id")
	if userID == "" {
		return
	}

	limit := services.DefaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.RespondWithError(c, http.StatusBadRequest, "limit must be a positive integer", err)
			return
		}
		limit = parsed
	}

	recent, err := h.service.Recent(c.Request.Context(), userID, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recent": recent})
}

// Init seeds initial progress documents for a new learner.
// POST /api/v1/progress/:user_id/init
func (h *ProgressHandler) Init(c *gin.Context) {
	userID := ParseStringIDParam(c, "user_id")
	if userID == "" {
		return
	}

	if err := h.service.Init(c.Request.Context(), userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Initial progress seeded", "user_id", userID)
	h.RespondWithSuccess(c, http.StatusCreated, "Progress initialized", nil)
}
