package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linguabridge/learning-service/internal/services"
	"github.com/linguabridge/learning-service/internal/utils"
)

// ContentHandler exposes curriculum browsing and workbook import.
type ContentHandler struct {
	BaseHandler
	service services.ContentService
}

func NewContentHandler(service services.ContentService, logger utils.Logger) *ContentHandler {
	return &ContentHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ListUnits returns every unit with the learner's lock state.
// GET /api/v1/content/units?user_id=...
func (h *ContentHandler) ListUnits(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		h.RespondWithError(c, http.StatusBadRequest, "user_id query parameter is required", nil)
		return
	}

	units, err := h.service.ListUnits(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"units": units})
}

// GetUnit returns one unit with the learner's lock state.
// GET /api/v1/content/units/:id?user_id=...
func (h *ContentHandler) GetUnit(c *gin.Context) {
	unitID := ParseStringIDParam(c, "id")
	if unitID == "" {
		return
	}
	userID := c.Query("user_id")
	if userID == "" {
		h.RespondWithError(c, http.StatusBadRequest, "user_id query parameter is required", nil)
		return
	}

	unit, err := h.service.GetUnit(c.Request.Context(), unitID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, unit)
}

// ListSubtopics returns a unit's subtopics in authored order, with the
// learner's lock state and the grammar theory for each.
// GET /api/v1/content/units/:id/subtopics?user_id=...
func (h *ContentHandler) ListSubtopics(c *gin.Context) {
	unitID := ParseStringIDParam(c, "id")
	if unitID == "" {
		return
	}
	userID := c.Query("user_id")
	if userID == "" {
		h.RespondWithError(c, http.StatusBadRequest, "user_id query parameter is required", nil)
		return
	}

	unit, err := h.service.GetUnit(c.Request.Context(), unitID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subtopics": unit.Subtopics})
}

// Import accepts an xlsx workbook upload and merges it into the curriculum.
// POST /api/v1/content/import
func (h *ContentHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Workbook file is required", err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Cannot open uploaded file", err)
		return
	}
	defer file.Close()

	summary, err := h.service.Import(c.Request.Context(), file)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Curriculum imported",
		"file", fileHeader.Filename,
		"units", summary.ImportedUnits,
		"errors", summary.ErrorCount)
	h.RespondWithSuccess(c, http.StatusOK, "Import completed", summary)
}
