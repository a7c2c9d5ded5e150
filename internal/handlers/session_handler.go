package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linguabridge/learning-service/internal/services"
	"github.com/linguabridge/learning-service/internal/utils"
)

// SessionHandler exposes the exercise session state machine over HTTP.
type SessionHandler struct {
	BaseHandler
	service services.SessionService
}

func NewSessionHandler(service services.SessionService, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Start creates a session for an unlocked subtopic.
// POST /api/v1/sessions/start
func (h *SessionHandler) Start(c *gin.Context) {
	var req services.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	view, err := h.service.Start(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Session started", "session_id", view.ID, "user_id", req.UserID)
	c.JSON(http.StatusCreated, view)
}

// Get returns the current session state.
// GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	view, err := h.service.Get(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SetAnswer records an answer for the current question.
// POST /api/v1/sessions/:id/answer
func (h *SessionHandler) SetAnswer(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	var req services.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	view, err := h.service.SetAnswer(c.Request.Context(), sessionID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Check validates the current answer and returns the verdict with feedback.
// POST /api/v1/sessions/:id/check
func (h *SessionHandler) Check(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	result, err := h.service.Check(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Assign drops a draggable token into a blank.
// POST /api/v1/sessions/:id/assign
func (h *SessionHandler) Assign(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	var req services.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	view, err := h.service.Assign(c.Request.Context(), sessionID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Unassign returns the token in a blank to the pool.
// POST /api/v1/sessions/:id/unassign
func (h *SessionHandler) Unassign(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	var req services.UnassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	view, err := h.service.Unassign(c.Request.Context(), sessionID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Next advances to the next question or the results screen.
// POST /api/v1/sessions/:id/next
func (h *SessionHandler) Next(c *gin.Context) {
	h.navigate(c, h.service.Next)
}

// Previous steps back one question.
// POST /api/v1/sessions/:id/previous
func (h *SessionHandler) Previous(c *gin.Context) {
	h.navigate(c, h.service.Previous)
}

// TryAgain restarts the session from the results screen.
// POST /api/v1/sessions/:id/try-again
func (h *SessionHandler) TryAgain(c *gin.Context) {
	h.navigate(c, h.service.TryAgain)
}

// Finish completes the session and applies the score to progress.
// POST /api/v1/sessions/:id/finish
func (h *SessionHandler) Finish(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	resp, err := h.service.Finish(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Session finished",
		"session_id", sessionID,
		"score", resp.Summary.Percentage,
		"progress_saved", resp.ProgressSaved)
	c.JSON(http.StatusOK, resp)
}

func (h *SessionHandler) navigate(c *gin.Context, op func(ctx context.Context, sessionID string) (*services.SessionView, error)) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	view, err := op(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
