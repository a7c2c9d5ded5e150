package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linguabridge/learning-service/internal/services"
	"github.com/linguabridge/learning-service/internal/utils"
)

type HandlerManager struct {
	contentHandler  *ContentHandler
	sessionHandler  *SessionHandler
	progressHandler *ProgressHandler
}

func NewHandlerManager(
	contentService services.ContentService,
	sessionService services.SessionService,
	progressService services.ProgressService,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		contentHandler:  NewContentHandler(contentService, logger),
		sessionHandler:  NewSessionHandler(sessionService, logger),
		progressHandler: NewProgressHandler(progressService, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "learning-service",
		})
	})

	v1 := router.Group("/api/v1")
	{
		// Curriculum routes
		content := v1.Group("/content")
		{
			content.GET("/units", hm.contentHandler.ListUnits)
			content.GET("/units/:id", hm.contentHandler.GetUnit)
			content.GET("/units/:id/subtopics", hm.contentHandler.ListSubtopics)
			content.POST("/import", hm.contentHandler.Import)
		}

		// Exercise session routes
		sessions := v1.Group("/sessions")
		{
			sessions.POST("/start", hm.sessionHandler.Start)
			sessions.GET("/:id", hm.sessionHandler.Get)
			sessions.POST("/:id/answer", hm.sessionHandler.SetAnswer)
			sessions.POST("/:id/check", hm.sessionHandler.Check)
			sessions.POST("/:id/assign", hm.sessionHandler.Assign)
			sessions.POST("/:id/unassign", hm.sessionHandler.Unassign)
			sessions.POST("/:id/next", hm.sessionHandler.Next)
			sessions.POST("/:id/previous", hm.sessionHandler.Previous)
			sessions.POST("/:id/try-again", hm.sessionHandler.TryAgain)
			sessions.POST("/:id/finish", hm.sessionHandler.Finish)
		}

		// Progress routes
		progress := v1.Group("/progress")
		{
			progress.GET("/:user_id", hm.progressHandler.Get)
			progress.GET("/:user_id/recent", hm.progressHandler.Recent)
			progress.POST("/:user_id/init", hm.progressHandler.Init)
		}
	}
}
