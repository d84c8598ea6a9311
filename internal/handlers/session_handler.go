package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"chapter-quiz-service/internal/grading"
	"chapter-quiz-service/internal/models"
	"chapter-quiz-service/internal/repository"
	"chapter-quiz-service/internal/service"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	Service *service.SessionService
}

func NewSessionHandler(s *service.SessionService) *SessionHandler {
	return &SessionHandler{Service: s}
}

// StartQuiz creates a new attempt for the calling user.
func (h *SessionHandler) StartQuiz(c *gin.Context) {
	var req struct {
		ChapterID string `json:"chapter_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID is required"})
		return
	}

	session, err := h.Service.StartQuiz(context.Background(), userID, req.ChapterID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session": session.View(),
		"message": "Quiz started",
	})
}

// SubmitAnswer records one answer; the latest submission per question wins.
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	sessionID := c.Param("id")

	var req struct {
		QuestionID string                 `json:"question_id" binding:"required"`
		Answer     models.SubmittedAnswer `json:"answer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid answer format",
			"details": err.Error(),
		})
		return
	}

	session, err := h.Service.SubmitAnswer(context.Background(), sessionID, req.QuestionID, req.Answer)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":  session.View(),
		"answered": len(session.Answers),
	})
}

// CompleteQuiz finalizes the attempt and returns the scored session.
func (h *SessionHandler) CompleteQuiz(c *gin.Context) {
	sessionID := c.Param("id")

	session, err := h.Service.CompleteQuiz(context.Background(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": session.View(),
		"message": "Quiz completed",
	})
}

// GetSession returns the session, lazily expiring it when over its limit.
func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.Service.GetSession(context.Background(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session.View()})
}

// GetHistory lists the caller's finished attempts for a chapter.
func (h *SessionHandler) GetHistory(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	chapterID := c.Query("chapter_id")
	if userID == "" || chapterID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chapter_id and X-User-ID are required"})
		return
	}

	sessions, err := h.Service.GetHistory(context.Background(), userID, chapterID)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]models.SessionView, 0, len(sessions))
	for i := range sessions {
		views = append(views, sessions[i].View())
	}
	c.JSON(http.StatusOK, gin.H{
		"attempts":   views,
		"count":      len(views),
		"chapter_id": chapterID,
	})
}

func (h *SessionHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":   "chapter-quiz-service",
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrConfigNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrUnknownQuestion),
		errors.Is(err, service.ErrInvalidConfig):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrAttemptLimitExceeded),
		errors.Is(err, service.ErrSessionAlreadyInProgress),
		errors.Is(err, service.ErrSessionNotActive),
		errors.Is(err, service.ErrSessionAlreadyFinished),
		errors.Is(err, repository.ErrSessionConflict):
		status = http.StatusConflict
	case errors.Is(err, grading.ErrUnsupportedQuestionType):
		// Authored content the engine cannot score: data integrity problem,
		// not a client mistake.
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
