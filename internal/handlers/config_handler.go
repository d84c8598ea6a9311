package handlers

import (
	"context"
	"net/http"

	"chapter-quiz-service/internal/models"
	"chapter-quiz-service/internal/service"

	"github.com/gin-gonic/gin"
)

type ConfigHandler struct {
	Service *service.ConfigService
}

func NewConfigHandler(s *service.ConfigService) *ConfigHandler {
	return &ConfigHandler{Service: s}
}

// GetConfig returns the chapter's active config; 404 when none is authored
// (the session engine falls back to the documented default on its own).
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	cfg, err := h.Service.Resolve(context.Background(), c.Param("chapterId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// PutConfig creates or replaces the chapter's config.
func (h *ConfigHandler) PutConfig(c *gin.Context) {
	var cfg models.QuizConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cfg.ChapterID = c.Param("chapterId")

	if err := h.Service.Put(context.Background(), &cfg); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}
