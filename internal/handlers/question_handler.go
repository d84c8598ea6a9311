package handlers

import (
	"context"
	"net/http"

	"chapter-quiz-service/internal/models"
	"chapter-quiz-service/internal/service"

	"github.com/gin-gonic/gin"
)

type QuestionHandler struct {
	Service *service.QuestionService
}

func NewQuestionHandler(s *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{Service: s}
}

func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	question, err := h.Service.GetQuestion(context.Background(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
		return
	}
	c.JSON(http.StatusOK, question)
}

// ListQuestions lists a chapter's active questions, optionally one difficulty.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	chapterID := c.Query("chapter_id")
	if chapterID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chapter_id is required"})
		return
	}
	difficulty := models.Difficulty(c.Query("difficulty"))

	questions, err := h.Service.ListQuestions(context.Background(), chapterID, difficulty)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"questions": questions,
		"count":     len(questions),
	})
}

func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var question models.Question
	if err := c.ShouldBindJSON(&question); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Service.CreateQuestion(context.Background(), &question); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Failed to create question",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusCreated, question)
}

func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	var question models.Question
	if err := c.ShouldBindJSON(&question); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Service.UpdateQuestion(context.Background(), c.Param("id"), &question); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Failed to update question",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, question)
}

func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	if err := h.Service.DeleteQuestion(context.Background(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Question deactivated"})
}
