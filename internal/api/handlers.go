package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/spacesedan/storyguard/internal/audit"
	"github.com/spacesedan/storyguard/internal/db"
	"github.com/spacesedan/storyguard/internal/models"
	"github.com/spacesedan/storyguard/internal/moderation"
)

type CommentRequest struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

type RelevanceRequest struct {
	Content string `json:"content"`
}

type CommentResponse struct {
	Comment    models.Comment          `json:"comment"`
	Validation models.ValidationResult `json:"validation"`
}

type Handler struct {
	service *moderation.Service
}

func NewHandler(service *moderation.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateComment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	comment, result, err := h.service.SubmitComment(c.Request.Context(), c.Param("storyId"), req.Author, req.Content)
	if err != nil {
		var rejection *moderation.RejectionError
		if errors.As(err, &rejection) {
			c.JSON(http.StatusBadRequest, gin.H{"error": rejection.Reason})
			return
		}
		slog.Error("[API] Failed to create comment",
			slog.String("story_id", c.Param("storyId")),
			slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	c.JSON(http.StatusCreated, CommentResponse{Comment: comment, Validation: result})
}

func (h *Handler) CheckRelevance(c *gin.Context) {
	var req RelevanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := h.service.CheckRelevance(c.Request.Context(), c.Param("storyId"), req.Content)
	if err != nil {
		if errors.Is(err, db.ErrStoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Story not found"})
			return
		}
		slog.Error("[API] Relevance check failed",
			slog.String("story_id", c.Param("storyId")),
			slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Relevance check failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) AuditComments(c *gin.Context) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be an integer"})
		return
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
		return
	}

	var threshold *float64
	if raw := c.Query("threshold"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || !audit.ValidThreshold(value) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "threshold must be a number between 0 and 1"})
			return
		}
		threshold = &value
	}

	result, err := h.service.AuditComments(c.Request.Context(), page, limit, threshold)
	if err != nil {
		slog.Error("[API] Audit failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Audit failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) Keywords(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Dictionaries())
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
