package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"tutor-service/internal/models"
	"tutor-service/internal/service"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	Service *service.SessionService
}

func NewSessionHandler(s *service.SessionService) *SessionHandler {
	return &SessionHandler{Service: s}
}

// CreateSession starts a new learning session for a subject.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req struct {
		Subject string `json:"subject" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"code":    "INVALID_REQUEST",
			"details": err.Error(),
		})
		return
	}

	userID := c.GetHeader("X-User-ID")
	session, err := h.Service.CreateSession(context.Background(), userID, req.Subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create session",
			"code":    "INTERNAL",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session_id": session.ID,
		"subject":    session.Subject,
		"level":      session.Level,
	})
}

// GetSession returns the raw session document.
func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.Service.GetSession(context.Background(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// SubmitDiagnostic grades a diagnostic batch and assigns the level.
func (h *SessionHandler) SubmitDiagnostic(c *gin.Context) {
	var req struct {
		Answers []models.AnswerItem `json:"answers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"code":    "INVALID_REQUEST",
			"details": err.Error(),
		})
		return
	}

	result, err := h.Service.SubmitDiagnostic(context.Background(), c.Param("id"), req.Answers)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SubmitExercise grades an exercise batch and updates mastery/level.
func (h *SessionHandler) SubmitExercise(c *gin.Context) {
	var req struct {
		Answers          []models.AnswerItem `json:"answers"`
		TotalTimeSeconds float64             `json:"total_time_seconds"`
		PerQuestionTimes []float64           `json:"per_question_times"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"code":    "INVALID_REQUEST",
			"details": err.Error(),
		})
		return
	}

	result, err := h.Service.SubmitExercise(context.Background(), c.Param("id"), req.Answers, req.TotalTimeSeconds, req.PerQuestionTimes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetProgress returns the dashboard projection. An optional
// comma-separated "topics" query feeds the next-topic suggestion.
func (h *SessionHandler) GetProgress(c *gin.Context) {
	var topics []string
	if raw := c.Query("topics"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				topics = append(topics, t)
			}
		}
	}

	report, err := h.Service.Progress(context.Background(), c.Param("id"), topics)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetWeaknessProfile returns the detailed per-topic/type diagnostics.
func (h *SessionHandler) GetWeaknessProfile(c *gin.Context) {
	report, err := h.Service.WeaknessProfile(context.Background(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// respondError maps core errors onto HTTP statuses. Anything outside
// the taxonomy is a 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrUnknownSession):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Session not found",
			"code":  "UNKNOWN_SESSION",
		})
	case errors.Is(err, models.ErrMalformedItem):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Malformed answer item",
			"code":    "MALFORMED_ITEM",
			"details": err.Error(),
		})
	case errors.Is(err, models.ErrInvalidBatch):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid batch",
			"code":    "INVALID_BATCH",
			"details": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal error",
			"code":    "INTERNAL",
			"details": err.Error(),
		})
	}
}
