package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"personalizer/internal/engine"
	"personalizer/internal/models"
)

type PersonalizationHandler interface {
	GetStyleDirective(c *gin.Context)
	GetLanguageDirective(c *gin.Context)
	RecordFinalizedCaption(c *gin.Context)
	RecordFeedback(c *gin.Context)
	UpsertVoiceProfile(c *gin.Context)
	RefineVoice(c *gin.Context)
}

type personalizationHandler struct {
	engine *engine.Engine
	logger *zap.Logger
}

func NewPersonalizationHandler(eng *engine.Engine, logger *zap.Logger) PersonalizationHandler {
	return &personalizationHandler{engine: eng, logger: logger}
}

// StyleDirectiveRequest is the body for POST /api/personalization/style.
type StyleDirectiveRequest struct {
	UserID   string              `json:"user_id" binding:"required"`
	Analyzed *models.VoiceVector `json:"analyzed,omitempty"`
}

// FinalizedCaptionRequest is the body for POST /api/personalization/captions/finalized.
type FinalizedCaptionRequest struct {
	UserID  string                `json:"user_id" binding:"required"`
	Text    string                `json:"text" binding:"required"`
	Context models.CaptionContext `json:"context"`
}

// FeedbackRequest is the body for POST /api/personalization/feedback.
type FeedbackRequest struct {
	UserID             string              `json:"user_id" binding:"required"`
	GeneratedContentID *string             `json:"generated_content_id,omitempty"`
	ContentType        string              `json:"content_type" binding:"required"`
	FeedbackType       string              `json:"feedback_type" binding:"required"`
	Comment            *string             `json:"comment,omitempty"`
	Expected           *models.VoiceVector `json:"expected,omitempty"`
}

// VoiceProfileRequest is the body for PUT /api/personalization/voice.
type VoiceProfileRequest struct {
	UserID     string             `json:"user_id" binding:"required"`
	Dimensions map[string]float64 `json:"dimensions" binding:"required"`
}

// RefineRequest is the body for POST /api/personalization/voice/refine.
type RefineRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// GetStyleDirective handles POST /api/personalization/style
func (h *personalizationHandler) GetStyleDirective(c *gin.Context) {
	var req StyleDirectiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	directive, err := h.engine.GetStyleDirective(req.UserID, req.Analyzed)
	if err != nil {
		h.logger.Error("Failed to build style directive", zap.String("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build style directive"})
		return
	}

	c.JSON(http.StatusOK, directive)
}

// GetLanguageDirective handles POST /api/personalization/language
func (h *personalizationHandler) GetLanguageDirective(c *gin.Context) {
	var req models.LanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	rec, err := h.engine.GetLanguageDirective(req)
	if err != nil {
		h.logger.Error("Failed to recommend language", zap.String("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to recommend language"})
		return
	}

	c.JSON(http.StatusOK, rec)
}

// RecordFinalizedCaption handles POST /api/personalization/captions/finalized
func (h *personalizationHandler) RecordFinalizedCaption(c *gin.Context) {
	var req FinalizedCaptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := h.engine.RecordFinalizedCaption(c.Request.Context(), req.UserID, req.Text, req.Context)
	if err != nil {
		h.logger.Error("Failed to record finalized caption", zap.String("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record finalized caption"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// RecordFeedback handles POST /api/personalization/feedback
func (h *personalizationHandler) RecordFeedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fb := &models.FeedbackRecord{
		GeneratedContentID: req.GeneratedContentID,
		ContentType:        req.ContentType,
		FeedbackType:       req.FeedbackType,
		Comment:            req.Comment,
		Expected:           req.Expected,
	}
	if err := h.engine.RecordFeedback(req.UserID, fb); err != nil {
		h.logger.Error("Failed to record feedback", zap.String("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record feedback"})
		return
	}

	c.JSON(http.StatusCreated, fb)
}

// UpsertVoiceProfile handles PUT /api/personalization/voice
func (h *personalizationHandler) UpsertVoiceProfile(c *gin.Context) {
	var req VoiceProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.engine.UpsertVoiceProfile(req.UserID, req.Dimensions)
	if err != nil {
		h.logger.Error("Failed to upsert voice profile", zap.String("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upsert voice profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// RefineVoice handles POST /api/personalization/voice/refine
func (h *personalizationHandler) RefineVoice(c *gin.Context) {
	var req RefineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.engine.RefineVoice(c.Request.Context(), req.UserID); err != nil {
		h.logger.Error("Failed to refine voice profile", zap.String("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refine voice profile"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "refinement completed"})
}
