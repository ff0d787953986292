package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"personalizer/internal/langadvisor"
	"personalizer/internal/models"
	"personalizer/internal/prefmemory"
	"personalizer/internal/repository"
	"personalizer/internal/voicemodel"
)

// StyleDirective is what the generation step consumes before writing a
// caption: the user's voice profile and preference snapshot, plus consistency
// scoring when the caller supplies a freshly analyzed vector.
type StyleDirective struct {
	Profile          *models.VoiceProfile          `json:"profile"`
	Preferences      *models.UserPreferenceProfile `json:"preferences,omitempty"`
	ConsistencyScore *float64                      `json:"consistency_score,omitempty"`
	Recommendations  []models.VoiceRecommendation  `json:"recommendations,omitempty"`
}

// Engine composes the three personalization components behind the API the
// generation step calls.
type Engine struct {
	voice    *voicemodel.VoiceModel
	memory   *prefmemory.Memory
	advisor  *langadvisor.Advisor
	prefRepo repository.PreferenceRepository
	postRepo repository.PostRepository
	logger   *zap.Logger
}

// NewEngine creates the personalization engine.
func NewEngine(
	voice *voicemodel.VoiceModel,
	memory *prefmemory.Memory,
	advisor *langadvisor.Advisor,
	prefRepo repository.PreferenceRepository,
	postRepo repository.PostRepository,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		voice:    voice,
		memory:   memory,
		advisor:  advisor,
		prefRepo: prefRepo,
		postRepo: postRepo,
		logger:   logger,
	}
}

// GetStyleDirective assembles the style inputs for one generation request.
// When analyzed is non-nil the directive also carries the consistency score
// against the stored profile and any divergence recommendations.
func (e *Engine) GetStyleDirective(userID string, analyzed *models.VoiceVector) (*StyleDirective, error) {
	profile, err := e.voice.Profile(userID)
	if err != nil {
		return nil, err
	}

	prefs, err := e.prefRepo.GetUserPreferences(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user preferences: %w", err)
	}

	directive := &StyleDirective{Profile: profile, Preferences: prefs}
	if analyzed != nil {
		score := e.voice.ComputeConsistency(profile.Vector, *analyzed)
		directive.ConsistencyScore = &score
		directive.Recommendations = e.voice.Recommend(profile.Vector, *analyzed)
	}

	return directive, nil
}

// GetLanguageDirective decides the target language(s) for one request.
func (e *Engine) GetLanguageDirective(req models.LanguageRequest) (*models.LanguageRecommendation, error) {
	return e.advisor.RecommendLanguage(req)
}

// RecordFinalizedCaption feeds one user-finalized caption back into the
// engine: the preference snapshot is merged and persisted and the caption is
// saved as a post (both fatal on store failure), then the voice analysis
// bookkeeping runs best-effort. An oracle failure there is logged and must
// never surface to the caller.
func (e *Engine) RecordFinalizedCaption(ctx context.Context, userID, text string, c models.CaptionContext) (*models.UserPreferenceProfile, error) {
	snapshot, err := e.memory.LearnFromCaption(userID, text, c)
	if err != nil {
		return nil, fmt.Errorf("failed to learn from caption: %w", err)
	}

	if err := e.prefRepo.UpsertUserPreferences(userID, snapshot); err != nil {
		return nil, fmt.Errorf("failed to store user preferences: %w", err)
	}

	post := &models.Post{UserID: userID, Caption: text}
	if c.Language != "" {
		lang := c.Language
		post.Language = &lang
	}
	if err := e.postRepo.SavePost(post); err != nil {
		return nil, fmt.Errorf("failed to save post: %w", err)
	}

	contentType := c.ContentType
	if contentType == "" {
		contentType = "caption"
	}
	if err := e.voice.AnalyzeAndRecord(ctx, userID, text, contentType, c.Language); err != nil {
		e.logger.Warn("Best-effort voice analysis failed",
			zap.String("user_id", userID),
			zap.Error(err))
	}

	return snapshot, nil
}

// RecordFeedback appends one feedback entry to the user's trail.
func (e *Engine) RecordFeedback(userID string, fb *models.FeedbackRecord) error {
	return e.voice.RecordFeedback(userID, fb)
}

// UpsertVoiceProfile merges explicit dimension values into the user's profile.
func (e *Engine) UpsertVoiceProfile(userID string, partial map[string]float64) (*models.VoiceProfile, error) {
	return e.voice.UpsertProfile(userID, partial)
}

// RefineVoice triggers a refinement run for the user.
func (e *Engine) RefineVoice(ctx context.Context, userID string) error {
	return e.voice.Refine(ctx, userID)
}
