package voicemodel

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"personalizer/internal/config"
	"personalizer/internal/models"
	"personalizer/internal/oracle"
	"personalizer/internal/repository"
)

// Human-readable labels used in recommendation messages.
var dimensionLabels = map[string]string{
	models.DimFormality:       "formality",
	models.DimHumor:           "humor",
	models.DimEnthusiasm:      "enthusiasm",
	models.DimProfessionalism: "professionalism",
	models.DimCreativity:      "creativity",
	models.DimEmotionalTone:   "emotional tone",
	models.DimConfidence:      "confidence",
	models.DimWarmth:          "warmth",
}

// VoiceModel owns the per-user voice vector: upserts, consistency scoring,
// divergence recommendations and feedback-driven refinement.
type VoiceModel struct {
	repo   repository.VoiceProfileRepository
	oracle oracle.Oracle
	cfg    config.EngineConfig
	logger *zap.Logger
}

// NewVoiceModel creates a new voice model.
func NewVoiceModel(repo repository.VoiceProfileRepository, orc oracle.Oracle, cfg config.EngineConfig, logger *zap.Logger) *VoiceModel {
	return &VoiceModel{repo: repo, oracle: orc, cfg: cfg, logger: logger}
}

// UpsertProfile merges the supplied dimensions into the user's active profile.
// Every supplied value is clamped to [0,1]; dimensions absent from the input
// keep their stored value, or start at the 0.5 neutral default when no profile
// exists yet.
func (m *VoiceModel) UpsertProfile(userID string, partial map[string]float64) (*models.VoiceProfile, error) {
	existing, err := m.repo.GetVoiceProfile(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load voice profile: %w", err)
	}

	vec := models.NeutralVector()
	if existing != nil {
		vec = existing.Vector
	}

	for _, dim := range models.DimensionOrder {
		if val, ok := partial[dim]; ok {
			vec.Set(dim, clamp01(val))
		}
	}

	return m.repo.UpsertVoiceProfile(userID, vec)
}

// Profile returns the user's active profile, or a neutral, unpersisted
// default when none has been created yet.
func (m *VoiceModel) Profile(userID string) (*models.VoiceProfile, error) {
	profile, err := m.repo.GetVoiceProfile(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load voice profile: %w", err)
	}
	if profile == nil {
		profile = &models.VoiceProfile{
			UserID:      userID,
			ProfileName: "default",
			Vector:      models.NeutralVector(),
			IsActive:    true,
		}
	}
	return profile, nil
}

// ComputeConsistency scores how closely an analyzed sample matches the stored
// profile: the mean over all dimensions of max(0, 1-|delta|), rounded to two
// decimal places. Identical vectors score exactly 1.0.
func (m *VoiceModel) ComputeConsistency(profile, analyzed models.VoiceVector) float64 {
	var sum float64
	for _, dim := range models.DimensionOrder {
		score := 1 - math.Abs(profile.Get(dim)-analyzed.Get(dim))
		if score < 0 {
			score = 0
		}
		sum += score
	}
	return round2(sum / float64(len(models.DimensionOrder)))
}

// Recommend lists the dimensions where the analyzed sample diverges from the
// profile by strictly more than the configured threshold. Entries follow the
// canonical dimension order, not delta magnitude; a delta exactly at the
// threshold produces no entry.
func (m *VoiceModel) Recommend(profile, analyzed models.VoiceVector) []models.VoiceRecommendation {
	recs := make([]models.VoiceRecommendation, 0)

	for _, dim := range models.DimensionOrder {
		delta := analyzed.Get(dim) - profile.Get(dim)
		// Round before comparing so float64 noise (0.5-0.8 is not exactly
		// -0.3) cannot push a boundary delta over the threshold.
		absDelta := round2(math.Abs(delta))
		if absDelta <= m.cfg.RecommendThreshold {
			continue
		}

		direction := "less"
		if delta > 0 {
			direction = "more"
		}

		pct := int(math.Round(absDelta * 100))
		recs = append(recs, models.VoiceRecommendation{
			Dimension:    dim,
			DeltaPercent: pct,
			Direction:    direction,
			Message:      fmt.Sprintf("Recent content shows %d%% %s %s than your profile", pct, direction, dimensionLabels[dim]),
		})
	}

	return recs
}

// Refine re-derives the user's profile from accumulated analysis history and
// feedback via the oracle. With fewer analysis records than the configured
// minimum the call is a no-op. Oracle failures are logged and swallowed: the
// profile stays as it was and no training record is written.
func (m *VoiceModel) Refine(ctx context.Context, userID string) error {
	history, err := m.repo.GetContentAnalysisHistory(userID, m.cfg.AnalysisHistoryLimit)
	if err != nil {
		return fmt.Errorf("failed to load analysis history: %w", err)
	}

	if len(history) < m.cfg.MinRefineSamples {
		m.logger.Debug("Skipping refinement, not enough analyzed samples",
			zap.String("user_id", userID),
			zap.Int("samples", len(history)),
			zap.Int("required", m.cfg.MinRefineSamples))
		return nil
	}

	feedback, err := m.repo.GetFeedbackHistory(userID, m.cfg.FeedbackHistoryLimit)
	if err != nil {
		return fmt.Errorf("failed to load feedback history: %w", err)
	}

	current := models.NeutralVector()
	if profile, err := m.repo.GetVoiceProfile(userID); err != nil {
		return fmt.Errorf("failed to load voice profile: %w", err)
	} else if profile != nil {
		current = profile.Vector
	}

	started := time.Now()
	refined, err := m.oracle.RefineVoice(ctx, history, feedback, current)
	if err != nil {
		m.logger.Warn("Voice refinement failed, keeping current profile",
			zap.String("user_id", userID),
			zap.Int("samples", len(history)),
			zap.Error(err))
		return nil
	}

	vec := refined.Vector
	for _, dim := range models.DimensionOrder {
		vec.Set(dim, clamp01(vec.Get(dim)))
	}

	if _, err := m.repo.UpsertVoiceProfile(userID, vec); err != nil {
		return fmt.Errorf("failed to store refined profile: %w", err)
	}

	// Heuristic proxy for accuracy: small profile movement reads as high
	// confidence, floored at 0.7.
	drift := math.Abs(vec.Formality-current.Formality) +
		math.Abs(vec.Humor-current.Humor) +
		math.Abs(vec.Enthusiasm-current.Enthusiasm)
	accuracy := math.Max(0.7, 1-drift)

	session := &models.TrainingSessionRecord{
		UserID:          userID,
		TrainingType:    "voice_refinement",
		SamplesUsed:     len(history),
		AccuracyScore:   accuracy,
		DurationSeconds: int(math.Round(time.Since(started).Seconds())),
	}
	if err := m.repo.AppendTrainingSession(session); err != nil {
		return fmt.Errorf("failed to record training session: %w", err)
	}

	m.logger.Info("Voice profile refined",
		zap.String("user_id", userID),
		zap.Int("samples", len(history)),
		zap.Float64("accuracy", accuracy))

	return nil
}

// AnalyzeAndRecord scores one finalized text via the oracle and appends the
// result to the user's analysis history.
func (m *VoiceModel) AnalyzeAndRecord(ctx context.Context, userID, text, contentType, language string) error {
	analysis, err := m.oracle.AnalyzeVoice(ctx, text, contentType, language)
	if err != nil {
		return fmt.Errorf("voice analysis failed: %w", err)
	}

	rec := &models.ContentAnalysisRecord{
		UserID:      userID,
		ContentType: contentType,
		Excerpt:     excerpt(text, 280),
		Vector:      analysis.Vector,
		Confidence:  analysis.Confidence,
	}
	return m.repo.AppendContentAnalysis(rec)
}

// RecordFeedback appends one feedback entry to the user's trail.
func (m *VoiceModel) RecordFeedback(userID string, fb *models.FeedbackRecord) error {
	fb.UserID = userID
	return m.repo.AppendFeedback(fb)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func excerpt(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
