package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"personalizer/internal/config"
	"personalizer/internal/langadvisor"
	"personalizer/internal/models"
	"personalizer/internal/oracle"
	"personalizer/internal/prefmemory"
	"personalizer/internal/voicemodel"
)

type memStore struct {
	voiceProfile *models.VoiceProfile
	analysis     []*models.ContentAnalysisRecord
	feedback     []*models.FeedbackRecord
	sessions     []*models.TrainingSessionRecord
	prefs        *models.UserPreferenceProfile
	posts        []*models.Post
	prefWrites   int
}

func (s *memStore) GetVoiceProfile(userID string) (*models.VoiceProfile, error) {
	return s.voiceProfile, nil
}

func (s *memStore) UpsertVoiceProfile(userID string, vec models.VoiceVector) (*models.VoiceProfile, error) {
	s.voiceProfile = &models.VoiceProfile{UserID: userID, Vector: vec, IsActive: true}
	return s.voiceProfile, nil
}

func (s *memStore) AppendContentAnalysis(rec *models.ContentAnalysisRecord) error {
	s.analysis = append(s.analysis, rec)
	return nil
}

func (s *memStore) AppendFeedback(rec *models.FeedbackRecord) error {
	s.feedback = append(s.feedback, rec)
	return nil
}

func (s *memStore) AppendTrainingSession(rec *models.TrainingSessionRecord) error {
	s.sessions = append(s.sessions, rec)
	return nil
}

func (s *memStore) GetContentAnalysisHistory(userID string, limit int) ([]*models.ContentAnalysisRecord, error) {
	return s.analysis, nil
}

func (s *memStore) GetFeedbackHistory(userID string, limit int) ([]*models.FeedbackRecord, error) {
	return s.feedback, nil
}

func (s *memStore) GetUserPreferences(userID string) (*models.UserPreferenceProfile, error) {
	return s.prefs, nil
}

func (s *memStore) UpsertUserPreferences(userID string, snapshot *models.UserPreferenceProfile) error {
	s.prefWrites++
	s.prefs = snapshot
	return nil
}

func (s *memStore) SavePost(post *models.Post) error {
	s.posts = append(s.posts, post)
	return nil
}

func (s *memStore) GetRecentPosts(userID string, limit int) ([]*models.Post, error) {
	return s.posts, nil
}

type fixedOracle struct {
	vector models.VoiceVector
	err    error
}

func (o *fixedOracle) AnalyzeVoice(ctx context.Context, text, contentType, language string) (*oracle.VoiceAnalysis, error) {
	if o.err != nil {
		return nil, o.err
	}
	return &oracle.VoiceAnalysis{Vector: o.vector, Confidence: 0.9}, nil
}

func (o *fixedOracle) RefineVoice(ctx context.Context, history []*models.ContentAnalysisRecord, feedback []*models.FeedbackRecord, current models.VoiceVector) (*oracle.RefinedVoice, error) {
	if o.err != nil {
		return nil, o.err
	}
	return &oracle.RefinedVoice{Vector: o.vector}, nil
}

func newTestEngine(store *memStore, orc oracle.Oracle) *Engine {
	cfg := config.DefaultEngineConfig()
	logger := zap.NewNop()
	voice := voicemodel.NewVoiceModel(store, orc, cfg, logger)
	memory := prefmemory.NewMemory(store, cfg, logger)
	advisor := langadvisor.NewAdvisor(store, cfg, logger)
	return NewEngine(voice, memory, advisor, store, store, logger)
}

func TestGetStyleDirectiveNeutralDefault(t *testing.T) {
	store := &memStore{}
	eng := newTestEngine(store, &fixedOracle{})

	directive, err := eng.GetStyleDirective("u1", nil)
	require.NoError(t, err)
	assert.Equal(t, models.NeutralVector(), directive.Profile.Vector)
	assert.Nil(t, directive.ConsistencyScore)
	assert.Nil(t, directive.Preferences)
}

func TestGetStyleDirectiveWithAnalyzedVector(t *testing.T) {
	store := &memStore{}
	eng := newTestEngine(store, &fixedOracle{})

	analyzed := models.NeutralVector()
	analyzed.Formality = 0.1

	directive, err := eng.GetStyleDirective("u1", &analyzed)
	require.NoError(t, err)
	require.NotNil(t, directive.ConsistencyScore)
	assert.Equal(t, 0.95, *directive.ConsistencyScore)
	require.Len(t, directive.Recommendations, 1)
	assert.Equal(t, models.DimFormality, directive.Recommendations[0].Dimension)
}

func TestRecordFinalizedCaptionPersistsAndAnalyzes(t *testing.T) {
	store := &memStore{}
	orc := &fixedOracle{vector: models.NeutralVector()}
	eng := newTestEngine(store, orc)

	snapshot, err := eng.RecordFinalizedCaption(context.Background(), "u1",
		"Golden sunset over the harbor 🌅", models.CaptionContext{ContentType: "caption", Language: "en"})
	require.NoError(t, err)
	require.NotNil(t, snapshot)

	assert.Equal(t, 1, store.prefWrites)
	require.Len(t, store.posts, 1)
	require.NotNil(t, store.posts[0].Language)
	assert.Equal(t, "en", *store.posts[0].Language)
	require.Len(t, store.analysis, 1)
	assert.Equal(t, "caption", store.analysis[0].ContentType)
}

func TestRecordFinalizedCaptionSurvivesOracleFailure(t *testing.T) {
	store := &memStore{}
	orc := &fixedOracle{err: errors.New("timeout")}
	eng := newTestEngine(store, orc)

	snapshot, err := eng.RecordFinalizedCaption(context.Background(), "u1",
		"quiet morning", models.CaptionContext{})
	require.NoError(t, err, "oracle failure must not surface during learning")
	require.NotNil(t, snapshot)

	assert.Equal(t, 1, store.prefWrites)
	assert.Len(t, store.posts, 1)
	assert.Empty(t, store.analysis)
}

func TestGetLanguageDirectiveUsesSavedPosts(t *testing.T) {
	store := &memStore{}
	eng := newTestEngine(store, &fixedOracle{vector: models.NeutralVector()})

	for i := 0; i < 4; i++ {
		_, err := eng.RecordFinalizedCaption(context.Background(), "u1",
			"", models.CaptionContext{Language: "hi"})
		require.NoError(t, err)
	}

	rec, err := eng.GetLanguageDirective(models.LanguageRequest{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "hi", rec.Primary)
	assert.Equal(t, models.ReasonAudienceMajority, rec.Reason)
}

func TestRecordFeedbackAppends(t *testing.T) {
	store := &memStore{}
	eng := newTestEngine(store, &fixedOracle{})

	err := eng.RecordFeedback("u1", &models.FeedbackRecord{ContentType: "caption", FeedbackType: "positive"})
	require.NoError(t, err)
	require.Len(t, store.feedback, 1)
	assert.Equal(t, "u1", store.feedback[0].UserID)
}
