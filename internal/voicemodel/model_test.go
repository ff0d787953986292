package voicemodel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"personalizer/internal/config"
	"personalizer/internal/models"
	"personalizer/internal/oracle"
)

type stubVoiceRepo struct {
	profile   *models.VoiceProfile
	analysis  []*models.ContentAnalysisRecord
	feedback  []*models.FeedbackRecord
	sessions  []*models.TrainingSessionRecord
	upserts   int
	getErr    error
	upsertErr error
}

func (s *stubVoiceRepo) GetVoiceProfile(userID string) (*models.VoiceProfile, error) {
	return s.profile, s.getErr
}

func (s *stubVoiceRepo) UpsertVoiceProfile(userID string, vec models.VoiceVector) (*models.VoiceProfile, error) {
	if s.upsertErr != nil {
		return nil, s.upsertErr
	}
	s.upserts++
	s.profile = &models.VoiceProfile{UserID: userID, ProfileName: "default", Vector: vec, IsActive: true}
	return s.profile, nil
}

func (s *stubVoiceRepo) AppendContentAnalysis(rec *models.ContentAnalysisRecord) error {
	s.analysis = append(s.analysis, rec)
	return nil
}

func (s *stubVoiceRepo) AppendFeedback(rec *models.FeedbackRecord) error {
	s.feedback = append(s.feedback, rec)
	return nil
}

func (s *stubVoiceRepo) AppendTrainingSession(rec *models.TrainingSessionRecord) error {
	s.sessions = append(s.sessions, rec)
	return nil
}

func (s *stubVoiceRepo) GetContentAnalysisHistory(userID string, limit int) ([]*models.ContentAnalysisRecord, error) {
	if len(s.analysis) > limit {
		return s.analysis[:limit], nil
	}
	return s.analysis, nil
}

func (s *stubVoiceRepo) GetFeedbackHistory(userID string, limit int) ([]*models.FeedbackRecord, error) {
	if len(s.feedback) > limit {
		return s.feedback[:limit], nil
	}
	return s.feedback, nil
}

type stubOracle struct {
	refined     models.VoiceVector
	analysis    models.VoiceVector
	confidence  float64
	err         error
	refineCalls int
}

func (s *stubOracle) AnalyzeVoice(ctx context.Context, text, contentType, language string) (*oracle.VoiceAnalysis, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &oracle.VoiceAnalysis{Vector: s.analysis, Confidence: s.confidence}, nil
}

func (s *stubOracle) RefineVoice(ctx context.Context, history []*models.ContentAnalysisRecord, feedback []*models.FeedbackRecord, current models.VoiceVector) (*oracle.RefinedVoice, error) {
	s.refineCalls++
	if s.err != nil {
		return nil, s.err
	}
	return &oracle.RefinedVoice{Vector: s.refined, Reasoning: "test"}, nil
}

func newTestModel(repo *stubVoiceRepo, orc oracle.Oracle) *VoiceModel {
	return NewVoiceModel(repo, orc, config.DefaultEngineConfig(), zap.NewNop())
}

func vectorWith(dim string, val float64) models.VoiceVector {
	v := models.NeutralVector()
	v.Set(dim, val)
	return v
}

func TestComputeConsistencyIdentity(t *testing.T) {
	m := newTestModel(&stubVoiceRepo{}, &stubOracle{})

	p := vectorWith(models.DimFormality, 0.8)
	assert.Equal(t, 1.0, m.ComputeConsistency(p, p))
}

func TestComputeConsistencyConcrete(t *testing.T) {
	m := newTestModel(&stubVoiceRepo{}, &stubOracle{})

	p := vectorWith(models.DimFormality, 0.8)
	a := vectorWith(models.DimFormality, 0.5)

	// Per-dimension scores 0.7 and seven 1.0s: mean 0.9625 rounds to 0.96.
	assert.Equal(t, 0.96, m.ComputeConsistency(p, a))
}

func TestComputeConsistencyRange(t *testing.T) {
	m := newTestModel(&stubVoiceRepo{}, &stubOracle{})

	cases := []struct{ p, a models.VoiceVector }{
		{models.VoiceVector{}, models.NeutralVector()},
		{vectorWith(models.DimHumor, 1), vectorWith(models.DimHumor, 0)},
		{models.NeutralVector(), models.VoiceVector{Formality: 1, Humor: 1, Enthusiasm: 1, Professionalism: 1, Creativity: 1, EmotionalTone: 1, Confidence: 1, Warmth: 1}},
	}
	for _, tc := range cases {
		score := m.ComputeConsistency(tc.p, tc.a)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}

func TestRecommendBoundaryExclusive(t *testing.T) {
	m := newTestModel(&stubVoiceRepo{}, &stubOracle{})

	p := vectorWith(models.DimFormality, 0.8)
	a := vectorWith(models.DimFormality, 0.5)

	// Delta is exactly the 0.3 threshold, which must not trigger even
	// though 0.5-0.8 carries float64 noise beyond 0.3.
	assert.Empty(t, m.Recommend(p, a))

	// Just past the boundary does trigger.
	a = vectorWith(models.DimFormality, 0.49)
	recs := m.Recommend(p, a)
	require.Len(t, recs, 1)
	assert.Equal(t, 31, recs[0].DeltaPercent)
}

func TestRecommendSingleDivergence(t *testing.T) {
	m := newTestModel(&stubVoiceRepo{}, &stubOracle{})

	p := vectorWith(models.DimFormality, 0.8)
	a := vectorWith(models.DimFormality, 0.1)

	recs := m.Recommend(p, a)
	require.Len(t, recs, 1)
	assert.Equal(t, models.DimFormality, recs[0].Dimension)
	assert.Equal(t, "less", recs[0].Direction)
	assert.Equal(t, 70, recs[0].DeltaPercent)
}

func TestRecommendFollowsDimensionOrder(t *testing.T) {
	m := newTestModel(&stubVoiceRepo{}, &stubOracle{})

	p := models.NeutralVector()
	a := models.NeutralVector()
	a.Warmth = 0.0   // delta 0.5
	a.Humor = 0.99   // delta 0.49, smaller but earlier in canonical order

	recs := m.Recommend(p, a)
	require.Len(t, recs, 2)
	assert.Equal(t, models.DimHumor, recs[0].Dimension)
	assert.Equal(t, "more", recs[0].Direction)
	assert.Equal(t, models.DimWarmth, recs[1].Dimension)
}

func TestUpsertProfileDefaultsAndClamping(t *testing.T) {
	repo := &stubVoiceRepo{}
	m := newTestModel(repo, &stubOracle{})

	profile, err := m.UpsertProfile("u1", map[string]float64{
		models.DimFormality: 1.7,
		models.DimHumor:     -0.4,
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, profile.Vector.Formality)
	assert.Equal(t, 0.0, profile.Vector.Humor)
	assert.Equal(t, 0.5, profile.Vector.Warmth) // untouched dimensions default
}

func TestUpsertProfileRetainsExisting(t *testing.T) {
	repo := &stubVoiceRepo{profile: &models.VoiceProfile{
		UserID: "u1",
		Vector: vectorWith(models.DimCreativity, 0.9),
	}}
	m := newTestModel(repo, &stubOracle{})

	profile, err := m.UpsertProfile("u1", map[string]float64{models.DimHumor: 0.2})
	require.NoError(t, err)

	assert.Equal(t, 0.9, profile.Vector.Creativity)
	assert.Equal(t, 0.2, profile.Vector.Humor)
}

func analysisRecords(n int) []*models.ContentAnalysisRecord {
	records := make([]*models.ContentAnalysisRecord, n)
	for i := range records {
		records[i] = &models.ContentAnalysisRecord{
			UserID:      "u1",
			ContentType: "caption",
			Vector:      models.NeutralVector(),
			Confidence:  0.8,
		}
	}
	return records
}

func TestRefineNoOpBelowMinimumSamples(t *testing.T) {
	repo := &stubVoiceRepo{analysis: analysisRecords(4)}
	orc := &stubOracle{refined: vectorWith(models.DimFormality, 0.9)}
	m := newTestModel(repo, orc)

	require.NoError(t, m.Refine(context.Background(), "u1"))
	assert.Zero(t, orc.refineCalls)
	assert.Zero(t, repo.upserts)
	assert.Empty(t, repo.sessions)
}

func TestRefineUpsertsAndRecordsSession(t *testing.T) {
	repo := &stubVoiceRepo{analysis: analysisRecords(6)}
	orc := &stubOracle{refined: models.VoiceVector{
		Formality: 1.4, Humor: -0.2, Enthusiasm: 0.6, Professionalism: 0.5,
		Creativity: 0.5, EmotionalTone: 0.5, Confidence: 0.5, Warmth: 0.5,
	}}
	m := newTestModel(repo, orc)

	require.NoError(t, m.Refine(context.Background(), "u1"))

	require.NotNil(t, repo.profile)
	assert.Equal(t, 1.0, repo.profile.Vector.Formality) // clamped
	assert.Equal(t, 0.0, repo.profile.Vector.Humor)     // clamped

	require.Len(t, repo.sessions, 1)
	session := repo.sessions[0]
	assert.Equal(t, "voice_refinement", session.TrainingType)
	assert.Equal(t, 6, session.SamplesUsed)
	// Drift 0.5+0.5+0.1 pushes the heuristic to its 0.7 floor.
	assert.Equal(t, 0.7, session.AccuracyScore)
}

func TestRefineIdempotentWithDeterministicOracle(t *testing.T) {
	repo := &stubVoiceRepo{analysis: analysisRecords(8)}
	orc := &stubOracle{refined: vectorWith(models.DimEnthusiasm, 0.8)}
	m := newTestModel(repo, orc)

	require.NoError(t, m.Refine(context.Background(), "u1"))
	first := repo.profile.Vector
	require.NoError(t, m.Refine(context.Background(), "u1"))

	assert.Equal(t, first, repo.profile.Vector)
}

func TestRefineSwallowsOracleFailure(t *testing.T) {
	existing := &models.VoiceProfile{UserID: "u1", Vector: vectorWith(models.DimWarmth, 0.9)}
	repo := &stubVoiceRepo{profile: existing, analysis: analysisRecords(6)}
	orc := &stubOracle{err: errors.New("quota exceeded")}
	m := newTestModel(repo, orc)

	require.NoError(t, m.Refine(context.Background(), "u1"))
	assert.Zero(t, repo.upserts)
	assert.Empty(t, repo.sessions)
	assert.Equal(t, existing, repo.profile)
}

func TestAnalyzeAndRecordAppendsHistory(t *testing.T) {
	repo := &stubVoiceRepo{}
	orc := &stubOracle{analysis: vectorWith(models.DimHumor, 0.7), confidence: 0.85}
	m := newTestModel(repo, orc)

	require.NoError(t, m.AnalyzeAndRecord(context.Background(), "u1", "Big day at the lake!", "caption", "en"))
	require.Len(t, repo.analysis, 1)
	assert.Equal(t, 0.7, repo.analysis[0].Vector.Humor)
	assert.Equal(t, 0.85, repo.analysis[0].Confidence)
	assert.Equal(t, "caption", repo.analysis[0].ContentType)
}
