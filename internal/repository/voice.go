package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"personalizer/internal/models"
)

type VoiceProfileRepository interface {
	GetVoiceProfile(userID string) (*models.VoiceProfile, error)
	UpsertVoiceProfile(userID string, vec models.VoiceVector) (*models.VoiceProfile, error)
	AppendContentAnalysis(rec *models.ContentAnalysisRecord) error
	AppendFeedback(rec *models.FeedbackRecord) error
	AppendTrainingSession(rec *models.TrainingSessionRecord) error
	GetContentAnalysisHistory(userID string, limit int) ([]*models.ContentAnalysisRecord, error)
	GetFeedbackHistory(userID string, limit int) ([]*models.FeedbackRecord, error)
}

type voiceProfileRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewVoiceProfileRepository(db *sqlx.DB, logger *zap.Logger) VoiceProfileRepository {
	return &voiceProfileRepository{db: db, logger: logger}
}

const voiceProfileColumns = `user_id, profile_name, formality, humor, enthusiasm, professionalism,
	creativity, emotional_tone, confidence, warmth, is_active, created_at, updated_at`

func (r *voiceProfileRepository) scanProfile(row *sqlx.Row) (*models.VoiceProfile, error) {
	p := &models.VoiceProfile{}
	err := row.Scan(&p.UserID, &p.ProfileName,
		&p.Vector.Formality, &p.Vector.Humor, &p.Vector.Enthusiasm, &p.Vector.Professionalism,
		&p.Vector.Creativity, &p.Vector.EmotionalTone, &p.Vector.Confidence, &p.Vector.Warmth,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *voiceProfileRepository) GetVoiceProfile(userID string) (*models.VoiceProfile, error) {
	query := `SELECT ` + voiceProfileColumns + ` FROM voice_profiles WHERE user_id = $1 AND is_active = TRUE`
	profile, err := r.scanProfile(r.db.QueryRowx(query, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

func (r *voiceProfileRepository) UpsertVoiceProfile(userID string, vec models.VoiceVector) (*models.VoiceProfile, error) {
	query := `INSERT INTO voice_profiles (user_id, profile_name, formality, humor, enthusiasm, professionalism,
	            creativity, emotional_tone, confidence, warmth, is_active, created_at, updated_at)
	          VALUES ($1, 'default', $2, $3, $4, $5, $6, $7, $8, $9, TRUE, NOW(), NOW())
	          ON CONFLICT (user_id) DO UPDATE SET
	            formality = EXCLUDED.formality,
	            humor = EXCLUDED.humor,
	            enthusiasm = EXCLUDED.enthusiasm,
	            professionalism = EXCLUDED.professionalism,
	            creativity = EXCLUDED.creativity,
	            emotional_tone = EXCLUDED.emotional_tone,
	            confidence = EXCLUDED.confidence,
	            warmth = EXCLUDED.warmth,
	            is_active = TRUE,
	            updated_at = NOW()
	          RETURNING ` + voiceProfileColumns
	profile, err := r.scanProfile(r.db.QueryRowx(query, userID,
		vec.Formality, vec.Humor, vec.Enthusiasm, vec.Professionalism,
		vec.Creativity, vec.EmotionalTone, vec.Confidence, vec.Warmth))
	if err != nil {
		r.logger.Error("Failed to upsert voice profile", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return profile, nil
}

func (r *voiceProfileRepository) AppendContentAnalysis(rec *models.ContentAnalysisRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO content_analysis (id, user_id, content_type, excerpt, formality, humor, enthusiasm,
	            professionalism, creativity, emotional_tone, confidence_dim, warmth, analysis_confidence, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.db.Exec(query, rec.ID, rec.UserID, rec.ContentType, rec.Excerpt,
		rec.Vector.Formality, rec.Vector.Humor, rec.Vector.Enthusiasm, rec.Vector.Professionalism,
		rec.Vector.Creativity, rec.Vector.EmotionalTone, rec.Vector.Confidence, rec.Vector.Warmth,
		rec.Confidence, rec.CreatedAt)
	return err
}

func (r *voiceProfileRepository) AppendFeedback(rec *models.FeedbackRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	var expected [8]*float64
	if rec.Expected != nil {
		for i, dim := range models.DimensionOrder {
			val := rec.Expected.Get(dim)
			expected[i] = &val
		}
	}

	query := `INSERT INTO feedback (id, user_id, generated_content_id, content_type, feedback_type, comment,
	            expected_formality, expected_humor, expected_enthusiasm, expected_professionalism,
	            expected_creativity, expected_emotional_tone, expected_confidence, expected_warmth, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.db.Exec(query, rec.ID, rec.UserID, rec.GeneratedContentID, rec.ContentType, rec.FeedbackType,
		rec.Comment, expected[0], expected[1], expected[2], expected[3], expected[4], expected[5],
		expected[6], expected[7], rec.CreatedAt)
	return err
}

func (r *voiceProfileRepository) AppendTrainingSession(rec *models.TrainingSessionRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO training_sessions (id, user_id, training_type, samples_used, accuracy_score, duration_seconds, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Exec(query, rec.ID, rec.UserID, rec.TrainingType, rec.SamplesUsed,
		rec.AccuracyScore, rec.DurationSeconds, rec.CreatedAt)
	return err
}

func (r *voiceProfileRepository) GetContentAnalysisHistory(userID string, limit int) ([]*models.ContentAnalysisRecord, error) {
	query := `SELECT id, user_id, content_type, excerpt, formality, humor, enthusiasm, professionalism,
	            creativity, emotional_tone, confidence_dim, warmth, analysis_confidence, created_at
	          FROM content_analysis WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.Queryx(query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.ContentAnalysisRecord
	for rows.Next() {
		rec := &models.ContentAnalysisRecord{}
		err := rows.Scan(&rec.ID, &rec.UserID, &rec.ContentType, &rec.Excerpt,
			&rec.Vector.Formality, &rec.Vector.Humor, &rec.Vector.Enthusiasm, &rec.Vector.Professionalism,
			&rec.Vector.Creativity, &rec.Vector.EmotionalTone, &rec.Vector.Confidence, &rec.Vector.Warmth,
			&rec.Confidence, &rec.CreatedAt)
		if err != nil {
			r.logger.Error("Failed to scan content analysis record", zap.Error(err))
			continue
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *voiceProfileRepository) GetFeedbackHistory(userID string, limit int) ([]*models.FeedbackRecord, error) {
	query := `SELECT id, user_id, generated_content_id, content_type, feedback_type, comment,
	            expected_formality, expected_humor, expected_enthusiasm, expected_professionalism,
	            expected_creativity, expected_emotional_tone, expected_confidence, expected_warmth, created_at
	          FROM feedback WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.Queryx(query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.FeedbackRecord
	for rows.Next() {
		rec := &models.FeedbackRecord{}
		var expected [8]sql.NullFloat64
		err := rows.Scan(&rec.ID, &rec.UserID, &rec.GeneratedContentID, &rec.ContentType, &rec.FeedbackType,
			&rec.Comment, &expected[0], &expected[1], &expected[2], &expected[3], &expected[4],
			&expected[5], &expected[6], &expected[7], &rec.CreatedAt)
		if err != nil {
			r.logger.Error("Failed to scan feedback record", zap.Error(err))
			continue
		}

		if expected[0].Valid {
			vec := models.VoiceVector{}
			for i, dim := range models.DimensionOrder {
				vec.Set(dim, expected[i].Float64)
			}
			rec.Expected = &vec
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}
