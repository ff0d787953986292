package repository

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"personalizer/internal/models"
)

type PreferenceRepository interface {
	GetUserPreferences(userID string) (*models.UserPreferenceProfile, error)
	UpsertUserPreferences(userID string, snapshot *models.UserPreferenceProfile) error
}

type preferenceRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewPreferenceRepository(db *sqlx.DB, logger *zap.Logger) PreferenceRepository {
	return &preferenceRepository{db: db, logger: logger}
}

func (r *preferenceRepository) GetUserPreferences(userID string) (*models.UserPreferenceProfile, error) {
	query := `SELECT user_id, preferred_tone, emoji_level, common_phrases, disliked_phrases, caption_length,
	            language_preference, ends_with_emoji, starts_with_quote, contains_line_breaks,
	            first_sentence_length, last_updated
	          FROM user_preferences WHERE user_id = $1`

	p := &models.UserPreferenceProfile{}
	var common, disliked pq.StringArray
	err := r.db.QueryRowx(query, userID).Scan(&p.UserID, &p.PreferredTone, &p.EmojiLevel,
		&common, &disliked, &p.CaptionLength, &p.LanguagePreference,
		&p.Structure.EndsWithEmoji, &p.Structure.StartsWithQuote, &p.Structure.ContainsLineBreaks,
		&p.Structure.FirstSentenceLength, &p.LastUpdated)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	p.CommonPhrases = []string(common)
	p.DislikedPhrases = []string(disliked)
	return p, nil
}

func (r *preferenceRepository) UpsertUserPreferences(userID string, snapshot *models.UserPreferenceProfile) error {
	if snapshot.LastUpdated.IsZero() {
		snapshot.LastUpdated = time.Now().UTC()
	}
	query := `INSERT INTO user_preferences (user_id, preferred_tone, emoji_level, common_phrases, disliked_phrases,
	            caption_length, language_preference, ends_with_emoji, starts_with_quote, contains_line_breaks,
	            first_sentence_length, last_updated)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          ON CONFLICT (user_id) DO UPDATE SET
	            preferred_tone = EXCLUDED.preferred_tone,
	            emoji_level = EXCLUDED.emoji_level,
	            common_phrases = EXCLUDED.common_phrases,
	            disliked_phrases = EXCLUDED.disliked_phrases,
	            caption_length = EXCLUDED.caption_length,
	            language_preference = EXCLUDED.language_preference,
	            ends_with_emoji = EXCLUDED.ends_with_emoji,
	            starts_with_quote = EXCLUDED.starts_with_quote,
	            contains_line_breaks = EXCLUDED.contains_line_breaks,
	            first_sentence_length = EXCLUDED.first_sentence_length,
	            last_updated = EXCLUDED.last_updated`
	_, err := r.db.Exec(query, userID, snapshot.PreferredTone, snapshot.EmojiLevel,
		pq.Array(snapshot.CommonPhrases), pq.Array(snapshot.DislikedPhrases), snapshot.CaptionLength,
		snapshot.LanguagePreference, snapshot.Structure.EndsWithEmoji, snapshot.Structure.StartsWithQuote,
		snapshot.Structure.ContainsLineBreaks, snapshot.Structure.FirstSentenceLength, snapshot.LastUpdated)
	if err != nil {
		r.logger.Error("Failed to upsert user preferences", zap.String("user_id", userID), zap.Error(err))
	}
	return err
}
