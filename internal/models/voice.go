package models

import "time"

// Voice vector dimension names. Order matters: recommendations are emitted
// in this order regardless of delta magnitude.
const (
	DimFormality       = "formality"
	DimHumor           = "humor"
	DimEnthusiasm      = "enthusiasm"
	DimProfessionalism = "professionalism"
	DimCreativity      = "creativity"
	DimEmotionalTone   = "emotionalTone"
	DimConfidence      = "confidence"
	DimWarmth          = "warmth"
)

// DimensionOrder is the canonical ordering of the eight voice dimensions.
var DimensionOrder = []string{
	DimFormality,
	DimHumor,
	DimEnthusiasm,
	DimProfessionalism,
	DimCreativity,
	DimEmotionalTone,
	DimConfidence,
	DimWarmth,
}

// VoiceVector holds the eight stylistic dimensions, each in [0,1].
type VoiceVector struct {
	Formality       float64 `db:"formality" json:"formality"`
	Humor           float64 `db:"humor" json:"humor"`
	Enthusiasm      float64 `db:"enthusiasm" json:"enthusiasm"`
	Professionalism float64 `db:"professionalism" json:"professionalism"`
	Creativity      float64 `db:"creativity" json:"creativity"`
	EmotionalTone   float64 `db:"emotional_tone" json:"emotionalTone"`
	Confidence      float64 `db:"confidence" json:"confidence"`
	Warmth          float64 `db:"warmth" json:"warmth"`
}

// NeutralVector returns a vector with every dimension at the 0.5 default.
func NeutralVector() VoiceVector {
	return VoiceVector{
		Formality:       0.5,
		Humor:           0.5,
		Enthusiasm:      0.5,
		Professionalism: 0.5,
		Creativity:      0.5,
		EmotionalTone:   0.5,
		Confidence:      0.5,
		Warmth:          0.5,
	}
}

// Get returns the named dimension's value. Unknown names return 0.
func (v VoiceVector) Get(dim string) float64 {
	switch dim {
	case DimFormality:
		return v.Formality
	case DimHumor:
		return v.Humor
	case DimEnthusiasm:
		return v.Enthusiasm
	case DimProfessionalism:
		return v.Professionalism
	case DimCreativity:
		return v.Creativity
	case DimEmotionalTone:
		return v.EmotionalTone
	case DimConfidence:
		return v.Confidence
	case DimWarmth:
		return v.Warmth
	}
	return 0
}

// Set assigns the named dimension. Unknown names are ignored.
func (v *VoiceVector) Set(dim string, val float64) {
	switch dim {
	case DimFormality:
		v.Formality = val
	case DimHumor:
		v.Humor = val
	case DimEnthusiasm:
		v.Enthusiasm = val
	case DimProfessionalism:
		v.Professionalism = val
	case DimCreativity:
		v.Creativity = val
	case DimEmotionalTone:
		v.EmotionalTone = val
	case DimConfidence:
		v.Confidence = val
	case DimWarmth:
		v.Warmth = val
	}
}

// VoiceProfile represents a row in the 'voice_profiles' table. Exactly one
// active profile exists per user.
type VoiceProfile struct {
	UserID      string      `db:"user_id" json:"user_id"`
	ProfileName string      `db:"profile_name" json:"profile_name"`
	Vector      VoiceVector `json:"vector"`
	IsActive    bool        `db:"is_active" json:"is_active"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// ContentAnalysisRecord is an immutable observation stored in the
// 'content_analysis' table. Content types: "caption", "hashtag",
// "rewritten_caption".
type ContentAnalysisRecord struct {
	ID          string      `db:"id" json:"id"`
	UserID      string      `db:"user_id" json:"user_id"`
	ContentType string      `db:"content_type" json:"content_type"`
	Excerpt     string      `db:"excerpt" json:"excerpt"`
	Vector      VoiceVector `json:"vector"`
	Confidence  float64     `db:"confidence" json:"confidence"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

// FeedbackRecord is an append-only feedback entry in the 'feedback' table.
// FeedbackType is one of "positive", "negative", "neutral".
type FeedbackRecord struct {
	ID                 string       `db:"id" json:"id"`
	UserID             string       `db:"user_id" json:"user_id"`
	GeneratedContentID *string      `db:"generated_content_id" json:"generated_content_id,omitempty"`
	ContentType        string       `db:"content_type" json:"content_type"`
	FeedbackType       string       `db:"feedback_type" json:"feedback_type"`
	Comment            *string      `db:"comment" json:"comment,omitempty"`
	Expected           *VoiceVector `json:"expected,omitempty"`
	CreatedAt          time.Time    `db:"created_at" json:"created_at"`
}

// TrainingSessionRecord is an audit row in the 'training_sessions' table
// summarizing one refinement run. Not consumed programmatically.
type TrainingSessionRecord struct {
	ID              string    `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"user_id"`
	TrainingType    string    `db:"training_type" json:"training_type"`
	SamplesUsed     int       `db:"samples_used" json:"samples_used"`
	AccuracyScore   float64   `db:"accuracy_score" json:"accuracy_score"`
	DurationSeconds int       `db:"duration_seconds" json:"duration_seconds"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// VoiceRecommendation describes one dimension where recent content diverges
// from the stored profile beyond the configured threshold.
type VoiceRecommendation struct {
	Dimension    string `json:"dimension"`
	DeltaPercent int    `json:"delta_percent"`
	Direction    string `json:"direction"` // "more" or "less"
	Message      string `json:"message"`
}
