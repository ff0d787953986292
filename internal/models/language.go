package models

import "time"

// Language recommendation modes and reason tags.
const (
	LanguageModeSingle    = "single"
	LanguageModeBilingual = "bilingual"

	ReasonUserPreference   = "user-preference"
	ReasonCaptionDetected  = "caption-detected"
	ReasonImageDetected    = "image-detected"
	ReasonAudienceMajority = "audience-majority"
	ReasonAudienceMixed    = "audience-mixed"
	ReasonAudienceDefault  = "audience-default"
	ReasonFallback         = "fallback"
)

// LanguageRequest is the input to the language decision chain.
type LanguageRequest struct {
	UserID            string `json:"user_id"`
	CaptionText       string `json:"caption_text,omitempty"`
	PreferredLanguage string `json:"preferred_language,omitempty"`
	ImageLanguageHint string `json:"image_language_hint,omitempty"`
	FallbackLanguage  string `json:"fallback_language,omitempty"`
}

// LanguageRecommendation is the per-request language directive. It is
// computed fresh on every call and never persisted.
type LanguageRecommendation struct {
	Mode      string   `json:"mode"` // single|bilingual
	Primary   string   `json:"primary"`
	Secondary string   `json:"secondary,omitempty"`
	Reason    string   `json:"reason"`
	Sources   []string `json:"sources"`
}

// Post represents a row in the 'posts' table: one saved caption with an
// optional stored language tag, used for audience-distribution analysis.
type Post struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Caption   string    `db:"caption" json:"caption"`
	Language  *string   `db:"language" json:"language,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
