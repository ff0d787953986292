package models

import "time"

// CaptionStructure holds structural habits detected from finalized captions.
type CaptionStructure struct {
	EndsWithEmoji       bool `db:"ends_with_emoji" json:"ends_with_emoji"`
	StartsWithQuote     bool `db:"starts_with_quote" json:"starts_with_quote"`
	ContainsLineBreaks  bool `db:"contains_line_breaks" json:"contains_line_breaks"`
	FirstSentenceLength int  `db:"first_sentence_length" json:"first_sentence_length"`
}

// UserPreferenceProfile represents a row in the 'user_preferences' table, one
// per user, updated in place. List fields never exceed ten entries and never
// contain blank or duplicate values.
type UserPreferenceProfile struct {
	UserID             string           `db:"user_id" json:"user_id"`
	PreferredTone      string           `db:"preferred_tone" json:"preferred_tone"`
	EmojiLevel         float64          `db:"emoji_level" json:"emoji_level"`
	CommonPhrases      []string         `json:"common_phrases"`
	DislikedPhrases    []string         `json:"disliked_phrases"`
	CaptionLength      string           `db:"caption_length" json:"caption_length"` // short|medium|long
	LanguagePreference *string          `db:"language_preference" json:"language_preference,omitempty"`
	Structure          CaptionStructure `json:"structure"`
	LastUpdated        time.Time        `db:"last_updated" json:"last_updated"`
}

// CaptionContext carries side information about a finalized caption that the
// generation step knows but the text alone does not, e.g. the language it was
// generated in.
type CaptionContext struct {
	ContentType string `json:"content_type"`
	Language    string `json:"language,omitempty"`
}
