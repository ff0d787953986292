package oracle

import (
	"context"

	"personalizer/internal/models"
)

// VoiceAnalysis is the oracle's scoring of one text sample.
type VoiceAnalysis struct {
	Vector     models.VoiceVector `json:"vector"`
	Confidence float64            `json:"confidence"`
}

// RefinedVoice is the oracle's proposed replacement profile.
type RefinedVoice struct {
	Vector    models.VoiceVector `json:"vector"`
	Reasoning string             `json:"reasoning"`
}

// Oracle is the text-analysis capability the engine consumes. Implementations
// are remote and unreliable; callers decide whether a failure is fatal.
type Oracle interface {
	AnalyzeVoice(ctx context.Context, text, contentType, language string) (*VoiceAnalysis, error)
	RefineVoice(ctx context.Context, history []*models.ContentAnalysisRecord, feedback []*models.FeedbackRecord, current models.VoiceVector) (*RefinedVoice, error)
}
