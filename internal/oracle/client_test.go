package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONContent(t *testing.T) {
	fenced := "```json\n{\"formality\": 0.7}\n```"
	assert.Equal(t, `{"formality": 0.7}`, cleanJSONContent(fenced))

	plain := ` {"humor": 0.2} `
	assert.Equal(t, `{"humor": 0.2}`, cleanJSONContent(plain))
}

func TestParseDimensionJSONSubstitutesNeutralDefaults(t *testing.T) {
	// Missing and non-numeric dimensions fall back to 0.5.
	fields := parseDimensionJSON(`{"formality": 0.9, "humor": "high", "analysisConfidence": 0.8}`)
	vec := vectorFromFields(fields)

	assert.Equal(t, 0.9, vec.Formality)
	assert.Equal(t, 0.5, vec.Humor)
	assert.Equal(t, 0.5, vec.Warmth)
	assert.Equal(t, 0.8, fieldOr(fields, "analysisConfidence", 0.5))
}

func TestParseDimensionJSONGarbage(t *testing.T) {
	fields := parseDimensionJSON("the model refused to answer")
	vec := vectorFromFields(fields)

	// A degraded-but-present vector beats a hard failure.
	assert.Equal(t, 0.5, vec.Formality)
	assert.Equal(t, 0.5, vec.Confidence)
	assert.Equal(t, 0.5, fieldOr(fields, "analysisConfidence", 0.5))
}
