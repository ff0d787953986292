package oracle

import (
	"fmt"
	"strings"

	"personalizer/internal/models"
)

// SystemInstruction primes the model to act as a writing-style analyst and to
// answer with JSON only.
const SystemInstruction = `You are a writing-style analyst for a social media caption tool.
You score short texts along eight stylistic dimensions, each a number between 0.0 and 1.0:
formality, humor, enthusiasm, professionalism, creativity, emotionalTone, confidence, warmth.
Respond with a single JSON object and nothing else. No markdown, no commentary.`

// BuildAnalyzePrompt asks for an eight-dimension scoring of one text sample.
func BuildAnalyzePrompt(text, contentType, language string) string {
	var b strings.Builder
	b.WriteString("Score the following ")
	b.WriteString(contentType)
	if language != "" {
		b.WriteString(" (language: ")
		b.WriteString(language)
		b.WriteString(")")
	}
	b.WriteString(" along the eight dimensions.\n\n")
	b.WriteString("Text:\n\"\"\"\n")
	b.WriteString(text)
	b.WriteString("\n\"\"\"\n\n")
	b.WriteString(`Answer with JSON: {"formality":0.0,"humor":0.0,"enthusiasm":0.0,"professionalism":0.0,"creativity":0.0,"emotionalTone":0.0,"confidence":0.0,"warmth":0.0,"analysisConfidence":0.0}`)
	return b.String()
}

// BuildRefinePrompt asks for an updated profile vector given accumulated
// analysis history and user feedback.
func BuildRefinePrompt(history []*models.ContentAnalysisRecord, feedback []*models.FeedbackRecord, current models.VoiceVector) string {
	var b strings.Builder
	b.WriteString("A user's current voice profile is:\n")
	writeVector(&b, current)

	b.WriteString("\nRecent analyzed content (newest first):\n")
	for i, rec := range history {
		fmt.Fprintf(&b, "%d. [%s, confidence %.2f] ", i+1, rec.ContentType, rec.Confidence)
		writeVector(&b, rec.Vector)
	}

	if len(feedback) > 0 {
		b.WriteString("\nUser feedback (newest first):\n")
		for i, fb := range feedback {
			fmt.Fprintf(&b, "%d. %s on %s", i+1, fb.FeedbackType, fb.ContentType)
			if fb.Comment != nil && *fb.Comment != "" {
				fmt.Fprintf(&b, ": %q", *fb.Comment)
			}
			if fb.Expected != nil {
				b.WriteString(" expected: ")
				writeVector(&b, *fb.Expected)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\nPropose an updated profile that better matches how this user actually writes, weighing feedback over raw history.\n")
	b.WriteString(`Answer with JSON: {"formality":0.0,"humor":0.0,"enthusiasm":0.0,"professionalism":0.0,"creativity":0.0,"emotionalTone":0.0,"confidence":0.0,"warmth":0.0,"reasoning":""}`)
	return b.String()
}

func writeVector(b *strings.Builder, v models.VoiceVector) {
	fmt.Fprintf(b, "{formality:%.2f humor:%.2f enthusiasm:%.2f professionalism:%.2f creativity:%.2f emotionalTone:%.2f confidence:%.2f warmth:%.2f}\n",
		v.Formality, v.Humor, v.Enthusiasm, v.Professionalism, v.Creativity, v.EmotionalTone, v.Confidence, v.Warmth)
}
