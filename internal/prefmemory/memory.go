package prefmemory

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/forPelevin/gomoji"
	"go.uber.org/zap"

	"personalizer/internal/config"
	"personalizer/internal/models"
	"personalizer/internal/repository"
)

// Tokens of six or more word characters, diacritics included.
var phrasePattern = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]{6,}`)

var quoteRunes = map[rune]bool{
	'"': true, '\'': true, '“': true, '”': true, '‘': true, '’': true, '«': true,
}

// Memory derives low-level stylistic signals from finalized captions and
// merges them into the user's running preference snapshot.
type Memory struct {
	repo     repository.PreferenceRepository
	stopList map[string]bool
	cfg      config.EngineConfig
	logger   *zap.Logger
}

// NewMemory creates a preference memory. The overused-word stop list from the
// config is folded in here once; it is never mutated afterwards.
func NewMemory(repo repository.PreferenceRepository, cfg config.EngineConfig, logger *zap.Logger) *Memory {
	stopList := make(map[string]bool, len(cfg.OverusedWords))
	for _, w := range cfg.OverusedWords {
		stopList[strings.ToLower(strings.TrimSpace(w))] = true
	}
	return &Memory{repo: repo, stopList: stopList, cfg: cfg, logger: logger}
}

// ExtractPhrases returns up to the configured cap of distinct long tokens from
// the text, ordered by descending frequency with ties broken by first
// occurrence. Deterministic and idempotent.
func (m *Memory) ExtractPhrases(text string) []string {
	tokens := phrasePattern.FindAllString(strings.ToLower(text), -1)

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := make([]string, 0)

	for i, tok := range tokens {
		if m.stopList[tok] {
			continue
		}
		if _, seen := counts[tok]; !seen {
			firstSeen[tok] = i
			order = append(order, tok)
		}
		counts[tok]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return firstSeen[order[i]] < firstSeen[order[j]]
	})

	if len(order) > m.cfg.PhraseLimit {
		order = order[:m.cfg.PhraseLimit]
	}
	return order
}

// DetectStructure reports structural habits of one caption.
func (m *Memory) DetectStructure(text string) models.CaptionStructure {
	trimmed := strings.TrimSpace(text)
	return models.CaptionStructure{
		EndsWithEmoji:       endsWithEmoji(trimmed),
		StartsWithQuote:     startsWithQuote(trimmed),
		ContainsLineBreaks:  strings.Contains(text, "\n"),
		FirstSentenceLength: firstSentenceLength(trimmed),
	}
}

// DetectTone classifies the caption's tone: "energetic" when it carries an
// exclamation mark, "detailed" when long, "casual" otherwise.
func (m *Memory) DetectTone(text string) string {
	if strings.Contains(text, "!") {
		return "energetic"
	}
	if utf8.RuneCountInString(text) > 200 {
		return "detailed"
	}
	return "casual"
}

// DetectLengthBucket buckets the caption length: short below 150 characters,
// medium below 250, long otherwise.
func (m *Memory) DetectLengthBucket(text string) string {
	n := utf8.RuneCountInString(text)
	switch {
	case n < 150:
		return "short"
	case n < 250:
		return "medium"
	default:
		return "long"
	}
}

// DetectEmojiLevel counts emoji in the text, clamped to [0,5]. Presentation
// selectors, joiners and skin tone modifiers do not count on their own.
func (m *Memory) DetectEmojiLevel(text string) float64 {
	count := 0
	for _, r := range text {
		if r == 0xFE0F || r == 0x200D || (r >= 0x1F3FB && r <= 0x1F3FF) {
			continue
		}
		if gomoji.ContainsEmoji(string(r)) {
			count++
			if count == 5 {
				break
			}
		}
	}
	return float64(count)
}

// LearnFromCaption reads the user's existing preference snapshot and merges
// in everything the finalized text reveals: averaged emoji level, phrase
// union, latest tone/length/structure, and a language fallback from the
// caption context. The merged snapshot is returned; persisting it is the
// caller's responsibility, this function only ever reads the store.
func (m *Memory) LearnFromCaption(userID, finalText string, c models.CaptionContext) (*models.UserPreferenceProfile, error) {
	existing, err := m.repo.GetUserPreferences(userID)
	if err != nil {
		return nil, err
	}

	detected := m.DetectEmojiLevel(finalText)
	phrases := m.ExtractPhrases(finalText)

	snapshot := &models.UserPreferenceProfile{
		UserID:        userID,
		PreferredTone: m.DetectTone(finalText),
		CaptionLength: m.DetectLengthBucket(finalText),
		Structure:     m.DetectStructure(finalText),
		LastUpdated:   time.Now().UTC(),
	}

	if existing == nil {
		snapshot.EmojiLevel = detected
		snapshot.CommonPhrases = phrases
		if c.Language != "" {
			lang := c.Language
			snapshot.LanguagePreference = &lang
		}
		return snapshot, nil
	}

	// Running average, not a true moving average: repeated identical
	// observations damp toward the extreme but never reach it.
	snapshot.EmojiLevel = round2((existing.EmojiLevel + detected) / 2)
	snapshot.CommonPhrases = MergeUniqueLists(existing.CommonPhrases, phrases, m.cfg.PhraseLimit)
	snapshot.DislikedPhrases = MergeUniqueLists(existing.DislikedPhrases, nil, m.cfg.PhraseLimit)
	snapshot.LanguagePreference = existing.LanguagePreference
	if snapshot.LanguagePreference == nil && c.Language != "" {
		lang := c.Language
		snapshot.LanguagePreference = &lang
	}

	return snapshot, nil
}

// MergeUniqueLists unions trimmed, non-empty strings from both lists, keeping
// a's ordering before b's and capping the result at limit entries.
func MergeUniqueLists(a, b []string, limit int) []string {
	merged := make([]string, 0, limit)
	seen := make(map[string]bool)

	for _, list := range [][]string{a, b} {
		for _, s := range list {
			s = strings.TrimSpace(s)
			if s == "" || seen[s] {
				continue
			}
			if len(merged) >= limit {
				return merged
			}
			seen[s] = true
			merged = append(merged, s)
		}
	}

	return merged
}

func endsWithEmoji(trimmed string) bool {
	runes := []rune(trimmed)
	for i := len(runes) - 1; i >= 0; i-- {
		r := runes[i]
		// Skip presentation selectors, joiners and skin tone modifiers so
		// composed emoji at the end still count.
		if r == 0xFE0F || r == 0x200D || (r >= 0x1F3FB && r <= 0x1F3FF) {
			continue
		}
		return gomoji.ContainsEmoji(string(r))
	}
	return false
}

func startsWithQuote(trimmed string) bool {
	if trimmed == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(trimmed)
	return quoteRunes[r]
}

func firstSentenceLength(trimmed string) int {
	for i, r := range []rune(trimmed) {
		if r == '.' || r == '!' || r == '?' {
			return i
		}
	}
	return utf8.RuneCountInString(trimmed)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
