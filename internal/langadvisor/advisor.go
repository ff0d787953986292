package langadvisor

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"
	"go.uber.org/zap"

	"personalizer/internal/config"
	"personalizer/internal/models"
	"personalizer/internal/repository"
)

var (
	tagPattern        = regexp.MustCompile(`[#@][^\s#@]+`)
	urlPattern        = regexp.MustCompile(`https?://\S+|www\.\S+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// langCodes maps every identifier language the advisor may whitelist to its
// ISO 639-1 code.
var langCodes = map[whatlanggo.Lang]string{
	whatlanggo.Eng: "en",
	whatlanggo.Spa: "es",
	whatlanggo.Fra: "fr",
	whatlanggo.Deu: "de",
	whatlanggo.Ita: "it",
	whatlanggo.Por: "pt",
	whatlanggo.Rus: "ru",
	whatlanggo.Jpn: "ja",
	whatlanggo.Kor: "ko",
	whatlanggo.Cmn: "zh",
	whatlanggo.Arb: "ar",
	whatlanggo.Hin: "hi",
	whatlanggo.Ben: "bn",
	whatlanggo.Tam: "ta",
	whatlanggo.Tel: "te",
	whatlanggo.Mar: "mr",
	whatlanggo.Guj: "gu",
	whatlanggo.Kan: "kn",
	whatlanggo.Mal: "ml",
	whatlanggo.Pan: "pa",
	whatlanggo.Urd: "ur",
	whatlanggo.Nld: "nl",
	whatlanggo.Tur: "tr",
	whatlanggo.Vie: "vi",
	whatlanggo.Tha: "th",
	whatlanggo.Ind: "id",
}

var languageLabels = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"ru": "Russian",
	"ja": "Japanese",
	"ko": "Korean",
	"zh": "Chinese",
	"ar": "Arabic",
	"hi": "Hindi",
	"bn": "Bengali",
	"ta": "Tamil",
	"te": "Telugu",
	"mr": "Marathi",
	"gu": "Gujarati",
	"kn": "Kannada",
	"ml": "Malayalam",
	"pa": "Punjabi",
	"ur": "Urdu",
	"nl": "Dutch",
	"tr": "Turkish",
	"vi": "Vietnamese",
	"th": "Thai",
	"id": "Indonesian",
}

// Advisor decides which language(s) a generation request should target. The
// decision is a strict priority chain: explicit preference, caption
// detection, image hint, audience history, configured fallback.
type Advisor struct {
	posts     repository.PostRepository
	whitelist map[whatlanggo.Lang]bool
	cfg       config.EngineConfig
	logger    *zap.Logger
}

// NewAdvisor creates a language advisor. When the config names supported
// languages the identifier whitelist is restricted to those; otherwise every
// known code is allowed.
func NewAdvisor(posts repository.PostRepository, cfg config.EngineConfig, logger *zap.Logger) *Advisor {
	allowed := make(map[string]bool, len(cfg.SupportedLanguages))
	for _, code := range cfg.SupportedLanguages {
		allowed[strings.ToLower(code)] = true
	}

	whitelist := make(map[whatlanggo.Lang]bool, len(langCodes))
	for lang, code := range langCodes {
		if len(allowed) == 0 || allowed[code] {
			whitelist[lang] = true
		}
	}

	return &Advisor{posts: posts, whitelist: whitelist, cfg: cfg, logger: logger}
}

// RecommendLanguage walks the priority chain and returns the first directive
// that resolves. Detection failures fall through to the next source; only a
// store failure during history analysis is an error.
func (a *Advisor) RecommendLanguage(req models.LanguageRequest) (*models.LanguageRecommendation, error) {
	fallback := req.FallbackLanguage
	if fallback == "" {
		fallback = a.cfg.FallbackLanguage
	}

	sources := []string{"user-preference"}
	if req.PreferredLanguage != "" {
		return &models.LanguageRecommendation{
			Mode:    models.LanguageModeSingle,
			Primary: req.PreferredLanguage,
			Reason:  models.ReasonUserPreference,
			Sources: sources,
		}, nil
	}

	sources = append(sources, "caption-detection")
	if detected := a.DetectLanguageFromCaption(req.CaptionText); detected != "" {
		return &models.LanguageRecommendation{
			Mode:    models.LanguageModeSingle,
			Primary: detected,
			Reason:  models.ReasonCaptionDetected,
			Sources: sources,
		}, nil
	}

	sources = append(sources, "image-hint")
	if req.ImageLanguageHint != "" {
		return &models.LanguageRecommendation{
			Mode:    models.LanguageModeSingle,
			Primary: req.ImageLanguageHint,
			Reason:  models.ReasonImageDetected,
			Sources: sources,
		}, nil
	}

	sources = append(sources, "post-history")
	dist, err := a.DetectLanguageDistributionForUser(req.UserID, a.cfg.PostHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze post history: %w", err)
	}

	if dist != nil {
		return a.recommendFromDistribution(dist, sources), nil
	}

	sources = append(sources, "fallback")
	return &models.LanguageRecommendation{
		Mode:    models.LanguageModeSingle,
		Primary: fallback,
		Reason:  models.ReasonFallback,
		Sources: sources,
	}, nil
}

func (a *Advisor) recommendFromDistribution(dist map[string]float64, sources []string) *models.LanguageRecommendation {
	ranked := make([]string, 0, len(dist))
	for code := range dist {
		ranked = append(ranked, code)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if dist[ranked[i]] != dist[ranked[j]] {
			return dist[ranked[i]] > dist[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})

	top := ranked[0]
	topShare := dist[top]

	if topShare >= a.cfg.MajorityShare {
		return &models.LanguageRecommendation{
			Mode:    models.LanguageModeSingle,
			Primary: top,
			Reason:  models.ReasonAudienceMajority,
			Sources: sources,
		}
	}

	if len(ranked) > 1 && topShare >= a.cfg.MixedPrimaryShare && dist[ranked[1]] >= a.cfg.MixedSecondShare {
		return &models.LanguageRecommendation{
			Mode:      models.LanguageModeBilingual,
			Primary:   top,
			Secondary: ranked[1],
			Reason:    models.ReasonAudienceMixed,
			Sources:   sources,
		}
	}

	return &models.LanguageRecommendation{
		Mode:    models.LanguageModeSingle,
		Primary: top,
		Reason:  models.ReasonAudienceDefault,
		Sources: sources,
	}
}

// DetectLanguageFromCaption identifies the caption's language after stripping
// hashtags, mentions and URLs. Returns "" when too little text remains or the
// identifier resolves to no whitelisted language.
func (a *Advisor) DetectLanguageFromCaption(text string) string {
	cleaned := tagPattern.ReplaceAllString(urlPattern.ReplaceAllString(text, " "), " ")
	cleaned = strings.TrimSpace(whitespacePattern.ReplaceAllString(cleaned, " "))
	if utf8.RuneCountInString(cleaned) < 3 {
		return ""
	}

	info := whatlanggo.DetectWithOptions(cleaned, whatlanggo.Options{Whitelist: a.whitelist})
	code, ok := langCodes[info.Lang]
	if !ok || !a.whitelist[info.Lang] {
		return ""
	}
	return code
}

// DetectLanguageDistributionForUser computes the normalized per-language
// share over the user's most recent posts. Each post resolves to caption
// detection first, then its stored language tag. Nil when nothing resolves.
func (a *Advisor) DetectLanguageDistributionForUser(userID string, limit int) (map[string]float64, error) {
	posts, err := a.posts.GetRecentPosts(userID, limit)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	total := 0
	for _, post := range posts {
		lang := a.DetectLanguageFromCaption(post.Caption)
		if lang == "" && post.Language != nil {
			lang = strings.ToLower(strings.TrimSpace(*post.Language))
		}
		if lang == "" {
			continue
		}
		counts[lang]++
		total++
	}

	if total == 0 {
		return nil, nil
	}

	dist := make(map[string]float64, len(counts))
	for lang, n := range counts {
		dist[lang] = float64(n) / float64(total)
	}
	return dist, nil
}

// DescribeLanguage maps a code to a display label, returning the code itself
// when unmapped.
func DescribeLanguage(code string) string {
	if label, ok := languageLabels[strings.ToLower(code)]; ok {
		return label
	}
	return code
}
