package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration.
type Config struct {
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Oracle struct {
		BaseURL    string `yaml:"base_url"`
		APIKey     string `yaml:"api_key"`
		ModelName  string `yaml:"model_name"`
		MaxRetries int    `yaml:"max_retries"`
		RetryDelay int64  `yaml:"retry_delay_seconds"`
	} `yaml:"oracle"`
	Engine EngineConfig `yaml:"engine"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
}

// EngineConfig carries the engine tunables. It is loaded once at startup and
// never mutated afterwards; every component receives it by value.
type EngineConfig struct {
	// Voice model.
	RecommendThreshold   float64 `yaml:"recommend_threshold"`
	AnalysisHistoryLimit int     `yaml:"analysis_history_limit"`
	FeedbackHistoryLimit int     `yaml:"feedback_history_limit"`
	MinRefineSamples     int     `yaml:"min_refine_samples"`

	// Preference memory.
	PhraseLimit   int      `yaml:"phrase_limit"`
	OverusedWords []string `yaml:"overused_words"`

	// Language advisor.
	MajorityShare      float64  `yaml:"majority_share"`
	MixedPrimaryShare  float64  `yaml:"mixed_primary_share"`
	MixedSecondShare   float64  `yaml:"mixed_second_share"`
	PostHistoryLimit   int      `yaml:"post_history_limit"`
	FallbackLanguage   string   `yaml:"fallback_language"`
	SupportedLanguages []string `yaml:"supported_languages"`
}

// DefaultEngineConfig returns the engine tunables with their stock values.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		RecommendThreshold:   0.3,
		AnalysisHistoryLimit: 20,
		FeedbackHistoryLimit: 10,
		MinRefineSamples:     5,
		PhraseLimit:          10,
		MajorityShare:        0.7,
		MixedPrimaryShare:    0.5,
		MixedSecondShare:     0.2,
		PostHistoryLimit:     50,
		FallbackLanguage:     "en",
	}
}

// LoadConfig reads configuration from the specified YAML file. Engine fields
// left at zero in the file fall back to their defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{Engine: DefaultEngineConfig()}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	applyEngineDefaults(&config.Engine)

	return config, nil
}

func applyEngineDefaults(ec *EngineConfig) {
	def := DefaultEngineConfig()
	if ec.RecommendThreshold == 0 {
		ec.RecommendThreshold = def.RecommendThreshold
	}
	if ec.AnalysisHistoryLimit == 0 {
		ec.AnalysisHistoryLimit = def.AnalysisHistoryLimit
	}
	if ec.FeedbackHistoryLimit == 0 {
		ec.FeedbackHistoryLimit = def.FeedbackHistoryLimit
	}
	if ec.MinRefineSamples == 0 {
		ec.MinRefineSamples = def.MinRefineSamples
	}
	if ec.PhraseLimit == 0 {
		ec.PhraseLimit = def.PhraseLimit
	}
	if ec.MajorityShare == 0 {
		ec.MajorityShare = def.MajorityShare
	}
	if ec.MixedPrimaryShare == 0 {
		ec.MixedPrimaryShare = def.MixedPrimaryShare
	}
	if ec.MixedSecondShare == 0 {
		ec.MixedSecondShare = def.MixedSecondShare
	}
	if ec.PostHistoryLimit == 0 {
		ec.PostHistoryLimit = def.PostHistoryLimit
	}
	if ec.FallbackLanguage == "" {
		ec.FallbackLanguage = def.FallbackLanguage
	}
}
