package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"personalizer/internal/models"
)

// Client is an OpenRouter-compatible chat-completions client implementing the
// Oracle capability.
type Client struct {
	apiKey     string
	baseURL    string
	modelName  string
	httpClient *http.Client
	logger     *zap.Logger
	maxRetries int
	retryDelay time.Duration
}

// Config holds configuration for the oracle client.
type Config struct {
	BaseURL    string
	APIKey     string
	ModelName  string // e.g. "meta-llama/llama-3.2-3b-instruct:free"
	MaxRetries int
	RetryDelay time.Duration
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// NewClient creates a new oracle client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("oracle API key is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}

	if cfg.ModelName == "" {
		cfg.ModelName = "meta-llama/llama-3.2-3b-instruct:free"
	}

	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}

	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	client := &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		modelName:  cfg.ModelName,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}

	logger.Info("Oracle client initialized",
		zap.String("model", cfg.ModelName),
		zap.Int("max_retries", cfg.MaxRetries))

	return client, nil
}

// AnalyzeVoice scores one text sample along the eight dimensions.
func (c *Client) AnalyzeVoice(ctx context.Context, text, contentType, language string) (*VoiceAnalysis, error) {
	content, err := c.complete(ctx, BuildAnalyzePrompt(text, contentType, language))
	if err != nil {
		return nil, err
	}

	fields := parseDimensionJSON(content)
	return &VoiceAnalysis{
		Vector:     vectorFromFields(fields),
		Confidence: fieldOr(fields, "analysisConfidence", 0.5),
	}, nil
}

// RefineVoice proposes an updated profile from accumulated history and feedback.
func (c *Client) RefineVoice(ctx context.Context, history []*models.ContentAnalysisRecord, feedback []*models.FeedbackRecord, current models.VoiceVector) (*RefinedVoice, error) {
	content, err := c.complete(ctx, BuildRefinePrompt(history, feedback, current))
	if err != nil {
		return nil, err
	}

	fields := parseDimensionJSON(content)
	reasoning := ""
	var raw map[string]json.RawMessage
	if json.Unmarshal([]byte(cleanJSONContent(content)), &raw) == nil {
		if r, ok := raw["reasoning"]; ok {
			_ = json.Unmarshal(r, &reasoning)
		}
	}

	return &RefinedVoice{
		Vector:    vectorFromFields(fields),
		Reasoning: reasoning,
	}, nil
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		content, err := c.completeOnce(ctx, prompt)
		if err == nil {
			return content, nil
		}

		lastErr = err
		c.logger.Warn("Oracle API attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", c.maxRetries),
			zap.Error(err))

		if attempt < c.maxRetries {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}
	}

	return "", fmt.Errorf("oracle request failed after %d attempts: %w", c.maxRetries, lastErr)
}

func (c *Client) completeOnce(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: c.modelName,
		Messages: []chatMessage{
			{Role: "system", Content: SystemInstruction},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.3,
		MaxTokens:   500,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("oracle returned status %d: %s", resp.StatusCode, string(body))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if result.Error != nil {
		return "", fmt.Errorf("oracle API error: %s (%s)", result.Error.Message, result.Error.Type)
	}

	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty response from oracle")
	}

	return result.Choices[0].Message.Content, nil
}

// cleanJSONContent strips markdown code fences some models wrap around JSON.
func cleanJSONContent(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

// parseDimensionJSON extracts numeric fields from the model's reply. A reply
// that is not valid JSON, or omits a dimension, yields an empty/partial map;
// missing dimensions fall back to the 0.5 neutral default downstream.
func parseDimensionJSON(content string) map[string]float64 {
	fields := make(map[string]float64)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleanJSONContent(content)), &raw); err != nil {
		return fields
	}

	for key, val := range raw {
		var f float64
		if err := json.Unmarshal(val, &f); err == nil {
			fields[key] = f
		}
	}

	return fields
}

func vectorFromFields(fields map[string]float64) models.VoiceVector {
	vec := models.VoiceVector{}
	for _, dim := range models.DimensionOrder {
		vec.Set(dim, fieldOr(fields, dim, 0.5))
	}
	return vec
}

func fieldOr(fields map[string]float64, key string, def float64) float64 {
	if v, ok := fields[key]; ok {
		return v
	}
	return def
}
