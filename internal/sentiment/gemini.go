package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"google.golang.org/genai"

	"github.com/wonny/equimeter/internal/contracts"
	"github.com/wonny/equimeter/pkg/logger"
	"github.com/wonny/equimeter/pkg/redis"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gemini-2.0-flash"

// ErrMissingAPIKey is returned when the classifier has no credentials
var ErrMissingAPIKey = errors.New("gemini: API key not configured")

const classifyPrompt = `You classify financial news for equity investors.
Decide whether the following news is Positive, Negative or Neutral for the company's stock.
Respond with JSON only: {"sentiment": "Positive" | "Negative" | "Neutral"}

News:
%s`

// GeminiClassifier labels article text with a Gemini model
// ⭐ SSOT: 감성 분류 LLM 호출은 여기서만
type GeminiClassifier struct {
	logger   *logger.Logger
	model    string
	limiter  *redis.RateLimiter
	generate func(ctx context.Context, prompt string) (string, error)
}

// NewGeminiClassifier creates a classifier; limiter may be nil
func NewGeminiClassifier(ctx context.Context, apiKey, model string, limiter *redis.RateLimiter, log *logger.Logger) (*GeminiClassifier, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	c := &GeminiClassifier{
		logger:  log,
		model:   model,
		limiter: limiter,
	}
	c.generate = func(ctx context.Context, prompt string) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(0.1)),
			ResponseMIMEType: "application/json",
		})
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}
	return c, nil
}

// Classify returns the sentiment label for text
func (c *GeminiClassifier) Classify(ctx context.Context, text string) (contracts.SentimentLabel, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, redis.GeminiRateLimit); err != nil {
			return "", fmt.Errorf("gemini rate limit: %w", err)
		}
	}

	raw, err := c.generate(ctx, fmt.Sprintf(classifyPrompt, text))
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w (%v)", c.model, contracts.ErrUpstreamUnavailable, err)
	}

	label, err := ParseVerdict(raw)
	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"model":    c.model,
			"response": raw,
		}).Warn("Unrecognized sentiment response")
		return "", err
	}
	return label, nil
}

type verdict struct {
	Sentiment string `json:"sentiment"`
	Label     string `json:"label"`
}

// ParseVerdict reads the model answer: JSON (possibly malformed or fenced) or a bare word
func ParseVerdict(raw string) (contracts.SentimentLabel, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	if label, ok := contracts.ParseSentimentLabel(strings.Trim(s, `".`)); ok {
		return label, nil
	}

	repaired, err := jsonrepair.RepairJSON(s)
	if err == nil {
		var v verdict
		if err := json.Unmarshal([]byte(repaired), &v); err == nil {
			for _, candidate := range []string{v.Sentiment, v.Label} {
				if label, ok := contracts.ParseSentimentLabel(candidate); ok {
					return label, nil
				}
			}
		}
	}

	return "", fmt.Errorf("unrecognized sentiment %q: %w", raw, contracts.ErrNotCalculable)
}
