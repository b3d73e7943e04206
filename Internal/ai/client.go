package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Generator is the reasoning-service boundary. The Gemini client
// implements it; tests substitute canned responders.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}

	var text strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					text.WriteString(part.Text)
				}
			}
			if text.Len() > 0 {
				break
			}
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("empty response from model")
	}
	return text.String(), nil
}

// Service bundles the generator with the per-call budget. A nil Gen
// means no API key was configured; every operation then returns its
// documented fallback instead of erroring.
type Service struct {
	Gen     Generator
	Timeout time.Duration
	Logger  *zap.Logger
}

func NewService(gen Generator, timeout time.Duration, logger *zap.Logger) *Service {
	return &Service{Gen: gen, Timeout: timeout, Logger: logger}
}

func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	return s.Gen.GenerateText(callCtx, prompt)
}

// CleanModelJSON strips the markdown fencing models wrap around JSON
// despite instructions not to.
func CleanModelJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```python", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// DecodeModelJSON unmarshals model output into v, repairing almost-JSON
// (single quotes, trailing commas) before giving up.
func DecodeModelJSON(text string, v interface{}) error {
	cleaned := CleanModelJSON(text)
	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	repaired, err := jsonrepair.JSONRepair(cleaned)
	if err != nil {
		return fmt.Errorf("could not repair model output: %w", err)
	}
	return json.Unmarshal([]byte(repaired), v)
}
