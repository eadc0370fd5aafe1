package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

const GeminiModelName = "gemini-2.5-flash"

// GeminiService is an alternative model provider for deployments without a
// local Ollama runtime.
type GeminiService struct {
	genaiClient *genai.Client
}

func NewGeminiService(apiKey string) *GeminiService {
	genaiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		slog.Error("Failed to create genai client", "error", err)
		return nil
	}

	return &GeminiService{
		genaiClient: genaiClient,
	}
}

// GenerateJSON requests a JSON-formatted completion from Gemini.
func (g *GeminiService) GenerateJSON(ctx context.Context, prompt string) (json.RawMessage, error) {
	if g.genaiClient == nil {
		return nil, fmt.Errorf("genai client not initialized")
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	result, err := g.genaiClient.Models.GenerateContent(
		ctx,
		GeminiModelName,
		genai.Text(prompt),
		config,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}

	text := cleanModelText(result.Text())
	if !json.Valid([]byte(text)) {
		return nil, fmt.Errorf("model returned invalid JSON")
	}

	slog.Info("Model completion received", "model", GeminiModelName, "bytes", len(text))
	return json.RawMessage(text), nil
}
