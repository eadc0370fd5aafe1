package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// OllamaService talks to a locally hosted Ollama runtime. It is the default
// model provider.
type OllamaService struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllamaService(baseURL, model string) *OllamaService {
	return &OllamaService{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Format string `json:"format"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response json.RawMessage `json:"response"`
	Done     bool            `json:"done"`
	Error    string          `json:"error,omitempty"`
}

// GenerateJSON requests a JSON-formatted completion and returns the raw JSON
// object. The runtime usually returns the object as a JSON-encoded string, but
// some builds hand back a pre-parsed object; both are accepted.
func (s *OllamaService) GenerateJSON(ctx context.Context, prompt string) (json.RawMessage, error) {
	reqBody := ollamaGenerateRequest{
		Model:  s.model,
		Prompt: prompt + "\n\nIMPORTANT: Respond with only the JSON object, without any surrounding text, comments, or code blocks.",
		Format: "json",
		Stream: false,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/generate", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach model runtime: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model runtime error: status %d", resp.StatusCode)
	}

	var genResp ollamaGenerateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if genResp.Error != "" {
		return nil, fmt.Errorf("model runtime error: %s", genResp.Error)
	}

	result, err := normalizeModelJSON(genResp.Response)
	if err != nil {
		return nil, err
	}

	slog.Info("Model completion received", "model", s.model, "bytes", len(result))
	return result, nil
}

// normalizeModelJSON accepts either a JSON object or a JSON-encoded string
// containing an object and returns the object itself.
func normalizeModelJSON(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("model returned an empty response")
	}

	if trimmed[0] == '"' {
		var encoded string
		if err := json.Unmarshal(trimmed, &encoded); err != nil {
			return nil, fmt.Errorf("failed to decode model response: %w", err)
		}
		trimmed = []byte(cleanModelText(encoded))
	}

	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("model returned invalid JSON")
	}
	return json.RawMessage(trimmed), nil
}

// cleanModelText strips markdown code fences some models wrap around JSON.
func cleanModelText(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
