package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prepwise/interview-coach/services"
)

func TestOllamaGenerateJSON(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    bool
		wantResult string
	}{
		{
			name:       "object wrapped in a JSON string",
			status:     http.StatusOK,
			body:       `{"response":"{\"hint\":\"x\"}","done":true}`,
			wantResult: `{"hint":"x"}`,
		},
		{
			name:       "pre-parsed object",
			status:     http.StatusOK,
			body:       `{"response":{"hint":"x"},"done":true}`,
			wantResult: `{"hint":"x"}`,
		},
		{
			name:       "code-fenced string",
			status:     http.StatusOK,
			body:       "{\"response\":\"```json\\n{\\\"hint\\\":\\\"x\\\"}\\n```\",\"done\":true}",
			wantResult: `{"hint":"x"}`,
		},
		{
			name:    "runtime error field",
			status:  http.StatusOK,
			body:    `{"response":"","error":"model not found"}`,
			wantErr: true,
		},
		{
			name:    "non-200 status",
			status:  http.StatusInternalServerError,
			body:    `{}`,
			wantErr: true,
		},
		{
			name:    "string that is not JSON",
			status:  http.StatusOK,
			body:    `{"response":"sorry, I cannot help","done":true}`,
			wantErr: true,
		},
		{
			name:    "empty response",
			status:  http.StatusOK,
			body:    `{"response":"","done":true}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/generate" {
					t.Errorf("unexpected path %q", r.URL.Path)
				}
				var req struct {
					Model  string `json:"model"`
					Format string `json:"format"`
					Stream bool   `json:"stream"`
				}
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					t.Errorf("failed to decode request: %v", err)
				}
				if req.Model != "llama3" || req.Format != "json" || req.Stream {
					t.Errorf("unexpected request: %+v", req)
				}

				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			svc := services.NewOllamaService(srv.URL, "llama3")
			result, err := svc.GenerateJSON(context.Background(), "prompt")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("GenerateJSON failed: %v", err)
			}
			if string(result) != tt.wantResult {
				t.Errorf("result = %s, want %s", result, tt.wantResult)
			}
		})
	}
}

func TestOllamaGenerateJSONUnreachable(t *testing.T) {
	svc := services.NewOllamaService("http://127.0.0.1:1", "llama3")
	if _, err := svc.GenerateJSON(context.Background(), "prompt"); err == nil {
		t.Error("expected an error when the runtime is unreachable")
	}
}
