package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mikey/llm-review-triage/internal/core"
)

func TestOpenAIClientGenerate(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float32 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","model":"gpt-4o-mini-2024","choices":[{"index":0,"message":{"role":"assistant","content":"Technical"}}],"usage":{"total_tokens":12}}`))
	}))
	defer srv.Close()

	client, err := NewOpenAIClient("test-key", srv.URL, "gpt-4o-mini", nil)
	if err != nil {
		t.Fatalf("NewOpenAIClient: %v", err)
	}

	gen, err := client.Generate(context.Background(), &core.GenerationRequest{
		Messages: []core.Message{
			{Role: core.RoleSystem, Content: "Return only the category word."},
			{Role: core.RoleUser, Content: "game crashes"},
		},
		Temperature: 0.1,
		MaxTokens:   10,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if gen.Text != "Technical" || gen.ID != "chatcmpl-1" || gen.Model != "gpt-4o-mini-2024" {
		t.Errorf("Generate = %+v", gen)
	}
	if got.Model != "gpt-4o-mini" || got.MaxTokens != 10 {
		t.Errorf("request model/max_tokens = %q/%d", got.Model, got.MaxTokens)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Role != "user" {
		t.Errorf("request messages = %+v", got.Messages)
	}
}

func TestOpenAIClientErrors(t *testing.T) {
	if _, err := NewOpenAIClient("", "", "gpt-4o-mini", nil); err == nil {
		t.Error("missing API key should fail")
	}

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":{"message":"boom"}}`},
		{"no choices", http.StatusOK, `{"id":"x","choices":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client, _ := NewOpenAIClient("k", srv.URL, "m", nil)
			_, err := client.Generate(context.Background(), &core.GenerationRequest{
				Messages: []core.Message{{Role: core.RoleUser, Content: "hi"}},
			})
			if err == nil {
				t.Error("Generate should fail")
			}
		})
	}
}
