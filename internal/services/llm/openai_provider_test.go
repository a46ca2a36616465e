package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/citizenslab/citizens-chat/internal/domain"
	"github.com/citizenslab/citizens-chat/internal/services/prompt"
)

func openAITestConfig(baseURL string) *Config {
	return &Config{
		Backend:     BackendChatAPI,
		Model:       "gpt-4o-mini",
		APIKey:      "test-key",
		BaseURL:     baseURL,
		MaxTokens:   16,
		Temperature: 0.7,
		Timeout:     2 * time.Second,
		MaxRetries:  1,
	}
}

func TestOpenAIProviderSendsStructuredTurns(t *testing.T) {
	var gotReq openai.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: "hi there"}},
			},
		})
	}))
	defer server.Close()

	p := NewOpenAIProvider(openAITestConfig(server.URL))
	pr := prompt.NewBuilder(prompt.DefaultSystemInstruction).Build(
		[]domain.Message{{Role: domain.RoleUser, Content: "earlier"}}, "hello")

	got, err := p.Generate(context.Background(), pr, Options{MaxTokens: 16, Temperature: 0.7})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "hi there" {
		t.Fatalf("unexpected reply: %q", got)
	}

	wantRoles := []string{domain.RoleSystem, domain.RoleUser, domain.RoleUser}
	if len(gotReq.Messages) != len(wantRoles) {
		t.Fatalf("expected %d messages, got %d", len(wantRoles), len(gotReq.Messages))
	}
	for i, want := range wantRoles {
		if gotReq.Messages[i].Role != want {
			t.Fatalf("message %d: expected role %q, got %q", i, want, gotReq.Messages[i].Role)
		}
	}
	if gotReq.Messages[2].Content != "hello" {
		t.Fatalf("new message must be the trailing turn, got %q", gotReq.Messages[2].Content)
	}
}

func TestOpenAIProviderErrorClassification(t *testing.T) {
	cases := []struct {
		status int
		kind   ErrorKind
	}{
		{http.StatusUnauthorized, ErrKindAuthFailure},
		{http.StatusForbidden, ErrKindAuthFailure},
		{http.StatusTooManyRequests, ErrKindRateLimited},
		{http.StatusInternalServerError, ErrKindBackendUnavailable},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("status_%d", tc.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				fmt.Fprintf(w, `{"error":{"message":"nope","type":"api_error"}}`)
			}))
			defer server.Close()

			p := NewOpenAIProvider(openAITestConfig(server.URL))
			_, err := p.Generate(context.Background(), testPrompt(), Options{})

			var genErr *GenerationError
			if !errors.As(err, &genErr) || genErr.Kind != tc.kind {
				t.Fatalf("expected kind %s, got %v", tc.kind, err)
			}
		})
	}
}

func TestOpenAIProviderEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{})
	}))
	defer server.Close()

	p := NewOpenAIProvider(openAITestConfig(server.URL))
	_, err := p.Generate(context.Background(), testPrompt(), Options{})

	var genErr *GenerationError
	if !errors.As(err, &genErr) || genErr.Kind != ErrKindMalformedResponse {
		t.Fatalf("expected MALFORMED_RESPONSE, got %v", err)
	}
}
