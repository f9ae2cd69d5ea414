package title

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"aititle/internal/domain"
)

func newOpenAIServer(t *testing.T, status int, body string, capture *openAIChatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer dummy" {
			t.Errorf("authorization header = %q", r.Header.Get("Authorization"))
		}
		if capture != nil {
			if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIGeneratorSuccess(t *testing.T) {
	var captured openAIChatRequest
	srv := newOpenAIServer(t, http.StatusOK, `{"choices":[{"message":{"content":"Title: Intro to Hello World"},"finish_reason":"stop"}]}`, &captured)
	g, err := NewOpenAIGenerator(OpenAIOptions{APIKey: "dummy", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewOpenAIGenerator returned error: %v", err)
	}
	got, err := g.GenerateTitle(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("GenerateTitle returned error: %v", err)
	}
	if got != "Intro to Hello World" {
		t.Fatalf("GenerateTitle = %q", got)
	}
	if captured.Model != defaultOpenAIModel {
		t.Fatalf("model = %q, want %q", captured.Model, defaultOpenAIModel)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" {
		t.Fatalf("messages = %+v", captured.Messages)
	}
}

func TestOpenAIGeneratorRefusal(t *testing.T) {
	srv := newOpenAIServer(t, http.StatusOK, `{"choices":[{"message":{"content":"","refusal":"I can't help with that."}}]}`, nil)
	g, err := NewOpenAIGenerator(OpenAIOptions{APIKey: "dummy", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewOpenAIGenerator returned error: %v", err)
	}
	if _, err := g.GenerateTitle(context.Background(), "transcript"); !IsDeclined(err) {
		t.Fatalf("err = %v, want declined", err)
	}
}

func TestOpenAIGeneratorServerError(t *testing.T) {
	srv := newOpenAIServer(t, http.StatusBadGateway, `{}`, nil)
	var reason string
	g, err := NewOpenAIGenerator(OpenAIOptions{
		APIKey:    "dummy",
		BaseURL:   srv.URL,
		OnFailure: func(provider, r string, err error) { reason = r },
	})
	if err != nil {
		t.Fatalf("NewOpenAIGenerator returned error: %v", err)
	}
	_, err = g.GenerateTitle(context.Background(), "transcript")
	if !errors.Is(err, domain.ErrGenerationFailure) {
		t.Fatalf("err = %v, want ErrGenerationFailure", err)
	}
	if reason != "http_502" {
		t.Fatalf("reason = %q, want http_502", reason)
	}
}

func TestNormalizeOpenAIModel(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		input  string
		model  string
		reason string
	}{
		{name: "exact_default", input: "gpt-4o-mini", model: "gpt-4o-mini", reason: ""},
		{name: "exact_other", input: "gpt-4o", model: "gpt-4o", reason: ""},
		{name: "alias_short", input: "gpt-3.5", model: "gpt-3.5-turbo", reason: "alias"},
		{name: "alias_spaces", input: "GPT4o Mini", model: "gpt-4o-mini", reason: "alias"},
		{name: "unsupported", input: "davinci", model: "gpt-4o-mini", reason: "defaulted"},
		{name: "empty", input: "", model: "gpt-4o-mini", reason: ""},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			model, reason := normalizeOpenAIModel(tc.input)
			if model != tc.model || reason != tc.reason {
				t.Fatalf("normalizeOpenAIModel(%q) = (%q, %q), want (%q, %q)", tc.input, model, reason, tc.model, tc.reason)
			}
		})
	}
}
