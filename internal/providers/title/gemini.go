package title

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"aititle/internal/domain"
	"aititle/internal/domain/promptcfg"
)

type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	Prompt     promptcfg.TitlePrompt
	HTTPClient *http.Client
	OnFailure  FailureHook
}

type GeminiGenerator struct {
	apiKey    string
	model     string
	baseURL   string
	prompt    promptcfg.TitlePrompt
	client    *http.Client
	onFailure FailureHook
}

const (
	geminiDefaultTimeout = 30 * time.Second
	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	geminiDefaultModel   = "gemini-1.5-flash"
)

type geminiRequest struct {
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	Contents          []geminiContent         `json:"contents"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature    float64 `json:"temperature"`
	CandidateCount int     `json:"candidateCount,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason,omitempty"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason,omitempty"`
	} `json:"promptFeedback,omitempty"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

func NewGeminiGenerator(opts GeminiOptions) (*GeminiGenerator, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = geminiDefaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = geminiDefaultModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: geminiDefaultTimeout}
	}
	prompt := opts.Prompt
	if prompt.Instructions == "" {
		prompt = promptcfg.Default()
	}
	return &GeminiGenerator{
		apiKey:    strings.TrimSpace(opts.APIKey),
		model:     model,
		baseURL:   baseURL,
		prompt:    prompt,
		client:    client,
		onFailure: opts.OnFailure,
	}, nil
}

// Model returns the configured Gemini model identifier.
func (g *GeminiGenerator) Model() string {
	return g.model
}

func (g *GeminiGenerator) GenerateTitle(ctx context.Context, transcript string) (string, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: g.prompt.Render(transcript)}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:    g.prompt.Temperature,
			CandidateCount: 1,
		},
	}
	if g.prompt.System != "" {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: g.prompt.System}}}
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", failure(g.onFailure, geminiProviderName, "encode_request", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), &buf)
	if err != nil {
		return "", failure(g.onFailure, geminiProviderName, "build_request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", failure(g.onFailure, geminiProviderName, "http_request", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return "", failure(g.onFailure, geminiProviderName, fmt.Sprintf("http_%d", resp.StatusCode), decodeGeminiError(resp))
	}
	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", failure(g.onFailure, geminiProviderName, "decode_response", err)
	}
	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return "", declined(g.onFailure, geminiProviderName, "blocked_"+strings.ToLower(out.PromptFeedback.BlockReason))
	}
	if len(out.Candidates) == 0 {
		return "", declined(g.onFailure, geminiProviderName, "empty_candidates")
	}
	if reason := out.Candidates[0].FinishReason; reason == "SAFETY" || reason == "RECITATION" {
		return "", declined(g.onFailure, geminiProviderName, "finish_"+strings.ToLower(reason))
	}
	title := cleanTitle(extractGeminiText(out), g.prompt.MaxTitleChars)
	if title == "" {
		return "", declined(g.onFailure, geminiProviderName, "empty_response")
	}
	return title, nil
}

func (g *GeminiGenerator) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
}

func extractGeminiText(resp geminiResponse) string {
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return part.Text
			}
		}
	}
	return ""
}

func decodeGeminiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 16*1024))
	var apiErr geminiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("gemini status %d: %s", resp.StatusCode, apiErr.Error.Message)
	}
	return fmt.Errorf("gemini status %d", resp.StatusCode)
}

var _ domain.TitleGenerator = (*GeminiGenerator)(nil)
