package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
)

const deepseekBaseURL = "https://api.deepseek.com/v1"

// DeepSeekAdapter implements the Adapter interface for DeepSeek models.
// DeepSeek uses an OpenAI-compatible API format.
type DeepSeekAdapter struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type deepseekRequest struct {
	Model     string            `json:"model"`
	Messages  []deepseekMessage `json:"messages"`
	MaxTokens int               `json:"max_tokens,omitempty"`
}

type deepseekMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// DeepSeekOption configures a DeepSeekAdapter.
type DeepSeekOption func(*DeepSeekAdapter)

// WithDeepSeekBaseURL overrides the API endpoint.
func WithDeepSeekBaseURL(baseURL string) DeepSeekOption {
	return func(a *DeepSeekAdapter) {
		a.baseURL = baseURL
	}
}

// WithDeepSeekHTTPClient overrides the HTTP client.
func WithDeepSeekHTTPClient(client *http.Client) DeepSeekOption {
	return func(a *DeepSeekAdapter) {
		a.httpClient = client
	}
}

// NewDeepSeekAdapter creates a new DeepSeek adapter.
func NewDeepSeekAdapter(apiKey string, opts ...DeepSeekOption) (*DeepSeekAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("deepseek API key is required")
	}

	a := &DeepSeekAdapter{
		apiKey:     apiKey,
		baseURL:    deepseekBaseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Name returns the adapter identifier.
func (a *DeepSeekAdapter) Name() string {
	return "deepseek"
}

// Models returns the list of supported DeepSeek models.
func (a *DeepSeekAdapter) Models() []string {
	return []string{
		"deepseek-chat",
		"deepseek-reasoner",
	}
}

// Generate sends a prompt to DeepSeek and returns the completion.
func (a *DeepSeekAdapter) Generate(ctx context.Context, model string, prompt string) (*Response, error) {
	payload, err := json.Marshal(deepseekRequest{
		Model:     model,
		Messages:  []deepseekMessage{{Role: "user", Content: prompt}},
		MaxTokens: 2048,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Provider: a.Name(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Provider: a.Name(), Status: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	// Error bodies are kept whole; the classifier matches on their wording.
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Provider: a.Name(), Status: resp.StatusCode, Err: fmt.Errorf("status %d: %s", resp.StatusCode, body)}
	}
	if !gjson.ValidBytes(body) {
		return nil, &Error{Provider: a.Name(), Status: resp.StatusCode, Err: fmt.Errorf("malformed response body")}
	}

	result := gjson.ParseBytes(body)
	if msg := result.Get("error.message"); msg.Exists() {
		return nil, &Error{Provider: a.Name(), Status: resp.StatusCode, Err: fmt.Errorf("%s (type: %s, code: %s)",
			msg.String(), result.Get("error.type").String(), result.Get("error.code").String())}
	}

	content := result.Get("choices.0.message.content")
	if !content.Exists() {
		return nil, &Error{Provider: a.Name(), Status: resp.StatusCode, Err: fmt.Errorf("no choices returned")}
	}

	return &Response{
		Text:    content.String(),
		Adapter: a.Name(),
		Model:   model,
		Usage: &Usage{
			PromptTokens:     int(result.Get("usage.prompt_tokens").Int()),
			CompletionTokens: int(result.Get("usage.completion_tokens").Int()),
			TotalTokens:      int(result.Get("usage.total_tokens").Int()),
		},
	}, nil
}
