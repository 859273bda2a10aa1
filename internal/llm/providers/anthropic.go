package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kindershield/kindershield/internal/llm"
	llmerrors "github.com/kindershield/kindershield/internal/llm/errors"
)

// anthropicVersion pins the messages API revision sent with every request.
const anthropicVersion = "2023-06-01"

// AnthropicProvider implements llm.Client over Anthropic's messages API.
// It handles Anthropic's content-block response format, x-api-key
// authentication, API versioning, and error mapping into the shared
// ProviderError taxonomy.
type AnthropicProvider struct {
	config     llm.ProviderConfig
	httpClient *http.Client
}

// NewAnthropicProvider creates an Anthropic provider with the default
// endpoint unless the config overrides it.
func NewAnthropicProvider(cfg llm.ProviderConfig) *AnthropicProvider {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.anthropic.com/v1"
	}
	return &AnthropicProvider{
		config:     cfg,
		httpClient: &http.Client{},
	}
}

// Name returns the canonical provider identifier.
func (p *AnthropicProvider) Name() string { return llm.ProviderAnthropic }

// Model returns the configured model name.
func (p *AnthropicProvider) Model() string { return p.config.Model }

// Generate performs one messages call and returns the normalized response
// text with latency and usage metrics.
func (p *AnthropicProvider) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	body := map[string]any{
		"model": p.config.Model,
		"messages": []map[string]any{
			{"role": "user", "content": req.Prompt},
		},
		"max_tokens":  req.MaxTokens,
		"temperature": req.Temperature,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/messages", p.config.Endpoint)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.config.Credential)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	start := time.Now()
	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, llmerrors.Classify(llm.ProviderAnthropic, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, llmerrors.Classify(llm.ProviderAnthropic, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, parseAnthropicError(httpResp, respBody)
	}

	var resp struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		StopReason string `json:"stop_reason"`
		Usage      struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}

	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, &llmerrors.ProviderError{
			Provider:   llm.ProviderAnthropic,
			StatusCode: httpResp.StatusCode,
			Message:    fmt.Sprintf("unparseable response body: %v", err),
			Type:       llmerrors.ErrorTypeInvalidResponse,
		}
	}

	if len(resp.Content) == 0 {
		return nil, &llmerrors.ProviderError{
			Provider:   llm.ProviderAnthropic,
			StatusCode: httpResp.StatusCode,
			Message:    "response contained no content blocks",
			Type:       llmerrors.ErrorTypeInvalidResponse,
		}
	}

	return &llm.Response{
		Content:          resp.Content[0].Text,
		LatencyMillis:    time.Since(start).Milliseconds(),
		PromptTokens:     resp.Usage.InputTokens,
		CompletionTokens: resp.Usage.OutputTokens,
	}, nil
}

// parseAnthropicError converts Anthropic error responses into ProviderError.
// Extracts Anthropic's nested error object when present.
func parseAnthropicError(httpResp *http.Response, body []byte) error {
	var errResp struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}

	provErr := &llmerrors.ProviderError{
		Provider:   llm.ProviderAnthropic,
		StatusCode: httpResp.StatusCode,
		Message:    string(body),
		Type:       classifyErrorType(httpResp.StatusCode, ""),
		RetryAfter: parseRetryAfter(httpResp.Header),
	}

	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		provErr.Message = errResp.Error.Message
		provErr.Code = errResp.Error.Type
		provErr.Type = classifyErrorType(httpResp.StatusCode, errResp.Error.Type)
	}

	return provErr
}
