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

// OpenAIProvider implements llm.Client over OpenAI's chat completions API.
// It handles request construction, bearer authentication, response parsing,
// and mapping of OpenAI error responses into the shared ProviderError
// taxonomy. One outbound call per Generate; no retries, no caching.
type OpenAIProvider struct {
	config     llm.ProviderConfig
	httpClient *http.Client
}

// NewOpenAIProvider creates an OpenAI provider with the default endpoint
// unless the config overrides it.
func NewOpenAIProvider(cfg llm.ProviderConfig) *OpenAIProvider {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.openai.com/v1"
	}
	return &OpenAIProvider{
		config:     cfg,
		httpClient: &http.Client{},
	}
}

// Name returns the canonical provider identifier.
func (p *OpenAIProvider) Name() string { return llm.ProviderOpenAI }

// Model returns the configured model name.
func (p *OpenAIProvider) Model() string { return p.config.Model }

// Generate performs one chat completion call and returns the normalized
// response text with latency and usage metrics.
func (p *OpenAIProvider) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
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

	endpoint := fmt.Sprintf("%s/chat/completions", p.config.Endpoint)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.config.Credential)

	start := time.Now()
	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, llmerrors.Classify(llm.ProviderOpenAI, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, llmerrors.Classify(llm.ProviderOpenAI, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, parseOpenAIError(httpResp, respBody)
	}

	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}

	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, &llmerrors.ProviderError{
			Provider:   llm.ProviderOpenAI,
			StatusCode: httpResp.StatusCode,
			Message:    fmt.Sprintf("unparseable response body: %v", err),
			Type:       llmerrors.ErrorTypeInvalidResponse,
		}
	}

	if len(resp.Choices) == 0 {
		return nil, &llmerrors.ProviderError{
			Provider:   llm.ProviderOpenAI,
			StatusCode: httpResp.StatusCode,
			Message:    "response contained no choices",
			Type:       llmerrors.ErrorTypeInvalidResponse,
		}
	}

	return &llm.Response{
		Content:          resp.Choices[0].Message.Content,
		LatencyMillis:    time.Since(start).Milliseconds(),
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

// parseOpenAIError converts OpenAI error responses into ProviderError.
// Extracts the structured error object when present, falling back to the
// raw body.
func parseOpenAIError(httpResp *http.Response, body []byte) error {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    string `json:"code"`
		} `json:"error"`
	}

	provErr := &llmerrors.ProviderError{
		Provider:   llm.ProviderOpenAI,
		StatusCode: httpResp.StatusCode,
		Message:    string(body),
		Type:       classifyErrorType(httpResp.StatusCode, ""),
		RetryAfter: parseRetryAfter(httpResp.Header),
	}

	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		provErr.Message = errResp.Error.Message
		provErr.Code = errResp.Error.Code
		provErr.Type = classifyErrorType(httpResp.StatusCode, errResp.Error.Type)
	}

	return provErr
}
