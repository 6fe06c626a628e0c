package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// LMStudioClient wraps the LM Studio OpenAI-compatible REST API.
// Use GGUF quantized versions (Q4_K_M, Q5_K_M) for better VRAM efficiency.
type LMStudioClient struct {
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// LMStudioConfig holds LM Studio-specific configuration
type LMStudioConfig struct {
	BaseURL        string // e.g., "http://localhost:1234"
	Model          string // e.g., "local-model" (LM Studio model identifier)
	TimeoutSeconds int    // Request timeout
	MaxTokens      int    // Max tokens in response
}

// openAIChatRequest is the request body for OpenAI-compatible /v1/chat/completions endpoint
type openAIChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature,omitempty"`
	TopP        float64         `json:"top_p,omitempty"`
	Stream      bool            `json:"stream"`
}

// openAIMessage represents a chat message in OpenAI format
type openAIMessage struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// openAIChatResponse is the response from OpenAI-compatible /v1/chat/completions endpoint
type openAIChatResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int           `json:"index"`
		Message      openAIMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// openAIModelsResponse is the response from /v1/models endpoint
type openAIModelsResponse struct {
	Object string `json:"object"`
	Data   []struct {
		ID      string `json:"id"`
		Object  string `json:"object"`
		Created int64  `json:"created"`
		OwnedBy string `json:"owned_by"`
	} `json:"data"`
}

// NewLMStudioClient creates a new LM Studio client
func NewLMStudioClient(cfg LMStudioConfig) (*LMStudioClient, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:1234"
	}

	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	if cfg.Model == "" {
		// LM Studio uses "local-model" or the loaded model's name
		cfg.Model = "local-model"
	}

	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 300
	}

	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 8000
	}

	return &LMStudioClient{
		baseURL:   cfg.BaseURL,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// GenerateText makes a single chat call to LM Studio and returns the raw
// response text.
func (c *LMStudioClient) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, *Stats, error) {
	startTime := time.Now()

	// LM Studio doesn't support "json_object" response_format like OpenAI;
	// the system prompt carries the JSON output instructions instead.
	request := openAIChatRequest{
		Model: c.model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: 0.7,
		TopP:        0.9,
		Stream:      false,
	}

	response, err := doJSONPost[openAIChatResponse](ctx, c.httpClient, c.baseURL+"/v1/chat/completions", request)
	if err != nil {
		return "", nil, err
	}

	if len(response.Choices) == 0 {
		return "", nil, fmt.Errorf("empty response from LM Studio (no choices)")
	}

	responseText := response.Choices[0].Message.Content
	if responseText == "" {
		return "", nil, fmt.Errorf("empty response from LM Studio")
	}

	stats := c.calculateStats(response, time.Since(startTime).Seconds())

	return responseText, stats, nil
}

// calculateStats calculates statistics from LM Studio response
func (c *LMStudioClient) calculateStats(response *openAIChatResponse, durationSeconds float64) *Stats {
	return &Stats{
		Provider:        "LMStudio",
		Model:           c.model,
		InputTokens:     response.Usage.PromptTokens,
		OutputTokens:    response.Usage.CompletionTokens,
		CostUSD:         0.0, // local inference is free
		DurationSeconds: durationSeconds,
	}
}

// GetModelInfo returns information about the configured model
func (c *LMStudioClient) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"model":      c.model,
		"provider":   "LMStudio",
		"max_tokens": c.maxTokens,
		"base_url":   c.baseURL,
	}
}

// GetProviderName returns the name of the provider
func (c *LMStudioClient) GetProviderName() string {
	return "LMStudio"
}

// CheckConnection verifies that LM Studio is running and a model is loaded
func (c *LMStudioClient) CheckConnection(ctx context.Context) error {
	url := c.baseURL + "/v1/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("LM Studio is not running at %s: %w", c.baseURL, err)
	}
	if resp == nil {
		return fmt.Errorf("LM Studio returned nil response")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("LM Studio returned status %d", resp.StatusCode)
	}

	var modelsResp openAIModelsResponse
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := json.Unmarshal(body, &modelsResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if len(modelsResp.Data) == 0 {
		return fmt.Errorf("no models loaded in LM Studio. Please load a model in LM Studio first")
	}

	if c.model != "local-model" {
		modelFound := false
		for _, m := range modelsResp.Data {
			if m.ID == c.model || strings.Contains(m.ID, c.model) {
				modelFound = true
				break
			}
		}

		if !modelFound {
			availableModels := make([]string, len(modelsResp.Data))
			for i, m := range modelsResp.Data {
				availableModels[i] = m.ID
			}
			return fmt.Errorf("model '%s' not found in LM Studio. Available models: %v. You can use 'local-model' to use the currently loaded model",
				c.model, availableModels)
		}
	}

	return nil
}

// Ensure LMStudioClient implements Provider interface
var _ Provider = (*LMStudioClient)(nil)
