package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"proofline/internal/config"
	"proofline/internal/prompt"
)

const outputContract = "AGENT OUTPUT FORMAT:\n" +
	"Return strict JSON with keys: text, confidence (0-1), title (optional).\n" +
	"Produce clean, shippable text.\n" +
	"Do not include backticks, code fences, or commentary outside the JSON."

// OpenAIClient invokes a chat-completions endpoint and decodes the
// structured result from the reply.
type OpenAIClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	logger  *logrus.Logger
}

// NewOpenAIClient builds the live provider client from the run configuration.
func NewOpenAIClient(cfg config.Config, logger *logrus.Logger) *OpenAIClient {
	return &OpenAIClient{
		baseURL: cfg.OpenAIBaseURL,
		apiKey:  cfg.OpenAIAPIKey,
		model:   cfg.OpenAIModel,
		http:    &http.Client{Timeout: 120 * time.Second},
		logger:  logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Invoke sends the prompt and extracts the structured result. Network
// failures and provider outages map to ErrProviderUnavailable so the caller
// can degrade to the offline fallback; credential rejections map to ErrAuth.
func (c *OpenAIClient) Invoke(ctx context.Context, spec prompt.Spec) (Result, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: spec.System + "\n\n" + outputContract},
			{Role: "user", Content: "TASK CONTEXT:\n" + spec.User + "\n\nReturn JSON only."},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return Result{}, fmt.Errorf("model: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("model: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("%w: read response: %v", ErrProviderUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Result{}, fmt.Errorf("%w (status %d)", ErrAuth, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return Result{}, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Result{}, fmt.Errorf("%w: decode envelope: %v", ErrMalformedResponse, err)
	}
	if len(parsed.Choices) == 0 {
		return Result{}, fmt.Errorf("%w: empty choices", ErrMalformedResponse)
	}

	result, err := extractResult(parsed.Choices[0].Message.Content)
	if err != nil {
		c.logger.WithField("model", c.model).Debug("reply carried no parseable result object")
		return Result{}, err
	}
	return result, nil
}
