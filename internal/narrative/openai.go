package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"site-checker/internal/config"
	"site-checker/internal/domain"
)

var ErrEmptyCompletion = errors.New("completion contained no text")

// OpenAI generates narratives with an OpenAI compatible chat completions API.
type OpenAI struct {
	cfg    config.Narrative
	client *http.Client
	logger *zap.Logger
}

func NewOpenAI(cfg config.Narrative, client *http.Client, logger *zap.Logger) *OpenAI {
	return &OpenAI{
		cfg:    cfg,
		client: client,
		logger: logger.With(zap.String("component", "narrative")),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (o *OpenAI) DescribeSite(ctx context.Context, report domain.SiteReport) (string, error) {
	return o.complete(ctx, o.cfg.Model, o.cfg.MaxTokens, siteSystemPrompt, sitePrompt(report))
}

func (o *OpenAI) CompareSites(ctx context.Context, report domain.ComparativeReport, firstNarrative, secondNarrative string) (string, error) {
	model := o.cfg.CompareModel
	if model == "" {
		model = o.cfg.Model
	}
	maxTokens := o.cfg.CompareMaxTokens
	if maxTokens == 0 {
		maxTokens = o.cfg.MaxTokens
	}
	return o.complete(ctx, model, maxTokens, compareSystemPrompt, comparePrompt(report, firstNarrative, secondNarrative))
}

func (o *OpenAI) complete(ctx context.Context, model string, maxTokens int, system, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call completion API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read completion: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		o.logger.Debug("Completion API rejected request",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return "", fmt.Errorf("completion API returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode completion: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
