// Selection assistant [AssistantService] implementations
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/desertthunder/bookx/internal/models"
	"github.com/desertthunder/bookx/internal/shared"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	defaultAssistantModel    = "gpt-4o-mini"
	defaultAssistantLanguage = "English"
)

// OpenAIConfig configures an [OpenAIAssistant].
type OpenAIConfig struct {
	APIKey         string
	Model          string
	BaseURL        string // empty means the OpenAI default
	TargetLanguage string // translate target
	MaxRetries     int
	Timeout        time.Duration
	HTTPClient     *http.Client
}

// OpenAIAssistant answers selection actions with chat completions.
type OpenAIAssistant struct {
	client   openai.Client
	model    string
	language string
}

// NewOpenAIAssistant creates an assistant from cfg, filling in defaults.
func NewOpenAIAssistant(cfg OpenAIConfig) *OpenAIAssistant {
	if cfg.Model == "" {
		cfg.Model = defaultAssistantModel
	}
	if cfg.TargetLanguage == "" {
		cfg.TargetLanguage = defaultAssistantLanguage
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 2
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIAssistant{
		client:   openai.NewClient(opts...),
		model:    cfg.Model,
		language: cfg.TargetLanguage,
	}
}

// Name returns the provider identifier.
func (a *OpenAIAssistant) Name() string {
	return "openai"
}

// PerformAction sends the selection with an action-specific instruction and returns the reply text.
func (a *OpenAIAssistant) PerformAction(ctx context.Context, action models.Action, text string) (string, error) {
	instruction, err := a.instruction(action)
	if err != nil {
		return "", err
	}

	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(instruction),
			openai.UserMessage(text),
		},
	})
	if err != nil {
		return "", mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", shared.ErrAssistantFailed)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (a *OpenAIAssistant) instruction(action models.Action) (string, error) {
	const prefix = "You help a reader with a passage selected from a book. "
	switch action {
	case models.ActionExplain:
		return prefix + "Explain what the passage means in plain language, including any references or unusual words.", nil
	case models.ActionTranslate:
		return prefix + "Translate the passage into " + a.language + ". Reply with the translation only.", nil
	case models.ActionSummary:
		return prefix + "Summarize the passage in two or three sentences.", nil
	}
	return "", fmt.Errorf("%w: unknown action %q", shared.ErrInvalidInput, action)
}

func mapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return fmt.Errorf("%w: openai (status %d): %s", shared.ErrAssistantFailed, apiErr.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("%w: openai (status %d)", shared.ErrAssistantFailed, apiErr.StatusCode)
	}
	return fmt.Errorf("%w: %v", shared.ErrAssistantFailed, err)
}

// CannedAssistant answers with fixed placeholder replies, for use without an API key.
type CannedAssistant struct {
	Delay time.Duration // simulated latency
}

// Name returns the provider identifier.
func (c *CannedAssistant) Name() string {
	return "canned"
}

// PerformAction returns the placeholder reply for action after Delay.
func (c *CannedAssistant) PerformAction(ctx context.Context, action models.Action, text string) (string, error) {
	if c.Delay > 0 {
		select {
		case <-time.After(c.Delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", shared.ErrAssistantFailed, ctx.Err())
		}
	}

	switch action {
	case models.ActionExplain:
		return fmt.Sprintf("Explanation of the passage: %q\n\nThis may mean...", text), nil
	case models.ActionTranslate:
		return "Translation: [the translated text will appear here]", nil
	case models.ActionSummary:
		return "Summary of the selected passage...", nil
	}
	return "", fmt.Errorf("%w: unknown action %q", shared.ErrInvalidInput, action)
}

// NewAssistant picks the configured provider. "openai" without a key falls back to canned replies.
func NewAssistant(cfg shared.AssistantConfig) AssistantService {
	if strings.EqualFold(cfg.Provider, "openai") && cfg.APIKey != "" {
		return NewOpenAIAssistant(OpenAIConfig{
			APIKey:         cfg.APIKey,
			Model:          cfg.Model,
			BaseURL:        cfg.BaseURL,
			TargetLanguage: cfg.TargetLanguage,
		})
	}
	return &CannedAssistant{}
}
