package generator

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	// HuggingFaceRouterURL is the OpenAI-compatible Hugging Face inference endpoint.
	HuggingFaceRouterURL = "https://router.huggingface.co/v1"
	// DefaultModel is the instruction-tuned model used for recipes.
	DefaultModel = "mistralai/Mistral-7B-Instruct-v0.1"
)

// HFConfig configures the Hugging Face chat completion client.
type HFConfig struct {
	BaseURL     string
	APIKeyEnv   string
	Model       string
	MaxTokens   int
	Temperature float32
}

// HFCompleter sends prompts to an OpenAI-compatible chat completion endpoint.
type HFCompleter struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

// NewHFCompleter creates a completer authenticated with the bearer token found in cfg.APIKeyEnv.
func NewHFCompleter(cfg HFConfig, logger *zap.Logger) (*HFCompleter, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "HF_TOKEN"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = HuggingFaceRouterURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	config := openai.DefaultConfig(key)
	config.BaseURL = cfg.BaseURL
	return &HFCompleter{
		client:      openai.NewClientWithConfig(config),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      logger,
	}, nil
}

// Model returns the model identifier sent with every request.
func (c *HFCompleter) Model() string { return c.model }

// Complete sends prompt as a single user message and returns the first choice.
func (c *HFCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug("completion requested", zap.String("model", c.model), zap.Int("prompt_len", len(prompt)))

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("model endpoint returned %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}
	c.logger.Debug("completion received",
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)))
	return resp.Choices[0].Message.Content, nil
}
