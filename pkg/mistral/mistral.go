package mistral

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openaimodel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	DefaultBaseURL = "https://api.mistral.ai/v1"
	DefaultModel   = "mistral-small-latest"
)

type LLMBuilder interface {
	New(ctx context.Context) (model.ToolCallingChatModel, error)
}

var _ LLMBuilder = (*Config)(nil)

// Config targets Mistral's OpenAI compatible chat completions endpoint.
type Config struct {
	BaseURL            string
	APIKey             string
	Model              string
	MaxCompletionToken *int
	Temperature        float32
	Timeout            time.Duration
}

func (c *Config) baseURL() string {
	if trimmed := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/"); trimmed != "" {
		return trimmed
	}
	return DefaultBaseURL
}

func (c *Config) model() string {
	if m := strings.TrimSpace(c.Model); m != "" {
		return m
	}
	return DefaultModel
}

func (c *Config) New(ctx context.Context) (model.ToolCallingChatModel, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, errors.New("mistral: api key is required")
	}

	temperature := c.Temperature
	m, err := openaimodel.NewChatModel(ctx, &openaimodel.ChatModelConfig{
		BaseURL:     c.baseURL(),
		APIKey:      strings.TrimSpace(c.APIKey),
		Model:       c.model(),
		MaxTokens:   c.MaxCompletionToken,
		Temperature: &temperature,
		Timeout:     c.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("mistral: create chat model: %w", err)
	}
	return m, nil
}

// NewClient creates an OpenAI SDK client pointed at Mistral. It returns nil
// when no key is configured.
func NewClient(cfg Config) *openaisdk.Client {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithBaseURL(cfg.baseURL() + "/"),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	client := openaisdk.NewClient(opts...)
	return &client
}

// Probe checks that the key is accepted and the configured model is served.
func Probe(ctx context.Context, client *openaisdk.Client, modelName string) error {
	if client == nil {
		return errors.New("mistral: nil client")
	}
	modelName = strings.TrimSpace(modelName)
	if modelName == "" {
		modelName = DefaultModel
	}

	iter := client.Models.ListAutoPaging(ctx)
	for iter.Next() {
		if iter.Current().ID == modelName {
			return nil
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("mistral: list models: %w", err)
	}
	return fmt.Errorf("mistral: model %q is not available", modelName)
}
