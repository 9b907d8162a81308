package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/contract"
	mistralx "github.com/tanpawarit/Chative-Hotel-Concierge/pkg/mistral"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.mistral.ai/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"mistral-small-latest"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"1024"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.7"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	MaxSteps           int           `envconfig:"MAX_STEPS" split_words:"true" default:"12"`
	ProbeOnStart       bool          `envconfig:"PROBE_ON_START" split_words:"true" default:"false"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: llm api key is required", contractx.ErrValidation)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: temperature must be within [0, 2]", contractx.ErrValidation)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("%w: max steps must be >= 0", contractx.ErrValidation)
	}
	return nil
}

func (c Config) Mistral() mistralx.Config {
	var maxTokens *int
	if c.MaxCompletionToken > 0 {
		v := c.MaxCompletionToken
		maxTokens = &v
	}
	return mistralx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              strings.TrimSpace(c.Model),
		MaxCompletionToken: maxTokens,
		Temperature:        c.Temperature,
		Timeout:            c.Timeout,
	}
}
