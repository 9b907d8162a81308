package llm

import (
	"errors"
	"testing"
	"time"

	contractx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/contract"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "ok", cfg: Config{APIKey: "k", Temperature: 0.7, MaxSteps: 12}},
		{name: "missing key", cfg: Config{APIKey: " "}, wantErr: true},
		{name: "temperature too high", cfg: Config{APIKey: "k", Temperature: 3}, wantErr: true},
		{name: "negative steps", cfg: Config{APIKey: "k", MaxSteps: -1}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				if !errors.Is(err, contractx.ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestMistralConfig(t *testing.T) {
	t.Parallel()

	cfg := Config{
		BaseURL:            " https://api.mistral.ai/v1 ",
		APIKey:             " key ",
		Model:              "mistral-small-latest",
		MaxCompletionToken: 512,
		Temperature:        0.7,
		Timeout:            5 * time.Second,
	}

	got := cfg.Mistral()
	if got.BaseURL != "https://api.mistral.ai/v1" || got.APIKey != "key" {
		t.Fatalf("unexpected trimmed fields: %+v", got)
	}
	if got.MaxCompletionToken == nil || *got.MaxCompletionToken != 512 {
		t.Fatalf("unexpected max tokens: %v", got.MaxCompletionToken)
	}

	cfg.MaxCompletionToken = 0
	if cfg.Mistral().MaxCompletionToken != nil {
		t.Fatalf("expected nil max tokens when unset")
	}
}
