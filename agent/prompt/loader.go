package prompt

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/contract"
)

var (
	//go:embed template/concierge.txt
	conciergeRaw string

	//go:embed template/greeting.txt
	greetingRaw string

	//go:embed template/farewell.txt
	farewellRaw string
)

// Config names the persona and the hotel written into the prompts.
type Config struct {
	Persona string
	Hotel   string
}

// PromptSet holds the rendered concierge prompts.
type PromptSet struct {
	System   string
	Greeting string
	Farewell string
}

// LoadPromptSet renders the embedded templates with the persona and hotel
// names filled in.
func LoadPromptSet(ctx context.Context, cfg Config) (PromptSet, error) {
	persona := strings.TrimSpace(cfg.Persona)
	if persona == "" {
		persona = "Kimrau"
	}
	hotel := strings.TrimSpace(cfg.Hotel)
	if hotel == "" {
		hotel = "Hôtel California"
	}

	tpl := einoprompt.FromMessages(schema.FString,
		schema.SystemMessage(strings.TrimSpace(conciergeRaw)),
		schema.UserMessage(strings.TrimSpace(greetingRaw)),
		schema.AssistantMessage(strings.TrimSpace(farewellRaw), nil),
	)

	msgs, err := tpl.Format(ctx, map[string]any{
		"persona": persona,
		"hotel":   hotel,
	})
	if err != nil {
		return PromptSet{}, fmt.Errorf("%w: render prompts: %v", contractx.ErrPromptMissing, err)
	}
	if len(msgs) != 3 {
		return PromptSet{}, fmt.Errorf("%w: expected 3 rendered prompts, got %d", contractx.ErrPromptMissing, len(msgs))
	}

	set := PromptSet{
		System:   strings.TrimSpace(msgs[0].Content),
		Greeting: strings.TrimSpace(msgs[1].Content),
		Farewell: strings.TrimSpace(msgs[2].Content),
	}
	if set.System == "" || set.Greeting == "" || set.Farewell == "" {
		return PromptSet{}, contractx.ErrPromptMissing
	}
	return set, nil
}
