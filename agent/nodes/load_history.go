package conciergenode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/contract"
)

// LoadHistory reads the stored conversation and builds what the agent will
// see this turn: the system instruction, a window of past messages and the
// new user message.
func LoadHistory(
	ctx context.Context,
	in *GraphState,
	store contractx.HistoryStore,
	systemPrompt string,
	window int,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	history, err := store.Load(ctx, in.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	in.History = history

	prompt := EnsureSystem(history, systemPrompt)
	prompt = WindowHistory(prompt, window)
	in.Prompt = append(prompt, contractx.UserMessage(in.Text))
	return in, nil
}
