package conciergenode

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/contract"
)

// SaveHistory appends the user message and, when the agent produced one,
// its reply. An empty reply is not stored.
func SaveHistory(ctx context.Context, in *GraphState, store contractx.HistoryStore) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	msgs := []contractx.Message{contractx.UserMessage(in.Text)}
	if reply := strings.TrimSpace(in.Message); reply != "" {
		msgs = append(msgs, contractx.AssistantMessage(reply))
	}
	if err := store.Append(ctx, in.SessionID, msgs...); err != nil {
		return nil, fmt.Errorf("save history: %w", err)
	}
	return in, nil
}
