package conciergenode

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/contract"
)

// FinalizeReply never fails on an empty agent reply. A closing turn falls
// back to the farewell text instead.
func FinalizeReply(in *GraphState, farewell string) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.Message)
	if reply == "" && in.Closing {
		reply = strings.TrimSpace(farewell)
	}
	return GraphOutput{Reply: contractx.Reply{
		SessionID: in.SessionID,
		Text:      reply,
		Closing:   in.Closing,
		Attempts:  in.Attempts,
	}}, nil
}
