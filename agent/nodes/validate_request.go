package conciergenode

import (
	"errors"
	"strings"

	contractx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/contract"
	statex "github.com/tanpawarit/Chative-Hotel-Concierge/agent/state"
)

var ErrInvalidMessage = errors.New("message is empty")

type GraphInput struct {
	SessionID string
	Text      string
}

type GraphOutput struct {
	Reply contractx.Reply
}

type GraphState struct {
	SessionID string
	Text      string
	Closing   bool

	History []contractx.Message
	Prompt  []contractx.Message

	Message  string
	Attempts int
}

func ValidateRequest(in GraphInput) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		sessionID = statex.DefaultSessionID
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		Closing:   IsFarewell(text),
	}, nil
}
