package contract

import "strings"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// Message is one role-tagged entry of a conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// HasSystem reports whether any message in msgs carries the system role.
func HasSystem(msgs []Message) bool {
	for _, m := range msgs {
		if m.Role == RoleSystem {
			return true
		}
	}
	return false
}

// Visible drops system messages; used for anything shown back to guests.
func Visible(msgs []Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == RoleSystem {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Reply is the outcome of one concierge turn.
type Reply struct {
	SessionID string `json:"session_id"`
	Text      string `json:"response"`
	Closing   bool   `json:"closing"`
	Attempts  int    `json:"-"`
}

func (r Reply) Empty() bool {
	return strings.TrimSpace(r.Text) == ""
}
