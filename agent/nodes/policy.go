package conciergenode

import (
	"context"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/contract"
)

const (
	DefaultAttempts = 5
	DefaultDelay    = time.Second
)

var farewells = map[string]struct{}{
	"rien d'autre merci": {},
	"rien d'autre":       {},
	"au revoir":          {},
	"merci":              {},
	"rien merci":         {},
	"quit":               {},
	"exit":               {},
}

// IsFarewell reports whether text ends the conversation.
func IsFarewell(text string) bool {
	normalized := strings.ToLower(strings.TrimSpace(text))
	normalized = strings.ReplaceAll(normalized, "’", "'")
	_, ok := farewells[normalized]
	return ok
}

// EnsureSystem puts the system instruction first when history has none.
func EnsureSystem(history []contractx.Message, systemPrompt string) []contractx.Message {
	out := make([]contractx.Message, 0, len(history)+1)
	if !contractx.HasSystem(history) && strings.TrimSpace(systemPrompt) != "" {
		out = append(out, contractx.SystemMessage(systemPrompt))
	}
	return append(out, history...)
}

// WindowHistory keeps the leading system message and the last n other
// messages. n <= 0 keeps everything.
func WindowHistory(history []contractx.Message, n int) []contractx.Message {
	if n <= 0 || len(history) == 0 {
		return history
	}

	var head []contractx.Message
	rest := history
	if history[0].Role == contractx.RoleSystem {
		head, rest = history[:1], history[1:]
	}
	if len(rest) <= n {
		return history
	}

	out := make([]contractx.Message, 0, len(head)+n)
	out = append(out, head...)
	return append(out, rest[len(rest)-n:]...)
}

type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
	Sleep    func(ctx context.Context, d time.Duration) error
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.Attempts <= 0 {
		p.Attempts = DefaultAttempts
	}
	if p.Delay < 0 {
		p.Delay = 0
	}
	if p.Sleep == nil {
		p.Sleep = SleepContext
	}
	return p
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
