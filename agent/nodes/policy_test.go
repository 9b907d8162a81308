package conciergenode

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/contract"
)

func TestIsFarewell(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"rien d'autre merci": true,
		"  Au Revoir ":       true,
		"MERCI":              true,
		"rien d’autre":       true,
		"exit":               true,
		"merci beaucoup":     false,
		"je voudrais":        false,
		"":                   false,
	}
	for text, want := range cases {
		if got := IsFarewell(text); got != want {
			t.Fatalf("IsFarewell(%q) = %v, want %v", text, got, want)
		}
	}
}

func TestEnsureSystem(t *testing.T) {
	t.Parallel()

	out := EnsureSystem([]contractx.Message{contractx.UserMessage("hi")}, "sys")
	if len(out) != 2 || out[0].Role != contractx.RoleSystem || out[0].Content != "sys" {
		t.Fatalf("expected system inserted first, got %#v", out)
	}

	withSystem := []contractx.Message{contractx.SystemMessage("old"), contractx.UserMessage("hi")}
	out = EnsureSystem(withSystem, "sys")
	if len(out) != 2 || out[0].Content != "old" {
		t.Fatalf("existing system must be kept, got %#v", out)
	}
}

func TestWindowHistoryKeepsSystem(t *testing.T) {
	t.Parallel()

	history := []contractx.Message{
		contractx.SystemMessage("sys"),
		contractx.UserMessage("u1"),
		contractx.AssistantMessage("a1"),
		contractx.UserMessage("u2"),
		contractx.AssistantMessage("a2"),
	}

	out := WindowHistory(history, 2)
	if len(out) != 3 {
		t.Fatalf("unexpected window length: %d", len(out))
	}
	if out[0].Content != "sys" || out[1].Content != "u2" || out[2].Content != "a2" {
		t.Fatalf("unexpected window: %#v", out)
	}

	if got := WindowHistory(history, 0); len(got) != len(history) {
		t.Fatalf("zero window must keep everything")
	}
	if got := WindowHistory(history, 10); len(got) != len(history) {
		t.Fatalf("large window must keep everything")
	}
}

func TestRetryPolicySucceedsAfterFailures(t *testing.T) {
	t.Parallel()

	var sleeps []time.Duration
	p := RetryPolicy{
		Attempts: 5,
		Delay:    time.Second,
		Sleep: func(ctx context.Context, d time.Duration) error {
			sleeps = append(sleeps, d)
			return nil
		},
	}

	calls := 0
	out, attempts, err := p.Run(context.Background(), "s1", func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("boom")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out != "ok" || attempts != 3 {
		t.Fatalf("unexpected result out=%q attempts=%d", out, attempts)
	}
	if len(sleeps) != 2 || sleeps[0] != time.Second {
		t.Fatalf("unexpected sleeps: %v", sleeps)
	}
}

func TestRetryPolicyExhaustionIsSilent(t *testing.T) {
	t.Parallel()

	sleeps := 0
	p := RetryPolicy{
		Attempts: 5,
		Delay:    time.Second,
		Sleep: func(context.Context, time.Duration) error {
			sleeps++
			return nil
		},
	}

	calls := 0
	out, attempts, err := p.Run(context.Background(), "s1", func(context.Context) (string, error) {
		calls++
		return "", errors.New("down")
	})
	if err != nil {
		t.Fatalf("exhaustion must not surface an error, got %v", err)
	}
	if out != "" || attempts != 5 || calls != 5 {
		t.Fatalf("unexpected result out=%q attempts=%d calls=%d", out, attempts, calls)
	}
	if sleeps != 4 {
		t.Fatalf("expected 4 sleeps between 5 attempts, got %d", sleeps)
	}
}

func TestRetryPolicyLogsThroughContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := zerolog.New(&buf).With().Str("request_id", "req-1").Logger().WithContext(context.Background())

	p := RetryPolicy{
		Attempts: 2,
		Sleep:    func(context.Context, time.Duration) error { return nil },
	}
	if _, _, err := p.Run(ctx, "s1", func(context.Context) (string, error) {
		return "", errors.New("down")
	}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 2 warnings and 1 error line, got %q", buf.String())
	}
	for _, line := range lines {
		if !strings.Contains(line, `"request_id":"req-1"`) {
			t.Fatalf("log line misses request id: %s", line)
		}
	}
	if !strings.Contains(lines[2], contractx.ErrRetriesExhausted.Error()+": down") {
		t.Fatalf("unexpected exhaustion line: %s", lines[2])
	}
}

func TestRetryPolicyStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	p := RetryPolicy{
		Attempts: 5,
		Delay:    time.Hour,
		Sleep: func(ctx context.Context, d time.Duration) error {
			cancel()
			return SleepContext(ctx, d)
		},
	}

	calls := 0
	_, _, err := p.Run(ctx, "s1", func(context.Context) (string, error) {
		calls++
		return "", errors.New("down")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
}

func TestRetryPolicyDefaults(t *testing.T) {
	t.Parallel()

	p := RetryPolicy{}.normalized()
	if p.Attempts != DefaultAttempts || p.Sleep == nil {
		t.Fatalf("unexpected defaults: %+v", p)
	}
}
