package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	contractx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/contract"
)

func TestMemoryStoreAppendLoadReset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	got, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty history, got %#v", got)
	}

	if err := store.Append(ctx, "s1",
		contractx.SystemMessage("prompt"),
		contractx.UserMessage("bonjour"),
	); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := store.Append(ctx, "s1", contractx.AssistantMessage("Bienvenue")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err = store.Load(ctx, " s1 ")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}
	if got[0].Role != contractx.RoleSystem || got[2].Content != "Bienvenue" {
		t.Fatalf("unexpected order: %#v", got)
	}

	if err := store.Reset(ctx, "s1"); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	got, _ = store.Load(ctx, "s1")
	if len(got) != 0 {
		t.Fatalf("expected empty history after reset, got %#v", got)
	}
}

func TestMemoryStoreLoadReturnsCopy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Append(ctx, "s", contractx.UserMessage("original"))

	got, _ := store.Load(ctx, "s")
	got[0].Content = "mutated"

	again, _ := store.Load(ctx, "s")
	if again[0].Content != "original" {
		t.Fatalf("store leaked internal slice: %#v", again)
	}
}

func TestMemoryStoreSessionsAreIsolated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Append(ctx, "a", contractx.UserMessage("a"))
	_ = store.Append(ctx, "b", contractx.UserMessage("b"))

	a, _ := store.Load(ctx, "a")
	if len(a) != 1 || a[0].Content != "a" {
		t.Fatalf("unexpected session a: %#v", a)
	}
}

func TestMemoryStoreRejectsEmptySession(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	if _, err := store.Load(context.Background(), " "); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("Load() error = %v, want ErrInvalidSession", err)
	}
	if err := store.Append(context.Background(), "", contractx.UserMessage("x")); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("Append() error = %v, want ErrInvalidSession", err)
	}
}

func TestMemoryStoreRejectsInvalidRole(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	err := store.Append(context.Background(), "s", contractx.Message{Role: "bot", Content: "x"})
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("Append() error = %v, want ErrInvalidRole", err)
	}
}

func TestMemoryStoreConcurrentAppends(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Append(ctx, "s", contractx.UserMessage(fmt.Sprintf("m%d", i)))
		}(i)
	}
	wg.Wait()

	got, _ := store.Load(ctx, "s")
	if len(got) != 50 {
		t.Fatalf("expected 50 messages, got %d", len(got))
	}
}
