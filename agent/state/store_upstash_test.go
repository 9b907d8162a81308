package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	contractx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/contract"
)

type commandRecorder struct {
	mu       sync.Mutex
	commands [][]any
	paths    []string
	auth     []string
}

func (r *commandRecorder) record(t *testing.T, req *http.Request) []any {
	t.Helper()
	defer req.Body.Close()

	var cmd []any
	if err := json.NewDecoder(req.Body).Decode(&cmd); err != nil {
		t.Errorf("decode command: %v", err)
		return nil
	}
	r.mu.Lock()
	r.commands = append(r.commands, cmd)
	r.paths = append(r.paths, req.URL.Path)
	r.auth = append(r.auth, req.Header.Get("Authorization"))
	r.mu.Unlock()
	return cmd
}

func newTestUpstashStore(t *testing.T, handler http.HandlerFunc, opts ...StoreOption) *UpstashRedisStore {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]StoreOption{WithHTTPClient(server.Client())}, opts...)
	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{
			URL:   server.URL,
			Token: "token",
		},
		opts...,
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}
	return store
}

func TestUpstashRedisStoreRedisKey(t *testing.T) {
	t.Parallel()

	store := &UpstashRedisStore{}
	got, err := store.redisKey(" abc ")
	if err != nil {
		t.Fatalf("redisKey() error = %v", err)
	}
	if got != "concierge:history:abc" {
		t.Fatalf("redisKey() = %q, want %q", got, "concierge:history:abc")
	}
}

func TestUpstashRedisStoreRedisKeyEmptySession(t *testing.T) {
	t.Parallel()

	store := &UpstashRedisStore{}
	_, err := store.redisKey("   ")
	if !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("redisKey() error = %v, want ErrInvalidSession", err)
	}
}

func TestNewUpstashRedisStoreValidatesConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewUpstashRedisStore(UpstashRedisConfig{Token: "token"}); err == nil {
		t.Fatal("expected error for missing url")
	}
	if _, err := NewUpstashRedisStore(UpstashRedisConfig{URL: "http://localhost"}); err == nil {
		t.Fatal("expected error for missing token")
	}
	if _, err := NewUpstashRedisStore(UpstashRedisConfig{URL: "http://localhost", Token: "t"}, WithTTL(-time.Second)); err == nil {
		t.Fatal("expected error for negative ttl")
	}
}

func TestUpstashRedisStoreAppendPushesAndExpires(t *testing.T) {
	t.Parallel()

	rec := &commandRecorder{}
	store := newTestUpstashStore(t, func(w http.ResponseWriter, r *http.Request) {
		rec.record(t, r)
		fmt.Fprint(w, `[{"result":2},{"result":1}]`)
	}, WithTTL(90*time.Second), WithKeyPrefix("test:"))

	err := store.Append(context.Background(), "session-1",
		contractx.UserMessage("bonjour"),
		contractx.AssistantMessage("Bienvenue"),
	)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if len(rec.commands) != 1 || rec.paths[0] != "/multi-exec" {
		t.Fatalf("expected a single transaction, got %#v at %v", rec.commands, rec.paths)
	}
	tx := rec.commands[0]
	if len(tx) != 2 {
		t.Fatalf("expected 2 commands in the transaction, got %#v", tx)
	}
	push := tx[0].([]any)
	if push[0] != "RPUSH" || push[1] != "test:session-1" || len(push) != 4 {
		t.Fatalf("unexpected push command: %#v", push)
	}
	var first contractx.Message
	if err := json.Unmarshal([]byte(push[2].(string)), &first); err != nil {
		t.Fatalf("decode pushed message: %v", err)
	}
	if first.Role != contractx.RoleUser || first.Content != "bonjour" {
		t.Fatalf("unexpected pushed message: %#v", first)
	}

	expire := tx[1].([]any)
	if expire[0] != "EXPIRE" || expire[2] != float64(90) {
		t.Fatalf("unexpected expire command: %#v", expire)
	}
	if rec.auth[0] != "Bearer token" {
		t.Fatalf("unexpected auth header: %q", rec.auth[0])
	}
}

func TestUpstashRedisStoreAppendWithoutTTL(t *testing.T) {
	t.Parallel()

	rec := &commandRecorder{}
	store := newTestUpstashStore(t, func(w http.ResponseWriter, r *http.Request) {
		rec.record(t, r)
		fmt.Fprint(w, `{"result":1}`)
	}, WithTTL(0))

	if err := store.Append(context.Background(), "s", contractx.UserMessage("x")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if len(rec.commands) != 1 || rec.commands[0][0] != "RPUSH" || rec.paths[0] != "/" {
		t.Fatalf("expected only RPUSH, got %#v", rec.commands)
	}
}

func TestUpstashRedisStoreAppendToleratesExpireFailure(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		list  []any
		calls int
	)
	store := newTestUpstashStore(t, func(w http.ResponseWriter, r *http.Request) {
		var tx [][]any
		if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
			t.Errorf("decode transaction: %v", err)
			return
		}
		mu.Lock()
		calls++
		list = append(list, tx[0][2:]...)
		n := len(list)
		mu.Unlock()
		fmt.Fprintf(w, `[{"result":%d},{"error":"ERR expire unavailable"}]`, n)
	})

	err := store.Append(context.Background(), "s",
		contractx.UserMessage("bonjour"),
		contractx.AssistantMessage("Bienvenue"),
	)
	if err != nil {
		t.Fatalf("Append() error = %v, stored messages must not be reported as failed", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 || len(list) != 2 {
		t.Fatalf("expected one write of 2 messages, got calls=%d stored=%d", calls, len(list))
	}
}

func TestUpstashRedisStoreAppendFailsWhenPushFails(t *testing.T) {
	t.Parallel()

	store := newTestUpstashStore(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"error":"WRONGTYPE"},{"result":1}]`)
	})

	err := store.Append(context.Background(), "s", contractx.UserMessage("x"))
	if err == nil || err.Error() != "WRONGTYPE" {
		t.Fatalf("Append() error = %v, want WRONGTYPE", err)
	}
}

func TestUpstashRedisStoreAppendSurfacesAbortedTransaction(t *testing.T) {
	t.Parallel()

	store := newTestUpstashStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"error":"transaction aborted"}`)
	})

	if err := store.Append(context.Background(), "s", contractx.UserMessage("x")); err == nil {
		t.Fatal("expected error when the transaction is rejected")
	}
}

func TestUpstashRedisStoreAppendRejectsInvalidRole(t *testing.T) {
	t.Parallel()

	store := newTestUpstashStore(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	err := store.Append(context.Background(), "s", contractx.Message{Role: "tool", Content: "x"})
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("Append() error = %v, want ErrInvalidRole", err)
	}
}

func TestUpstashRedisStoreLoadDecodesList(t *testing.T) {
	t.Parallel()

	msgs := []contractx.Message{
		contractx.SystemMessage("prompt"),
		contractx.UserMessage("hello"),
	}
	encoded, err := encodeMessages(msgs)
	if err != nil {
		t.Fatalf("encodeMessages() error = %v", err)
	}
	payload, err := json.Marshal(encoded)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	rec := &commandRecorder{}
	store := newTestUpstashStore(t, func(w http.ResponseWriter, r *http.Request) {
		rec.record(t, r)
		fmt.Fprintf(w, `{"result":%s}`, payload)
	})

	got, err := store.Load(context.Background(), "session-2")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 2 || got[0] != msgs[0] || got[1] != msgs[1] {
		t.Fatalf("Load() = %#v", got)
	}

	cmd := rec.commands[0]
	if cmd[0] != "LRANGE" || cmd[1] != "concierge:history:session-2" {
		t.Fatalf("unexpected command: %#v", cmd)
	}
}

func TestUpstashRedisStoreLoadUnknownSessionIsEmpty(t *testing.T) {
	t.Parallel()

	store := newTestUpstashStore(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result":[]}`)
	})

	got, err := store.Load(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty history, got %#v", got)
	}
}

func TestUpstashRedisStoreSurfacesRedisError(t *testing.T) {
	t.Parallel()

	store := newTestUpstashStore(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":"WRONGTYPE"}`)
	})

	_, err := store.Load(context.Background(), "s")
	if err == nil || err.Error() != "WRONGTYPE" {
		t.Fatalf("Load() error = %v, want WRONGTYPE", err)
	}
}

func TestUpstashRedisStoreSurfacesHTTPStatus(t *testing.T) {
	t.Parallel()

	store := newTestUpstashStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `unauthorized`)
	})

	if err := store.Reset(context.Background(), "s"); err == nil {
		t.Fatal("expected error on non-2xx status")
	}
}

func TestUpstashRedisStoreResetDeletesKey(t *testing.T) {
	t.Parallel()

	rec := &commandRecorder{}
	store := newTestUpstashStore(t, func(w http.ResponseWriter, r *http.Request) {
		rec.record(t, r)
		fmt.Fprint(w, `{"result":1}`)
	})

	if err := store.Reset(context.Background(), "session-3"); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	cmd := rec.commands[0]
	if cmd[0] != "DEL" || cmd[1] != "concierge:history:session-3" {
		t.Fatalf("unexpected command: %#v", cmd)
	}
}

func TestTTLSecondsRoundsUp(t *testing.T) {
	t.Parallel()

	cases := map[time.Duration]int64{
		500 * time.Millisecond:  1,
		time.Second:             1,
		1500 * time.Millisecond: 2,
		time.Hour:               3600,
	}
	for in, want := range cases {
		if got := ttlSeconds(in); got != want {
			t.Fatalf("ttlSeconds(%v) = %d, want %d", in, got, want)
		}
	}
}
