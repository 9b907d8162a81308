package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/contract"
)

const (
	defaultStoreKeyPrefix = "concierge:history:"
	defaultStoreTTL       = 24 * time.Hour
	maxResponseSizeBytes  = 2 << 20
)

var _ contractx.HistoryStore = (*UpstashRedisStore)(nil)

// StoreOption customizes UpstashRedisStore.
type StoreOption func(*UpstashRedisStore)

func WithKeyPrefix(prefix string) StoreOption {
	return func(s *UpstashRedisStore) {
		trimmed := strings.TrimSpace(prefix)
		if trimmed != "" {
			s.keyPrefix = trimmed
		}
	}
}

func WithTTL(ttl time.Duration) StoreOption {
	return func(s *UpstashRedisStore) {
		s.ttl = ttl
	}
}

func WithHTTPClient(client *http.Client) StoreOption {
	return func(s *UpstashRedisStore) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// UpstashRedisStore keeps each session history as a Redis list, spoken to
// through the Upstash REST API.
type UpstashRedisStore struct {
	baseURL    string
	token      string
	httpClient *http.Client
	keyPrefix  string
	ttl        time.Duration
}

type redisRESTResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

type UpstashRedisConfig struct {
	URL     string        `envconfig:"URL" split_words:"true"`
	Token   string        `envconfig:"TOKEN" split_words:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
	TTL     time.Duration `envconfig:"TTL" split_words:"true" default:"24h"`
}

func (c UpstashRedisConfig) Enabled() bool {
	return strings.TrimSpace(c.URL) != ""
}

func NewUpstashRedisStore(cfg UpstashRedisConfig, opts ...StoreOption) (*UpstashRedisStore, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, errors.New("upstash redis url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid redis rest url: %w", err)
	}

	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("upstash redis token is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultStoreTTL
	}

	store := &UpstashRedisStore{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		keyPrefix: defaultStoreKeyPrefix,
		ttl:       ttl,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}

	if store.ttl < 0 {
		return nil, errors.New("ttl must be >= 0")
	}

	return store, nil
}

func (s *UpstashRedisStore) Load(ctx context.Context, sessionID string) ([]contractx.Message, error) {
	key, err := s.redisKey(sessionID)
	if err != nil {
		return nil, err
	}

	resp, err := s.exec(ctx, []any{"LRANGE", key, 0, -1})
	if err != nil {
		return nil, err
	}

	result := bytes.TrimSpace(resp.Result)
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return []contractx.Message{}, nil
	}

	var encoded []string
	if err := json.Unmarshal(result, &encoded); err != nil {
		return nil, fmt.Errorf("decode history payload: %w", err)
	}

	return decodeMessages(encoded)
}

func (s *UpstashRedisStore) Append(ctx context.Context, sessionID string, msgs ...contractx.Message) error {
	key, err := s.redisKey(sessionID)
	if err != nil {
		return err
	}
	if err := validateMessages(msgs); err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}

	encoded, err := encodeMessages(msgs)
	if err != nil {
		return err
	}

	push := make([]any, 0, len(encoded)+2)
	push = append(push, "RPUSH", key)
	for _, e := range encoded {
		push = append(push, e)
	}
	if s.ttl <= 0 {
		_, err := s.exec(ctx, push)
		return err
	}

	// RPUSH and EXPIRE go out as one MULTI/EXEC transaction.
	results, err := s.multiExec(ctx, [][]any{push, {"EXPIRE", key, ttlSeconds(s.ttl)}})
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return errors.New("empty redis transaction response")
	}
	if results[0].Error != "" {
		return errors.New(results[0].Error)
	}
	if len(results) > 1 && results[1].Error != "" {
		log.Ctx(ctx).Warn().
			Str("key", key).
			Str("error", results[1].Error).
			Msg("history appended but expiry not refreshed")
	}
	return nil
}

func (s *UpstashRedisStore) Reset(ctx context.Context, sessionID string) error {
	key, err := s.redisKey(sessionID)
	if err != nil {
		return err
	}
	_, err = s.exec(ctx, []any{"DEL", key})
	return err
}

func (s *UpstashRedisStore) redisKey(sessionID string) (string, error) {
	sessionID, err := normalizeSessionID(sessionID)
	if err != nil {
		return "", err
	}
	prefix := strings.TrimSpace(s.keyPrefix)
	if prefix == "" {
		prefix = defaultStoreKeyPrefix
	}
	return prefix + sessionID, nil
}

func (s *UpstashRedisStore) exec(ctx context.Context, command []any) (*redisRESTResponse, error) {
	if len(command) == 0 {
		return nil, errors.New("empty redis command")
	}

	raw, err := s.post(ctx, "", command)
	if err != nil {
		return nil, err
	}

	var parsed redisRESTResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode redis response: %w", err)
	}
	if parsed.Error != "" {
		return nil, errors.New(parsed.Error)
	}
	return &parsed, nil
}

// multiExec runs commands through the /multi-exec transaction endpoint and
// returns one response per command.
func (s *UpstashRedisStore) multiExec(ctx context.Context, commands [][]any) ([]redisRESTResponse, error) {
	if len(commands) == 0 {
		return nil, errors.New("empty redis transaction")
	}

	raw, err := s.post(ctx, "/multi-exec", commands)
	if err != nil {
		return nil, err
	}

	var results []redisRESTResponse
	if err := json.Unmarshal(raw, &results); err != nil {
		var failed redisRESTResponse
		if json.Unmarshal(raw, &failed) == nil && failed.Error != "" {
			return nil, errors.New(failed.Error)
		}
		return nil, fmt.Errorf("decode redis transaction response: %w", err)
	}
	return results, nil
}

func (s *UpstashRedisStore) post(ctx context.Context, path string, payload any) ([]byte, error) {
	if s == nil {
		return nil, errors.New("nil store")
	}
	if strings.TrimSpace(s.baseURL) == "" {
		return nil, errors.New("empty redis url")
	}
	if strings.TrimSpace(s.token) == "" {
		return nil, errors.New("empty redis token")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal redis command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build redis request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute redis request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read redis response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("redis http status=%d body=%s", resp.StatusCode, string(raw))
	}
	return raw, nil
}

func encodeMessages(msgs []contractx.Message) ([]string, error) {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		payload, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("marshal history message: %w", err)
		}
		out = append(out, string(payload))
	}
	return out, nil
}

func decodeMessages(encoded []string) ([]contractx.Message, error) {
	out := make([]contractx.Message, 0, len(encoded))
	for i, e := range encoded {
		var m contractx.Message
		if err := json.Unmarshal([]byte(e), &m); err != nil {
			return nil, fmt.Errorf("unmarshal history message %d: %w", i, err)
		}
		if !m.Role.Valid() {
			return nil, fmt.Errorf("history message %d: %w", i, ErrInvalidRole)
		}
		out = append(out, m)
	}
	return out, nil
}

func ttlSeconds(ttl time.Duration) int64 {
	seconds := ttl / time.Second
	if seconds <= 0 {
		return 1
	}
	if ttl%time.Second != 0 {
		seconds++
	}
	return int64(seconds)
}
