package concierge

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/contract"
	nodex "github.com/tanpawarit/Chative-Hotel-Concierge/agent/nodes"
	promptx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/prompt"
	statex "github.com/tanpawarit/Chative-Hotel-Concierge/agent/state"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = statex.ErrInvalidSession
)

type Config struct {
	Persona          string        `envconfig:"PERSONA" split_words:"true" default:"Kimrau"`
	Hotel            string        `envconfig:"HOTEL" split_words:"true" default:"Hôtel California"`
	MaxAttempts      int           `envconfig:"MAX_ATTEMPTS" split_words:"true" default:"5"`
	RetryDelay       time.Duration `envconfig:"RETRY_DELAY" split_words:"true" default:"1s"`
	HistoryWindow    int           `envconfig:"HISTORY_WINDOW" split_words:"true" default:"0"`
	BootstrapOnStart bool          `envconfig:"BOOTSTRAP_ON_START" split_words:"true" default:"true"`
}

func (c Config) Prompt() promptx.Config {
	return promptx.Config{Persona: c.Persona, Hotel: c.Hotel}
}

// Service runs concierge turns. Turns of one session are serialized; turns
// of different sessions run concurrently.
type Service struct {
	store    contractx.HistoryStore
	agent    contractx.Agent
	archiver contractx.Archiver
	prompts  promptx.PromptSet

	retry  nodex.RetryPolicy
	window int

	chatRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	mu      sync.Mutex
	locks   map[string]*sessionLock
	pending map[string]struct{}
}

// sessionLock is dropped from the table once no caller holds or waits on it.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

type Option func(*Service)

// WithSleep replaces the wait between agent attempts.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Service) {
		if sleep != nil {
			s.retry.Sleep = sleep
		}
	}
}

func WithArchiver(archiver contractx.Archiver) Option {
	return func(s *Service) {
		if archiver != nil {
			s.archiver = archiver
		}
	}
}

func New(
	store contractx.HistoryStore,
	agent contractx.Agent,
	prompts promptx.PromptSet,
	cfg Config,
	opts ...Option,
) (*Service, error) {
	if store == nil {
		return nil, errors.New("history store is required")
	}
	if agent == nil {
		return nil, errors.New("agent is required")
	}
	if strings.TrimSpace(prompts.System) == "" || strings.TrimSpace(prompts.Greeting) == "" {
		return nil, contractx.ErrPromptMissing
	}

	delay := cfg.RetryDelay
	if delay < 0 {
		delay = nodex.DefaultDelay
	}

	s := &Service{
		store:    store,
		agent:    agent,
		archiver: noopArchiver{},
		prompts:  prompts,
		retry: nodex.RetryPolicy{
			Attempts: cfg.MaxAttempts,
			Delay:    delay,
			Sleep:    nodex.SleepContext,
		},
		window:  cfg.HistoryWindow,
		locks:   map[string]*sessionLock{},
		pending: map[string]struct{}{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	runner, err := s.compileChatGraph(context.Background())
	if err != nil {
		return nil, err
	}
	s.chatRunner = runner
	return s, nil
}

// Chat handles one guest message and returns the agent reply. Agent
// failures are retried and then swallowed; the reply may be empty.
func (s *Service) Chat(ctx context.Context, sessionID string, text string) (contractx.Reply, error) {
	sessionID = sessionOrDefault(sessionID)
	unlock := s.lock(sessionID)
	defer unlock()

	out, err := s.chatRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		return contractx.Reply{}, err
	}
	s.markPending(sessionID)

	log.Ctx(ctx).Debug().
		Str("session_id", sessionID).
		Bool("closing", out.Reply.Closing).
		Int("attempts", out.Reply.Attempts).
		Msg("concierge turn done")
	return out.Reply, nil
}

// Bootstrap starts a session with the greeting exchange:
// system instruction, greeting request and the agent's greeting.
func (s *Service) Bootstrap(ctx context.Context, sessionID string) (contractx.Reply, error) {
	sessionID = sessionOrDefault(sessionID)
	unlock := s.lock(sessionID)
	defer unlock()

	return s.bootstrapLocked(ctx, sessionID)
}

// Restart archives the session, clears it and greets the guest again.
func (s *Service) Restart(ctx context.Context, sessionID string) (contractx.Reply, error) {
	sessionID = sessionOrDefault(sessionID)
	unlock := s.lock(sessionID)
	defer unlock()

	if err := s.archiveLocked(ctx, sessionID); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("session_id", sessionID).Msg("archive before restart failed")
	}
	if err := s.store.Reset(ctx, sessionID); err != nil {
		return contractx.Reply{}, fmt.Errorf("reset history: %w", err)
	}
	return s.bootstrapLocked(ctx, sessionID)
}

// History returns the guest visible part of a session.
func (s *Service) History(ctx context.Context, sessionID string) ([]contractx.Message, error) {
	history, err := s.store.Load(ctx, sessionOrDefault(sessionID))
	if err != nil {
		return nil, err
	}
	return contractx.Visible(history), nil
}

// Archive hands the current history of a session to the archiver.
func (s *Service) Archive(ctx context.Context, sessionID string) error {
	sessionID = sessionOrDefault(sessionID)
	unlock := s.lock(sessionID)
	defer unlock()

	return s.archiveLocked(ctx, sessionID)
}

// ArchiveAll archives every session with unarchived history.
func (s *Service) ArchiveAll(ctx context.Context) error {
	var errs []error
	for _, id := range s.Sessions() {
		if err := s.Archive(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// Sessions lists, sorted, the sessions written to since their last archive.
func (s *Service) Sessions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Service) bootstrapLocked(ctx context.Context, sessionID string) (contractx.Reply, error) {
	prompt := []contractx.Message{
		contractx.SystemMessage(s.prompts.System),
		contractx.UserMessage(s.prompts.Greeting),
	}

	greeting, attempts, err := s.retry.Run(ctx, sessionID, func(ctx context.Context) (string, error) {
		return s.agent.Generate(ctx, prompt)
	})
	if err != nil {
		return contractx.Reply{}, err
	}
	greeting = strings.TrimSpace(greeting)

	msgs := prompt
	if greeting != "" {
		msgs = append(msgs, contractx.AssistantMessage(greeting))
	}
	if err := s.store.Append(ctx, sessionID, msgs...); err != nil {
		return contractx.Reply{}, fmt.Errorf("save greeting: %w", err)
	}
	s.markPending(sessionID)

	log.Ctx(ctx).Info().
		Str("session_id", sessionID).
		Int("attempts", attempts).
		Bool("greeted", greeting != "").
		Msg("session bootstrapped")

	return contractx.Reply{SessionID: sessionID, Text: greeting, Attempts: attempts}, nil
}

func (s *Service) archiveLocked(ctx context.Context, sessionID string) error {
	history, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if len(contractx.Visible(history)) > 0 {
		if err := s.archiver.Archive(ctx, sessionID, history); err != nil {
			return err
		}
	}

	s.mu.Lock()
	delete(s.pending, sessionID)
	s.mu.Unlock()
	return nil
}

func (s *Service) markPending(sessionID string) {
	s.mu.Lock()
	s.pending[sessionID] = struct{}{}
	s.mu.Unlock()
}

func (s *Service) lock(sessionID string) func() {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		s.locks[sessionID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, sessionID)
		}
		s.mu.Unlock()
	}
}


func sessionOrDefault(sessionID string) string {
	if id := strings.TrimSpace(sessionID); id != "" {
		return id
	}
	return statex.DefaultSessionID
}

type noopArchiver struct{}

func (noopArchiver) Archive(context.Context, string, []contractx.Message) error {
	return nil
}
