package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	contractx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/contract"
)

const DefaultAddr = "127.0.0.1:52001"

type Config struct {
	Addr            string        `envconfig:"ADDR" split_words:"true" default:"127.0.0.1:52001"`
	TurnTimeout     time.Duration `envconfig:"TURN_TIMEOUT" split_words:"true" default:"2m"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" split_words:"true" default:"15s"`
	AllowedOrigin   string        `envconfig:"ALLOWED_ORIGIN" split_words:"true" default:"*"`
}

// Concierge is what the HTTP layer needs from the chat service.
type Concierge interface {
	Chat(ctx context.Context, sessionID string, text string) (contractx.Reply, error)
	Restart(ctx context.Context, sessionID string) (contractx.Reply, error)
	History(ctx context.Context, sessionID string) ([]contractx.Message, error)
}

type Server struct {
	concierge Concierge

	turnTimeout   time.Duration
	allowedOrigin string

	mux    *http.ServeMux
	server *http.Server
}

type Option func(*Server)

// WithTurnTimeout bounds a single chat or restart call, retries included.
func WithTurnTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.turnTimeout = d
	}
}

func WithAllowedOrigin(origin string) Option {
	return func(s *Server) {
		if origin != "" {
			s.allowedOrigin = origin
		}
	}
}

func NewServer(concierge Concierge, opts ...Option) *Server {
	s := &Server{
		concierge:     concierge,
		allowedOrigin: "*",
		mux:           http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return requestLogger(s.cors(s.mux))
}

func (s *Server) ListenAndServe(addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /chat", s.handleChat)
	s.mux.HandleFunc("POST /restart", s.handleRestart)
	s.mux.HandleFunc("GET /history", s.handleHistory)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
}

func (s *Server) turnContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.turnTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.turnTimeout)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
