package search

import (
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/contract"
)

type Config struct {
	TavilyAPIKey  string        `envconfig:"TAVILY_API_KEY" split_words:"true"`
	DuckDuckGoURL string        `envconfig:"DUCKDUCKGO_URL" split_words:"true" default:"http://api.duckduckgo.com/"`
	Timeout       time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// New prefers Tavily when a key is configured and falls back to DuckDuckGo.
func New(cfg Config) (contractx.Searcher, error) {
	if strings.TrimSpace(cfg.TavilyAPIKey) != "" {
		tv, err := NewTavily(cfg.TavilyAPIKey)
		if err != nil {
			return nil, err
		}
		if cfg.Timeout > 0 {
			tv.WithHTTPClient(newHTTPClient(cfg.Timeout))
		}
		return tv, nil
	}
	return NewDuckDuckGo(cfg.DuckDuckGoURL, cfg.Timeout), nil
}
