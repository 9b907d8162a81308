package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/contract"
)

const (
	DefaultDuckDuckGoURL = "http://api.duckduckgo.com/"

	NoResultText    = "Aucune information trouvée."
	SearchErrorText = "Erreur lors de la recherche."

	maxResponseSizeBytes = 2 << 20
)

var _ contractx.Searcher = (*DuckDuckGo)(nil)

// DuckDuckGo queries the instant answer API and keeps only the abstract.
type DuckDuckGo struct {
	baseURL    string
	httpClient *http.Client
}

type duckDuckGoResponse struct {
	AbstractText string `json:"AbstractText"`
	Answer       string `json:"Answer"`
}

func NewDuckDuckGo(baseURL string, timeout time.Duration) *DuckDuckGo {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultDuckDuckGoURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DuckDuckGo{
		baseURL:    baseURL,
		httpClient: newHTTPClient(timeout),
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// WithHTTPClient swaps the transport, mostly for tests.
func (d *DuckDuckGo) WithHTTPClient(client *http.Client) *DuckDuckGo {
	if client != nil {
		d.httpClient = client
	}
	return d
}

// Search never fails on a bad upstream status: the model receives a short
// French notice instead, so the conversation can continue.
func (d *DuckDuckGo) Search(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("%w: search query is empty", contractx.ErrValidation)
	}

	params := url.Values{
		"q":       {query},
		"format":  {"json"},
		"no_html": {"1"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build duckduckgo request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute duckduckgo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return SearchErrorText, nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return "", fmt.Errorf("read duckduckgo response: %w", err)
	}

	var parsed duckDuckGoResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode duckduckgo response: %w", err)
	}

	if text := strings.TrimSpace(parsed.AbstractText); text != "" {
		return text, nil
	}
	if text := strings.TrimSpace(parsed.Answer); text != "" {
		return text, nil
	}
	return NoResultText, nil
}
