package search

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	tavilygo "github.com/diverged/tavily-go"
	tavilymodels "github.com/diverged/tavily-go/models"
	contractx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/contract"
)

var _ contractx.Searcher = (*Tavily)(nil)

type Tavily struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewTavily(apiKey string) (*Tavily, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: tavily api key is required", contractx.ErrValidation)
	}
	return &Tavily{apiKey: apiKey}, nil
}

func (t *Tavily) WithBaseURL(baseURL string) *Tavily {
	t.baseURL = strings.TrimSpace(baseURL)
	return t
}

func (t *Tavily) WithHTTPClient(client *http.Client) *Tavily {
	t.httpClient = client
	return t
}

func (t *Tavily) Search(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("%w: search query is empty", contractx.ErrValidation)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := tavilygo.NewClient(t.apiKey)
	if t.baseURL != "" {
		client.BaseURL = t.baseURL
	}
	if t.httpClient != nil {
		client.HTTPClient = t.httpClient
	}

	resp, err := tavilygo.Search(client, tavilymodels.SearchRequest{
		Query:         query,
		SearchDepth:   "basic",
		IncludeAnswer: true,
	})
	if err != nil {
		return "", fmt.Errorf("tavily search: %w", err)
	}

	if answer := strings.TrimSpace(resp.Answer); answer != "" {
		return answer, nil
	}
	for _, r := range resp.Results {
		if content := strings.TrimSpace(r.Content); content != "" {
			return content, nil
		}
	}
	return NoResultText, nil
}
