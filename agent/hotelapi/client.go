package hotelapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

const (
	DefaultBaseURL       = "https://app-584240518682.europe-west9.run.app/api"
	maxResponseSizeBytes = 4 << 20
)

var ErrInvalidID = errors.New("id must be > 0")

type Config struct {
	BaseURL string        `envconfig:"BASE_URL" split_words:"true" default:"https://app-584240518682.europe-west9.run.app/api"`
	Token   string        `envconfig:"TOKEN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"15s"`
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// Client talks to the hotel back office REST API. Every call carries the
// static "Token" authorization header.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, errors.Wrap(err, "invalid hotel api url")
	}

	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("hotel api token is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

func (c *Client) ListRestaurants(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "list restaurants", "/restaurants/", nil)
}

func (c *Client) ListSpas(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "list spas", "/spas/", nil)
}

func (c *Client) ListMeals(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "list meals", "/meals/", nil)
}

// Schema returns the OpenAPI 3 document describing the hotel API.
func (c *Client) Schema(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "get schema", "/schema/", url.Values{"format": {"json"}})
}

func (c *Client) GetClient(ctx context.Context, id int) (json.RawMessage, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	return c.get(ctx, "get client", "/clients/"+strconv.Itoa(id)+"/", nil)
}

func (c *Client) SearchClients(ctx context.Context, search string) (json.RawMessage, error) {
	return c.get(ctx, "search clients", "/clients/", url.Values{"search": {strings.TrimSpace(search)}})
}

func (c *Client) CreateClient(ctx context.Context, in Guest) (json.RawMessage, error) {
	return c.do(ctx, "create client", http.MethodPost, "/clients/", nil, in, http.StatusOK, http.StatusCreated)
}

func (c *Client) UpdateClient(ctx context.Context, id int, in Guest) (json.RawMessage, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	return c.do(ctx, "update client", http.MethodPut, "/clients/"+strconv.Itoa(id)+"/", nil, in, http.StatusOK)
}

func (c *Client) DeleteClient(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidID
	}
	_, err := c.do(ctx, "delete client", http.MethodDelete, "/clients/"+strconv.Itoa(id)+"/", nil, nil, http.StatusNoContent)
	return err
}

func (c *Client) GetReservation(ctx context.Context, id int) (json.RawMessage, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	return c.get(ctx, "get reservation", "/reservations/"+strconv.Itoa(id)+"/", nil)
}

func (c *Client) ListClientReservations(ctx context.Context, clientID int) (json.RawMessage, error) {
	if clientID <= 0 {
		return nil, ErrInvalidID
	}
	return c.get(ctx, "list client reservations", "/reservations/", url.Values{"client": {strconv.Itoa(clientID)}})
}

func (c *Client) CreateReservation(ctx context.Context, in Reservation) (json.RawMessage, error) {
	return c.do(ctx, "create reservation", http.MethodPost, "/reservations/", nil, in, http.StatusOK, http.StatusCreated)
}

func (c *Client) UpdateReservation(ctx context.Context, id int, in Reservation) (json.RawMessage, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	return c.do(ctx, "update reservation", http.MethodPut, "/reservations/"+strconv.Itoa(id)+"/", nil, in, http.StatusOK)
}

func (c *Client) DeleteReservation(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidID
	}
	_, err := c.do(ctx, "delete reservation", http.MethodDelete, "/reservations/"+strconv.Itoa(id)+"/", nil, nil, http.StatusNoContent)
	return err
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values) (json.RawMessage, error) {
	return c.do(ctx, op, http.MethodGet, path, query, nil, http.StatusOK)
}

func (c *Client) do(
	ctx context.Context,
	op string,
	method string,
	path string,
	query url.Values,
	body any,
	okStatuses ...int,
) (json.RawMessage, error) {
	if c == nil {
		return nil, errors.New("nil hotel api client")
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrapf(err, "hotel api %s: marshal body", op)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, errors.Wrapf(err, "hotel api %s: build request", op)
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "hotel api %s", op)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, errors.Wrapf(err, "hotel api %s: read response", op)
	}

	if !slices.Contains(okStatuses, resp.StatusCode) {
		return nil, errors.WithStack(&APIError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))})
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, errors.Newf("hotel api %s: response is not valid json", op)
	}
	return json.RawMessage(raw), nil
}
