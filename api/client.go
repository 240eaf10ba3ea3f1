package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rescp17/stageCatalog/pkg/catalog"
)

const clientIDHeader = "X-Client-ID"

// DefaultTimeout bounds every request made through a Client.
const DefaultTimeout = 30 * time.Second

// clientIDInjector is a custom http.RoundTripper that tags each request with the client's ID.
type clientIDInjector struct {
	clientID string
	next     http.RoundTripper
}

// RoundTrip intercepts the request, adds the client ID header, and passes it to the next transport.
func (t *clientIDInjector) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set(clientIDHeader, t.clientID)
	return t.next.RoundTrip(req)
}

// Client talks to a catalog store over HTTP.
type Client struct {
	HttpClient *http.Client
	baseURL    string
	clientID   string
}

// NewClient creates a client for the store at baseURL (for example
// http://localhost:3004). A zero timeout selects DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	clientID := uuid.New().String()
	return &Client{
		HttpClient: &http.Client{
			Timeout: timeout,
			Transport: &clientIDInjector{
				clientID: clientID,
				next:     http.DefaultTransport,
			},
		},
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: clientID,
	}
}

// BaseURL returns the store address the client was created for.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ClientID returns the identifier sent with every request.
func (c *Client) ClientID() string {
	return c.clientID
}

// ListEvents fetches the events matching filter. FilterAll asks for everything.
func (c *Client) ListEvents(ctx context.Context, filter catalog.Filter) ([]catalog.Event, error) {
	u := c.baseURL + "/events"
	if kind, scoped := filter.Kind(); scoped {
		u += "?" + url.Values{"type": {string(kind)}}.Encode()
	}

	var events []catalog.Event
	if err := c.do(ctx, http.MethodGet, u, nil, http.StatusOK, &events); err != nil {
		return nil, fmt.Errorf("failed to list %s events: %w", filter, err)
	}
	if events == nil {
		events = []catalog.Event{}
	}
	return events, nil
}

// CreateEvent submits a new event and returns the store's echo of it,
// including the identifier the store assigned.
func (c *Client) CreateEvent(ctx context.Context, candidate catalog.Candidate) (catalog.Event, error) {
	body, err := json.Marshal(candidate)
	if err != nil {
		return catalog.Event{}, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	var created catalog.Event
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/events", body, http.StatusCreated, &created); err != nil {
		return catalog.Event{}, fmt.Errorf("failed to create event: %w", err)
	}
	return created, nil
}

// GetEvent fetches a single event by id.
func (c *Client) GetEvent(ctx context.Context, id catalog.ID) (catalog.Event, error) {
	var e catalog.Event
	u := c.baseURL + "/events/" + url.PathEscape(string(id))
	if err := c.do(ctx, http.MethodGet, u, nil, http.StatusOK, &e); err != nil {
		return catalog.Event{}, fmt.Errorf("failed to get event %s: %w", id, err)
	}
	return e, nil
}

func (c *Client) do(ctx context.Context, method, u string, body []byte, want int, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach catalog store: %w", err)
	}
	defer resp.Body.Close()

	// json-server answers 200 where the store answers 201; both mean success.
	if resp.StatusCode != want && !(want == http.StatusCreated && resp.StatusCode == http.StatusOK) {
		return newStatusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
