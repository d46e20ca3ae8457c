package holidays

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/papercomputeco/trickle/pkg/logger"
	"github.com/papercomputeco/trickle/pkg/utils"
)

// Client talks to a /holidays endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient returns a Client for endpoint, e.g. "http://localhost:8080/holidays".
// A nil log discards.
func NewClient(endpoint string, log *slog.Logger) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("holidays endpoint is required")
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("parsing holidays endpoint: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		baseURL: strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: log,
	}, nil
}

// Fetch lists the holidays of year.
func (c *Client) Fetch(ctx context.Context, year int) ([]Holiday, error) {
	u := c.baseURL + "?year=" + strconv.Itoa(year)

	var out []Holiday
	if err := c.do(ctx, http.MethodGet, u, nil, &out, 0); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one holiday.
func (c *Client) Get(ctx context.Context, id int64) (*Holiday, error) {
	u := c.baseURL + "/" + strconv.FormatInt(id, 10)

	var resp Response
	if err := c.do(ctx, http.MethodGet, u, nil, &resp, id); err != nil {
		return nil, err
	}
	return first(resp)
}

// Create submits a new holiday and returns it with its id.
func (c *Client) Create(ctx context.Context, h Holiday) (*Holiday, error) {
	var resp Response
	if err := c.do(ctx, http.MethodPost, c.baseURL, h, &resp, 0); err != nil {
		return nil, err
	}
	return first(resp)
}

// Update replaces an existing holiday.
func (c *Client) Update(ctx context.Context, h Holiday) (*Holiday, error) {
	var resp Response
	if err := c.do(ctx, http.MethodPut, c.baseURL, h, &resp, h.ID); err != nil {
		return nil, err
	}
	return first(resp)
}

// Delete removes a holiday.
func (c *Client) Delete(ctx context.Context, id int64) error {
	var resp Response
	return c.do(ctx, http.MethodDelete, c.baseURL, DeleteRequest{ID: id}, &resp, id)
}

// do sends one JSON request. id is reported in a NotFoundError on 404.
func (c *Client) do(ctx context.Context, method, u string, body, out any, id int64) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("holidays request", "method", method, "url", u)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return NotFoundError{ID: id}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var e ErrorResponse
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return fmt.Errorf("holidays %s: status %d: %s", method, resp.StatusCode, e.Error)
		}
		return fmt.Errorf("holidays %s: status %d: %s", method, resp.StatusCode, utils.Truncate(strings.TrimSpace(string(data)), 200))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func first(resp Response) (*Holiday, error) {
	if len(resp.Holidays) == 0 {
		return nil, fmt.Errorf("empty holidays response: %q", resp.Message)
	}
	h := resp.Holidays[0]
	return &h, nil
}
