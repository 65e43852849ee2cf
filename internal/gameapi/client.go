// internal/gameapi/client.go
package gameapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultBaseURL is where the game service listens unless configured otherwise.
const DefaultBaseURL = "http://127.0.0.1:5000/"

// DefaultTimeout bounds a single request to the game service.
const DefaultTimeout = 10 * time.Second

const (
	startPath     = "start"
	drawCardsPath = "draw-cards"
)

// ErrNoGameInProgress is returned when the service answers a draw with a
// message instead of round data.
var ErrNoGameInProgress = errors.New("game service has no game in progress")

// HTTPError is returned for any non-2xx answer from the game service.
type HTTPError struct {
	StatusCode int
	Status     string
	Path       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("game service returned %s for /%s", e.Status, e.Path)
}

// Client handles HTTP requests to the game service.
type Client struct {
	client  *http.Client
	baseURL *url.URL
	logger  *logrus.Entry

	timeout    time.Duration
	hasTimeout bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client. The caller's client is
// never modified; WithTimeout applies to a copy of it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
		c.hasTimeout = true
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *logrus.Entry) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new game service client rooted at baseURL.
// An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid game service url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid game service url %q: scheme must be http or https", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &Client{
		baseURL: u,
		logger:  logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: DefaultTimeout}
	}
	if c.hasTimeout {
		hc := *c.client
		hc.Timeout = c.timeout
		c.client = &hc
	}
	return c, nil
}

// BaseURL returns the resolved service root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Start asks the service for a new game and returns its first round.
func (c *Client) Start(ctx context.Context) (*RoundResponse, error) {
	return c.round(ctx, startPath)
}

// DrawCards asks the service to play the next round.
func (c *Client) DrawCards(ctx context.Context) (*RoundResponse, error) {
	return c.round(ctx, drawCardsPath)
}

// Ping calls the service root and returns its greeting.
func (c *Client) Ping(ctx context.Context) (string, error) {
	var msg messageResponse
	if err := c.doRequest(ctx, "", &msg); err != nil {
		return "", err
	}
	return msg.Message, nil
}

func (c *Client) round(ctx context.Context, path string) (*RoundResponse, error) {
	var raw roundPayload
	if err := c.doRequest(ctx, path, &raw); err != nil {
		return nil, err
	}
	if raw.RoundInfo == nil && raw.Message != "" {
		return nil, fmt.Errorf("/%s: %w: %s", path, ErrNoGameInProgress, raw.Message)
	}
	resp, err := raw.toResponse()
	if err != nil {
		return nil, fmt.Errorf("/%s: %w", path, err)
	}
	c.logger.WithFields(logrus.Fields{
		"path":     path,
		"finished": resp.Finished,
		"winner":   resp.Winner,
	}).Debug("game service round received")
	return resp, nil
}

// doRequest performs an HTTP GET request and unmarshals the response.
func (c *Client) doRequest(ctx context.Context, path string, target interface{}) error {
	endpoint := c.baseURL.ResolveReference(&url.URL{Path: path})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"path":     "/" + path,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Trace("game service request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, Path: path}
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
