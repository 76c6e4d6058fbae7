// Package okta talks to the Okta authentication, session and home tab APIs.
package okta

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	errUtils "github.com/fitbeard/okta-assume/internal/errors"
	"github.com/fitbeard/okta-assume/internal/mfa"
	"github.com/fitbeard/okta-assume/internal/redact"
)

// Push verification timing
const (
	// PushTimeout is the maximum time to wait for a push approval
	PushTimeout = 60 * time.Second
	// PollInterval is how often a pending push is polled
	PollInterval = 2 * time.Second
	// ProgressInterval is how often to show progress indication
	ProgressInterval = 5 * time.Second
)

// Prompter asks the user for a single value.
type Prompter interface {
	Input(label string) (string, error)
	Password(label string) (string, error)
}

// Client is an Okta API client bound to one organization.
type Client struct {
	BaseURL   string
	HTTP      *http.Client
	Registry  *redact.Registry
	Logger    *log.Logger
	UserAgent string

	// Prompter and Chooser are nil when no terminal is attached.
	Prompter Prompter
	Chooser  mfa.Chooser
	// Out receives menus and progress output.
	Out io.Writer

	PollInterval time.Duration
	PushTimeout  time.Duration
}

// NewHTTPClient creates an HTTP client that keeps session cookies.
func NewHTTPClient() *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{Jar: jar}
}

// NewClient returns a client for the organization at baseURL.
func NewClient(baseURL string, reg *redact.Registry, logger *log.Logger) *Client {
	return &Client{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		HTTP:         NewHTTPClient(),
		Registry:     reg,
		Logger:       logger,
		Out:          io.Discard,
		PollInterval: PollInterval,
		PushTimeout:  PushTimeout,
	}
}

// apiError is the error body returned by the Okta API.
type apiError struct {
	Code    string `json:"errorCode"`
	Summary string `json:"errorSummary"`
}

func (c *Client) endpoint(path string) string {
	return c.BaseURL + path
}

// do sends req and returns the body of a 200 response. Anything else is an
// I/O error naming the method and status.
func (c *Client) do(req *http.Request) ([]byte, error) {
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s request to %s failed: %w", errUtils.ErrIO, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: could not read response of %s %s: %w", errUtils.ErrIO, req.Method, req.URL.Path, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Summary != "" {
			return nil, fmt.Errorf("%w: your %s request failed with status_code %d: %s (%s)",
				errUtils.ErrIO, req.Method, resp.StatusCode, apiErr.Summary, apiErr.Code)
		}
		return nil, fmt.Errorf("%w: your %s request failed with status_code %d", errUtils.ErrIO, req.Method, resp.StatusCode)
	}

	return body, nil
}

// postJSON posts payload to rawURL and decodes the JSON response into out.
func (c *Client) postJSON(ctx context.Context, rawURL string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: could not build request: %w", errUtils.ErrIO, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: unexpected response from %s: %w", errUtils.ErrIO, req.URL.Path, err)
	}
	return nil
}

// getJSON fetches rawURL with query and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, rawURL string, query url.Values, out any) error {
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: could not build request: %w", errUtils.ErrIO, err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: unexpected response from %s: %w", errUtils.ErrIO, req.URL.Path, err)
	}
	return nil
}

func (c *Client) out() io.Writer {
	if c.Out == nil {
		return io.Discard
	}
	return c.Out
}
