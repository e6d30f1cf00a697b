// ABOUTME: Signed, authenticated HTTP client for the panel REST API
// ABOUTME: Attaches bearer auth plus first-party HMAC headers to every catalog call

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/panelops/panelctl/internal/sign"
)

// Error is a failed API call: a non-2xx response or a transport failure that
// produced a response at all. The message is what stores surface to views.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

// errorBody is the JSON error envelope some endpoints return.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Client issues requests against the catalog API base URL. All calls through
// Get carry the first-party signature; the token grant goes through PostForm
// and is deliberately unsigned.
type Client struct {
	baseURL          string
	firstPartyID     string
	firstPartySecret string
	httpClient       *http.Client
	logger           *slog.Logger
	now              func() time.Time
}

// New creates a Client for the given API base URL and first-party signing
// credentials.
func New(baseURL, firstPartyID, firstPartySecret string, timeout time.Duration) *Client {
	return &Client{
		baseURL:          strings.TrimRight(baseURL, "/"),
		firstPartyID:     firstPartyID,
		firstPartySecret: firstPartySecret,
		httpClient:       &http.Client{Timeout: timeout},
		logger:           slog.Default().With("component", "api"),
		now:              time.Now,
	}
}

// Get performs a signed, authenticated GET of path under the API base URL and
// decodes the JSON response into out. The signature covers the bare path; the
// query string is sent but never signed, matching the server's verification.
func (c *Client) Get(ctx context.Context, path string, query url.Values, token string, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &Error{Message: fmt.Sprintf("building request for %s: %v", path, err)}
	}

	req.Header = sign.Headers(path, c.now().Unix(), c.firstPartyID, c.firstPartySecret)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-Id", uuid.New().String())

	c.logger.Debug("GET", "path", path, "query", query.Encode())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Message: err.Error()}
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

// PostForm performs an unsigned form-encoded POST against an absolute URL.
// Used for the OAuth token grant, which lives outside the signed API surface.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return &Error{Message: fmt.Sprintf("building request for %s: %v", rawURL, err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Message: err.Error()}
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

// decodeResponse maps non-2xx responses to *Error and unmarshals successful
// bodies into out (skipped when out is nil).
func decodeResponse(resp *http.Response, out any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorMessage(body)
		if msg == "" {
			msg = fmt.Sprintf("request failed with status code %d", resp.StatusCode)
		}
		return &Error{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: fmt.Sprintf("decoding response: %v", err)}
	}
	return nil
}

func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	if eb.Message != "" {
		return eb.Message
	}
	return eb.Error
}
