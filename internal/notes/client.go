// Package notes talks to the external note-creation service. The service is
// opaque: it accepts {"prompt": "..."} and answers with an optional "result"
// on success or an optional "detail" on failure.
package notes

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20

// userAgent identifies notekit to the service.
const userAgent = "notekit"

// Creator creates a note from a free-text prompt. *Client satisfies it; tests
// substitute stubs so the UI can be exercised without a network.
type Creator interface {
	CreateNote(ctx context.Context, prompt string) (*Note, error)
}

// Note is a successful service response.
type Note struct {
	// Result is the service's "result" field, empty when absent or not a string.
	Result string
	// Raw is the undecoded response body.
	Raw []byte
}

// createNoteRequest is the only payload the service accepts.
type createNoteRequest struct {
	Prompt string `json:"prompt"`
}

// ClientOptions configures a Client.
type ClientOptions struct {
	// Endpoint is the absolute URL of the note-creation route. Required.
	Endpoint string
	// Timeout bounds each request. Zero means no client-side limit.
	Timeout time.Duration
	// HTTPClient overrides the underlying client. Timeout is ignored when set.
	HTTPClient *http.Client
	// Logger receives request diagnostics. Nil discards them.
	Logger *log.Logger
}

// Client is the HTTP implementation of Creator. It issues exactly one request
// per CreateNote call and never retries.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *log.Logger
}

// NewClient creates a Client for opts.Endpoint.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("notes: endpoint is required")
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Client{
		endpoint: opts.Endpoint,
		http:     hc,
		logger:   logger.WithPrefix("notes"),
	}, nil
}

// Endpoint returns the URL prompts are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// CreateNote POSTs prompt verbatim to the endpoint. A non-2xx answer is
// returned as a *ServiceError; transport failures come back as the
// *url.Error produced by net/http.
func (c *Client) CreateNote(ctx context.Context, prompt string) (*Note, error) {
	payload, err := sonic.Marshal(createNoteRequest{Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	c.logger.Debug("creating note", "endpoint", c.endpoint, "prompt_len", len(prompt))

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "endpoint", c.endpoint, "err", err)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.logger.Warn("reading response failed", "status", resp.StatusCode, "err", err)
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("note service answered",
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		svcErr := &ServiceError{StatusCode: resp.StatusCode, Detail: detailFrom(body)}
		c.logger.Warn("note service rejected request", "status", resp.StatusCode, "detail", svcErr.Detail)
		return nil, svcErr
	}

	return &Note{Result: resultFrom(body), Raw: body}, nil
}

// resultFrom extracts the textual "result" from a success body. Non-JSON
// bodies and non-string values yield "".
func resultFrom(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	if r := gjson.GetBytes(body, "result"); r.Type == gjson.String {
		return r.Str
	}
	return ""
}

// detailFrom extracts "detail" from a failure body. String details are used
// as-is; structured details (validation error lists) keep their JSON text.
func detailFrom(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	d := gjson.GetBytes(body, "detail")
	switch {
	case !d.Exists(), d.Type == gjson.Null:
		return ""
	case d.Type == gjson.String:
		return d.String()
	default:
		return d.Raw
	}
}
