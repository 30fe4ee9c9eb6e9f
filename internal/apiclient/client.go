package apiclient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"cadence/internal/api"
	"cadence/internal/catalog"
)

const (
	requestIDHeader = "X-Request-Id"
	defaultTimeout  = 10 * time.Second
)

// Error is a non-2xx daemon reply.
type Error struct {
	Status    int
	Message   string
	RequestID string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.RequestID != "" {
		return fmt.Sprintf("daemon returned %d: %s (request %s)", e.Status, msg, e.RequestID)
	}
	return fmt.Sprintf("daemon returned %d: %s", e.Status, msg)
}

// StatusCode extracts the HTTP status from an *Error, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client calls the daemon HTTP API.
type Client struct {
	http    *resty.Client
	stream  *resty.Client
	baseURL string
}

// New returns a client for the daemon at baseURL. A bare host:port is
// treated as http.
func New(baseURL, token string) *Client {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base != "" && !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{
		http:    newResty(base, token).SetTimeout(defaultTimeout),
		stream:  newResty(base, token),
		baseURL: base,
	}
}

func newResty(base, token string) *resty.Client {
	client := resty.New().
		SetBaseURL(base).
		SetHeader("Accept", "application/json").
		SetPreRequestHook(func(_ *resty.Client, req *http.Request) error {
			if req.Header.Get(requestIDHeader) == "" {
				req.Header.Set(requestIDHeader, uuid.NewString())
			}
			return nil
		})
	if token = strings.TrimSpace(token); token != "" {
		client.SetAuthToken(token)
	}
	return client
}

// BaseURL reports the daemon address in use.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Status fetches the daemon status snapshot.
func (c *Client) Status(ctx context.Context) (*api.DaemonStatus, error) {
	var out api.DaemonStatus
	if err := c.do(ctx, http.MethodGet, "/api/status", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Queue lists every job in submission order.
func (c *Client) Queue(ctx context.Context) ([]api.Job, error) {
	var out []api.Job
	if err := c.do(ctx, http.MethodGet, "/api/queue", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Submit enqueues a download.
func (c *Client) Submit(ctx context.Context, req api.DownloadRequest) (*api.Job, error) {
	var out api.SubmitResponse
	if err := c.do(ctx, http.MethodPost, "/api/download", nil, req, &out); err != nil {
		return nil, err
	}
	return &out.Job, nil
}

// SetParallel changes the concurrent download limit and returns the value
// the daemon applied.
func (c *Client) SetParallel(ctx context.Context, limit int) (int, error) {
	var out api.ParallelLimitResponse
	if err := c.do(ctx, http.MethodPost, "/api/settings/parallel", nil, api.ParallelLimitRequest{Limit: &limit}, &out); err != nil {
		return 0, err
	}
	return out.Limit, nil
}

// ClearHistory drops finished jobs.
func (c *Client) ClearHistory(ctx context.Context) (int, error) {
	var out api.ClearResponse
	if err := c.do(ctx, http.MethodPost, "/api/history/clear", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Removed, nil
}

// Search queries the catalog through the daemon.
func (c *Client) Search(ctx context.Context, term string) (*catalog.SearchResults, error) {
	var out catalog.SearchResults
	if err := c.do(ctx, http.MethodGet, "/api/search", map[string]string{"query": term}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Artist fetches an artist discography through the daemon.
func (c *Client) Artist(ctx context.Context, pageURL string) (*catalog.Discography, error) {
	var out catalog.Discography
	if err := c.do(ctx, http.MethodGet, "/api/artist", map[string]string{"url": pageURL}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Settings reads the worker settings file.
func (c *Client) Settings(ctx context.Context) (map[string]any, error) {
	out := map[string]any{}
	if err := c.do(ctx, http.MethodGet, "/api/settings", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateSettings merges changes into the worker settings file.
func (c *Client) UpdateSettings(ctx context.Context, changes map[string]any) error {
	return c.do(ctx, http.MethodPost, "/api/settings", nil, changes, nil)
}

// Events follows the daemon event stream, calling fn for each line. It
// returns nil when ctx is cancelled and an error if the stream ends or fn
// fails.
func (c *Client) Events(ctx context.Context, fn func(string) error) error {
	resp, err := c.stream.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetHeader("Accept", "text/event-stream").
		Get("/api/events")
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("connect to daemon: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()
	if resp.StatusCode() != http.StatusOK {
		return &Error{Status: resp.StatusCode(), RequestID: resp.Header().Get(requestIDHeader)}
	}

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var data []string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if len(data) == 0 {
				continue
			}
			payload := strings.Join(data, "\n")
			data = data[:0]
			if err := fn(payload); err != nil {
				return err
			}
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if ctx.Err() != nil {
		return nil
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read event stream: %w", err)
	}
	return errors.New("event stream closed by daemon")
}

func (c *Client) do(ctx context.Context, method, path string, query map[string]string, body, out any) error {
	var failure api.ErrorResponse
	req := c.http.R().
		SetContext(ctx).
		SetError(&failure)
	if query != nil {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("connect to daemon at %s: %w", c.baseURL, err)
	}
	if resp.IsError() {
		requestID := failure.RequestID
		if requestID == "" {
			requestID = resp.Header().Get(requestIDHeader)
		}
		return &Error{Status: resp.StatusCode(), Message: failure.Error, RequestID: requestID}
	}
	return nil
}
