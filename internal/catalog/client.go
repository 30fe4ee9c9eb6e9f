package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sethvargo/go-retry"

	"cadence/internal/config"
	"cadence/internal/logging"
	"cadence/internal/metrics"
	"cadence/internal/services"
)

const (
	searchTypes  = "songs,albums,artists,music-videos,playlists"
	searchLimit  = "10"
	artistViews  = "full-albums,singles,compilations,music-videos,featured-albums"
	defaultDelay = 250 * time.Millisecond
)

// Store persists lookup payloads across restarts.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Client talks to the catalog API.
type Client struct {
	http        *resty.Client
	tokens      *tokenSource
	baseURL     string
	webURL      string
	storefront  string
	artworkSize int
	retries     uint64
	backoff     time.Duration
	cache       *lru.Cache[string, *Metadata]
	store       Store
	metrics     *metrics.Recorder
	logger      *slog.Logger
}

// Option configures optional Client behavior.
type Option func(*Client)

// WithStore attaches a persistent second-tier cache.
func WithStore(s Store) Option {
	return func(c *Client) {
		c.store = s
	}
}

// WithMetrics records request outcomes.
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *Client) {
		c.metrics = r
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "catalog")
	}
}

// WithBackoff overrides the base retry delay.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.backoff = d
		}
	}
}

// New constructs a catalog client from the [catalog] configuration.
func New(cfg config.Catalog, opts ...Option) (*Client, error) {
	size := cfg.CacheSize
	if size <= 0 {
		size = 1
	}
	cache, err := lru.New[string, *Metadata](size)
	if err != nil {
		return nil, fmt.Errorf("catalog cache: %w", err)
	}
	httpClient := resty.New().
		SetTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second).
		SetBaseURL(cfg.BaseURL).
		SetHeader("Origin", cfg.WebURL).
		SetHeader("Accept", "application/json")

	c := &Client{
		http:        httpClient,
		tokens:      &tokenSource{http: httpClient, webURL: cfg.WebURL},
		baseURL:     cfg.BaseURL,
		webURL:      cfg.WebURL,
		storefront:  cfg.Storefront,
		artworkSize: cfg.ArtworkSize,
		retries:     uint64(max(cfg.Retries, 0)),
		backoff:     defaultDelay,
		cache:       cache,
		logger:      logging.NewComponentLogger(nil, "catalog"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// get issues a GET against the catalog API with token refresh and retry,
// decoding the JSON body into out.
func (c *Client) get(ctx context.Context, operation, storefront, path string, query url.Values, referer bool, out any) error {
	backoff := retry.WithMaxRetries(c.retries, retry.NewExponential(c.backoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, err := c.send(ctx, storefront, path, query, referer)
		if err != nil {
			return err
		}
		code := resp.StatusCode()
		switch {
		case resp.IsSuccess():
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return services.Wrap(services.ErrExternalTool, "catalog", operation, "decode response", err)
			}
			return nil
		case code == http.StatusNotFound:
			return services.Wrap(services.ErrNotFound, "catalog", operation, path, nil)
		case code == http.StatusTooManyRequests || code >= http.StatusInternalServerError:
			return retry.RetryableError(services.Wrap(services.ErrUnavailable, "catalog", operation, resp.Status(), nil))
		default:
			return services.Wrap(services.ErrExternalTool, "catalog", operation, resp.Status(), nil)
		}
	})
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if errors.Is(err, services.ErrNotFound) {
			outcome = "not_found"
		}
	}
	c.metrics.CatalogRequest(operation, outcome)
	return err
}

// send performs one authorized request. A 401 or 403 invalidates the token
// and the request is repeated once with a fresh one.
func (c *Client) send(ctx context.Context, storefront, path string, query url.Values, referer bool) (*resty.Response, error) {
	var resp *resty.Response
	for attempt := 0; attempt < 2; attempt++ {
		token, err := c.tokens.Token(ctx, storefront)
		if err != nil {
			return nil, retry.RetryableError(err)
		}
		req := c.http.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetQueryParamsFromValues(query)
		if referer {
			req.SetHeader("Referer", c.webURL+"/")
		}
		resp, err = req.Get(path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, retry.RetryableError(services.Wrap(services.ErrUnavailable, "catalog", "request", path, err))
		}
		code := resp.StatusCode()
		if code != http.StatusUnauthorized && code != http.StatusForbidden {
			return resp, nil
		}
		c.logger.Info("developer token rejected; refreshing", logging.Int("status", code))
		c.tokens.Invalidate(token)
	}
	return resp, nil
}

func (c *Client) resolveStorefront(storefront string) string {
	if sf := strings.ToLower(strings.TrimSpace(storefront)); sf != "" {
		return sf
	}
	return c.storefront
}

func catalogPath(storefront string, parts ...string) string {
	escaped := make([]string, 0, len(parts)+3)
	escaped = append(escaped, "v1", "catalog", url.PathEscape(storefront))
	for _, p := range parts {
		escaped = append(escaped, url.PathEscape(p))
	}
	return "/" + strings.Join(escaped, "/")
}
