package catalog

import (
	"context"
	"regexp"
	"sync"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/singleflight"

	"cadence/internal/services"
)

var (
	assetPattern = regexp.MustCompile(`/assets/index-legacy[~-][^/"]+\.js`)
	tokenPattern = regexp.MustCompile(`eyJh[a-zA-Z0-9\._-]+`)
)

// tokenSource scrapes and caches the developer token embedded in the web
// front-end's bundle. Concurrent misses share one fetch.
type tokenSource struct {
	http   *resty.Client
	webURL string

	mu    sync.Mutex
	token string
	group singleflight.Group
}

func (t *tokenSource) Token(ctx context.Context, storefront string) (string, error) {
	t.mu.Lock()
	token := t.token
	t.mu.Unlock()
	if token != "" {
		return token, nil
	}

	v, err, _ := t.group.Do("token", func() (any, error) {
		fetched, err := t.fetch(ctx, storefront)
		if err != nil {
			return "", err
		}
		t.mu.Lock()
		t.token = fetched
		t.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops the cached token if it is still the stale one.
func (t *tokenSource) Invalidate(stale string) {
	t.mu.Lock()
	if t.token == stale {
		t.token = ""
	}
	t.mu.Unlock()
}

func (t *tokenSource) fetch(ctx context.Context, storefront string) (string, error) {
	page, err := t.http.R().SetContext(ctx).Get(t.webURL + "/" + storefront + "/browse")
	if err != nil {
		return "", services.Wrap(services.ErrUnavailable, "catalog", "token", "fetch browse page", err)
	}
	if !page.IsSuccess() {
		return "", services.Wrap(services.ErrUnavailable, "catalog", "token", "browse page returned "+page.Status(), nil)
	}
	asset := assetPattern.FindString(page.String())
	if asset == "" {
		return "", services.Wrap(services.ErrUnavailable, "catalog", "token", "asset script not found", nil)
	}

	script, err := t.http.R().SetContext(ctx).Get(t.webURL + asset)
	if err != nil {
		return "", services.Wrap(services.ErrUnavailable, "catalog", "token", "fetch asset script", err)
	}
	if !script.IsSuccess() {
		return "", services.Wrap(services.ErrUnavailable, "catalog", "token", "asset script returned "+script.Status(), nil)
	}
	token := tokenPattern.FindString(script.String())
	if token == "" {
		return "", services.Wrap(services.ErrUnavailable, "catalog", "token", "developer token not found", nil)
	}
	return token, nil
}
