package replay

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const exportCacheTTL = 24 * time.Hour

// Fetcher retrieves finished games from the server's export endpoint, with
// an optional cache so repeated navigation of the same game stays local.
type Fetcher struct {
	BaseURL string
	Client  *http.Client
	Cache   *redis.Client
	Log     *logrus.Entry
}

// NewFetcher creates a fetcher against baseURL (e.g. "https://hanab.live").
// cache may be nil.
func NewFetcher(baseURL string, cache *redis.Client, log *logrus.Entry) *Fetcher {
	return &Fetcher{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 30 * time.Second},
		Cache:   cache,
		Log:     log,
	}
}

// Fetch loads the export of game id.
func (f *Fetcher) Fetch(ctx context.Context, id int) (*GameData, error) {
	key := fmt.Sprintf("export:%d", id)

	if f.Cache != nil {
		cached, err := f.Cache.Get(ctx, key).Bytes()
		if err == nil {
			gd, err := Parse(cached)
			if err == nil {
				return gd, nil
			}
			// A bad cache entry should not block the fetch.
			f.Cache.Del(ctx, key)
		} else if err != redis.Nil && f.Log != nil {
			f.Log.WithError(err).Warn("replay cache unavailable")
		}
	}

	body, err := f.download(ctx, id)
	if err != nil {
		return nil, err
	}
	gd, err := Parse(body)
	if err != nil {
		return nil, err
	}

	if f.Cache != nil {
		if err := f.Cache.Set(ctx, key, body, exportCacheTTL).Err(); err != nil && f.Log != nil {
			f.Log.WithError(err).Warn("caching replay export failed")
		}
	}
	return gd, nil
}

func (f *Fetcher) download(ctx context.Context, id int) ([]byte, error) {
	url := fmt.Sprintf("%s/export/%d", f.BaseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching export %d: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching export %d: status %s", id, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<22))
}
