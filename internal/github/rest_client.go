package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultBaseURL = "https://api.github.com"

type restClient struct {
	cfg         Config
	httpClient  *http.Client
	lastRequest time.Time
	requestMu   sync.Mutex

	// Session Cache
	cache      map[string]*cacheEntry
	cacheMutex sync.RWMutex
}

type cacheEntry struct {
	Value      []byte
	Expiration time.Time
}

func newRESTClient(cfg Config) Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.RequestDelay == 0 {
		cfg.RequestDelay = time.Second
	}
	return &restClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache: make(map[string]*cacheEntry),
	}
}

func (c *restClient) getFromCache(key string) ([]byte, bool) {
	c.cacheMutex.RLock()
	defer c.cacheMutex.RUnlock()

	entry, ok := c.cache[key]
	if !ok {
		log.Debug().Str("key", key).Msg("Cache miss")
		return nil, false
	}
	if time.Now().After(entry.Expiration) {
		return nil, false
	}
	log.Debug().Str("key", key).Msg("Cache hit")
	return entry.Value, true
}

func (c *restClient) addToCache(key string, value []byte, ttl time.Duration) {
	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	c.cache[key] = &cacheEntry{
		Value:      value,
		Expiration: time.Now().Add(ttl),
	}
	log.Debug().Str("key", key).Dur("ttl", ttl).Msg("Added to cache")
}

// throttle spaces requests so a sync over a large repo stays well inside the
// API rate limit.
func (c *restClient) throttle() {
	c.requestMu.Lock()
	defer c.requestMu.Unlock()

	elapsed := time.Since(c.lastRequest)
	if elapsed < c.cfg.RequestDelay {
		wait := c.cfg.RequestDelay - elapsed
		log.Debug().Dur("wait", wait).Msg("Throttling GitHub request")
		time.Sleep(wait)
	}
	c.lastRequest = time.Now()
}

func (c *restClient) get(ctx context.Context, path string, query url.Values, out any) error {
	cacheKey := path + "?" + query.Encode()
	if body, ok := c.getFromCache(cacheKey); ok {
		return json.Unmarshal(body, out)
	}

	c.throttle()

	u := fmt.Sprintf("%s%s", c.cfg.BaseURL, path)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("github request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read github response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github returned %d for %s: %s", resp.StatusCode, path, truncate(string(body), 200))
	}

	c.addToCache(cacheKey, body, 5*time.Minute)
	return json.Unmarshal(body, out)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func (c *restClient) ListIssues(ctx context.Context, owner, repo, state string, page, perPage int) ([]IssueDTO, error) {
	query := url.Values{}
	query.Set("state", state)
	query.Set("sort", "updated")
	query.Set("direction", "desc")
	query.Set("page", fmt.Sprintf("%d", page))
	query.Set("per_page", fmt.Sprintf("%d", perPage))

	var issues []IssueDTO
	path := fmt.Sprintf("/repos/%s/%s/issues", owner, repo)
	if err := c.get(ctx, path, query, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

func (c *restClient) ListComments(ctx context.Context, owner, repo string, number int) ([]CommentDTO, error) {
	query := url.Values{}
	query.Set("per_page", "100")

	var comments []CommentDTO
	path := fmt.Sprintf("/repos/%s/%s/issues/%d/comments", owner, repo, number)
	if err := c.get(ctx, path, query, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *restClient) ListTimeline(ctx context.Context, owner, repo string, number int) ([]TimelineEventDTO, error) {
	query := url.Values{}
	query.Set("per_page", "100")

	var events []TimelineEventDTO
	path := fmt.Sprintf("/repos/%s/%s/issues/%d/timeline", owner, repo, number)
	if err := c.get(ctx, path, query, &events); err != nil {
		return nil, err
	}
	return events, nil
}
