package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/sync/singleflight"
)

const (
	// maxJWKSResponseBytes bounds the size of a fetched key set document.
	maxJWKSResponseBytes = 1 << 20
	// defaultMinRefreshInterval is how long an unknown kid waits before it may refetch.
	defaultMinRefreshInterval = 30 * time.Second
	// defaultFetchTimeout applies when no fetch timeout is configured.
	defaultFetchTimeout = 10 * time.Second
	// maxTrackedKids bounds the number of unknown kids remembered between refreshes.
	maxTrackedKids = 1024
)

// RemoteKeySet caches a JWKS document fetched from the identity provider.
//
// The cache starts empty and is filled on the first lookup miss. A kid that is
// still unknown after a refresh may trigger another fetch once the minimum
// refresh interval has passed, so keys published after their first use are
// picked up without a restart. Concurrent misses for the same kid share one
// fetch. A failed fetch is not counted, so the next miss retries it.
type RemoteKeySet struct {
	url                string
	client             *http.Client
	timeout            time.Duration
	minRefreshInterval time.Duration
	maxTracked         int
	now                func() time.Time
	logger             *slog.Logger

	mu        sync.RWMutex
	keys      map[string]jose.JSONWebKey
	refreshed map[string]time.Time
	group     singleflight.Group
}

// NewRemoteKeySet creates a RemoteKeySet for url using a pooled cleanhttp client.
func NewRemoteKeySet(url string, timeout time.Duration, logger *slog.Logger) *RemoteKeySet {
	return NewRemoteKeySetWithClient(url, cleanhttp.DefaultPooledClient(), timeout, logger)
}

// NewRemoteKeySetWithClient creates a RemoteKeySet using client for fetches.
func NewRemoteKeySetWithClient(
	url string,
	client *http.Client,
	timeout time.Duration,
	logger *slog.Logger,
) *RemoteKeySet {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &RemoteKeySet{
		url:                url,
		client:             client,
		timeout:            timeout,
		minRefreshInterval: defaultMinRefreshInterval,
		maxTracked:         maxTrackedKids,
		now:                time.Now,
		logger:             logger,
		refreshed:          make(map[string]time.Time),
	}
}

// WithMinRefreshInterval sets how long an unknown kid is rejected before it may refetch.
// Non-positive values keep the default.
func (r *RemoteKeySet) WithMinRefreshInterval(d time.Duration) *RemoteKeySet {
	if d > 0 {
		r.minRefreshInterval = d
	}
	return r
}

// LookupKey returns the cached key for kid, refreshing the cache for an unknown kid
// at most once per minimum refresh interval.
func (r *RemoteKeySet) LookupKey(ctx context.Context, kid string) (*jose.JSONWebKey, error) {
	if kid == "" {
		return nil, ErrKeyNotFound
	}

	r.mu.RLock()
	key, ok := r.keys[kid]
	recent := r.recentlyRefreshed(kid)
	r.mu.RUnlock()

	if ok {
		return &key, nil
	}
	if recent {
		return nil, ErrKeyNotFound
	}

	// The fetch is shared by every caller waiting on kid, so it must not
	// inherit the cancellation of whichever request started it.
	fetchCtx := context.WithoutCancel(ctx)
	if _, err, _ := r.group.Do(kid, func() (any, error) {
		if !r.claimRefresh(kid) {
			return nil, nil
		}
		if err := r.refresh(fetchCtx); err != nil {
			r.mu.Lock()
			delete(r.refreshed, kid)
			r.mu.Unlock()
			return nil, err
		}
		return nil, nil
	}); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok = r.keys[kid]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return &key, nil
}

// recentlyRefreshed reports whether kid was looked up in a refresh inside the
// minimum interval. Callers must hold r.mu.
func (r *RemoteKeySet) recentlyRefreshed(kid string) bool {
	last, ok := r.refreshed[kid]
	return ok && r.now().Sub(last) < r.minRefreshInterval
}

// claimRefresh records that kid is about to trigger a fetch. It returns false
// when the key is already cached, kid was refreshed recently, or the tracked
// kids are at capacity after expired entries are pruned.
func (r *RemoteKeySet) claimRefresh(kid string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.keys[kid]; ok {
		return false
	}
	if r.recentlyRefreshed(kid) {
		return false
	}

	if len(r.refreshed) >= r.maxTracked {
		now := r.now()
		for k, last := range r.refreshed {
			_, known := r.keys[k]
			if known || now.Sub(last) >= r.minRefreshInterval {
				delete(r.refreshed, k)
			}
		}
		if len(r.refreshed) >= r.maxTracked {
			r.logger.Debug("too many unknown key ids, skipping key set refresh", slog.String("kid", kid))
			return false
		}
	}

	r.refreshed[kid] = r.now()
	return true
}

// refresh fetches the key set document and replaces the cache.
func (r *RemoteKeySet) refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeySetUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn("failed to fetch key set", slog.String("url", r.url), slog.Any("error", err))
		return fmt.Errorf("%w: %v", ErrKeySetUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		r.logger.Warn("failed to fetch key set",
			slog.String("url", r.url),
			slog.Int("status", resp.StatusCode),
		)
		return fmt.Errorf("%w: unexpected status %d", ErrKeySetUnavailable, resp.StatusCode)
	}

	var set jose.JSONWebKeySet
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJWKSResponseBytes)).Decode(&set); err != nil {
		return fmt.Errorf("%w: invalid key set document: %v", ErrKeySetUnavailable, err)
	}

	keys := make(map[string]jose.JSONWebKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.KeyID == "" || !k.IsPublic() || (k.Use != "" && k.Use != "sig") {
			continue
		}
		keys[k.KeyID] = k
	}

	r.mu.Lock()
	r.keys = keys
	r.mu.Unlock()

	r.logger.Debug("key set refreshed", slog.Int("keys", len(keys)))
	return nil
}
