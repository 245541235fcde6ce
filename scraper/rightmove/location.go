package rightmove

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"hackermove/utils"
)

// LocationCache stores resolved location identifiers.
type LocationCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// LocationResolver turns a free-text location into the site's location
// identifier, e.g. "REGION^93953".
type LocationResolver struct {
	fetcher   PageFetcher
	lookupURL string
	aliases   map[string]string
	cache     LocationCache
	logger    *utils.Logger
}

// NewLocationResolver creates a resolver. aliases are matched case-insensitively
// before the cache and the lookup endpoint are consulted. cache may be nil.
func NewLocationResolver(fetcher PageFetcher, lookupURL string, aliases map[string]string, cache LocationCache, logger *utils.Logger) *LocationResolver {
	norm := make(map[string]string, len(aliases))
	for name, id := range aliases {
		norm[normaliseLocation(name)] = id
	}
	return &LocationResolver{
		fetcher:   fetcher,
		lookupURL: lookupURL,
		aliases:   norm,
		cache:     cache,
		logger:    logger,
	}
}

type lookupResponse struct {
	Matches []struct {
		ID          string `json:"id"`
		Type        string `json:"type"`
		DisplayName string `json:"displayName"`
	} `json:"matches"`
}

// Resolve returns the identifier for location.
func (r *LocationResolver) Resolve(ctx context.Context, location string) (string, error) {
	key := normaliseLocation(location)
	if key == "" {
		return "", fmt.Errorf("location: empty location")
	}

	if id, ok := r.aliases[key]; ok {
		return id, nil
	}

	if r.cache != nil {
		id, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			r.logger.Warn("[location] Cache read failed for %q: %v", location, err)
		} else if ok {
			r.logger.Debug("[location] Cache hit for %q: %s", location, id)
			return id, nil
		}
	}

	id, err := r.lookup(ctx, location)
	if err != nil {
		return "", err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, id); err != nil {
			r.logger.Warn("[location] Cache write failed for %q: %v", location, err)
		}
	}
	r.logger.Info("[location] Resolved %q to %s", location, id)
	return id, nil
}

func (r *LocationResolver) lookup(ctx context.Context, location string) (string, error) {
	q := url.Values{}
	q.Set("query", location)
	q.Set("limit", "10")
	q.Set("exclude", "STREET")
	u := r.lookupURL + "?" + q.Encode()

	body, err := r.fetcher.Get(ctx, u)
	if err != nil {
		return "", fmt.Errorf("location: lookup %q: %w", location, err)
	}

	var resp lookupResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return "", fmt.Errorf("location: decode lookup response: %w", err)
	}
	for _, m := range resp.Matches {
		if m.ID != "" && m.Type != "" {
			return m.Type + "^" + m.ID, nil
		}
	}
	return "", fmt.Errorf("location: no match for %q", location)
}

func normaliseLocation(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
