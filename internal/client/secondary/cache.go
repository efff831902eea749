package secondary

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// searchCacheSize bounds the number of distinct queries a CachingClient
// remembers. A sync run typically re-resolves a handful of tracks that
// share an artist or title fragment; this keeps memory flat regardless of
// playlist size.
const searchCacheSize = 512

// CachingClient wraps a Client with an in-memory LRU cache keyed on the raw
// search query, so retried or overlapping resolver attempts against the
// same query don't re-spend the secondary catalog's 1req/s throttle budget.
// StreamInfo is never cached: stream URLs are short-lived and candidate-
// specific, so caching them would serve stale links.
type CachingClient struct {
	next  Client
	cache *lru.Cache[string, []Candidate]
}

// NewCachingClient wraps next with a bounded search-result cache.
func NewCachingClient(next Client) *CachingClient {
	cache, err := lru.New[string, []Candidate](searchCacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, which searchCacheSize never is.
		panic(err)
	}

	return &CachingClient{next: next, cache: cache}
}

// Search returns the cached result set for query if one is stored, otherwise
// delegates to next and caches the response (including empty results, so a
// query known to have no matches doesn't keep re-hitting the catalog).
func (c *CachingClient) Search(ctx context.Context, query string) ([]Candidate, error) {
	if cached, ok := c.cache.Get(query); ok {
		return cached, nil
	}

	results, err := c.next.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	c.cache.Add(query, results)

	return results, nil
}

// StreamInfo always delegates; see the CachingClient doc comment for why.
func (c *CachingClient) StreamInfo(ctx context.Context, candidateID, format string) (*StreamInfo, error) {
	return c.next.StreamInfo(ctx, candidateID, format)
}
