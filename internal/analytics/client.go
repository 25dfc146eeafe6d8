// Package analytics is the typed client for the metrics provider.
//
// Every accessor is fail-soft: a transport failure, timeout, or non-2xx
// response yields the zero result, never an error. Callers must treat
// "no data" as a routine case.
package analytics

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultTimeout = 30 * time.Second

type cacheEntry struct {
	body    []byte
	fetched time.Time
}

type Client struct {
	baseURL string
	http    *http.Client
	cache   *lru.Cache[string, cacheEntry]
	ttl     time.Duration
}

// New builds a client for the metrics provider at baseURL. cacheSize <= 0
// disables the response cache.
func New(baseURL string, cacheSize int) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		ttl:     30 * time.Second,
	}
	if cacheSize > 0 {
		cache, err := lru.New[string, cacheEntry](cacheSize)
		if err == nil {
			c.cache = cache
		}
	}
	return c
}

func (c *Client) Cashflow(ctx context.Context, userID string, months int) CashflowResult {
	params := url.Values{"user_id": {userID}}
	if months > 0 {
		params.Set("months", strconv.Itoa(months))
	}
	var out CashflowResult
	c.get(ctx, "/metrics/cashflow", params, &out)
	return out
}

func (c *Client) BurnRate(ctx context.Context, userID string) BurnRateResult {
	var out BurnRateResult
	c.get(ctx, "/metrics/burn-rate", url.Values{"user_id": {userID}}, &out)
	return out
}

func (c *Client) NetWorth(ctx context.Context, userID string) NetWorthResult {
	var out NetWorthResult
	c.get(ctx, "/metrics/net-worth", url.Values{"user_id": {userID}}, &out)
	return out
}

func (c *Client) PortfolioSummary(ctx context.Context, userID string) PortfolioResult {
	var out PortfolioResult
	c.get(ctx, "/metrics/portfolio-summary", url.Values{"user_id": {userID}}, &out)
	return out
}

func (c *Client) CategorySpend(ctx context.Context, userID string, months int) CategorySpendResult {
	params := url.Values{"user_id": {userID}}
	if months > 0 {
		params.Set("months", strconv.Itoa(months))
	}
	var out CategorySpendResult
	c.get(ctx, "/metrics/category-spend", params, &out)
	return out
}

// get fetches endpoint with params and decodes into out. It reports whether
// a usable response was decoded; on any failure out is left untouched.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) bool {
	key := endpoint + "?" + params.Encode()
	if c.cache != nil {
		if entry, ok := c.cache.Get(key); ok && time.Since(entry.fetched) < c.ttl {
			return json.Unmarshal(entry.body, out) == nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+key, nil)
	if err != nil {
		log.Printf("analytics: build request %s: %v", endpoint, err)
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("analytics: %s: %v", endpoint, err)
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("analytics: %s: status %d", endpoint, resp.StatusCode)
		return false
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("analytics: read %s: %v", endpoint, err)
		return false
	}
	if err := json.Unmarshal(body, out); err != nil {
		log.Printf("analytics: decode %s: %v", endpoint, err)
		return false
	}
	if c.cache != nil {
		c.cache.Add(key, cacheEntry{body: body, fetched: time.Now()})
	}
	return true
}
