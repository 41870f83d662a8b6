// Package market fetches top movers from a trading data API. The API is
// probed before first use and again after any failure.
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/keshon/sentinel/internal/collab"
	"github.com/keshon/sentinel/pkg/retrylimit"
	"github.com/rs/zerolog"
)

const (
	DefaultExchange  = "binance"
	DefaultTimeframe = "24h"
	DefaultLimit     = 10
)

var ErrNotConfigured = errors.New("market api not configured")

// Client implements collab.MarketDataProvider.
type Client struct {
	base         string
	apiKey       string
	http         *http.Client
	probeTimeout time.Duration
	limiter      *retrylimit.AdaptiveLimiter

	mu      sync.Mutex
	healthy bool
	checked time.Time
}

func New(baseURL, apiKey string, probeTimeout time.Duration, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	if probeTimeout <= 0 {
		probeTimeout = 5 * time.Second
	}
	return &Client{
		base:         strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		http:         hc,
		probeTimeout: probeTimeout,
		limiter:      retrylimit.NewAdaptiveLimiter(5, 1, 10, 1, 0.5),
	}
}

// Healthy reports the result of the last probe.
func (c *Client) Healthy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.healthy
}

// LastProbe returns when the API was last probed.
func (c *Client) LastProbe() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checked
}

// Probe checks the health endpoint within the probe timeout.
func (c *Client) Probe(ctx context.Context) error {
	if c.base == "" {
		return ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	err := c.do(ctx, "/health", nil, nil)

	c.mu.Lock()
	c.healthy = err == nil
	c.checked = time.Now()
	c.mu.Unlock()

	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("market api probe failed")
	}
	return err
}

func (c *Client) ensureHealthy(ctx context.Context) error {
	if c.Healthy() {
		return nil
	}
	return c.Probe(ctx)
}

type moverDTO struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
	Volume    float64 `json:"volume"`
}

func (c *Client) Movers(ctx context.Context, exchange, timeframe string, limit int) ([]collab.Mover, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	if timeframe == "" {
		timeframe = DefaultTimeframe
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if err := c.ensureHealthy(ctx); err != nil {
		return nil, collab.Unavailable("market data", err)
	}

	q := url.Values{
		"exchange":  {strings.ToLower(exchange)},
		"timeframe": {strings.ToLower(timeframe)},
		"limit":     {strconv.Itoa(limit)},
	}
	var out struct {
		Movers []moverDTO `json:"movers"`
	}
	err := retrylimit.Do(ctx, c.limiter, retrylimit.DefaultConfig(), func(ctx context.Context) error {
		return c.do(ctx, "/movers", q, &out)
	})
	if err != nil {
		c.mu.Lock()
		c.healthy = false
		c.mu.Unlock()
		return nil, collab.Unavailable("market data", err)
	}

	movers := make([]collab.Mover, 0, len(out.Movers))
	for _, m := range out.Movers {
		movers = append(movers, collab.Mover(m))
	}
	if len(movers) > limit {
		movers = movers[:limit]
	}
	return movers, nil
}

func (c *Client) do(ctx context.Context, path string, q url.Values, dst any) error {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &retrylimit.Permanent{Err: err}
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := &retrylimit.StatusError{Code: resp.StatusCode, Body: string(body)}
		if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return &retrylimit.Permanent{Err: se}
		}
		return se
	}
	if dst == nil {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &retrylimit.Permanent{Err: fmt.Errorf("decode %s: %w", path, err)}
	}
	return nil
}
