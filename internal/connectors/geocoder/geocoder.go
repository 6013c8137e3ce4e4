// Package geocoder resolves postcodes to coordinates over a pluggable
// HTTP backend, with a Redis cache in front so repeated lookups for the
// same postcode never leave the process twice in a day. Every failure
// path returns ok=false, which degrades the geography index to
// outward-prefix matching.
package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"storeassist/internal/common/config"
	"storeassist/internal/common/logger"
)

type point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// backendResponse accepts both {lat, lon} and {latitude, longitude}.
type backendResponse struct {
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Client is the HTTP geocoder. A nil redis client disables caching.
type Client struct {
	cfg      config.GeocoderConfig
	http     *http.Client
	cache    *redis.Client
	cacheTTL time.Duration
	log      logger.Logger
}

func New(cfg config.GeocoderConfig, cache *redis.Client, log logger.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 6 * time.Second
	}
	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: timeout},
		cache:    cache,
		cacheTTL: time.Duration(cfg.CacheTTLSeconds) * time.Second,
		log:      log,
	}
}

func normPostcode(pc string) string {
	return strings.ToUpper(strings.Join(strings.Fields(pc), ""))
}

// Geocode implements the geography index's Geocoder contract.
func (c *Client) Geocode(ctx context.Context, postcode string) (float64, float64, bool) {
	if !c.cfg.Enabled || c.cfg.BaseURL == "" {
		return 0, 0, false
	}
	pc := normPostcode(postcode)
	if pc == "" {
		return 0, 0, false
	}

	if pt, ok := c.fromCache(ctx, pc); ok {
		return pt.Lat, pt.Lon, true
	}

	pt, err := c.lookup(ctx, pc)
	if err != nil {
		c.log.Warn("geocode lookup failed", map[string]interface{}{
			"postcode": pc, "error": err.Error(),
		})
		return 0, 0, false
	}

	c.toCache(ctx, pc, pt)
	return pt.Lat, pt.Lon, true
}

func (c *Client) lookup(ctx context.Context, pc string) (point, error) {
	u := fmt.Sprintf("%s?q=%s", c.cfg.BaseURL, url.QueryEscape(pc))

	retries := c.cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return point{}, ctx.Err()
			case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
			}
		}
		pt, err := c.call(ctx, u)
		if err == nil {
			return pt, nil
		}
		lastErr = err
	}
	return point{}, lastErr
}

func (c *Client) call(ctx context.Context, u string) (point, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return point{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return point{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return point{}, fmt.Errorf("backend status %d", resp.StatusCode)
	}

	var body backendResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return point{}, err
	}

	lat, lon := body.Lat, body.Lon
	if lat == nil {
		lat = body.Latitude
	}
	if lon == nil {
		lon = body.Longitude
	}
	if lat == nil || lon == nil {
		return point{}, fmt.Errorf("backend response missing coordinates")
	}
	return point{Lat: *lat, Lon: *lon}, nil
}

func (c *Client) cacheKey(pc string) string {
	return "geocode:" + pc
}

func (c *Client) fromCache(ctx context.Context, pc string) (point, bool) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return point{}, false
	}
	raw, err := c.cache.Get(ctx, c.cacheKey(pc)).Result()
	if err != nil {
		return point{}, false
	}
	var pt point
	if err := json.Unmarshal([]byte(raw), &pt); err != nil {
		return point{}, false
	}
	return pt, true
}

func (c *Client) toCache(ctx context.Context, pc string, pt point) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(pt)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, c.cacheKey(pc), raw, c.cacheTTL).Err(); err != nil {
		c.log.Warn("geocode cache write failed", map[string]interface{}{
			"postcode": pc, "error": err.Error(),
		})
	}
}
