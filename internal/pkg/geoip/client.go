// internal/pkg/geoip/client.go
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
)

// Unknown is the placeholder for any field a lookup cannot resolve
const Unknown = "Unknown"

// Location is the resolved geolocation for an IP address
type Location struct {
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
	City        string `json:"city"`
}

// Resolver resolves IP addresses to locations via ipapi.co
type Resolver struct {
	config *config.Config
	redis  *redis.Client
	client *http.Client
}

// NewResolver creates a new geolocation resolver
func NewResolver(cfg *config.Config, redisClient *redis.Client) *Resolver {
	return &Resolver{
		config: cfg,
		redis:  redisClient,
		client: &http.Client{
			Timeout: cfg.Geo.Timeout,
		},
	}
}

type lookupResponse struct {
	CountryName string `json:"country_name"`
	CountryCode string `json:"country"`
	City        string `json:"city"`
}

// Lookup resolves an IP address to a location. Results are cached in Redis
// as JSON per IP; any failure resolves to Unknown fields rather than an error.
func (r *Resolver) Lookup(ctx context.Context, ip string) Location {
	if ip == "" || isPrivate(ip) {
		return unknownLocation()
	}

	cacheKey := fmt.Sprintf("geoip:%s", ip)
	if cached, err := r.redis.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
		var loc Location
		if json.Unmarshal([]byte(cached), &loc) == nil && loc.Country != "" {
			return loc
		}
	}

	loc := r.lookup(ctx, ip)

	// Cache even the Unknown result to avoid hammering the lookup service
	if data, err := json.Marshal(loc); err == nil {
		_ = r.redis.Set(ctx, cacheKey, data, r.config.Geo.CacheTTL).Err()
	}

	return loc
}

func (r *Resolver) lookup(ctx context.Context, ip string) Location {
	url := fmt.Sprintf("%s/%s/json/", strings.TrimRight(r.config.Geo.Endpoint, "/"), ip)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return unknownLocation()
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return unknownLocation()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return unknownLocation()
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return unknownLocation()
	}

	if body.CountryName == "" {
		return unknownLocation()
	}
	return Location{
		Country:     body.CountryName,
		CountryCode: body.CountryCode,
		City:        body.City,
	}
}

func unknownLocation() Location {
	return Location{Country: Unknown}
}

// isPrivate reports whether the address is loopback or from a private range,
// which the lookup service cannot resolve
func isPrivate(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return true
	}
	return parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified()
}
