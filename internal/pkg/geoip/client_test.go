// internal/pkg/geoip/client_test.go
package geoip

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
)

func newTestResolver(t *testing.T, endpoint string) (*Resolver, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cfg := &config.Config{
		Geo: config.GeoConfig{
			Endpoint: endpoint,
			Timeout:  time.Second,
			CacheTTL: time.Hour,
		},
	}
	return NewResolver(cfg, rdb), rdb
}

func TestLookupResolvesCountryCodeAndCity(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"country_name":"Hong Kong","country":"HK","city":"Central"}`)
	}))
	defer srv.Close()

	resolver, rdb := newTestResolver(t, srv.URL)
	ctx := context.Background()

	loc := resolver.Lookup(ctx, "203.0.113.9")
	assert.Equal(t, "Hong Kong", loc.Country)
	assert.Equal(t, "HK", loc.CountryCode)
	assert.Equal(t, "Central", loc.City)

	// Cached as JSON per IP, so the second lookup never leaves Redis
	cached, err := rdb.Get(ctx, "geoip:203.0.113.9").Result()
	require.NoError(t, err)
	assert.Contains(t, cached, `"country_code":"HK"`)

	again := resolver.Lookup(ctx, "203.0.113.9")
	assert.Equal(t, loc, again)
	assert.Equal(t, 1, calls)
}

func TestLookupPrivateAddressIsUnknown(t *testing.T) {
	resolver, _ := newTestResolver(t, "http://invalid.test")

	for _, ip := range []string{"", "127.0.0.1", "192.168.1.50", "not-an-ip"} {
		loc := resolver.Lookup(context.Background(), ip)
		assert.Equal(t, Unknown, loc.Country, "ip %q", ip)
		assert.Empty(t, loc.CountryCode)
		assert.Empty(t, loc.City)
	}
}

func TestLookupFailureIsUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	resolver, _ := newTestResolver(t, srv.URL)
	loc := resolver.Lookup(context.Background(), "203.0.113.10")
	assert.Equal(t, Unknown, loc.Country)
}
