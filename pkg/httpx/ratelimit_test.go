package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tablechat/tablechat/pkg/httpx"
)

func TestIPKeyExtractor(t *testing.T) {
	t.Run("extracts from RemoteAddr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"

		ip := httpx.IPKeyExtractor(req)
		require.Equal(t, "192.168.1.1", ip)
	})

	t.Run("prefers X-Forwarded-For", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Forwarded-For", "203.0.113.1, 192.168.1.1")

		ip := httpx.IPKeyExtractor(req)
		require.Equal(t, "203.0.113.1", ip)
	})

	t.Run("uses X-Real-IP if X-Forwarded-For absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Real-IP", "203.0.113.2")

		ip := httpx.IPKeyExtractor(req)
		require.Equal(t, "203.0.113.2", ip)
	})
}

func TestCompositeKeyExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"

	extractor := httpx.CompositeKeyExtractor(":",
		httpx.IPKeyExtractor,
		func(*http.Request) string { return "acct-1" },
	)
	require.Equal(t, "192.168.1.1:acct-1", extractor(req))

	// Empty components are skipped, not joined as empty strings
	sparse := httpx.CompositeKeyExtractor(":",
		func(*http.Request) string { return "" },
		httpx.IPKeyExtractor,
	)
	require.Equal(t, "192.168.1.1", sparse(req))
}

func TestRateLimitMiddleware(t *testing.T) {
	config := httpx.RateLimitConfig{
		RequestsPerWindow: 2,
		Window:            time.Minute,
		Burst:             2,
	}

	h := httpx.Chain(okHandler(), httpx.RateLimitByIP(config))

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	// First two requests from the same IP pass, the third is limited
	require.Equal(t, http.StatusOK, send("10.0.0.1:1000").Code)
	require.Equal(t, http.StatusOK, send("10.0.0.1:1000").Code)

	limited := send("10.0.0.1:1000")
	require.Equal(t, http.StatusTooManyRequests, limited.Code)
	require.NotEmpty(t, limited.Header().Get("Retry-After"))
	require.Equal(t, "2", limited.Header().Get("X-RateLimit-Limit"))

	// A different IP has its own bucket
	require.Equal(t, http.StatusOK, send("10.0.0.2:1000").Code)
}

func TestParseRateLimitFromEnv(t *testing.T) {
	t.Setenv("RATELIMIT_TESTPROFILE_REQUESTS", "42")
	t.Setenv("RATELIMIT_TESTPROFILE_WINDOW_SEC", "30")
	t.Setenv("RATELIMIT_TESTPROFILE_BURST", "7")

	base := httpx.RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}
	got := httpx.ParseRateLimitFromEnv("TESTPROFILE", base)

	require.Equal(t, 42, got.RequestsPerWindow)
	require.Equal(t, 30*time.Second, got.Window)
	require.Equal(t, 7, got.Burst)
}
