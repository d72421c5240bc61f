package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveFrom(e *echo.Echo, handler echo.HandlerFunc, remoteAddr string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	_ = handler(e.NewContext(req, rec))
	return rec
}

func okLimited(l *IPRateLimiter) echo.HandlerFunc {
	return l.Middleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
}

func TestRateLimiter_BurstThenLimited(t *testing.T) {
	e := echo.New()
	limiter := NewIPRateLimiter(1, 3)
	handler := okLimited(limiter)

	for i := 0; i < 3; i++ {
		rec := serveFrom(e, handler, "192.168.1.100:12345", nil)
		assert.Equal(t, http.StatusOK, rec.Code, "request %d inside burst", i)
	}

	rec := serveFrom(e, handler, "192.168.1.100:12345", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "SYSTEM_006")
}

func TestRateLimiter_SeparateBucketsPerIP(t *testing.T) {
	e := echo.New()
	handler := okLimited(NewIPRateLimiter(1, 1))

	assert.Equal(t, http.StatusOK, serveFrom(e, handler, "10.0.0.1:1000", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, serveFrom(e, handler, "10.0.0.1:1000", nil).Code)
	assert.Equal(t, http.StatusOK, serveFrom(e, handler, "10.0.0.2:1000", nil).Code)
}

func TestRateLimiter_DefaultsForInvalidSettings(t *testing.T) {
	limiter := NewIPRateLimiter(0, -1)
	assert.Equal(t, float64(defaultRequestsPerSecond), float64(limiter.rps))
	assert.Equal(t, defaultBurst, limiter.burst)
}

func TestGetIP(t *testing.T) {
	e := echo.New()
	cases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"forwarded chain uses first hop", map[string]string{echo.HeaderXForwardedFor: "203.0.113.7, 10.0.0.1"}, "203.0.113.7"},
		{"real ip header", map[string]string{echo.HeaderXRealIP: "198.51.100.4"}, "198.51.100.4"},
		{"peer address", nil, "192.0.2.10"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.0.2.10:5555"
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			c := e.NewContext(req, httptest.NewRecorder())
			assert.Equal(t, tc.want, getIP(c))
		})
	}
}

func TestRateLimiter_Sweep(t *testing.T) {
	e := echo.New()
	limiter := NewIPRateLimiter(5, 10)
	current := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }
	handler := okLimited(limiter)

	serveFrom(e, handler, "10.0.0.1:1", nil)
	current = current.Add(5 * time.Minute)
	serveFrom(e, handler, "10.0.0.2:1", nil)
	require.Equal(t, 2, limiter.size())

	assert.Equal(t, 1, limiter.Sweep(visitorIdleTimeout))
	assert.Equal(t, 1, limiter.size())
}

func TestRateLimiter_Concurrent(t *testing.T) {
	e := echo.New()
	handler := okLimited(NewIPRateLimiter(1, 5))

	var mu sync.Mutex
	allowed := 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if serveFrom(e, handler, "172.16.0.9:4000", nil).Code == http.StatusOK {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, allowed, 5)
	assert.Less(t, allowed, 20)
}
