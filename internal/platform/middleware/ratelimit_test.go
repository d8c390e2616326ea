package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func doRateLimited(e *echo.Echo, mw echo.MiddlewareFunc, ip string) (*httptest.ResponseRecorder, error) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = ip + ":1234"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := mw(func(c echo.Context) error { return c.String(http.StatusOK, "ok") })(c)
	return rec, err
}

func TestRateLimit_RequestsWithinLimit(t *testing.T) {
	e := echo.New()
	mw := RateLimit(NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 5}))

	for i := 0; i < 5; i++ {
		if _, err := doRateLimited(e, mw, "10.0.0.1"); err != nil {
			t.Fatalf("request %d: unexpected error: %v", i, err)
		}
	}
}

func TestRateLimit_ExceedsLimit(t *testing.T) {
	e := echo.New()
	mw := RateLimit(NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 2}))

	for i := 0; i < 2; i++ {
		if _, err := doRateLimited(e, mw, "10.0.0.1"); err != nil {
			t.Fatalf("request %d: unexpected error: %v", i, err)
		}
	}

	rec, err := doRateLimited(e, mw, "10.0.0.1")
	if err == nil {
		t.Fatal("expected rate limit error")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", httpErr.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Error("expected X-RateLimit-Remaining: 0")
	}
}

func TestRateLimit_PerIPIsolation(t *testing.T) {
	e := echo.New()
	mw := RateLimit(NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1}))

	if _, err := doRateLimited(e, mw, "10.0.0.1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := doRateLimited(e, mw, "10.0.0.1"); err == nil {
		t.Fatal("expected second request from same IP to be limited")
	}
	if _, err := doRateLimited(e, mw, "10.0.0.2"); err != nil {
		t.Fatalf("expected other IP to be unaffected, got %v", err)
	}
}

func TestIPRateLimiter_Cleanup(t *testing.T) {
	l := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1, IdleTimeout: time.Minute})
	l.Limiter("10.0.0.1")
	l.Limiter("10.0.0.2")

	if removed := l.Cleanup(time.Now()); removed != 0 {
		t.Errorf("expected nothing removed, got %d", removed)
	}
	if removed := l.Cleanup(time.Now().Add(2 * time.Minute)); removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}
	if l.Len() != 0 {
		t.Errorf("expected no tracked clients, got %d", l.Len())
	}
}

func TestIPRateLimiter_SameLimiterPerIP(t *testing.T) {
	l := NewIPRateLimiter(DefaultRateLimitConfig())
	if l.Limiter("10.0.0.1") != l.Limiter("10.0.0.1") {
		t.Error("expected the same limiter for repeated lookups")
	}
}

func TestDefaultRateLimitConfig(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	if cfg.RequestsPerSecond != 50 || cfg.BurstSize != 100 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}
