package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"payrun/internal/domain/auth"
)

func noContent() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRateLimitUsesUserKeyBeforeIPFallback(t *testing.T) {
	limited := RateLimit(0.001, 1)(noContent())

	first := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/batches", nil)
	first = first.WithContext(WithUser(first.Context(), auth.UserContext{UserID: "user-1"}))
	first.RemoteAddr = "198.51.100.11:2222"
	firstRec := httptest.NewRecorder()
	limited.ServeHTTP(firstRec, first)
	if firstRec.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", firstRec.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/batches", nil)
	second = second.WithContext(WithUser(second.Context(), auth.UserContext{UserID: "user-1"}))
	second.RemoteAddr = "198.51.100.12:3333"
	secondRec := httptest.NewRecorder()
	limited.ServeHTTP(secondRec, second)
	if secondRec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled by user key, got %d", secondRec.Code)
	}
}

func TestRateLimitFallsBackToIP(t *testing.T) {
	limited := RateLimit(0.001, 1)(noContent())

	first := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/calculate", nil)
	first.RemoteAddr = "203.0.113.10:4444"
	firstRec := httptest.NewRecorder()
	limited.ServeHTTP(firstRec, first)
	if firstRec.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", firstRec.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/calculate", nil)
	second.RemoteAddr = "203.0.113.10:5555"
	secondRec := httptest.NewRecorder()
	limited.ServeHTTP(secondRec, second)
	if secondRec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled by ip key, got %d", secondRec.Code)
	}

	other := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/calculate", nil)
	other.RemoteAddr = "203.0.113.11:5555"
	otherRec := httptest.NewRecorder()
	limited.ServeHTTP(otherRec, other)
	if otherRec.Code != http.StatusNoContent {
		t.Fatalf("expected a different client to pass, got %d", otherRec.Code)
	}
}

func TestRateLimitRefills(t *testing.T) {
	limited := RateLimit(25, 1)(noContent())

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/calculate", nil)
		req.RemoteAddr = "192.0.2.20:1111"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send(); code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", code)
	}
	if code := send(); code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", code)
	}
	time.Sleep(60 * time.Millisecond)
	if code := send(); code != http.StatusNoContent {
		t.Fatalf("expected request after refill to pass, got %d", code)
	}
}

func TestRateLimitReturnsRetryMetadata(t *testing.T) {
	limited := RateLimit(0.001, 1)(noContent())

	req1 := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/calculate", nil)
	req1.RemoteAddr = "192.0.2.30:1234"
	limited.ServeHTTP(httptest.NewRecorder(), req1)

	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/calculate", nil)
	req2.RemoteAddr = "192.0.2.30:1234"
	rec := httptest.NewRecorder()
	limited.ServeHTTP(rec, req2)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected throttled response, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
	if rec.Header().Get("X-RateLimit-Reset") == "" {
		t.Fatal("expected X-RateLimit-Reset header")
	}
}

func TestRateLimitDisabled(t *testing.T) {
	limited := RateLimit(0, 1)(noContent())
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "192.0.2.40:1234"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: expected pass with limiting disabled, got %d", i+1, rec.Code)
		}
	}
}

func TestMutationRateLimitScope(t *testing.T) {
	limited := MutationRateLimit(0.001, 1)(noContent())

	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/payroll/periods", nil)
		req.RemoteAddr = "198.51.100.40:8888"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected read request %d to bypass limits, got %d", i+1, rec.Code)
		}
	}

	for i, want := range []int{http.StatusNoContent, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/periods", nil)
		req.RemoteAddr = "198.51.100.40:8888"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("mutation %d: expected %d, got %d", i+1, want, rec.Code)
		}
	}
}

func TestRateLimitEvictsIdleClients(t *testing.T) {
	rl := newRateLimiter(10, 5, clientIPKey)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	hit := func(ip string) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/batches", nil)
		req.Header.Set("X-Forwarded-For", ip)
		if !rl.enforce(httptest.NewRecorder(), req) {
			t.Fatalf("expected %s to pass", ip)
		}
	}
	for _, ip := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
		hit(ip)
	}
	if n := len(rl.clients); n != 3 {
		t.Fatalf("expected 3 tracked clients, got %d", n)
	}

	now = now.Add(30 * time.Second)
	hit("203.0.113.1")
	now = now.Add(45 * time.Second)
	hit("203.0.113.4")
	if n := len(rl.clients); n != 2 {
		t.Fatalf("expected idle clients to be evicted, got %d tracked", n)
	}
}
