package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type stubLimiterStore struct {
	counts map[string]int64
}

func (s *stubLimiterStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if s.counts == nil {
		s.counts = make(map[string]int64)
	}
	s.counts[key]++
	return s.counts[key], nil
}

func loginRequest(email, ip string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"`+email+`","password":"x"}`))
	req.Header.Set("X-Forwarded-For", ip)
	return req
}

func TestLoginRateLimitPerEmail(t *testing.T) {
	store := &stubLimiterStore{}
	handler := LoginRateLimit(NewLoginRateLimitPolicy(time.Minute, 0, 2), store, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest("op@workshop.cn", "10.0.0.1"))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("attempt %d should pass, got %d", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("OP@workshop.cn ", "10.0.0.2"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third attempt for same email must be limited, got %d", rec.Code)
	}

	// a different email is unaffected
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("other@workshop.cn", "10.0.0.1"))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("different email must pass, got %d", rec.Code)
	}
}

func TestLoginRateLimitPerIP(t *testing.T) {
	store := &stubLimiterStore{}
	handler := LoginRateLimit(NewLoginRateLimitPolicy(time.Minute, 1, 0), store, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("a@b.cn", "10.0.0.1"))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("first attempt should pass, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("c@d.cn", "10.0.0.1"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second attempt from same ip must be limited, got %d", rec.Code)
	}
}

func TestLoginRateLimitDisabled(t *testing.T) {
	handler := LoginRateLimit(NewLoginRateLimitPolicy(0, 5, 5), &stubLimiterStore{}, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest("a@b.cn", "10.0.0.1"))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("disabled policy must never limit, got %d", rec.Code)
		}
	}
}
