package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_RejectsOverBurst(t *testing.T) {
	var buf bytes.Buffer
	rl := NewRateLimiter(0.001, 2, newTestLogger(&buf))
	defer rl.Stop()
	handler := rl.Handler(okHandler())

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/reviews", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	assert.Equal(t, []int{200, 200, 429}, codes)
}

func TestRateLimiter_SeparateBucketsPerIP(t *testing.T) {
	var buf bytes.Buffer
	rl := NewRateLimiter(0.001, 1, newTestLogger(&buf))
	defer rl.Stop()
	handler := rl.Handler(okHandler())

	for _, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		req := httptest.NewRequest(http.MethodPost, "/reviews", nil)
		req.Header.Set("X-Forwarded-For", ip+", 172.16.0.1")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code, ip)
	}
}

func TestVisitorStore_EvictsStale(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newVisitorStore(1, 1, time.Minute)
	s.now = func() time.Time { return now }

	s.limiter("a")
	now = now.Add(30 * time.Second)
	s.limiter("b")
	now = now.Add(45 * time.Second)
	s.evictStale()

	assert.Equal(t, 1, s.size())
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": " 203.0.113.9 , 10.0.0.1"}, "1.1.1.1:1", "203.0.113.9"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.4"}, "1.1.1.1:1", "198.51.100.4"},
		{"garbage header", map[string]string{"X-Forwarded-For": "nope"}, "192.0.2.1:8080", "192.0.2.1"},
		{"no port", nil, "192.0.2.7", "192.0.2.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}
