package kit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIPRateLimiter_PerIPBudget(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewIPRateLimiter(3, time.Minute)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !l.Allow("1.1.1.1") {
			t.Fatalf("request %d denied", i)
		}
	}
	if l.Allow("1.1.1.1") {
		t.Fatalf("4th request allowed")
	}
	if !l.Allow("2.2.2.2") {
		t.Fatalf("other ip denied")
	}

	now = now.Add(20 * time.Second)
	if !l.Allow("1.1.1.1") {
		t.Fatalf("token not refilled after window/limit")
	}
}

func TestIPRateLimiter_PrunesIdleClients(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewIPRateLimiter(1, time.Second)
	l.now = func() time.Time { return now }

	l.Allow("1.1.1.1")
	now = now.Add(time.Minute)
	l.Allow("2.2.2.2")

	if _, ok := l.clients["1.1.1.1"]; ok {
		t.Fatalf("idle client not pruned")
	}
}

func TestIPRateLimiter_Middleware(t *testing.T) {
	l := NewIPRateLimiter(1, time.Hour)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/users/login", nil)
	req.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("first status=%d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second status=%d", rec.Code)
	}
}
