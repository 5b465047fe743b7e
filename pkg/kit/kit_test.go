package kit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestIPRateLimiter_WindowSlides(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewIPRateLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	if !l.Allow("1.2.3.4") || !l.Allow("1.2.3.4") {
		t.Fatalf("first two hits must pass")
	}
	if l.Allow("1.2.3.4") {
		t.Fatalf("third hit inside window must be rejected")
	}
	if !l.Allow("5.6.7.8") {
		t.Fatalf("other ip must not be limited")
	}

	now = now.Add(61 * time.Second)
	if !l.Allow("1.2.3.4") {
		t.Fatalf("hit after window must pass")
	}
}

func TestIPRateLimiter_Middleware(t *testing.T) {
	l := NewIPRateLimiter(1, time.Minute)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for i, want := range []int{http.StatusNoContent, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/sessions", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("request %d: status=%d want=%d", i, rec.Code, want)
		}
		if want == http.StatusTooManyRequests && rec.Header().Get("Retry-After") != "60" {
			t.Fatalf("Retry-After=%q", rec.Header().Get("Retry-After"))
		}
	}
}

func TestIPRateLimiter_IgnoresForwardedForByDefault(t *testing.T) {
	l := NewIPRateLimiter(1, time.Minute)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for i, spoofed := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		req := httptest.NewRequest(http.MethodPost, "/sessions", nil)
		req.RemoteAddr = "203.0.113.7:4321"
		req.Header.Set("X-Forwarded-For", spoofed)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		want := http.StatusTooManyRequests
		if i == 0 {
			want = http.StatusNoContent
		}
		if rec.Code != want {
			t.Fatalf("request %d (xff=%s): status=%d want=%d", i, spoofed, rec.Code, want)
		}
	}
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name       string
		remote     string
		xff        []string
		trustProxy bool
		want       string
	}{
		{"peer address", "203.0.113.7:4321", nil, false, "203.0.113.7"},
		{"untrusted xff ignored", "203.0.113.7:4321", []string{"9.9.9.9"}, false, "203.0.113.7"},
		{"trusted takes last hop", "10.0.0.2:80", []string{"9.9.9.9, 198.51.100.4"}, true, "198.51.100.4"},
		{"trusted across header lines", "10.0.0.2:80", []string{"9.9.9.9", "198.51.100.4"}, true, "198.51.100.4"},
		{"trusted without xff", "10.0.0.2:80", nil, true, "10.0.0.2"},
		{"no port", "10.0.0.2", nil, false, "10.0.0.2"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			for _, v := range tc.xff {
				req.Header.Add("X-Forwarded-For", v)
			}
			if got := ClientIP(req, tc.trustProxy); got != tc.want {
				t.Fatalf("ClientIP=%q want=%q", got, tc.want)
			}
		})
	}
}

func TestMetricsAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	cases := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{"no token configured", "", "Bearer x", http.StatusForbidden},
		{"missing header", "secret", "", http.StatusForbidden},
		{"wrong token", "secret", "Bearer nope", http.StatusForbidden},
		{"right token", "secret", "Bearer secret", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			MetricsAuth(tc.token)(ok).ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status=%d want=%d", rec.Code, tc.want)
			}
		})
	}
}

func TestMetrics_CountsByStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "test")

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	got := testutil.ToFloat64(m.Requests.WithLabelValues("test", http.MethodGet, "/x", "418"))
	if got != 1 {
		t.Fatalf("requests=%v want=1", got)
	}
}

func TestGetenvFallbacks(t *testing.T) {
	t.Setenv("KIT_INT", "nope")
	t.Setenv("KIT_DUR", "-5s")

	if got := GetenvInt("KIT_INT", 7); got != 7 {
		t.Fatalf("int=%d", got)
	}
	if got := GetenvDuration("KIT_DUR", time.Hour); got != time.Hour {
		t.Fatalf("dur=%v", got)
	}
	t.Setenv("KIT_BOOL", "maybe")
	if got := GetenvBool("KIT_BOOL", true); !got {
		t.Fatalf("bool=%v", got)
	}
	if got := Getenv("KIT_MISSING", "def"); got != "def" {
		t.Fatalf("str=%q", got)
	}
}
