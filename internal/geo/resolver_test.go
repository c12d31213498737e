package geo

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestIsLookupable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ip   string
		want bool
	}{
		{"empty", "", false},
		{"garbage", "not-an-ip", false},
		{"ipv4 loopback", "127.0.0.1", false},
		{"ipv6 loopback", "::1", false},
		{"ten slash eight", "10.1.2.3", false},
		{"one seventy two low edge", "172.16.0.1", false},
		{"one seventy two high edge", "172.31.255.254", false},
		{"one seventy two outside range", "172.32.0.1", true},
		{"one ninety two private", "192.168.1.50", false},
		{"link local", "169.254.0.1", false},
		{"public ipv4", "8.8.8.8", true},
		{"public ipv6", "2606:4700:4700::1111", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsLookupable(tt.ip); got != tt.want {
				t.Errorf("IsLookupable(%q) = %v, want %v", tt.ip, got, tt.want)
			}
		})
	}
}

func TestResolve_PrivateIPsSkipNetwork(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"status":"success","country":"Germany","city":"Berlin","timezone":"Europe/Berlin"}`)
	}))
	defer srv.Close()

	resolver := NewResolver(srv.URL, time.Second, nil, testLogger())

	for _, ip := range []string{"", "127.0.0.1", "::1", "10.0.0.1", "172.16.0.1", "172.31.255.255", "192.168.0.1", "bogus"} {
		loc := resolver.Resolve(context.Background(), ip)
		if !loc.IsZero() {
			t.Errorf("Resolve(%q) = %+v, want zero location", ip, loc)
		}
	}

	if n := calls.Load(); n != 0 {
		t.Errorf("lookup service received %d calls, want 0", n)
	}
}

func TestResolve_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/8.8.8.8" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"status":"success","country":"United States","city":"Mountain View","timezone":"America/Los_Angeles"}`)
	}))
	defer srv.Close()

	resolver := NewResolver(srv.URL, time.Second, nil, testLogger())
	loc := resolver.Resolve(context.Background(), "8.8.8.8")

	if loc.Country != "United States" {
		t.Errorf("Country = %q, want United States", loc.Country)
	}
	if loc.City != "Mountain View" {
		t.Errorf("City = %q, want Mountain View", loc.City)
	}
	if loc.Timezone != "America/Los_Angeles" {
		t.Errorf("Timezone = %q, want America/Los_Angeles", loc.Timezone)
	}
}

func TestResolve_FailureModesDegradeToZero(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			"non-200 status",
			func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
		},
		{
			"payload status fail",
			func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"status":"fail","message":"reserved range"}`)
			},
		},
		{
			"malformed body",
			func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{{{`)
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			resolver := NewResolver(srv.URL, time.Second, nil, testLogger())
			if loc := resolver.Resolve(context.Background(), "8.8.8.8"); !loc.IsZero() {
				t.Errorf("Resolve = %+v, want zero location", loc)
			}
		})
	}
}

func TestResolve_TimeoutDegradesToZero(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	resolver := NewResolver(srv.URL, 50*time.Millisecond, nil, testLogger())

	start := time.Now()
	loc := resolver.Resolve(context.Background(), "8.8.8.8")
	elapsed := time.Since(start)

	if !loc.IsZero() {
		t.Errorf("Resolve = %+v, want zero location", loc)
	}
	if elapsed > time.Second {
		t.Errorf("Resolve took %v, expected timeout well under 1s", elapsed)
	}
}

type fakeCache struct {
	store map[string]Location
	gets  int
	sets  int
}

func (f *fakeCache) GetGeo(ctx context.Context, ip string) (*Location, error) {
	f.gets++
	if loc, ok := f.store[ip]; ok {
		return &loc, nil
	}
	return nil, nil
}

func (f *fakeCache) SetGeo(ctx context.Context, ip string, loc Location) error {
	f.sets++
	f.store[ip] = loc
	return nil
}

func TestResolve_CacheHitSkipsLookup(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"status":"success","country":"France","city":"Paris","timezone":"Europe/Paris"}`)
	}))
	defer srv.Close()

	cache := &fakeCache{store: map[string]Location{}}
	resolver := NewResolver(srv.URL, time.Second, cache, testLogger())

	first := resolver.Resolve(context.Background(), "1.2.3.4")
	second := resolver.Resolve(context.Background(), "1.2.3.4")

	if first != second {
		t.Errorf("cached result differs: %+v vs %+v", first, second)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("lookup service received %d calls, want 1", n)
	}
	if cache.sets != 1 {
		t.Errorf("cache sets = %d, want 1", cache.sets)
	}
}
