package httpserver

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authservice "ballotbox/contexts/identity-access/auth-service"
	pollservice "ballotbox/contexts/polling/poll-service"
	votingengine "ballotbox/contexts/polling/voting-engine"
)

func newTestServer(opts Options) *Server {
	opts.Addr = ":0"
	return New(
		pollservice.NewInMemoryModule(nil, slog.Default()),
		votingengine.NewInMemoryModule(slog.Default()),
		authservice.NewInMemoryModule("test-secret", slog.Default()),
		slog.Default(),
		opts,
	)
}

func TestSecurityHeadersApplied(t *testing.T) {
	server := newTestServer(Options{})
	req := httptest.NewRequest(http.MethodGet, "/api/polls", nil)

	rr := httptest.NewRecorder()
	server.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing nosniff header")
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("missing frame options header")
	}
}

func TestCreatePollRequiresAuthorization(t *testing.T) {
	server := newTestServer(Options{})
	body := []byte(`{"question":"Q?","choices":["A","B"]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/polls", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCastVoteRequiresAuthorization(t *testing.T) {
	server := newTestServer(Options{})
	req := httptest.NewRequest(http.MethodPost, "/api/votes", bytes.NewReader([]byte(`{"choice":"c-1"}`)))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestVoteHistoryRejectsBadToken(t *testing.T) {
	server := newTestServer(Options{})
	req := httptest.NewRequest(http.MethodGet, "/api/votes/history", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestRateLimitThrottlesMutations(t *testing.T) {
	server := newTestServer(Options{
		RateLimitPerMinute: 2,
		EnableRateLimiter:  true,
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/votes", bytes.NewReader([]byte(`{"choice":"c-1"}`)))
		req.RemoteAddr = "10.0.0.9:1234"
		rr := httptest.NewRecorder()
		server.handler.ServeHTTP(rr, req)
		if rr.Code == http.StatusTooManyRequests {
			t.Fatalf("request %d throttled too early", i)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/votes", bytes.NewReader([]byte(`{"choice":"c-1"}`)))
	req.RemoteAddr = "10.0.0.9:1234"
	rr := httptest.NewRecorder()
	server.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d body=%s", rr.Code, rr.Body.String())
	}

	// Reads and other clients stay unthrottled.
	getReq := httptest.NewRequest(http.MethodGet, "/api/polls", nil)
	getReq.RemoteAddr = "10.0.0.9:1234"
	getRR := httptest.NewRecorder()
	server.handler.ServeHTTP(getRR, getReq)
	if getRR.Code != http.StatusOK {
		t.Fatalf("read throttled: %d", getRR.Code)
	}
	otherReq := httptest.NewRequest(http.MethodPost, "/api/votes", bytes.NewReader([]byte(`{"choice":"c-1"}`)))
	otherReq.RemoteAddr = "10.0.0.7:1234"
	otherRR := httptest.NewRecorder()
	server.handler.ServeHTTP(otherRR, otherReq)
	if otherRR.Code == http.StatusTooManyRequests {
		t.Fatalf("other client throttled by shared window")
	}
}

func TestLogoutRequiresAuthorization(t *testing.T) {
	server := newTestServer(Options{})

	registerBody := []byte(`{"username":"frank","email":"frank@example.com","password":"longenough"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(registerBody))
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("register failed: %d body=%s", rr.Code, rr.Body.String())
	}
	var registered struct {
		Tokens struct {
			Access  string `json:"access"`
			Refresh string `json:"refresh"`
		} `json:"tokens"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &registered); err != nil {
		t.Fatalf("decode register response: %v", err)
	}

	logoutBody := []byte(`{"refresh":"` + registered.Tokens.Refresh + `"}`)
	req = httptest.NewRequest(http.MethodPost, "/api/auth/logout", bytes.NewReader(logoutBody))
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("logout without bearer token must be 401, got %d body=%s", rr.Code, rr.Body.String())
	}

	refreshBody := []byte(`{"refresh":"` + registered.Tokens.Refresh + `"}`)
	req = httptest.NewRequest(http.MethodPost, "/api/auth/refresh", bytes.NewReader(refreshBody))
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("rejected logout must not revoke the refresh token, got %d body=%s", rr.Code, rr.Body.String())
	}
	var rotated struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &rotated); err != nil {
		t.Fatalf("decode refresh response: %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/auth/logout", bytes.NewReader([]byte(`{"refresh":"`+rotated.Refresh+`"}`)))
	req.Header.Set("Authorization", "Bearer "+rotated.Access)
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("authenticated logout failed: %d body=%s", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/auth/refresh", bytes.NewReader([]byte(`{"refresh":"`+rotated.Refresh+`"}`)))
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("refresh after logout must be 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestRateLimiterEvictsExpiredWindows(t *testing.T) {
	limiter := newRateLimiter(5)
	current := time.Unix(1_700_000_000, 0)
	limiter.now = func() time.Time { return current }

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		if !limiter.allow(ip) {
			t.Fatalf("fresh window for %s must be allowed", ip)
		}
	}
	if len(limiter.windows) != 3 {
		t.Fatalf("expected 3 tracked windows, got %d", len(limiter.windows))
	}

	current = current.Add(2 * time.Minute)
	if !limiter.allow("10.0.0.9") {
		t.Fatalf("new client after window expiry must be allowed")
	}
	if len(limiter.windows) != 1 {
		t.Fatalf("expired windows must be evicted, %d remain", len(limiter.windows))
	}
	if _, ok := limiter.windows["10.0.0.9"]; !ok {
		t.Fatalf("active window must survive eviction")
	}
}
