//go:build integration

package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

var reCode = regexp.MustCompile(`\b\d{6}\b`)

// mailbox stands in for the transactional email API and keeps the last
// code sent to each recipient.
type mailbox struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *mailbox) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		To          []struct{ Email string } `json:"to"`
		TextContent string                   `json:"textContent"`
	}
	if r.URL.Path != "/v3/smtp/email" || r.Header.Get("api-key") == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.To) == 0 {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.codes[body.To[0].Email] = reCode.FindString(body.TextContent)
	m.mu.Unlock()

	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write([]byte(`{"messageId":"<1@test>"}`))
}

func (m *mailbox) code(t *testing.T, to string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.codes[to]
	if c == "" {
		t.Fatalf("no code delivered to %s", to)
	}
	return c
}

func startApp(t *testing.T, box *mailbox) string {
	t.Helper()
	ctx := context.Background()

	pg, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("clearshot"),
		tcpostgres.WithUsername("clearshot"),
		tcpostgres.WithPassword("clearshot"),
		tcpostgres.WithInitScripts(filepath.Join("..", "auth", "outbound", "db", "testdata", "schema.sql")),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres dsn: %v", err)
	}

	rd, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("start redis: %v", err)
	}
	t.Cleanup(func() { _ = rd.Terminate(context.Background()) })

	redisURL, err := rd.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("redis url: %v", err)
	}

	mailAPI := httptest.NewServer(box)
	t.Cleanup(mailAPI.Close)

	cfg := fmt.Sprintf(`
app:
  session:
    cookie_insecure: true
instrument:
  enabled: false
  log_mask_fields: code,token
database:
  url: %q
redis:
  url: %q
jwt:
  secret: e2e-secret
  issuer: clearshot
  ttl_hours: 24
hash:
  hmac:
    secret: e2e-hmac
mail:
  driver: api
  from: no-reply@clearshot.test
  from_name: OTP Login
  api:
    base_url: %q
    key: test-key
modules:
  auth:
    enabled: true
    otp_ttl_seconds: 300
    delivery_timeout_seconds: 5
    rate_limit:
      enabled: true
      max_sends: 3
      window_seconds: 60
`, dsn, redisURL, mailAPI.URL)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)

	application := New()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	application.Serve(l)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		application.Stop(ctx)
	})

	return "http://" + l.Addr().String()
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

func doJSON(t *testing.T, base, method, path string, payload any, token string) (int, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(payload); err != nil {
			t.Fatalf("encode json: %v", err)
		}
		body = buf
	}

	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	out := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	return resp.StatusCode, out
}

func TestOTPLoginEndToEnd(t *testing.T) {
	box := &mailbox{codes: map[string]string{}}
	base := startApp(t, box)

	const email = "user@example.com"
	var token string

	t.Run("health", func(t *testing.T) {
		status, body := doJSON(t, base, http.MethodGet, "/health", nil, "")
		if status != http.StatusOK || body["status"] != "ok" {
			t.Fatalf("health: %d %v", status, body)
		}
	})

	t.Run("send rejects bad phone", func(t *testing.T) {
		// Act
		status, body := doJSON(t, base, http.MethodPost, "/api/v1/auth/otp/send", map[string]string{"type": "sms", "value": "5551234567"}, "")

		// Assert
		if status != http.StatusBadRequest {
			t.Fatalf("status = %d, body %v", status, body)
		}
	})

	t.Run("send and verify", func(t *testing.T) {
		// Arrange
		status, body := doJSON(t, base, http.MethodPost, "/api/v1/auth/otp/send", map[string]string{"type": "email", "value": email}, "")
		if status != http.StatusOK {
			t.Fatalf("send failed: %d %v", status, body)
		}
		code := box.code(t, email)

		// Act
		wrongStatus, _ := doJSON(t, base, http.MethodPost, "/api/v1/auth/otp/verify", map[string]string{"type": "email", "value": email, "code": "000000"}, "")
		okStatus, okBody := doJSON(t, base, http.MethodPost, "/api/v1/auth/otp/verify", map[string]string{"type": "email", "value": email, "code": code}, "")
		againStatus, againBody := doJSON(t, base, http.MethodPost, "/api/v1/auth/otp/verify", map[string]string{"type": "email", "value": email, "code": code}, "")

		// Assert
		if wrongStatus != http.StatusBadRequest {
			t.Fatalf("wrong code status = %d", wrongStatus)
		}
		if okStatus != http.StatusOK || okBody["token"] == "" {
			t.Fatalf("verify failed: %d %v", okStatus, okBody)
		}
		if againStatus != http.StatusBadRequest || againBody["error"] != "Invalid OTP code" {
			t.Fatalf("reuse: %d %v", againStatus, againBody)
		}
		token, _ = okBody["token"].(string)
	})

	t.Run("session validate and me", func(t *testing.T) {
		status, body := doJSON(t, base, http.MethodPost, "/api/v1/auth/session/validate", map[string]string{"token": token}, "")
		if status != http.StatusOK || body["valid"] != true {
			t.Fatalf("validate: %d %v", status, body)
		}

		status, body = doJSON(t, base, http.MethodGet, "/api/v1/auth/me", nil, token)
		user, _ := body["user"].(map[string]any)
		if status != http.StatusOK || user["email"] != email {
			t.Fatalf("me: %d %v", status, body)
		}
	})

	t.Run("audit log", func(t *testing.T) {
		status, body := doJSON(t, base, http.MethodGet, "/api/v1/auth/otp/logs", nil, token)
		if status != http.StatusOK {
			t.Fatalf("logs: %d %v", status, body)
		}
		logs, _ := body["logs"].([]any)
		if len(logs) != 4 {
			t.Fatalf("expected 4 entries (send + 3 verifies), got %d", len(logs))
		}
		first, _ := logs[0].(map[string]any)
		if first["value"] != "us***@example.com" {
			t.Fatalf("recipient not masked: %v", first["value"])
		}
	})

	t.Run("send is rate limited", func(t *testing.T) {
		payload := map[string]string{"type": "email", "value": "limited@example.com"}
		for i := range 3 {
			if status, body := doJSON(t, base, http.MethodPost, "/api/v1/auth/otp/send", payload, ""); status != http.StatusOK {
				t.Fatalf("send %d: %d %v", i+1, status, body)
			}
		}

		status, body := doJSON(t, base, http.MethodPost, "/api/v1/auth/otp/send", payload, "")
		if status != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d %v", status, body)
		}
	})
}
