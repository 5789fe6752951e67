package inbound

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shandysiswandi/clearshot/internal/auth/entity"
	"github.com/shandysiswandi/clearshot/internal/auth/usecase"
	"github.com/shandysiswandi/clearshot/internal/pkg/clock"
	"github.com/shandysiswandi/clearshot/internal/pkg/goerror"
	"github.com/shandysiswandi/clearshot/internal/pkg/jwt"
	"github.com/shandysiswandi/clearshot/internal/pkg/router"
)

type fakeUC struct {
	sendIn   usecase.SendOTPInput
	sendErr  error
	verifyIn usecase.VerifyOTPInput
	verify   *usecase.VerifyOTPOutput
	vErr     error
	session  *usecase.ValidateSessionOutput
	sErr     error
	audit    *usecase.AuditListOutput
	auditIn  usecase.AuditListInput
	meCalled bool
}

func (f *fakeUC) SendOTP(_ context.Context, in usecase.SendOTPInput) error {
	f.sendIn = in
	return f.sendErr
}

func (f *fakeUC) VerifyOTP(_ context.Context, in usecase.VerifyOTPInput) (*usecase.VerifyOTPOutput, error) {
	f.verifyIn = in
	return f.verify, f.vErr
}

func (f *fakeUC) ValidateSession(context.Context, usecase.ValidateSessionInput) (*usecase.ValidateSessionOutput, error) {
	return f.session, f.sErr
}

func (f *fakeUC) Me(ctx context.Context) (*usecase.MeOutput, error) {
	f.meCalled = true
	clm := jwt.GetAuth(ctx)
	return &usecase.MeOutput{
		User:      usecase.SessionUser{ID: clm.Subject, Email: clm.Subject},
		ExpiresAt: clm.ExpiresAt.Time,
	}, nil
}

func (f *fakeUC) AuditList(_ context.Context, in usecase.AuditListInput) (*usecase.AuditListOutput, error) {
	f.auditIn = in
	return f.audit, nil
}

type fixedUUID struct{}

func (fixedUUID) Generate() string { return "cid" }

func newServer(t *testing.T, f *fakeUC) (http.Handler, *jwt.Symmetric) {
	t.Helper()

	tokens, err := jwt.NewHS256(jwt.Config{
		Secret: []byte("secret"),
		Issuer: "clearshot",
		Clock:  clock.New(),
		UUID:   fixedUUID{},
	})
	if err != nil {
		t.Fatalf("jwt: %v", err)
	}

	r := router.NewRouter(router.Config{UUID: fixedUUID{}, JWT: tokens})
	RegisterHTTPEndpoint(r, f, CookieConfig{})

	return r, tokens
}

func do(t *testing.T, h http.Handler, method, path, body string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-agent")
	for _, m := range mutate {
		m(req)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	out := map[string]any{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestSendOTP(t *testing.T) {
	// Arrange
	f := &fakeUC{}
	h, _ := newServer(t, f)

	// Act
	rec := do(t, h, http.MethodPost, "/api/v1/auth/otp/send", `{"type":"email","value":"user@example.com"}`)

	// Assert
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := decode(t, rec)["message"]; got != "OTP sent successfully" {
		t.Fatalf("unexpected message %v", got)
	}
	if f.sendIn.Type != entity.ChannelEmail || f.sendIn.Value != "user@example.com" || f.sendIn.UserAgent != "test-agent" {
		t.Fatalf("unexpected input %+v", f.sendIn)
	}
}

func TestSendOTP_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		msg    string
	}{
		{name: "bad json", body: `{"type":`, status: http.StatusBadRequest, msg: "Invalid request body"},
		{name: "validation", body: `{"type":"sms","value":"5551234567"}`, err: goerror.NewValidation(nil, "Invalid phone format (use E.164 format, e.g., +1234567890)"), status: http.StatusBadRequest, msg: "Invalid phone format (use E.164 format, e.g., +1234567890)"},
		{name: "rate limited", body: `{"type":"email","value":"a@b.co"}`, err: goerror.NewBusiness("Too many OTP requests, please try again later", goerror.CodeTooManyRequest), status: http.StatusTooManyRequests, msg: "Too many OTP requests, please try again later"},
		{name: "configuration", body: `{"type":"email","value":"a@b.co"}`, err: goerror.NewConfiguration(entity.ErrConfiguration), status: http.StatusInternalServerError, msg: "Server configuration error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			h, _ := newServer(t, &fakeUC{sendErr: tt.err})

			// Act
			rec := do(t, h, http.MethodPost, "/api/v1/auth/otp/send", tt.body)

			// Assert
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if got := decode(t, rec)["error"]; got != tt.msg {
				t.Fatalf("error = %v, want %q", got, tt.msg)
			}
		})
	}
}

func TestVerifyOTP_SetsSessionCookie(t *testing.T) {
	// Arrange
	f := &fakeUC{verify: &usecase.VerifyOTPOutput{Token: "tok", TTL: 24 * time.Hour}}
	h, _ := newServer(t, f)

	// Act
	rec := do(t, h, http.MethodPost, "/api/v1/auth/otp/verify", `{"type":"email","value":"user@example.com","code":"123456"}`)

	// Assert
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["message"] != "OTP verified successfully" || body["token"] != "tok" {
		t.Fatalf("unexpected body %v", body)
	}
	if f.verifyIn.Code != "123456" {
		t.Fatalf("unexpected input %+v", f.verifyIn)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != "session" || c.Value != "tok" || c.MaxAge != 86400 || c.Path != "/" {
		t.Fatalf("unexpected cookie %+v", c)
	}
	if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteStrictMode {
		t.Fatalf("cookie attributes not hardened: %+v", c)
	}
}

func TestVerifyOTP_InvalidCode(t *testing.T) {
	// Arrange
	h, _ := newServer(t, &fakeUC{vErr: goerror.NewBusinessWrap(entity.ErrInvalidCode, goerror.CodeBadRequest)})

	// Act
	rec := do(t, h, http.MethodPost, "/api/v1/auth/otp/verify", `{"type":"email","value":"user@example.com","code":"000000"}`)

	// Assert
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decode(t, rec)["error"]; got != "Invalid OTP code" {
		t.Fatalf("unexpected error %v", got)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("no cookie on failure")
	}
}

func TestValidateSession(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		session *usecase.ValidateSessionOutput
		err     error
		status  int
		want    map[string]any
	}{
		{
			name:    "valid",
			body:    `{"token":"abc"}`,
			session: &usecase.ValidateSessionOutput{User: usecase.SessionUser{ID: "+15551234567", Phone: "+15551234567"}},
			status:  http.StatusOK,
			want:    map[string]any{"valid": true, "user": map[string]any{"id": "+15551234567", "phone": "+15551234567"}},
		},
		{
			name:   "missing",
			body:   `{"token":""}`,
			err:    goerror.NewValidation(nil, "Token is required"),
			status: http.StatusBadRequest,
			want:   map[string]any{"valid": false, "error": "Token is required"},
		},
		{
			name:   "expired",
			body:   `{"token":"abc"}`,
			err:    goerror.NewBusinessWrap(entity.ErrExpiredToken, goerror.CodeUnauthorized),
			status: http.StatusUnauthorized,
			want:   map[string]any{"valid": false, "error": "Token expired"},
		},
		{
			name:   "invalid",
			body:   `{"token":"abc"}`,
			err:    goerror.NewBusinessWrap(entity.ErrInvalidToken, goerror.CodeUnauthorized),
			status: http.StatusUnauthorized,
			want:   map[string]any{"valid": false, "error": "Invalid token"},
		},
		{
			name:   "no secret",
			body:   `{"token":"abc"}`,
			err:    goerror.NewConfiguration(jwt.ErrSecretMissing),
			status: http.StatusInternalServerError,
			want:   map[string]any{"valid": false, "error": "Server configuration error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			h, _ := newServer(t, &fakeUC{session: tt.session, sErr: tt.err})

			// Act
			rec := do(t, h, http.MethodPost, "/api/v1/auth/session/validate", tt.body)

			// Assert
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			got := decode(t, rec)
			gotJSON, _ := json.Marshal(got)
			wantJSON, _ := json.Marshal(tt.want)
			if string(gotJSON) != string(wantJSON) {
				t.Fatalf("body = %s, want %s", gotJSON, wantJSON)
			}
		})
	}
}

func TestMe_RequiresAuthentication(t *testing.T) {
	// Arrange
	f := &fakeUC{}
	h, tokens := newServer(t, f)
	token, err := tokens.Generate("user@example.com", "email")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// Act
	anon := do(t, h, http.MethodGet, "/api/v1/auth/me", "")
	bad := do(t, h, http.MethodGet, "/api/v1/auth/me", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer not-a-token")
	})
	viaCookie := do(t, h, http.MethodGet, "/api/v1/auth/me", "", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "session", Value: token})
	})

	// Assert
	if anon.Code != http.StatusUnauthorized || bad.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401s, got %d and %d", anon.Code, bad.Code)
	}
	if decode(t, bad)["error"] != "Invalid token" {
		t.Fatalf("unexpected body %s", bad.Body.String())
	}
	if viaCookie.Code != http.StatusOK {
		t.Fatalf("cookie auth failed: %d %s", viaCookie.Code, viaCookie.Body.String())
	}
	user, _ := decode(t, viaCookie)["user"].(map[string]any)
	if user["email"] != "user@example.com" {
		t.Fatalf("unexpected user %v", user)
	}
}

func TestLogout_ExpiresCookie(t *testing.T) {
	// Arrange
	h, _ := newServer(t, &fakeUC{})

	// Act
	rec := do(t, h, http.MethodPost, "/api/v1/auth/logout", "")

	// Assert
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "session" || cookies[0].MaxAge >= 0 || cookies[0].Value != "" {
		t.Fatalf("unexpected cookies %+v", cookies)
	}
}

func TestAuditList_MasksRecipients(t *testing.T) {
	// Arrange
	f := &fakeUC{audit: &usecase.AuditListOutput{Entries: []entity.AuditEntry{
		{ID: 2, Action: entity.AuditActionVerify, Type: entity.ChannelSMS, Value: "+15551234567", ErrorMessage: "Invalid OTP code"},
		{ID: 1, Action: entity.AuditActionSend, Type: entity.ChannelEmail, Value: "abcdef@domain.com", Success: true},
	}}}
	h, tokens := newServer(t, f)
	token, err := tokens.Generate("user@example.com", "email")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// Act
	rec := do(t, h, http.MethodGet, "/api/v1/auth/otp/logs?limit=5", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})

	// Assert
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if f.auditIn.Limit != 5 {
		t.Fatalf("limit = %d, want 5", f.auditIn.Limit)
	}

	var resp AuditListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(resp.Logs))
	}
	if resp.Logs[0].Value != "+155******67" || resp.Logs[1].Value != "ab***@domain.com" {
		t.Fatalf("recipients not masked: %+v", resp.Logs)
	}
}

func TestAuditList_BadLimit(t *testing.T) {
	// Arrange
	h, tokens := newServer(t, &fakeUC{})
	token, err := tokens.Generate("user@example.com", "email")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// Act
	rec := do(t, h, http.MethodGet, "/api/v1/auth/otp/logs?limit=ten", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})

	// Assert
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}
