package usecase

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shandysiswandi/clearshot/internal/auth/entity"
	"github.com/shandysiswandi/clearshot/internal/pkg/clock"
	"github.com/shandysiswandi/clearshot/internal/pkg/config"
	"github.com/shandysiswandi/clearshot/internal/pkg/goerror"
	"github.com/shandysiswandi/clearshot/internal/pkg/hash"
	"github.com/shandysiswandi/clearshot/internal/pkg/jwt"
	"github.com/shandysiswandi/clearshot/internal/pkg/ratelimit"
	"github.com/shandysiswandi/clearshot/internal/pkg/validator"
)

var errBoom = errors.New("boom")

// memDB is an in-memory repoDB with the same compare-and-set semantics as
// the postgres store.
type memDB struct {
	mu      sync.Mutex
	otps    []entity.OTP
	audits  []entity.AuditEntry
	creates int

	createErr error
	getErr    error
	markErr   error
	auditErr  error
}

func (m *memDB) CreateOTP(_ context.Context, in entity.OTP) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return m.createErr
	}
	m.creates++
	m.otps = append(m.otps, in)
	return nil
}

func (m *memDB) GetLatestUnverifiedOTP(_ context.Context, typ entity.ChannelType, value, code string) (*entity.OTP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getErr != nil {
		return nil, m.getErr
	}

	var found *entity.OTP
	for i := range m.otps {
		o := m.otps[i]
		if o.Type != typ || o.Value != value || o.Code != code || o.Verified {
			continue
		}
		if found == nil || !o.CreatedAt.Before(found.CreatedAt) {
			found = &o
		}
	}
	if found == nil {
		return nil, goerror.ErrNotFound
	}
	return found, nil
}

func (m *memDB) MarkOTPVerified(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.markErr != nil {
		return false, m.markErr
	}
	for i := range m.otps {
		if m.otps[i].ID == id && !m.otps[i].Verified {
			m.otps[i].Verified = true
			return true, nil
		}
	}
	return false, nil
}

func (m *memDB) CreateAuditEntry(_ context.Context, in entity.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.auditErr != nil {
		return m.auditErr
	}
	m.audits = append(m.audits, in)
	return nil
}

func (m *memDB) ListAuditEntries(_ context.Context, filter entity.AuditFilter) ([]entity.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getErr != nil {
		return nil, m.getErr
	}

	out := make([]entity.AuditEntry, 0)
	for _, e := range slices.Backward(m.audits) {
		if filter.Value != "" && e.Value != filter.Value {
			continue
		}
		out = append(out, e)
		if len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (m *memDB) auditLog() []entity.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.audits)
}

func (m *memDB) find(id int64) entity.OTP {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.otps {
		if o.ID == id {
			return o
		}
	}
	return entity.OTP{}
}

type fakeSender struct {
	mu    sync.Mutex
	sent  []string // recipient + "|" + code
	ttl   time.Duration
	err   error
	calls int
}

func (f *fakeSender) Send(_ context.Context, recipient, code string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.ttl = ttl
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, recipient+"|"+code)
	return nil
}

func (f *fakeSender) lastCode(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("no code delivered")
	}
	last := f.sent[len(f.sent)-1]
	for i := range last {
		if last[i] == '|' {
			return last[i+1:]
		}
	}
	return ""
}

type seqGenerator struct {
	codes []string
	i     int
	err   error
}

func (g *seqGenerator) Generate() (string, error) {
	if g.err != nil {
		return "", g.err
	}
	c := g.codes[g.i%len(g.codes)]
	g.i++
	return c, nil
}

type counterID struct{ n atomic.Int64 }

func (c *counterID) Generate() int64 { return c.n.Add(1) }

type fixedUUID struct{}

func (fixedUUID) Generate() string { return "0192d3c4-0000-7000-8000-000000000000" }

type fakeLimiter struct {
	err   error
	calls int
}

func (f *fakeLimiter) Allow(context.Context, string) (time.Duration, error) {
	f.calls++
	if f.err != nil {
		return time.Minute, f.err
	}
	return 0, nil
}

var _ ratelimit.Limiter = (*fakeLimiter)(nil)

type fixture struct {
	uc      *Usecase
	db      *memDB
	email   *fakeSender
	sms     *fakeSender
	gen     *seqGenerator
	clock   *clock.Manual
	limiter *fakeLimiter
	jwt     *jwt.Symmetric
}

const fixtureConfig = `
modules:
  auth:
    otp_ttl_seconds: 300
    delivery_timeout_seconds: 2
jwt:
  ttl_hours: 24
`

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithConfig(t, fixtureConfig)
}

func newFixtureWithConfig(t *testing.T, yaml string) *fixture {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	val, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	clk := clock.NewManual(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	tokens, err := jwt.NewHS256(jwt.Config{
		Secret: []byte("test-secret"),
		Issuer: "clearshot",
		Clock:  clk,
		UUID:   fixedUUID{},
	})
	if err != nil {
		t.Fatalf("jwt: %v", err)
	}

	hmac, err := hash.NewHMACSHA256("hmac-secret")
	if err != nil {
		t.Fatalf("hmac: %v", err)
	}

	f := &fixture{
		db:      &memDB{},
		email:   &fakeSender{},
		sms:     &fakeSender{},
		gen:     &seqGenerator{codes: []string{"123456", "654321", "111111"}},
		clock:   clk,
		limiter: &fakeLimiter{},
		jwt:     tokens,
	}

	f.uc = New(Dependency{
		RepoDB:      f.db,
		EmailSender: f.email,
		SMSSender:   f.sms,
		Limiter:     f.limiter,
		Generator:   f.gen,
		Validator:   val,
		Config:      cfg,
		HMAC:        hmac,
		UID:         &counterID{},
		Clock:       clk,
		JWT:         tokens,
	})

	return f
}

func assertStatus(t *testing.T, err error, want int) *goerror.Error {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *goerror.Error, got %T (%v)", err, err)
	}
	if gerr.StatusCode() != want {
		t.Fatalf("status = %d, want %d (msg %q)", gerr.StatusCode(), want, gerr.Msg())
	}
	return gerr
}

func assertAudit(t *testing.T, e entity.AuditEntry, action entity.AuditAction, success bool, msg string) {
	t.Helper()

	if e.Action != action || e.Success != success || e.ErrorMessage != msg {
		t.Fatalf("audit = {%s %v %q}, want {%s %v %q}", e.Action, e.Success, e.ErrorMessage, action, success, msg)
	}
}
