package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/clearshot/internal/auth/entity"
	"github.com/shandysiswandi/clearshot/internal/pkg/clock"
	"github.com/shandysiswandi/clearshot/internal/pkg/config"
	"github.com/shandysiswandi/clearshot/internal/pkg/hash"
	"github.com/shandysiswandi/clearshot/internal/pkg/instrument"
	"github.com/shandysiswandi/clearshot/internal/pkg/jwt"
	"github.com/shandysiswandi/clearshot/internal/pkg/otp"
	"github.com/shandysiswandi/clearshot/internal/pkg/ratelimit"
	"github.com/shandysiswandi/clearshot/internal/pkg/uid"
	"github.com/shandysiswandi/clearshot/internal/pkg/validator"
	"github.com/shandysiswandi/clearshot/internal/pkg/valueobject"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultOTPTTL          = 5 * time.Minute
	defaultDeliveryTimeout = 10 * time.Second
)

type repoDB interface {
	GetLatestUnverifiedOTP(ctx context.Context, typ entity.ChannelType, value, code string) (*entity.OTP, error)
	ListAuditEntries(ctx context.Context, filter entity.AuditFilter) ([]entity.AuditEntry, error)

	CreateOTP(ctx context.Context, in entity.OTP) error
	CreateAuditEntry(ctx context.Context, in entity.AuditEntry) error

	MarkOTPVerified(ctx context.Context, id int64) (bool, error)
}

type sender interface {
	// Send delivers code and tells the recipient it is valid for ttl.
	Send(ctx context.Context, recipient, code string, ttl time.Duration) error
}

type Usecase struct {
	repoDB    repoDB
	senders   map[entity.ChannelType]sender
	limiter   ratelimit.Limiter
	generator otp.Generator
	validator validator.Validator
	cfg       config.Config
	hmac      hash.Hash
	uid       uid.NumberID
	clock     clock.Clocker
	jwt       jwt.JWT
	ins       instrument.Instrumentation

	sentCounter     metric.Int64Counter
	verifiedCounter metric.Int64Counter
}

type Dependency struct {
	RepoDB      repoDB
	EmailSender sender
	SMSSender   sender
	Limiter     ratelimit.Limiter
	Generator   otp.Generator
	Validator   validator.Validator
	Config      config.Config
	HMAC        hash.Hash
	UID         uid.NumberID
	Clock       clock.Clocker
	JWT         jwt.JWT
	Instrument  instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	limiter := dep.Limiter
	if limiter == nil {
		limiter = ratelimit.Noop{}
	}

	ins := dep.Instrument
	if ins == nil {
		ins = instrument.NewNoop()
	}

	s := &Usecase{
		repoDB: dep.RepoDB,
		senders: map[entity.ChannelType]sender{
			entity.ChannelEmail: dep.EmailSender,
			entity.ChannelSMS:   dep.SMSSender,
		},
		limiter:   limiter,
		generator: dep.Generator,
		validator: dep.Validator,
		cfg:       dep.Config,
		hmac:      dep.HMAC,
		uid:       dep.UID,
		clock:     dep.Clock,
		jwt:       dep.JWT,
		ins:       ins,
	}

	meter := ins.Meter("auth.usecase")

	var err error
	s.sentCounter, err = meter.Int64Counter("auth.otp.sent", metric.WithDescription("One-time codes sent, by channel and outcome"))
	if err != nil {
		slog.Warn("failed to create metric", "name", "auth.otp.sent", "error", err)
	}
	s.verifiedCounter, err = meter.Int64Counter("auth.otp.verified", metric.WithDescription("One-time code verifications, by channel and outcome"))
	if err != nil {
		slog.Warn("failed to create metric", "name", "auth.otp.verified", "error", err)
	}

	return s
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.usecase").Start(ctx, name)
}

func (s *Usecase) otpTTL() time.Duration {
	if ttl := s.cfg.GetSecond("modules.auth.otp_ttl_seconds"); ttl > 0 {
		return ttl
	}
	return defaultOTPTTL
}

func (s *Usecase) deliveryTimeout() time.Duration {
	if d := s.cfg.GetSecond("modules.auth.delivery_timeout_seconds"); d > 0 {
		return d
	}
	return defaultDeliveryTimeout
}

// attempt describes one send or verify call for the audit log.
type attempt struct {
	action    entity.AuditAction
	typ       entity.ChannelType
	value     string
	clientIP  string
	userAgent string
}

// record writes the audit entry for a finished attempt. An empty errMsg
// marks success. Failures to write are logged only.
func (s *Usecase) record(ctx context.Context, at attempt, errMsg string) {
	meta := valueobject.JSONMap{}
	meta.SetIfNotEmpty("ip", at.clientIP)
	meta.SetIfNotEmpty("user_agent", at.userAgent)
	meta.SetIfNotEmpty("correlation_id", instrument.GetCorrelationID(ctx))

	entry := entity.AuditEntry{
		ID:           s.uid.Generate(),
		Action:       at.action,
		Type:         at.typ,
		Value:        at.value,
		Success:      errMsg == "",
		ErrorMessage: errMsg,
		Metadata:     meta,
		CreatedAt:    s.clock.Now(),
	}

	// the caller may have given up; the attempt still happened
	ctx = context.WithoutCancel(ctx)
	if err := s.repoDB.CreateAuditEntry(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to repo create audit entry", "action", at.action, "type", at.typ, "error", err)
	}

	counter := s.sentCounter
	if at.action == entity.AuditActionVerify {
		counter = s.verifiedCounter
	}
	if counter != nil {
		counter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("channel", at.typ.String()),
			attribute.Bool("success", entry.Success),
		))
	}
}
