package delivery

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/shandysiswandi/clearshot/internal/auth/entity"
	"github.com/shandysiswandi/clearshot/internal/pkg/instrument"
	"github.com/shandysiswandi/clearshot/internal/pkg/mail"
	"github.com/shandysiswandi/clearshot/internal/pkg/sms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	emailSubject = "Your OTP Code"
	smsTemplate  = "Your OTP code is: %s. This code will expire in %s."
)

// Sender delivers a plain one-time code to a recipient, stating how long it
// stays valid.
type Sender interface {
	Send(ctx context.Context, recipient, code string, ttl time.Duration) error
}

// EmailSender sends codes through a mail transport.
type EmailSender struct {
	mail mail.Mail
	ins  instrument.Instrumentation
}

func NewEmailSender(m mail.Mail, ins instrument.Instrumentation) *EmailSender {
	return &EmailSender{mail: m, ins: ins}
}

func (s *EmailSender) Send(ctx context.Context, recipient, code string, ttl time.Duration) (err error) {
	ctx, span := startSpan(ctx, s.ins, "EmailSender.Send", entity.ChannelEmail)
	defer func() { endSpan(span, err) }()

	err = classify(s.mail.Send(ctx, mail.Message{
		To:       []string{recipient},
		Subject:  emailSubject,
		TextBody: emailText(code, ttl),
		HTMLBody: emailHTML(code, ttl),
	}), mail.ErrNotConfigured)
	return err
}

// SMSSender sends codes as text messages.
type SMSSender struct {
	sms sms.SMS
	ins instrument.Instrumentation
}

func NewSMSSender(s sms.SMS, ins instrument.Instrumentation) *SMSSender {
	return &SMSSender{sms: s, ins: ins}
}

func (s *SMSSender) Send(ctx context.Context, recipient, code string, ttl time.Duration) (err error) {
	ctx, span := startSpan(ctx, s.ins, "SMSSender.Send", entity.ChannelSMS)
	defer func() { endSpan(span, err) }()

	err = classify(s.sms.Send(ctx, recipient, fmt.Sprintf(smsTemplate, code, expiry(ttl))), sms.ErrNotConfigured)
	return err
}

// classify tags transport errors as either a configuration problem or a
// delivery failure, keeping the transport text.
func classify(err, notConfigured error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, notConfigured):
		return fmt.Errorf("%w: %w", entity.ErrConfiguration, err)
	default:
		return fmt.Errorf("%w: %w", entity.ErrDelivery, err)
	}
}

// expiry renders ttl for people: whole minutes when it divides evenly,
// seconds otherwise.
func expiry(ttl time.Duration) string {
	if ttl >= time.Minute && ttl%time.Minute == 0 {
		return plural(int(ttl/time.Minute), "minute")
	}
	return plural(int(ttl/time.Second), "second")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func emailText(code string, ttl time.Duration) string {
	return "Your one-time password is: " + code + "\n\n" +
		"This code will expire in " + expiry(ttl) + ".\n\n" +
		"If you didn't request this code, please ignore this email.\n"
}

func emailHTML(code string, ttl time.Duration) string {
	return "<h2>Your OTP Code</h2>" +
		"<p>Your one-time password is: <strong>" + html.EscapeString(code) + "</strong></p>" +
		"<p>This code will expire in " + expiry(ttl) + ".</p>" +
		"<p>If you didn't request this code, please ignore this email.</p>"
}

func startSpan(ctx context.Context, ins instrument.Instrumentation, name string, ch entity.ChannelType) (context.Context, trace.Span) {
	return ins.Tracer("auth.outbound.delivery").Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("otp.channel", ch.String())),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
