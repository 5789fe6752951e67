package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/clearshot/internal/auth/entity"
	"github.com/shandysiswandi/clearshot/internal/pkg/goerror"
	"github.com/shandysiswandi/clearshot/internal/pkg/ratelimit"
)

const (
	msgMissingTypeOrValue = "Missing type or value"
	msgInvalidEmail       = "Invalid email format"
	msgInvalidPhone       = "Invalid phone format (use E.164 format, e.g., +1234567890)"
	msgInvalidChannel     = "Invalid channel type"
	msgTooManyRequests    = "Too many OTP requests, please try again later"
)

type SendOTPInput struct {
	Type      entity.ChannelType `validate:"required"`
	Value     string             `validate:"required"`
	ClientIP  string
	UserAgent string
}

type emailRecipient struct {
	Value string `validate:"email_shape"`
}

type phoneRecipient struct {
	Value string `validate:"phone_e164"`
}

func (s *Usecase) SendOTP(ctx context.Context, in SendOTPInput) error {
	ctx, span := s.startSpan(ctx, "SendOTP")
	defer span.End()

	in.Type = entity.ChannelType(strings.TrimSpace(string(in.Type)))
	in.Value = strings.TrimSpace(in.Value)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewValidation(err, msgMissingTypeOrValue)
	}

	if err := s.validateRecipient(in.Type, in.Value); err != nil {
		return err
	}

	if retry, err := s.limiter.Allow(ctx, in.Type.String()+":"+in.Value); err != nil {
		if errors.Is(err, ratelimit.ErrLimited) {
			slog.WarnContext(ctx, "otp send rate limited", "type", in.Type, "retry_after", retry.String())
			return goerror.NewBusiness(msgTooManyRequests, goerror.CodeTooManyRequest)
		}
		slog.WarnContext(ctx, "failed to check otp send limit", "type", in.Type, "error", err)
	}

	at := attempt{
		action:    entity.AuditActionSend,
		typ:       in.Type,
		value:     in.Value,
		clientIP:  in.ClientIP,
		userAgent: in.UserAgent,
	}

	code, err := s.generator.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "error", err)
		s.record(ctx, at, "Failed to generate OTP")
		return goerror.NewServer(err)
	}

	codeHash, err := s.hmac.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash otp code", "error", err)
		s.record(ctx, at, "Failed to store OTP")
		return goerror.NewServer(err)
	}

	now, ttl := s.clock.Now(), s.otpTTL()
	rec := entity.OTP{
		ID:        s.uid.Generate(),
		Type:      in.Type,
		Value:     in.Value,
		Code:      string(codeHash),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	if err := s.repoDB.CreateOTP(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "failed to repo create otp", "type", in.Type, "error", err)
		s.record(ctx, at, "Failed to store OTP")
		return goerror.NewServer(err)
	}

	dctx, cancel := context.WithTimeout(ctx, s.deliveryTimeout())
	defer cancel()

	if err := s.senders[in.Type].Send(dctx, in.Value, code, ttl); err != nil {
		s.record(ctx, at, err.Error())

		if errors.Is(err, entity.ErrConfiguration) {
			slog.ErrorContext(ctx, "otp delivery is not configured", "type", in.Type, "error", err)
			return goerror.NewConfiguration(err)
		}

		slog.WarnContext(ctx, "failed to deliver otp", "type", in.Type, "otp_id", rec.ID, "error", err)
		if !errors.Is(err, entity.ErrDelivery) {
			err = fmt.Errorf("%w: %w", entity.ErrDelivery, err)
		}
		return goerror.NewBusinessWrap(err, goerror.CodeBadRequest)
	}

	s.record(ctx, at, "")

	return nil
}

func (s *Usecase) validateRecipient(t entity.ChannelType, v string) error {
	switch t {
	case entity.ChannelEmail:
		if err := s.validator.Validate(emailRecipient{Value: v}); err != nil {
			return goerror.NewValidation(err, msgInvalidEmail)
		}
	case entity.ChannelSMS:
		if err := s.validator.Validate(phoneRecipient{Value: v}); err != nil {
			return goerror.NewValidation(err, msgInvalidPhone)
		}
	default:
		return goerror.NewValidation(nil, msgInvalidChannel)
	}

	return nil
}
