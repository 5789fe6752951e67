package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/clearshot/internal/auth/entity"
	"github.com/shandysiswandi/clearshot/internal/pkg/goerror"
	"github.com/shandysiswandi/clearshot/internal/pkg/jwt"
)

const (
	msgMissingVerifyInput = "Missing type, value, or code"
	msgVerifyFailed       = "Failed to verify OTP"
	msgSessionFailed      = "Failed to create session"
)

type VerifyOTPInput struct {
	Type      entity.ChannelType `validate:"required,oneof=email sms"`
	Value     string             `validate:"required"`
	Code      string             `validate:"required"`
	ClientIP  string
	UserAgent string
}

type VerifyOTPOutput struct {
	Token     string
	TTL       time.Duration
	ExpiresAt time.Time
}

func (s *Usecase) VerifyOTP(ctx context.Context, in VerifyOTPInput) (*VerifyOTPOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyOTP")
	defer span.End()

	in.Type = entity.ChannelType(strings.TrimSpace(string(in.Type)))
	in.Value = strings.TrimSpace(in.Value)
	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewValidation(err, msgMissingVerifyInput)
	}

	at := attempt{
		action:    entity.AuditActionVerify,
		typ:       in.Type,
		value:     in.Value,
		clientIP:  in.ClientIP,
		userAgent: in.UserAgent,
	}

	codeHash, err := s.hmac.Hash(in.Code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash otp code", "error", err)
		s.record(ctx, at, msgVerifyFailed)
		return nil, goerror.NewServer(err)
	}

	rec, err := s.repoDB.GetLatestUnverifiedOTP(ctx, in.Type, in.Value, string(codeHash))
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "otp code not matched", "type", in.Type)
		s.record(ctx, at, entity.ErrInvalidCode.Error())
		return nil, goerror.NewBusinessWrap(entity.ErrInvalidCode, goerror.CodeBadRequest)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get latest unverified otp", "type", in.Type, "error", err)
		s.record(ctx, at, msgVerifyFailed)
		return nil, goerror.NewServer(err)
	}

	if rec.IsExpired(s.clock.Now()) {
		slog.WarnContext(ctx, "otp code expired", "otp_id", rec.ID, "expires_at", rec.ExpiresAt)
		s.record(ctx, at, entity.ErrExpiredCode.Error())
		return nil, goerror.NewBusinessWrap(entity.ErrExpiredCode, goerror.CodeBadRequest)
	}

	ok, err := s.repoDB.MarkOTPVerified(ctx, rec.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo mark otp verified", "otp_id", rec.ID, "error", err)
		s.record(ctx, at, msgVerifyFailed)
		return nil, goerror.NewServer(err)
	}
	if !ok {
		slog.WarnContext(ctx, "otp code already consumed", "otp_id", rec.ID)
		s.record(ctx, at, entity.ErrInvalidCode.Error())
		return nil, goerror.NewBusinessWrap(entity.ErrInvalidCode, goerror.CodeBadRequest)
	}

	token, err := s.jwt.Generate(in.Value, in.Type.String())
	if err != nil {
		s.record(ctx, at, msgSessionFailed)
		if errors.Is(err, jwt.ErrSecretMissing) {
			slog.ErrorContext(ctx, "session signing secret is not configured", "error", err)
			return nil, goerror.NewConfiguration(err)
		}
		slog.ErrorContext(ctx, "failed to generate session token", "otp_id", rec.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.record(ctx, at, "")

	ttl := s.sessionTTL()
	return &VerifyOTPOutput{
		Token:     token,
		TTL:       ttl,
		ExpiresAt: s.clock.Now().Add(ttl),
	}, nil
}

func (s *Usecase) sessionTTL() time.Duration {
	if ttl := s.cfg.GetHour("jwt.ttl_hours"); ttl > 0 {
		return ttl
	}
	return jwt.DefaultTTL
}
