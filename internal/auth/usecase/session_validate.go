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

type ValidateSessionInput struct {
	Token string `validate:"required"`
}

// SessionUser is the identity carried by a session token.
type SessionUser struct {
	ID    string
	Email string
	Phone string
}

type ValidateSessionOutput struct {
	User      SessionUser
	ExpiresAt time.Time
}

func (s *Usecase) ValidateSession(ctx context.Context, in ValidateSessionInput) (*ValidateSessionOutput, error) {
	ctx, span := s.startSpan(ctx, "ValidateSession")
	defer span.End()

	in.Token = strings.TrimSpace(in.Token)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewValidation(err, "Token is required")
	}

	clm, err := s.jwt.Verify(in.Token)
	switch {
	case errors.Is(err, jwt.ErrSecretMissing):
		slog.ErrorContext(ctx, "session signing secret is not configured", "error", err)
		return nil, goerror.NewConfiguration(err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, goerror.NewBusinessWrap(entity.ErrExpiredToken, goerror.CodeUnauthorized)
	case err != nil:
		slog.WarnContext(ctx, "session token rejected", "error", err)
		return nil, goerror.NewBusinessWrap(entity.ErrInvalidToken, goerror.CodeUnauthorized)
	}

	return &ValidateSessionOutput{
		User:      sessionUser(clm),
		ExpiresAt: expiresAt(clm),
	}, nil
}

type MeOutput struct {
	User      SessionUser
	ExpiresAt time.Time
}

// Me returns the identity of the already authenticated caller.
func (s *Usecase) Me(ctx context.Context) (*MeOutput, error) {
	_, span := s.startSpan(ctx, "Me")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	return &MeOutput{
		User:      sessionUser(*clm),
		ExpiresAt: expiresAt(*clm),
	}, nil
}

func sessionUser(clm jwt.Claims) SessionUser {
	u := SessionUser{ID: clm.Subject}
	switch entity.ChannelType(clm.Type) {
	case entity.ChannelEmail:
		u.Email = clm.Subject
	case entity.ChannelSMS:
		u.Phone = clm.Subject
	}
	return u
}

func expiresAt(clm jwt.Claims) time.Time {
	if clm.ExpiresAt == nil {
		return time.Time{}
	}
	return clm.ExpiresAt.Time
}
