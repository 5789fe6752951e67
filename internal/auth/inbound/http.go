package inbound

import (
	"context"

	"github.com/shandysiswandi/clearshot/internal/auth/usecase"
	"github.com/shandysiswandi/clearshot/internal/pkg/router"
)

type uc interface {
	SendOTP(ctx context.Context, in usecase.SendOTPInput) error
	VerifyOTP(ctx context.Context, in usecase.VerifyOTPInput) (*usecase.VerifyOTPOutput, error)

	ValidateSession(ctx context.Context, in usecase.ValidateSessionInput) (*usecase.ValidateSessionOutput, error)
	Me(ctx context.Context) (*usecase.MeOutput, error)

	AuditList(ctx context.Context, in usecase.AuditListInput) (*usecase.AuditListOutput, error)
}

// CookieConfig controls the session cookie written on verify and logout.
type CookieConfig struct {
	Name   string
	Domain string
	// Insecure drops the Secure attribute; only for plain-http local runs.
	Insecure bool
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, cookie CookieConfig) {
	if cookie.Name == "" {
		cookie.Name = router.DefaultSessionCookie
	}
	end := &HTTPEndpoint{uc: uc, cookie: cookie}

	// OTP
	r.POST("/api/v1/auth/otp/send", end.SendOTP)
	r.POST("/api/v1/auth/otp/verify", end.VerifyOTP)
	r.GET("/api/v1/auth/otp/logs", end.AuditList) // need authenticated

	// Session
	r.POST("/api/v1/auth/session/validate", end.ValidateSession)
	r.GET("/api/v1/auth/me", end.Me) // need authenticated
	r.POST("/api/v1/auth/logout", end.Logout)
}
