package auth

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/clearshot/internal/auth/inbound"
	"github.com/shandysiswandi/clearshot/internal/auth/outbound/db"
	"github.com/shandysiswandi/clearshot/internal/auth/outbound/delivery"
	"github.com/shandysiswandi/clearshot/internal/auth/usecase"
	"github.com/shandysiswandi/clearshot/internal/pkg/clock"
	"github.com/shandysiswandi/clearshot/internal/pkg/config"
	"github.com/shandysiswandi/clearshot/internal/pkg/hash"
	"github.com/shandysiswandi/clearshot/internal/pkg/instrument"
	"github.com/shandysiswandi/clearshot/internal/pkg/jwt"
	"github.com/shandysiswandi/clearshot/internal/pkg/mail"
	"github.com/shandysiswandi/clearshot/internal/pkg/otp"
	"github.com/shandysiswandi/clearshot/internal/pkg/ratelimit"
	"github.com/shandysiswandi/clearshot/internal/pkg/router"
	"github.com/shandysiswandi/clearshot/internal/pkg/sms"
	"github.com/shandysiswandi/clearshot/internal/pkg/uid"
	"github.com/shandysiswandi/clearshot/internal/pkg/validator"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
	SMS        sms.SMS                    `validate:"required"`
	Limiter    ratelimit.Limiter          `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	OTP        otp.Generator              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbAuth := db.NewDB(dep.DBConn, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:      dbAuth,
		EmailSender: delivery.NewEmailSender(dep.Mail, dep.Instrument),
		SMSSender:   delivery.NewSMSSender(dep.SMS, dep.Instrument),
		Limiter:     dep.Limiter,
		Generator:   dep.OTP,
		Validator:   dep.Validator,
		Config:      dep.Config,
		HMAC:        dep.HMAC,
		UID:         dep.UID,
		Clock:       dep.Clock,
		JWT:         dep.JWT,
		Instrument:  dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, inbound.CookieConfig{
		Name:     dep.Config.GetString("app.session.cookie_name"),
		Domain:   dep.Config.GetString("app.session.cookie_domain"),
		Insecure: dep.Config.GetBool("app.session.cookie_insecure"),
	})

	return nil
}
