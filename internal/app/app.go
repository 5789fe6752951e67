package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
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

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	validator validator.Validator
	clock     clock.Clocker
	hmac      hash.Hash
	uid       uid.NumberID
	uuid      uid.StringID
	otp       otp.Generator
	jwt       jwt.JWT

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	limiter   ratelimit.Limiter
	mail      mail.Mail
	sms       sms.SMS

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initLimiter()
	app.initMail()
	app.initSMS()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
