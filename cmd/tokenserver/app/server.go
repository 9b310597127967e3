package app

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/goliatone/go-router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	security "github.com/goliatone/go-security-jwt"
	"github.com/goliatone/go-security-jwt/controller"
	"github.com/goliatone/go-security-jwt/middleware/jwtware"
	"github.com/goliatone/go-security-jwt/provider/azuread"
	"github.com/goliatone/go-security-jwt/provider/facebook"
	"github.com/goliatone/go-security-jwt/provider/google"
	"github.com/goliatone/go-security-jwt/provider/twitter"
	"github.com/goliatone/go-security-jwt/transport"
)

const (
	upstreamTimeout    = 10 * time.Second
	upstreamRetries    = 3
	upstreamRetryDelay = 200 * time.Millisecond
)

// NewAuthenticators builds the default flow and every provider flow whose
// settings are enabled.
func NewAuthenticators(settings *security.Settings, tokens *security.TokenService, logger security.Logger) controller.Authenticators {
	tr := transport.New(
		transport.WithTimeout(upstreamTimeout),
		transport.WithRetry(upstreamRetries, upstreamRetryDelay),
		transport.WithLogger(logger),
	)

	auth := controller.Authenticators{
		Default: security.NewDefaultAuthenticator(security.NewPasswordVerifier(settings.Users), tokens, logger),
	}

	if settings.Facebook.Enabled() {
		client := facebook.New(facebook.ConfigFromSettings(settings.Facebook), tr)
		auth.Facebook = facebook.NewAuthenticator(client, tokens, facebook.DefaultClaims, logger)
	}

	if settings.Google.Enabled() {
		client := google.New(google.ConfigFromSettings(settings.Google), tr)
		auth.Google = google.NewAuthenticator(settings.Google.APIKey, client, logger)
	}

	if settings.AzureAD.Enabled() {
		client := azuread.New(azuread.ConfigFromSettings(settings.AzureAD), tr.HTTPClient())
		auth.AzureAD = azuread.NewAuthenticator(settings.AzureAD.APIKey, client, logger)
	}

	if settings.Twitter.Enabled() {
		client := twitter.New(twitter.ConfigFromSettings(settings.Twitter), tr)
		auth.Twitter = twitter.NewAuthenticator(settings.Twitter.APIKey, client, logger)
	}

	return auth
}

// NewServer wires the token routes, a bearer protected /me route and
// /metrics into a fiber app. Routes other than /metrics are registered
// through the router fiber adapter.
func NewServer(settings *security.Settings, logger security.Logger, reg *prometheus.Registry) *fiber.App {
	logger = security.NormalizeLogger(logger)
	tokens := security.NewTokenService(settings, logger)

	app := fiber.New(fiber.Config{
		AppName:               "tokenserver",
		DisableStartupMessage: true,
	})

	// /metrics is a plain net/http handler, so it is mounted on the fiber app
	// itself rather than through the router.
	if reg != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	}

	srv := router.NewFiberAdapter(func(*fiber.App) *fiber.App {
		return app
	})
	r := srv.Router()

	var metrics *controller.Metrics
	if reg != nil {
		metrics = controller.NewMetrics(reg)
	}

	controller.NewHTTPController(NewAuthenticators(settings, tokens, logger), controller.HTTPConfig{
		Logger:   logger,
		Metrics:  metrics,
		Activity: logActivity(logger),
	}).RegisterRoutes(r)

	r.Get("/me", func(ctx router.Context) error {
		return ctx.JSON(router.StatusOK, jwtware.ClaimsFromContext(ctx).Map())
	}, jwtware.New(jwtware.Config{
		TokenValidator: tokens,
		Logger:         logger,
	}))

	r.Get("/healthz", func(ctx router.Context) error {
		return ctx.SendString("ok")
	})

	return app
}

func logActivity(logger security.Logger) security.ActivitySink {
	return security.ActivitySinkFunc(func(_ context.Context, event security.ActivityEvent) error {
		logger.Info("activity %s provider=%s request=%s", event.EventType, event.Provider, event.RequestID)
		return nil
	})
}
