package controller

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2/utils"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"

	security "github.com/goliatone/go-security-jwt"
	"github.com/goliatone/go-security-jwt/provider/azuread"
	"github.com/goliatone/go-security-jwt/provider/facebook"
	"github.com/goliatone/go-security-jwt/provider/google"
	"github.com/goliatone/go-security-jwt/provider/twitter"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// Authenticators holds one authenticator per flow. Nil entries are not
// routed.
type Authenticators struct {
	Default  security.Authenticator[security.Credentials]
	Facebook security.Authenticator[facebook.Request]
	Google   security.Authenticator[google.Request]
	AzureAD  security.Authenticator[azuread.Request]
	Twitter  security.Authenticator[twitter.Request]
}

// HTTPConfig configures the HTTP controller.
type HTTPConfig struct {
	// RequestIDHeader is read from and echoed on every response
	// (default: "X-Request-ID")
	RequestIDHeader string

	Logger   security.Logger
	Metrics  *Metrics
	Activity security.ActivitySink
}

// HTTPController exposes the token flows over HTTP.
type HTTPController struct {
	auth     Authenticators
	config   HTTPConfig
	logger   security.Logger
	activity security.ActivitySink
}

// ErrorResponse is the body of every non-200 response.
type ErrorResponse struct {
	Error     string         `json:"error"`
	Code      string         `json:"code,omitempty"`
	RequestID string         `json:"requestId"`
	Details   map[string]any `json:"details,omitempty"`
}

// NewHTTPController creates a controller for the given authenticators.
func NewHTTPController(auth Authenticators, cfg HTTPConfig) *HTTPController {
	if cfg.RequestIDHeader == "" {
		cfg.RequestIDHeader = "X-Request-ID"
	}

	return &HTTPController{
		auth:     auth,
		config:   cfg,
		logger:   security.NormalizeLogger(cfg.Logger),
		activity: security.NormalizeActivitySink(cfg.Activity),
	}
}

// RegisterRoutes mounts POST /token, /facebook, /google, /azure and
// /twitter on group for every configured authenticator.
func (h *HTTPController) RegisterRoutes(group RouteRegistrar) {
	if h.auth.Default != nil {
		group.Post("/token", handle(h, "default", h.auth.Default))
	}
	if h.auth.Facebook != nil {
		group.Post("/facebook", handle(h, "facebook", h.auth.Facebook))
	}
	if h.auth.Google != nil {
		group.Post("/google", handle(h, "google", h.auth.Google))
	}
	if h.auth.AzureAD != nil {
		group.Post("/azure", handle(h, "azuread", h.auth.AzureAD))
	}
	if h.auth.Twitter != nil {
		group.Post("/twitter", handle(h, "twitter", h.auth.Twitter))
	}
}

func handle[R any](h *HTTPController, provider string, authenticator security.Authenticator[R]) router.HandlerFunc {
	return func(ctx router.Context) error {
		started := time.Now()
		requestID := h.requestID(ctx)

		var req R
		if err := ctx.Bind(&req); err != nil {
			h.logger.Warn("%s request %s has an unreadable body: %v", provider, requestID, err)
			h.config.Metrics.observe(provider, OutcomeInvalid, started)
			return ctx.JSON(router.StatusBadRequest, ErrorResponse{
				Error:     "request body could not be parsed",
				Code:      security.TextCodeValidation,
				RequestID: requestID,
			})
		}

		result, err := authenticator.Authenticate(ctx.Context(), req)
		if err != nil {
			return h.fail(ctx, provider, requestID, started, err)
		}

		if result == nil || !result.IsAuthenticated {
			h.logger.Info("%s request %s was not authenticated", provider, requestID)
			h.config.Metrics.observe(provider, OutcomeRejected, started)
			h.record(ctx, security.ActivityEventTokenDenied, provider, requestID, nil)
			return ctx.JSON(router.StatusBadRequest, security.Unauthenticated())
		}

		h.logger.Info("%s request %s authenticated", provider, requestID)
		h.config.Metrics.observe(provider, OutcomeAuthenticated, started)
		h.record(ctx, security.ActivityEventTokenIssued, provider, requestID, nil)
		return ctx.JSON(router.StatusOK, result)
	}
}

func (h *HTTPController) fail(ctx router.Context, provider, requestID string, started time.Time, err error) error {
	status, outcome := classify(err)

	if status >= router.StatusInternalServerError {
		h.logger.Error("%s request %s failed: %v", provider, requestID, err)
	} else {
		h.logger.Warn("%s request %s rejected: %v", provider, requestID, err)
	}
	h.config.Metrics.observe(provider, outcome, started)
	if outcome == OutcomeUpstreamError {
		h.record(ctx, security.ActivityEventProviderFailed, provider, requestID, map[string]any{"error": err.Error()})
	}

	body := ErrorResponse{Error: err.Error(), RequestID: requestID}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		body.Error = richErr.Message
		body.Code = richErr.TextCode
		if status < router.StatusInternalServerError {
			body.Details = richErr.Metadata
		}
	}
	if status == router.StatusInternalServerError && body.Code == "" {
		body.Error = "internal error"
	}

	return ctx.JSON(status, body)
}

// classify maps an authenticator error to a response status and outcome.
func classify(err error) (int, string) {
	switch {
	case security.IsValidationError(err), goerrors.HasCategory(err, goerrors.CategoryBadInput):
		return router.StatusBadRequest, OutcomeInvalid
	case security.IsTransportError(err):
		return http.StatusBadGateway, OutcomeUpstreamError
	default:
		return router.StatusInternalServerError, OutcomeError
	}
}

func (h *HTTPController) record(ctx router.Context, eventType security.ActivityEventType, provider, requestID string, meta map[string]any) {
	event := security.ActivityEvent{
		EventType:  eventType,
		Provider:   provider,
		RequestID:  requestID,
		Metadata:   meta,
		OccurredAt: time.Now().UTC(),
	}
	if err := h.activity.Record(ctx.Context(), event); err != nil {
		h.logger.Warn("failed to record %s activity for request %s: %v", eventType, requestID, err)
	}
}

// requestID returns a copy of the inbound request id, or a new one. Header
// values alias the request buffer, which is reused once the handler returns.
func (h *HTTPController) requestID(ctx router.Context) string {
	id := utils.CopyString(ctx.GetString(h.config.RequestIDHeader, ""))
	if id == "" {
		id = uuid.NewString()
	}
	ctx.SetHeader(h.config.RequestIDHeader, id)
	return id
}
