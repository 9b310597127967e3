package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	security "github.com/goliatone/go-security-jwt"
	"github.com/goliatone/go-security-jwt/transport"
)

const providerName = "google"

// Client exchanges authorization codes for Google tokens.
type Client interface {
	ExchangeCode(ctx context.Context, code string) (*TokenResponse, error)
}

// TokenResponse is the Google token endpoint response. IsAuthenticated is
// not part of the wire format; it is set once the exchange succeeds.
type TokenResponse struct {
	AccessToken     string `json:"access_token"`
	RefreshToken    string `json:"refresh_token,omitempty"`
	TokenType       string `json:"token_type"`
	ExpiresIn       int    `json:"expires_in"`
	Scope           string `json:"scope,omitempty"`
	IDToken         string `json:"id_token,omitempty"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

type errorResponse struct {
	Error     string `json:"error"`
	ErrorDesc string `json:"error_description"`
}

// Provider posts authorization code exchanges through a transport.Client.
type Provider struct {
	config    Config
	transport transport.Client
}

var _ Client = (*Provider)(nil)

// New creates a Google provider client.
func New(cfg Config, tr transport.Client) *Provider {
	if tr == nil {
		tr = transport.New()
	}
	return &Provider{
		config:    cfg.withDefaults(),
		transport: tr,
	}
}

// ExchangeCode trades an authorization code for an access and refresh token.
func (p *Provider) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	form := url.Values{
		"code":          {strings.TrimSpace(code)},
		"client_id":     {strings.TrimSpace(p.config.ClientID)},
		"client_secret": {strings.TrimSpace(p.config.ClientSecret)},
		"redirect_uri":  {strings.TrimSpace(p.config.RedirectURI)},
		"grant_type":    {"authorization_code"},
	}

	req, err := transport.NewFormRequest(ctx, p.config.TokenURL, form)
	if err != nil {
		return nil, providerError("exchange", err)
	}

	resp, err := transport.Send[TokenResponse](ctx, p.transport, req)
	if err != nil {
		return nil, providerError("exchange", err)
	}

	resp.IsAuthenticated = true
	return &resp, nil
}

func providerError(operation string, err error) error {
	perr := &security.ProviderError{
		Provider:  providerName,
		Operation: operation,
		Status:    transport.StatusCode(err),
		Err:       err,
	}
	if transport.IsMalformed(err) {
		perr.Code = "invalid_response"
		perr.Description = "failed to decode token response"
		return perr
	}

	var terr *transport.Error
	if errors.As(err, &terr) && terr.Body != "" {
		var body errorResponse
		if json.Unmarshal([]byte(terr.Body), &body) == nil && (body.Error != "" || body.ErrorDesc != "") {
			perr.Code = body.Error
			perr.Description = body.ErrorDesc
			perr.Raw = map[string]any{
				"error":             body.Error,
				"error_description": body.ErrorDesc,
			}
		}
	}
	return perr
}
