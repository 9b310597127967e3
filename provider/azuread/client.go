package azuread

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	security "github.com/goliatone/go-security-jwt"
	"github.com/goliatone/go-security-jwt/transport"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const providerName = "azuread"

// Client acquires application tokens from Azure AD.
type Client interface {
	AcquireToken(ctx context.Context) (*TokenResponse, error)
}

// TokenResponse carries the Azure AD access token.
type TokenResponse struct {
	AccessToken     string    `json:"accessToken"`
	TokenType       string    `json:"tokenType,omitempty"`
	ExpiresAt       time.Time `json:"expiresAt"`
	IsAuthenticated bool      `json:"isAuthenticated"`
}

// Provider runs the client credentials grant against the tenant authority.
type Provider struct {
	credential clientcredentials.Config
	httpClient *http.Client
}

var _ Client = (*Provider)(nil)

// New creates an Azure AD provider client. A nil httpClient uses a client
// with transport.DefaultTimeout.
func New(cfg Config, httpClient *http.Client) *Provider {
	if httpClient == nil {
		httpClient = transport.New().HTTPClient()
	}

	return &Provider{
		credential: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL(),
			EndpointParams: url.Values{
				"resource": {cfg.ResourceID},
			},
			AuthStyle: oauth2.AuthStyleInParams,
		},
		httpClient: httpClient,
	}
}

// AcquireToken requests a token for the configured resource.
func (p *Provider) AcquireToken(ctx context.Context) (*TokenResponse, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	token, err := p.credential.Token(ctx)
	if err != nil {
		return nil, p.providerError(err)
	}

	return &TokenResponse{
		AccessToken:     token.AccessToken,
		TokenType:       token.TokenType,
		ExpiresAt:       token.Expiry,
		IsAuthenticated: true,
	}, nil
}

func (p *Provider) providerError(err error) error {
	perr := &security.ProviderError{
		Provider:  providerName,
		Operation: "token",
	}

	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		if rerr.Response != nil {
			perr.Status = rerr.Response.StatusCode
		}
		perr.Code = rerr.ErrorCode
		perr.Description = rerr.ErrorDescription
		perr.Err = &transport.Error{
			Method: http.MethodPost,
			URL:    p.credential.TokenURL,
			Status: perr.Status,
			Body:   string(rerr.Body),
			Err:    err,
		}
		if rerr.ErrorCode != "" {
			perr.Raw = map[string]any{
				"error":             rerr.ErrorCode,
				"error_description": rerr.ErrorDescription,
			}
		}
		return perr
	}

	perr.Err = &transport.Error{
		Method: http.MethodPost,
		URL:    p.credential.TokenURL,
		Err:    err,
	}
	return perr
}
