package twitter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	security "github.com/goliatone/go-security-jwt"
	"github.com/goliatone/go-security-jwt/transport"
)

const providerName = "twitter"

// Client requests application-only bearer tokens from Twitter.
type Client interface {
	RequestToken(ctx context.Context) (*TokenResponse, error)
}

// TokenResponse is the Twitter token endpoint response.
type TokenResponse struct {
	TokenType       string `json:"token_type"`
	AccessToken     string `json:"access_token"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

type errorResponse struct {
	Errors []struct {
		Code    int    `json:"code"`
		Label   string `json:"label"`
		Message string `json:"message"`
	} `json:"errors"`
}

// Provider posts client credential grants through a transport.Client.
type Provider struct {
	config    Config
	transport transport.Client
}

var _ Client = (*Provider)(nil)

// New creates a Twitter provider client.
func New(cfg Config, tr transport.Client) *Provider {
	if tr == nil {
		tr = transport.New()
	}
	return &Provider{
		config:    cfg.withDefaults(),
		transport: tr,
	}
}

// RequestToken posts the client credentials grant.
func (p *Provider) RequestToken(ctx context.Context) (*TokenResponse, error) {
	req, err := transport.NewFormRequest(ctx, p.config.TokenURL, url.Values{
		"grant_type": {"client_credentials"},
	})
	if err != nil {
		return nil, providerError("token", err)
	}
	req.Header.Set("Authorization", "Basic "+basicCredentials(p.config.ConsumerKey, p.config.ConsumerSecret))

	resp, err := transport.Send[TokenResponse](ctx, p.transport, req)
	if err != nil {
		return nil, providerError("token", err)
	}

	resp.IsAuthenticated = true
	return &resp, nil
}

func basicCredentials(key, secret string) string {
	raw := strings.TrimSpace(key) + ":" + strings.TrimSpace(secret)
	return base64.StdEncoding.EncodeToString([]byte(raw))
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
		if json.Unmarshal([]byte(terr.Body), &body) == nil && len(body.Errors) > 0 {
			first := body.Errors[0]
			perr.Code = first.Label
			perr.Description = first.Message
			perr.Raw = map[string]any{
				"code":    first.Code,
				"label":   first.Label,
				"message": first.Message,
			}
		}
	}
	return perr
}
