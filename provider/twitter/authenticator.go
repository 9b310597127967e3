package twitter

import (
	"context"

	security "github.com/goliatone/go-security-jwt"
)

// Request is the inbound payload of the Twitter flow.
type Request struct {
	APIKey string `json:"apiKey"`
}

// Authenticator guards the Twitter token request with a shared API key.
type Authenticator struct {
	apiKey string
	client Client
	logger security.Logger
}

var _ security.Authenticator[Request] = (*Authenticator)(nil)

// NewAuthenticator creates the Twitter authenticator.
func NewAuthenticator(apiKey string, client Client, logger security.Logger) *Authenticator {
	return &Authenticator{
		apiKey: apiKey,
		client: client,
		logger: security.NormalizeLogger(logger),
	}
}

// Authenticate requests a Twitter bearer token once the API key matches.
func (a *Authenticator) Authenticate(ctx context.Context, req Request) (*security.AuthResult, error) {
	if !security.APIKeyMatches(a.apiKey, req.APIKey) {
		a.logger.Debug("twitter authenticator rejected api key")
		return security.Unauthenticated(), nil
	}

	resp, err := a.client.RequestToken(ctx)
	if err != nil {
		a.logger.Error("twitter authenticator failed to request token: %v", err)
		return nil, security.WrapAuthentication(providerName, err)
	}
	if resp == nil {
		return security.Unauthenticated(), nil
	}

	return &security.AuthResult{
		IsAuthenticated: resp.IsAuthenticated,
		AccessToken:     resp.AccessToken,
		Payload:         resp,
	}, nil
}
