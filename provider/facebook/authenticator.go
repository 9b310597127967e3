package facebook

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	security "github.com/goliatone/go-security-jwt"
)

// Request is the inbound payload of the Facebook flow.
type Request struct {
	UserAccessToken string `json:"userAccessToken"`
}

// Validate checks that a user access token was supplied.
func (r Request) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserAccessToken, validation.Required),
	)
}

// Identity is the subject a system token is issued for once Facebook
// confirms the user access token.
type Identity struct {
	UserAccessToken string
	UserID          string
	AppID           string
}

// DefaultClaims names the subject by its Facebook user id, when known.
func DefaultClaims(b *security.ClaimBuilder[Identity]) {
	if b.Subject().UserID == "" {
		return
	}
	b.AddKindFunc(security.KindNameIdentifier, func(id Identity) string {
		return id.UserID
	})
}

// Authenticator confirms Facebook user tokens and issues a system token.
type Authenticator struct {
	client Client
	tokens *security.TokenService
	claims security.ClaimsFunc[Identity]
	logger security.Logger
}

var _ security.Authenticator[Request] = (*Authenticator)(nil)

// NewAuthenticator creates the Facebook authenticator. A nil claims func
// uses DefaultClaims. It panics when tokens is nil.
func NewAuthenticator(client Client, tokens *security.TokenService, claims security.ClaimsFunc[Identity], logger security.Logger) *Authenticator {
	if tokens == nil {
		panic("SECURITY: facebook authenticator configuration: TokenService is required.")
	}
	if claims == nil {
		claims = DefaultClaims
	}
	return &Authenticator{
		client: client,
		tokens: tokens,
		claims: claims,
		logger: security.NormalizeLogger(logger),
	}
}

// Authenticate validates req, asks Facebook whether the user token is valid
// and, when it is, returns a system issued token.
func (a *Authenticator) Authenticate(ctx context.Context, req Request) (*security.AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, security.WrapValidation(err)
	}

	result, err := a.client.ValidateUserToken(ctx, req.UserAccessToken)
	if err != nil {
		a.logger.Error("facebook authenticator failed to validate user token: %v", err)
		return nil, security.WrapAuthentication(providerName, err)
	}

	if result == nil || !result.IsValid {
		a.logger.Debug("facebook authenticator rejected user token")
		return security.Unauthenticated(), nil
	}

	identity := Identity{
		UserAccessToken: req.UserAccessToken,
		UserID:          result.UserID,
		AppID:           result.AppID,
	}

	token, err := security.IssueFor(a.tokens, identity, a.claims)
	if err != nil {
		return nil, err
	}

	return &security.AuthResult{
		IsAuthenticated: true,
		AccessToken:     token,
		Payload:         result,
	}, nil
}
