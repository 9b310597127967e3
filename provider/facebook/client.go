package facebook

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"

	security "github.com/goliatone/go-security-jwt"
	"github.com/goliatone/go-security-jwt/transport"
)

const providerName = "facebook"

// Client validates Facebook user access tokens.
type Client interface {
	ValidateUserToken(ctx context.Context, userAccessToken string) (*TokenValidation, error)
}

// TokenValidation is the subset of the debug_token response we rely on.
type TokenValidation struct {
	IsValid   bool     `json:"is_valid"`
	AppID     string   `json:"app_id"`
	UserID    string   `json:"user_id"`
	Type      string   `json:"type"`
	ExpiresAt int64    `json:"expires_at"`
	Scopes    []string `json:"scopes,omitempty"`
}

type appAccessToken struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	Error       *graphError `json:"error,omitempty"`
}

type debugTokenResponse struct {
	Data struct {
		IsValid   bool        `json:"is_valid"`
		AppID     flexID      `json:"app_id"`
		UserID    flexID      `json:"user_id"`
		Type      string      `json:"type"`
		ExpiresAt int64       `json:"expires_at"`
		Scopes    []string    `json:"scopes"`
		Error     *graphError `json:"error,omitempty"`
	} `json:"data"`
	Error *graphError `json:"error,omitempty"`
}

type graphError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

// flexID accepts graph ids encoded either as strings or as numbers.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	if string(data) == "null" {
		*f = ""
		return nil
	}
	*f = flexID(string(data))
	return nil
}

// Provider talks to the Facebook graph API through a transport.Client.
type Provider struct {
	config    Config
	transport transport.Client
}

var _ Client = (*Provider)(nil)

// New creates a Facebook provider client.
func New(cfg Config, tr transport.Client) *Provider {
	if tr == nil {
		tr = transport.New()
	}
	return &Provider{
		config:    cfg.withDefaults(),
		transport: tr,
	}
}

// ValidateUserToken exchanges the app credentials for an app access token
// and uses it to inspect userAccessToken.
func (p *Provider) ValidateUserToken(ctx context.Context, userAccessToken string) (*TokenValidation, error) {
	appToken, err := p.appAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{
		"input_token":  {userAccessToken},
		"access_token": {appToken},
	}

	resp, err := transport.Get[debugTokenResponse](ctx, p.transport, withQuery(p.config.DebugTokenURL, query))
	if err != nil {
		return nil, providerError("debug_token", err)
	}
	if resp.Error != nil {
		return nil, graphProviderError("debug_token", resp.Error)
	}

	return &TokenValidation{
		IsValid:   resp.Data.IsValid,
		AppID:     string(resp.Data.AppID),
		UserID:    string(resp.Data.UserID),
		Type:      resp.Data.Type,
		ExpiresAt: resp.Data.ExpiresAt,
		Scopes:    resp.Data.Scopes,
	}, nil
}

func (p *Provider) appAccessToken(ctx context.Context) (string, error) {
	query := url.Values{
		"client_id":     {p.config.AppID},
		"client_secret": {p.config.AppSecret},
		"grant_type":    {"client_credentials"},
	}

	resp, err := transport.Get[appAccessToken](ctx, p.transport, withQuery(p.config.OAuthURL, query))
	if err != nil {
		return "", providerError("app_access_token", err)
	}
	if resp.Error != nil {
		return "", graphProviderError("app_access_token", resp.Error)
	}
	if resp.AccessToken == "" {
		return "", &security.ProviderError{
			Provider:    providerName,
			Operation:   "app_access_token",
			Code:        "missing_access_token",
			Description: "missing app access token",
		}
	}

	return resp.AccessToken, nil
}

func withQuery(base string, query url.Values) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + "?" + query.Encode()
	}
	existing := u.Query()
	for k, v := range query {
		existing[k] = v
	}
	u.RawQuery = existing.Encode()
	return u.String()
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
		perr.Description = "failed to decode graph response"
	}

	var terr *transport.Error
	if errors.As(err, &terr) && terr.Body != "" {
		var body struct {
			Error *graphError `json:"error"`
		}
		if decodeJSON(terr.Body, &body) == nil && body.Error != nil {
			perr.Code = body.Error.Type
			perr.Description = body.Error.Message
			perr.Raw = body.Error.metadata()
		}
	}
	return perr
}

func graphProviderError(operation string, gerr *graphError) error {
	return &security.ProviderError{
		Provider:    providerName,
		Operation:   operation,
		Code:        gerr.Type,
		Description: gerr.Message,
		Raw:         gerr.metadata(),
	}
}

func (g *graphError) metadata() map[string]any {
	meta := map[string]any{}
	if g.Type != "" {
		meta["type"] = g.Type
	}
	if g.Message != "" {
		meta["message"] = g.Message
	}
	if g.Code != 0 {
		meta["code"] = g.Code
	}
	return meta
}

func decodeJSON(raw string, v any) error {
	return json.Unmarshal([]byte(raw), v)
}
