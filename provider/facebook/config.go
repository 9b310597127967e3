package facebook

import security "github.com/goliatone/go-security-jwt"

const (
	DefaultOAuthURL      = "https://graph.facebook.com/oauth/access_token"
	DefaultDebugTokenURL = "https://graph.facebook.com/debug_token"
)

// Config holds the Facebook application credentials and graph endpoints.
type Config struct {
	AppID         string
	AppSecret     string
	OAuthURL      string
	DebugTokenURL string
}

// ConfigFromSettings maps the Facebook section of the security settings.
func ConfigFromSettings(s security.FacebookSettings) Config {
	return Config{
		AppID:         s.AppID,
		AppSecret:     s.AppSecret,
		OAuthURL:      s.OAuthURL,
		DebugTokenURL: s.UserTokenValidationURL,
	}
}

func (c Config) withDefaults() Config {
	if c.OAuthURL == "" {
		c.OAuthURL = DefaultOAuthURL
	}
	if c.DebugTokenURL == "" {
		c.DebugTokenURL = DefaultDebugTokenURL
	}
	return c
}
