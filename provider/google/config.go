package google

import security "github.com/goliatone/go-security-jwt"

const DefaultTokenURL = "https://accounts.google.com/o/oauth2/token"

// Config holds Google OAuth client configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	TokenURL     string
}

// ConfigFromSettings maps the Google section of the security settings.
func ConfigFromSettings(s security.GoogleSettings) Config {
	return Config{
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		RedirectURI:  s.RedirectURI,
		TokenURL:     s.TokenURL,
	}
}

func (c Config) withDefaults() Config {
	if c.TokenURL == "" {
		c.TokenURL = DefaultTokenURL
	}
	return c
}
