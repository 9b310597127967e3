package twitter

import security "github.com/goliatone/go-security-jwt"

const DefaultTokenURL = "https://api.twitter.com/oauth2/token"

// Config holds the Twitter application credentials.
type Config struct {
	ConsumerKey    string
	ConsumerSecret string
	TokenURL       string
}

// ConfigFromSettings maps the Twitter section of the security settings.
func ConfigFromSettings(s security.TwitterSettings) Config {
	return Config{
		ConsumerKey:    s.ConsumerKey,
		ConsumerSecret: s.ConsumerSecret,
		TokenURL:       s.TokenURL,
	}
}

func (c Config) withDefaults() Config {
	if c.TokenURL == "" {
		c.TokenURL = DefaultTokenURL
	}
	return c
}
