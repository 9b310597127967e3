package security

import (
	"errors"
	"fmt"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

// Settings is the process wide security configuration. Build it once at
// startup and pass it by pointer; nothing mutates it afterwards.
type Settings struct {
	Secret         string         `yaml:"secret" env:"SECURITY_SECRET"`
	Issuer         string         `yaml:"issuer" env:"SECURITY_ISSUER"`
	Audience       string         `yaml:"audience" env:"SECURITY_AUDIENCE"`
	TokenExpiry    time.Duration  `yaml:"tokenExpiry" env:"SECURITY_TOKEN_EXPIRY,default=1h"`
	IdentifierKind IdentifierKind `yaml:"identifierKind" env:"SECURITY_IDENTIFIER_KIND,default=Name"`

	// Users maps ids to bcrypt hashes for the default flow verifier.
	Users map[string]string `yaml:"users"`

	Facebook FacebookSettings `yaml:"facebook"`
	Google   GoogleSettings   `yaml:"google"`
	Twitter  TwitterSettings  `yaml:"twitter"`
	AzureAD  AzureADSettings  `yaml:"azureAD"`
}

// FacebookSettings configures the Facebook token validation flow.
type FacebookSettings struct {
	AppID                  string `yaml:"appId" env:"SECURITY_FACEBOOK_APP_ID"`
	AppSecret              string `yaml:"appSecret" env:"SECURITY_FACEBOOK_APP_SECRET"`
	OAuthURL               string `yaml:"oauthUrl" env:"SECURITY_FACEBOOK_OAUTH_URL"`
	UserTokenValidationURL string `yaml:"userTokenValidationUrl" env:"SECURITY_FACEBOOK_DEBUG_TOKEN_URL"`
}

// Enabled reports whether the provider has credentials.
func (s FacebookSettings) Enabled() bool {
	return s.AppID != "" && s.AppSecret != ""
}

// GoogleSettings configures the Google authorization code flow.
type GoogleSettings struct {
	ClientID     string `yaml:"clientId" env:"SECURITY_GOOGLE_CLIENT_ID"`
	ClientSecret string `yaml:"clientSecret" env:"SECURITY_GOOGLE_CLIENT_SECRET"`
	RedirectURI  string `yaml:"redirectUri" env:"SECURITY_GOOGLE_REDIRECT_URI"`
	TokenURL     string `yaml:"tokenUrl" env:"SECURITY_GOOGLE_TOKEN_URL"`
	APIKey       string `yaml:"apiKey" env:"SECURITY_GOOGLE_API_KEY"`
}

// Enabled reports whether the provider has credentials.
func (s GoogleSettings) Enabled() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

// TwitterSettings configures the Twitter application-only flow.
type TwitterSettings struct {
	ConsumerKey    string `yaml:"consumerKey" env:"SECURITY_TWITTER_CONSUMER_KEY"`
	ConsumerSecret string `yaml:"consumerSecret" env:"SECURITY_TWITTER_CONSUMER_SECRET"`
	TokenURL       string `yaml:"tokenUrl" env:"SECURITY_TWITTER_TOKEN_URL"`
	APIKey         string `yaml:"apiKey" env:"SECURITY_TWITTER_API_KEY"`
}

// Enabled reports whether the provider has credentials.
func (s TwitterSettings) Enabled() bool {
	return s.ConsumerKey != "" && s.ConsumerSecret != ""
}

// AzureADSettings configures the Azure AD client credentials flow.
// AADInstance may contain a "{0}" or "%s" placeholder for the tenant.
type AzureADSettings struct {
	AADInstance  string `yaml:"aadInstance" env:"SECURITY_AZUREAD_INSTANCE"`
	Tenant       string `yaml:"tenant" env:"SECURITY_AZUREAD_TENANT"`
	ResourceID   string `yaml:"resourceId" env:"SECURITY_AZUREAD_RESOURCE_ID"`
	ClientID     string `yaml:"clientId" env:"SECURITY_AZUREAD_CLIENT_ID"`
	ClientSecret string `yaml:"clientSecret" env:"SECURITY_AZUREAD_CLIENT_SECRET"`
	APIKey       string `yaml:"apiKey" env:"SECURITY_AZUREAD_API_KEY"`
}

// Enabled reports whether the provider has credentials.
func (s AzureADSettings) Enabled() bool {
	return s.ClientID != "" && s.ClientSecret != "" && s.Tenant != ""
}

// WithDefaults returns a copy of s with unset values defaulted.
func (s Settings) WithDefaults() Settings {
	if s.TokenExpiry <= 0 {
		s.TokenExpiry = DefaultTokenExpiry
	}
	if s.IdentifierKind == KindUnspecified {
		s.IdentifierKind = KindName
	}
	return s
}

// Validate checks the settings required to issue tokens and any provider
// section that has been partially configured.
func (s Settings) Validate() error {
	err := validation.ValidateStruct(&s,
		validation.Field(&s.Secret, validation.Required, validation.Length(MinSecretLength, 0)),
		validation.Field(&s.TokenExpiry, validation.By(nonNegativeDuration)),
		validation.Field(&s.IdentifierKind, validation.By(validIdentifierKind)),
		validation.Field(&s.Facebook),
		validation.Field(&s.Google),
		validation.Field(&s.Twitter),
		validation.Field(&s.AzureAD),
	)
	if err != nil {
		clone := ErrInvalidSettings.Clone()
		clone.Source = err
		return clone.WithMetadata(map[string]any{"errors": err.Error()})
	}
	return nil
}

// Validate implements validation.Validatable.
func (s FacebookSettings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.AppSecret, requiredIf(s.AppID != "")),
		validation.Field(&s.OAuthURL, is.URL),
		validation.Field(&s.UserTokenValidationURL, is.URL),
	)
}

// Validate implements validation.Validatable.
func (s GoogleSettings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.ClientSecret, requiredIf(s.ClientID != "")),
		validation.Field(&s.RedirectURI, requiredIf(s.ClientID != "")),
		validation.Field(&s.TokenURL, is.URL),
	)
}

// Validate implements validation.Validatable.
func (s TwitterSettings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.ConsumerSecret, requiredIf(s.ConsumerKey != "")),
		validation.Field(&s.TokenURL, is.URL),
	)
}

// Validate implements validation.Validatable.
func (s AzureADSettings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.ClientSecret, requiredIf(s.ClientID != "")),
		validation.Field(&s.Tenant, requiredIf(s.ClientID != "")),
		validation.Field(&s.ResourceID, requiredIf(s.ClientID != "")),
	)
}

func requiredIf(condition bool) validation.Rule {
	return validation.By(func(value any) error {
		if !condition {
			return nil
		}
		if str, ok := value.(string); ok && str == "" {
			return errors.New("cannot be blank")
		}
		return nil
	})
}

func nonNegativeDuration(value any) error {
	if d, ok := value.(time.Duration); ok && d < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

func validIdentifierKind(value any) error {
	kind, ok := value.(IdentifierKind)
	if !ok {
		return fmt.Errorf("unexpected identifier kind type %T", value)
	}
	if kind == KindUnspecified {
		return nil
	}
	if _, err := ClaimTypeFor(kind); err != nil {
		return errors.New("unknown identifier kind")
	}
	return nil
}

// LoadSettingsFromEnv decodes Settings from SECURITY_* environment
// variables, applies defaults and validates the result.
func LoadSettingsFromEnv() (*Settings, error) {
	var s Settings
	if err := envdecode.Decode(&s); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("security: decode environment: %w", err)
	}
	return finalizeSettings(s)
}

// LoadSettingsFile reads a YAML settings file, applies defaults and
// validates the result.
func LoadSettingsFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("security: read settings: %w", err)
	}
	return ParseSettings(data)
}

// ParseSettings decodes YAML settings, applies defaults and validates.
func ParseSettings(data []byte) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("security: parse settings: %w", err)
	}
	return finalizeSettings(s)
}

func finalizeSettings(s Settings) (*Settings, error) {
	s = s.WithDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
