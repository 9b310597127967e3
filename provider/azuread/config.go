package azuread

import (
	"strings"

	security "github.com/goliatone/go-security-jwt"
)

// DefaultInstance is the public cloud authority template.
const DefaultInstance = "https://login.microsoftonline.com/{0}"

// Config holds the Azure AD application registration.
type Config struct {
	// Instance is the authority template. "{0}" or "%s" is replaced by Tenant.
	Instance     string
	Tenant       string
	ResourceID   string
	ClientID     string
	ClientSecret string
}

// ConfigFromSettings maps the Azure AD section of the security settings.
func ConfigFromSettings(s security.AzureADSettings) Config {
	return Config{
		Instance:     s.AADInstance,
		Tenant:       s.Tenant,
		ResourceID:   s.ResourceID,
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
	}
}

// Authority returns the tenant scoped authority URL.
func (c Config) Authority() string {
	instance := c.Instance
	if instance == "" {
		instance = DefaultInstance
	}
	instance = strings.ReplaceAll(instance, "{0}", c.Tenant)
	instance = strings.ReplaceAll(instance, "%s", c.Tenant)
	return strings.TrimSuffix(instance, "/")
}

// TokenURL returns the v1 token endpoint of the authority.
func (c Config) TokenURL() string {
	return c.Authority() + "/oauth2/token"
}
