package security

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Registered claim names always managed by the TokenService.
const (
	ClaimExpiration = "exp"
	ClaimNotBefore  = "nbf"
	ClaimIssuer     = "iss"
	ClaimAudience   = "aud"
)

// claimSet is the complete, immutable payload of one token. Caller claims
// are serialized first in insertion order, repeated types collapse into a
// JSON array at the position of their first occurrence.
type claimSet struct {
	claims    []Claim
	expiresAt time.Time
	notBefore time.Time
	issuer    string
	audience  string
}

var _ jwt.Claims = (*claimSet)(nil)

func newClaimSet(claims []Claim, issuer, audience string, notBefore, expiresAt time.Time) (*claimSet, error) {
	reserved := map[string]bool{ClaimExpiration: true, ClaimNotBefore: true}
	if issuer != "" {
		reserved[ClaimIssuer] = true
	}
	if audience != "" {
		reserved[ClaimAudience] = true
	}

	owned := make([]Claim, 0, len(claims)+2)
	for i, c := range claims {
		if c.Type == "" {
			return nil, signingError(fmt.Sprintf("claim %d has an empty type", i))
		}
		if reserved[c.Type] {
			return nil, signingError(fmt.Sprintf("claim type %q is managed by the token service", c.Type))
		}
		owned = append(owned, c)
	}

	return &claimSet{
		claims:    owned,
		expiresAt: expiresAt,
		notBefore: notBefore,
		issuer:    issuer,
		audience:  audience,
	}, nil
}

func (c *claimSet) MarshalJSON() ([]byte, error) {
	order := make([]string, 0, len(c.claims))
	values := make(map[string][]string, len(c.claims))
	for _, claim := range c.claims {
		if _, seen := values[claim.Type]; !seen {
			order = append(order, claim.Type)
		}
		values[claim.Type] = append(values[claim.Type], claim.Value)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')

	write := func(key string, value any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	for _, key := range order {
		vals := values[key]
		var err error
		if len(vals) == 1 {
			err = write(key, vals[0])
		} else {
			err = write(key, vals)
		}
		if err != nil {
			return nil, err
		}
	}

	if err := write(ClaimExpiration, c.expiresAt.Unix()); err != nil {
		return nil, err
	}
	if err := write(ClaimNotBefore, c.notBefore.Unix()); err != nil {
		return nil, err
	}
	if c.issuer != "" {
		if err := write(ClaimIssuer, c.issuer); err != nil {
			return nil, err
		}
	}
	if c.audience != "" {
		if err := write(ClaimAudience, c.audience); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c *claimSet) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(c.expiresAt), nil
}

func (c *claimSet) GetIssuedAt() (*jwt.NumericDate, error) {
	return nil, nil
}

func (c *claimSet) GetNotBefore() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(c.notBefore), nil
}

func (c *claimSet) GetIssuer() (string, error) {
	return c.issuer, nil
}

func (c *claimSet) GetSubject() (string, error) {
	return "", nil
}

func (c *claimSet) GetAudience() (jwt.ClaimStrings, error) {
	if c.audience == "" {
		return nil, nil
	}
	return jwt.ClaimStrings{c.audience}, nil
}

// TokenClaims is the decoded claim set of a validated token.
type TokenClaims struct {
	raw jwt.MapClaims
}

// Values returns every value carried for claimType.
func (c *TokenClaims) Values(claimType string) []string {
	if c == nil {
		return nil
	}
	switch v := c.raw[claimType].(type) {
	case nil:
		return nil
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, stringify(item))
		}
		return out
	default:
		return []string{stringify(v)}
	}
}

// Value returns the first value carried for claimType.
func (c *TokenClaims) Value(claimType string) string {
	values := c.Values(claimType)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// KindValue returns the first value carried for the claim type of kind.
func (c *TokenClaims) KindValue(kind IdentifierKind) string {
	claimType, err := ClaimTypeFor(kind)
	if err != nil {
		return ""
	}
	return c.Value(claimType)
}

// HasClaim reports whether the token carries claimType with value.
func (c *TokenClaims) HasClaim(claimType, value string) bool {
	for _, v := range c.Values(claimType) {
		if v == value {
			return true
		}
	}
	return false
}

// Expires returns the exp claim.
func (c *TokenClaims) Expires() time.Time {
	if c == nil {
		return time.Time{}
	}
	return numericDate(c.raw.GetExpirationTime)
}

// NotBefore returns the nbf claim.
func (c *TokenClaims) NotBefore() time.Time {
	if c == nil {
		return time.Time{}
	}
	return numericDate(c.raw.GetNotBefore)
}

// Issuer returns the iss claim.
func (c *TokenClaims) Issuer() string {
	if c == nil {
		return ""
	}
	iss, _ := c.raw.GetIssuer()
	return iss
}

// Audience returns the aud claim.
func (c *TokenClaims) Audience() []string {
	if c == nil {
		return nil
	}
	aud, _ := c.raw.GetAudience()
	return aud
}

// Map returns a copy of the raw claims.
func (c *TokenClaims) Map() map[string]any {
	out := make(map[string]any, len(c.raw))
	for k, v := range c.raw {
		out[k] = v
	}
	return out
}

func numericDate(get func() (*jwt.NumericDate, error)) time.Time {
	date, err := get()
	if err != nil || date == nil {
		return time.Time{}
	}
	return date.Time
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
