package security

import (
	"fmt"
	"reflect"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// DefaultTokenExpiry is used when Settings.TokenExpiry is zero.
const DefaultTokenExpiry = time.Hour

// MinSecretLength is the minimum signing secret size in bytes.
const MinSecretLength = 16

// TokenService issues and validates HS256 signed tokens.
type TokenService struct {
	signingKey     []byte
	issuer         string
	audience       string
	expiry         time.Duration
	identifierKind IdentifierKind
	logger         Logger
	now            func() time.Time
}

// NewTokenService creates a TokenService from settings. The settings are
// read once; later changes to the struct have no effect.
func NewTokenService(settings *Settings, logger Logger) *TokenService {
	s := Settings{}
	if settings != nil {
		s = *settings
	}

	expiry := s.TokenExpiry
	if expiry <= 0 {
		expiry = DefaultTokenExpiry
	}

	kind := s.IdentifierKind
	if kind == KindUnspecified {
		kind = KindName
	}

	return &TokenService{
		signingKey:     []byte(s.Secret),
		issuer:         s.Issuer,
		audience:       s.Audience,
		expiry:         expiry,
		identifierKind: kind,
		logger:         NormalizeLogger(logger),
		now:            time.Now,
	}
}

// WithClock overrides the time source.
func (ts *TokenService) WithClock(now func() time.Time) *TokenService {
	if now != nil {
		ts.now = now
	}
	return ts
}

// Expiry returns the configured token lifetime.
func (ts *TokenService) Expiry() time.Duration {
	return ts.expiry
}

// Generate issues a token for seed using the configured identifier kind as
// the primary identity claim.
func (ts *TokenService) Generate(seed string) (string, error) {
	if seed == "" {
		return "", ErrInvalidSeed.Clone()
	}

	claimType, err := ClaimTypeFor(ts.identifierKind)
	if err != nil {
		return "", err
	}

	return ts.GenerateClaims([]Claim{{Type: claimType, Value: seed}})
}

// GenerateClaims issues a token carrying claims followed by exp and nbf.
// An empty claim list is valid.
func (ts *TokenService) GenerateClaims(claims []Claim) (string, error) {
	if len(ts.signingKey) < MinSecretLength {
		return "", signingError(fmt.Sprintf("signing secret must be at least %d bytes", MinSecretLength))
	}

	now := ts.now()
	set, err := newClaimSet(claims, ts.issuer, ts.audience, now, now.Add(ts.expiry))
	if err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, set)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		ts.logger.Error("token service failed to sign token: %v", err)
		clone := ErrSigning.Clone()
		clone.Source = err
		return "", clone
	}

	return signed, nil
}

// IssueFor issues a token for subject with the claims produced by addClaims.
// A nil addClaims issues a token carrying only the registered claims.
func IssueFor[T any](ts *TokenService, subject T, addClaims ClaimsFunc[T]) (string, error) {
	if isNil(subject) {
		return "", ErrInvalidSubject.Clone()
	}

	builder := NewClaimBuilder(subject)
	if addClaims != nil {
		addClaims(builder)
	}

	claims, err := builder.ToClaims()
	if err != nil {
		return "", err
	}

	return ts.GenerateClaims(claims)
}

// Validate parses raw, verifies its signature, lifetime, issuer and audience
// and returns the decoded claims.
func (ts *TokenService) Validate(raw string) (*TokenClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		opts = append(opts, jwt.WithIssuer(ts.issuer))
	}
	if ts.audience != "" {
		opts = append(opts, jwt.WithAudience(ts.audience))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token service validate encountered unexpected signing method %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, opts...)

	if err != nil {
		if goerrors.Is(err, jwt.ErrTokenExpired) {
			clone := ErrTokenExpired.Clone()
			clone.Source = err
			return nil, clone
		}
		clone := ErrTokenMalformed.Clone()
		clone.Source = err
		return nil, clone
	}

	if !token.Valid {
		return nil, ErrTokenMalformed.Clone()
	}

	return &TokenClaims{raw: claims}, nil
}

func signingError(reason string) error {
	return ErrSigning.Clone().WithMetadata(map[string]any{
		"reason": reason,
	})
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
