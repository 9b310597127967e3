package jwtware

import (
	"github.com/goliatone/go-router"

	security "github.com/goliatone/go-security-jwt"
)

// ClaimsFromContext returns the claims New stored under key, or nil.
func ClaimsFromContext(ctx router.Context, key ...string) *security.TokenClaims {
	contextKey := "user"
	if len(key) > 0 && key[0] != "" {
		contextKey = key[0]
	}
	claims, _ := ctx.Locals(contextKey).(*security.TokenClaims)
	return claims
}

// RequireClaim rejects requests whose token does not carry claimType with
// value. It must wrap handlers already guarded by New. Requests without
// claims get 401, requests missing the claim get 403.
func RequireClaim(claimType, value string, errorHandler ...router.ErrorHandler) router.MiddlewareFunc {
	handle := router.ErrorHandler(defaultErrorHandler)
	if len(errorHandler) > 0 && errorHandler[0] != nil {
		handle = errorHandler[0]
	}

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			claims := ClaimsFromContext(ctx)
			if claims == nil {
				return handle(ctx, security.ErrTokenMalformed.Clone())
			}
			if !claims.HasClaim(claimType, value) {
				return handle(ctx, ErrClaimRequired)
			}
			return next(ctx)
		}
	}
}

// RequireKindClaim is RequireClaim with the claim type resolved from kind.
// It panics when kind has no claim type.
func RequireKindClaim(kind security.IdentifierKind, value string, errorHandler ...router.ErrorHandler) router.MiddlewareFunc {
	claimType, err := security.ClaimTypeFor(kind)
	if err != nil {
		panic("SECURITY: RequireKindClaim: " + err.Error())
	}
	return RequireClaim(claimType, value, errorHandler...)
}
