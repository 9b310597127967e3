// Package security issues signed access tokens for local and external
// identity flows.
//
// Token issuance:
//   - TokenService signs HS256 tokens. Caller claims are written first in
//     insertion order, repeated claim types collapse into an array, and exp
//     and nbf (plus iss and aud when configured) close the payload.
//   - IdentifierKind names well known claim types. ClaimTypeFor resolves a
//     kind through a fixed table loaded once per process.
//   - ClaimBuilder collects the claims for one subject; IssueFor signs them.
//
// Authenticators:
//   - Every flow implements Authenticator[R] and returns an AuthResult. A
//     false IsAuthenticated is a decision; an error is a failure.
//   - DefaultAuthenticator and CustomAuthenticator live here. Provider flows
//     (facebook, google, azuread, twitter) live under provider/ and call out
//     through the transport package.
package security
