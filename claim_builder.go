package security

// Claim is a typed fact embedded in an issued token.
type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// ClaimsFunc populates a ClaimBuilder for one subject.
type ClaimsFunc[T any] func(b *ClaimBuilder[T])

// ClaimBuilder accumulates an ordered claim list for one subject.
// It is not safe for concurrent use; build one per request.
type ClaimBuilder[T any] struct {
	subject T
	claims  []Claim
	err     error
}

// NewClaimBuilder returns an empty builder bound to subject.
func NewClaimBuilder[T any](subject T) *ClaimBuilder[T] {
	return &ClaimBuilder[T]{subject: subject}
}

// Subject returns the subject the builder is bound to.
func (b *ClaimBuilder[T]) Subject() T {
	return b.subject
}

// Add appends a claim with an explicit claim type.
func (b *ClaimBuilder[T]) Add(claimType, value string) *ClaimBuilder[T] {
	b.claims = append(b.claims, Claim{Type: claimType, Value: value})
	return b
}

// AddKind appends a claim whose type is resolved from kind.
func (b *ClaimBuilder[T]) AddKind(kind IdentifierKind, value string) *ClaimBuilder[T] {
	claimType, err := ClaimTypeFor(kind)
	if err != nil {
		b.setErr(err)
		return b
	}
	return b.Add(claimType, value)
}

// AddFunc appends a claim whose value is computed from the subject.
func (b *ClaimBuilder[T]) AddFunc(claimType string, value func(T) string) *ClaimBuilder[T] {
	return b.Add(claimType, value(b.subject))
}

// AddKindFunc appends a claim whose type is resolved from kind and whose
// value is computed from the subject.
func (b *ClaimBuilder[T]) AddKindFunc(kind IdentifierKind, value func(T) string) *ClaimBuilder[T] {
	claimType, err := ClaimTypeFor(kind)
	if err != nil {
		b.setErr(err)
		return b
	}
	return b.Add(claimType, value(b.subject))
}

// ToClaims returns a copy of the claims added so far, in insertion order,
// and the first kind resolution error if any.
func (b *ClaimBuilder[T]) ToClaims() ([]Claim, error) {
	out := make([]Claim, len(b.claims))
	copy(out, b.claims)
	return out, b.err
}

// Len returns the number of claims added so far.
func (b *ClaimBuilder[T]) Len() int {
	return len(b.claims)
}

func (b *ClaimBuilder[T]) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}
