package security_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	security "github.com/goliatone/go-security-jwt"
)

func TestClaimTypeFor(t *testing.T) {
	tests := []struct {
		kind security.IdentifierKind
		want string
	}{
		{security.KindName, "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name"},
		{security.KindEmail, "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress"},
		{security.KindRole, "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"},
		{security.KindNameIdentifier, "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"},
		{security.KindActor, "http://schemas.xmlsoap.org/ws/2009/09/identity/claims/actor"},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			got, err := security.ClaimTypeFor(tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClaimTypeForUnknownKind(t *testing.T) {
	for _, kind := range []security.IdentifierKind{security.KindUnspecified, security.IdentifierKind(9999)} {
		_, err := security.ClaimTypeFor(kind)
		require.Error(t, err)
		assert.ErrorContains(t, err, "unknown identifier kind")
	}
}

func TestEveryKindIsMapped(t *testing.T) {
	seen := map[string]security.IdentifierKind{}
	for _, kind := range security.IdentifierKinds() {
		uri, err := security.ClaimTypeFor(kind)
		require.NoError(t, err, kind.String())
		assert.NotEmpty(t, uri)

		if prev, dup := seen[uri]; dup {
			t.Fatalf("%s and %s share claim type %s", prev, kind, uri)
		}
		seen[uri] = kind

		parsed, err := security.ParseIdentifierKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}
}

func TestLoadClaimTypesConcurrentFirstUse(t *testing.T) {
	const workers = 64

	var wg sync.WaitGroup
	results := make([]string, workers)
	errs := make([]error, workers)

	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			if i%2 == 0 {
				security.LoadClaimTypes()
			}
			results[i], errs[i] = security.ClaimTypeFor(security.KindEmail)
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0], results[i])
	}

	security.LoadClaimTypes()
	again, err := security.ClaimTypeFor(security.KindEmail)
	require.NoError(t, err)
	assert.Equal(t, results[0], again)
}

func TestParseIdentifierKind(t *testing.T) {
	kind, err := security.ParseIdentifierKind("  email ")
	require.NoError(t, err)
	assert.Equal(t, security.KindEmail, kind)

	_, err = security.ParseIdentifierKind("nickname")
	assert.Error(t, err)
}

func TestIdentifierKindText(t *testing.T) {
	var kind security.IdentifierKind
	require.NoError(t, kind.UnmarshalText([]byte("Role")))
	assert.Equal(t, security.KindRole, kind)

	text, err := kind.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Role", string(text))

	_, err = security.KindUnspecified.MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "Unspecified", security.KindUnspecified.String())
}

func TestIdentifierKindYAML(t *testing.T) {
	var doc struct {
		Kind security.IdentifierKind `yaml:"kind"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("kind: NameIdentifier\n"), &doc))
	assert.Equal(t, security.KindNameIdentifier, doc.Kind)

	assert.Error(t, yaml.Unmarshal([]byte("kind: Nope\n"), &doc))
}
