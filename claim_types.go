package security

import (
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"
)

// IdentifierKind names the semantic kind of a claim (name, email, role...).
// The zero value is not a valid kind.
type IdentifierKind int

const (
	KindUnspecified IdentifierKind = iota
	KindActor
	KindAuthenticationMethod
	KindCountry
	KindDateOfBirth
	KindDNS
	KindEmail
	KindExpiration
	KindGender
	KindGivenName
	KindGroupSid
	KindHash
	KindHomePhone
	KindLocality
	KindMobilePhone
	KindName
	KindNameIdentifier
	KindOtherPhone
	KindPostalCode
	KindPrimarySid
	KindRole
	KindSerialNumber
	KindSid
	KindStateOrProvince
	KindStreetAddress
	KindSurname
	KindSystem
	KindThumbprint
	KindUPN
	KindURI
	KindUserData
	KindVersion
	KindWebpage
	KindWindowsAccountName
)

const (
	xmlSoapClaims   = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/"
	microsoftClaims = "http://schemas.microsoft.com/ws/2008/06/identity/claims/"
)

type claimTypeEntry struct {
	kind IdentifierKind
	name string
	uri  string
}

var claimTypeEntries = []claimTypeEntry{
	{KindActor, "Actor", "http://schemas.xmlsoap.org/ws/2009/09/identity/claims/actor"},
	{KindAuthenticationMethod, "AuthenticationMethod", microsoftClaims + "authenticationmethod"},
	{KindCountry, "Country", xmlSoapClaims + "country"},
	{KindDateOfBirth, "DateOfBirth", xmlSoapClaims + "dateofbirth"},
	{KindDNS, "Dns", xmlSoapClaims + "dns"},
	{KindEmail, "Email", xmlSoapClaims + "emailaddress"},
	{KindExpiration, "Expiration", microsoftClaims + "expiration"},
	{KindGender, "Gender", xmlSoapClaims + "gender"},
	{KindGivenName, "GivenName", xmlSoapClaims + "givenname"},
	{KindGroupSid, "GroupSid", microsoftClaims + "groupsid"},
	{KindHash, "Hash", xmlSoapClaims + "hash"},
	{KindHomePhone, "HomePhone", xmlSoapClaims + "homephone"},
	{KindLocality, "Locality", xmlSoapClaims + "locality"},
	{KindMobilePhone, "MobilePhone", xmlSoapClaims + "mobilephone"},
	{KindName, "Name", xmlSoapClaims + "name"},
	{KindNameIdentifier, "NameIdentifier", xmlSoapClaims + "nameidentifier"},
	{KindOtherPhone, "OtherPhone", xmlSoapClaims + "otherphone"},
	{KindPostalCode, "PostalCode", xmlSoapClaims + "postalcode"},
	{KindPrimarySid, "PrimarySid", microsoftClaims + "primarysid"},
	{KindRole, "Role", microsoftClaims + "role"},
	{KindSerialNumber, "SerialNumber", microsoftClaims + "serialnumber"},
	{KindSid, "Sid", xmlSoapClaims + "sid"},
	{KindStateOrProvince, "StateOrProvince", xmlSoapClaims + "stateorprovince"},
	{KindStreetAddress, "StreetAddress", xmlSoapClaims + "streetaddress"},
	{KindSurname, "Surname", xmlSoapClaims + "surname"},
	{KindSystem, "System", xmlSoapClaims + "system"},
	{KindThumbprint, "Thumbprint", xmlSoapClaims + "thumbprint"},
	{KindUPN, "Upn", xmlSoapClaims + "upn"},
	{KindURI, "Uri", xmlSoapClaims + "uri"},
	{KindUserData, "UserData", microsoftClaims + "userdata"},
	{KindVersion, "Version", microsoftClaims + "version"},
	{KindWebpage, "Webpage", xmlSoapClaims + "webpage"},
	{KindWindowsAccountName, "WindowsAccountName", microsoftClaims + "windowsaccountname"},
}

// claimTypeTable is populated once on first use and read-only afterwards.
type claimTypeTable struct {
	once   sync.Once
	byKind map[IdentifierKind]claimTypeEntry
	byName map[string]IdentifierKind
}

var claimTypes = &claimTypeTable{}

func (t *claimTypeTable) load() {
	t.once.Do(func() {
		byKind := make(map[IdentifierKind]claimTypeEntry, len(claimTypeEntries))
		byName := make(map[string]IdentifierKind, len(claimTypeEntries))
		for _, entry := range claimTypeEntries {
			byKind[entry.kind] = entry
			byName[strings.ToLower(entry.name)] = entry.kind
		}
		t.byKind = byKind
		t.byName = byName
	})
}

// LoadClaimTypes populates the claim type table. It is safe to call any
// number of times from any goroutine; lookups call it implicitly.
func LoadClaimTypes() {
	claimTypes.load()
}

// ClaimTypeFor returns the canonical claim type URI for kind.
func ClaimTypeFor(kind IdentifierKind) (string, error) {
	claimTypes.load()
	entry, ok := claimTypes.byKind[kind]
	if !ok {
		return "", unknownKindError(kind)
	}
	return entry.uri, nil
}

// ParseIdentifierKind resolves a kind by its name, case insensitive.
func ParseIdentifierKind(name string) (IdentifierKind, error) {
	claimTypes.load()
	kind, ok := claimTypes.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return KindUnspecified, ErrUnknownKind.Clone().WithMetadata(map[string]any{
			"kind": name,
		})
	}
	return kind, nil
}

// IdentifierKinds returns every mapped kind in declaration order.
func IdentifierKinds() []IdentifierKind {
	kinds := make([]IdentifierKind, 0, len(claimTypeEntries))
	for _, entry := range claimTypeEntries {
		kinds = append(kinds, entry.kind)
	}
	return kinds
}

func (k IdentifierKind) String() string {
	claimTypes.load()
	if entry, ok := claimTypes.byKind[k]; ok {
		return entry.name
	}
	return "Unspecified"
}

// Decode implements envdecode.Decoder.
func (k *IdentifierKind) Decode(value string) error {
	return k.UnmarshalText([]byte(value))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *IdentifierKind) UnmarshalText(text []byte) error {
	kind, err := ParseIdentifierKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (k IdentifierKind) MarshalText() ([]byte, error) {
	if _, err := ClaimTypeFor(k); err != nil {
		return nil, err
	}
	return []byte(k.String()), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (k *IdentifierKind) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	return k.UnmarshalText([]byte(name))
}

func unknownKindError(kind IdentifierKind) *goerrors.Error {
	return ErrUnknownKind.Clone().WithMetadata(map[string]any{
		"kind": int(kind),
	})
}
