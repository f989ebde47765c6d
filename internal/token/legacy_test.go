package token

import (
	"context"
	"testing"

	"github.com/sampleforge/vault/internal/vaulterr"
)

// legacyLookup and legacyAPIKeys mirror token_test.go's fakes; kept
// unexported and package-local since this file needs sign(), which
// token_test.go's external test package cannot reach.
type legacyLookup map[string]UserVersions

func (f legacyLookup) LookupVersions(_ context.Context, login string) (UserVersions, error) {
	v, ok := f[login]
	if !ok {
		return UserVersions{}, vaulterr.New(vaulterr.NotFound, "no such user")
	}
	return v, nil
}

type legacyAPIKeys map[string]bool

func (f legacyAPIKeys) HasAPIKey(_ context.Context, login, apiKeyID string) (bool, error) {
	return f[login+"/"+apiKeyID], nil
}

// TestLegacyTokenInvalidatedByVersionUIDRotation exercises the
// FlavorLegacy branch directly via sign, since MintLegacy refuses to
// produce one: migration-era tokens already in the wild are what this
// branch validates, not anything this service mints itself.
func TestLegacyTokenInvalidatedByVersionUIDRotation(t *testing.T) {
	svc, err := NewService("secret", "vault")
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	signed, err := svc.sign(Claims{Flavor: FlavorLegacy, Login: "alice", VersionUID: "v1"}, 0)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	lookup := legacyLookup{"alice": {Login: "alice", VersionUID: "v1"}}
	if _, err := svc.Verify(context.Background(), signed, lookup, legacyAPIKeys{}); err != nil {
		t.Fatalf("expected valid legacy token, got %v", err)
	}

	rotated := legacyLookup{"alice": {Login: "alice", VersionUID: "v2"}}
	if _, err := svc.Verify(context.Background(), signed, rotated, legacyAPIKeys{}); vaulterr.KindOf(err) != vaulterr.Unauthenticated {
		t.Fatalf("expected unauthenticated after version_uid rotation, got %v", err)
	}
}
