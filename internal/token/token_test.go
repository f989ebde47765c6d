package token_test

import (
	"context"
	"testing"

	"github.com/sampleforge/vault/internal/token"
	"github.com/sampleforge/vault/internal/vaulterr"
)

type fakeLookup map[string]token.UserVersions

func (f fakeLookup) LookupVersions(_ context.Context, login string) (token.UserVersions, error) {
	v, ok := f[login]
	if !ok {
		return token.UserVersions{}, vaulterr.New(vaulterr.NotFound, "no such user")
	}
	return v, nil
}

type fakeAPIKeys map[string]bool

func (f fakeAPIKeys) HasAPIKey(_ context.Context, login, apiKeyID string) (bool, error) {
	return f[login+"/"+apiKeyID], nil
}

func TestSessionTokenRoundTrips(t *testing.T) {
	svc, err := token.NewService("secret", "vault")
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	u := token.UserVersions{Login: "alice", PasswordVer: "p1", IdentityVer: "i1"}
	signed, err := svc.MintSession(u)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	verified, err := svc.Verify(context.Background(), signed, fakeLookup{"alice": u}, fakeAPIKeys{})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if verified.Login != "alice" || verified.Flavor != token.FlavorSession {
		t.Fatalf("unexpected verified token: %+v", verified)
	}
}

func TestSessionTokenInvalidatedByPasswordChange(t *testing.T) {
	svc, _ := token.NewService("secret", "vault")
	u := token.UserVersions{Login: "alice", PasswordVer: "p1", IdentityVer: "i1"}
	signed, _ := svc.MintSession(u)

	rotated := u
	rotated.PasswordVer = "p2"
	_, err := svc.Verify(context.Background(), signed, fakeLookup{"alice": rotated}, fakeAPIKeys{})
	if vaulterr.KindOf(err) != vaulterr.Unauthenticated {
		t.Fatalf("expected unauthenticated after password_ver rotation, got %v", err)
	}
}

func TestSetPasswordTokenSurvivesIdentityVerRotation(t *testing.T) {
	svc, _ := token.NewService("secret", "vault")
	u := token.UserVersions{Login: "alice", PasswordVer: "p1", IdentityVer: "i1"}
	signed, err := svc.MintSetPassword(u)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	rotated := u
	rotated.IdentityVer = "i2"
	if _, err := svc.Verify(context.Background(), signed, fakeLookup{"alice": rotated}, fakeAPIKeys{}); err != nil {
		t.Fatalf("set-password token should survive identity_ver rotation: %v", err)
	}
}

func TestAPIKeyTokenRevokedByDeletingKey(t *testing.T) {
	svc, _ := token.NewService("secret", "vault")
	signed, err := svc.MintAPIKey("alice", "key-1")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := svc.Verify(context.Background(), signed, fakeLookup{}, fakeAPIKeys{"alice/key-1": true}); err != nil {
		t.Fatalf("expected valid api key token: %v", err)
	}
	if _, err := svc.Verify(context.Background(), signed, fakeLookup{}, fakeAPIKeys{}); vaulterr.KindOf(err) != vaulterr.Unauthenticated {
		t.Fatalf("expected unauthenticated after key revocation, got %v", err)
	}
}

func TestMintLegacyRefused(t *testing.T) {
	svc, _ := token.NewService("secret", "vault")
	if _, err := svc.MintLegacy("alice", "v1"); vaulterr.KindOf(err) != vaulterr.SchemaInvalid {
		t.Fatalf("expected schema-invalid refusing legacy mint, got %v", err)
	}
}
