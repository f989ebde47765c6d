// Package token implements stateless, signed tokens: session,
// set-password, api-key, and legacy flavors, each bound to whichever
// user-version fields it carries so that rotating a version counter
// revokes every outstanding token that depends on it.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sampleforge/vault/internal/vaulterr"
)

// Flavor distinguishes the four token kinds.
type Flavor string

const (
	FlavorSession     Flavor = "session"
	FlavorSetPassword Flavor = "set_password"
	FlavorAPIKey      Flavor = "api_key"
	FlavorLegacy      Flavor = "legacy"
)

const (
	sessionExpiry     = 24 * time.Hour
	setPasswordExpiry = 14 * 24 * time.Hour
)

// UserVersions is the subset of identity.User fields a token can bind
// to. Defined locally (rather than importing identity) to keep the
// token package a leaf — it knows nothing about storage or groups.
type UserVersions struct {
	Login       string
	PasswordVer string
	IdentityVer string
	VersionUID  string
}

// Claims is the JWT payload shared by all four flavors; unused fields
// are omitted so a set-password token, say, never carries identity_ver.
type Claims struct {
	jwt.RegisteredClaims
	Flavor      Flavor `json:"flv"`
	Login       string `json:"login"`
	PasswordVer string `json:"password_ver,omitempty"`
	IdentityVer string `json:"identity_ver,omitempty"`
	APIKeyID    string `json:"api_key_id,omitempty"`
	VersionUID  string `json:"version_uid,omitempty"`
}

// UserVersionLookup resolves a login to its current version fields, so
// Verify can compare the token's bound values against the live user
// without the token package depending on the identity store directly.
type UserVersionLookup interface {
	LookupVersions(ctx context.Context, login string) (UserVersions, error)
}

// APIKeyChecker confirms an APIKey row with the given id still exists
// for login — api-key tokens bind to row existence, not a version
// counter.
type APIKeyChecker interface {
	HasAPIKey(ctx context.Context, login, apiKeyID string) (bool, error)
}

// Verified is what a successful Verify call yields.
type Verified struct {
	Login  string
	Flavor Flavor
}

// Service mints and verifies tokens against a single process-wide
// signing secret.
type Service struct {
	secret []byte
	issuer string
}

// NewService builds a Service. secret must not be empty.
func NewService(secret, issuer string) (*Service, error) {
	if secret == "" {
		return nil, errors.New("token: secret_key must not be empty")
	}
	return &Service{secret: []byte(secret), issuer: issuer}, nil
}

// MintSession issues a 24h token bound to both version fields.
func (s *Service) MintSession(u UserVersions) (string, error) {
	return s.sign(Claims{
		Flavor:      FlavorSession,
		Login:       u.Login,
		PasswordVer: u.PasswordVer,
		IdentityVer: u.IdentityVer,
	}, sessionExpiry)
}

// MintSetPassword issues a 14-day token bound only to password_ver, so
// a password-reset link survives a capability change that rotates
// identity_ver but dies the moment the password itself changes.
func (s *Service) MintSetPassword(u UserVersions) (string, error) {
	return s.sign(Claims{
		Flavor:      FlavorSetPassword,
		Login:       u.Login,
		PasswordVer: u.PasswordVer,
	}, setPasswordExpiry)
}

// MintAPIKey issues a non-expiring token bound to the existence of an
// APIKey row; revocation is deleting that row; see Verify.
func (s *Service) MintAPIKey(login, apiKeyID string) (string, error) {
	return s.sign(Claims{
		Flavor:   FlavorAPIKey,
		Login:    login,
		APIKeyID: apiKeyID,
	}, 0)
}

// MintLegacy always fails: version_uid is a transition-only flavor and
// new deployments must not mint it.
func (s *Service) MintLegacy(string, string) (string, error) {
	return "", vaulterr.New(vaulterr.SchemaInvalid, "legacy tokens cannot be minted by new deployments")
}

func (s *Service) sign(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    s.issuer,
		Subject:   claims.Login,
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// Verify parses tokenString, checks its signature and expiry, then
// rejects it unless every version field it carries still matches the
// live user (or, for api-key tokens, the referenced key still exists).
// Expired or malformed signatures, and any mismatch, yield
// Unauthenticated — all treated the same way at the boundary.
func (s *Service) Verify(ctx context.Context, tokenString string, lookup UserVersionLookup, apiKeys APIKeyChecker) (*Verified, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, vaulterr.New(vaulterr.Unauthenticated, "invalid or expired token")
	}

	switch claims.Flavor {
	case FlavorAPIKey:
		ok, err := apiKeys.HasAPIKey(ctx, claims.Login, claims.APIKeyID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, vaulterr.New(vaulterr.Unauthenticated, "api key revoked")
		}
		return &Verified{Login: claims.Login, Flavor: claims.Flavor}, nil

	case FlavorSession, FlavorSetPassword, FlavorLegacy:
		versions, err := lookup.LookupVersions(ctx, claims.Login)
		if err != nil {
			return nil, vaulterr.New(vaulterr.Unauthenticated, "unknown user")
		}
		if claims.PasswordVer != "" && claims.PasswordVer != versions.PasswordVer {
			return nil, vaulterr.New(vaulterr.Unauthenticated, "password changed since token was issued")
		}
		if claims.IdentityVer != "" && claims.IdentityVer != versions.IdentityVer {
			return nil, vaulterr.New(vaulterr.Unauthenticated, "session invalidated")
		}
		if claims.VersionUID != "" && claims.VersionUID != versions.VersionUID {
			return nil, vaulterr.New(vaulterr.Unauthenticated, "legacy version invalidated")
		}
		return &Verified{Login: claims.Login, Flavor: claims.Flavor}, nil

	default:
		return nil, vaulterr.New(vaulterr.Unauthenticated, "unrecognized token flavor")
	}
}
