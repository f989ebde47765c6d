package identity

import (
	"crypto/rand"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"

	"github.com/sampleforge/vault/internal/vaulterr"
)

// MinPasswordLength is the minimum accepted by /auth/change_password.
const MinPasswordLength = 8

// HashPassword bcrypt-hashes password, mirroring the original's
// bcrypt.hashpw(..., gensalt(12)) cost.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", vaulterr.New(vaulterr.SchemaInvalid, "password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash. A nil/empty
// hash (a pending user with no password yet) never matches.
func VerifyPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NewVersion mints a fresh opaque version token for password_ver or
// identity_ver, the random 8-byte hex strings the original generates
// with os.urandom(8).hex() (model/user.py).
func NewVersion() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
