// Package cryptox derives password verifiers for the identity authority.
//
// A password is never stored. The authority keeps a random salt and a
// verifier: SHA-256 over an argon2id key derived from (password, salt).
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"

	"github.com/dmitrijs2005/campushub/internal/common"
	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of freshly generated password salts.
const SaltSize = 32

// DeriveMasterKey stretches password with salt using argon2id
// (1 pass, 64 MiB, 4 lanes, 32-byte key).
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// MakeVerifier hashes a derived key into the value stored server-side.
func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}

// HashPassword generates a new salt and the matching verifier.
func HashPassword(password []byte) (salt, verifier []byte) {
	salt = common.GenerateRandByteArray(SaltSize)
	key := DeriveMasterKey(password, salt)
	defer common.WipeByteArray(key)
	return salt, MakeVerifier(key)
}

// VerifyPassword reports whether password matches the stored salt and
// verifier. The comparison is constant time.
func VerifyPassword(password, salt, verifier []byte) bool {
	key := DeriveMasterKey(password, salt)
	defer common.WipeByteArray(key)
	return subtle.ConstantTimeCompare(MakeVerifier(key), verifier) == 1
}
