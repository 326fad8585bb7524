package hashing

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// DigestHexLen is the length of every digest produced by this package:
// a keccak256 digest is 32 bytes, rendered as 64 lowercase hex characters.
const DigestHexLen = 64

// Digest computes keccak256 over the concatenation of the given parts and
// returns the digest as a 64-character lowercase hex string.
//
// Every hash combination in the protocol (leaf hashing, pair hashing,
// commitment, challenge, response) goes through this function, so the
// byte-for-byte concatenation order of the parts is the interop contract.
func Digest(parts ...string) string {
	data := make([]byte, 0)
	for _, p := range parts {
		data = append(data, p...)
	}
	hash := crypto.Keccak256Hash(data)
	return hex.EncodeToString(hash.Bytes())
}

// RandomHex returns n cryptographically random bytes encoded as a
// 2n-character lowercase hex string.
func RandomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "failed to read random bytes")
	}
	return hex.EncodeToString(buf), nil
}

// IsHexDigest reports whether s is a well-formed 64-character lowercase
// hex digest as produced by Digest.
func IsHexDigest(s string) bool {
	return IsHexString(s) && len(s) == DigestHexLen
}

// IsHexString reports whether s is non-empty lowercase hex.
func IsHexString(s string) bool {
	if len(s) == 0 || len(s)%2 != 0 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
