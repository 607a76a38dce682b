package keys

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

const (
	// SeedLen is the Ed25519 private seed size in bytes.
	SeedLen = ed25519.SeedSize
	// PublicLen is the Ed25519 public key size in bytes.
	PublicLen = ed25519.PublicKeySize
)

// KeyPair is one candidate: a private seed and the public key derived
// from it. The generating worker owns it until it is either wiped
// (rejected candidate) or handed to the store (match).
type KeyPair struct {
	Seed   [SeedLen]byte
	Public [PublicLen]byte
}

// Generate fills kp with a fresh keypair from the OS entropy source.
// A failing entropy source is fatal for the caller; there is no
// fallback to weaker randomness.
func Generate(kp *KeyPair) error {
	if _, err := rand.Read(kp.Seed[:]); err != nil {
		return fmt.Errorf("secure randomness unavailable: %w", err)
	}
	priv := ed25519.NewKeyFromSeed(kp.Seed[:])
	copy(kp.Public[:], priv[SeedLen:])
	Wipe(priv)
	return nil
}

// Wipe zeroes the buffer. Best-effort against the compiler eliding
// the writes; rejected seeds must never linger in memory.
//
//go:noinline
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// WipePair clears both halves of a candidate.
func WipePair(kp *KeyPair) {
	Wipe(kp.Seed[:])
	Wipe(kp.Public[:])
}

// PublicHex returns the uppercase hex encoding of the public key.
func (kp *KeyPair) PublicHex() string {
	return hexUpper(kp.Public[:])
}

// SeedHex returns the uppercase hex encoding of the private seed.
// Callers holding the result own sensitive material.
func (kp *KeyPair) SeedHex() string {
	return hexUpper(kp.Seed[:])
}

// Fingerprint returns a short SHA3-256 fingerprint of a public key,
// for log output.
func Fingerprint(pub []byte) string {
	sum := sha3.Sum256(pub)
	return hexUpper(sum[:8])
}

// VerifyDerivation reports whether pub is the Ed25519 public key
// derived from seed.
func VerifyDerivation(seed, pub []byte) bool {
	if len(seed) != SeedLen || len(pub) != PublicLen {
		return false
	}
	priv := ed25519.NewKeyFromSeed(seed)
	ok := bytes.Equal(priv[SeedLen:], pub)
	Wipe(priv)
	return ok
}

func hexUpper(b []byte) string {
	dst := make([]byte, hex.EncodedLen(len(b)))
	hex.Encode(dst, b)
	for i, c := range dst {
		if c >= 'a' && c <= 'f' {
			dst[i] = c - 'a' + 'A'
		}
	}
	return string(dst)
}
