package cpf

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// fingerprintKeySize is the key length used when no key is configured.
const fingerprintKeySize = 32

// Fingerprinter derives a stable, non-reversible token from a CPF so log lines
// for the same taxpayer can be correlated. The CPF space is small enough to
// brute force, so the digest is keyed.
type Fingerprinter struct {
	key []byte
}

// NewFingerprinter creates a Fingerprinter. An empty key is replaced by a
// random one, which makes fingerprints stable only for the process lifetime.
func NewFingerprinter(key string) (*Fingerprinter, error) {
	k := []byte(key)
	if len(k) == 0 {
		k = make([]byte, fingerprintKeySize)
		if _, err := rand.Read(k); err != nil {
			return nil, fmt.Errorf("failed to generate fingerprint key: %w", err)
		}
	}
	if len(k) > blake2b.Size {
		return nil, fmt.Errorf("fingerprint key longer than %d bytes", blake2b.Size)
	}

	// Probe once so Fingerprint never has to handle a key error.
	if _, err := blake2b.New256(k); err != nil {
		return nil, fmt.Errorf("invalid fingerprint key: %w", err)
	}

	return &Fingerprinter{key: k}, nil
}

// Fingerprint returns 16 hex chars of the keyed BLAKE2b-256 digest of s.
func (f *Fingerprinter) Fingerprint(s string) string {
	h, _ := blake2b.New256(f.key)
	h.Write([]byte(s))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:8])
}
