package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes keep digests of different value kinds apart.
const (
	DomainSnapshot = "hwhard/snapshot/v1"
	DomainTrace    = "hwhard/trace/v1"
)

// Sum returns hex(SHA256(domain || 0x00 || canonical(v))).
func Sum(domain string, v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", fmt.Errorf("digest %s: %w", domain, err)
	}
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Digest hashes a snapshot (or anything shaped like one) under DomainSnapshot.
func Digest(snapshot any) (string, error) {
	return Sum(DomainSnapshot, snapshot)
}

// MustDigest is Digest for values known to be finite. Tests only.
func MustDigest(snapshot any) string {
	d, err := Digest(snapshot)
	if err != nil {
		panic(err)
	}
	return d
}
