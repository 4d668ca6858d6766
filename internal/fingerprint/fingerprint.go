// Package fingerprint derives a stable content hash of a normalized
// availability calendar, used to suppress repeat notifications.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"slotwatch/internal/availability"
)

// Fingerprint is a hex SHA-256 digest. The zero value means "unset".
type Fingerprint string

// Of hashes the canonical JSON form of n. encoding/json writes map keys
// sorted, so two calendars with the same content hash equal no matter how
// they were built.
func Of(n availability.Normalized) (Fingerprint, error) {
	if n == nil {
		n = availability.Normalized{}
	}
	b, err := json.Marshal(n)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	sum := sha256.Sum256(b)
	return Fingerprint(hex.EncodeToString(sum[:])), nil
}

// IsDuplicate reports whether fp was already delivered.
func IsDuplicate(fp, last Fingerprint) bool {
	return last != "" && fp == last
}

func (f Fingerprint) IsZero() bool { return f == "" }

// Short returns a 12 char prefix for log lines.
func (f Fingerprint) Short() string {
	if len(f) <= 12 {
		return string(f)
	}
	return string(f[:12])
}

func (f Fingerprint) String() string { return string(f) }
