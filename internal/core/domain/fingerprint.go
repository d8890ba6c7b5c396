package domain

import (
	"encoding/hex"

	"go.trai.ch/zerr"
)

// Fingerprint is the invalidation key of a build model.
// Two invocations with the same fingerprint must be able to produce the same model.
type Fingerprint string

// String returns the hex representation.
func (f Fingerprint) String() string {
	return string(f)
}

// Short returns an abbreviated form for log output.
func (f Fingerprint) Short() string {
	if len(f) <= 12 {
		return string(f)
	}
	return string(f[:12])
}

// Validate checks that the fingerprint is a non-empty hex string and can serve as a storage key.
func (f Fingerprint) Validate() error {
	if f == "" {
		return zerr.With(ErrInvalidFingerprint, "reason", "empty")
	}
	if _, err := hex.DecodeString(string(f)); err != nil {
		return zerr.With(zerr.With(ErrInvalidFingerprint, "reason", "not hex"), "fingerprint", string(f))
	}
	return nil
}
