// Package canonicalize provides RFC 8785 (JSON Canonicalization Scheme)
// serialization for deterministic fingerprints of plan, snapshot, and event
// state, using gowebpki/jcs for the transform.
package canonicalize

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// Marshal returns the RFC 8785 canonical JSON representation of v: v is
// marshaled with the standard encoder first (so struct tags apply), then
// transformed into canonical form (sorted keys, fixed number formatting).
func Marshal(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonicalize: marshal: %w", err)
	}
	canon, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize: jcs transform: %w", err)
	}
	return canon, nil
}

// Hash returns the SHA-256 hex digest of the canonical JSON representation
// of v.
func Hash(v interface{}) (string, error) {
	canon, err := Marshal(v)
	if err != nil {
		return "", err
	}
	return HashBytes(canon), nil
}

// HashBytes returns the SHA-256 hex digest of raw bytes; Hash applies it to
// the canonical JSON form.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
