// Package ids provides the kernel's identifier and clock primitives: monotonic
// step ids scoped to a plan, random prefixed ids for everything else, and the
// ISO-8601 timestamp format used throughout the Plan Store.
package ids

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StepIDSource is implemented by anything that can mint plan-local step ids.
// planstore wraps its Plan in a small adapter that satisfies it; kept as an
// interface so the minting logic can be unit tested against a bare counter.
type StepIDSource interface {
	NextStepOrdinal() int
	SetNextStepOrdinal(int)
	HasStep(id string) bool
}

// MintStepID returns "s<ordinal>" and guarantees the id does not collide with
// any step already present in the source, advancing the ordinal counter past
// any collision the way an externally-inserted id might cause.
func MintStepID(src StepIDSource) string {
	for {
		ordinal := src.NextStepOrdinal()
		src.SetNextStepOrdinal(ordinal + 1)
		id := fmt.Sprintf("s%d", ordinal)
		if !src.HasStep(id) {
			return id
		}
	}
}

// RandomID returns prefix + 16 hex characters derived from a random UUID.
func RandomID(prefix string) string {
	raw := uuid.New()
	return prefix + hex.EncodeToString(raw[:8])
}

// NowISO8601 returns the current UTC time at second precision in the form
// YYYY-MM-DDTHH:MM:SSZ.
func NowISO8601() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05Z")
}

// ParseISO8601 parses a timestamp produced by NowISO8601.
func ParseISO8601(s string) (time.Time, error) {
	return time.Parse("2006-01-02T15:04:05Z", s)
}
