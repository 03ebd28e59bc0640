package mdpress

import "time"

// Payload size limits in bytes, measured on the raw markdown before any
// processing.
const (
	// MaxPayloadBytes is the hard cap; larger payloads are rejected.
	MaxPayloadBytes = 5 << 20

	// SoftPayloadBytes is the warning threshold; larger payloads proceed
	// but are logged.
	SoftPayloadBytes = 1 << 20
)

// Timeout tier boundaries in bytes. Intervals are closed-open: a payload of
// exactly MediumTierBytes is medium, exactly LargeTierBytes is large.
const (
	MediumTierBytes = 100_000
	LargeTierBytes  = 500_000
)

// Tier deadlines. One deadline bounds the whole conversion attempt after
// validation: content-set, readiness wait, and extraction share it. Callers
// may rely on these values for client-side budgeting.
const (
	SmallTierTimeout  = 10 * time.Second
	MediumTierTimeout = 30 * time.Second
	LargeTierTimeout  = 60 * time.Second
)

// TimeoutFor returns the conversion deadline for a payload of n bytes.
// Every byte count maps to exactly one tier.
func TimeoutFor(n int) time.Duration {
	switch {
	case n < MediumTierBytes:
		return SmallTierTimeout
	case n < LargeTierBytes:
		return MediumTierTimeout
	default:
		return LargeTierTimeout
	}
}
