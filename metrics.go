package mdpress

import "time"

// Metrics records per-phase timings and byte counts for one conversion.
// Every phase that was reached is populated, on success and failure alike,
// so callers never need to guess where a conversion stopped.
type Metrics struct {
	InputBytes  int           // raw markdown size
	OutputBytes int           // PDF size, 0 unless extraction completed
	Deadline    time.Duration // tier deadline applied to the attempt
	AcquireWait time.Duration // time spent waiting for a surface
	ContentSet  time.Duration // time to load the document into the surface
	RenderWait  time.Duration // time until the readiness signal fired
	Extract     time.Duration // time to produce the PDF
	Total       time.Duration // wall clock for the whole Convert call
}
