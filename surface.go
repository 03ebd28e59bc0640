package mdpress

import "context"

// surfaceState tracks the lease lifecycle of a surface.
// free -> leased only via Pool.Acquire, leased -> free only via
// Pool.Release, any state -> condemned when the owning worker is condemned.
// Condemned is terminal; a condemned surface is never re-leased.
type surfaceState int

const (
	surfaceFree surfaceState = iota
	surfaceLeased
	surfaceCondemned
)

// surfaceDriver is the rendering contract behind a surface. The production
// implementation drives one browser page (browser.go); tests inject fakes.
type surfaceDriver interface {
	// setContent loads a complete HTML document into the surface.
	setContent(ctx context.Context, html string) error

	// waitReady blocks until the document signals readiness or ctx ends.
	waitReady(ctx context.Context) error

	// printPDF produces the paginated output for the current document.
	printPDF(ctx context.Context, spec printSpec) ([]byte, error)
}

// Surface is a leasable handle to one browser page. At most one conversion
// holds a surface at a time; every lease transition goes through the
// owning Pool.
type Surface struct {
	id     string
	owner  *worker
	driver surfaceDriver

	// state is guarded by the owning pool's mutex.
	state surfaceState
}

// ID returns the surface identifier.
func (s *Surface) ID() string { return s.id }

// WorkerID returns the identifier of the worker that owns this surface.
func (s *Surface) WorkerID() string { return s.owner.id }

func (s *Surface) setContent(ctx context.Context, html string) error {
	return s.driver.setContent(ctx, html)
}

func (s *Surface) waitReady(ctx context.Context) error {
	return s.driver.waitReady(ctx)
}

func (s *Surface) printPDF(ctx context.Context, spec printSpec) ([]byte, error) {
	return s.driver.printPDF(ctx, spec)
}
