package mdpress

// workerDriver is the process-level contract behind a worker: one live
// headless browser owning a fixed set of surface drivers. close tears the
// process down.
type workerDriver interface {
	surfaces() []surfaceDriver
	close() error
}

// workerFactory creates a worker driver. The production factory launches a
// headless browser (newBrowserFactory); tests inject fakes.
type workerFactory func() (workerDriver, error)

// worker is the pool's bookkeeping for one browser process. All fields
// except id and driver are guarded by the pool's mutex.
type worker struct {
	id       string
	driver   workerDriver
	surfaces []*Surface

	// condemned marks the worker retired; none of its surfaces are ever
	// re-leased.
	condemned bool

	// outstanding counts surfaces still leased at condemnation time. The
	// driver is closed when the last of them is released, so in-flight
	// conversions finish or fail on their own.
	outstanding int
}
