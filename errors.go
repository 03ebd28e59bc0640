package mdpress

import "errors"

// Sentinel errors for conversion and pool operations.
var (
	// Validation errors. These are returned before any pool interaction
	// and are never retryable: the caller must fix the input.
	ErrEmptyContent    = errors.New("document content cannot be empty")
	ErrPayloadTooLarge = errors.New("document exceeds maximum payload size")

	// Pool errors. ErrAcquireTimeout is retryable from the caller's side;
	// the pipeline itself never retries.
	ErrAcquireTimeout = errors.New("timed out waiting for a render surface")
	ErrPoolClosed     = errors.New("render pool is closed")

	// Render errors. ErrRenderTimeout means the tier deadline elapsed while
	// a surface was leased; ErrRenderFailed covers worker crashes and
	// extraction failures alike.
	ErrRenderTimeout = errors.New("render did not complete within the deadline")
	ErrRenderFailed  = errors.New("render failed")
	ErrInternal      = errors.New("internal error")

	// Worker launch errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")

	// Page settings validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")

	// Watermark validation errors.
	ErrInvalidWatermarkColor   = errors.New("invalid watermark color")
	ErrInvalidWatermarkOpacity = errors.New("invalid watermark opacity")

	// TOC validation errors.
	ErrInvalidTOCDepth = errors.New("invalid TOC depth")
)

// surfaceError tags a failed surface operation with its scope. Worker-scoped
// failures indicate the owning browser process is unusable and must be
// condemned; content-scoped failures leave the worker in service.
type surfaceError struct {
	err         error
	workerFault bool
}

func (e *surfaceError) Error() string {
	if e.workerFault {
		return "render worker failure: " + e.err.Error()
	}
	return "render surface failure: " + e.err.Error()
}

func (e *surfaceError) Unwrap() error { return e.err }

// workerFailure wraps err as worker-scoped.
func workerFailure(err error) error {
	return &surfaceError{err: err, workerFault: true}
}

// contentFailure wraps err as content-scoped.
func contentFailure(err error) error {
	return &surfaceError{err: err, workerFault: false}
}

// isWorkerFault reports whether err carries a worker-scoped tag anywhere in
// its chain. Untagged errors are treated as content-scoped.
func isWorkerFault(err error) bool {
	var se *surfaceError
	return errors.As(err, &se) && se.workerFault
}
