package mdpress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
)

// fakeSurfaceDriver is an in-memory surfaceDriver. The zero value renders
// successfully and instantly.
type fakeSurfaceDriver struct {
	mu            sync.Mutex
	setContentErr error
	waitReadyErr  error
	printErr      error
	printPanic    bool
	waitDelay     time.Duration
	pdf           []byte
	renders       int
	lastHTML      string
	lastSpec      printSpec
}

func (s *fakeSurfaceDriver) setContent(_ context.Context, html string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastHTML = html
	return s.setContentErr
}

func (s *fakeSurfaceDriver) waitReady(ctx context.Context) error {
	s.mu.Lock()
	delay, err := s.waitDelay, s.waitReadyErr
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (s *fakeSurfaceDriver) printPDF(_ context.Context, spec printSpec) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.printPanic {
		panic("print exploded")
	}
	s.lastSpec = spec
	s.renders++
	if s.printErr != nil {
		return nil, s.printErr
	}
	if s.pdf != nil {
		return s.pdf, nil
	}
	return []byte("%PDF-1.4\nfake\n%%EOF"), nil
}

func (s *fakeSurfaceDriver) html() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastHTML
}

func (s *fakeSurfaceDriver) spec() printSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSpec
}

func (s *fakeSurfaceDriver) setPrintErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.printErr = err
}

// fakeWorkerDriver groups fake surfaces and records close.
type fakeWorkerDriver struct {
	pages  []*fakeSurfaceDriver
	mu     sync.Mutex
	closed bool
}

func (d *fakeWorkerDriver) surfaces() []surfaceDriver {
	out := make([]surfaceDriver, len(d.pages))
	for i, p := range d.pages {
		out[i] = p
	}
	return out
}

func (d *fakeWorkerDriver) close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *fakeWorkerDriver) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// fakeFleet builds fake worker drivers and records every launch attempt.
type fakeFleet struct {
	perWorker int

	mu         sync.Mutex
	launchErr  error
	attempts   int
	drivers    []*fakeWorkerDriver
	newSurface func() *fakeSurfaceDriver // nil = inert surfaces
}

func (f *fakeFleet) factory() workerFactory {
	return func() (workerDriver, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.attempts++
		if f.launchErr != nil {
			return nil, f.launchErr
		}
		d := &fakeWorkerDriver{}
		for i := 0; i < f.perWorker; i++ {
			var s *fakeSurfaceDriver
			if f.newSurface != nil {
				s = f.newSurface()
			} else {
				s = &fakeSurfaceDriver{}
			}
			d.pages = append(d.pages, s)
		}
		f.drivers = append(f.drivers, d)
		return d, nil
	}
}

func (f *fakeFleet) launched() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.drivers)
}

func (f *fakeFleet) tried() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

func (f *fakeFleet) driver(i int) *fakeWorkerDriver {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.drivers[i]
}

func (f *fakeFleet) setLaunchErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.launchErr = err
}

// newTestPool builds a pool backed by fake drivers.
func newTestPool(t *testing.T, workers, perWorker int) (*Pool, *fakeFleet) {
	t.Helper()

	fleet := &fakeFleet{perWorker: perWorker}
	log, _ := test.NewNullLogger()
	pool := NewPool(
		PoolConfig{Workers: workers, SurfacesPerWorker: perWorker},
		withWorkerFactory(fleet.factory()),
		WithPoolLogger(log),
	)
	return pool, fleet
}

// waitFor polls cond until it holds or the deadline elapses.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
