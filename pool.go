package mdpress

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Pool sizing constants.
const (
	// MinWorkers ensures at least one browser process.
	MinWorkers = 1

	// MaxWorkers caps browser processes to limit memory (~200MB each).
	MaxWorkers = 8

	// DefaultSurfacesPerWorker is the page count per browser when the
	// config leaves it zero.
	DefaultSurfacesPerWorker = 4

	// MaxSurfacesPerWorker caps pages per browser; beyond this, renders
	// contend on the process rather than parallelize.
	MaxSurfacesPerWorker = 16

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// PoolConfig sizes a Pool. Total surface capacity is
// Workers * SurfacesPerWorker and is fixed for the pool's lifetime;
// backpressure under load comes from the wait queue, never from growing
// the pool.
type PoolConfig struct {
	Workers           int // browser processes, clamped to [MinWorkers, MaxWorkers]
	SurfacesPerWorker int // pages per browser, 0 = DefaultSurfacesPerWorker
}

// Pool owns a bounded set of render workers and serves surface leases.
// Workers are created lazily up to the configured count. When every
// surface is leased, Acquire callers queue strictly FIFO.
type Pool struct {
	maxWorkers int
	perWorker  int
	factory    workerFactory
	launch     launchConfig
	log        logrus.FieldLogger

	mu       sync.Mutex
	live     []*worker
	spawning int
	free     []*Surface
	waiters  []*waiter
	leased   int
	closed   bool
}

// waiter is one queued Acquire call. ready is buffered so a grant never
// blocks the granting goroutine; the channel is closed when the pool shuts
// down before a grant.
type waiter struct {
	ready chan *Surface
}

// grant pairs a popped waiter with the surface it is being handed. Sends
// happen outside the pool lock.
type grant struct {
	to      *waiter
	surface *Surface
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithPoolLogger sets the logger for pool lifecycle events.
func WithPoolLogger(log logrus.FieldLogger) PoolOption {
	return func(p *Pool) {
		if log != nil {
			p.log = log
		}
	}
}

// WithBrowserBin sets the browser executable for production workers.
// Empty means auto-detect (or the MDPRESS_BROWSER_BIN environment
// variable).
func WithBrowserBin(path string) PoolOption {
	return func(p *Pool) {
		p.launch.bin = path
	}
}

// WithNoSandbox disables the browser sandbox. Required in most container
// environments running as root.
func WithNoSandbox(v bool) PoolOption {
	return func(p *Pool) {
		p.launch.noSandbox = v
	}
}

// withWorkerFactory substitutes the worker driver factory. Test seam.
func withWorkerFactory(f workerFactory) PoolOption {
	return func(p *Pool) {
		p.factory = f
	}
}

// NewPool creates a pool sized by cfg, backed by headless browser workers.
// No browser is launched until the first Acquire needs one.
func NewPool(cfg PoolConfig, opts ...PoolOption) *Pool {
	if cfg.Workers < MinWorkers {
		cfg.Workers = MinWorkers
	}
	if cfg.Workers > MaxWorkers {
		cfg.Workers = MaxWorkers
	}
	if cfg.SurfacesPerWorker <= 0 {
		cfg.SurfacesPerWorker = DefaultSurfacesPerWorker
	}
	if cfg.SurfacesPerWorker > MaxSurfacesPerWorker {
		cfg.SurfacesPerWorker = MaxSurfacesPerWorker
	}

	p := &Pool{
		maxWorkers: cfg.Workers,
		perWorker:  cfg.SurfacesPerWorker,
		launch:     defaultLaunchConfig(),
		log:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.factory == nil {
		p.factory = newBrowserFactory(p.launch, p.perWorker, p.log)
	}
	return p
}

// Capacity returns the maximum number of concurrently leased surfaces.
func (p *Pool) Capacity() int {
	return p.maxWorkers * p.perWorker
}

// Acquire leases a surface. A free surface is granted immediately;
// otherwise the caller queues FIFO and suspends until a surface frees, ctx
// expires (ErrAcquireTimeout), or the pool closes (ErrPoolClosed).
//
// No retroactive grant: a surface handed to a caller whose deadline has
// already elapsed is put back into circulation, and that caller still gets
// ErrAcquireTimeout.
func (p *Pool) Acquire(ctx context.Context) (*Surface, error) {
	if err := ctx.Err(); err != nil {
		return nil, acquireErr(err)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if s := p.popFreeLocked(); s != nil {
		p.mu.Unlock()
		return s, nil
	}
	wt := &waiter{ready: make(chan *Surface, 1)}
	p.waiters = append(p.waiters, wt)
	spawn := len(p.live)+p.spawning < p.maxWorkers
	if spawn {
		p.spawning++
	}
	p.mu.Unlock()

	if spawn {
		go p.spawnWorker()
	}

	select {
	case s := <-wt.ready:
		if s == nil {
			return nil, ErrPoolClosed
		}
		return s, nil
	case <-ctx.Done():
		p.mu.Lock()
		removed := p.removeWaiterLocked(wt)
		p.mu.Unlock()
		if !removed {
			// A grant raced the deadline. The grant loses: put the
			// surface back so the next waiter can have it.
			if s := <-wt.ready; s != nil {
				p.Release(s)
			}
		}
		return nil, acquireErr(ctx.Err())
	}
}

// acquireErr maps a context error to the acquire taxonomy. Deadline expiry
// is ErrAcquireTimeout; caller cancellation passes through unchanged.
func acquireErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrAcquireTimeout, err)
	}
	return err
}

// Release returns a leased surface to the pool and hands it to the
// longest-waiting Acquire, if any. Releasing a free or condemned surface
// is a no-op, so defensive double-release in failure paths is harmless.
func (p *Pool) Release(s *Surface) {
	if s == nil {
		return
	}

	p.mu.Lock()
	if s.state != surfaceLeased {
		p.mu.Unlock()
		return
	}
	p.leased--

	w := s.owner
	if w.condemned {
		s.state = surfaceCondemned
		w.outstanding--
		last := w.outstanding == 0
		p.mu.Unlock()
		if last {
			// Last in-flight lease returned; the browser can go now.
			go p.closeWorker(w)
		}
		return
	}
	if p.closed {
		s.state = surfaceCondemned
		p.mu.Unlock()
		return
	}
	if len(p.waiters) > 0 {
		wt := p.waiters[0]
		p.waiters = p.waiters[1:]
		p.leased++
		p.mu.Unlock()
		wt.ready <- s
		return
	}
	s.state = surfaceFree
	p.free = append(p.free, s)
	p.mu.Unlock()
}

// MarkUnhealthy condemns the worker that owns s. Every surface of that
// worker is retired and dropped from the free list, and a replacement
// worker is spawned to restore capacity. Surfaces still leased to other
// conversions are not force-aborted; the browser process is torn down
// once the last of them is released.
func (p *Pool) MarkUnhealthy(s *Surface) {
	if s == nil {
		return
	}

	p.mu.Lock()
	w := s.owner
	if p.closed || w.condemned {
		p.mu.Unlock()
		return
	}
	w.condemned = true
	for _, sf := range w.surfaces {
		switch sf.state {
		case surfaceFree:
			sf.state = surfaceCondemned
			p.dropFreeLocked(sf)
		case surfaceLeased:
			w.outstanding++
		}
	}
	p.removeWorkerLocked(w)
	p.spawning++
	outstanding := w.outstanding
	p.mu.Unlock()

	p.log.WithFields(logrus.Fields{
		"worker":      w.id,
		"outstanding": outstanding,
	}).Warn("render worker condemned, spawning replacement")

	if outstanding == 0 {
		go p.closeWorker(w)
	}
	go p.spawnWorker()
}

// Close shuts the pool down: queued Acquire calls fail with ErrPoolClosed,
// all workers are torn down, and subsequent Acquire calls fail
// immediately. Close is idempotent; worker shutdown errors are joined.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	waiters := p.waiters
	p.waiters = nil
	workers := p.live
	p.live = nil
	for _, s := range p.free {
		s.state = surfaceCondemned
	}
	p.free = nil
	p.mu.Unlock()

	for _, wt := range waiters {
		close(wt.ready)
	}

	var errs []error
	for _, w := range workers {
		if err := w.driver.close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PoolStats is a point-in-time snapshot of pool occupancy.
type PoolStats struct {
	Workers  int // live workers
	Spawning int // workers being launched
	Free     int // surfaces ready to lease
	Leased   int // surfaces held by conversions
	Waiting  int // queued Acquire calls
}

// Stats returns a snapshot of current pool occupancy.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{
		Workers:  len(p.live),
		Spawning: p.spawning,
		Free:     len(p.free),
		Leased:   p.leased,
		Waiting:  len(p.waiters),
	}
}

// spawnWorker launches one worker through the factory and distributes its
// surfaces, queued callers first in arrival order. Launch failures are
// logged; queued callers then run out their own deadlines, and the next
// Acquire attempt triggers a fresh spawn.
func (p *Pool) spawnWorker() {
	drv, err := p.factory()

	p.mu.Lock()
	p.spawning--
	if err != nil {
		p.mu.Unlock()
		p.log.WithError(err).Error("render worker launch failed")
		return
	}
	if p.closed {
		p.mu.Unlock()
		if cerr := drv.close(); cerr != nil {
			p.log.WithError(cerr).Warn("closing worker launched during shutdown")
		}
		return
	}

	w := &worker{id: uuid.NewString(), driver: drv}
	for _, sd := range drv.surfaces() {
		w.surfaces = append(w.surfaces, &Surface{
			id:     uuid.NewString(),
			owner:  w,
			driver: sd,
			state:  surfaceFree,
		})
	}
	p.live = append(p.live, w)

	var grants []grant
	for _, s := range w.surfaces {
		if len(p.waiters) == 0 {
			p.free = append(p.free, s)
			continue
		}
		wt := p.waiters[0]
		p.waiters = p.waiters[1:]
		s.state = surfaceLeased
		p.leased++
		grants = append(grants, grant{to: wt, surface: s})
	}
	p.mu.Unlock()

	for _, g := range grants {
		g.to.ready <- g.surface
	}

	p.log.WithFields(logrus.Fields{
		"worker":   w.id,
		"surfaces": len(w.surfaces),
	}).Info("render worker started")
}

func (p *Pool) closeWorker(w *worker) {
	if err := w.driver.close(); err != nil {
		p.log.WithFields(logrus.Fields{"worker": w.id}).
			WithError(err).Warn("render worker close failed")
	}
}

// popFreeLocked takes a free surface and marks it leased.
func (p *Pool) popFreeLocked() *Surface {
	if len(p.free) == 0 {
		return nil
	}
	s := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	s.state = surfaceLeased
	p.leased++
	return s
}

// dropFreeLocked removes s from the free list.
func (p *Pool) dropFreeLocked(s *Surface) {
	for i, f := range p.free {
		if f == s {
			p.free = append(p.free[:i], p.free[i+1:]...)
			return
		}
	}
}

// removeWaiterLocked dequeues wt, reporting whether it was still queued.
// False means a grant already popped it.
func (p *Pool) removeWaiterLocked(wt *waiter) bool {
	for i, q := range p.waiters {
		if q == wt {
			p.waiters = append(p.waiters[:i], p.waiters[i+1:]...)
			return true
		}
	}
	return false
}

// removeWorkerLocked drops w from the live set.
func (p *Pool) removeWorkerLocked(w *worker) {
	for i, lw := range p.live {
		if lw == w {
			p.live = append(p.live[:i], p.live[i+1:]...)
			return
		}
	}
}

// ResolveWorkers determines the worker count.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by servers and CLIs.
func ResolveWorkers(workers int) int {
	if workers > 0 {
		return workers
	}

	// Auto-calculate based on GOMAXPROCS (adjusted by automaxprocs in containers)
	available := runtime.GOMAXPROCS(0)
	n := available / cpuDivisor

	if n < MinWorkers {
		return MinWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}
