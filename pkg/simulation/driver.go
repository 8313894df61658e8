package simulation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tochemey/goakt/v3/log"
	"go.uber.org/atomic"
)

var ErrDriverBusy = errors.New("driver is still stopping a previous run")

const DefaultStopGrace = 300 * time.Millisecond

// RenderFunc is called after every driver step with exclusive access to the flock.
type RenderFunc func(f *Flock)

// Driver runs a flock continuously on its own goroutine.
// Between ticks, Step and Do give other goroutines safe access to the flock.
type Driver struct {
	flock *Flock
	mu    sync.Mutex // held for every tick and every Do

	iterationsPerStep int
	render            RenderFunc
	stopGrace         time.Duration
	stepInterval      time.Duration
	logger            log.Logger

	life     sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	stopping bool

	running    atomic.Bool
	iterations atomic.Uint64
}

type DriverOption func(*Driver)

// WithIterationsPerStep sets how many ticks run between two renders.
func WithIterationsPerStep(n int) DriverOption {
	return func(d *Driver) {
		d.iterationsPerStep = max(n, 1)
	}
}

func WithRender(render RenderFunc) DriverOption {
	return func(d *Driver) {
		d.render = render
	}
}

// WithStopGrace bounds how long Stop waits for the loop to exit.
func WithStopGrace(grace time.Duration) DriverOption {
	return func(d *Driver) {
		d.stopGrace = grace
	}
}

// WithStepInterval makes the loop pause between steps.
func WithStepInterval(interval time.Duration) DriverOption {
	return func(d *Driver) {
		d.stepInterval = interval
	}
}

func WithDriverLogger(logger log.Logger) DriverOption {
	return func(d *Driver) {
		d.logger = logger
	}
}

func NewDriver(f *Flock, opts ...DriverOption) *Driver {
	d := &Driver{
		flock:             f,
		iterationsPerStep: 1,
		stopGrace:         DefaultStopGrace,
		logger:            log.DiscardLogger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches the run loop. It does nothing when the loop is already running and
// returns ErrDriverBusy while a loop from a timed out Stop has not exited yet.
func (d *Driver) Start(ctx context.Context) error {
	d.life.Lock()
	defer d.life.Unlock()

	if d.done != nil {
		select {
		case <-d.done:
		default:
			if d.stopping {
				return ErrDriverBusy
			}
			return nil
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})
	d.stopping = false
	d.running.Store(true)
	go d.loop(ctx, d.done)
	return nil
}

func (d *Driver) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer d.running.Store(false)

	d.logger.Infof("flock driver started: %d agents, %d ticks per step", d.flock.Len(), d.iterationsPerStep)

	var pace <-chan time.Time
	if d.stepInterval > 0 {
		ticker := time.NewTicker(d.stepInterval)
		defer ticker.Stop()
		pace = ticker.C
	}

	for {
		if ctx.Err() != nil {
			d.logger.Infof("flock driver stopped after %d ticks", d.iterations.Load())
			return
		}
		if err := d.step(); err != nil {
			d.logger.Errorf("flock driver halted: %v", err)
			return
		}
		if pace != nil {
			select {
			case <-ctx.Done():
			case <-pace:
			}
		}
	}
}

func (d *Driver) step() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := 0; i < d.iterationsPerStep; i++ {
		if err := d.flock.Tick(); err != nil {
			return err
		}
		d.iterations.Inc()
	}
	if d.render != nil {
		d.render(d.flock)
	}
	return nil
}

// Stop cancels the loop and waits up to the stop grace for it to exit.
// It reports whether the loop has exited; a false result leaves the loop to finish on its own.
func (d *Driver) Stop() bool {
	d.life.Lock()
	cancel, done := d.cancel, d.done
	if done != nil {
		d.stopping = true
	}
	d.life.Unlock()

	if done == nil {
		return true
	}
	cancel()

	timer := time.NewTimer(d.stopGrace)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		d.logger.Warnf("flock driver did not stop within %s", d.stopGrace)
		return false
	}
}

// Step runs n ticks synchronously, interleaved with the run loop if it is active.
func (d *Driver) Step(n int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := 0; i < n; i++ {
		if err := d.flock.Tick(); err != nil {
			return err
		}
		d.iterations.Inc()
	}
	return nil
}

// Do runs fn between two ticks with exclusive access to the flock.
func (d *Driver) Do(fn func(f *Flock) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn(d.flock)
}

func (d *Driver) Running() bool {
	return d.running.Load()
}

// Iterations returns the number of ticks run through this driver.
func (d *Driver) Iterations() uint64 {
	return d.iterations.Load()
}
