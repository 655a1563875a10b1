// Package clock implements the game timer. Elapsed time is derived from the
// wall clock, so late or dropped ticks never under-count.
package clock

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/playperu/proxima/internal/score"
	"github.com/playperu/proxima/internal/storage"
)

// Store is the slice of storage.Store the clock writes through.
type Store interface {
	Load(ctx context.Context) storage.GameState
	MarkStarted(ctx context.Context) storage.GameState
	SaveElapsed(ctx context.Context, seconds int) error
}

// Ticker delivers the one-second tick.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type stdTicker struct{ t *time.Ticker }

func (s stdTicker) C() <-chan time.Time { return s.t.C }
func (s stdTicker) Stop()               { s.t.Stop() }

func newStdTicker(d time.Duration) Ticker { return stdTicker{time.NewTicker(d)} }

type Clock struct {
	store     Store
	logger    *slog.Logger
	now       func() time.Time
	newTicker func(time.Duration) Ticker
	every     int
	onTick    func(elapsed int)

	mu      sync.Mutex
	running bool
	ref     time.Time
	elapsed int
	ticks   int
	gen     int
	stop    chan struct{}
}

type Option func(*Clock)

// WithNow sets the wall clock.
func WithNow(now func() time.Time) Option { return func(c *Clock) { c.now = now } }

// WithTicker sets the tick source.
func WithTicker(f func(time.Duration) Ticker) Option { return func(c *Clock) { c.newTicker = f } }

// WithCheckpointEvery sets how many ticks pass between checkpoints.
func WithCheckpointEvery(n int) Option {
	return func(c *Clock) {
		if n > 0 {
			c.every = n
		}
	}
}

// WithOnTick registers a callback receiving elapsed seconds after each tick.
func WithOnTick(f func(elapsed int)) Option { return func(c *Clock) { c.onTick = f } }

func New(store Store, logger *slog.Logger, opts ...Option) *Clock {
	c := &Clock{
		store:     store,
		logger:    logger,
		now:       time.Now,
		newTicker: newStdTicker,
		every:     10,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Start begins ticking from resume seconds. It is a no-op while running.
func (c *Clock) Start(ctx context.Context, resume int) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	if resume < 0 {
		resume = 0
	}
	c.elapsed = resume
	c.begin(ctx)
	c.mu.Unlock()

	c.store.MarkStarted(ctx)
}

// begin starts the tick loop from c.elapsed. Caller holds mu.
func (c *Clock) begin(ctx context.Context) {
	c.ref = c.now().Add(-time.Duration(c.elapsed) * time.Second)
	c.running = true
	c.ticks = 0
	c.gen++
	c.stop = make(chan struct{})

	t := c.newTicker(time.Second)
	go c.loop(context.WithoutCancel(ctx), t, c.stop, c.gen)
}

func (c *Clock) loop(ctx context.Context, t Ticker, stop <-chan struct{}, gen int) {
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C():
			c.tick(ctx, gen)
		}
	}
}

func (c *Clock) tick(ctx context.Context, gen int) {
	c.mu.Lock()
	if !c.running || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.ticks++
	c.elapsed = c.sinceRef()
	elapsed := c.elapsed
	if c.ticks%c.every == 0 {
		// Reset waits on mu, so it never interleaves with this write.
		c.checkpoint(ctx, elapsed)
	}
	onTick := c.onTick
	c.mu.Unlock()

	if onTick != nil {
		onTick(elapsed)
	}
}

// halt stops the tick loop and freezes elapsed. Caller holds mu.
func (c *Clock) halt() {
	if !c.running {
		return
	}
	c.elapsed = c.sinceRef()
	c.running = false
	c.gen++
	close(c.stop)
}

func (c *Clock) sinceRef() int {
	d := c.now().Sub(c.ref)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

// checkpoint persists elapsed. Caller holds mu.
func (c *Clock) checkpoint(ctx context.Context, elapsed int) {
	if err := c.store.SaveElapsed(ctx, elapsed); err != nil {
		c.logger.Warn("timer checkpoint failed", "elapsed", elapsed, "error", err)
	}
}

// Stop halts ticking, checkpoints, and returns elapsed seconds.
func (c *Clock) Stop(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.halt()
	c.checkpoint(ctx, c.elapsed)
	return c.elapsed
}

// Pause suspends ticking and checkpoints. Resume continues from the same count.
func (c *Clock) Pause(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.halt()
	c.checkpoint(ctx, c.elapsed)
}

func (c *Clock) Resume(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.begin(ctx)
}

// Reset stops the clock and zeroes the counter.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.halt()
	c.elapsed = 0
	c.ticks = 0
}

// Restore loads the last checkpoint into the counter without starting it.
func (c *Clock) Restore(ctx context.Context) bool {
	st := c.store.Load(ctx)
	if st.StartTimestamp == nil || st.ElapsedTime <= 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return false
	}
	c.elapsed = st.ElapsedTime
	return true
}

// Elapsed returns elapsed seconds.
func (c *Clock) Elapsed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return c.sinceRef()
	}
	return c.elapsed
}

// Formatted returns elapsed time as MM:SS.
func (c *Clock) Formatted() string {
	return score.FormatElapsed(c.Elapsed())
}

func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
