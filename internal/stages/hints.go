package stages

import (
	"context"

	"github.com/playperu/proxima/internal/hints"
)

// RequestHint asks for the hint of the stage on screen. Hints for other
// stages and hints after completion are refused.
func (c *Controller) RequestHint(ctx context.Context, stage int) (hints.State, error) {
	if !c.hints.Has(stage) {
		return hints.NotRequested, hints.ErrNoHint
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finished(ctx) {
		return c.hints.State(stage), ErrGameCompleted
	}
	if stage != c.stage {
		return c.hints.State(stage), ErrWrongStage
	}
	return c.hints.Request(stage)
}

// ConfirmHint charges and reveals the pending hint while its stage is
// still the one on screen.
func (c *Controller) ConfirmHint(ctx context.Context) (hints.Reveal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finished(ctx) {
		c.hints.Cancel()
		return hints.Reveal{}, ErrGameCompleted
	}
	if pending, ok := c.hints.PendingStage(); ok && pending != c.stage {
		c.hints.Cancel()
		return hints.Reveal{}, ErrWrongStage
	}
	return c.hints.Confirm(ctx)
}

// finished reports whether the score is final. An admin jump leaves the
// result screen but not the completed record. Caller holds mu.
func (c *Controller) finished(ctx context.Context) bool {
	return c.result || c.store.Load(ctx).IsCompleted
}
