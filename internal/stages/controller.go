// Package stages drives the stage and phase state machine: which panel is
// visible, what gates each transition, and the final result.
package stages

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/playperu/proxima/internal/answers"
	"github.com/playperu/proxima/internal/catalog"
	"github.com/playperu/proxima/internal/clock"
	"github.com/playperu/proxima/internal/events"
	"github.com/playperu/proxima/internal/hints"
	"github.com/playperu/proxima/internal/score"
	"github.com/playperu/proxima/internal/storage"
)

const defaultTeamName = "익명 팀"

// View is what the player currently sees.
type View struct {
	Stage        int    `json:"stage"`
	Title        string `json:"title"`
	Phase        int    `json:"phase"`
	PhaseName    string `json:"phaseName,omitempty"`
	PhaseCount   int    `json:"phaseCount"`
	Result       bool   `json:"result"`
	AwaitingCode *int   `json:"awaitingCode,omitempty"`
	Pending      bool   `json:"pending"`
}

// Result is the final score card.
type Result struct {
	Team        string `json:"team"`
	Elapsed     int    `json:"elapsed"`
	Time        string `json:"time"`
	Hints       int    `json:"hints"`
	HintsText   string `json:"hintsText"`
	Penalty     int    `json:"penalty"`
	PenaltyText string `json:"penaltyText"`
	Score       int    `json:"score"`
	Completed   bool   `json:"completed"`
	CompletedAt *int64 `json:"completedAt,omitempty"`
}

type Deps struct {
	Catalog *catalog.Catalog
	Store   *storage.Store
	Clock   *clock.Clock
	Hints   *hints.Service
	Checker *answers.Checker
	Sink    events.Sink
	Logger  *slog.Logger
}

type Option func(*Controller)

// WithDelay sets the pause between a correct answer and the next stage.
func WithDelay(d time.Duration) Option { return func(c *Controller) { c.delay = d } }

// WithScheduler replaces time.AfterFunc for delayed transitions.
func WithScheduler(s Scheduler) Option { return func(c *Controller) { c.sched = s } }

type Controller struct {
	cat    *catalog.Catalog
	store  *storage.Store
	clock  *clock.Clock
	hints  *hints.Service
	check  *answers.Checker
	sink   events.Sink
	logger *slog.Logger
	sched  Scheduler
	delay  time.Duration

	mu       sync.Mutex
	stage    int
	phase    int
	result   bool
	awaiting int // -1 when no stage is waiting for its access code
	timer    Timer
	gen      int
}

func New(d Deps, opts ...Option) *Controller {
	c := &Controller{
		cat:      d.Catalog,
		store:    d.Store,
		clock:    d.Clock,
		hints:    d.Hints,
		check:    d.Checker,
		sink:     d.Sink,
		logger:   d.Logger,
		sched:    realScheduler{},
		delay:    2 * time.Second,
		awaiting: -1,
	}
	if c.sink == nil {
		c.sink = events.Discard
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// View returns the visible (stage, phase) pair and transition flags.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view()
}

func (c *Controller) view() View {
	v := View{
		Stage:   c.stage,
		Phase:   c.phase,
		Result:  c.result,
		Pending: c.timer != nil,
	}
	if s, ok := c.cat.Stage(c.stage); ok {
		v.Title = s.Title
		v.PhaseCount = len(s.Phases)
		if c.phase < len(s.Phases) {
			v.PhaseName = s.Phases[c.phase].Name
		}
	}
	if c.awaiting >= 0 {
		n := c.awaiting
		v.AwaitingCode = &n
	}
	return v
}

func (c *Controller) publishView() {
	v := c.view()
	e := events.New(events.TypeView, v.Stage)
	e.Phase = v.Phase
	e.Text = v.Title
	c.sink.Publish(e)
}

func (c *Controller) publishFeedback(stage int, kind, msg string) {
	e := events.New(events.TypeFeedback, stage)
	e.Kind = kind
	e.Text = msg
	c.sink.Publish(e)
}

// ShowStage makes stage n visible at its first phase and persists it.
func (c *Controller) ShowStage(ctx context.Context, n int) (View, error) {
	if _, ok := c.cat.Stage(n); !ok {
		return View{}, ErrInvalidStage
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showStage(ctx, n)
	return c.view(), nil
}

// showStage is the only path that changes the visible stage. Caller holds mu.
func (c *Controller) showStage(ctx context.Context, n int) {
	c.cancelPending()
	if n != c.stage {
		c.hints.Cancel()
	}
	c.stage = n
	c.phase = 0
	c.result = false
	c.awaiting = -1
	c.store.SetCurrentStage(ctx, n)
	c.logger.Info("stage shown", "stage", n)
	c.publishView()
}

// cancelPending drops any scheduled transition. Caller holds mu.
func (c *Controller) cancelPending() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
}

// schedule advances to target after the configured delay. Caller holds mu.
func (c *Controller) schedule(ctx context.Context, target int) {
	c.cancelPending()
	gen := c.gen
	ctx = context.WithoutCancel(ctx)
	c.timer = c.sched.AfterFunc(c.delay, func() { c.advance(ctx, gen, target) })
}

func (c *Controller) advance(ctx context.Context, gen, target int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.timer = nil

	s, _ := c.cat.Stage(target)
	if s.AccessCode == "" {
		c.showStage(ctx, target)
		return
	}
	c.awaiting = target
	c.logger.Info("access code required", "stage", target)
	c.sink.Publish(events.New(events.TypeAccessCodeRequired, target))
}

// guard refuses player actions the current state does not allow. Caller holds mu.
func (c *Controller) guard() error {
	switch {
	case c.result:
		return ErrGameCompleted
	case c.timer != nil:
		return ErrTransitionPending
	case c.awaiting >= 0:
		return ErrAwaitingCode
	}
	return nil
}

// Start records the team name, starts the clock and opens stage 1.
func (c *Controller) Start(ctx context.Context, team string) (View, error) {
	team = strings.TrimSpace(team)
	if team == "" {
		return View{}, missing("팀 이름을 입력해주세요.")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result {
		return c.view(), ErrGameCompleted
	}
	st, err := c.store.SetTeamName(ctx, team)
	if err != nil {
		return c.view(), err
	}
	if st.IsCompleted {
		return c.view(), ErrGameCompleted
	}

	c.clock.Start(ctx, st.ElapsedTime)
	c.logger.Info("game started", "team", team, "elapsed", st.ElapsedTime)
	c.showStage(ctx, 1)
	return c.view(), nil
}

// Home checkpoints the clock, returns to the intro and stops the clock.
// Progress other than the current stage is kept.
func (c *Controller) Home(ctx context.Context) View {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clock.Stop(ctx)
	c.showStage(ctx, 0)
	return c.view()
}

// PrevStage goes back to an earlier stage without any gate.
func (c *Controller) PrevStage(ctx context.Context, n int) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result {
		return c.view(), ErrGameCompleted
	}
	if n < 0 || n >= c.stage {
		return c.view(), ErrInvalidStage
	}
	c.showStage(ctx, n)
	return c.view(), nil
}

// PhaseMove is a forward phase transition request. Target nil means the
// next phase. Validate adds checks to the phase's own validation keys.
type PhaseMove struct {
	Target   *int
	Validate []string
	Fields   map[string]string
}

// NextPhase moves forward within the stage once every validation key
// passes. On failure the cursor stays where it is.
func (c *Controller) NextPhase(ctx context.Context, m PhaseMove) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.guard(); err != nil {
		return c.view(), err
	}

	s, _ := c.cat.Stage(c.stage)
	target := c.phase + 1
	if m.Target != nil {
		target = *m.Target
	}
	if target <= c.phase || target >= len(s.Phases) {
		return c.view(), ErrInvalidPhase
	}

	keys := append([]string(nil), s.Phases[c.phase].Validate...)
	for _, key := range m.Validate {
		if !c.knownKey(key) {
			return c.view(), ErrInvalidPhase
		}
		if !slices.Contains(keys, key) {
			keys = append(keys, key)
		}
	}

	var captures []phaseCapture
	for _, key := range keys {
		pc, err := c.validatePhase(key, m.Fields)
		if err != nil {
			var fb *Feedback
			if errors.As(err, &fb) {
				c.publishFeedback(c.stage, fb.Kind, fb.Message)
			}
			return c.view(), err
		}
		if pc.key != "" {
			captures = append(captures, pc)
		}
	}
	for _, pc := range captures {
		c.store.Capture(ctx, pc.key, pc.fields)
	}

	c.phase = target
	c.publishView()
	return c.view(), nil
}

// PrevPhase moves back within the stage. Target nil means the previous phase.
func (c *Controller) PrevPhase(target *int) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result {
		return c.view(), ErrGameCompleted
	}
	t := c.phase - 1
	if target != nil {
		t = *target
	}
	if t < 0 || t >= c.phase {
		return c.view(), ErrInvalidPhase
	}
	c.phase = t
	c.publishView()
	return c.view(), nil
}

// Unlock enters the stage waiting for its access code. Codes compare
// case-insensitively; the override code is also accepted.
func (c *Controller) Unlock(ctx context.Context, code string) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.awaiting < 0 {
		return c.view(), ErrNoPendingUnlock
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return c.view(), missing("접근 코드를 입력해주세요.")
	}

	target := c.awaiting
	s, _ := c.cat.Stage(target)
	if !strings.EqualFold(code, s.AccessCode) && !c.check.IsOverride(code) {
		c.logger.Info("access code rejected", "stage", target)
		return c.view(), denied("✗ 접근 코드가 올바르지 않습니다.")
	}
	c.showStage(ctx, target)
	return c.view(), nil
}

// AdminJump shows any stage when given the override code.
func (c *Controller) AdminJump(ctx context.Context, code string, n int) (View, error) {
	if !c.check.IsOverride(code) {
		return c.View(), denied("관리자 코드가 올바르지 않습니다.")
	}
	if _, ok := c.cat.Stage(n); !ok {
		return c.View(), ErrInvalidStage
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger.Warn("admin jump", "from", c.stage, "to", n)
	c.showStage(ctx, n)
	return c.view(), nil
}

// Complete finishes the game from the final stage.
func (c *Controller) Complete(ctx context.Context) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result {
		return c.resultCard(ctx), ErrGameCompleted
	}
	if c.stage != c.cat.Last() {
		return Result{}, ErrWrongStage
	}
	if c.timer != nil {
		return Result{}, ErrTransitionPending
	}

	elapsed := c.clock.Stop(ctx)
	if _, err := c.store.Complete(ctx, elapsed); err != nil {
		if errors.Is(err, storage.ErrAlreadyCompleted) {
			return c.resultCard(ctx), ErrGameCompleted
		}
		return Result{}, err
	}
	c.logger.Info("game completed", "elapsed", elapsed)
	return c.showResult(ctx), nil
}

// ShowResult switches to the result screen. It is safe to call repeatedly.
func (c *Controller) ShowResult(ctx context.Context) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.showResult(ctx)
}

func (c *Controller) showResult(ctx context.Context) Result {
	c.cancelPending()
	c.hints.Cancel()
	c.awaiting = -1
	c.result = true
	r := c.resultCard(ctx)

	e := events.New(events.TypeResult, c.stage)
	e.Text = score.FormatElapsed(r.Elapsed)
	c.sink.Publish(e)
	return r
}

// Result computes the score card from the persisted record without
// changing what is shown.
func (c *Controller) Result(ctx context.Context) Result {
	return c.resultCard(ctx)
}

func (c *Controller) resultCard(ctx context.Context) Result {
	st := c.store.Load(ctx)
	team := st.TeamName
	if team == "" {
		team = defaultTeamName
	}
	penalty := score.Penalty(st.HintCount)
	return Result{
		Team:        team,
		Elapsed:     st.ElapsedTime,
		Time:        score.FormatElapsed(st.ElapsedTime),
		Hints:       st.HintCount,
		HintsText:   score.FormatHints(st.HintCount),
		Penalty:     penalty,
		PenaltyText: score.FormatPenalty(penalty),
		Score:       score.Final(st.ElapsedTime, st.HintCount),
		Completed:   st.IsCompleted,
		CompletedAt: st.CompletedTimestamp,
	}
}

// Restore rebuilds the in-memory position from the persisted record.
func (c *Controller) Restore(ctx context.Context) View {
	st := c.store.Load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if st.IsCompleted {
		c.clock.Restore(ctx)
		c.stage = st.CurrentStage
		c.showResult(ctx)
		return c.view()
	}
	if _, ok := c.cat.Stage(st.CurrentStage); ok && st.CurrentStage > 0 && st.TeamName != "" {
		if st.StartTimestamp != nil {
			c.clock.Start(ctx, st.ElapsedTime)
		}
		c.logger.Info("progress restored", "stage", st.CurrentStage, "team", st.TeamName)
		c.showStage(ctx, st.CurrentStage)
		return c.view()
	}
	c.showStage(ctx, 0)
	return c.view()
}

// Reset cancels pending transitions, wipes the record, the clock and the
// hints, and returns to the intro.
func (c *Controller) Reset(ctx context.Context) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelPending()
	c.clock.Reset()
	c.store.Reset(ctx)
	c.hints.Reset()
	c.logger.Info("game reset")
	c.sink.Publish(events.New(events.TypeReset, 0))
	c.showStage(ctx, 0)
	return c.view()
}
