// Package hints tracks hint requests per stage and the score penalty they
// carry.
package hints

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/playperu/proxima/internal/events"
	"github.com/playperu/proxima/internal/score"
	"github.com/playperu/proxima/internal/storage"
)

var (
	ErrNoHint     = errors.New("no hint for this stage")
	ErrNotPending = errors.New("no hint awaiting confirmation")
)

type State int

const (
	NotRequested State = iota
	Pending
	Revealed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Revealed:
		return "revealed"
	default:
		return "not_requested"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "pending":
		*s = Pending
	case "revealed":
		*s = Revealed
	case "not_requested":
		*s = NotRequested
	default:
		return fmt.Errorf("unknown hint state %q", b)
	}
	return nil
}

// Counter is the slice of storage.Store holding the hint counter.
type Counter interface {
	Load(ctx context.Context) storage.GameState
	IncrementHints(ctx context.Context) int
}

// Reveal is the outcome of a confirmed hint.
type Reveal struct {
	Stage     int    `json:"stage"`
	Text      string `json:"text"`
	HintCount int    `json:"hintCount"`
	Penalty   int    `json:"penalty"`
	Bonus     bool   `json:"bonus"`
}

type Service struct {
	store  Counter
	texts  map[int]string
	sink   events.Sink
	logger *slog.Logger

	mu         sync.Mutex
	states     map[int]State
	pending    int
	hasPending bool
	bonusShown bool
}

func New(store Counter, texts map[int]string, sink events.Sink, logger *slog.Logger) *Service {
	if sink == nil {
		sink = events.Discard
	}
	return &Service{
		store:  store,
		texts:  texts,
		sink:   sink,
		logger: logger,
		states: make(map[int]State),
	}
}

// Has reports whether stage has a hint.
func (s *Service) Has(stage int) bool {
	_, ok := s.texts[stage]
	return ok
}

// Request asks for stage's hint. Nothing is charged until Confirm. A hint
// that is already revealed stays revealed.
func (s *Service) Request(stage int) (State, error) {
	if _, ok := s.texts[stage]; !ok {
		return NotRequested, ErrNoHint
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.states[stage] == Revealed {
		return Revealed, nil
	}
	if s.hasPending && s.pending != stage {
		s.states[s.pending] = NotRequested
	}
	s.pending = stage
	s.hasPending = true
	s.states[stage] = Pending
	return Pending, nil
}

// Confirm charges the pending hint exactly once and reveals it.
func (s *Service) Confirm(ctx context.Context) (Reveal, error) {
	s.mu.Lock()
	if !s.hasPending {
		s.mu.Unlock()
		return Reveal{}, ErrNotPending
	}
	stage := s.pending
	s.hasPending = false
	s.states[stage] = Revealed

	count := s.store.IncrementHints(ctx)
	penalty := score.Penalty(count)
	bonus := penalty >= score.BonusThreshold
	first := bonus && !s.bonusShown
	if bonus {
		s.bonusShown = true
	}
	s.mu.Unlock()

	s.logger.Info("hint revealed", "stage", stage, "hint_count", count, "penalty", penalty)

	r := Reveal{Stage: stage, Text: s.texts[stage], HintCount: count, Penalty: penalty, Bonus: bonus}

	e := events.New(events.TypeHint, stage)
	e.Text = r.Text
	s.sink.Publish(e)

	e = events.New(events.TypePenalty, stage)
	e.Text = score.FormatPenalty(penalty)
	s.sink.Publish(e)

	if bonus {
		e = events.New(events.TypeBonus, stage)
		e.First = first
		s.sink.Publish(e)
	}
	return r, nil
}

// Cancel withdraws the pending request without charge.
func (s *Service) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasPending {
		return
	}
	s.states[s.pending] = NotRequested
	s.hasPending = false
}

// Show returns a revealed hint again. It never charges.
func (s *Service) Show(stage int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.states[stage] != Revealed {
		return "", false
	}
	return s.texts[stage], true
}

// State reports where stage's hint is in its lifecycle.
func (s *Service) State(stage int) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[stage]
}

// PendingStage returns the stage awaiting confirmation, if any.
func (s *Service) PendingStage() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending, s.hasPending
}

// Penalty is the current penalty from the persisted counter.
func (s *Service) Penalty(ctx context.Context) int {
	return score.Penalty(s.store.Load(ctx).HintCount)
}

// Reset forgets every request and reveal.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = make(map[int]State)
	s.hasPending = false
	s.pending = 0
	s.bonusShown = false
}
