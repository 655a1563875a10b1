package hints

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/playperu/proxima/internal/catalog"
	"github.com/playperu/proxima/internal/events"
	"github.com/playperu/proxima/internal/kv"
	"github.com/playperu/proxima/internal/storage"
)

func newTestService(t *testing.T) (*Service, *storage.Store, *events.Recorder) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.New(kv.NewMemory(), logger)
	rec := &events.Recorder{}
	return New(store, catalog.Default().Hints(), rec, logger), store, rec
}

func TestConfirmIncrementsOnce(t *testing.T) {
	ctx := context.Background()

	for stage := 1; stage <= 4; stage++ {
		s, store, _ := newTestService(t)

		if st, err := s.Request(stage); err != nil || st != Pending {
			t.Fatalf("stage %d: Request() = %v, %v", stage, st, err)
		}
		if got := store.Load(ctx).HintCount; got != 0 {
			t.Fatalf("stage %d: request charged a hint (count %d)", stage, got)
		}

		r, err := s.Confirm(ctx)
		if err != nil {
			t.Fatalf("stage %d: Confirm: %v", stage, err)
		}
		if r.HintCount != 1 || r.Penalty != 5 || r.Text == "" {
			t.Fatalf("stage %d: reveal = %+v", stage, r)
		}

		for i := 0; i < 3; i++ {
			if _, ok := s.Show(stage); !ok {
				t.Fatalf("stage %d: Show() not revealed", stage)
			}
		}
		if st, _ := s.Request(stage); st != Revealed {
			t.Fatalf("stage %d: re-request state = %v", stage, st)
		}
		if _, err := s.Confirm(ctx); !errors.Is(err, ErrNotPending) {
			t.Fatalf("stage %d: second Confirm err = %v", stage, err)
		}
		if got := store.Load(ctx).HintCount; got != 1 {
			t.Fatalf("stage %d: hint count = %d, want 1", stage, got)
		}
	}
}

func TestCancel(t *testing.T) {
	s, store, _ := newTestService(t)
	ctx := context.Background()

	s.Request(2)
	s.Cancel()

	if st := s.State(2); st != NotRequested {
		t.Fatalf("state after cancel = %v", st)
	}
	if _, err := s.Confirm(ctx); !errors.Is(err, ErrNotPending) {
		t.Fatalf("Confirm after cancel err = %v", err)
	}
	if got := store.Load(ctx).HintCount; got != 0 {
		t.Fatalf("cancel charged: %d", got)
	}
	if _, ok := s.Show(2); ok {
		t.Fatal("cancelled hint is visible")
	}
}

func TestRequestReplacesPending(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	s.Request(1)
	s.Request(3)
	if st := s.State(1); st != NotRequested {
		t.Fatalf("replaced request state = %v", st)
	}

	r, err := s.Confirm(ctx)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if r.Stage != 3 {
		t.Fatalf("revealed stage %d, want 3", r.Stage)
	}
}

func TestNoHint(t *testing.T) {
	s, _, _ := newTestService(t)
	if _, err := s.Request(0); !errors.Is(err, ErrNoHint) {
		t.Fatalf("Request(0) err = %v", err)
	}
}

func TestBonusNotification(t *testing.T) {
	s, store, rec := newTestService(t)
	ctx := context.Background()

	// Five earlier hints from a previous visit leave the penalty at 25.
	for i := 0; i < 5; i++ {
		store.IncrementHints(ctx)
	}

	s.Request(1)
	r, err := s.Confirm(ctx)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if r.Penalty != 30 || !r.Bonus {
		t.Fatalf("reveal = %+v, want penalty 30 with bonus", r)
	}

	s.Request(2)
	if _, err := s.Confirm(ctx); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	bonuses := rec.OfType(events.TypeBonus)
	if len(bonuses) != 2 {
		t.Fatalf("bonus events = %d, want 2", len(bonuses))
	}
	if !bonuses[0].First || bonuses[1].First {
		t.Fatalf("first flags = %v, %v", bonuses[0].First, bonuses[1].First)
	}
	if got := store.Load(ctx).HintCount; got != 7 {
		t.Fatalf("hint count = %d, want 7", got)
	}

	penalties := rec.OfType(events.TypePenalty)
	if got := penalties[len(penalties)-1].Text; got != "-35점" {
		t.Fatalf("penalty text = %q", got)
	}
	if got := s.Penalty(ctx); got != 35 {
		t.Fatalf("Penalty() = %d", got)
	}
}

func TestReset(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	s.Request(1)
	s.Confirm(ctx)
	s.Request(2)
	s.Reset()

	if s.State(1) != NotRequested || s.State(2) != NotRequested {
		t.Fatal("states survive reset")
	}
	if _, ok := s.PendingStage(); ok {
		t.Fatal("pending survives reset")
	}
}
