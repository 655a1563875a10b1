// Package storage owns the persisted game record. Every mutation is a full
// load-mutate-save cycle under one lock, and reads fail open to defaults.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/playperu/proxima/internal/kv"
)

const DefaultKey = "proxima_rescue_data"

var (
	ErrTeamNameLocked   = errors.New("team name already set")
	ErrAlreadyCompleted = errors.New("game already completed")
	ErrUnknownField     = errors.New("unknown field")
)

// Store reads and writes the GameState record under a single key.
type Store struct {
	mu     sync.Mutex
	kv     kv.Store
	key    string
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Store)

// WithKey overrides the record key.
func WithKey(key string) Option { return func(s *Store) { s.key = key } }

// WithNow sets the wall clock used for timestamps.
func WithNow(now func() time.Time) Option { return func(s *Store) { s.now = now } }

func New(backend kv.Store, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		kv:     backend,
		key:    DefaultKey,
		logger: logger,
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load returns the persisted record, or defaults when it is absent,
// unreadable, or malformed.
func (s *Store) Load(ctx context.Context) GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) GameState {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, kv.ErrNotFound) {
		return Defaults()
	}
	if err != nil {
		s.logger.Error("storage load failed", "key", s.key, "error", err)
		return Defaults()
	}

	var st GameState
	if err := json.Unmarshal(data, &st); err != nil {
		s.logger.Error("storage record malformed", "key", s.key, "error", err)
		return Defaults()
	}
	if !st.valid() {
		s.logger.Error("storage record has unexpected shape", "key", s.key)
		return Defaults()
	}
	return st
}

// Save overwrites the record with st.
func (s *Store) Save(ctx context.Context, st GameState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, st)
}

func (s *Store) save(ctx context.Context, st GameState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding game state: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		s.logger.Error("storage save failed", "key", s.key, "error", err)
		return fmt.Errorf("saving game state: %w", err)
	}
	return nil
}

// Update applies fn to the current record and saves the result. The
// returned state reflects fn even if the write failed.
func (s *Store) Update(ctx context.Context, fn func(*GameState)) GameState {
	st, _ := s.modify(ctx, func(st *GameState) error {
		fn(st)
		return nil
	})
	return st
}

// modify is the single read-modify-write path. An error from fn aborts
// without saving.
func (s *Store) modify(ctx context.Context, fn func(*GameState) error) (GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.load(ctx)
	if err := fn(&st); err != nil {
		return st, err
	}
	if err := s.save(ctx, st); err != nil {
		return st, err
	}
	return st, nil
}

// Set updates one field by its JSON name.
func (s *Store) Set(ctx context.Context, field string, value any) (GameState, error) {
	return s.modify(ctx, func(st *GameState) error {
		raw, err := json.Marshal(st)
		if err != nil {
			return err
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return err
		}
		if _, ok := fields[field]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, field)
		}
		v, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", field, err)
		}
		fields[field] = v

		raw, err = json.Marshal(fields)
		if err != nil {
			return err
		}
		var next GameState
		if err := json.Unmarshal(raw, &next); err != nil {
			return fmt.Errorf("setting %s: %w", field, err)
		}
		if !next.valid() {
			return fmt.Errorf("setting %s: value out of range", field)
		}
		*st = next
		return nil
	})
}

// Reset deletes the record and returns defaults.
func (s *Store) Reset(ctx context.Context) GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, s.key); err != nil {
		s.logger.Error("storage reset failed", "key", s.key, "error", err)
	}
	return Defaults()
}

// HasData reports whether a record exists.
func (s *Store) HasData(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.kv.Get(ctx, s.key)
	return err == nil
}

func (s *Store) SetCurrentStage(ctx context.Context, n int) GameState {
	return s.Update(ctx, func(st *GameState) { st.CurrentStage = n })
}

// MarkStarted records the start time unless one is already set.
func (s *Store) MarkStarted(ctx context.Context) GameState {
	return s.Update(ctx, func(st *GameState) {
		if st.StartTimestamp == nil {
			ms := s.now().UnixMilli()
			st.StartTimestamp = &ms
		}
	})
}

// SaveElapsed checkpoints elapsed seconds. It satisfies clock.Checkpointer.
func (s *Store) SaveElapsed(ctx context.Context, seconds int) error {
	_, err := s.modify(ctx, func(st *GameState) error {
		st.ElapsedTime = seconds
		return nil
	})
	return err
}

// IncrementHints adds one to the hint counter and returns the new total.
func (s *Store) IncrementHints(ctx context.Context) int {
	return s.Update(ctx, func(st *GameState) { st.HintCount++ }).HintCount
}

// SetTeamName stores name. Once a name is set it can only change via Reset.
func (s *Store) SetTeamName(ctx context.Context, name string) (GameState, error) {
	name = strings.TrimSpace(name)
	return s.modify(ctx, func(st *GameState) error {
		if st.TeamName != "" && st.TeamName != name {
			return ErrTeamNameLocked
		}
		st.TeamName = name
		return nil
	})
}

// Capture merges fields into the capture stored under key.
func (s *Store) Capture(ctx context.Context, key string, fields Capture) GameState {
	return s.Update(ctx, func(st *GameState) {
		if st.StageData == nil {
			st.StageData = map[string]Capture{}
		}
		c := st.StageData[key]
		if c == nil {
			c = Capture{}
		}
		for f, v := range fields {
			c[f] = v
		}
		st.StageData[key] = c
	})
}

// Complete marks the game finished with the final elapsed seconds.
func (s *Store) Complete(ctx context.Context, elapsed int) (GameState, error) {
	return s.modify(ctx, func(st *GameState) error {
		if st.IsCompleted {
			return ErrAlreadyCompleted
		}
		ms := s.now().UnixMilli()
		st.IsCompleted = true
		st.CompletedTimestamp = &ms
		st.ElapsedTime = elapsed
		return nil
	})
}
