package reorder

import (
	"context"
	"slices"
)

// PersistFunc stores a complete ordering.
type PersistFunc func(ctx context.Context, orderedIDs []string) error

// Session applies moves optimistically and keeps the last committed order so
// a failed persist can be rolled back.
type Session struct {
	committed []string
	pending   []string
}

func NewSession(orderedIDs []string) *Session {
	return &Session{
		committed: slices.Clone(orderedIDs),
		pending:   slices.Clone(orderedIDs),
	}
}

// Move rewrites the pending order immediately.
func (s *Session) Move(from, to int) error {
	next, err := Move(s.pending, from, to)
	if err != nil {
		return err
	}
	s.pending = next
	return nil
}

// MoveID moves the element id to the index currently held by over.
func (s *Session) MoveID(id, over string) error {
	from := slices.Index(s.pending, id)
	to := slices.Index(s.pending, over)
	if from < 0 || to < 0 {
		return ErrIndexOutOfRange
	}
	return s.Move(from, to)
}

func (s *Session) Pending() []string   { return slices.Clone(s.pending) }
func (s *Session) Committed() []string { return slices.Clone(s.committed) }

// Dirty reports whether there are uncommitted moves.
func (s *Session) Dirty() bool {
	return !slices.Equal(s.pending, s.committed)
}

// Commit persists the pending order. On failure the pending order reverts to
// the last committed snapshot and the error is returned.
func (s *Session) Commit(ctx context.Context, persist PersistFunc) error {
	if !s.Dirty() {
		return nil
	}
	if err := persist(ctx, slices.Clone(s.pending)); err != nil {
		s.pending = slices.Clone(s.committed)
		return err
	}
	s.committed = slices.Clone(s.pending)
	return nil
}
