package reorder

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hkunkun/hkun-links/pkg/core/domain"
)

func readBack(positions []domain.Position) []string {
	sorted := append([]domain.Position(nil), positions...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].SortOrder < sorted[j].SortOrder })
	ids := make([]string, len(sorted))
	for i, p := range sorted {
		ids[i] = p.ID
	}
	return ids
}

func TestAssignReproducesOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := make([]string, 12)
	for i := range base {
		base[i] = fmt.Sprintf("id-%02d", i)
	}

	for round := 0; round < 200; round++ {
		perm := append([]string(nil), base...)
		rng.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })

		positions := Assign(perm)
		if diff := cmp.Diff(perm, readBack(positions)); diff != "" {
			t.Fatalf("round %d: order mismatch (-want +got):\n%s", round, diff)
		}
		for i, p := range positions {
			assert.Equal(t, i, p.SortOrder)
		}
	}
}

func TestDiffIsIdempotent(t *testing.T) {
	current := map[string]int{"a": 0, "b": 1, "c": 2}
	next := Assign([]string{"c", "a", "b"})

	changed := Diff(current, next)
	assert.Len(t, changed, 3)

	applied := map[string]int{}
	for _, p := range next {
		applied[p.ID] = p.SortOrder
	}
	assert.Empty(t, Diff(applied, Assign([]string{"c", "a", "b"})))
}

func TestDiffOnlyChanged(t *testing.T) {
	current := map[string]int{"a": 0, "b": 1, "c": 2, "d": 3}
	changed := Diff(current, Assign([]string{"a", "c", "b", "d"}))
	assert.Equal(t, []domain.Position{{ID: "c", SortOrder: 1}, {ID: "b", SortOrder: 2}}, changed)
}

func TestIsPermutation(t *testing.T) {
	members := []string{"a", "b", "c"}
	tests := []struct {
		name    string
		ordered []string
		want    bool
	}{
		{"same order", []string{"a", "b", "c"}, true},
		{"shuffled", []string{"c", "a", "b"}, true},
		{"missing member", []string{"a", "b"}, false},
		{"unknown id", []string{"a", "b", "x"}, false},
		{"duplicate", []string{"a", "a", "b"}, false},
		{"extra", []string{"a", "b", "c", "d"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPermutation(members, tt.ordered))
		})
	}
}

func TestMove(t *testing.T) {
	items := []string{"a", "b", "c", "d"}

	got, err := Move(items, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a", "d"}, got)

	got, err = Move(items, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "a", "b", "c"}, got)

	got, err = Move(items, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, items, got)

	assert.Equal(t, []string{"a", "b", "c", "d"}, items, "input must not be mutated")

	_, err = Move(items, 4, 0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = Move(items, 0, -1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestSessionCommit(t *testing.T) {
	s := NewSession([]string{"a", "b", "c"})
	require.NoError(t, s.Move(2, 0))
	assert.True(t, s.Dirty())
	assert.Equal(t, []string{"c", "a", "b"}, s.Pending())

	var persisted []string
	err := s.Commit(context.Background(), func(_ context.Context, ids []string) error {
		persisted = ids
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, persisted)
	assert.Equal(t, []string{"c", "a", "b"}, s.Committed())
	assert.False(t, s.Dirty())
}

func TestSessionRollsBackOnFailure(t *testing.T) {
	s := NewSession([]string{"a", "b", "c"})
	require.NoError(t, s.MoveID("a", "c"))
	assert.Equal(t, []string{"b", "c", "a"}, s.Pending())

	boom := errors.New("storage down")
	err := s.Commit(context.Background(), func(context.Context, []string) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a", "b", "c"}, s.Pending())
	assert.False(t, s.Dirty())
}

func TestSessionCommitWithoutChangesSkipsPersist(t *testing.T) {
	s := NewSession([]string{"a"})
	called := false
	require.NoError(t, s.Commit(context.Background(), func(context.Context, []string) error {
		called = true
		return nil
	}))
	assert.False(t, called)
	assert.ErrorIs(t, s.MoveID("a", "zz"), ErrIndexOutOfRange)
}
