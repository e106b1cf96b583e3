package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hkunkun/hkun-links/pkg/core/domain"
	"github.com/hkunkun/hkun-links/pkg/core/reorder"
)

func TestParseMove(t *testing.T) {
	from, to, err := parseMove("3:0")
	require.NoError(t, err)
	assert.Equal(t, 3, from)
	assert.Equal(t, 0, to)

	for _, bad := range []string{"3", "a:1", "1:b", ""} {
		_, _, err := parseMove(bad)
		assert.Error(t, err, bad)
	}
}

func TestApplyMoves(t *testing.T) {
	session := reorder.NewSession([]string{"a", "b", "c", "d"})
	require.NoError(t, applyMoves(session, []string{"3:0", "1:3"}))
	if diff := cmp.Diff([]string{"d", "b", "c", "a"}, session.Pending()); diff != "" {
		t.Errorf("pending order mismatch (-want +got):\n%s", diff)
	}

	err := applyMoves(session, []string{"0:9"})
	assert.ErrorIs(t, err, reorder.ErrIndexOutOfRange)
}

func TestRunSessionRollsBack(t *testing.T) {
	defer func(m []string) { moves = m }(moves)
	moves = []string{"0:1"}

	var out bytes.Buffer
	names := map[string]string{"x": "X", "y": "Y"}
	failing := func(ctx context.Context, ids []string) error { return errors.New("database is locked") }

	err := runSession(context.Background(), &out, []string{"x", "y"}, names, failing)
	require.Error(t, err)
	assert.Contains(t, out.String(), "order unchanged")
	assert.Contains(t, out.String(), "0\tx\tX")

	var saved []string
	out.Reset()
	ok := func(ctx context.Context, ids []string) error { saved = ids; return nil }
	require.NoError(t, runSession(context.Background(), &out, []string{"x", "y"}, names, ok))
	assert.Equal(t, []string{"y", "x"}, saved)
	assert.Contains(t, out.String(), "0\ty\tY")
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path, explicit, want string
	}{
		{"backup.yaml", "", "yaml"},
		{"backup.YML", "", "yaml"},
		{"backup.json", "", "json"},
		{"", "", "json"},
		{"backup.json", "yaml", "yaml"},
	}
	for _, tt := range tests {
		got, err := formatFor(tt.path, tt.explicit)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.path)
	}

	_, err := formatFor("x", "xml")
	assert.Error(t, err)
}

func TestExportEncodingRoundTrip(t *testing.T) {
	desc := "The Go site"
	data := &domain.Export{
		ExportedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Categories: []domain.Category{{ID: "c1", Name: "Go", Slug: "go", SortOrder: 0}},
		Links: []domain.Link{{
			ID: "l1", CategoryID: "c1", Title: "go.dev", URL: "https://go.dev",
			Description: &desc, Tags: []string{"lang"},
		}},
	}

	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, encodeExport(&buf, data, format))
			got, err := decodeExport(&buf, format)
			require.NoError(t, err)
			assert.True(t, data.ExportedAt.Equal(got.ExportedAt))
			assert.Equal(t, data.Categories[0].Slug, got.Categories[0].Slug)
			require.Len(t, got.Links, 1)
			assert.Equal(t, "The Go site", *got.Links[0].Description)
			assert.Equal(t, []string{"lang"}, got.Links[0].Tags)
		})
	}
}
