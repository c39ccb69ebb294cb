package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastui/internal/history"
	"github.com/jmylchreest/toastui/internal/model"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func sample() []history.Entry {
	return []history.Entry{
		{ID: "1", Type: model.TypeError, Position: model.PositionTopRight, Message: "Disk full",
			CreatedAt: now.Add(-35 * time.Minute), DismissedAt: now.Add(-30 * time.Minute), LifetimeMS: 300000},
		{ID: "2", Type: model.TypeSuccess, Position: model.PositionBottomLeft, Message: "Saved",
			CreatedAt: now.Add(-2*time.Hour - 3*time.Second), DismissedAt: now.Add(-2 * time.Hour), LifetimeMS: 3000},
		{ID: "3", Type: model.TypeError, Position: model.PositionBottomLeft, Message: "Upload failed",
			CreatedAt: now.Add(-3*24*time.Hour - 5*time.Second), DismissedAt: now.Add(-3 * 24 * time.Hour), LifetimeMS: 5000},
	}
}

func ids(entries []history.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		opts FilterOptions
		want []string
	}{
		{"no filters", FilterOptions{}, []string{"1", "2", "3"}},
		{"by type", FilterOptions{Type: model.TypeError}, []string{"1", "3"}},
		{"by position", FilterOptions{Position: model.PositionBottomLeft}, []string{"2", "3"}},
		{"since", FilterOptions{Since: time.Hour}, []string{"1"}},
		{"since and type", FilterOptions{Since: 4 * 24 * time.Hour, Type: model.TypeSuccess}, []string{"2"}},
		{"limit", FilterOptions{Limit: 2}, []string{"1", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(sample(), tt.opts, now)))
		})
	}

	assert.Empty(t, Filter(nil, FilterOptions{}, now))
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"", 0, false},
		{"0", 0, false},
		{"48h", 48 * time.Hour, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"2w", 14 * 24 * time.Hour, false},
		{"90s", 90 * time.Second, false},
		{"xd", 0, true},
		{"bogus", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		expr string
		want []string
	}{
		{"", []string{"1", "2", "3"}},
		{"type=error", []string{"1", "3"}},
		{"type!=error", []string{"2"}},
		{"message~FAIL", []string{"3"}},
		{"msg~=^(Disk|Saved)", []string{"1", "2"}},
		{"position=bottom-left,type=error", []string{"3"}},
		{"dismissed<1h", []string{"1"}},
		{"dismissed>1d", []string{"3"}},
		{"created<=3h", []string{"1", "2"}},
		{"lifetime>4s", []string{"1", "3"}},
		{"lifetime<=3s", []string{"2"}},
		{"id=2", []string{"2"}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			expr, err := ParseFilter(tt.expr, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(FilterWithExpr(sample(), expr)))
		})
	}
}

func TestParseFilter_Errors(t *testing.T) {
	for _, expr := range []string{
		"nooperator",
		"color=red",
		"message~=(",
		"dismissed<soon",
		"lifetime>long",
	} {
		t.Run(expr, func(t *testing.T) {
			_, err := ParseFilter(expr, now)
			assert.Error(t, err)
		})
	}
}

func TestFilterWithExpr_Nil(t *testing.T) {
	assert.Len(t, FilterWithExpr(sample(), nil), 3)
}
