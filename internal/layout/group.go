// Package layout derives per-anchor views of the live toasts.
// Everything here is a pure function of its inputs.
package layout

import "github.com/jmylchreest/toastui/internal/model"

// Groups maps each anchor to the toasts docked there, in insertion order.
// Anchors without toasts are absent.
type Groups map[model.Position][]model.Record

// Group partitions records by position, preserving their relative order.
// The input slice is not modified.
func Group(records []model.Record) Groups {
	groups := make(Groups)
	for _, rec := range records {
		pos := rec.Position
		if pos == "" {
			pos = model.DefaultPosition
		}
		groups[pos] = append(groups[pos], rec)
	}
	return groups
}

// Anchors returns the non-empty anchors in canonical order.
func (g Groups) Anchors() []model.Position {
	var anchors []model.Position
	for _, pos := range model.Positions() {
		if len(g[pos]) > 0 {
			anchors = append(anchors, pos)
		}
	}
	return anchors
}

// Len returns the total number of toasts across all anchors.
func (g Groups) Len() int {
	n := 0
	for _, recs := range g {
		n += len(recs)
	}
	return n
}

// ContainerWidth returns the width an anchor container needs: the widest
// requested toast width in the group, never less than fallback.
func ContainerWidth(records []model.Record, fallback int) int {
	width := fallback
	for _, rec := range records {
		if rec.Styles != nil && rec.Styles.Width > width {
			width = rec.Styles.Width
		}
	}
	return width
}

// StackOffsets returns the distance of each stacked toast from its anchor edge.
// heights are the rendered heights in stacking order (first toast nearest the
// edge for top anchors). For bottom anchors the newest toast sits on the edge,
// so offsets are assigned from the end of the slice.
func StackOffsets(heights []int, gap, offsetY int, bottom bool) []int {
	offsets := make([]int, len(heights))
	y := offsetY

	if !bottom {
		for i, h := range heights {
			offsets[i] = y
			y += h + gap
		}
		return offsets
	}

	for i := len(heights) - 1; i >= 0; i-- {
		offsets[i] = y
		y += heights[i] + gap
	}
	return offsets
}
