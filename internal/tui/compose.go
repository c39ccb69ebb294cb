package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/toastui/internal/layout"
	"github.com/jmylchreest/toastui/internal/model"
)

// renderedToast is a toast block ready for stacking.
type renderedToast struct {
	block string
	frame Frame
}

// stackBlock stacks toast blocks vertically inside a region of the given
// height, using layout.StackOffsets for the distance from the anchor edge.
// Blocks that do not fit are dropped from the far end of the stack.
func stackBlock(toasts []renderedToast, width, height, gap, offsetY int, bottom bool) string {
	if height <= 0 || width <= 0 {
		return ""
	}

	heights := make([]int, len(toasts))
	for i, t := range toasts {
		heights[i] = lipgloss.Height(t.block) + t.frame.Drop
	}
	offsets := layout.StackOffsets(heights, gap, offsetY, bottom)

	// Lines are padded to the cell width by the caller's alignment.
	canvas := make([]string, height)

	for i, t := range toasts {
		lines := strings.Split(t.block, "\n")
		var top int
		if bottom {
			top = height - offsets[i] - heights[i]
		} else {
			top = offsets[i] + t.frame.Drop
		}
		if top < 0 || top+len(lines) > height {
			continue
		}
		for j, line := range lines {
			canvas[top+j] = line
		}
	}

	return strings.Join(canvas, "\n")
}

// anchorAlign maps an anchor to its horizontal alignment within a cell.
func anchorAlign(pos model.Position) lipgloss.Position {
	switch pos {
	case model.PositionTopLeft, model.PositionBottomLeft:
		return lipgloss.Left
	case model.PositionTopCenter, model.PositionBottomCenter:
		return lipgloss.Center
	default:
		return lipgloss.Right
	}
}

// shiftStyle displaces a toast toward the screen center by frame.Shift cells
// and keeps offsetX cells between it and the screen edge.
func shiftStyle(pos model.Position, frame Frame, offsetX int) lipgloss.Style {
	style := lipgloss.NewStyle()
	switch anchorAlign(pos) {
	case lipgloss.Left:
		return style.MarginLeft(offsetX + frame.Shift)
	case lipgloss.Right:
		return style.MarginRight(offsetX + frame.Shift)
	default:
		return style
	}
}

// screen describes the terminal area toasts are drawn on.
type screen struct {
	width, height int
	toastWidth    int
	gap           int
	offsetX       int
	offsetY       int
}

// cellWidths splits the screen width into left, center and right columns.
func (s screen) cellWidths() [3]int {
	third := s.width / 3
	return [3]int{third, s.width - 2*third, third}
}

// compose places every anchor's stack on the screen. The screen is split in
// a 3x2 grid of cells, one per anchor.
func compose(s screen, cells map[model.Position][]renderedToast) string {
	if s.width <= 0 || s.height <= 0 {
		return ""
	}

	topHeight := s.height / 2
	bottomHeight := s.height - topHeight
	widths := s.cellWidths()

	row := func(positions [3]model.Position, h int, bottom bool) string {
		blocks := make([]string, 3)
		for i, pos := range positions {
			stack := stackBlock(cells[pos], widths[i], h, s.gap, s.offsetY, bottom)
			blocks[i] = lipgloss.PlaceHorizontal(widths[i], anchorAlign(pos), stack)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
	}

	top := row([3]model.Position{model.PositionTopLeft, model.PositionTopCenter, model.PositionTopRight}, topHeight, false)
	bottom := row([3]model.Position{model.PositionBottomLeft, model.PositionBottomCenter, model.PositionBottomRight}, bottomHeight, true)
	return lipgloss.JoinVertical(lipgloss.Left, top, bottom)
}
