package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/toastui/internal/model"
)

// Animation windows.
const (
	EntryDuration = 400 * time.Millisecond
	closeGlyph    = "✕"
)

// palette holds the accent color of each toast type.
var palette = map[model.Type]lipgloss.Color{
	model.TypeDefault: lipgloss.Color("#4b5563"),
	model.TypeSuccess: lipgloss.Color("#16a34a"),
	model.TypeError:   lipgloss.Color("#dc2626"),
	model.TypeWarning: lipgloss.Color("#d97706"),
	model.TypeInfo:    lipgloss.Color("#2563eb"),
}

var (
	lightBackground = lipgloss.Color("#f9fafb")
	lightForeground = lipgloss.Color("#111827")
	coloredText     = lipgloss.Color("#ffffff")
	shadowColor     = lipgloss.Color("8")
)

// typeIcons are the glyphs shown when a toast sets no icon of its own.
var typeIcons = map[model.Type]string{
	model.TypeDefault: "●",
	model.TypeSuccess: "✔",
	model.TypeError:   "✖",
	model.TypeWarning: "⚠",
	model.TypeInfo:    "ℹ",
}

// namedIcons resolves icon identifiers. Anything else is used as a literal glyph.
var namedIcons = map[string]string{
	"check":   "✔",
	"cross":   "✖",
	"warning": "⚠",
	"info":    "ℹ",
	"dot":     "●",
	"star":    "★",
	"heart":   "♥",
	"arrow":   "➜",
	"spinner": "◌",
}

// accent returns the accent color for a toast type, falling back to the default type.
func accent(t model.Type) lipgloss.Color {
	if c, ok := palette[t]; ok {
		return c
	}
	return palette[model.TypeDefault]
}

// Icon returns the glyph to show for rec, or "" when icons are off.
func Icon(rec model.Record) string {
	if !rec.ShowIcon {
		return ""
	}
	if rec.Icon != "" {
		if glyph, ok := namedIcons[strings.ToLower(rec.Icon)]; ok {
			return glyph
		}
		return rec.Icon
	}
	if glyph, ok := typeIcons[rec.Type]; ok {
		return glyph
	}
	return typeIcons[model.TypeDefault]
}

func border(name string) (lipgloss.Border, bool) {
	switch strings.ToLower(name) {
	case "none":
		return lipgloss.Border{}, false
	case "normal":
		return lipgloss.NormalBorder(), true
	case "thick":
		return lipgloss.ThickBorder(), true
	case "double":
		return lipgloss.DoubleBorder(), true
	default:
		return lipgloss.RoundedBorder(), true
	}
}

// BoxStyle resolves the frame style of a toast: theme, type palette, gradient
// and the per-toast overrides, in that order of precedence.
func BoxStyle(rec model.Record) lipgloss.Style {
	color := accent(rec.Type)
	style := lipgloss.NewStyle().Padding(0, 1)

	if rec.Theme == model.ThemeColored {
		style = style.Background(color).Foreground(coloredText)
	} else {
		style = style.Background(lightBackground).Foreground(lightForeground)
	}

	b, hasBorder := border("")
	borderColor := lipgloss.TerminalColor(color)
	if rec.Gradient != nil && rec.Gradient.From != "" {
		borderColor = lipgloss.Color(rec.Gradient.From)
	}

	if s := rec.Styles; s != nil {
		if s.Background != "" {
			style = style.Background(lipgloss.Color(s.Background))
		}
		if s.Color != "" {
			style = style.Foreground(lipgloss.Color(s.Color))
		}
		if s.Border != "" {
			b, hasBorder = border(s.Border)
		}
		if s.BorderColor != "" {
			borderColor = lipgloss.Color(s.BorderColor)
		}
		if s.Bold {
			style = style.Bold(true)
		}
		if s.Italic {
			style = style.Italic(true)
		}
		if n := len(s.Padding); n > 0 && n <= 4 {
			style = style.Padding(s.Padding...)
		}
		if s.Height > 0 {
			style = style.Height(s.Height)
		}
	}

	if hasBorder {
		style = style.Border(b).BorderForeground(borderColor)
	}
	return style
}

// iconStyle colors the icon with the type accent unless overridden.
func iconStyle(rec model.Record, box lipgloss.Style) lipgloss.Style {
	style := lipgloss.NewStyle().Background(box.GetBackground())
	switch {
	case rec.Styles != nil && rec.Styles.IconColor != "":
		style = style.Foreground(lipgloss.Color(rec.Styles.IconColor))
	case rec.Theme == model.ThemeColored:
		style = style.Foreground(coloredText)
	default:
		style = style.Foreground(accent(rec.Type))
	}
	return style
}

// ToastWidth returns the outer width of a toast, clamped to limit.
func ToastWidth(rec model.Record, fallback, limit int) int {
	w := fallback
	if rec.Styles != nil && rec.Styles.Width > 0 {
		w = rec.Styles.Width
	}
	if limit > 0 && w > limit {
		w = limit
	}
	return w
}

// newBar builds the progress bar for a toast.
func newBar(rec model.Record, width int) progress.Model {
	opts := []progress.Option{progress.WithoutPercentage(), progress.WithWidth(width)}
	if rec.Gradient != nil && rec.Gradient.From != "" && rec.Gradient.To != "" {
		opts = append(opts, progress.WithGradient(rec.Gradient.From, rec.Gradient.To))
	} else {
		opts = append(opts, progress.WithSolidFill(string(accent(rec.Type))))
	}
	return progress.New(opts...)
}

// Frame is one animation frame of a toast.
type Frame struct {
	Shift int     // cells displaced toward the screen center
	Drop  int     // extra lines between the toast and its anchor edge
	Faint bool    // dimmed
	Scale float64 // fraction of the full width
}

var restFrame = Frame{Scale: 1}

// EntryFrame returns the frame of an entering toast elapsed after it appeared.
func EntryFrame(anim model.Animation, elapsed time.Duration, width int) Frame {
	if elapsed >= EntryDuration || elapsed < 0 {
		return restFrame
	}
	p := float64(elapsed) / float64(EntryDuration)

	switch anim {
	case model.AnimationFade:
		return Frame{Faint: p < 0.5, Scale: 1}
	case model.AnimationZoom:
		return Frame{Scale: 0.6 + 0.4*p}
	case model.AnimationBounce:
		switch {
		case p < 0.4:
			return Frame{Drop: 2, Scale: 1}
		case p < 0.7:
			return Frame{Scale: 1}
		case p < 0.85:
			return Frame{Drop: 1, Scale: 1}
		default:
			return restFrame
		}
	default: // slide
		return Frame{Shift: int(float64(width/2) * (1 - p)), Scale: 1}
	}
}

// ExitFrame returns the frame of an exiting toast elapsed after its exit began.
func ExitFrame(anim model.Animation, elapsed, exitDelay time.Duration, width int) Frame {
	p := 1.0
	if exitDelay > 0 && elapsed < exitDelay {
		p = max(float64(elapsed)/float64(exitDelay), 0)
	}

	switch anim {
	case model.AnimationZoom:
		return Frame{Faint: true, Scale: 1 - 0.4*p}
	case model.AnimationSlide:
		return Frame{Faint: true, Shift: int(float64(width/2) * p), Scale: 1}
	default:
		return Frame{Faint: true, Scale: 1}
	}
}

// RenderToast renders one toast at the given outer width. remaining is the
// fraction of the display duration left, shown by the progress bar.
func RenderToast(rec model.Record, width int, frame Frame, remaining float64) string {
	if frame.Scale > 0 && frame.Scale < 1 {
		width = max(int(float64(width)*frame.Scale), 8)
	}

	box := BoxStyle(rec)
	if frame.Faint {
		box = box.Faint(true)
	}
	contentWidth := max(width-box.GetHorizontalFrameSize(), 1)
	text := lipgloss.NewStyle().Background(box.GetBackground())

	var lines []string

	if rec.ClosePosition == model.ClosePositionTop {
		lines = append(lines, text.Width(contentWidth).Align(lipgloss.Right).Render(closeGlyph))
	}

	var parts []string
	used := 0
	if icon := Icon(rec); icon != "" {
		iconCell := iconStyle(rec, box).Render(icon + " ")
		parts = append(parts, iconCell)
		used += lipgloss.Width(iconCell)
	}
	closeCell := ""
	if rec.ClosePosition != model.ClosePositionTop {
		closeCell = text.Render(" " + closeGlyph)
		used += lipgloss.Width(closeCell)
	}
	msgWidth := max(contentWidth-used, 1)
	parts = append(parts, text.Width(msgWidth).Render(rec.Message))
	if closeCell != "" {
		parts = append(parts, closeCell)
	}
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, parts...))

	if rec.ProgressBar {
		bar := newBar(rec, contentWidth)
		lines = append(lines, bar.ViewAs(min(max(remaining, 0), 1)))
	}

	out := box.Width(width - box.GetHorizontalBorderSize()).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))

	if rec.Styles != nil && rec.Styles.Shadow {
		out = withShadow(out)
	}
	return out
}

// withShadow draws a one-cell drop shadow below and to the right of block.
func withShadow(block string) string {
	shade := lipgloss.NewStyle().Foreground(shadowColor)
	lines := strings.Split(block, "\n")
	w := lipgloss.Width(block)

	for i := range lines {
		if i == 0 {
			lines[i] += " "
			continue
		}
		lines[i] += shade.Render("░")
	}
	lines = append(lines, " "+shade.Render(strings.Repeat("░", w)))
	return strings.Join(lines, "\n")
}
