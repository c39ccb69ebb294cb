package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/jmylchreest/toastui/internal/history"
)

// DmenuFormatter writes one line per entry for dmenu, rofi or fuzzel.
type DmenuFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// Format writes entries in dmenu format (one per line).
func (f *DmenuFormatter) Format(w io.Writer, entries []history.Entry) error {
	now := f.opts.Now()
	for i := range entries {
		line, err := f.formatLine(i+1, &entries[i], now)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func (f *DmenuFormatter) formatLine(index int, e *history.Entry, now time.Time) (string, error) {
	if f.template != nil {
		var buf strings.Builder
		if err := f.template.Execute(&buf, newTemplateData(index, e, now)); err != nil {
			return "", err
		}
		return buf.String(), nil
	}

	// Default format: index | age | type | message
	sep := f.opts.Separator
	if sep == "" {
		sep = " | "
	}

	var parts []string
	if f.opts.ShowIndex {
		parts = append(parts, fmt.Sprintf("%d", index))
	}
	if f.opts.ShowTime {
		parts = append(parts, relativeTime(e.DismissedAt, now))
	}
	if f.opts.ShowType {
		parts = append(parts, string(e.Type))
	}
	parts = append(parts, singleLine(e.Message, f.opts.MessageMaxLen))

	return strings.Join(parts, sep), nil
}
