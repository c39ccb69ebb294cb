package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/toastui/internal/history"
)

// PlainFormatter formats entries as human-readable text.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// Format writes entries as plain text.
func (f *PlainFormatter) Format(w io.Writer, entries []history.Entry) error {
	now := f.opts.Now()
	for i := range entries {
		if err := f.formatEntry(w, i+1, &entries[i], now); err != nil {
			return err
		}
	}
	return nil
}

func (f *PlainFormatter) formatEntry(w io.Writer, index int, e *history.Entry, now time.Time) error {
	if f.template != nil {
		return f.template.Execute(w, newTemplateData(index, e, now))
	}

	var sb strings.Builder
	if f.opts.ShowIndex {
		fmt.Fprintf(&sb, "[%d] ", index)
	}
	if f.opts.ShowType {
		fmt.Fprintf(&sb, "<%s> ", e.Type)
	}
	sb.WriteString(singleLine(e.Message, f.opts.MessageMaxLen))
	if f.opts.ShowTime {
		fmt.Fprintf(&sb, " (%s, shown %s)",
			humanize.RelTime(e.DismissedAt, now, "ago", "from now"),
			time.Duration(e.LifetimeMS)*time.Millisecond)
	}
	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatField returns a single field of an entry.
func FormatField(e *history.Entry, field string) string {
	switch strings.ToLower(field) {
	case "id":
		return e.ID
	case "type":
		return string(e.Type)
	case "position":
		return string(e.Position)
	case "created":
		return e.CreatedAt.Format(time.RFC3339)
	case "dismissed":
		return e.DismissedAt.Format(time.RFC3339)
	case "lifetime":
		return (time.Duration(e.LifetimeMS) * time.Millisecond).String()
	default:
		return e.Message
	}
}
