package output

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/toastui/internal/history"
	"github.com/jmylchreest/toastui/internal/model"
)

// templateData is what custom templates see.
type templateData struct {
	Index        int
	Entry        *history.Entry
	RelativeTime string
	Lifetime     time.Duration
}

func newTemplateData(index int, e *history.Entry, now time.Time) templateData {
	return templateData{
		Index:        index,
		Entry:        e,
		RelativeTime: relativeTime(e.DismissedAt, now),
		Lifetime:     time.Duration(e.LifetimeMS) * time.Millisecond,
	}
}

// templateFuncs returns template helper functions.
func templateFuncs(now func() time.Time) template.FuncMap {
	return template.FuncMap{
		"truncate": truncate,
		"reltime": func(t time.Time) string {
			return relativeTime(t, now())
		},
		"ago": func(t time.Time) string {
			return humanize.RelTime(t, now(), "ago", "from now")
		},
		"typeIcon": func(t model.Type) string {
			switch t {
			case model.TypeSuccess:
				return "+"
			case model.TypeError:
				return "!"
			case model.TypeWarning:
				return "~"
			case model.TypeInfo:
				return "i"
			default:
				return "-"
			}
		},
		"upper": strings.ToUpper,
	}
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 || len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// relativeTime returns a compact age such as "now", "5m" or "3d".
func relativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "unknown"
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw", int(d.Hours()/24/7))
	}
}

// singleLine flattens a message for one-line display.
func singleLine(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	return truncate(s, maxLen)
}
