// Package output provides output formatters for dismissal log entries.
package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/jmylchreest/toastui/internal/history"
)

// Formatter formats dismissal log entries for output.
type Formatter interface {
	// Format writes formatted entries to the writer.
	Format(w io.Writer, entries []history.Entry) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatDmenu FormatType = "dmenu"
	FormatJSON  FormatType = "json"
	FormatPlain FormatType = "plain"
	FormatIDs   FormatType = "ids"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (FormatType, error) {
	switch f := FormatType(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatDmenu, FormatJSON, FormatPlain, FormatIDs:
		return f, nil
	case "":
		return FormatPlain, nil
	default:
		return "", fmt.Errorf("unknown format %q (use plain, dmenu, json or ids)", s)
	}
}

// NewFormatter creates a formatter for the specified format type.
// It fails when opts.Template does not parse.
func NewFormatter(format FormatType, opts FormatterOptions) (Formatter, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	var tmpl *template.Template
	if opts.Template != "" && (format == FormatPlain || format == FormatDmenu) {
		var err error
		tmpl, err = template.New(string(format)).Funcs(templateFuncs(opts.Now)).Parse(opts.Template)
		if err != nil {
			return nil, fmt.Errorf("invalid template: %w", err)
		}
	}

	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts), nil
	case FormatIDs:
		return NewIDsFormatter(), nil
	case FormatDmenu:
		return &DmenuFormatter{opts: opts, template: tmpl}, nil
	default:
		return &PlainFormatter{opts: opts, template: tmpl}, nil
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template      string           // Custom template for dmenu/plain format
	ShowIndex     bool             // Show 1-based index prefix
	ShowTime      bool             // Show time since dismissal
	ShowType      bool             // Show toast type
	MessageMaxLen int              // Maximum message length (0 = unlimited)
	Separator     string           // Field separator for dmenu format
	Now           func() time.Time // Reference time for relative times
}

// DefaultFormatterOptions returns sensible defaults for dmenu output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowIndex:     true,
		ShowTime:      true,
		ShowType:      true,
		MessageMaxLen: 80,
		Separator:     " | ",
	}
}
